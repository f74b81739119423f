package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mptwarrior/warrior/pkg/api"
)

// AcademyServiceName is the fully-qualified name of the AcademyService.
const AcademyServiceName = "warrior.v1.AcademyService"

// Procedures of the AcademyService.
const (
	AcademyServiceListQuestionsProcedure       = "/warrior.v1.AcademyService/ListQuestions"
	AcademyServiceSubmitAnswerProcedure        = "/warrior.v1.AcademyService/SubmitAnswer"
	AcademyServiceGetModuleScoreProcedure      = "/warrior.v1.AcademyService/GetModuleScore"
	AcademyServiceListUngradedAnswersProcedure = "/warrior.v1.AcademyService/ListUngradedAnswers"
	AcademyServiceGradeEssayProcedure          = "/warrior.v1.AcademyService/GradeEssay"
	AcademyServiceUpsertQuestionProcedure      = "/warrior.v1.AcademyService/UpsertQuestion"
	AcademyServiceListModulesProcedure         = "/warrior.v1.AcademyService/ListModules"
	AcademyServiceGetModuleProcedure           = "/warrior.v1.AcademyService/GetModule"
	AcademyServiceRecordLessonAccessProcedure  = "/warrior.v1.AcademyService/RecordLessonAccess"
	AcademyServiceMarkLessonCompleteProcedure  = "/warrior.v1.AcademyService/MarkLessonComplete"
	AcademyServiceUpsertModuleProcedure        = "/warrior.v1.AcademyService/UpsertModule"
)

// AcademyServiceClient is a client for the AcademyService.
type AcademyServiceClient interface {
	ListQuestions(context.Context, *connect.Request[api.ListQuestionsRequest]) (*connect.Response[api.ListQuestionsResponse], error)
	SubmitAnswer(context.Context, *connect.Request[api.SubmitAnswerRequest]) (*connect.Response[api.SubmitAnswerResponse], error)
	GetModuleScore(context.Context, *connect.Request[api.GetModuleScoreRequest]) (*connect.Response[api.GetModuleScoreResponse], error)
	ListUngradedAnswers(context.Context, *connect.Request[api.ListUngradedAnswersRequest]) (*connect.Response[api.ListUngradedAnswersResponse], error)
	GradeEssay(context.Context, *connect.Request[api.GradeEssayRequest]) (*connect.Response[api.GradeEssayResponse], error)
	UpsertQuestion(context.Context, *connect.Request[api.UpsertQuestionRequest]) (*connect.Response[api.UpsertQuestionResponse], error)
	ListModules(context.Context, *connect.Request[api.ListModulesRequest]) (*connect.Response[api.ListModulesResponse], error)
	GetModule(context.Context, *connect.Request[api.GetModuleRequest]) (*connect.Response[api.GetModuleResponse], error)
	RecordLessonAccess(context.Context, *connect.Request[api.LessonRequest]) (*connect.Response[api.LessonProgressResponse], error)
	MarkLessonComplete(context.Context, *connect.Request[api.MarkLessonCompleteRequest]) (*connect.Response[api.LessonProgressResponse], error)
	UpsertModule(context.Context, *connect.Request[api.UpsertModuleRequest]) (*connect.Response[api.UpsertModuleResponse], error)
}

// NewAcademyServiceClient constructs a client for the AcademyService. baseURL includes the /api
// prefix, e.g. http://localhost:8080/api.
func NewAcademyServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AcademyServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
	return &academyServiceClient{
		listQuestions: connect.NewClient[api.ListQuestionsRequest, api.ListQuestionsResponse](
			httpClient,
			baseURL+AcademyServiceListQuestionsProcedure,
			opts...,
		),
		submitAnswer: connect.NewClient[api.SubmitAnswerRequest, api.SubmitAnswerResponse](
			httpClient,
			baseURL+AcademyServiceSubmitAnswerProcedure,
			opts...,
		),
		getModuleScore: connect.NewClient[api.GetModuleScoreRequest, api.GetModuleScoreResponse](
			httpClient,
			baseURL+AcademyServiceGetModuleScoreProcedure,
			opts...,
		),
		listUngradedAnswers: connect.NewClient[api.ListUngradedAnswersRequest, api.ListUngradedAnswersResponse](
			httpClient,
			baseURL+AcademyServiceListUngradedAnswersProcedure,
			opts...,
		),
		gradeEssay: connect.NewClient[api.GradeEssayRequest, api.GradeEssayResponse](
			httpClient,
			baseURL+AcademyServiceGradeEssayProcedure,
			opts...,
		),
		upsertQuestion: connect.NewClient[api.UpsertQuestionRequest, api.UpsertQuestionResponse](
			httpClient,
			baseURL+AcademyServiceUpsertQuestionProcedure,
			opts...,
		),
		listModules: connect.NewClient[api.ListModulesRequest, api.ListModulesResponse](
			httpClient,
			baseURL+AcademyServiceListModulesProcedure,
			opts...,
		),
		getModule: connect.NewClient[api.GetModuleRequest, api.GetModuleResponse](
			httpClient,
			baseURL+AcademyServiceGetModuleProcedure,
			opts...,
		),
		recordLessonAccess: connect.NewClient[api.LessonRequest, api.LessonProgressResponse](
			httpClient,
			baseURL+AcademyServiceRecordLessonAccessProcedure,
			opts...,
		),
		markLessonComplete: connect.NewClient[api.MarkLessonCompleteRequest, api.LessonProgressResponse](
			httpClient,
			baseURL+AcademyServiceMarkLessonCompleteProcedure,
			opts...,
		),
		upsertModule: connect.NewClient[api.UpsertModuleRequest, api.UpsertModuleResponse](
			httpClient,
			baseURL+AcademyServiceUpsertModuleProcedure,
			opts...,
		),
	}
}

type academyServiceClient struct {
	listQuestions       *connect.Client[api.ListQuestionsRequest, api.ListQuestionsResponse]
	submitAnswer        *connect.Client[api.SubmitAnswerRequest, api.SubmitAnswerResponse]
	getModuleScore      *connect.Client[api.GetModuleScoreRequest, api.GetModuleScoreResponse]
	listUngradedAnswers *connect.Client[api.ListUngradedAnswersRequest, api.ListUngradedAnswersResponse]
	gradeEssay          *connect.Client[api.GradeEssayRequest, api.GradeEssayResponse]
	upsertQuestion      *connect.Client[api.UpsertQuestionRequest, api.UpsertQuestionResponse]
	listModules         *connect.Client[api.ListModulesRequest, api.ListModulesResponse]
	getModule           *connect.Client[api.GetModuleRequest, api.GetModuleResponse]
	recordLessonAccess  *connect.Client[api.LessonRequest, api.LessonProgressResponse]
	markLessonComplete  *connect.Client[api.MarkLessonCompleteRequest, api.LessonProgressResponse]
	upsertModule        *connect.Client[api.UpsertModuleRequest, api.UpsertModuleResponse]
}

func (c *academyServiceClient) ListQuestions(ctx context.Context, req *connect.Request[api.ListQuestionsRequest]) (*connect.Response[api.ListQuestionsResponse], error) {
	return c.listQuestions.CallUnary(ctx, req)
}

func (c *academyServiceClient) SubmitAnswer(ctx context.Context, req *connect.Request[api.SubmitAnswerRequest]) (*connect.Response[api.SubmitAnswerResponse], error) {
	return c.submitAnswer.CallUnary(ctx, req)
}

func (c *academyServiceClient) GetModuleScore(ctx context.Context, req *connect.Request[api.GetModuleScoreRequest]) (*connect.Response[api.GetModuleScoreResponse], error) {
	return c.getModuleScore.CallUnary(ctx, req)
}

func (c *academyServiceClient) ListUngradedAnswers(ctx context.Context, req *connect.Request[api.ListUngradedAnswersRequest]) (*connect.Response[api.ListUngradedAnswersResponse], error) {
	return c.listUngradedAnswers.CallUnary(ctx, req)
}

func (c *academyServiceClient) GradeEssay(ctx context.Context, req *connect.Request[api.GradeEssayRequest]) (*connect.Response[api.GradeEssayResponse], error) {
	return c.gradeEssay.CallUnary(ctx, req)
}

func (c *academyServiceClient) UpsertQuestion(ctx context.Context, req *connect.Request[api.UpsertQuestionRequest]) (*connect.Response[api.UpsertQuestionResponse], error) {
	return c.upsertQuestion.CallUnary(ctx, req)
}

func (c *academyServiceClient) ListModules(ctx context.Context, req *connect.Request[api.ListModulesRequest]) (*connect.Response[api.ListModulesResponse], error) {
	return c.listModules.CallUnary(ctx, req)
}

func (c *academyServiceClient) GetModule(ctx context.Context, req *connect.Request[api.GetModuleRequest]) (*connect.Response[api.GetModuleResponse], error) {
	return c.getModule.CallUnary(ctx, req)
}

func (c *academyServiceClient) RecordLessonAccess(ctx context.Context, req *connect.Request[api.LessonRequest]) (*connect.Response[api.LessonProgressResponse], error) {
	return c.recordLessonAccess.CallUnary(ctx, req)
}

func (c *academyServiceClient) MarkLessonComplete(ctx context.Context, req *connect.Request[api.MarkLessonCompleteRequest]) (*connect.Response[api.LessonProgressResponse], error) {
	return c.markLessonComplete.CallUnary(ctx, req)
}

func (c *academyServiceClient) UpsertModule(ctx context.Context, req *connect.Request[api.UpsertModuleRequest]) (*connect.Response[api.UpsertModuleResponse], error) {
	return c.upsertModule.CallUnary(ctx, req)
}

// AcademyServiceHandler is an implementation of the AcademyService.
type AcademyServiceHandler interface {
	ListQuestions(context.Context, *connect.Request[api.ListQuestionsRequest]) (*connect.Response[api.ListQuestionsResponse], error)
	SubmitAnswer(context.Context, *connect.Request[api.SubmitAnswerRequest]) (*connect.Response[api.SubmitAnswerResponse], error)
	GetModuleScore(context.Context, *connect.Request[api.GetModuleScoreRequest]) (*connect.Response[api.GetModuleScoreResponse], error)
	ListUngradedAnswers(context.Context, *connect.Request[api.ListUngradedAnswersRequest]) (*connect.Response[api.ListUngradedAnswersResponse], error)
	GradeEssay(context.Context, *connect.Request[api.GradeEssayRequest]) (*connect.Response[api.GradeEssayResponse], error)
	UpsertQuestion(context.Context, *connect.Request[api.UpsertQuestionRequest]) (*connect.Response[api.UpsertQuestionResponse], error)
	ListModules(context.Context, *connect.Request[api.ListModulesRequest]) (*connect.Response[api.ListModulesResponse], error)
	GetModule(context.Context, *connect.Request[api.GetModuleRequest]) (*connect.Response[api.GetModuleResponse], error)
	RecordLessonAccess(context.Context, *connect.Request[api.LessonRequest]) (*connect.Response[api.LessonProgressResponse], error)
	MarkLessonComplete(context.Context, *connect.Request[api.MarkLessonCompleteRequest]) (*connect.Response[api.LessonProgressResponse], error)
	UpsertModule(context.Context, *connect.Request[api.UpsertModuleRequest]) (*connect.Response[api.UpsertModuleResponse], error)
}

// NewAcademyServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewAcademyServiceHandler(svc AcademyServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
	listQuestionsHandler := connect.NewUnaryHandler(AcademyServiceListQuestionsProcedure, svc.ListQuestions, opts...)
	submitAnswerHandler := connect.NewUnaryHandler(AcademyServiceSubmitAnswerProcedure, svc.SubmitAnswer, opts...)
	getModuleScoreHandler := connect.NewUnaryHandler(AcademyServiceGetModuleScoreProcedure, svc.GetModuleScore, opts...)
	listUngradedAnswersHandler := connect.NewUnaryHandler(AcademyServiceListUngradedAnswersProcedure, svc.ListUngradedAnswers, opts...)
	gradeEssayHandler := connect.NewUnaryHandler(AcademyServiceGradeEssayProcedure, svc.GradeEssay, opts...)
	upsertQuestionHandler := connect.NewUnaryHandler(AcademyServiceUpsertQuestionProcedure, svc.UpsertQuestion, opts...)
	listModulesHandler := connect.NewUnaryHandler(AcademyServiceListModulesProcedure, svc.ListModules, opts...)
	getModuleHandler := connect.NewUnaryHandler(AcademyServiceGetModuleProcedure, svc.GetModule, opts...)
	recordLessonAccessHandler := connect.NewUnaryHandler(AcademyServiceRecordLessonAccessProcedure, svc.RecordLessonAccess, opts...)
	markLessonCompleteHandler := connect.NewUnaryHandler(AcademyServiceMarkLessonCompleteProcedure, svc.MarkLessonComplete, opts...)
	upsertModuleHandler := connect.NewUnaryHandler(AcademyServiceUpsertModuleProcedure, svc.UpsertModule, opts...)
	return "/warrior.v1.AcademyService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AcademyServiceListQuestionsProcedure:
			listQuestionsHandler.ServeHTTP(w, r)
		case AcademyServiceSubmitAnswerProcedure:
			submitAnswerHandler.ServeHTTP(w, r)
		case AcademyServiceGetModuleScoreProcedure:
			getModuleScoreHandler.ServeHTTP(w, r)
		case AcademyServiceListUngradedAnswersProcedure:
			listUngradedAnswersHandler.ServeHTTP(w, r)
		case AcademyServiceGradeEssayProcedure:
			gradeEssayHandler.ServeHTTP(w, r)
		case AcademyServiceUpsertQuestionProcedure:
			upsertQuestionHandler.ServeHTTP(w, r)
		case AcademyServiceListModulesProcedure:
			listModulesHandler.ServeHTTP(w, r)
		case AcademyServiceGetModuleProcedure:
			getModuleHandler.ServeHTTP(w, r)
		case AcademyServiceRecordLessonAccessProcedure:
			recordLessonAccessHandler.ServeHTTP(w, r)
		case AcademyServiceMarkLessonCompleteProcedure:
			markLessonCompleteHandler.ServeHTTP(w, r)
		case AcademyServiceUpsertModuleProcedure:
			upsertModuleHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
