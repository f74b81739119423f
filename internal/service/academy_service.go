package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mptwarrior/warrior/internal/calculator"
	"github.com/mptwarrior/warrior/internal/middleware"
	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
	"github.com/mptwarrior/warrior/pkg/api"
)

// gradedAutomatically marks answers scored without a reviewer.
const gradedAutomatically = "auto"

// maxLessonMinutes caps one completion report.
const maxLessonMinutes = 24 * 60

var errModuleLocked = errors.New("complete the prerequisite modules first")

type academyStore interface {
	storage.QuizStore
	storage.ModuleStore
}

// AcademyService serves modules, lessons, quizzes and essay grading.
type AcademyService struct {
	store academyStore
	now   func() time.Time
}

func NewAcademyService(store academyStore) *AcademyService {
	return &AcademyService{store: store, now: time.Now}
}

// ListQuestions returns a module's questions in order, without answers.
func (s *AcademyService) ListQuestions(ctx context.Context, req *connect.Request[api.ListQuestionsRequest]) (*connect.Response[api.ListQuestionsResponse], error) {
	if _, err := middleware.Authenticated(ctx); err != nil {
		return nil, err
	}
	if req.Msg.ModuleID == "" {
		return nil, invalidArgument("moduleId is required")
	}

	questions, err := s.store.ListQuestions(ctx, req.Msg.ModuleID)
	if err != nil {
		return nil, toConnectError(err)
	}
	public := make([]*models.QuizQuestion, len(questions))
	for i, q := range questions {
		c := *q
		c.CorrectAnswer = nil
		public[i] = &c
	}
	return connect.NewResponse(&api.ListQuestionsResponse{Questions: public}), nil
}

// SubmitAnswer stores the caller's answer, replacing any earlier one.
// Multiple-choice and true/false answers are graded on the spot.
func (s *AcademyService) SubmitAnswer(ctx context.Context, req *connect.Request[api.SubmitAnswerRequest]) (*connect.Response[api.SubmitAnswerResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	if msg.ModuleID == "" || msg.QuestionID == "" || strings.TrimSpace(msg.Answer) == "" {
		return nil, invalidArgument("moduleId, questionId and answer are required")
	}

	q, err := s.store.GetQuestion(ctx, msg.ModuleID, msg.QuestionID)
	if err != nil {
		return nil, toConnectError(err)
	}

	now := s.now().UTC()
	answer := &models.QuizAnswer{
		ID:          models.AnswerID(userID, q.ModuleID, q.ID),
		UserID:      userID,
		ModuleID:    q.ModuleID,
		QuestionID:  q.ID,
		Answer:      strings.TrimSpace(msg.Answer),
		SubmittedAt: now,
	}
	if q.Type.AutoGraded() {
		score, correct, err := calculator.Grade(q, answer.Answer)
		if err != nil {
			return nil, toConnectError(err)
		}
		answer.Score = &score
		answer.IsCorrect = &correct
		answer.GradedBy = gradedAutomatically
		answer.GradedAt = &now
	}

	if err := s.store.UpsertAnswer(ctx, answer); err != nil {
		slog.Error("SubmitAnswer failed", "user_id", userID, "question_id", q.ID, "error", err)
		return nil, toConnectError(err)
	}
	slog.Info("Answer submitted", "user_id", userID, "module_id", q.ModuleID, "question_id", q.ID, "graded", answer.Score != nil)
	return connect.NewResponse(&api.SubmitAnswerResponse{Answer: answer}), nil
}

// GetModuleScore summarizes the caller's progress in one module.
func (s *AcademyService) GetModuleScore(ctx context.Context, req *connect.Request[api.GetModuleScoreRequest]) (*connect.Response[api.GetModuleScoreResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ModuleID == "" {
		return nil, invalidArgument("moduleId is required")
	}

	questions, err := s.store.ListQuestions(ctx, req.Msg.ModuleID)
	if err != nil {
		return nil, toConnectError(err)
	}
	answers, err := s.store.ListAnswers(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	byQuestion := make(map[string]*models.QuizAnswer, len(answers))
	for _, a := range answers {
		if a.ModuleID == req.Msg.ModuleID {
			byQuestion[a.QuestionID] = a
		}
	}

	score := calculator.ScoreModule(req.Msg.ModuleID, questions, byQuestion)
	return connect.NewResponse(&api.GetModuleScoreResponse{Score: score}), nil
}

// ListUngradedAnswers lists essays waiting for a reviewer, oldest first.
func (s *AcademyService) ListUngradedAnswers(ctx context.Context, req *connect.Request[api.ListUngradedAnswersRequest]) (*connect.Response[api.ListUngradedAnswersResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	answers, err := s.store.ListUngradedAnswers(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListUngradedAnswersResponse{Answers: answers}), nil
}

// GradeEssay scores an essay answer. Super admins only.
func (s *AcademyService) GradeEssay(ctx context.Context, req *connect.Request[api.GradeEssayRequest]) (*connect.Response[api.GradeEssayResponse], error) {
	if err := middleware.RequireSuperAdmin(ctx); err != nil {
		return nil, err
	}
	msg := req.Msg
	if msg.UserID == "" || msg.ModuleID == "" || msg.QuestionID == "" {
		return nil, invalidArgument("userId, moduleId and questionId are required")
	}
	if msg.Score < 0 || msg.Score > 100 {
		return nil, invalidArgument("score must be between 0 and 100")
	}

	answer, err := s.store.GetAnswer(ctx, msg.UserID, msg.ModuleID, msg.QuestionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	q, err := s.store.GetQuestion(ctx, answer.ModuleID, answer.QuestionID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, toConnectError(err)
	}
	if q != nil && q.Type != models.QuestionEssay {
		return nil, invalidArgument("only essay answers are graded by hand")
	}

	now := s.now().UTC()
	score := msg.Score
	answer.Score = &score
	answer.Feedback = msg.Feedback
	answer.GradedBy = middleware.GetUserID(ctx)
	answer.GradedAt = &now

	if err := s.store.UpsertAnswer(ctx, answer); err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Essay graded", "user_id", msg.UserID, "module_id", msg.ModuleID, "question_id", msg.QuestionID, "score", score, "grader_id", answer.GradedBy)
	return connect.NewResponse(&api.GradeEssayResponse{Answer: answer}), nil
}

// UpsertQuestion creates or replaces a question.
func (s *AcademyService) UpsertQuestion(ctx context.Context, req *connect.Request[api.UpsertQuestionRequest]) (*connect.Response[api.UpsertQuestionResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	q := req.Msg.Question
	if err := calculator.ValidateQuestion(q); err != nil {
		return nil, toConnectError(err)
	}

	now := s.now().UTC()
	if existing, err := s.store.GetQuestion(ctx, q.ModuleID, q.ID); err == nil {
		q.CreatedAt = existing.CreatedAt
	} else if errors.Is(err, storage.ErrNotFound) {
		q.CreatedAt = now
	} else {
		return nil, toConnectError(err)
	}
	q.UpdatedAt = now

	if err := s.store.UpsertQuestion(ctx, q); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.UpsertQuestionResponse{Question: q}), nil
}

// ListModules summarizes the caller's progress through every module.
func (s *AcademyService) ListModules(ctx context.Context, req *connect.Request[api.ListModulesRequest]) (*connect.Response[api.ListModulesResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	modules, byID, progress, err := s.loadCourse(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	summaries := make([]models.ModuleSummary, len(modules))
	for i, m := range modules {
		summaries[i] = summarize(m, byID, progress)
	}
	return connect.NewResponse(&api.ListModulesResponse{Modules: summaries}), nil
}

// GetModule returns a module with its lessons. Locked modules are refused.
func (s *AcademyService) GetModule(ctx context.Context, req *connect.Request[api.GetModuleRequest]) (*connect.Response[api.GetModuleResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ModuleID == "" {
		return nil, invalidArgument("moduleId is required")
	}

	m, summary, progress, err := s.openModule(ctx, userID, req.Msg.ModuleID)
	if err != nil {
		return nil, err
	}
	own := make([]*models.LessonProgress, 0, len(progress[m.ID]))
	for _, l := range m.Lessons {
		if p, ok := progress[m.ID][l.ID]; ok {
			own = append(own, p)
		}
	}
	return connect.NewResponse(&api.GetModuleResponse{Module: m, Summary: summary, Progress: own}), nil
}

// RecordLessonAccess stamps the caller's last visit to a lesson.
func (s *AcademyService) RecordLessonAccess(ctx context.Context, req *connect.Request[api.LessonRequest]) (*connect.Response[api.LessonProgressResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	return s.updateLesson(ctx, userID, req.Msg.ModuleID, req.Msg.LessonID, func(p *models.LessonProgress, now time.Time) {})
}

// MarkLessonComplete completes a lesson for the caller. Reporting an already
// completed lesson again only adds the time spent.
func (s *AcademyService) MarkLessonComplete(ctx context.Context, req *connect.Request[api.MarkLessonCompleteRequest]) (*connect.Response[api.LessonProgressResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	if msg.TimeSpent < 0 || msg.TimeSpent > maxLessonMinutes {
		return nil, invalidArgument("timeSpent must be between 0 and 1440 minutes")
	}

	resp, err := s.updateLesson(ctx, userID, msg.ModuleID, msg.LessonID, func(p *models.LessonProgress, now time.Time) {
		p.TimeSpent += msg.TimeSpent
		if !p.Completed {
			p.Completed = true
			p.CompletedAt = &now
		}
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Lesson completed", "user_id", userID, "module_id", msg.ModuleID, "lesson_id", msg.LessonID,
		"module_progress", resp.Msg.Summary.Progress)
	return resp, nil
}

// UpsertModule creates or replaces a module. Admins only.
func (s *AcademyService) UpsertModule(ctx context.Context, req *connect.Request[api.UpsertModuleRequest]) (*connect.Response[api.UpsertModuleResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	m := req.Msg.Module
	if err := calculator.ValidateModule(m); err != nil {
		return nil, toConnectError(err)
	}

	now := s.now().UTC()
	if existing, err := s.store.GetModule(ctx, m.ID); err == nil {
		m.CreatedAt = existing.CreatedAt
	} else if errors.Is(err, storage.ErrNotFound) {
		m.CreatedAt = now
	} else {
		return nil, toConnectError(err)
	}
	m.UpdatedAt = now

	if err := s.store.UpsertModule(ctx, m); err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Module saved", "module_id", m.ID, "lessons", len(m.Lessons), "admin_id", middleware.GetUserID(ctx))
	return connect.NewResponse(&api.UpsertModuleResponse{Module: m}), nil
}

// updateLesson loads or starts the caller's progress on an unlocked
// module's lesson, applies change, stamps the access time and saves it.
func (s *AcademyService) updateLesson(ctx context.Context, userID, moduleID, lessonID string, change func(p *models.LessonProgress, now time.Time)) (*connect.Response[api.LessonProgressResponse], error) {
	if moduleID == "" || lessonID == "" {
		return nil, invalidArgument("moduleId and lessonId are required")
	}
	m, _, progress, err := s.openModule(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	if m.Lesson(lessonID) == nil {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("lesson "+lessonID+" not found in module "+moduleID))
	}

	now := s.now().UTC()
	p, ok := progress[moduleID][lessonID]
	if !ok {
		p = &models.LessonProgress{
			UserID:    userID,
			ModuleID:  moduleID,
			LessonID:  lessonID,
			CreatedAt: now,
		}
	}
	change(p, now)
	p.LastAccessedAt = now
	p.UpdatedAt = now

	if err := s.store.UpsertLessonProgress(ctx, p); err != nil {
		slog.Error("Lesson progress update failed", "user_id", userID, "module_id", moduleID, "lesson_id", lessonID, "error", err)
		return nil, toConnectError(err)
	}
	if progress[moduleID] == nil {
		progress[moduleID] = make(map[string]*models.LessonProgress)
	}
	progress[moduleID][lessonID] = p

	summary := calculator.SummarizeModule(m, progress[moduleID])
	summary.Unlocked = true
	return connect.NewResponse(&api.LessonProgressResponse{Progress: p, Summary: summary}), nil
}

// openModule loads a module the caller may open, with their summary of it
// and all of their lesson progress.
func (s *AcademyService) openModule(ctx context.Context, userID, moduleID string) (*models.Module, models.ModuleSummary, map[string]map[string]*models.LessonProgress, error) {
	_, byID, progress, err := s.loadCourse(ctx, userID)
	if err != nil {
		return nil, models.ModuleSummary{}, nil, toConnectError(err)
	}
	m, ok := byID[moduleID]
	if !ok {
		return nil, models.ModuleSummary{}, nil, connect.NewError(connect.CodeNotFound,
			fmt.Errorf("module %s: %w", moduleID, storage.ErrNotFound))
	}
	summary := summarize(m, byID, progress)
	if !summary.Unlocked {
		return nil, summary, nil, connect.NewError(connect.CodeFailedPrecondition, errModuleLocked)
	}
	return m, summary, progress, nil
}

// loadCourse reads every module and the user's progress on them.
func (s *AcademyService) loadCourse(ctx context.Context, userID string) ([]*models.Module, map[string]*models.Module, map[string]map[string]*models.LessonProgress, error) {
	modules, err := s.store.ListModules(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	progress, err := s.store.ListLessonProgress(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	byID := make(map[string]*models.Module, len(modules))
	for _, m := range modules {
		byID[m.ID] = m
	}
	return modules, byID, calculator.LessonsByModule(progress), nil
}

func summarize(m *models.Module, modules map[string]*models.Module, progress map[string]map[string]*models.LessonProgress) models.ModuleSummary {
	summary := calculator.SummarizeModule(m, progress[m.ID])
	summary.Unlocked = calculator.ModuleUnlocked(m, modules, progress)
	return summary
}
