package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mptwarrior/warrior/pkg/api"
)

// InvitationServiceName is the fully-qualified name of the InvitationService.
const InvitationServiceName = "warrior.v1.InvitationService"

// Procedures of the InvitationService.
const (
	InvitationServiceValidateCodeProcedure         = "/warrior.v1.InvitationService/ValidateCode"
	InvitationServiceGenerateCodeProcedure         = "/warrior.v1.InvitationService/GenerateCode"
	InvitationServiceBulkGenerateCodesProcedure    = "/warrior.v1.InvitationService/BulkGenerateCodes"
	InvitationServiceListCodesProcedure            = "/warrior.v1.InvitationService/ListCodes"
	InvitationServiceUpdateCodeProcedure           = "/warrior.v1.InvitationService/UpdateCode"
	InvitationServiceDeactivateCodeProcedure       = "/warrior.v1.InvitationService/DeactivateCode"
	InvitationServiceDeleteCodeProcedure           = "/warrior.v1.InvitationService/DeleteCode"
	InvitationServiceGenerateReferralCodeProcedure = "/warrior.v1.InvitationService/GenerateReferralCode"
)

// InvitationServiceClient is a client for the InvitationService.
type InvitationServiceClient interface {
	ValidateCode(context.Context, *connect.Request[api.ValidateCodeRequest]) (*connect.Response[api.ValidateCodeResponse], error)
	GenerateCode(context.Context, *connect.Request[api.GenerateCodeRequest]) (*connect.Response[api.GenerateCodeResponse], error)
	BulkGenerateCodes(context.Context, *connect.Request[api.BulkGenerateCodesRequest]) (*connect.Response[api.BulkGenerateCodesResponse], error)
	ListCodes(context.Context, *connect.Request[api.ListCodesRequest]) (*connect.Response[api.ListCodesResponse], error)
	UpdateCode(context.Context, *connect.Request[api.UpdateCodeRequest]) (*connect.Response[api.UpdateCodeResponse], error)
	DeactivateCode(context.Context, *connect.Request[api.CodeRequest]) (*connect.Response[api.DeactivateCodeResponse], error)
	DeleteCode(context.Context, *connect.Request[api.CodeRequest]) (*connect.Response[api.DeleteCodeResponse], error)
	GenerateReferralCode(context.Context, *connect.Request[api.GenerateReferralCodeRequest]) (*connect.Response[api.GenerateReferralCodeResponse], error)
}

// NewInvitationServiceClient constructs a client for the InvitationService. baseURL includes the /api
// prefix, e.g. http://localhost:8080/api.
func NewInvitationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) InvitationServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
	return &invitationServiceClient{
		validateCode: connect.NewClient[api.ValidateCodeRequest, api.ValidateCodeResponse](
			httpClient,
			baseURL+InvitationServiceValidateCodeProcedure,
			opts...,
		),
		generateCode: connect.NewClient[api.GenerateCodeRequest, api.GenerateCodeResponse](
			httpClient,
			baseURL+InvitationServiceGenerateCodeProcedure,
			opts...,
		),
		bulkGenerateCodes: connect.NewClient[api.BulkGenerateCodesRequest, api.BulkGenerateCodesResponse](
			httpClient,
			baseURL+InvitationServiceBulkGenerateCodesProcedure,
			opts...,
		),
		listCodes: connect.NewClient[api.ListCodesRequest, api.ListCodesResponse](
			httpClient,
			baseURL+InvitationServiceListCodesProcedure,
			opts...,
		),
		updateCode: connect.NewClient[api.UpdateCodeRequest, api.UpdateCodeResponse](
			httpClient,
			baseURL+InvitationServiceUpdateCodeProcedure,
			opts...,
		),
		deactivateCode: connect.NewClient[api.CodeRequest, api.DeactivateCodeResponse](
			httpClient,
			baseURL+InvitationServiceDeactivateCodeProcedure,
			opts...,
		),
		deleteCode: connect.NewClient[api.CodeRequest, api.DeleteCodeResponse](
			httpClient,
			baseURL+InvitationServiceDeleteCodeProcedure,
			opts...,
		),
		generateReferralCode: connect.NewClient[api.GenerateReferralCodeRequest, api.GenerateReferralCodeResponse](
			httpClient,
			baseURL+InvitationServiceGenerateReferralCodeProcedure,
			opts...,
		),
	}
}

type invitationServiceClient struct {
	validateCode         *connect.Client[api.ValidateCodeRequest, api.ValidateCodeResponse]
	generateCode         *connect.Client[api.GenerateCodeRequest, api.GenerateCodeResponse]
	bulkGenerateCodes    *connect.Client[api.BulkGenerateCodesRequest, api.BulkGenerateCodesResponse]
	listCodes            *connect.Client[api.ListCodesRequest, api.ListCodesResponse]
	updateCode           *connect.Client[api.UpdateCodeRequest, api.UpdateCodeResponse]
	deactivateCode       *connect.Client[api.CodeRequest, api.DeactivateCodeResponse]
	deleteCode           *connect.Client[api.CodeRequest, api.DeleteCodeResponse]
	generateReferralCode *connect.Client[api.GenerateReferralCodeRequest, api.GenerateReferralCodeResponse]
}

func (c *invitationServiceClient) ValidateCode(ctx context.Context, req *connect.Request[api.ValidateCodeRequest]) (*connect.Response[api.ValidateCodeResponse], error) {
	return c.validateCode.CallUnary(ctx, req)
}

func (c *invitationServiceClient) GenerateCode(ctx context.Context, req *connect.Request[api.GenerateCodeRequest]) (*connect.Response[api.GenerateCodeResponse], error) {
	return c.generateCode.CallUnary(ctx, req)
}

func (c *invitationServiceClient) BulkGenerateCodes(ctx context.Context, req *connect.Request[api.BulkGenerateCodesRequest]) (*connect.Response[api.BulkGenerateCodesResponse], error) {
	return c.bulkGenerateCodes.CallUnary(ctx, req)
}

func (c *invitationServiceClient) ListCodes(ctx context.Context, req *connect.Request[api.ListCodesRequest]) (*connect.Response[api.ListCodesResponse], error) {
	return c.listCodes.CallUnary(ctx, req)
}

func (c *invitationServiceClient) UpdateCode(ctx context.Context, req *connect.Request[api.UpdateCodeRequest]) (*connect.Response[api.UpdateCodeResponse], error) {
	return c.updateCode.CallUnary(ctx, req)
}

func (c *invitationServiceClient) DeactivateCode(ctx context.Context, req *connect.Request[api.CodeRequest]) (*connect.Response[api.DeactivateCodeResponse], error) {
	return c.deactivateCode.CallUnary(ctx, req)
}

func (c *invitationServiceClient) DeleteCode(ctx context.Context, req *connect.Request[api.CodeRequest]) (*connect.Response[api.DeleteCodeResponse], error) {
	return c.deleteCode.CallUnary(ctx, req)
}

func (c *invitationServiceClient) GenerateReferralCode(ctx context.Context, req *connect.Request[api.GenerateReferralCodeRequest]) (*connect.Response[api.GenerateReferralCodeResponse], error) {
	return c.generateReferralCode.CallUnary(ctx, req)
}

// InvitationServiceHandler is an implementation of the InvitationService.
type InvitationServiceHandler interface {
	ValidateCode(context.Context, *connect.Request[api.ValidateCodeRequest]) (*connect.Response[api.ValidateCodeResponse], error)
	GenerateCode(context.Context, *connect.Request[api.GenerateCodeRequest]) (*connect.Response[api.GenerateCodeResponse], error)
	BulkGenerateCodes(context.Context, *connect.Request[api.BulkGenerateCodesRequest]) (*connect.Response[api.BulkGenerateCodesResponse], error)
	ListCodes(context.Context, *connect.Request[api.ListCodesRequest]) (*connect.Response[api.ListCodesResponse], error)
	UpdateCode(context.Context, *connect.Request[api.UpdateCodeRequest]) (*connect.Response[api.UpdateCodeResponse], error)
	DeactivateCode(context.Context, *connect.Request[api.CodeRequest]) (*connect.Response[api.DeactivateCodeResponse], error)
	DeleteCode(context.Context, *connect.Request[api.CodeRequest]) (*connect.Response[api.DeleteCodeResponse], error)
	GenerateReferralCode(context.Context, *connect.Request[api.GenerateReferralCodeRequest]) (*connect.Response[api.GenerateReferralCodeResponse], error)
}

// NewInvitationServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewInvitationServiceHandler(svc InvitationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
	validateCodeHandler := connect.NewUnaryHandler(InvitationServiceValidateCodeProcedure, svc.ValidateCode, opts...)
	generateCodeHandler := connect.NewUnaryHandler(InvitationServiceGenerateCodeProcedure, svc.GenerateCode, opts...)
	bulkGenerateCodesHandler := connect.NewUnaryHandler(InvitationServiceBulkGenerateCodesProcedure, svc.BulkGenerateCodes, opts...)
	listCodesHandler := connect.NewUnaryHandler(InvitationServiceListCodesProcedure, svc.ListCodes, opts...)
	updateCodeHandler := connect.NewUnaryHandler(InvitationServiceUpdateCodeProcedure, svc.UpdateCode, opts...)
	deactivateCodeHandler := connect.NewUnaryHandler(InvitationServiceDeactivateCodeProcedure, svc.DeactivateCode, opts...)
	deleteCodeHandler := connect.NewUnaryHandler(InvitationServiceDeleteCodeProcedure, svc.DeleteCode, opts...)
	generateReferralCodeHandler := connect.NewUnaryHandler(InvitationServiceGenerateReferralCodeProcedure, svc.GenerateReferralCode, opts...)
	return "/warrior.v1.InvitationService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case InvitationServiceValidateCodeProcedure:
			validateCodeHandler.ServeHTTP(w, r)
		case InvitationServiceGenerateCodeProcedure:
			generateCodeHandler.ServeHTTP(w, r)
		case InvitationServiceBulkGenerateCodesProcedure:
			bulkGenerateCodesHandler.ServeHTTP(w, r)
		case InvitationServiceListCodesProcedure:
			listCodesHandler.ServeHTTP(w, r)
		case InvitationServiceUpdateCodeProcedure:
			updateCodeHandler.ServeHTTP(w, r)
		case InvitationServiceDeactivateCodeProcedure:
			deactivateCodeHandler.ServeHTTP(w, r)
		case InvitationServiceDeleteCodeProcedure:
			deleteCodeHandler.ServeHTTP(w, r)
		case InvitationServiceGenerateReferralCodeProcedure:
			generateReferralCodeHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
