package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mptwarrior/warrior/pkg/api"
)

// AdminServiceName is the fully-qualified name of the AdminService.
const AdminServiceName = "warrior.v1.AdminService"

// Procedures of the AdminService.
const (
	AdminServiceListPendingUsersProcedure = "/warrior.v1.AdminService/ListPendingUsers"
	AdminServiceListUsersProcedure        = "/warrior.v1.AdminService/ListUsers"
	AdminServiceApproveUserProcedure      = "/warrior.v1.AdminService/ApproveUser"
	AdminServiceRejectUserProcedure       = "/warrior.v1.AdminService/RejectUser"
	AdminServiceSuspendUserProcedure      = "/warrior.v1.AdminService/SuspendUser"
	AdminServicePromoteUserProcedure      = "/warrior.v1.AdminService/PromoteUser"
	AdminServiceMarkFounderProcedure      = "/warrior.v1.AdminService/MarkFounder"
	AdminServiceListAuditLogsProcedure    = "/warrior.v1.AdminService/ListAuditLogs"
	AdminServiceGetStatisticsProcedure    = "/warrior.v1.AdminService/GetStatistics"
)

// AdminServiceClient is a client for the AdminService.
type AdminServiceClient interface {
	ListPendingUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
	ApproveUser(context.Context, *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error)
	RejectUser(context.Context, *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error)
	SuspendUser(context.Context, *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error)
	PromoteUser(context.Context, *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error)
	MarkFounder(context.Context, *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error)
	ListAuditLogs(context.Context, *connect.Request[api.ListAuditLogsRequest]) (*connect.Response[api.ListAuditLogsResponse], error)
	GetStatistics(context.Context, *connect.Request[api.GetStatisticsRequest]) (*connect.Response[api.GetStatisticsResponse], error)
}

// NewAdminServiceClient constructs a client for the AdminService. baseURL includes the /api
// prefix, e.g. http://localhost:8080/api.
func NewAdminServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AdminServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
	return &adminServiceClient{
		listPendingUsers: connect.NewClient[api.ListUsersRequest, api.ListUsersResponse](
			httpClient,
			baseURL+AdminServiceListPendingUsersProcedure,
			opts...,
		),
		listUsers: connect.NewClient[api.ListUsersRequest, api.ListUsersResponse](
			httpClient,
			baseURL+AdminServiceListUsersProcedure,
			opts...,
		),
		approveUser: connect.NewClient[api.UserActionRequest, api.UserActionResponse](
			httpClient,
			baseURL+AdminServiceApproveUserProcedure,
			opts...,
		),
		rejectUser: connect.NewClient[api.UserActionRequest, api.UserActionResponse](
			httpClient,
			baseURL+AdminServiceRejectUserProcedure,
			opts...,
		),
		suspendUser: connect.NewClient[api.UserActionRequest, api.UserActionResponse](
			httpClient,
			baseURL+AdminServiceSuspendUserProcedure,
			opts...,
		),
		promoteUser: connect.NewClient[api.UserActionRequest, api.UserActionResponse](
			httpClient,
			baseURL+AdminServicePromoteUserProcedure,
			opts...,
		),
		markFounder: connect.NewClient[api.UserActionRequest, api.UserActionResponse](
			httpClient,
			baseURL+AdminServiceMarkFounderProcedure,
			opts...,
		),
		listAuditLogs: connect.NewClient[api.ListAuditLogsRequest, api.ListAuditLogsResponse](
			httpClient,
			baseURL+AdminServiceListAuditLogsProcedure,
			opts...,
		),
		getStatistics: connect.NewClient[api.GetStatisticsRequest, api.GetStatisticsResponse](
			httpClient,
			baseURL+AdminServiceGetStatisticsProcedure,
			opts...,
		),
	}
}

type adminServiceClient struct {
	listPendingUsers *connect.Client[api.ListUsersRequest, api.ListUsersResponse]
	listUsers        *connect.Client[api.ListUsersRequest, api.ListUsersResponse]
	approveUser      *connect.Client[api.UserActionRequest, api.UserActionResponse]
	rejectUser       *connect.Client[api.UserActionRequest, api.UserActionResponse]
	suspendUser      *connect.Client[api.UserActionRequest, api.UserActionResponse]
	promoteUser      *connect.Client[api.UserActionRequest, api.UserActionResponse]
	markFounder      *connect.Client[api.UserActionRequest, api.UserActionResponse]
	listAuditLogs    *connect.Client[api.ListAuditLogsRequest, api.ListAuditLogsResponse]
	getStatistics    *connect.Client[api.GetStatisticsRequest, api.GetStatisticsResponse]
}

func (c *adminServiceClient) ListPendingUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	return c.listPendingUsers.CallUnary(ctx, req)
}

func (c *adminServiceClient) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}

func (c *adminServiceClient) ApproveUser(ctx context.Context, req *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error) {
	return c.approveUser.CallUnary(ctx, req)
}

func (c *adminServiceClient) RejectUser(ctx context.Context, req *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error) {
	return c.rejectUser.CallUnary(ctx, req)
}

func (c *adminServiceClient) SuspendUser(ctx context.Context, req *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error) {
	return c.suspendUser.CallUnary(ctx, req)
}

func (c *adminServiceClient) PromoteUser(ctx context.Context, req *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error) {
	return c.promoteUser.CallUnary(ctx, req)
}

func (c *adminServiceClient) MarkFounder(ctx context.Context, req *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error) {
	return c.markFounder.CallUnary(ctx, req)
}

func (c *adminServiceClient) ListAuditLogs(ctx context.Context, req *connect.Request[api.ListAuditLogsRequest]) (*connect.Response[api.ListAuditLogsResponse], error) {
	return c.listAuditLogs.CallUnary(ctx, req)
}

func (c *adminServiceClient) GetStatistics(ctx context.Context, req *connect.Request[api.GetStatisticsRequest]) (*connect.Response[api.GetStatisticsResponse], error) {
	return c.getStatistics.CallUnary(ctx, req)
}

// AdminServiceHandler is an implementation of the AdminService.
type AdminServiceHandler interface {
	ListPendingUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
	ApproveUser(context.Context, *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error)
	RejectUser(context.Context, *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error)
	SuspendUser(context.Context, *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error)
	PromoteUser(context.Context, *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error)
	MarkFounder(context.Context, *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error)
	ListAuditLogs(context.Context, *connect.Request[api.ListAuditLogsRequest]) (*connect.Response[api.ListAuditLogsResponse], error)
	GetStatistics(context.Context, *connect.Request[api.GetStatisticsRequest]) (*connect.Response[api.GetStatisticsResponse], error)
}

// NewAdminServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewAdminServiceHandler(svc AdminServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
	listPendingUsersHandler := connect.NewUnaryHandler(AdminServiceListPendingUsersProcedure, svc.ListPendingUsers, opts...)
	listUsersHandler := connect.NewUnaryHandler(AdminServiceListUsersProcedure, svc.ListUsers, opts...)
	approveUserHandler := connect.NewUnaryHandler(AdminServiceApproveUserProcedure, svc.ApproveUser, opts...)
	rejectUserHandler := connect.NewUnaryHandler(AdminServiceRejectUserProcedure, svc.RejectUser, opts...)
	suspendUserHandler := connect.NewUnaryHandler(AdminServiceSuspendUserProcedure, svc.SuspendUser, opts...)
	promoteUserHandler := connect.NewUnaryHandler(AdminServicePromoteUserProcedure, svc.PromoteUser, opts...)
	markFounderHandler := connect.NewUnaryHandler(AdminServiceMarkFounderProcedure, svc.MarkFounder, opts...)
	listAuditLogsHandler := connect.NewUnaryHandler(AdminServiceListAuditLogsProcedure, svc.ListAuditLogs, opts...)
	getStatisticsHandler := connect.NewUnaryHandler(AdminServiceGetStatisticsProcedure, svc.GetStatistics, opts...)
	return "/warrior.v1.AdminService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AdminServiceListPendingUsersProcedure:
			listPendingUsersHandler.ServeHTTP(w, r)
		case AdminServiceListUsersProcedure:
			listUsersHandler.ServeHTTP(w, r)
		case AdminServiceApproveUserProcedure:
			approveUserHandler.ServeHTTP(w, r)
		case AdminServiceRejectUserProcedure:
			rejectUserHandler.ServeHTTP(w, r)
		case AdminServiceSuspendUserProcedure:
			suspendUserHandler.ServeHTTP(w, r)
		case AdminServicePromoteUserProcedure:
			promoteUserHandler.ServeHTTP(w, r)
		case AdminServiceMarkFounderProcedure:
			markFounderHandler.ServeHTTP(w, r)
		case AdminServiceListAuditLogsProcedure:
			listAuditLogsHandler.ServeHTTP(w, r)
		case AdminServiceGetStatisticsProcedure:
			getStatisticsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
