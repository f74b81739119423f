package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mptwarrior/warrior/pkg/api"
)

// LeaderboardServiceName is the fully-qualified name of the LeaderboardService.
const LeaderboardServiceName = "warrior.v1.LeaderboardService"

// Procedures of the LeaderboardService.
const (
	LeaderboardServiceGetLeaderboardProcedure = "/warrior.v1.LeaderboardService/GetLeaderboard"
	LeaderboardServiceGetTopThreeProcedure    = "/warrior.v1.LeaderboardService/GetTopThree"
	LeaderboardServiceGetUserRankingProcedure = "/warrior.v1.LeaderboardService/GetUserRanking"
	LeaderboardServiceAdjustPointsProcedure   = "/warrior.v1.LeaderboardService/AdjustPoints"
	LeaderboardServiceRecalculateProcedure    = "/warrior.v1.LeaderboardService/Recalculate"
)

// LeaderboardServiceClient is a client for the LeaderboardService.
type LeaderboardServiceClient interface {
	GetLeaderboard(context.Context, *connect.Request[api.GetLeaderboardRequest]) (*connect.Response[api.GetLeaderboardResponse], error)
	GetTopThree(context.Context, *connect.Request[api.GetTopThreeRequest]) (*connect.Response[api.GetTopThreeResponse], error)
	GetUserRanking(context.Context, *connect.Request[api.GetUserRankingRequest]) (*connect.Response[api.GetUserRankingResponse], error)
	AdjustPoints(context.Context, *connect.Request[api.AdjustPointsRequest]) (*connect.Response[api.AdjustPointsResponse], error)
	Recalculate(context.Context, *connect.Request[api.RecalculateRequest]) (*connect.Response[api.RecalculateResponse], error)
}

// NewLeaderboardServiceClient constructs a client for the LeaderboardService. baseURL includes the /api
// prefix, e.g. http://localhost:8080/api.
func NewLeaderboardServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LeaderboardServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
	return &leaderboardServiceClient{
		getLeaderboard: connect.NewClient[api.GetLeaderboardRequest, api.GetLeaderboardResponse](
			httpClient,
			baseURL+LeaderboardServiceGetLeaderboardProcedure,
			opts...,
		),
		getTopThree: connect.NewClient[api.GetTopThreeRequest, api.GetTopThreeResponse](
			httpClient,
			baseURL+LeaderboardServiceGetTopThreeProcedure,
			opts...,
		),
		getUserRanking: connect.NewClient[api.GetUserRankingRequest, api.GetUserRankingResponse](
			httpClient,
			baseURL+LeaderboardServiceGetUserRankingProcedure,
			opts...,
		),
		adjustPoints: connect.NewClient[api.AdjustPointsRequest, api.AdjustPointsResponse](
			httpClient,
			baseURL+LeaderboardServiceAdjustPointsProcedure,
			opts...,
		),
		recalculate: connect.NewClient[api.RecalculateRequest, api.RecalculateResponse](
			httpClient,
			baseURL+LeaderboardServiceRecalculateProcedure,
			opts...,
		),
	}
}

type leaderboardServiceClient struct {
	getLeaderboard *connect.Client[api.GetLeaderboardRequest, api.GetLeaderboardResponse]
	getTopThree    *connect.Client[api.GetTopThreeRequest, api.GetTopThreeResponse]
	getUserRanking *connect.Client[api.GetUserRankingRequest, api.GetUserRankingResponse]
	adjustPoints   *connect.Client[api.AdjustPointsRequest, api.AdjustPointsResponse]
	recalculate    *connect.Client[api.RecalculateRequest, api.RecalculateResponse]
}

func (c *leaderboardServiceClient) GetLeaderboard(ctx context.Context, req *connect.Request[api.GetLeaderboardRequest]) (*connect.Response[api.GetLeaderboardResponse], error) {
	return c.getLeaderboard.CallUnary(ctx, req)
}

func (c *leaderboardServiceClient) GetTopThree(ctx context.Context, req *connect.Request[api.GetTopThreeRequest]) (*connect.Response[api.GetTopThreeResponse], error) {
	return c.getTopThree.CallUnary(ctx, req)
}

func (c *leaderboardServiceClient) GetUserRanking(ctx context.Context, req *connect.Request[api.GetUserRankingRequest]) (*connect.Response[api.GetUserRankingResponse], error) {
	return c.getUserRanking.CallUnary(ctx, req)
}

func (c *leaderboardServiceClient) AdjustPoints(ctx context.Context, req *connect.Request[api.AdjustPointsRequest]) (*connect.Response[api.AdjustPointsResponse], error) {
	return c.adjustPoints.CallUnary(ctx, req)
}

func (c *leaderboardServiceClient) Recalculate(ctx context.Context, req *connect.Request[api.RecalculateRequest]) (*connect.Response[api.RecalculateResponse], error) {
	return c.recalculate.CallUnary(ctx, req)
}

// LeaderboardServiceHandler is an implementation of the LeaderboardService.
type LeaderboardServiceHandler interface {
	GetLeaderboard(context.Context, *connect.Request[api.GetLeaderboardRequest]) (*connect.Response[api.GetLeaderboardResponse], error)
	GetTopThree(context.Context, *connect.Request[api.GetTopThreeRequest]) (*connect.Response[api.GetTopThreeResponse], error)
	GetUserRanking(context.Context, *connect.Request[api.GetUserRankingRequest]) (*connect.Response[api.GetUserRankingResponse], error)
	AdjustPoints(context.Context, *connect.Request[api.AdjustPointsRequest]) (*connect.Response[api.AdjustPointsResponse], error)
	Recalculate(context.Context, *connect.Request[api.RecalculateRequest]) (*connect.Response[api.RecalculateResponse], error)
}

// NewLeaderboardServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewLeaderboardServiceHandler(svc LeaderboardServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
	getLeaderboardHandler := connect.NewUnaryHandler(LeaderboardServiceGetLeaderboardProcedure, svc.GetLeaderboard, opts...)
	getTopThreeHandler := connect.NewUnaryHandler(LeaderboardServiceGetTopThreeProcedure, svc.GetTopThree, opts...)
	getUserRankingHandler := connect.NewUnaryHandler(LeaderboardServiceGetUserRankingProcedure, svc.GetUserRanking, opts...)
	adjustPointsHandler := connect.NewUnaryHandler(LeaderboardServiceAdjustPointsProcedure, svc.AdjustPoints, opts...)
	recalculateHandler := connect.NewUnaryHandler(LeaderboardServiceRecalculateProcedure, svc.Recalculate, opts...)
	return "/warrior.v1.LeaderboardService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LeaderboardServiceGetLeaderboardProcedure:
			getLeaderboardHandler.ServeHTTP(w, r)
		case LeaderboardServiceGetTopThreeProcedure:
			getTopThreeHandler.ServeHTTP(w, r)
		case LeaderboardServiceGetUserRankingProcedure:
			getUserRankingHandler.ServeHTTP(w, r)
		case LeaderboardServiceAdjustPointsProcedure:
			adjustPointsHandler.ServeHTTP(w, r)
		case LeaderboardServiceRecalculateProcedure:
			recalculateHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
