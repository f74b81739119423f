package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mptwarrior/warrior/pkg/api"
)

// TradeServiceName is the fully-qualified name of the TradeService.
const TradeServiceName = "warrior.v1.TradeService"

// Procedures of the TradeService.
const (
	TradeServiceCreateTradeProcedure   = "/warrior.v1.TradeService/CreateTrade"
	TradeServiceGetTradeProcedure      = "/warrior.v1.TradeService/GetTrade"
	TradeServiceListTradesProcedure    = "/warrior.v1.TradeService/ListTrades"
	TradeServiceUpdateTradeProcedure   = "/warrior.v1.TradeService/UpdateTrade"
	TradeServiceDeleteTradeProcedure   = "/warrior.v1.TradeService/DeleteTrade"
	TradeServiceGetTradeStatsProcedure = "/warrior.v1.TradeService/GetTradeStats"
)

// TradeServiceClient is a client for the TradeService.
type TradeServiceClient interface {
	CreateTrade(context.Context, *connect.Request[api.CreateTradeRequest]) (*connect.Response[api.TradeResponse], error)
	GetTrade(context.Context, *connect.Request[api.GetTradeRequest]) (*connect.Response[api.TradeResponse], error)
	ListTrades(context.Context, *connect.Request[api.ListTradesRequest]) (*connect.Response[api.ListTradesResponse], error)
	UpdateTrade(context.Context, *connect.Request[api.UpdateTradeRequest]) (*connect.Response[api.TradeResponse], error)
	DeleteTrade(context.Context, *connect.Request[api.GetTradeRequest]) (*connect.Response[api.DeleteTradeResponse], error)
	GetTradeStats(context.Context, *connect.Request[api.GetTradeStatsRequest]) (*connect.Response[api.GetTradeStatsResponse], error)
}

// NewTradeServiceClient constructs a client for the TradeService. baseURL includes the /api
// prefix, e.g. http://localhost:8080/api.
func NewTradeServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) TradeServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
	return &tradeServiceClient{
		createTrade: connect.NewClient[api.CreateTradeRequest, api.TradeResponse](
			httpClient,
			baseURL+TradeServiceCreateTradeProcedure,
			opts...,
		),
		getTrade: connect.NewClient[api.GetTradeRequest, api.TradeResponse](
			httpClient,
			baseURL+TradeServiceGetTradeProcedure,
			opts...,
		),
		listTrades: connect.NewClient[api.ListTradesRequest, api.ListTradesResponse](
			httpClient,
			baseURL+TradeServiceListTradesProcedure,
			opts...,
		),
		updateTrade: connect.NewClient[api.UpdateTradeRequest, api.TradeResponse](
			httpClient,
			baseURL+TradeServiceUpdateTradeProcedure,
			opts...,
		),
		deleteTrade: connect.NewClient[api.GetTradeRequest, api.DeleteTradeResponse](
			httpClient,
			baseURL+TradeServiceDeleteTradeProcedure,
			opts...,
		),
		getTradeStats: connect.NewClient[api.GetTradeStatsRequest, api.GetTradeStatsResponse](
			httpClient,
			baseURL+TradeServiceGetTradeStatsProcedure,
			opts...,
		),
	}
}

type tradeServiceClient struct {
	createTrade   *connect.Client[api.CreateTradeRequest, api.TradeResponse]
	getTrade      *connect.Client[api.GetTradeRequest, api.TradeResponse]
	listTrades    *connect.Client[api.ListTradesRequest, api.ListTradesResponse]
	updateTrade   *connect.Client[api.UpdateTradeRequest, api.TradeResponse]
	deleteTrade   *connect.Client[api.GetTradeRequest, api.DeleteTradeResponse]
	getTradeStats *connect.Client[api.GetTradeStatsRequest, api.GetTradeStatsResponse]
}

func (c *tradeServiceClient) CreateTrade(ctx context.Context, req *connect.Request[api.CreateTradeRequest]) (*connect.Response[api.TradeResponse], error) {
	return c.createTrade.CallUnary(ctx, req)
}

func (c *tradeServiceClient) GetTrade(ctx context.Context, req *connect.Request[api.GetTradeRequest]) (*connect.Response[api.TradeResponse], error) {
	return c.getTrade.CallUnary(ctx, req)
}

func (c *tradeServiceClient) ListTrades(ctx context.Context, req *connect.Request[api.ListTradesRequest]) (*connect.Response[api.ListTradesResponse], error) {
	return c.listTrades.CallUnary(ctx, req)
}

func (c *tradeServiceClient) UpdateTrade(ctx context.Context, req *connect.Request[api.UpdateTradeRequest]) (*connect.Response[api.TradeResponse], error) {
	return c.updateTrade.CallUnary(ctx, req)
}

func (c *tradeServiceClient) DeleteTrade(ctx context.Context, req *connect.Request[api.GetTradeRequest]) (*connect.Response[api.DeleteTradeResponse], error) {
	return c.deleteTrade.CallUnary(ctx, req)
}

func (c *tradeServiceClient) GetTradeStats(ctx context.Context, req *connect.Request[api.GetTradeStatsRequest]) (*connect.Response[api.GetTradeStatsResponse], error) {
	return c.getTradeStats.CallUnary(ctx, req)
}

// TradeServiceHandler is an implementation of the TradeService.
type TradeServiceHandler interface {
	CreateTrade(context.Context, *connect.Request[api.CreateTradeRequest]) (*connect.Response[api.TradeResponse], error)
	GetTrade(context.Context, *connect.Request[api.GetTradeRequest]) (*connect.Response[api.TradeResponse], error)
	ListTrades(context.Context, *connect.Request[api.ListTradesRequest]) (*connect.Response[api.ListTradesResponse], error)
	UpdateTrade(context.Context, *connect.Request[api.UpdateTradeRequest]) (*connect.Response[api.TradeResponse], error)
	DeleteTrade(context.Context, *connect.Request[api.GetTradeRequest]) (*connect.Response[api.DeleteTradeResponse], error)
	GetTradeStats(context.Context, *connect.Request[api.GetTradeStatsRequest]) (*connect.Response[api.GetTradeStatsResponse], error)
}

// NewTradeServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewTradeServiceHandler(svc TradeServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
	createTradeHandler := connect.NewUnaryHandler(TradeServiceCreateTradeProcedure, svc.CreateTrade, opts...)
	getTradeHandler := connect.NewUnaryHandler(TradeServiceGetTradeProcedure, svc.GetTrade, opts...)
	listTradesHandler := connect.NewUnaryHandler(TradeServiceListTradesProcedure, svc.ListTrades, opts...)
	updateTradeHandler := connect.NewUnaryHandler(TradeServiceUpdateTradeProcedure, svc.UpdateTrade, opts...)
	deleteTradeHandler := connect.NewUnaryHandler(TradeServiceDeleteTradeProcedure, svc.DeleteTrade, opts...)
	getTradeStatsHandler := connect.NewUnaryHandler(TradeServiceGetTradeStatsProcedure, svc.GetTradeStats, opts...)
	return "/warrior.v1.TradeService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case TradeServiceCreateTradeProcedure:
			createTradeHandler.ServeHTTP(w, r)
		case TradeServiceGetTradeProcedure:
			getTradeHandler.ServeHTTP(w, r)
		case TradeServiceListTradesProcedure:
			listTradesHandler.ServeHTTP(w, r)
		case TradeServiceUpdateTradeProcedure:
			updateTradeHandler.ServeHTTP(w, r)
		case TradeServiceDeleteTradeProcedure:
			deleteTradeHandler.ServeHTTP(w, r)
		case TradeServiceGetTradeStatsProcedure:
			getTradeStatsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
