package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mptwarrior/warrior/pkg/api"
)

// DisciplineServiceName is the fully-qualified name of the DisciplineService.
const DisciplineServiceName = "warrior.v1.DisciplineService"

// Procedures of the DisciplineService.
const (
	DisciplineServiceGetDisciplineProcedure    = "/warrior.v1.DisciplineService/GetDiscipline"
	DisciplineServiceRecordDisciplineProcedure = "/warrior.v1.DisciplineService/RecordDiscipline"
)

// DisciplineServiceClient is a client for the DisciplineService.
type DisciplineServiceClient interface {
	GetDiscipline(context.Context, *connect.Request[api.GetDisciplineRequest]) (*connect.Response[api.GetDisciplineResponse], error)
	RecordDiscipline(context.Context, *connect.Request[api.RecordDisciplineRequest]) (*connect.Response[api.RecordDisciplineResponse], error)
}

// NewDisciplineServiceClient constructs a client for the DisciplineService. baseURL includes the /api
// prefix, e.g. http://localhost:8080/api.
func NewDisciplineServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) DisciplineServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
	return &disciplineServiceClient{
		getDiscipline: connect.NewClient[api.GetDisciplineRequest, api.GetDisciplineResponse](
			httpClient,
			baseURL+DisciplineServiceGetDisciplineProcedure,
			opts...,
		),
		recordDiscipline: connect.NewClient[api.RecordDisciplineRequest, api.RecordDisciplineResponse](
			httpClient,
			baseURL+DisciplineServiceRecordDisciplineProcedure,
			opts...,
		),
	}
}

type disciplineServiceClient struct {
	getDiscipline    *connect.Client[api.GetDisciplineRequest, api.GetDisciplineResponse]
	recordDiscipline *connect.Client[api.RecordDisciplineRequest, api.RecordDisciplineResponse]
}

func (c *disciplineServiceClient) GetDiscipline(ctx context.Context, req *connect.Request[api.GetDisciplineRequest]) (*connect.Response[api.GetDisciplineResponse], error) {
	return c.getDiscipline.CallUnary(ctx, req)
}

func (c *disciplineServiceClient) RecordDiscipline(ctx context.Context, req *connect.Request[api.RecordDisciplineRequest]) (*connect.Response[api.RecordDisciplineResponse], error) {
	return c.recordDiscipline.CallUnary(ctx, req)
}

// DisciplineServiceHandler is an implementation of the DisciplineService.
type DisciplineServiceHandler interface {
	GetDiscipline(context.Context, *connect.Request[api.GetDisciplineRequest]) (*connect.Response[api.GetDisciplineResponse], error)
	RecordDiscipline(context.Context, *connect.Request[api.RecordDisciplineRequest]) (*connect.Response[api.RecordDisciplineResponse], error)
}

// NewDisciplineServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewDisciplineServiceHandler(svc DisciplineServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
	getDisciplineHandler := connect.NewUnaryHandler(DisciplineServiceGetDisciplineProcedure, svc.GetDiscipline, opts...)
	recordDisciplineHandler := connect.NewUnaryHandler(DisciplineServiceRecordDisciplineProcedure, svc.RecordDiscipline, opts...)
	return "/warrior.v1.DisciplineService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case DisciplineServiceGetDisciplineProcedure:
			getDisciplineHandler.ServeHTTP(w, r)
		case DisciplineServiceRecordDisciplineProcedure:
			recordDisciplineHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
