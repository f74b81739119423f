package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mptwarrior/warrior/pkg/api"
)

// CalculatorServiceName is the fully-qualified name of the CalculatorService.
const CalculatorServiceName = "warrior.v1.CalculatorService"

// Procedures of the CalculatorService.
const (
	CalculatorServiceCalculateRiskProcedure = "/warrior.v1.CalculatorService/CalculateRisk"
)

// CalculatorServiceClient is a client for the CalculatorService.
type CalculatorServiceClient interface {
	CalculateRisk(context.Context, *connect.Request[api.CalculateRiskRequest]) (*connect.Response[api.CalculateRiskResponse], error)
}

// NewCalculatorServiceClient constructs a client for the CalculatorService. baseURL includes the /api
// prefix, e.g. http://localhost:8080/api.
func NewCalculatorServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) CalculatorServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
	return &calculatorServiceClient{
		calculateRisk: connect.NewClient[api.CalculateRiskRequest, api.CalculateRiskResponse](
			httpClient,
			baseURL+CalculatorServiceCalculateRiskProcedure,
			opts...,
		),
	}
}

type calculatorServiceClient struct {
	calculateRisk *connect.Client[api.CalculateRiskRequest, api.CalculateRiskResponse]
}

func (c *calculatorServiceClient) CalculateRisk(ctx context.Context, req *connect.Request[api.CalculateRiskRequest]) (*connect.Response[api.CalculateRiskResponse], error) {
	return c.calculateRisk.CallUnary(ctx, req)
}

// CalculatorServiceHandler is an implementation of the CalculatorService.
type CalculatorServiceHandler interface {
	CalculateRisk(context.Context, *connect.Request[api.CalculateRiskRequest]) (*connect.Response[api.CalculateRiskResponse], error)
}

// NewCalculatorServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewCalculatorServiceHandler(svc CalculatorServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
	calculateRiskHandler := connect.NewUnaryHandler(CalculatorServiceCalculateRiskProcedure, svc.CalculateRisk, opts...)
	return "/warrior.v1.CalculatorService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CalculatorServiceCalculateRiskProcedure:
			calculateRiskHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
