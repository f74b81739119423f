package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mptwarrior/warrior/internal/calculator"
	"github.com/mptwarrior/warrior/pkg/api"
)

// CalculatorService sizes positions. It keeps no state.
type CalculatorService struct{}

func NewCalculatorService() *CalculatorService {
	return &CalculatorService{}
}

func (s *CalculatorService) CalculateRisk(ctx context.Context, req *connect.Request[api.CalculateRiskRequest]) (*connect.Response[api.CalculateRiskResponse], error) {
	msg := req.Msg
	result, err := calculator.CalculateRisk(calculator.RiskInput{
		Balance:        msg.Balance,
		RiskPercent:    msg.RiskPercent,
		StopLossPips:   msg.StopLossPips,
		TakeProfitPips: msg.TakeProfitPips,
		PipValue:       msg.PipValue,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CalculateRiskResponse{Result: *result}), nil
}
