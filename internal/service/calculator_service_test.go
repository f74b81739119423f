package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptwarrior/warrior/internal/calculator"
	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/pkg/api"
)

func TestCalculateRisk(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	// Pending members may still use the calculator.
	_, token := env.user(models.RolePending, models.StatusPending)
	client := env.calculatorClient(token)

	resp, err := client.CalculateRisk(ctx, connect.NewRequest(&api.CalculateRiskRequest{
		Balance: 5000, RiskPercent: 1, StopLossPips: 25, TakeProfitPips: 50,
	}))
	require.NoError(t, err)
	r := resp.Msg.Result
	assert.Equal(t, calculator.CategoryMini, r.Category)
	assert.Equal(t, 1.0, r.PipValue)
	assert.Equal(t, 50.0, r.RiskAmount)
	assert.Equal(t, 2.0, r.LotSize)
	assert.Equal(t, 100.0, r.MarginRequired)
	assert.Equal(t, 100.0, r.ProfitTarget)
	assert.Equal(t, 2.0, r.RiskReward)

	_, err = client.CalculateRisk(ctx, connect.NewRequest(&api.CalculateRiskRequest{Balance: 5000, RiskPercent: 1}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = env.calculatorClient("").CalculateRisk(ctx, connect.NewRequest(&api.CalculateRiskRequest{Balance: 5000, RiskPercent: 1, StopLossPips: 25}))
	requireCode(t, err, connect.CodeUnauthenticated)
}
