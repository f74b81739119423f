package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/pkg/api"
)

func TestCreateTradeFeedsDiscipline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, token := env.warrior()
	trades := env.tradeClient(token)

	// Midday in both UTC and Jakarta, so every trade shares one day.
	at := func(min int) *time.Time {
		ts := time.Date(2025, 3, 12, 5, min, 0, 0, time.UTC)
		return &ts
	}
	stop, risk := 1.08, 0.5

	first, err := trades.CreateTrade(ctx, connect.NewRequest(&api.CreateTradeRequest{
		Pair: "EURUSD", Position: models.PositionBuy, Result: models.ResultWin, Pips: 20,
		StopLoss: &stop, Notes: "waited for the retest", TradeDate: at(0),
		FollowedStrategy: true, RiskPercent: &risk,
	}))
	require.NoError(t, err)
	require.Len(t, first.Msg.Discipline, 3)
	assert.Equal(t, 13, first.Msg.Discipline[2].NewScore)

	_, err = trades.CreateTrade(ctx, connect.NewRequest(&api.CreateTradeRequest{
		Pair: "EURUSD", Position: models.PositionSell, Result: models.ResultLoss, Pips: -15, TradeDate: at(10),
	}))
	require.NoError(t, err)

	third, err := trades.CreateTrade(ctx, connect.NewRequest(&api.CreateTradeRequest{
		Pair: "EURUSD", Position: models.PositionSell, Result: models.ResultLoss, Pips: -12,
		StopLoss: &stop, TradeDate: at(20),
	}))
	require.NoError(t, err)
	var got []models.DisciplineAction
	for _, l := range third.Msg.Discipline {
		got = append(got, l.Action)
		assert.Equal(t, third.Msg.Trade.ID, l.TradeID)
	}
	assert.Equal(t, []models.DisciplineAction{models.DisciplineRiskManagement, models.DisciplineRevengeTrade}, got)

	resp, err := env.disciplineClient(token).GetDiscipline(ctx, connect.NewRequest(&api.GetDisciplineRequest{}))
	require.NoError(t, err)
	// 13, then -8 for no stop, then +5 and -10.
	assert.Equal(t, 0, resp.Msg.Score)
	require.Len(t, resp.Msg.History, 6)
	assert.Equal(t, models.DisciplineRevengeTrade, resp.Msg.History[0].Action)
	require.NotNil(t, resp.Msg.NextMilestone)
	assert.Equal(t, 100, resp.Msg.NextMilestone.Score)
	require.Len(t, resp.Msg.Milestones, 5)
	assert.False(t, resp.Msg.Milestones[0].Achieved)

	resp, err = env.disciplineClient(token).GetDiscipline(ctx, connect.NewRequest(&api.GetDisciplineRequest{Limit: 2}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.History, 2)
}

func TestRecordDiscipline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	member, memberToken := env.warrior()
	_, adminToken := env.admin()

	req := &api.RecordDisciplineRequest{UserID: member.ID, Action: models.DisciplineFollowedStrategy, Reason: "mentor review"}

	_, err := env.disciplineClient(memberToken).RecordDiscipline(ctx, connect.NewRequest(req))
	requireCode(t, err, connect.CodePermissionDenied)

	admin := env.disciplineClient(adminToken)
	resp, err := admin.RecordDiscipline(ctx, connect.NewRequest(req))
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Msg.Entry.NewScore)
	assert.Equal(t, "mentor review", resp.Msg.Entry.Reason)

	_, err = admin.RecordDiscipline(ctx, connect.NewRequest(&api.RecordDisciplineRequest{UserID: member.ID, Action: "MEDITATED"}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = admin.RecordDiscipline(ctx, connect.NewRequest(&api.RecordDisciplineRequest{UserID: "ghost", Action: models.DisciplineJournalEntry}))
	requireCode(t, err, connect.CodeNotFound)

	stored, err := env.store.GetUserByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.DisciplineScore)

	logs, err := env.store.ListAuditLogs(ctx, 10)
	require.NoError(t, err)
	var audited bool
	for _, l := range logs {
		audited = audited || (l.Action == models.AuditDisciplineSet && l.TargetUser == member.ID)
	}
	assert.True(t, audited)
}
