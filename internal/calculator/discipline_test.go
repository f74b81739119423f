package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptwarrior/warrior/internal/models"
)

func floatp(v float64) *float64 { return &v }

func actions(events []DisciplineEvent) []models.DisciplineAction {
	out := make([]models.DisciplineAction, len(events))
	for i, e := range events {
		out[i] = e.Action
	}
	return out
}

func TestAnalyzeTrade(t *testing.T) {
	at := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	stop := floatp(1.0800)
	trade := func(id string, result models.TradeResult, when time.Time) *models.Trade {
		return &models.Trade{ID: id, Result: result, StopLoss: stop, TradeDate: when}
	}

	tests := []struct {
		name    string
		trade   *models.Trade
		earlier []*models.Trade
		review  TradeReview
		want    []models.DisciplineAction
	}{
		{
			name:   "disciplined trade",
			trade:  &models.Trade{ID: "t", Result: models.ResultWin, StopLoss: stop, Notes: "waited for the retest", TradeDate: at},
			review: TradeReview{FollowedStrategy: true, RiskPercent: floatp(1), MaxRiskPercent: 2},
			want: []models.DisciplineAction{
				models.DisciplineFollowedStrategy, models.DisciplineJournalEntry, models.DisciplineRiskManagement,
			},
		},
		{
			name:  "no stop loss",
			trade: &models.Trade{ID: "t", Result: models.ResultWin, TradeDate: at},
			want:  []models.DisciplineAction{models.DisciplineNoStopLoss},
		},
		{
			name:   "risk over the limit",
			trade:  trade("t", models.ResultWin, at),
			review: TradeReview{RiskPercent: floatp(3), MaxRiskPercent: 1},
			want:   []models.DisciplineAction{models.DisciplineExceededRisk},
		},
		{
			name:   "no stop and too much risk",
			trade:  &models.Trade{ID: "t", Result: models.ResultWin, TradeDate: at},
			review: TradeReview{RiskPercent: floatp(3), MaxRiskPercent: 1},
			want:   []models.DisciplineAction{models.DisciplineNoStopLoss, models.DisciplineExceededRisk},
		},
		{
			name:  "fearful trade",
			trade: &models.Trade{ID: "t", Result: models.ResultWin, StopLoss: stop, EmotionalState: "Takut", TradeDate: at},
			want:  []models.DisciplineAction{models.DisciplineRiskManagement, models.DisciplineEmotionalTrade},
		},
		{
			name:    "loss right after a loss",
			trade:   trade("t", models.ResultLoss, at),
			earlier: []*models.Trade{trade("a", models.ResultLoss, at.Add(-20*time.Minute))},
			want:    []models.DisciplineAction{models.DisciplineRiskManagement, models.DisciplineRevengeTrade},
		},
		{
			name:    "loss long after a loss",
			trade:   trade("t", models.ResultLoss, at),
			earlier: []*models.Trade{trade("a", models.ResultLoss, at.Add(-45*time.Minute))},
			want:    []models.DisciplineAction{models.DisciplineRiskManagement},
		},
		{
			name:  "only the latest earlier trade counts for revenge",
			trade: trade("t", models.ResultLoss, at),
			earlier: []*models.Trade{
				trade("a", models.ResultLoss, at.Add(-25*time.Minute)),
				trade("b", models.ResultWin, at.Add(-10*time.Minute)),
			},
			want: []models.DisciplineAction{models.DisciplineRiskManagement},
		},
		{
			name:  "sixth trade of the day",
			trade: trade("t", models.ResultWin, at),
			earlier: []*models.Trade{
				trade("t", models.ResultWin, at), // the trade itself is ignored
				trade("a", models.ResultWin, at.Add(-4*time.Hour)),
				trade("b", models.ResultWin, at.Add(-3*time.Hour)),
				trade("c", models.ResultWin, at.Add(-2*time.Hour)),
				trade("d", models.ResultWin, at.Add(-time.Hour)),
				trade("e", models.ResultWin, at.Add(time.Hour)),
				trade("f", models.ResultWin, at.Add(-24*time.Hour)),
			},
			want: []models.DisciplineAction{models.DisciplineRiskManagement, models.DisciplineOvertrading},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeTrade(tt.trade, tt.earlier, tt.review)
			assert.Equal(t, tt.want, actions(got))
			for _, e := range got {
				want, _ := e.Action.Points()
				assert.Equal(t, want, e.Points)
				assert.NotEmpty(t, e.Reason)
			}
		})
	}
}

func TestAnalyzeTradeDayFollowsTimezone(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	// 18:00 UTC is 01:00 the next day in Jakarta.
	at := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)
	var earlier []*models.Trade
	for i := 1; i <= 5; i++ {
		earlier = append(earlier, &models.Trade{ID: string(rune('a' + i)), TradeDate: at.Add(-time.Duration(i) * time.Hour)})
	}
	trade := &models.Trade{ID: "t", StopLoss: floatp(1), TradeDate: at}

	assert.Contains(t, actions(AnalyzeTrade(trade, earlier, TradeReview{})), models.DisciplineOvertrading)
	assert.NotContains(t, actions(AnalyzeTrade(trade, earlier, TradeReview{Location: jakarta})), models.DisciplineOvertrading)
}

func TestDisciplineMilestones(t *testing.T) {
	ms := DisciplineMilestones(260)
	require.Len(t, ms, 5)
	assert.True(t, ms[0].Achieved)
	assert.True(t, ms[1].Achieved)
	assert.False(t, ms[2].Achieved)

	next := NextDisciplineMilestone(260)
	require.NotNil(t, next)
	assert.Equal(t, 500, next.Score)
	assert.Equal(t, "Gold Shield", next.Badge)

	next = NextDisciplineMilestone(100)
	require.NotNil(t, next)
	assert.Equal(t, 250, next.Score)

	assert.Nil(t, NextDisciplineMilestone(models.MaxDisciplineScore))
}

func TestClampDisciplineScore(t *testing.T) {
	assert.Equal(t, 0, models.ClampDisciplineScore(-8))
	assert.Equal(t, 995, models.ClampDisciplineScore(995))
	assert.Equal(t, models.MaxDisciplineScore, models.ClampDisciplineScore(1003))
}
