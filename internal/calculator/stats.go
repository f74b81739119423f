package calculator

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mptwarrior/warrior/internal/models"
)

// TradeStats summarizes a trade journal.
type TradeStats struct {
	TotalTrades int     `json:"totalTrades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Breakevens  int     `json:"breakevens"`
	WinRate     float64 `json:"winRate"`
	TotalPips   float64 `json:"totalPips"`
	BestWin     float64 `json:"bestWin"`
	WorstLoss   float64 `json:"worstLoss"`

	// CurrentStreak counts the newest consecutive trades sharing StreakResult.
	CurrentStreak int                `json:"currentStreak"`
	StreakResult  models.TradeResult `json:"streakResult,omitempty"`
}

// ComputeTradeStats aggregates trades in any order. Win rate is wins over all
// trades as a percentage; win rate and total pips are rounded to 2dp.
func ComputeTradeStats(trades []*models.Trade) TradeStats {
	var stats TradeStats
	pips := decimal.Zero

	for _, t := range trades {
		stats.TotalTrades++
		pips = pips.Add(decimal.NewFromFloat(t.Pips))
		switch t.Result {
		case models.ResultWin:
			stats.Wins++
			stats.BestWin = max(stats.BestWin, t.Pips)
		case models.ResultLoss:
			stats.Losses++
			stats.WorstLoss = min(stats.WorstLoss, t.Pips)
		case models.ResultBreakeven:
			stats.Breakevens++
		}
	}

	if stats.TotalTrades > 0 {
		rate := decimal.NewFromInt(int64(stats.Wins)).
			Div(decimal.NewFromInt(int64(stats.TotalTrades))).
			Mul(decimal.NewFromInt(100))
		stats.WinRate = rate.Round(2).InexactFloat64()
	}
	stats.TotalPips = pips.Round(2).InexactFloat64()

	stats.CurrentStreak, stats.StreakResult = currentStreak(trades)
	return stats
}

func currentStreak(trades []*models.Trade) (int, models.TradeResult) {
	if len(trades) == 0 {
		return 0, ""
	}
	ordered := make([]*models.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TradeDate.After(ordered[j].TradeDate)
	})

	result := ordered[0].Result
	if result == models.ResultBreakeven {
		return 0, ""
	}
	n := 0
	for _, t := range ordered {
		if t.Result != result {
			break
		}
		n++
	}
	return n, result
}

// DistinctTradeDays counts calendar days (UTC) with at least one trade in [from, to).
func DistinctTradeDays(trades []*models.Trade, from, to time.Time) int {
	days := make(map[string]struct{})
	for _, t := range trades {
		if t.TradeDate.Before(from) || !t.TradeDate.Before(to) {
			continue
		}
		days[t.TradeDate.UTC().Format(time.DateOnly)] = struct{}{}
	}
	return len(days)
}

// ConsecutiveTradeDays returns the length of the run of consecutive trading
// days ending on the most recent trade day.
func ConsecutiveTradeDays(trades []*models.Trade) int {
	if len(trades) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(trades))
	var latest time.Time
	for _, t := range trades {
		d := t.TradeDate.UTC().Truncate(24 * time.Hour)
		seen[d.Format(time.DateOnly)] = struct{}{}
		if d.After(latest) {
			latest = d
		}
	}

	run := 0
	for day := latest; ; day = day.AddDate(0, 0, -1) {
		if _, ok := seen[day.Format(time.DateOnly)]; !ok {
			break
		}
		run++
	}
	return run
}
