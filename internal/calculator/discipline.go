package calculator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mptwarrior/warrior/internal/models"
)

const (
	// revengeWindow is how soon after a loss another loss counts as revenge trading.
	revengeWindow = 30 * time.Minute

	// maxTradesPerDay is the last trade of a day that does not count as overtrading.
	maxTradesPerDay = 5
)

// emotionalStates are journal moods that mark a trade as driven by emotion.
// Members journal in Indonesian or English.
var emotionalStates = map[string]bool{
	"takut":   true,
	"serakah": true,
	"fear":    true,
	"greed":   true,
}

// disciplineMilestones are the badges, lowest score first.
var disciplineMilestones = []models.DisciplineMilestone{
	{Score: 100, Title: "Novice Warrior", Badge: "Bronze Shield"},
	{Score: 250, Title: "Growing Warrior", Badge: "Silver Shield"},
	{Score: 500, Title: "Strong Warrior", Badge: "Gold Shield"},
	{Score: 750, Title: "Elite Warrior", Badge: "Platinum Shield"},
	{Score: models.MaxDisciplineScore, Title: "Master Warrior", Badge: "Diamond Shield"},
}

// DisciplineEvent is one scored behavior found in a trade.
type DisciplineEvent struct {
	Action models.DisciplineAction `json:"action"`
	Points int                     `json:"points"`
	Reason string                  `json:"reason"`
}

// TradeReview is what the trader declares about a trade beyond the journal
// entry itself.
type TradeReview struct {
	FollowedStrategy bool

	// RiskPercent is the share of the account risked, nil when not reported.
	RiskPercent *float64

	// MaxRiskPercent is the trader's own limit from their settings.
	MaxRiskPercent float64

	// Location decides which trades share a day. Nil means UTC.
	Location *time.Location
}

// AnalyzeTrade scores trade against the trader's earlier trades. earlier
// may include trade itself; it is skipped.
func AnalyzeTrade(trade *models.Trade, earlier []*models.Trade, review TradeReview) []DisciplineEvent {
	var events []DisciplineEvent
	add := func(action models.DisciplineAction, reason string) {
		points, _ := action.Points()
		events = append(events, DisciplineEvent{Action: action, Points: points, Reason: reason})
	}

	if review.FollowedStrategy {
		add(models.DisciplineFollowedStrategy, "Followed the trading plan")
	}
	if strings.TrimSpace(trade.Notes) != "" {
		add(models.DisciplineJournalEntry, "Journaled the trade")
	}

	overRisk := review.RiskPercent != nil && review.MaxRiskPercent > 0 && *review.RiskPercent > review.MaxRiskPercent
	switch {
	case trade.StopLoss == nil:
		add(models.DisciplineNoStopLoss, "Trade had no stop loss")
	case !overRisk:
		add(models.DisciplineRiskManagement, "Stop loss set within the risk limit")
	}
	if overRisk {
		add(models.DisciplineExceededRisk,
			fmt.Sprintf("Risked %.2f%% against a %.2f%% limit", *review.RiskPercent, review.MaxRiskPercent))
	}

	if emotionalStates[strings.ToLower(strings.TrimSpace(trade.EmotionalState))] {
		add(models.DisciplineEmotionalTrade, "Traded under "+trade.EmotionalState)
	}

	others := make([]*models.Trade, 0, len(earlier))
	for _, t := range earlier {
		if t.ID != trade.ID {
			others = append(others, t)
		}
	}

	if trade.Result == models.ResultLoss {
		if prev := latestBefore(others, trade.TradeDate); prev != nil && prev.Result == models.ResultLoss &&
			trade.TradeDate.Sub(prev.TradeDate) < revengeWindow {
			add(models.DisciplineRevengeTrade, "Loss taken within 30 minutes of another loss")
		}
	}

	if n := tradesOnDay(others, trade.TradeDate, review.Location) + 1; n > maxTradesPerDay {
		add(models.DisciplineOvertrading, fmt.Sprintf("Trade %d of the day", n))
	}

	return events
}

// latestBefore returns the most recent trade strictly before t.
func latestBefore(trades []*models.Trade, t time.Time) *models.Trade {
	var latest *models.Trade
	for _, tr := range trades {
		if !tr.TradeDate.Before(t) {
			continue
		}
		if latest == nil || tr.TradeDate.After(latest.TradeDate) {
			latest = tr
		}
	}
	return latest
}

func tradesOnDay(trades []*models.Trade, day time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := day.In(loc).Date()
	n := 0
	for _, tr := range trades {
		ty, tm, td := tr.TradeDate.In(loc).Date()
		if ty == y && tm == m && td == d {
			n++
		}
	}
	return n
}

// DisciplineMilestones reports every milestone and whether score reached it.
func DisciplineMilestones(score int) []models.DisciplineMilestone {
	out := make([]models.DisciplineMilestone, len(disciplineMilestones))
	for i, m := range disciplineMilestones {
		m.Achieved = score >= m.Score
		out[i] = m
	}
	return out
}

// NextDisciplineMilestone returns the lowest milestone above score, or nil
// once every milestone is reached.
func NextDisciplineMilestone(score int) *models.DisciplineMilestone {
	i := sort.Search(len(disciplineMilestones), func(i int) bool {
		return disciplineMilestones[i].Score > score
	})
	if i == len(disciplineMilestones) {
		return nil
	}
	m := disciplineMilestones[i]
	return &m
}
