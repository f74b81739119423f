package models

import "time"

// MaxDisciplineScore caps the discipline score.
const MaxDisciplineScore = 1000

// DisciplineAction is one kind of behavior that moves the discipline score.
type DisciplineAction string

const (
	DisciplineFollowedStrategy DisciplineAction = "FOLLOWED_STRATEGY"
	DisciplineJournalEntry     DisciplineAction = "JOURNAL_ENTRY"
	DisciplineRiskManagement   DisciplineAction = "RISK_MANAGEMENT"
	DisciplineRevengeTrade     DisciplineAction = "REVENGE_TRADE"
	DisciplineOvertrading      DisciplineAction = "OVERTRADING"
	DisciplineEmotionalTrade   DisciplineAction = "EMOTIONAL_TRADE"
	DisciplineNoStopLoss       DisciplineAction = "NO_STOP_LOSS"
	DisciplineExceededRisk     DisciplineAction = "EXCEEDED_RISK"
)

// disciplinePoints is the score change of each action.
var disciplinePoints = map[DisciplineAction]int{
	DisciplineFollowedStrategy: 5,
	DisciplineJournalEntry:     3,
	DisciplineRiskManagement:   5,
	DisciplineRevengeTrade:     -10,
	DisciplineOvertrading:      -5,
	DisciplineEmotionalTrade:   -7,
	DisciplineNoStopLoss:       -8,
	DisciplineExceededRisk:     -6,
}

// Points returns the score change for a, and false for an unknown action.
func (a DisciplineAction) Points() (int, bool) {
	p, ok := disciplinePoints[a]
	return p, ok
}

// DisciplineLog records one change to a user's discipline score.
// UserID is the partition key.
type DisciplineLog struct {
	ID            string           `json:"id"`
	UserID        string           `json:"userId"`
	Action        DisciplineAction `json:"action"`
	Points        int              `json:"points"`
	PreviousScore int              `json:"previousScore"`
	NewScore      int              `json:"newScore"`
	TradeID       string           `json:"tradeId,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}

// DisciplineMilestone is a score threshold that earns a badge.
type DisciplineMilestone struct {
	Score    int    `json:"score"`
	Title    string `json:"title"`
	Badge    string `json:"badge"`
	Achieved bool   `json:"achieved"`
}

// ClampDisciplineScore keeps a score inside 0..MaxDisciplineScore.
func ClampDisciplineScore(score int) int {
	return max(0, min(score, MaxDisciplineScore))
}
