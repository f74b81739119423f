package api

import "github.com/mptwarrior/warrior/internal/models"

type GetDisciplineRequest struct {
	// Limit caps History; zero means 20.
	Limit int `json:"limit,omitempty"`
}

type GetDisciplineResponse struct {
	Score         int                          `json:"score"`
	Milestones    []models.DisciplineMilestone `json:"milestones"`
	NextMilestone *models.DisciplineMilestone  `json:"nextMilestone,omitempty"`
	History       []*models.DisciplineLog      `json:"history"`
}

type RecordDisciplineRequest struct {
	UserID  string                  `json:"userId"`
	Action  models.DisciplineAction `json:"action"`
	TradeID string                  `json:"tradeId,omitempty"`
	Reason  string                  `json:"reason,omitempty"`
}

type RecordDisciplineResponse struct {
	Entry *models.DisciplineLog `json:"entry"`
}
