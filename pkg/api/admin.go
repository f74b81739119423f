package api

import "github.com/mptwarrior/warrior/internal/models"

type ListUsersRequest struct {
	// Status filters by account status; empty lists everyone.
	Status models.UserStatus `json:"status,omitempty"`
}

type ListUsersResponse struct {
	Users []*User `json:"users"`
}

// UserActionRequest targets one user for approve, reject, suspend, promote
// or founder marking.
type UserActionRequest struct {
	UserID string `json:"userId"`
	Reason string `json:"reason,omitempty"`
}

type UserActionResponse struct {
	User *User `json:"user"`
}

type ListAuditLogsRequest struct {
	// Limit defaults to 50.
	Limit int `json:"limit,omitempty"`
}

type ListAuditLogsResponse struct {
	Logs []*models.AuditLog `json:"logs"`
}

type GetStatisticsRequest struct{}

type GetStatisticsResponse struct {
	TotalUsers     int                       `json:"totalUsers"`
	UsersByStatus  map[models.UserStatus]int `json:"usersByStatus"`
	UsersByRole    map[models.Role]int       `json:"usersByRole"`
	TotalTrades    int                       `json:"totalTrades"`
	ActiveCodes    int                       `json:"activeCodes"`
	PendingEssays  int                       `json:"pendingEssays"`
	RankedWarriors int                       `json:"rankedWarriors"`
}
