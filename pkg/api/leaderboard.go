package api

import "github.com/mptwarrior/warrior/internal/models"

type GetLeaderboardRequest struct {
	// Limit defaults to and is capped at 100.
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Search string `json:"search,omitempty"`
}

type GetLeaderboardResponse struct {
	Entries []*models.LeaderboardEntry `json:"entries"`
}

type GetTopThreeRequest struct{}

type GetTopThreeResponse struct {
	Entries []*models.LeaderboardEntry `json:"entries"`
}

type GetUserRankingRequest struct {
	// UserID defaults to the caller.
	UserID string `json:"userId,omitempty"`
}

type GetUserRankingResponse struct {
	Entry            *models.LeaderboardEntry `json:"entry"`
	TotalRanked      int                      `json:"totalRanked"`
	Percentile       float64                  `json:"percentile"`
	PointsToNextTier int                      `json:"pointsToNextTier"`
}

type AdjustPointsRequest struct {
	UserID string `json:"userId"`
	// Delta is added to the user's bonus points and may be negative.
	Delta  int    `json:"delta"`
	Reason string `json:"reason,omitempty"`
}

type AdjustPointsResponse struct {
	BonusPoints int `json:"bonusPoints"`
}

type RecalculateRequest struct{}

type RecalculateResponse struct {
	Week       string `json:"week"`
	Processed  int    `json:"processed"`
	Updated    int    `json:"updated"`
	Removed    int    `json:"removed"`
	DurationMS int64  `json:"durationMs"`
}
