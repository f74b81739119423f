package models

import "time"

// Tier is the rank band derived from total points.
type Tier string

const (
	TierRecruit         Tier = "RECRUIT"
	TierEliteWarrior    Tier = "ELITE_WARRIOR"
	TierCommander       Tier = "COMMANDER"
	TierLegendaryMentor Tier = "LEGENDARY_MENTOR"
)

// Badge is an achievement earned through sustained activity.
type Badge string

const (
	BadgeConsistencyKing   Badge = "consistency_king"
	BadgeKnowledgeMaster   Badge = "knowledge_master"
	BadgeCommunityChampion Badge = "community_champion"
	BadgeTopPerformer      Badge = "top_performer"
	BadgeComebackWarrior   Badge = "comeback_warrior"
)

// RankTrend compares a rank against the previous week.
type RankTrend string

const (
	TrendUp     RankTrend = "UP"
	TrendDown   RankTrend = "DOWN"
	TrendStable RankTrend = "STABLE"
)

// PointsBreakdown splits the weekly score into its sources.
type PointsBreakdown struct {
	QuizPoints        float64 `json:"quizPoints"`
	ConsistencyPoints float64 `json:"consistencyPoints"`
	CommunityPoints   float64 `json:"communityPoints"`
}

// LeaderboardEntry is the current ranking of one user.
// ID equals UserID so the entry can be point-read.
type LeaderboardEntry struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`

	WhatsApp string `json:"whatsapp,omitempty"`

	TotalPoints  int             `json:"totalPoints"`
	WeeklyPoints int             `json:"weeklyPoints"`
	Breakdown    PointsBreakdown `json:"pointsBreakdown"`

	Tier   Tier    `json:"badge"`
	Badges []Badge `json:"badges"`

	WinRate float64 `json:"winRate"`

	Rank         int       `json:"rank"`
	PreviousRank *int      `json:"previousRank"`
	RankTrend    RankTrend `json:"rankTrend"`

	Week      string    `json:"week"`
	UpdatedAt time.Time `json:"lastUpdated"`
}

// RankSnapshot is one user's standing at the end of a leaderboard run in a
// given ISO week. The latest run in a week overwrites the week's snapshot.
type RankSnapshot struct {
	// ID is "<week>_<userId>".
	ID     string `json:"id"`
	Week   string `json:"week"`
	UserID string `json:"userId"`

	Rank         int  `json:"rank"`
	// TotalPoints is the earned total carried into later weeks. It excludes
	// admin bonus points, which live on the user and are added on every run.
	TotalPoints  int  `json:"totalPoints"`
	WeeklyPoints int  `json:"weeklyPoints"`
	Tier         Tier `json:"tier"`

	RecordedAt time.Time `json:"recordedAt"`
}
