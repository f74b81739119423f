package calculator

import (
	"math"
	"sort"

	"github.com/mptwarrior/warrior/internal/models"
)

// Component caps and weights of the weekly score.
const (
	MaxQuizPoints        = 100
	MaxConsistencyPoints = 35
	MaxCommunityPoints   = 20

	QuizWeight        = 0.40
	ConsistencyWeight = 0.35
	CommunityWeight   = 0.25
)

// Upper bounds (inclusive) of each tier.
const (
	RecruitMaxPoints   = 500
	EliteMaxPoints     = 1500
	CommanderMaxPoints = 3000
)

// QuizPoints converts academy progress into the quiz component: the average
// module score weighted by 0.40, capped at 40, and zero until a module is done.
func QuizPoints(modulesCompleted int, averageScore float64) float64 {
	if modulesCompleted == 0 {
		return 0
	}
	return math.Min(averageScore*QuizWeight, 40)
}

// ConsistencyPoints gives 5 points per distinct trading day, at most 7 days.
func ConsistencyPoints(tradeDaysThisWeek int) float64 {
	days := min(tradeDaysThisWeek, 7)
	return float64(days * 5)
}

// CommunityPoints gives 2 points per referral, at most 10 referrals.
func CommunityPoints(referralsThisWeek int) float64 {
	n := min(referralsThisWeek, 10)
	return float64(n * 2)
}

// WeeklyPoints combines the components:
// round(min(quiz,100)×0.40 + min(consistency,35)×0.35 + min(community,20)×0.25).
func WeeklyPoints(b models.PointsBreakdown) int {
	quiz := math.Min(b.QuizPoints, MaxQuizPoints)
	consistency := math.Min(b.ConsistencyPoints, MaxConsistencyPoints)
	community := math.Min(b.CommunityPoints, MaxCommunityPoints)

	total := quiz*QuizWeight + consistency*ConsistencyWeight + community*CommunityWeight
	return int(math.Round(total))
}

// TierFor maps total points to a tier.
func TierFor(totalPoints int) models.Tier {
	switch {
	case totalPoints <= RecruitMaxPoints:
		return models.TierRecruit
	case totalPoints <= EliteMaxPoints:
		return models.TierEliteWarrior
	case totalPoints <= CommanderMaxPoints:
		return models.TierCommander
	default:
		return models.TierLegendaryMentor
	}
}

// PointsToNextTier returns how many more points reach the next tier, or 0 at
// the top tier.
func PointsToNextTier(totalPoints int) int {
	switch {
	case totalPoints <= RecruitMaxPoints:
		return RecruitMaxPoints + 1 - totalPoints
	case totalPoints <= EliteMaxPoints:
		return EliteMaxPoints + 1 - totalPoints
	case totalPoints <= CommanderMaxPoints:
		return CommanderMaxPoints + 1 - totalPoints
	default:
		return 0
	}
}

// Trend compares the current rank with last week's. A smaller rank number is
// better, so previous − current > 0 means the user climbed.
func Trend(previous *int, current int) models.RankTrend {
	if previous == nil {
		return models.TrendStable
	}
	switch delta := *previous - current; {
	case delta > 0:
		return models.TrendUp
	case delta < 0:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}

// Percentile reports the share of ranked users below rank, to one decimal.
func Percentile(rank, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(total-rank)/float64(total)*1000) / 10
}

// Scored is one participant's input to the ranking.
type Scored struct {
	UserID      string
	TotalPoints int
	WinRate     float64
}

// AssignRanks orders participants by total points descending, breaking ties
// by win rate descending then user ID, and assigns competition ranks: equal
// totals share a rank and the following rank skips ("1224").
// The returned slice is sorted; ranks[i] belongs to sorted[i].
func AssignRanks(scores []Scored) (sorted []Scored, ranks []int) {
	sorted = make([]Scored, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		return a.UserID < b.UserID
	})

	ranks = make([]int, len(sorted))
	for i := range sorted {
		if i > 0 && sorted[i].TotalPoints == sorted[i-1].TotalPoints {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return sorted, ranks
}

// BadgeInput carries what badge rules look at.
type BadgeInput struct {
	ConsecutiveTradeDays int
	ModulesCompleted     int
	TotalModules         int
	AverageQuizScore     float64
	ReferralsAllTime     int
	Rank                 int
	PreviousRank         *int
}

// Badge thresholds.
const (
	ConsistencyKingDays      = 30
	KnowledgeMasterScore     = 80
	CommunityChampionInvites = 10
	TopPerformerRank         = 3
	ComebackPlaces           = 20
)

// Badges returns every badge the input qualifies for, in a stable order.
func Badges(in BadgeInput) []models.Badge {
	badges := []models.Badge{}
	if in.ConsecutiveTradeDays >= ConsistencyKingDays {
		badges = append(badges, models.BadgeConsistencyKing)
	}
	if in.TotalModules > 0 && in.ModulesCompleted == in.TotalModules && in.AverageQuizScore >= KnowledgeMasterScore {
		badges = append(badges, models.BadgeKnowledgeMaster)
	}
	if in.ReferralsAllTime >= CommunityChampionInvites {
		badges = append(badges, models.BadgeCommunityChampion)
	}
	if in.PreviousRank != nil && in.Rank <= TopPerformerRank && *in.PreviousRank <= TopPerformerRank {
		badges = append(badges, models.BadgeTopPerformer)
	}
	if in.PreviousRank != nil && *in.PreviousRank-in.Rank >= ComebackPlaces {
		badges = append(badges, models.BadgeComebackWarrior)
	}
	return badges
}
