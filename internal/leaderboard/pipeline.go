// Package leaderboard recalculates weekly rankings and serves them.
//
// A run reads every user with their trades and quiz answers, scores the
// participants, ranks them, and writes the current entries plus a snapshot
// for the ISO week. Runs are idempotent within a week: the week's snapshot is
// overwritten and the carried-forward total comes from earlier weeks only.
// A failed run is simply retried in full.
package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mptwarrior/warrior/internal/cache"
	"github.com/mptwarrior/warrior/internal/calculator"
	"github.com/mptwarrior/warrior/internal/metrics"
	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

// Store is the persistence a run needs.
type Store interface {
	storage.UserStore
	storage.TradeStore
	storage.QuizStore
	storage.LeaderboardStore
}

// Result reports what a run did.
type Result struct {
	Week      string        `json:"week"`
	Processed int           `json:"processed"`
	Updated   int           `json:"updated"`
	Removed   int           `json:"removed"`
	Duration  time.Duration `json:"duration"`
}

// Pipeline runs leaderboard recalculations. Concurrent Run calls in one
// process are serialized.
type Pipeline struct {
	store  Store
	cache  cache.Cache
	now    func() time.Time
	logger *slog.Logger

	mu sync.Mutex
}

func NewPipeline(store Store, c cache.Cache, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{store: store, cache: c, now: time.Now, logger: logger}
}

// WithClock overrides the time source.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// participant is one user's aggregated input to ranking.
type participant struct {
	user      *models.User
	breakdown models.PointsBreakdown
	weekly    int
	earned    int
	total     int
	winRate   float64
	badgeIn   calculator.BadgeInput
}

// Run recalculates the leaderboard for the week containing now. trigger
// names the caller for logs and metrics (cron, admin, http, cli).
func (p *Pipeline) Run(ctx context.Context, trigger string) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	res, err := p.run(ctx)
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordLeaderboardRun(trigger, elapsed, 0, false)
		p.logger.Error("Leaderboard run failed", "trigger", trigger, "error", err, "duration_ms", elapsed.Milliseconds())
		return nil, err
	}

	res.Duration = elapsed
	metrics.RecordLeaderboardRun(trigger, elapsed, res.Processed, true)
	p.logger.Info("Leaderboard run complete",
		"trigger", trigger,
		"week", res.Week,
		"processed", res.Processed,
		"updated", res.Updated,
		"removed", res.Removed,
		"duration_ms", elapsed.Milliseconds(),
	)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context) (*Result, error) {
	now := p.now().UTC()
	week := storage.ISOWeek(now)
	weekStart := storage.WeekStart(now)
	weekEnd := weekStart.AddDate(0, 0, 7)

	users, err := p.store.ListUsers(ctx, storage.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	questions, err := p.store.ListAllQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	baseline, err := p.store.LatestSnapshotsBefore(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous totals: %w", err)
	}
	previous, err := p.previousRanks(ctx, now)
	if err != nil {
		return nil, err
	}

	referralsWeek, referralsAll := countReferrals(users, weekStart, weekEnd)

	var participants []*participant
	for _, u := range users {
		if !u.RanksOnLeaderboard() {
			continue
		}
		pt, err := p.aggregate(ctx, u, questions, weekStart, weekEnd)
		if err != nil {
			return nil, err
		}
		pt.breakdown.CommunityPoints = calculator.CommunityPoints(referralsWeek[u.ID])
		pt.badgeIn.ReferralsAllTime = referralsAll[u.ID]
		pt.weekly = calculator.WeeklyPoints(pt.breakdown)

		pt.earned = pt.weekly
		if snap, ok := baseline[u.ID]; ok {
			pt.earned += snap.TotalPoints
		}
		pt.total = pt.earned + u.BonusPoints
		participants = append(participants, pt)
	}

	scores := make([]calculator.Scored, len(participants))
	byID := make(map[string]*participant, len(participants))
	for i, pt := range participants {
		scores[i] = calculator.Scored{UserID: pt.user.ID, TotalPoints: pt.total, WinRate: pt.winRate}
		byID[pt.user.ID] = pt
	}
	sorted, ranks := calculator.AssignRanks(scores)

	res := &Result{Week: week, Processed: len(participants)}
	for i, sc := range sorted {
		pt := byID[sc.UserID]
		rank := ranks[i]

		var prevRank *int
		if r, ok := previous[pt.user.ID]; ok {
			prevRank = &r
		}
		pt.badgeIn.Rank = rank
		pt.badgeIn.PreviousRank = prevRank

		entry := &models.LeaderboardEntry{
			ID:           pt.user.ID,
			UserID:       pt.user.ID,
			UserName:     pt.user.Name,
			WhatsApp:     pt.user.WhatsApp,
			TotalPoints:  pt.total,
			WeeklyPoints: pt.weekly,
			Breakdown:    pt.breakdown,
			Tier:         calculator.TierFor(pt.total),
			Badges:       calculator.Badges(pt.badgeIn),
			WinRate:      pt.winRate,
			Rank:         rank,
			PreviousRank: prevRank,
			RankTrend:    calculator.Trend(prevRank, rank),
			Week:         week,
			UpdatedAt:    now,
		}
		if err := p.store.UpsertLeaderboardEntry(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to write entry for %s: %w", pt.user.ID, err)
		}

		snap := &models.RankSnapshot{
			ID:           week + "_" + pt.user.ID,
			Week:         week,
			UserID:       pt.user.ID,
			Rank:         rank,
			TotalPoints:  pt.earned,
			WeeklyPoints: pt.weekly,
			Tier:         entry.Tier,
			RecordedAt:   now,
		}
		if err := p.store.UpsertRankSnapshot(ctx, snap); err != nil {
			return nil, fmt.Errorf("failed to write snapshot for %s: %w", pt.user.ID, err)
		}
		res.Updated++
	}

	removed, err := p.removeStale(ctx, byID)
	if err != nil {
		return nil, err
	}
	res.Removed = removed

	if p.cache != nil {
		if _, err := cache.RotateGeneration(ctx, p.cache, cache.LeaderboardGenerationKey); err != nil {
			p.logger.Warn("Failed to invalidate leaderboard cache", "error", err)
		}
	}
	return res, nil
}

// aggregate loads one user's trades and answers and fills the quiz and
// consistency components.
func (p *Pipeline) aggregate(ctx context.Context, u *models.User, questions []*models.QuizQuestion, weekStart, weekEnd time.Time) (*participant, error) {
	trades, err := p.store.ListTrades(ctx, u.ID, models.TradeFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list trades for %s: %w", u.ID, err)
	}
	answers, err := p.store.ListAnswers(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers for %s: %w", u.ID, err)
	}

	stats := calculator.ComputeTradeStats(trades)
	quiz := calculator.SummarizeQuiz(questions, answers)

	return &participant{
		user: u,
		breakdown: models.PointsBreakdown{
			QuizPoints:        calculator.QuizPoints(quiz.ModulesCompleted, quiz.AverageScore),
			ConsistencyPoints: calculator.ConsistencyPoints(calculator.DistinctTradeDays(trades, weekStart, weekEnd)),
		},
		winRate: stats.WinRate,
		badgeIn: calculator.BadgeInput{
			ConsecutiveTradeDays: calculator.ConsecutiveTradeDays(trades),
			ModulesCompleted:     quiz.ModulesCompleted,
			TotalModules:         quiz.TotalModules,
			AverageQuizScore:     quiz.AverageScore,
		},
	}, nil
}

func (p *Pipeline) previousRanks(ctx context.Context, now time.Time) (map[string]int, error) {
	snaps, err := p.store.ListRankSnapshots(ctx, storage.PreviousISOWeek(now))
	if err != nil {
		return nil, fmt.Errorf("failed to load previous week: %w", err)
	}
	ranks := make(map[string]int, len(snaps))
	for _, s := range snaps {
		ranks[s.UserID] = s.Rank
	}
	return ranks, nil
}

// removeStale deletes entries of users who no longer take part.
func (p *Pipeline) removeStale(ctx context.Context, keep map[string]*participant) (int, error) {
	existing, err := p.store.ListLeaderboardEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list entries: %w", err)
	}
	removed := 0
	for _, e := range existing {
		if _, ok := keep[e.UserID]; ok {
			continue
		}
		if err := p.store.DeleteLeaderboardEntry(ctx, e.UserID); err != nil {
			return removed, fmt.Errorf("failed to remove entry for %s: %w", e.UserID, err)
		}
		removed++
	}
	return removed, nil
}

// countReferrals counts users by inviter: those who joined in [from, to) and all time.
func countReferrals(users []*models.User, from, to time.Time) (week, all map[string]int) {
	week = make(map[string]int)
	all = make(map[string]int)
	for _, u := range users {
		if u.InvitedBy == "" {
			continue
		}
		all[u.InvitedBy]++
		if !u.JoinDate.Before(from) && u.JoinDate.Before(to) {
			week[u.InvitedBy]++
		}
	}
	return week, all
}
