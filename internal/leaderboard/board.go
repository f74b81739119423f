package leaderboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/mptwarrior/warrior/internal/cache"
	"github.com/mptwarrior/warrior/internal/calculator"
	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

// MaxPageSize is the largest page GetLeaderboard serves and the size of the
// cached top slice.
const MaxPageSize = 100

// Board serves the current leaderboard, caching the top of it.
type Board struct {
	store storage.LeaderboardStore
	cache cache.Cache
}

func NewBoard(store storage.LeaderboardStore, c cache.Cache) *Board {
	return &Board{store: store, cache: c}
}

// Top returns the first MaxPageSize entries by rank. The slice is cached
// under the generation read before the store, so a recalculation that
// finishes meanwhile strands this write under a retired key.
func (b *Board) Top(ctx context.Context) ([]*models.LeaderboardEntry, error) {
	var (
		top    []*models.LeaderboardEntry
		gen    string
		cached bool
	)
	if b.cache != nil {
		gen, cached = cache.Generation(ctx, b.cache, cache.LeaderboardGenerationKey)
	}
	if cached && cache.GetJSON(ctx, b.cache, cache.LeaderboardKey(gen), &top) {
		return top, nil
	}

	all, err := b.store.ListLeaderboardEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard: %w", err)
	}
	top = all[:min(len(all), MaxPageSize)]

	if cached {
		// A failed write only costs the next reader a store round trip.
		_ = cache.SetJSON(ctx, b.cache, cache.LeaderboardKey(gen), top, cache.LeaderboardTTL)
	}
	return top, nil
}

// Page returns entries by rank. limit is clamped to (0, MaxPageSize]; a
// non-empty search keeps entries whose user name contains it, ignoring case.
func (b *Board) Page(ctx context.Context, limit, offset int, search string) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset = max(offset, 0)
	search = strings.ToLower(strings.TrimSpace(search))

	var entries []*models.LeaderboardEntry
	var err error
	if search == "" && offset+limit <= MaxPageSize {
		entries, err = b.Top(ctx)
	} else {
		entries, err = b.store.ListLeaderboardEntries(ctx)
	}
	if err != nil {
		return nil, err
	}

	if search != "" {
		filtered := entries[:0:0]
		for _, e := range entries {
			if strings.Contains(strings.ToLower(e.UserName), search) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if offset >= len(entries) {
		return []*models.LeaderboardEntry{}, nil
	}
	return entries[offset:min(len(entries), offset+limit)], nil
}

// TopThree returns the podium.
func (b *Board) TopThree(ctx context.Context) ([]*models.LeaderboardEntry, error) {
	top, err := b.Top(ctx)
	if err != nil {
		return nil, err
	}
	return top[:min(len(top), 3)], nil
}

// Ranking is one user's position with context.
type Ranking struct {
	Entry            *models.LeaderboardEntry
	TotalRanked      int
	Percentile       float64
	PointsToNextTier int
}

// Ranking returns storage.ErrNotFound when the user is not on the board.
func (b *Board) Ranking(ctx context.Context, userID string) (*Ranking, error) {
	entry, err := b.store.GetLeaderboardEntry(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := b.store.ListLeaderboardEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard: %w", err)
	}
	return &Ranking{
		Entry:            entry,
		TotalRanked:      len(all),
		Percentile:       calculator.Percentile(entry.Rank, len(all)),
		PointsToNextTier: calculator.PointsToNextTier(entry.TotalPoints),
	}, nil
}

// Invalidate starts a new cache generation. Readers only cache under a
// generation someone rotated, so call it once at startup to enable caching.
func (b *Board) Invalidate(ctx context.Context) error {
	if b.cache == nil {
		return nil
	}
	_, err := cache.RotateGeneration(ctx, b.cache, cache.LeaderboardGenerationKey)
	return err
}
