package cosmos

import (
	"context"
	"sort"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/mptwarrior/warrior/internal/models"
)

// UpsertLeaderboardEntry writes the entry under id = userId.
func (s *Store) UpsertLeaderboardEntry(ctx context.Context, entry *models.LeaderboardEntry) error {
	entry.ID = entry.UserID
	return upsertItem(ctx, s.leaderboard, entry.UserID, entry, "leaderboard entry "+entry.UserID)
}

// GetLeaderboardEntry point-reads the user's entry.
func (s *Store) GetLeaderboardEntry(ctx context.Context, userID string) (*models.LeaderboardEntry, error) {
	entry, _, err := readItem[models.LeaderboardEntry](ctx, s.leaderboard, userID, userID, "leaderboard entry "+userID)
	return entry, err
}

// ListLeaderboardEntries reads every entry and orders them by rank.
func (s *Store) ListLeaderboardEntries(ctx context.Context) ([]*models.LeaderboardEntry, error) {
	entries, err := queryItems[models.LeaderboardEntry](ctx, s.leaderboard, allPartitions, "SELECT * FROM c")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Rank != entries[j].Rank {
			return entries[i].Rank < entries[j].Rank
		}
		return entries[i].UserID < entries[j].UserID
	})
	return entries, nil
}

// DeleteLeaderboardEntry removes the user's entry.
func (s *Store) DeleteLeaderboardEntry(ctx context.Context, userID string) error {
	return deleteItem(ctx, s.leaderboard, userID, userID, "leaderboard entry "+userID)
}

// UpsertRankSnapshot writes into the week's partition.
func (s *Store) UpsertRankSnapshot(ctx context.Context, snap *models.RankSnapshot) error {
	return upsertItem(ctx, s.history, snap.Week, snap, "rank snapshot "+snap.ID)
}

// ListRankSnapshots reads one week's partition ordered by rank.
func (s *Store) ListRankSnapshots(ctx context.Context, week string) ([]*models.RankSnapshot, error) {
	return queryItems[models.RankSnapshot](ctx, s.history, azcosmos.NewPartitionKeyString(week),
		"SELECT * FROM c WHERE c.week = @week ORDER BY c.rank ASC", param("@week", week))
}

// LatestSnapshotsBefore scans earlier weeks and keeps each user's newest.
func (s *Store) LatestSnapshotsBefore(ctx context.Context, week string) (map[string]*models.RankSnapshot, error) {
	snaps, err := queryItems[models.RankSnapshot](ctx, s.history, allPartitions,
		"SELECT * FROM c WHERE c.week < @week", param("@week", week))
	if err != nil {
		return nil, err
	}
	return latestPerUser(snaps), nil
}

func latestPerUser(snaps []*models.RankSnapshot) map[string]*models.RankSnapshot {
	latest := make(map[string]*models.RankSnapshot)
	for _, snap := range snaps {
		if cur, ok := latest[snap.UserID]; !ok || snap.Week > cur.Week {
			latest[snap.UserID] = snap
		}
	}
	return latest
}
