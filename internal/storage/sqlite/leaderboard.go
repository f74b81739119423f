package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

const entryColumns = `user_id, user_name, whatsapp, total_points, weekly_points, breakdown, tier, badges,
	win_rate, rank, previous_rank, rank_trend, week, updated_at`

const snapshotColumns = `id, week, user_id, rank, total_points, weekly_points, tier, recorded_at`

// UpsertLeaderboardEntry inserts or replaces the user's current ranking.
func (s *SQLiteStore) UpsertLeaderboardEntry(ctx context.Context, entry *models.LeaderboardEntry) error {
	breakdown, err := encodeJSON(entry.Breakdown)
	if err != nil {
		return err
	}
	badges, err := encodeJSON(entry.Badges)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO leaderboard_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			user_name = excluded.user_name,
			whatsapp = excluded.whatsapp,
			total_points = excluded.total_points,
			weekly_points = excluded.weekly_points,
			breakdown = excluded.breakdown,
			tier = excluded.tier,
			badges = excluded.badges,
			win_rate = excluded.win_rate,
			rank = excluded.rank,
			previous_rank = excluded.previous_rank,
			rank_trend = excluded.rank_trend,
			week = excluded.week,
			updated_at = excluded.updated_at`,
		entry.UserID,
		entry.UserName,
		entry.WhatsApp,
		entry.TotalPoints,
		entry.WeeklyPoints,
		breakdown,
		string(entry.Tier),
		badges,
		entry.WinRate,
		entry.Rank,
		nullInt(entry.PreviousRank),
		string(entry.RankTrend),
		entry.Week,
		toUnix(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert leaderboard entry: %w", err)
	}
	return nil
}

// GetLeaderboardEntry retrieves the user's current ranking.
func (s *SQLiteStore) GetLeaderboardEntry(ctx context.Context, userID string) (*models.LeaderboardEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM leaderboard_entries WHERE user_id = ?`, userID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("leaderboard entry %s: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard entry: %w", err)
	}
	return entry, nil
}

// ListLeaderboardEntries returns every ranked user ordered by rank.
func (s *SQLiteStore) ListLeaderboardEntries(ctx context.Context) ([]*models.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM leaderboard_entries ORDER BY rank ASC, user_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard entries: %w", err)
	}
	return entries, nil
}

// DeleteLeaderboardEntry removes the user's ranking.
func (s *SQLiteStore) DeleteLeaderboardEntry(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM leaderboard_entries WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete leaderboard entry: %w", err)
	}
	return expectOneRow(res, "leaderboard entry", userID)
}

// UpsertRankSnapshot records the user's standing for a week, replacing an
// earlier snapshot from the same week.
func (s *SQLiteStore) UpsertRankSnapshot(ctx context.Context, snap *models.RankSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rank_snapshots (`+snapshotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			rank = excluded.rank,
			total_points = excluded.total_points,
			weekly_points = excluded.weekly_points,
			tier = excluded.tier,
			recorded_at = excluded.recorded_at`,
		snap.ID,
		snap.Week,
		snap.UserID,
		snap.Rank,
		snap.TotalPoints,
		snap.WeeklyPoints,
		string(snap.Tier),
		toUnix(snap.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rank snapshot: %w", err)
	}
	return nil
}

// ListRankSnapshots returns all snapshots of one week ordered by rank.
func (s *SQLiteStore) ListRankSnapshots(ctx context.Context, week string) ([]*models.RankSnapshot, error) {
	return s.querySnapshots(ctx,
		`SELECT `+snapshotColumns+` FROM rank_snapshots WHERE week = ? ORDER BY rank ASC`, week)
}

// LatestSnapshotsBefore returns each user's newest snapshot from before week.
func (s *SQLiteStore) LatestSnapshotsBefore(ctx context.Context, week string) (map[string]*models.RankSnapshot, error) {
	snaps, err := s.querySnapshots(ctx,
		`SELECT `+snapshotColumns+` FROM rank_snapshots WHERE week < ? ORDER BY user_id, week DESC`, week)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]*models.RankSnapshot)
	for _, snap := range snaps {
		if _, ok := latest[snap.UserID]; !ok {
			latest[snap.UserID] = snap
		}
	}
	return latest, nil
}

func (s *SQLiteStore) querySnapshots(ctx context.Context, query string, args ...any) ([]*models.RankSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rank snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*models.RankSnapshot
	for rows.Next() {
		var (
			snap     models.RankSnapshot
			tier     string
			recorded int64
		)
		if err := rows.Scan(
			&snap.ID, &snap.Week, &snap.UserID, &snap.Rank,
			&snap.TotalPoints, &snap.WeeklyPoints, &tier, &recorded,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rank snapshot: %w", err)
		}
		snap.Tier = models.Tier(tier)
		snap.RecordedAt = fromUnix(recorded)
		snaps = append(snaps, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rank snapshots: %w", err)
	}
	return snaps, nil
}

func scanEntry(row scanner) (*models.LeaderboardEntry, error) {
	var (
		entry                   models.LeaderboardEntry
		breakdown, tier, badges string
		trend                   string
		previous                sql.NullInt64
		updated                 int64
	)
	err := row.Scan(
		&entry.UserID,
		&entry.UserName,
		&entry.WhatsApp,
		&entry.TotalPoints,
		&entry.WeeklyPoints,
		&breakdown,
		&tier,
		&badges,
		&entry.WinRate,
		&entry.Rank,
		&previous,
		&trend,
		&entry.Week,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	entry.ID = entry.UserID
	if err := decodeJSON(breakdown, &entry.Breakdown); err != nil {
		return nil, err
	}
	if err := decodeJSON(badges, &entry.Badges); err != nil {
		return nil, err
	}
	entry.Tier = models.Tier(tier)
	entry.PreviousRank = intPtr(previous)
	entry.RankTrend = models.RankTrend(trend)
	entry.UpdatedAt = fromUnix(updated)
	return &entry, nil
}
