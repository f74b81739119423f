package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

// AdjustDisciplineScore reads and writes the score inside one transaction.
func (s *SQLiteStore) AdjustDisciplineScore(ctx context.Context, userID string, delta int) (int, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var before int
	err = tx.QueryRowContext(ctx, `SELECT discipline_score FROM users WHERE id = ?`, userID).Scan(&before)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read discipline score: %w", err)
	}

	after := models.ClampDisciplineScore(before + delta)
	if _, err := tx.ExecContext(ctx, `UPDATE users SET discipline_score = ? WHERE id = ?`, after, userID); err != nil {
		return 0, 0, fmt.Errorf("failed to update discipline score: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit discipline score: %w", err)
	}
	return before, after, nil
}

// CreateDisciplineLog appends an entry to the user's discipline history.
func (s *SQLiteStore) CreateDisciplineLog(ctx context.Context, entry *models.DisciplineLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO discipline_logs (id, user_id, action, points, previous_score, new_score, trade_id, reason, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, string(entry.Action), entry.Points, entry.PreviousScore, entry.NewScore,
		entry.TradeID, entry.Reason, toUnix(entry.Timestamp),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("discipline log %s: %w", entry.ID, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert discipline log: %w", err)
	}
	return nil
}

// ListDisciplineLogs returns the user's newest entries first.
func (s *SQLiteStore) ListDisciplineLogs(ctx context.Context, userID string, limit int) ([]*models.DisciplineLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, action, points, previous_score, new_score, trade_id, reason, timestamp
		FROM discipline_logs WHERE user_id = ? ORDER BY timestamp DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list discipline logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.DisciplineLog
	for rows.Next() {
		var (
			entry  models.DisciplineLog
			action string
			ts     int64
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &action, &entry.Points, &entry.PreviousScore,
			&entry.NewScore, &entry.TradeID, &entry.Reason, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan discipline log: %w", err)
		}
		entry.Action = models.DisciplineAction(action)
		entry.Timestamp = fromUnix(ts)
		logs = append(logs, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate discipline logs: %w", err)
	}
	return logs, nil
}
