package sqlite

import (
	"context"
	"fmt"

	"github.com/mptwarrior/warrior/internal/models"
)

// CreateAuditLog appends an entry to the audit trail.
func (s *SQLiteStore) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	metadata, err := encodeJSON(entry.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, action, performed_by, target_user, timestamp, metadata) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, string(entry.Action), entry.PerformedBy, entry.TargetUser, toUnix(entry.Timestamp), metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

// ListAuditLogs returns the newest entries first.
func (s *SQLiteStore) ListAuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, performed_by, target_user, timestamp, metadata
		FROM audit_logs ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		var (
			entry    models.AuditLog
			action   string
			ts       int64
			metadata string
		)
		if err := rows.Scan(&entry.ID, &action, &entry.PerformedBy, &entry.TargetUser, &ts, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entry.Action = models.AuditAction(action)
		entry.Timestamp = fromUnix(ts)
		if err := decodeJSON(metadata, &entry.Metadata); err != nil {
			return nil, err
		}
		logs = append(logs, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit logs: %w", err)
	}
	return logs, nil
}
