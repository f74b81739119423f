package cosmos

import (
	"context"
	"sort"

	"github.com/mptwarrior/warrior/internal/models"
)

// CreateAuditLog stores an entry in the actor's partition.
func (s *Store) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	return createItem(ctx, s.audit, entry.PerformedBy, entry, "audit log "+entry.ID)
}

// ListAuditLogs returns the newest limit entries across all actors.
func (s *Store) ListAuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	logs, err := queryItems[models.AuditLog](ctx, s.audit, allPartitions, "SELECT * FROM c")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}
