package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

// recordAudit appends to the audit trail. A failed write is logged and does
// not fail the request that caused it.
func recordAudit(ctx context.Context, store storage.AuditStore, action models.AuditAction, performedBy, target string, metadata map[string]string) {
	entry := &models.AuditLog{
		ID:          uuid.New().String(),
		Action:      action,
		PerformedBy: performedBy,
		TargetUser:  target,
		Timestamp:   time.Now().UTC(),
		Metadata:    metadata,
	}
	if err := store.CreateAuditLog(ctx, entry); err != nil {
		slog.Error("Failed to write audit log", "action", action, "performed_by", performedBy, "error", err)
	}
}
