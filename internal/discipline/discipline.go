// Package discipline keeps each trader's discipline score and the log of
// what moved it.
package discipline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mptwarrior/warrior/internal/calculator"
	"github.com/mptwarrior/warrior/internal/metrics"
	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

// History limits.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)

// ErrUnknownAction is returned for an action with no point value.
var ErrUnknownAction = errors.New("unknown discipline action")

// Tracker applies discipline actions to scores.
type Tracker struct {
	store storage.DisciplineStore
	now   func() time.Time
}

// NewTracker creates a tracker using the wall clock.
func NewTracker(store storage.DisciplineStore) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// WithClock replaces the clock; used by tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Record applies one action to the user's score and logs it.
func (t *Tracker) Record(ctx context.Context, userID string, action models.DisciplineAction, tradeID, reason string) (*models.DisciplineLog, error) {
	points, ok := action.Points()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	before, after, err := t.store.AdjustDisciplineScore(ctx, userID, points)
	if err != nil {
		return nil, err
	}
	entry := &models.DisciplineLog{
		ID:            uuid.New().String(),
		UserID:        userID,
		Action:        action,
		Points:        points,
		PreviousScore: before,
		NewScore:      after,
		TradeID:       tradeID,
		Reason:        reason,
		Timestamp:     t.now().UTC(),
	}
	if err := t.store.CreateDisciplineLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to log %s for %s: %w", action, userID, err)
	}
	metrics.RecordDisciplineEvent(string(action))
	return entry, nil
}

// ReviewTrade records every action calculator.AnalyzeTrade finds in trade.
// On error it returns the entries logged so far.
func (t *Tracker) ReviewTrade(ctx context.Context, trade *models.Trade, earlier []*models.Trade, review calculator.TradeReview) ([]*models.DisciplineLog, error) {
	events := calculator.AnalyzeTrade(trade, earlier, review)
	logs := make([]*models.DisciplineLog, 0, len(events))
	for _, e := range events {
		entry, err := t.Record(ctx, trade.UserID, e.Action, trade.ID, e.Reason)
		if err != nil {
			return logs, err
		}
		logs = append(logs, entry)
	}
	return logs, nil
}

// History returns the user's newest entries. A limit of zero or less means
// DefaultHistoryLimit; larger limits are capped at MaxHistoryLimit.
func (t *Tracker) History(ctx context.Context, userID string, limit int) ([]*models.DisciplineLog, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return t.store.ListDisciplineLogs(ctx, userID, min(limit, MaxHistoryLimit))
}
