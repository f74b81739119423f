package cosmos

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

// AdjustDisciplineScore updates the score on the user document with an
// ETag-guarded replace, re-reading after a lost race.
func (s *Store) AdjustDisciplineScore(ctx context.Context, userID string, delta int) (int, int, error) {
	for attempt := 0; attempt < maxReplaceAttempts; attempt++ {
		user, etag, err := readItem[models.User](ctx, s.users, userID, userID, "user "+userID)
		if err != nil {
			return 0, 0, err
		}
		before := user.DisciplineScore
		user.DisciplineScore = models.ClampDisciplineScore(before + delta)

		err = replaceItem(ctx, s.users, userID, userID, user, etag, "user "+userID)
		if err == nil {
			return before, user.DisciplineScore, nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return 0, 0, err
		}
	}
	return 0, 0, fmt.Errorf("user %s: too many concurrent score updates: %w", userID, storage.ErrConflict)
}

// CreateDisciplineLog stores an entry in the user's partition.
func (s *Store) CreateDisciplineLog(ctx context.Context, entry *models.DisciplineLog) error {
	return createItem(ctx, s.discipline, entry.UserID, entry, "discipline log "+entry.ID)
}

// ListDisciplineLogs reads the user's partition, newest first.
func (s *Store) ListDisciplineLogs(ctx context.Context, userID string, limit int) ([]*models.DisciplineLog, error) {
	return queryItems[models.DisciplineLog](ctx, s.discipline, azcosmos.NewPartitionKeyString(userID),
		"SELECT TOP @limit * FROM c WHERE c.userId = @userId ORDER BY c.timestamp DESC",
		param("@limit", limit), param("@userId", userID))
}
