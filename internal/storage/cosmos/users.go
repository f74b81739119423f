package cosmos

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

// CreateUser inserts a user. Email uniqueness is checked with a query first;
// the users container is partitioned by id so no unique key can enforce it.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.GetUserByEmail(ctx, user.Email)
	switch {
	case err == nil:
		return fmt.Errorf("user %s: %w", user.Email, storage.ErrConflict)
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}
	return createItem(ctx, s.users, user.ID, user, "user "+user.ID)
}

// GetUserByID point-reads a user.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, _, err := readItem[models.User](ctx, s.users, id, id, "user "+id)
	return user, err
}

// GetUserByEmail finds a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := queryItems[models.User](ctx, s.users, allPartitions,
		"SELECT * FROM c WHERE LOWER(c.email) = @email",
		param("@email", strings.ToLower(strings.TrimSpace(email))),
	)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
	}
	return users[0], nil
}

// UpdateUser replaces the stored user document, carrying over the stored
// discipline score. The replace is ETag-guarded so a concurrent score
// adjustment is re-read rather than overwritten.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	for attempt := 0; attempt < maxReplaceAttempts; attempt++ {
		current, etag, err := readItem[models.User](ctx, s.users, user.ID, user.ID, "user "+user.ID)
		if err != nil {
			return err
		}
		next := *user
		next.DisciplineScore = current.DisciplineScore

		err = replaceItem(ctx, s.users, user.ID, user.ID, &next, etag, "user "+user.ID)
		if !errors.Is(err, storage.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("user %s: too many concurrent updates: %w", user.ID, storage.ErrConflict)
}

// ListUsers returns matching users, newest first.
func (s *Store) ListUsers(ctx context.Context, filter storage.UserFilter) ([]*models.User, error) {
	var (
		where  []string
		params []azcosmos.QueryParameter
	)
	if filter.Status != "" {
		where = append(where, "c.status = @status")
		params = append(params, param("@status", string(filter.Status)))
	}
	if filter.Role != "" {
		where = append(where, "c.role = @role")
		params = append(params, param("@role", string(filter.Role)))
	}

	query := "SELECT * FROM c"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	users, err := queryItems[models.User](ctx, s.users, allPartitions, query, params...)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}
