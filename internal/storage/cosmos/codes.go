package cosmos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

// maxReplaceAttempts bounds every ETag-guarded read-modify-replace loop.
const maxReplaceAttempts = 5

// CreateCode inserts a code after checking the code value is free.
func (s *Store) CreateCode(ctx context.Context, code *models.InvitationCode) error {
	_, _, err := s.getCode(ctx, code.Code)
	switch {
	case err == nil:
		return fmt.Errorf("code %s: %w", code.Code, storage.ErrConflict)
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}
	return createItem(ctx, s.codes, code.Code, code, "code "+code.Code)
}

// GetCode looks a code up inside its own partition.
func (s *Store) GetCode(ctx context.Context, code string) (*models.InvitationCode, error) {
	c, _, err := s.getCode(ctx, code)
	return c, err
}

func (s *Store) getCode(ctx context.Context, code string) (*models.InvitationCode, azcore.ETag, error) {
	raw, err := queryRaw(ctx, s.codes, azcosmos.NewPartitionKeyString(code),
		"SELECT * FROM c WHERE c.code = @code", param("@code", code))
	if err != nil {
		return nil, "", err
	}
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("code %s: %w", code, storage.ErrNotFound)
	}

	var c models.InvitationCode
	if err := json.Unmarshal(raw[0], &c); err != nil {
		return nil, "", fmt.Errorf("failed to decode code %s: %w", code, err)
	}
	return &c, etagOf(raw[0]), nil
}

// ListCodes returns codes newest first.
func (s *Store) ListCodes(ctx context.Context, activeOnly bool) ([]*models.InvitationCode, error) {
	query := "SELECT * FROM c"
	if activeOnly {
		query += " WHERE c.is_active = true"
	}
	codes, err := queryItems[models.InvitationCode](ctx, s.codes, allPartitions, query)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(codes, func(i, j int) bool {
		return codes[i].CreatedAt.After(codes[j].CreatedAt)
	})
	return codes, nil
}

// UpdateCode saves the editable fields, retrying if a concurrent use bumped
// the document in between so used_count is never rolled back.
func (s *Store) UpdateCode(ctx context.Context, code *models.InvitationCode) error {
	for attempt := 0; attempt < maxReplaceAttempts; attempt++ {
		current, etag, err := s.getCode(ctx, code.Code)
		if err != nil {
			return err
		}
		current.MaxUses = code.MaxUses
		current.ExpiresAt = code.ExpiresAt
		current.IsActive = code.IsActive
		current.Role = code.Role
		current.Description = code.Description

		err = replaceItem(ctx, s.codes, current.Code, current.ID, current, etag, "code "+code.Code)
		if !errors.Is(err, storage.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("code %s: too many concurrent updates: %w", code.Code, storage.ErrConflict)
}

// DeleteCode removes a code.
func (s *Store) DeleteCode(ctx context.Context, code string) error {
	c, _, err := s.getCode(ctx, code)
	if err != nil {
		return err
	}
	return deleteItem(ctx, s.codes, c.Code, c.ID, "code "+code)
}

// IncrementCodeUse consumes one use with an ETag-guarded replace. A lost
// race re-reads the document and re-checks the limit before trying again.
func (s *Store) IncrementCodeUse(ctx context.Context, code string) (*models.InvitationCode, error) {
	for attempt := 0; attempt < maxReplaceAttempts; attempt++ {
		current, etag, err := s.getCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if !current.IsActive {
			return nil, fmt.Errorf("code %s: %w", code, storage.ErrCodeInactive)
		}
		if current.UsedCount >= current.MaxUses {
			return nil, fmt.Errorf("code %s: %w", code, storage.ErrCodeExhausted)
		}

		current.UsedCount++
		err = replaceItem(ctx, s.codes, current.Code, current.ID, current, etag, "code "+code)
		if err == nil {
			return current, nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("code %s: too many concurrent uses: %w", code, storage.ErrConflict)
}
