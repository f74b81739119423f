package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

const codeColumns = `id, code, created_by, max_uses, used_count, expires_at, is_active, role, description, created_at`

// CreateCode inserts a new invitation code.
func (s *SQLiteStore) CreateCode(ctx context.Context, code *models.InvitationCode) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invitation_codes (`+codeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		code.ID,
		code.Code,
		code.CreatedBy,
		code.MaxUses,
		code.UsedCount,
		toUnix(code.ExpiresAt),
		boolToInt(code.IsActive),
		string(code.Role),
		code.Description,
		toUnix(code.CreatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("code %s: %w", code.Code, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert invitation code: %w", err)
	}
	return nil
}

// GetCode retrieves an invitation code by its value.
func (s *SQLiteStore) GetCode(ctx context.Context, code string) (*models.InvitationCode, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+codeColumns+` FROM invitation_codes WHERE code = ?`, code)
	c, err := scanCode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("code %s: %w", code, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation code: %w", err)
	}
	return c, nil
}

// ListCodes returns invitation codes newest first.
func (s *SQLiteStore) ListCodes(ctx context.Context, activeOnly bool) ([]*models.InvitationCode, error) {
	query := `SELECT ` + codeColumns + ` FROM invitation_codes`
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitation codes: %w", err)
	}
	defer rows.Close()

	var codes []*models.InvitationCode
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation code: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invitation codes: %w", err)
	}
	return codes, nil
}

// UpdateCode saves the editable fields of a code. used_count is left alone so
// an edit never rolls back a concurrent use.
func (s *SQLiteStore) UpdateCode(ctx context.Context, code *models.InvitationCode) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE invitation_codes
		SET max_uses = ?, expires_at = ?, is_active = ?, role = ?, description = ?
		WHERE code = ?`,
		code.MaxUses, toUnix(code.ExpiresAt), boolToInt(code.IsActive), string(code.Role), code.Description,
		code.Code,
	)
	if err != nil {
		return fmt.Errorf("failed to update invitation code: %w", err)
	}
	return expectOneRow(res, "code", code.Code)
}

// DeleteCode removes an invitation code.
func (s *SQLiteStore) DeleteCode(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM invitation_codes WHERE code = ?", code)
	if err != nil {
		return fmt.Errorf("failed to delete invitation code: %w", err)
	}
	return expectOneRow(res, "code", code)
}

// IncrementCodeUse consumes one use of the code. The guard lives in the
// UPDATE's WHERE clause, so concurrent callers cannot overshoot max_uses.
func (s *SQLiteStore) IncrementCodeUse(ctx context.Context, code string) (*models.InvitationCode, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE invitation_codes
		SET used_count = used_count + 1
		WHERE code = ? AND is_active = 1 AND used_count < max_uses`,
		code,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to increment invitation code: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}

	current, err := s.GetCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if !current.IsActive {
			return nil, fmt.Errorf("code %s: %w", code, storage.ErrCodeInactive)
		}
		return nil, fmt.Errorf("code %s: %w", code, storage.ErrCodeExhausted)
	}
	return current, nil
}

func scanCode(row scanner) (*models.InvitationCode, error) {
	var (
		c                  models.InvitationCode
		expires, createdAt int64
		active             int
		role               string
	)
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.CreatedBy,
		&c.MaxUses,
		&c.UsedCount,
		&expires,
		&active,
		&role,
		&c.Description,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	c.ExpiresAt = fromUnix(expires)
	c.CreatedAt = fromUnix(createdAt)
	c.IsActive = active != 0
	c.Role = models.Role(role)
	return &c, nil
}
