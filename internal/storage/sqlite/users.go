package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

const userColumns = `id, warrior_id, email, name, password_hash, whatsapp, telegram_id, role, status,
	invitation_code, invited_by, is_founder, bonus_points, settings, join_date, approved_date,
	approved_by, last_login, login_count, discipline_score, avatar, created_at, updated_at`

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	settings, err := encodeJSON(user.Settings)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		user.ID,
		user.WarriorID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.WhatsApp,
		user.TelegramID,
		string(user.Role),
		string(user.Status),
		user.InvitationCode,
		user.InvitedBy,
		boolToInt(user.Founder),
		user.BonusPoints,
		settings,
		toUnix(user.JoinDate),
		nullTime(user.ApprovedDate),
		user.ApprovedBy,
		nullTime(user.LastLogin),
		user.LoginCount,
		models.ClampDisciplineScore(user.DisciplineScore),
		user.Avatar,
		toUnix(user.CreatedAt),
		toUnix(user.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Email, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by their email address, ignoring case.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.TrimSpace(email),
	)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// UpdateUser overwrites every mutable column of the user except
// discipline_score, which only AdjustDisciplineScore writes.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	settings, err := encodeJSON(user.Settings)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			warrior_id = ?, email = ?, name = ?, password_hash = ?, whatsapp = ?, telegram_id = ?,
			role = ?, status = ?, invitation_code = ?, invited_by = ?, is_founder = ?, bonus_points = ?,
			settings = ?, join_date = ?, approved_date = ?, approved_by = ?, last_login = ?,
			login_count = ?, avatar = ?, updated_at = ?
		WHERE id = ?`,
		user.WarriorID, user.Email, user.Name, user.PasswordHash, user.WhatsApp, user.TelegramID,
		string(user.Role), string(user.Status), user.InvitationCode, user.InvitedBy,
		boolToInt(user.Founder), user.BonusPoints,
		settings, toUnix(user.JoinDate), nullTime(user.ApprovedDate), user.ApprovedBy,
		nullTime(user.LastLogin), user.LoginCount, user.Avatar, toUnix(user.UpdatedAt),
		user.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Email, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectOneRow(res, "user", user.ID)
}

// ListUsers returns users matching the filter, newest first.
func (s *SQLiteStore) ListUsers(ctx context.Context, filter storage.UserFilter) ([]*models.User, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Role != "" {
		where = append(where, "role = ?")
		args = append(args, string(filter.Role))
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

func scanUser(row scanner) (*models.User, error) {
	var (
		user                         models.User
		role, status, settings       string
		founder                      int
		joinDate, createdAt, updated int64
		approvedDate, lastLogin      sql.NullInt64
	)
	err := row.Scan(
		&user.ID,
		&user.WarriorID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.WhatsApp,
		&user.TelegramID,
		&role,
		&status,
		&user.InvitationCode,
		&user.InvitedBy,
		&founder,
		&user.BonusPoints,
		&settings,
		&joinDate,
		&approvedDate,
		&user.ApprovedBy,
		&lastLogin,
		&user.LoginCount,
		&user.DisciplineScore,
		&user.Avatar,
		&createdAt,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	user.Role = models.Role(role)
	user.Status = models.UserStatus(status)
	user.Founder = founder != 0
	if err := decodeJSON(settings, &user.Settings); err != nil {
		return nil, err
	}
	user.JoinDate = fromUnix(joinDate)
	user.ApprovedDate = timePtr(approvedDate)
	user.LastLogin = timePtr(lastLogin)
	user.CreatedAt = fromUnix(createdAt)
	user.UpdatedAt = fromUnix(updated)
	return &user, nil
}

// expectOneRow turns a zero-row update or delete into storage.ErrNotFound.
func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
