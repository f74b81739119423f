package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

const threadColumns = `id, user_id, title, message_count, created_at, updated_at`

const messageColumns = `id, thread_id, user_id, role, content, model, created_at`

// CreateThread inserts a new chat thread.
func (s *SQLiteStore) CreateThread(ctx context.Context, thread *models.ChatThread) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_threads (`+threadColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		thread.ID, thread.UserID, thread.Title, thread.MessageCount,
		toUnix(thread.CreatedAt), toUnix(thread.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("thread %s: %w", thread.ID, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert chat thread: %w", err)
	}
	return nil
}

// GetThread retrieves one of the user's threads.
func (s *SQLiteStore) GetThread(ctx context.Context, userID, threadID string) (*models.ChatThread, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+threadColumns+` FROM chat_threads WHERE id = ? AND user_id = ?`,
		threadID, userID,
	)
	thread, err := scanThread(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("thread %s: %w", threadID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat thread: %w", err)
	}
	return thread, nil
}

// ListThreads returns the user's most recently updated threads.
func (s *SQLiteStore) ListThreads(ctx context.Context, userID string, limit int) ([]*models.ChatThread, error) {
	query := `SELECT ` + threadColumns + ` FROM chat_threads WHERE user_id = ? ORDER BY updated_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat threads: %w", err)
	}
	defer rows.Close()

	var threads []*models.ChatThread
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat thread: %w", err)
		}
		threads = append(threads, thread)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat threads: %w", err)
	}
	return threads, nil
}

// UpdateThread saves the thread's title, count and timestamp.
func (s *SQLiteStore) UpdateThread(ctx context.Context, thread *models.ChatThread) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE chat_threads SET title = ?, message_count = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		thread.Title, thread.MessageCount, toUnix(thread.UpdatedAt), thread.ID, thread.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update chat thread: %w", err)
	}
	return expectOneRow(res, "thread", thread.ID)
}

// DeleteThread removes a thread together with its messages.
func (s *SQLiteStore) DeleteThread(ctx context.Context, userID, threadID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM chat_threads WHERE id = ? AND user_id = ?", threadID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete chat thread: %w", err)
	}
	if err := expectOneRow(res, "thread", threadID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chat_messages WHERE thread_id = ?", threadID); err != nil {
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateMessage appends a message to a thread.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (`+messageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ThreadID, msg.UserID, string(msg.Role), msg.Content, msg.Model, toUnix(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// ListMessages returns a thread's messages oldest first, keeping only the
// newest lastN when lastN is positive.
func (s *SQLiteStore) ListMessages(ctx context.Context, threadID string, lastN int) ([]*models.ChatMessage, error) {
	if lastN > 0 {
		return s.queryMessages(ctx, `
			SELECT `+messageColumns+` FROM (
				SELECT `+messageColumns+`, rowid AS seq FROM chat_messages
				WHERE thread_id = ? ORDER BY created_at DESC, seq DESC LIMIT ?
			) ORDER BY created_at ASC, seq ASC`,
			threadID, lastN)
	}
	return s.queryMessages(ctx,
		`SELECT `+messageColumns+` FROM chat_messages WHERE thread_id = ? ORDER BY created_at ASC, rowid ASC`,
		threadID)
}

// SearchMessages finds the user's messages containing query. SQLite's LIKE
// ignores case for ASCII.
func (s *SQLiteStore) SearchMessages(ctx context.Context, userID, query string, limit int) ([]*models.ChatMessage, error) {
	q := `SELECT ` + messageColumns + ` FROM chat_messages
		WHERE user_id = ? AND content LIKE ? ESCAPE '\' ORDER BY created_at DESC`
	args := []any{userID, likePattern(query)}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryMessages(ctx, q, args...)
}

func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...any) ([]*models.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []*models.ChatMessage
	for rows.Next() {
		var (
			msg       models.ChatMessage
			role      string
			createdAt int64
		)
		if err := rows.Scan(&msg.ID, &msg.ThreadID, &msg.UserID, &role, &msg.Content, &msg.Model, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		msg.Role = models.ChatRole(role)
		msg.CreatedAt = fromUnix(createdAt)
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}
	return msgs, nil
}

func scanThread(row scanner) (*models.ChatThread, error) {
	var (
		thread             models.ChatThread
		createdAt, updated int64
	)
	if err := row.Scan(&thread.ID, &thread.UserID, &thread.Title, &thread.MessageCount, &createdAt, &updated); err != nil {
		return nil, err
	}
	thread.CreatedAt = fromUnix(createdAt)
	thread.UpdatedAt = fromUnix(updated)
	return &thread, nil
}
