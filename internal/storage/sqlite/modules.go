package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

const moduleColumns = `id, level, title, description, sort_order, lessons, prerequisites, created_at, updated_at`

const progressColumns = `id, user_id, module_id, lesson_id, completed, completed_at, time_spent, last_accessed_at,
	created_at, updated_at`

// UpsertModule inserts or replaces a module with its lessons.
func (s *SQLiteStore) UpsertModule(ctx context.Context, m *models.Module) error {
	lessons, err := encodeJSON(m.Lessons)
	if err != nil {
		return err
	}
	prereqs, err := encodeJSON(m.Prerequisites)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO modules (`+moduleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			level = excluded.level,
			title = excluded.title,
			description = excluded.description,
			sort_order = excluded.sort_order,
			lessons = excluded.lessons,
			prerequisites = excluded.prerequisites,
			updated_at = excluded.updated_at`,
		m.ID, string(m.Level), m.Title, m.Description, m.Order, lessons, prereqs,
		toUnix(m.CreatedAt), toUnix(m.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert module: %w", err)
	}
	return nil
}

// GetModule retrieves a module by ID.
func (s *SQLiteStore) GetModule(ctx context.Context, moduleID string) (*models.Module, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+moduleColumns+` FROM modules WHERE id = ?`, moduleID)
	m, err := scanModule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("module %s: %w", moduleID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	return m, nil
}

// ListModules returns every module in display order.
func (s *SQLiteStore) ListModules(ctx context.Context) ([]*models.Module, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+moduleColumns+` FROM modules ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	defer rows.Close()

	var modules []*models.Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate modules: %w", err)
	}
	return modules, nil
}

// UpsertLessonProgress stores the user's progress on a lesson.
func (s *SQLiteStore) UpsertLessonProgress(ctx context.Context, p *models.LessonProgress) error {
	p.ID = models.ProgressID(p.UserID, p.ModuleID, p.LessonID)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lesson_progress (`+progressColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			time_spent = excluded.time_spent,
			last_accessed_at = excluded.last_accessed_at,
			updated_at = excluded.updated_at`,
		p.ID, p.UserID, p.ModuleID, p.LessonID, boolToInt(p.Completed), nullTime(p.CompletedAt),
		p.TimeSpent, toUnix(p.LastAccessedAt), toUnix(p.CreatedAt), toUnix(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert lesson progress: %w", err)
	}
	return nil
}

// GetLessonProgress retrieves the user's progress on one lesson.
func (s *SQLiteStore) GetLessonProgress(ctx context.Context, userID, moduleID, lessonID string) (*models.LessonProgress, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+progressColumns+` FROM lesson_progress WHERE user_id = ? AND module_id = ? AND lesson_id = ?`,
		userID, moduleID, lessonID,
	)
	p, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("progress %s/%s/%s: %w", userID, moduleID, lessonID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson progress: %w", err)
	}
	return p, nil
}

// ListLessonProgress returns all of the user's lesson progress.
func (s *SQLiteStore) ListLessonProgress(ctx context.Context, userID string) ([]*models.LessonProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+progressColumns+` FROM lesson_progress WHERE user_id = ? ORDER BY module_id, lesson_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lesson progress: %w", err)
	}
	defer rows.Close()

	var progress []*models.LessonProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson progress: %w", err)
		}
		progress = append(progress, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lesson progress: %w", err)
	}
	return progress, nil
}

func scanModule(row scanner) (*models.Module, error) {
	var (
		m                  models.Module
		level              string
		lessons, prereqs   string
		createdAt, updated int64
	)
	if err := row.Scan(
		&m.ID, &level, &m.Title, &m.Description, &m.Order, &lessons, &prereqs, &createdAt, &updated,
	); err != nil {
		return nil, err
	}
	m.Level = models.ModuleLevel(level)
	if err := decodeJSON(lessons, &m.Lessons); err != nil {
		return nil, err
	}
	if err := decodeJSON(prereqs, &m.Prerequisites); err != nil {
		return nil, err
	}
	m.CreatedAt = fromUnix(createdAt)
	m.UpdatedAt = fromUnix(updated)
	return &m, nil
}

func scanProgress(row scanner) (*models.LessonProgress, error) {
	var (
		p                            models.LessonProgress
		completed                    int
		completedAt                  sql.NullInt64
		accessed, createdAt, updated int64
	)
	if err := row.Scan(
		&p.ID, &p.UserID, &p.ModuleID, &p.LessonID, &completed, &completedAt, &p.TimeSpent,
		&accessed, &createdAt, &updated,
	); err != nil {
		return nil, err
	}
	p.Completed = completed != 0
	p.CompletedAt = timePtr(completedAt)
	p.LastAccessedAt = fromUnix(accessed)
	p.CreatedAt = fromUnix(createdAt)
	p.UpdatedAt = fromUnix(updated)
	return &p, nil
}
