package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

const questionColumns = `id, module_id, type, question, options, correct_answer, points, sort_order, category,
	created_at, updated_at`

const answerColumns = `id, user_id, module_id, question_id, answer, score, is_correct, feedback, graded_by,
	submitted_at, graded_at`

// UpsertQuestion inserts or replaces a quiz question.
func (s *SQLiteStore) UpsertQuestion(ctx context.Context, q *models.QuizQuestion) error {
	options, err := encodeJSON(q.Options)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quiz_questions (`+questionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(module_id, id) DO UPDATE SET
			type = excluded.type,
			question = excluded.question,
			options = excluded.options,
			correct_answer = excluded.correct_answer,
			points = excluded.points,
			sort_order = excluded.sort_order,
			category = excluded.category,
			updated_at = excluded.updated_at`,
		q.ID, q.ModuleID, string(q.Type), q.Question, options, nullInt(q.CorrectAnswer),
		q.Points, q.Order, q.Category, toUnix(q.CreatedAt), toUnix(q.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert quiz question: %w", err)
	}
	return nil
}

// GetQuestion retrieves one question of a module.
func (s *SQLiteStore) GetQuestion(ctx context.Context, moduleID, questionID string) (*models.QuizQuestion, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM quiz_questions WHERE module_id = ? AND id = ?`,
		moduleID, questionID,
	)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("question %s: %w", questionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz question: %w", err)
	}
	return q, nil
}

// ListQuestions returns a module's questions in display order.
func (s *SQLiteStore) ListQuestions(ctx context.Context, moduleID string) ([]*models.QuizQuestion, error) {
	return s.queryQuestions(ctx,
		`SELECT `+questionColumns+` FROM quiz_questions WHERE module_id = ? ORDER BY sort_order, id`, moduleID)
}

// ListAllQuestions returns every module's questions.
func (s *SQLiteStore) ListAllQuestions(ctx context.Context) ([]*models.QuizQuestion, error) {
	return s.queryQuestions(ctx,
		`SELECT `+questionColumns+` FROM quiz_questions ORDER BY module_id, sort_order, id`)
}

func (s *SQLiteStore) queryQuestions(ctx context.Context, query string, args ...any) ([]*models.QuizQuestion, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quiz questions: %w", err)
	}
	defer rows.Close()

	var questions []*models.QuizQuestion
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quiz questions: %w", err)
	}
	return questions, nil
}

// UpsertAnswer stores the user's answer, replacing a previous submission.
func (s *SQLiteStore) UpsertAnswer(ctx context.Context, a *models.QuizAnswer) error {
	a.ID = models.AnswerID(a.UserID, a.ModuleID, a.QuestionID)
	var correct sql.NullInt64
	if a.IsCorrect != nil {
		correct = sql.NullInt64{Int64: int64(boolToInt(*a.IsCorrect)), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_answers (`+answerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			answer = excluded.answer,
			score = excluded.score,
			is_correct = excluded.is_correct,
			feedback = excluded.feedback,
			graded_by = excluded.graded_by,
			submitted_at = excluded.submitted_at,
			graded_at = excluded.graded_at`,
		a.ID, a.UserID, a.ModuleID, a.QuestionID, a.Answer, nullInt(a.Score), correct,
		a.Feedback, a.GradedBy, toUnix(a.SubmittedAt), nullTime(a.GradedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert quiz answer: %w", err)
	}
	return nil
}

// GetAnswer retrieves the user's answer to a module's question.
func (s *SQLiteStore) GetAnswer(ctx context.Context, userID, moduleID, questionID string) (*models.QuizAnswer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+answerColumns+` FROM quiz_answers WHERE user_id = ? AND module_id = ? AND question_id = ?`,
		userID, moduleID, questionID,
	)
	a, err := scanAnswer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("answer %s/%s/%s: %w", userID, moduleID, questionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz answer: %w", err)
	}
	return a, nil
}

// ListAnswers returns all of the user's answers.
func (s *SQLiteStore) ListAnswers(ctx context.Context, userID string) ([]*models.QuizAnswer, error) {
	return s.queryAnswers(ctx,
		`SELECT `+answerColumns+` FROM quiz_answers WHERE user_id = ? ORDER BY submitted_at`, userID)
}

// ListUngradedAnswers returns answers with no score yet, oldest first.
func (s *SQLiteStore) ListUngradedAnswers(ctx context.Context) ([]*models.QuizAnswer, error) {
	return s.queryAnswers(ctx,
		`SELECT `+answerColumns+` FROM quiz_answers WHERE score IS NULL ORDER BY submitted_at`)
}

func (s *SQLiteStore) queryAnswers(ctx context.Context, query string, args ...any) ([]*models.QuizAnswer, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quiz answers: %w", err)
	}
	defer rows.Close()

	var answers []*models.QuizAnswer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz answer: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quiz answers: %w", err)
	}
	return answers, nil
}

func scanQuestion(row scanner) (*models.QuizQuestion, error) {
	var (
		q                  models.QuizQuestion
		qtype, options     string
		correct            sql.NullInt64
		createdAt, updated int64
	)
	if err := row.Scan(
		&q.ID, &q.ModuleID, &qtype, &q.Question, &options, &correct,
		&q.Points, &q.Order, &q.Category, &createdAt, &updated,
	); err != nil {
		return nil, err
	}
	q.Type = models.QuestionType(qtype)
	if err := decodeJSON(options, &q.Options); err != nil {
		return nil, err
	}
	q.CorrectAnswer = intPtr(correct)
	q.CreatedAt = fromUnix(createdAt)
	q.UpdatedAt = fromUnix(updated)
	return &q, nil
}

func scanAnswer(row scanner) (*models.QuizAnswer, error) {
	var (
		a              models.QuizAnswer
		score, correct sql.NullInt64
		submitted      int64
		graded         sql.NullInt64
	)
	if err := row.Scan(
		&a.ID, &a.UserID, &a.ModuleID, &a.QuestionID, &a.Answer, &score, &correct,
		&a.Feedback, &a.GradedBy, &submitted, &graded,
	); err != nil {
		return nil, err
	}
	a.Score = intPtr(score)
	if correct.Valid {
		b := correct.Int64 != 0
		a.IsCorrect = &b
	}
	a.SubmittedAt = fromUnix(submitted)
	a.GradedAt = timePtr(graded)
	return &a, nil
}
