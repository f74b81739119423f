// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mptwarrior/warrior/internal/models"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a document with the same key already exists,
	// or when an optimistic update lost a race.
	ErrConflict = errors.New("conflict")

	// ErrCodeExhausted is returned when an invitation code has no uses left.
	ErrCodeExhausted = errors.New("invitation code exhausted")

	// ErrCodeInactive is returned when an invitation code was deactivated.
	ErrCodeInactive = errors.New("invitation code inactive")
)

// UserFilter narrows a user listing. Zero values match everything.
type UserFilter struct {
	Status models.UserStatus
	Role   models.Role
}

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrConflict if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID returns ErrNotFound if no user has the id.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail matches case-insensitively. Returns ErrNotFound if absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateUser replaces the stored user with the given one. The discipline
	// score is left alone; see DisciplineStore.
	UpdateUser(ctx context.Context, user *models.User) error

	// ListUsers returns matching users, newest first.
	ListUsers(ctx context.Context, filter UserFilter) ([]*models.User, error)
}

// TradeStore persists trade journal entries. Every call is scoped to one owner.
type TradeStore interface {
	CreateTrade(ctx context.Context, trade *models.Trade) error
	GetTrade(ctx context.Context, userID, tradeID string) (*models.Trade, error)

	// ListTrades returns the owner's trades, newest trade date first.
	ListTrades(ctx context.Context, userID string, filter models.TradeFilter) ([]*models.Trade, error)

	UpdateTrade(ctx context.Context, trade *models.Trade) error
	DeleteTrade(ctx context.Context, userID, tradeID string) error

	// CountTrades counts trades across all users.
	CountTrades(ctx context.Context) (int, error)
}

// CodeStore persists invitation codes.
type CodeStore interface {
	// CreateCode returns ErrConflict if the code already exists.
	CreateCode(ctx context.Context, code *models.InvitationCode) error

	// GetCode looks up by the (upper-case) code value.
	GetCode(ctx context.Context, code string) (*models.InvitationCode, error)

	// ListCodes returns codes newest first, optionally only active ones.
	ListCodes(ctx context.Context, activeOnly bool) ([]*models.InvitationCode, error)

	UpdateCode(ctx context.Context, code *models.InvitationCode) error
	DeleteCode(ctx context.Context, code string) error

	// IncrementCodeUse atomically bumps used_count. It returns ErrCodeInactive
	// for a deactivated code, ErrCodeExhausted when it is already at
	// max_uses, and never lets
	// used_count pass max_uses under concurrent callers.
	IncrementCodeUse(ctx context.Context, code string) (*models.InvitationCode, error)
}

// LeaderboardStore persists current rankings and weekly snapshots.
type LeaderboardStore interface {
	UpsertLeaderboardEntry(ctx context.Context, entry *models.LeaderboardEntry) error
	GetLeaderboardEntry(ctx context.Context, userID string) (*models.LeaderboardEntry, error)

	// ListLeaderboardEntries returns every entry ordered by rank.
	ListLeaderboardEntries(ctx context.Context) ([]*models.LeaderboardEntry, error)

	DeleteLeaderboardEntry(ctx context.Context, userID string) error

	UpsertRankSnapshot(ctx context.Context, snap *models.RankSnapshot) error

	// ListRankSnapshots returns all snapshots recorded for one week.
	ListRankSnapshots(ctx context.Context, week string) ([]*models.RankSnapshot, error)

	// LatestSnapshotsBefore returns, per user, the most recent snapshot whose
	// week sorts strictly before the given week.
	LatestSnapshotsBefore(ctx context.Context, week string) (map[string]*models.RankSnapshot, error)
}

// QuizStore persists academy questions and user answers.
type QuizStore interface {
	UpsertQuestion(ctx context.Context, q *models.QuizQuestion) error
	GetQuestion(ctx context.Context, moduleID, questionID string) (*models.QuizQuestion, error)

	// ListQuestions returns a module's questions ordered by Order.
	ListQuestions(ctx context.Context, moduleID string) ([]*models.QuizQuestion, error)

	// ListAllQuestions returns every question of every module.
	ListAllQuestions(ctx context.Context) ([]*models.QuizQuestion, error)

	// UpsertAnswer replaces any earlier answer by the same user to the same
	// question of the same module. It sets a.ID.
	UpsertAnswer(ctx context.Context, a *models.QuizAnswer) error
	GetAnswer(ctx context.Context, userID, moduleID, questionID string) (*models.QuizAnswer, error)

	// ListAnswers returns all of one user's answers.
	ListAnswers(ctx context.Context, userID string) ([]*models.QuizAnswer, error)

	// ListUngradedAnswers returns answers still waiting for a score, oldest first.
	ListUngradedAnswers(ctx context.Context) ([]*models.QuizAnswer, error)
}

// ModuleStore persists academy modules and per-lesson progress.
type ModuleStore interface {
	UpsertModule(ctx context.Context, m *models.Module) error
	GetModule(ctx context.Context, moduleID string) (*models.Module, error)

	// ListModules returns every module ordered by Order.
	ListModules(ctx context.Context) ([]*models.Module, error)

	// UpsertLessonProgress replaces the user's progress on the lesson. It sets p.ID.
	UpsertLessonProgress(ctx context.Context, p *models.LessonProgress) error
	GetLessonProgress(ctx context.Context, userID, moduleID, lessonID string) (*models.LessonProgress, error)

	// ListLessonProgress returns all of one user's progress documents.
	ListLessonProgress(ctx context.Context, userID string) ([]*models.LessonProgress, error)
}

// DisciplineStore persists discipline scores and their history.
type DisciplineStore interface {
	// AdjustDisciplineScore adds delta to the user's score, clamped to
	// 0..models.MaxDisciplineScore, and returns the score before and after.
	// Concurrent adjustments never lose an update.
	AdjustDisciplineScore(ctx context.Context, userID string, delta int) (before, after int, err error)

	CreateDisciplineLog(ctx context.Context, entry *models.DisciplineLog) error

	// ListDisciplineLogs returns the user's newest limit entries, newest first.
	ListDisciplineLogs(ctx context.Context, userID string, limit int) ([]*models.DisciplineLog, error)
}

// ChatStore persists mentor conversations.
type ChatStore interface {
	CreateThread(ctx context.Context, thread *models.ChatThread) error
	GetThread(ctx context.Context, userID, threadID string) (*models.ChatThread, error)

	// ListThreads returns the user's threads, most recently updated first.
	ListThreads(ctx context.Context, userID string, limit int) ([]*models.ChatThread, error)

	UpdateThread(ctx context.Context, thread *models.ChatThread) error

	// DeleteThread removes the thread and all of its messages.
	DeleteThread(ctx context.Context, userID, threadID string) error

	CreateMessage(ctx context.Context, msg *models.ChatMessage) error

	// ListMessages returns messages oldest first. A positive lastN keeps only
	// the most recent lastN.
	ListMessages(ctx context.Context, threadID string, lastN int) ([]*models.ChatMessage, error)

	// SearchMessages finds the user's messages containing query, ignoring case.
	SearchMessages(ctx context.Context, userID, query string, limit int) ([]*models.ChatMessage, error)
}

// AuditStore persists the admin audit trail.
type AuditStore interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error

	// ListAuditLogs returns the newest limit entries, newest first.
	ListAuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error)
}

// Store defines the full persistence surface of the service.
// This abstraction allows swapping storage backends (SQLite, Cosmos DB)
// without changing the service layer.
type Store interface {
	UserStore
	TradeStore
	CodeStore
	LeaderboardStore
	QuizStore
	ModuleStore
	DisciplineStore
	ChatStore
	AuditStore

	// Close releases any resources held by the store.
	Close() error
}

// ISOWeek formats t as "YYYY-Www", which sorts chronologically as a string.
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return isoWeekString(year, week)
}

// PreviousISOWeek returns the ISO week before the one containing t.
func PreviousISOWeek(t time.Time) string {
	return ISOWeek(t.AddDate(0, 0, -7))
}

// WeekStart returns Monday 00:00 UTC of the ISO week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func isoWeekString(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}
