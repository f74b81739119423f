// Package invitation validates, consumes and mints registration codes.
package invitation

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

// Reason explains why a code cannot be used.
type Reason string

const (
	ReasonNotFound  Reason = "not_found"
	ReasonInactive  Reason = "inactive"
	ReasonExhausted Reason = "limit_reached"
	ReasonExpired   Reason = "expired"
)

// Message is the user-facing text for the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonNotFound:
		return "Invitation code not found"
	case ReasonInactive:
		return "Invitation code is no longer active"
	case ReasonExhausted:
		return "Invitation code has reached its usage limit"
	case ReasonExpired:
		return "Invitation code has expired"
	}
	return "Invitation code is invalid"
}

// ErrInvalidCode is the root of every ValidationError.
var ErrInvalidCode = errors.New("invalid invitation code")

// ErrInvalidParams is returned for bad generation parameters.
var ErrInvalidParams = errors.New("invalid invitation code parameters")

// ValidationError reports which check a code failed.
type ValidationError struct {
	Code   string
	Reason Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason.Message(), e.Code)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidCode }

// Defaults for minted codes.
const (
	DefaultExpiryDays  = 30
	ReferralMaxUses    = 10
	ReferralExpiryDays = 90
	MaxBulkCodes       = 100
	generateAttempts   = 5
	randomPartLength   = 4
	randomPartAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var explicitCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{2,38}[A-Z0-9]$`)

// Normalize trims and upper-cases user input so lookups ignore case.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validation is the outcome of checking a code without consuming it.
type Validation struct {
	Valid  bool
	Reason Reason
	Code   *models.InvitationCode
}

// Manager applies invitation rules on top of a CodeStore.
type Manager struct {
	store storage.CodeStore
	now   func() time.Time
}

// NewManager creates a manager using the wall clock.
func NewManager(store storage.CodeStore) *Manager {
	return &Manager{store: store, now: time.Now}
}

// WithClock replaces the clock; used by tests and batch tools.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Check returns the reason c cannot be used at now, or "" if it can.
func Check(c *models.InvitationCode, now time.Time) Reason {
	switch {
	case !c.IsActive:
		return ReasonInactive
	case c.UsedCount >= c.MaxUses:
		return ReasonExhausted
	case c.ExpiresAt.Before(now):
		return ReasonExpired
	}
	return ""
}

// Validate checks a code without consuming it.
func (m *Manager) Validate(ctx context.Context, code string) (*Validation, error) {
	c, err := m.store.GetCode(ctx, Normalize(code))
	if errors.Is(err, storage.ErrNotFound) {
		return &Validation{Reason: ReasonNotFound}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up invitation code: %w", err)
	}

	if reason := Check(c, m.now()); reason != "" {
		return &Validation{Reason: reason, Code: c}, nil
	}
	return &Validation{Valid: true, Code: c}, nil
}

// Use re-validates the code and consumes one use atomically. Failures that
// come from the code itself are *ValidationError.
func (m *Manager) Use(ctx context.Context, code string) (*models.InvitationCode, error) {
	normalized := Normalize(code)

	v, err := m.Validate(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if !v.Valid {
		return nil, &ValidationError{Code: normalized, Reason: v.Reason}
	}

	used, err := m.store.IncrementCodeUse(ctx, normalized)
	switch {
	case errors.Is(err, storage.ErrCodeInactive):
		return nil, &ValidationError{Code: normalized, Reason: ReasonInactive}
	case errors.Is(err, storage.ErrCodeExhausted):
		return nil, &ValidationError{Code: normalized, Reason: ReasonExhausted}
	case errors.Is(err, storage.ErrNotFound):
		return nil, &ValidationError{Code: normalized, Reason: ReasonNotFound}
	case err != nil:
		return nil, fmt.Errorf("failed to consume invitation code: %w", err)
	}

	slog.Info("invitation code used", "code", normalized, "used_count", used.UsedCount, "max_uses", used.MaxUses)
	return used, nil
}

// GenerateParams describes a code to mint. Zero values take defaults.
type GenerateParams struct {
	Code          string
	MaxUses       int
	ExpiresInDays int
	Role          models.Role
	Description   string
	CreatedBy     string
}

func (p *GenerateParams) normalize() error {
	p.Code = Normalize(p.Code)
	if p.Code != "" && !explicitCodePattern.MatchString(p.Code) {
		return fmt.Errorf("%w: code must be 4-40 letters, digits or dashes", ErrInvalidParams)
	}
	if p.MaxUses == 0 {
		p.MaxUses = 1
	}
	if p.MaxUses < 1 {
		return fmt.Errorf("%w: max uses must be at least 1", ErrInvalidParams)
	}
	if p.ExpiresInDays == 0 {
		p.ExpiresInDays = DefaultExpiryDays
	}
	if p.ExpiresInDays < 0 {
		return fmt.Errorf("%w: expiry must be in the future", ErrInvalidParams)
	}
	switch p.Role {
	case "":
		p.Role = models.RoleWarrior
	case models.RoleWarrior, models.RoleAdmin:
	default:
		return fmt.Errorf("%w: role must be ADMIN or WARRIOR", ErrInvalidParams)
	}
	return nil
}

// Generate mints one code. Without an explicit code a random
// MPT-XXXX-<year> code is drawn, retrying on collisions.
func (m *Manager) Generate(ctx context.Context, params GenerateParams) (*models.InvitationCode, error) {
	if err := params.normalize(); err != nil {
		return nil, err
	}

	now := m.now().UTC()
	for attempt := 0; attempt < generateAttempts; attempt++ {
		value := params.Code
		if value == "" {
			var err error
			if value, err = RandomCode(now.Year()); err != nil {
				return nil, err
			}
		}

		c := &models.InvitationCode{
			ID:          uuid.New().String(),
			Code:        value,
			CreatedBy:   params.CreatedBy,
			MaxUses:     params.MaxUses,
			ExpiresAt:   now.AddDate(0, 0, params.ExpiresInDays),
			IsActive:    true,
			Role:        params.Role,
			Description: params.Description,
			CreatedAt:   now,
		}

		err := m.store.CreateCode(ctx, c)
		if err == nil {
			slog.Info("invitation code created", "code", c.Code, "role", c.Role, "max_uses", c.MaxUses, "created_by", c.CreatedBy)
			return c, nil
		}
		if !errors.Is(err, storage.ErrConflict) || params.Code != "" {
			return nil, fmt.Errorf("failed to create invitation code: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to find a free invitation code after %d attempts: %w", generateAttempts, storage.ErrConflict)
}

// BulkGenerate mints count random codes sharing the same parameters.
func (m *Manager) BulkGenerate(ctx context.Context, count int, params GenerateParams) ([]*models.InvitationCode, error) {
	if count < 1 || count > MaxBulkCodes {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidParams, MaxBulkCodes)
	}
	params.Code = ""

	codes := make([]*models.InvitationCode, 0, count)
	for i := 0; i < count; i++ {
		c, err := m.Generate(ctx, params)
		if err != nil {
			return codes, err
		}
		codes = append(codes, c)
	}
	return codes, nil
}

// ReferralCode returns the user's personal REF-<warriorId> code, creating it
// on first request.
func (m *Manager) ReferralCode(ctx context.Context, user *models.User) (*models.InvitationCode, error) {
	if user.WarriorID == "" {
		return nil, fmt.Errorf("%w: user has no warrior id", ErrInvalidParams)
	}
	value := Normalize("REF-" + user.WarriorID)

	existing, err := m.store.GetCode(ctx, value)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up referral code: %w", err)
	}

	c, err := m.Generate(ctx, GenerateParams{
		Code:          value,
		MaxUses:       ReferralMaxUses,
		ExpiresInDays: ReferralExpiryDays,
		Role:          models.RoleWarrior,
		Description:   "Referral from " + user.Name,
		CreatedBy:     user.ID,
	})
	if errors.Is(err, storage.ErrConflict) {
		// Lost a race with a concurrent request for the same code.
		return m.store.GetCode(ctx, value)
	}
	return c, err
}

// List returns codes newest first.
func (m *Manager) List(ctx context.Context, activeOnly bool) ([]*models.InvitationCode, error) {
	codes, err := m.store.ListCodes(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitation codes: %w", err)
	}
	return codes, nil
}

// UpdateParams edits a code. Nil fields are left unchanged.
type UpdateParams struct {
	MaxUses       *int
	ExpiresInDays *int
	Description   *string
	IsActive      *bool
}

// Update applies p to the stored code. MaxUses may not drop below the uses
// already consumed. The use counter itself is never written here.
func (m *Manager) Update(ctx context.Context, code string, p UpdateParams) (*models.InvitationCode, error) {
	c, err := m.store.GetCode(ctx, Normalize(code))
	if err != nil {
		return nil, err
	}

	if p.MaxUses != nil {
		if *p.MaxUses < 1 || *p.MaxUses < c.UsedCount {
			return nil, fmt.Errorf("%w: max uses must be at least 1 and not below %d uses already made", ErrInvalidParams, c.UsedCount)
		}
		c.MaxUses = *p.MaxUses
	}
	if p.ExpiresInDays != nil {
		if *p.ExpiresInDays < 1 {
			return nil, fmt.Errorf("%w: expiry must be in the future", ErrInvalidParams)
		}
		c.ExpiresAt = m.now().UTC().AddDate(0, 0, *p.ExpiresInDays)
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}

	if err := m.store.UpdateCode(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update invitation code: %w", err)
	}
	return c, nil
}

// Deactivate stops a code from being used again.
func (m *Manager) Deactivate(ctx context.Context, code string) (*models.InvitationCode, error) {
	inactive := false
	return m.Update(ctx, code, UpdateParams{IsActive: &inactive})
}

// Delete removes a code. Users registered with it keep it on their record.
func (m *Manager) Delete(ctx context.Context, code string) error {
	return m.store.DeleteCode(ctx, Normalize(code))
}

// RandomCode draws an MPT-XXXX-<year> code.
func RandomCode(year int) (string, error) {
	var b strings.Builder
	b.WriteString("MPT-")
	limit := big.NewInt(int64(len(randomPartAlphabet)))
	for i := 0; i < randomPartLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to draw random code: %w", err)
		}
		b.WriteByte(randomPartAlphabet[n.Int64()])
	}
	fmt.Fprintf(&b, "-%d", year)
	return b.String(), nil
}
