package api

import (
	"time"

	"github.com/mptwarrior/warrior/internal/models"
)

// User is the client-facing view of an account. It never carries the
// password hash.
type User struct {
	ID           string              `json:"id"`
	WarriorID    string              `json:"warriorId"`
	Email        string              `json:"email"`
	Name         string              `json:"name"`
	WhatsApp     string              `json:"whatsapp,omitempty"`
	TelegramID   string              `json:"telegram_id,omitempty"`
	Role         models.Role         `json:"role"`
	Status       models.UserStatus   `json:"status"`
	InvitedBy    string              `json:"invited_by,omitempty"`
	Founder      bool                `json:"isFounder,omitempty"`
	BonusPoints  int                 `json:"bonusPoints,omitempty"`
	Discipline   int                 `json:"disciplineScore"`
	Avatar       string              `json:"avatar,omitempty"`
	Settings     models.UserSettings `json:"settings"`
	JoinDate     time.Time           `json:"join_date"`
	ApprovedDate *time.Time          `json:"approved_date,omitempty"`
	LastLogin    *time.Time          `json:"last_login,omitempty"`
	LoginCount   int                 `json:"login_count"`
}

// NewUser copies the public fields of u.
func NewUser(u *models.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:           u.ID,
		WarriorID:    u.WarriorID,
		Email:        u.Email,
		Name:         u.Name,
		WhatsApp:     u.WhatsApp,
		TelegramID:   u.TelegramID,
		Role:         u.Role,
		Status:       u.Status,
		InvitedBy:    u.InvitedBy,
		Founder:      u.Founder,
		BonusPoints:  u.BonusPoints,
		Discipline:   u.DisciplineScore,
		Avatar:       u.Avatar,
		Settings:     u.Settings,
		JoinDate:     u.JoinDate,
		ApprovedDate: u.ApprovedDate,
		LastLogin:    u.LastLogin,
		LoginCount:   u.LoginCount,
	}
}

// NewUsers maps a slice with NewUser.
func NewUsers(users []*models.User) []*User {
	out := make([]*User, len(users))
	for i, u := range users {
		out[i] = NewUser(u)
	}
	return out
}

type RegisterRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	WhatsApp       string `json:"whatsapp,omitempty"`
	TelegramID     string `json:"telegram_id,omitempty"`
	InvitationCode string `json:"invitation_code"`
}

type RegisterResponse struct {
	User    *User  `json:"user"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// UpdateProfileRequest changes the fields that are set. Settings are merged
// into the stored ones field by field.
type UpdateProfileRequest struct {
	Name     *string         `json:"name,omitempty"`
	Avatar   *string         `json:"avatar,omitempty"`
	Settings *SettingsUpdate `json:"settings,omitempty"`
}

type SettingsUpdate struct {
	Theme         *string  `json:"theme,omitempty"`
	Currency      *string  `json:"currency,omitempty"`
	Timezone      *string  `json:"timezone,omitempty"`
	Notifications *bool    `json:"notifications,omitempty"`
	Language      *string  `json:"language,omitempty"`
	RiskPercent   *float64 `json:"riskPercent,omitempty"`
}

type UpdateProfileResponse struct {
	User *User `json:"user"`
}
