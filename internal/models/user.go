package models

import "time"

// Role controls what a user may do.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleWarrior    Role = "WARRIOR"
	RolePending    Role = "PENDING"
)

// IsAdmin reports whether the role grants access to admin tooling.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleWarrior, RolePending:
		return true
	}
	return false
}

// UserStatus is the approval state of an account.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusPending   UserStatus = "pending"
	StatusSuspended UserStatus = "suspended"
	StatusRejected  UserStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusSuspended, StatusRejected:
		return true
	}
	return false
}

// User represents a registered account.
type User struct {
	// ID is the unique identifier and the partition key.
	ID string `json:"id"`

	// WarriorID is the human-facing member number (MPT-YYYY-NNNNN).
	WarriorID string `json:"warriorId"`

	Email string `json:"email"`
	Name  string `json:"name"`

	// PasswordHash is the bcrypt hash of the password. Never serialized to clients.
	PasswordHash string `json:"password"`

	WhatsApp   string `json:"whatsapp,omitempty"`
	TelegramID string `json:"telegram_id,omitempty"`

	Role   Role       `json:"role"`
	Status UserStatus `json:"status"`

	// InvitationCode is the code consumed at registration.
	InvitationCode string `json:"invitation_code"`

	// InvitedBy is the user ID that created the invitation code, if any.
	InvitedBy string `json:"invited_by,omitempty"`

	// Founder marks the academy founder; founders never appear on the leaderboard.
	Founder bool `json:"isFounder,omitempty"`

	// BonusPoints are leaderboard points awarded manually by a super admin.
	BonusPoints int `json:"bonusPoints,omitempty"`

	// DisciplineScore runs from 0 to MaxDisciplineScore. It only changes
	// through the discipline log, never through a plain user update.
	DisciplineScore int `json:"disciplineScore"`

	Avatar string `json:"avatar,omitempty"`

	Settings UserSettings `json:"settings"`

	JoinDate     time.Time  `json:"join_date"`
	ApprovedDate *time.Time `json:"approved_date,omitempty"`
	ApprovedBy   string     `json:"approved_by,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	LoginCount   int        `json:"login_count"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSettings holds per-user preferences.
type UserSettings struct {
	Theme         string  `json:"theme"`
	Currency      string  `json:"currency"`
	Timezone      string  `json:"timezone"`
	Notifications bool    `json:"notifications"`
	Language      string  `json:"language"`
	RiskPercent   float64 `json:"riskPercent"`
}

// DefaultUserSettings returns the settings every new account starts with.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		Theme:         "dark",
		Currency:      "USD",
		Timezone:      "Asia/Jakarta",
		Notifications: true,
		Language:      "id",
		RiskPercent:   1,
	}
}

// RanksOnLeaderboard reports whether the user takes part in the weekly ranking.
func (u *User) RanksOnLeaderboard() bool {
	return u.Role == RoleWarrior && u.Status == StatusActive && !u.Founder
}
