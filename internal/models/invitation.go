package models

import "time"

// InvitationCode gates registration. A code can be used MaxUses times
// until ExpiresAt, and assigns Role to whoever registers with it.
type InvitationCode struct {
	// ID is the unique identifier (UUID format).
	ID string `json:"id"`

	// Code is the upper-case token users type in. It is the partition key.
	Code string `json:"code"`

	// CreatedBy is the user ID of the admin (or referrer) who issued the code.
	CreatedBy string `json:"created_by,omitempty"`

	MaxUses   int       `json:"max_uses"`
	UsedCount int       `json:"used_count"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`

	// Role is assigned to users registering with this code (ADMIN or WARRIOR).
	Role Role `json:"role"`

	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Remaining returns how many registrations the code still allows.
func (c *InvitationCode) Remaining() int {
	if c.UsedCount >= c.MaxUses {
		return 0
	}
	return c.MaxUses - c.UsedCount
}
