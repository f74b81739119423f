package api

import "github.com/mptwarrior/warrior/internal/models"

type ValidateCodeRequest struct {
	Code string `json:"code"`
}

type ValidateCodeResponse struct {
	Valid bool `json:"valid"`
	// Reason is a machine-readable rejection cause; empty when valid.
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	// Role is what a registration with this code receives.
	Role models.Role `json:"role,omitempty"`
}

type GenerateCodeRequest struct {
	// Code is optional; a random MPT-XXXX-YYYY code is minted when empty.
	Code          string      `json:"code,omitempty"`
	MaxUses       int         `json:"max_uses,omitempty"`
	ExpiresInDays int         `json:"expires_in_days,omitempty"`
	Role          models.Role `json:"role,omitempty"`
	Description   string      `json:"description,omitempty"`
}

type GenerateCodeResponse struct {
	Code *models.InvitationCode `json:"code"`
}

type BulkGenerateCodesRequest struct {
	Count         int         `json:"count"`
	MaxUses       int         `json:"max_uses,omitempty"`
	ExpiresInDays int         `json:"expires_in_days,omitempty"`
	Role          models.Role `json:"role,omitempty"`
	Description   string      `json:"description,omitempty"`
}

type BulkGenerateCodesResponse struct {
	Codes []*models.InvitationCode `json:"codes"`
}

type ListCodesRequest struct {
	ActiveOnly bool `json:"active_only,omitempty"`
}

type ListCodesResponse struct {
	Codes []*models.InvitationCode `json:"codes"`
}

// UpdateCodeRequest edits a code. Nil fields are left unchanged.
type UpdateCodeRequest struct {
	Code          string  `json:"code"`
	MaxUses       *int    `json:"max_uses,omitempty"`
	ExpiresInDays *int    `json:"expires_in_days,omitempty"`
	Description   *string `json:"description,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

type UpdateCodeResponse struct {
	Code *models.InvitationCode `json:"code"`
}

type CodeRequest struct {
	Code string `json:"code"`
}

type DeactivateCodeResponse struct {
	Code *models.InvitationCode `json:"code"`
}

type DeleteCodeResponse struct{}

type GenerateReferralCodeRequest struct{}

type GenerateReferralCodeResponse struct {
	Code *models.InvitationCode `json:"code"`
}
