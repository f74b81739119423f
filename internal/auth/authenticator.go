package auth

import (
	"context"

	"github.com/mptwarrior/warrior/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// The service layer only depends on this, so the credential scheme can change
// without touching handlers.
type Authenticator interface {
	// Register hashes the credential into user and persists it.
	// The caller fills in every other field first.
	Register(ctx context.Context, user *models.User, credential string) error

	// Authenticate verifies the credential and returns the user. Unknown
	// emails and wrong credentials both yield ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
