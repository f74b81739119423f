package middleware

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"
	"github.com/mptwarrior/warrior/internal/auth"
	"github.com/mptwarrior/warrior/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// EmailKey is the context key for storing the authenticated user's email.
	EmailKey contextKey = "email"
	// RoleKey is the context key for the role carried in the token.
	RoleKey contextKey = "role"
	// StatusKey is the context key for the account status carried in the token.
	StatusKey contextKey = "status"
)

var (
	ErrForbidden      = errors.New("insufficient permissions")
	ErrAccountPending = errors.New("account is awaiting approval")
)

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetEmail extracts the user email from the context.
// Returns empty string if not found.
func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

// GetRole extracts the caller's role from the context.
func GetRole(ctx context.Context) models.Role {
	role, _ := ctx.Value(RoleKey).(models.Role)
	return role
}

// GetStatus extracts the caller's account status from the context.
func GetStatus(ctx context.Context) models.UserStatus {
	status, _ := ctx.Value(StatusKey).(models.UserStatus)
	return status
}

// WithClaims returns a context carrying the identity in claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, EmailKey, claims.Email)
	ctx = context.WithValue(ctx, RoleKey, claims.Role)
	ctx = context.WithValue(ctx, StatusKey, claims.Status)
	return ctx
}

// bearerToken returns the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// RequireAuth returns a middleware that validates JWT tokens and requires authentication.
// It extracts the token from the Authorization header, validates it, and adds
// the caller's identity to the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			tokenString, ok := bearerToken(authHeader)
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithClaims(ctx, claims), req)
		}
	}
}

// OptionalAuth returns a middleware that validates JWT tokens if present, but allows
// requests without authentication. Services behind it decide per procedure
// whether an identity is needed.
func OptionalAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if tokenString, ok := bearerToken(req.Header().Get("Authorization")); ok {
				// Invalid tokens are ignored; the request proceeds anonymously.
				if claims, err := jwtManager.Validate(tokenString); err == nil {
					ctx = WithClaims(ctx, claims)
				}
			}
			return next(ctx, req)
		}
	}
}

// RequireActive rejects callers whose token was issued before their account
// was approved. Chain it after RequireAuth.
func RequireActive() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if GetStatus(ctx) != models.StatusActive {
				return nil, connect.NewError(connect.CodePermissionDenied, ErrAccountPending)
			}
			return next(ctx, req)
		}
	}
}

// Authenticated returns the caller's user ID, or an Unauthenticated error.
func Authenticated(ctx context.Context) (string, error) {
	userID := GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// RequireRole returns nil when the caller holds one of roles. It answers
// Unauthenticated for anonymous callers and PermissionDenied otherwise.
func RequireRole(ctx context.Context, roles ...models.Role) error {
	if _, err := Authenticated(ctx); err != nil {
		return err
	}
	role := GetRole(ctx)
	for _, r := range roles {
		if role == r {
			return nil
		}
	}
	return connect.NewError(connect.CodePermissionDenied, ErrForbidden)
}

// RequireAdmin allows ADMIN and SUPER_ADMIN.
func RequireAdmin(ctx context.Context) error {
	return RequireRole(ctx, models.RoleAdmin, models.RoleSuperAdmin)
}

// RequireSuperAdmin allows SUPER_ADMIN only.
func RequireSuperAdmin(ctx context.Context) error {
	return RequireRole(ctx, models.RoleSuperAdmin)
}
