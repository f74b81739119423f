package middleware

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptwarrior/warrior/internal/auth"
	"github.com/mptwarrior/warrior/internal/models"
)

type recorder struct {
	ctx    context.Context
	called int
}

func (p *recorder) next(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
	p.ctx = ctx
	p.called++
	return connect.NewResponse(&struct{}{}), nil
}

func tokenFor(t *testing.T, m *auth.JWTManager, role models.Role, status models.UserStatus) string {
	t.Helper()
	token, err := m.Generate(&models.User{ID: "user-1", Email: "w@example.com", Role: role, Status: status})
	require.NoError(t, err)
	return token
}

func TestRequireAuth(t *testing.T) {
	m := auth.NewJWTManager("secret", time.Hour)
	tests := []struct {
		name   string
		header string
		ok     bool
	}{
		{"missing", "", false},
		{"wrong scheme", "Basic abc", false},
		{"garbage token", "Bearer abc", false},
		{"valid", "Bearer " + tokenFor(t, m, models.RoleAdmin, models.StatusActive), true},
		{"lowercase scheme", "bearer " + tokenFor(t, m, models.RoleAdmin, models.StatusActive), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recorder{}
			req := connect.NewRequest(&struct{}{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			_, err := RequireAuth(m)(p.next)(context.Background(), req)
			if !tt.ok {
				assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
				assert.Zero(t, p.called)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-1", GetUserID(p.ctx))
			assert.Equal(t, "w@example.com", GetEmail(p.ctx))
			assert.Equal(t, models.RoleAdmin, GetRole(p.ctx))
			assert.Equal(t, models.StatusActive, GetStatus(p.ctx))
		})
	}
}

func TestOptionalAuthIgnoresBadTokens(t *testing.T) {
	m := auth.NewJWTManager("secret", time.Hour)
	p := &recorder{}
	req := connect.NewRequest(&struct{}{})
	req.Header().Set("Authorization", "Bearer nope")

	_, err := OptionalAuth(m)(p.next)(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, p.called)
	assert.Empty(t, GetUserID(p.ctx))
}

func TestRequireActive(t *testing.T) {
	p := &recorder{}
	pending := WithClaims(context.Background(), &auth.Claims{UserID: "u", Status: models.StatusPending})
	_, err := RequireActive()(p.next)(pending, connect.NewRequest(&struct{}{}))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	active := WithClaims(context.Background(), &auth.Claims{UserID: "u", Status: models.StatusActive})
	_, err = RequireActive()(p.next)(active, connect.NewRequest(&struct{}{}))
	assert.NoError(t, err)
}

func TestRequireRole(t *testing.T) {
	ctxFor := func(role models.Role) context.Context {
		return WithClaims(context.Background(), &auth.Claims{UserID: "u", Role: role})
	}

	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(RequireAdmin(context.Background())))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(RequireAdmin(ctxFor(models.RoleWarrior))))
	assert.NoError(t, RequireAdmin(ctxFor(models.RoleAdmin)))
	assert.NoError(t, RequireAdmin(ctxFor(models.RoleSuperAdmin)))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(RequireSuperAdmin(ctxFor(models.RoleAdmin))))
	assert.NoError(t, RequireSuperAdmin(ctxFor(models.RoleSuperAdmin)))
}

func TestRateLimiterInterceptor(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	p := &recorder{}
	call := rl.Interceptor()(p.next)
	ctx := WithClaims(context.Background(), &auth.Claims{UserID: "u1"})

	for i := 0; i < 2; i++ {
		_, err := call(ctx, connect.NewRequest(&struct{}{}))
		require.NoError(t, err)
	}
	_, err := call(ctx, connect.NewRequest(&struct{}{}))
	assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))

	// A different caller has its own bucket.
	other := WithClaims(context.Background(), &auth.Claims{UserID: "u2"})
	_, err = call(other, connect.NewRequest(&struct{}{}))
	assert.NoError(t, err)
}

func TestRateLimiterSkipsUnlistedProcedures(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	p := &recorder{}
	call := rl.Interceptor("/warrior.v1.AuthService/Login")(p.next)

	for i := 0; i < 5; i++ {
		_, err := call(context.Background(), connect.NewRequest(&struct{}{}))
		require.NoError(t, err)
	}
	assert.Equal(t, 5, p.called)
}

func TestRateLimiterCleanupKeepsThrottledClients(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	// attacker drains its bucket, idle never calls, casual has one token left.
	assert.True(t, rl.Allow("ip:attacker"))
	assert.True(t, rl.Allow("ip:attacker"))
	assert.False(t, rl.Allow("ip:attacker"))
	rl.getLimiter("ip:idle")
	assert.True(t, rl.Allow("ip:casual"))

	assert.Equal(t, 1, rl.Cleanup())
	assert.Contains(t, rl.limiters, "ip:attacker")
	assert.Contains(t, rl.limiters, "ip:casual")
	assert.NotContains(t, rl.limiters, "ip:idle")

	// Eviction must not hand the drained client a fresh bucket.
	assert.False(t, rl.Allow("ip:attacker"))

	now = now.Add(10 * time.Second)
	assert.Equal(t, 2, rl.Cleanup())
	assert.Empty(t, rl.limiters)
}
