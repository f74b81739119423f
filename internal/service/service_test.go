package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mptwarrior/warrior/internal/auth"
	"github.com/mptwarrior/warrior/internal/cache"
	"github.com/mptwarrior/warrior/internal/discipline"
	"github.com/mptwarrior/warrior/internal/invitation"
	"github.com/mptwarrior/warrior/internal/leaderboard"
	"github.com/mptwarrior/warrior/internal/middleware"
	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage/sqlite"
	"github.com/mptwarrior/warrior/pkg/api/apiconnect"
)

const testPassword = "correct-horse"

// testEnv is every service mounted under /api on one httptest server,
// backed by a temp SQLite database.
type testEnv struct {
	t        *testing.T
	store    *sqlite.SQLiteStore
	jwt      *auth.JWTManager
	authn    *auth.PasswordAuthenticator
	codes    *invitation.Manager
	pipeline *leaderboard.Pipeline
	server   *httptest.Server
	seq      int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	c := cache.NewMemory()
	env := &testEnv{
		t:        t,
		store:    store,
		jwt:      auth.NewJWTManager("test-secret", time.Hour),
		authn:    auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost),
		codes:    invitation.NewManager(store),
		pipeline: leaderboard.NewPipeline(store, c, nil),
	}
	board := leaderboard.NewBoard(store, c)

	optional := connect.WithInterceptors(middleware.OptionalAuth(env.jwt))
	member := connect.WithInterceptors(middleware.RequireAuth(env.jwt), middleware.RequireActive())
	signedIn := connect.WithInterceptors(middleware.RequireAuth(env.jwt))

	mux := http.NewServeMux()
	mount := func(path string, h http.Handler) {
		mux.Handle("/api"+path, http.StripPrefix("/api", h))
	}
	mount(apiconnect.NewAuthServiceHandler(NewAuthService(store, env.authn, env.codes, env.jwt, nil), optional))
	mount(apiconnect.NewInvitationServiceHandler(NewInvitationService(store, env.codes), optional))
	mount(apiconnect.NewAdminServiceHandler(NewAdminService(store), signedIn))
	mount(apiconnect.NewCalculatorServiceHandler(NewCalculatorService(), signedIn))
	tracker := discipline.NewTracker(store)
	mount(apiconnect.NewTradeServiceHandler(NewTradeService(store, tracker), member))
	mount(apiconnect.NewDisciplineServiceHandler(NewDisciplineService(store, tracker), member))
	mount(apiconnect.NewAcademyServiceHandler(NewAcademyService(store), member))
	mount(apiconnect.NewLeaderboardServiceHandler(NewLeaderboardService(store, board, env.pipeline), member))
	mount(apiconnect.NewChatServiceHandler(NewChatService(store), member))

	env.server = httptest.NewServer(mux)
	t.Cleanup(func() {
		env.server.Close()
		store.Close()
	})
	return env
}

func (e *testEnv) baseURL() string { return e.server.URL + "/api" }

// user stores an account with the given role and status and returns it with
// a token carrying those claims.
func (e *testEnv) user(role models.Role, status models.UserStatus) (*models.User, string) {
	e.t.Helper()
	e.seq++
	now := time.Now().UTC()
	u := &models.User{
		ID:        uuid.New().String(),
		WarriorID: fmt.Sprintf("MPT-%d-%05d", now.Year(), 10000+e.seq),
		Email:     fmt.Sprintf("user%d@example.com", e.seq),
		Name:      fmt.Sprintf("User %d", e.seq),
		WhatsApp:  "+62800000000",
		Role:      role,
		Status:    status,
		Settings:  models.DefaultUserSettings(),
		JoinDate:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(e.t, e.authn.Register(context.Background(), u, testPassword))
	token, err := e.jwt.Generate(u)
	require.NoError(e.t, err)
	return u, token
}

func (e *testEnv) warrior() (*models.User, string) {
	return e.user(models.RoleWarrior, models.StatusActive)
}

func (e *testEnv) admin() (*models.User, string) {
	return e.user(models.RoleAdmin, models.StatusActive)
}

func (e *testEnv) superAdmin() (*models.User, string) {
	return e.user(models.RoleSuperAdmin, models.StatusActive)
}

// bearer returns client options that send token on every call. An empty
// token sends nothing.
func bearer(token string) []connect.ClientOption {
	if token == "" {
		return nil
	}
	return []connect.ClientOption{connect.WithInterceptors(connect.UnaryInterceptorFunc(
		func(next connect.UnaryFunc) connect.UnaryFunc {
			return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				req.Header().Set("Authorization", "Bearer "+token)
				return next(ctx, req)
			}
		},
	))}
}

func (e *testEnv) authClient(token string) apiconnect.AuthServiceClient {
	return apiconnect.NewAuthServiceClient(http.DefaultClient, e.baseURL(), bearer(token)...)
}

func (e *testEnv) invitationClient(token string) apiconnect.InvitationServiceClient {
	return apiconnect.NewInvitationServiceClient(http.DefaultClient, e.baseURL(), bearer(token)...)
}

func (e *testEnv) adminClient(token string) apiconnect.AdminServiceClient {
	return apiconnect.NewAdminServiceClient(http.DefaultClient, e.baseURL(), bearer(token)...)
}

func (e *testEnv) calculatorClient(token string) apiconnect.CalculatorServiceClient {
	return apiconnect.NewCalculatorServiceClient(http.DefaultClient, e.baseURL(), bearer(token)...)
}

func (e *testEnv) tradeClient(token string) apiconnect.TradeServiceClient {
	return apiconnect.NewTradeServiceClient(http.DefaultClient, e.baseURL(), bearer(token)...)
}

func (e *testEnv) disciplineClient(token string) apiconnect.DisciplineServiceClient {
	return apiconnect.NewDisciplineServiceClient(http.DefaultClient, e.baseURL(), bearer(token)...)
}

func (e *testEnv) academyClient(token string) apiconnect.AcademyServiceClient {
	return apiconnect.NewAcademyServiceClient(http.DefaultClient, e.baseURL(), bearer(token)...)
}

func (e *testEnv) leaderboardClient(token string) apiconnect.LeaderboardServiceClient {
	return apiconnect.NewLeaderboardServiceClient(http.DefaultClient, e.baseURL(), bearer(token)...)
}

func (e *testEnv) chatClient(token string) apiconnect.ChatServiceClient {
	return apiconnect.NewChatServiceClient(http.DefaultClient, e.baseURL(), bearer(token)...)
}

// requireCode fails unless err is a Connect error with the given code.
func requireCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	require.Error(t, err)
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr), "expected a connect error, got %v", err)
	require.Equal(t, want, connectErr.Code(), "message: %s", connectErr.Message())
}
