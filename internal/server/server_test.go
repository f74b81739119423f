package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mptwarrior/warrior/internal/auth"
	"github.com/mptwarrior/warrior/internal/cache"
	"github.com/mptwarrior/warrior/internal/invitation"
	"github.com/mptwarrior/warrior/internal/leaderboard"
	"github.com/mptwarrior/warrior/internal/middleware"
	"github.com/mptwarrior/warrior/internal/storage/sqlite"
	"github.com/mptwarrior/warrior/pkg/api"
	"github.com/mptwarrior/warrior/pkg/api/apiconnect"
)

func newTestServer(t *testing.T, cronSecret string, limiter *middleware.RateLimiter) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)

	c := cache.NewMemory()
	srv := httptest.NewServer(New(Deps{
		Store:         store,
		Authenticator: auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost),
		JWT:           auth.NewJWTManager("server-test", time.Hour),
		Codes:         invitation.NewManager(store),
		Board:         leaderboard.NewBoard(store, c),
		Pipeline:      leaderboard.NewPipeline(store, c, nil),
		AuthLimiter:   limiter,
		CORSOrigin:    "https://app.example.com",
		CronSecret:    cronSecret,
	}))
	t.Cleanup(func() {
		srv.Close()
		store.Close()
	})
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, "", nil)

	code, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, body = get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "mpt_warrior_http_requests_total")
}

func TestConnectServicesMountedUnderAPI(t *testing.T) {
	srv := newTestServer(t, "", nil)
	ctx := context.Background()

	client := apiconnect.NewInvitationServiceClient(http.DefaultClient, srv.URL+APIPrefix)
	resp, err := client.ValidateCode(ctx, connect.NewRequest(&api.ValidateCodeRequest{Code: "NOT-THERE"}))
	require.NoError(t, err)
	assert.False(t, resp.Msg.Valid)
	assert.Equal(t, string(invitation.ReasonNotFound), resp.Msg.Reason)

	// Member services demand a token.
	trades := apiconnect.NewTradeServiceClient(http.DefaultClient, srv.URL+APIPrefix)
	_, err = trades.ListTrades(ctx, connect.NewRequest(&api.ListTradesRequest{}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	// Without the prefix nothing answers.
	code, _ := get(t, srv.URL+apiconnect.InvitationServiceValidateCodeProcedure)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, "", nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+APIPrefix+apiconnect.AuthServiceLoginProcedure, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCronRoute(t *testing.T) {
	post := func(url, token string) int {
		req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(""))
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("X-Cron-Token", token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	enabled := newTestServer(t, "tick", nil)
	assert.Equal(t, http.StatusOK, post(enabled.URL+"/api/leaderboard/cron-update", "tick"))
	assert.Equal(t, http.StatusUnauthorized, post(enabled.URL+"/api/leaderboard/cron-update", "tock"))

	disabled := newTestServer(t, "", nil)
	assert.Equal(t, http.StatusNotFound, post(disabled.URL+"/api/leaderboard/cron-update", "tick"))
}

func TestLoginIsRateLimited(t *testing.T) {
	srv := newTestServer(t, "", middleware.NewRateLimiter(0.001, 2))
	client := apiconnect.NewAuthServiceClient(http.DefaultClient, srv.URL+APIPrefix)
	ctx := context.Background()

	login := func() error {
		_, err := client.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "nobody@example.com", Password: "whatever-pass"}))
		return err
	}
	for i := 0; i < 2; i++ {
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(login()))
	}

	err := login()
	assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))
	assert.Contains(t, err.Error(), middleware.ErrRateLimited.Error())
}

func TestLoginLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	srv := newTestServer(t, "", middleware.NewRateLimiter(0.001, 2))
	client := apiconnect.NewAuthServiceClient(http.DefaultClient, srv.URL+APIPrefix)
	ctx := context.Background()

	limited := 0
	for i := 0; i < 20; i++ {
		req := connect.NewRequest(&api.LoginRequest{Email: "nobody@example.com", Password: "whatever-pass"})
		req.Header().Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		_, err := client.Login(ctx, req)
		if connect.CodeOf(err) == connect.CodeResourceExhausted {
			limited++
		}
	}
	assert.Equal(t, 18, limited)
}

func TestRealIP(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"untrusted peer keeps its address", "198.51.100.7:4000", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "198.51.100.7:4000"},
		{"trusted proxy forwards client", "10.0.0.2:4000", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"spoofed left-most hop is skipped", "10.0.0.2:4000", map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.9, 10.0.0.3"}, "203.0.113.9"},
		{"x-real-ip from trusted proxy", "10.0.0.2:4000", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
		{"garbage header is ignored", "10.0.0.2:4000", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.0.0.2:4000"},
		{"no header", "10.0.0.2:4000", nil, "10.0.0.2:4000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := realIP(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}
