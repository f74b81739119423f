// Package server assembles the HTTP surface: Connect services under /api,
// the cron trigger, health and metrics.
package server

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mptwarrior/warrior/internal/auth"
	"github.com/mptwarrior/warrior/internal/discipline"
	"github.com/mptwarrior/warrior/internal/invitation"
	"github.com/mptwarrior/warrior/internal/leaderboard"
	"github.com/mptwarrior/warrior/internal/metrics"
	"github.com/mptwarrior/warrior/internal/middleware"
	"github.com/mptwarrior/warrior/internal/service"
	"github.com/mptwarrior/warrior/internal/storage"
	"github.com/mptwarrior/warrior/pkg/api/apiconnect"
)

// APIPrefix is where every Connect service is mounted.
const APIPrefix = "/api"

// Deps are the collaborators the router wires into the services.
type Deps struct {
	Store         storage.Store
	Authenticator auth.Authenticator
	JWT           *auth.JWTManager
	Codes         *invitation.Manager
	Discipline    *discipline.Tracker
	Board         *leaderboard.Board
	Pipeline      *leaderboard.Pipeline

	// AuthLimiter throttles Login and Register. Nil disables throttling.
	AuthLimiter *middleware.RateLimiter

	Logger     *slog.Logger
	CORSOrigin string

	// TrustedProxies are the reverse proxies whose forwarding headers name
	// the client address. Empty means the TCP peer is the client.
	TrustedProxies []netip.Prefix

	// CronSecret protects the cron trigger route; empty disables the route.
	CronSecret string
}

// New returns the root handler. It speaks HTTP/2 without TLS so Connect
// clients can use gRPC framing.
func New(d Deps) http.Handler {
	return h2c.NewHandler(Router(d), &http2.Server{})
}

// Router builds the chi router without the h2c wrapper.
func Router(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.CORSOrigin == "" {
		d.CORSOrigin = "*"
	}
	if d.Discipline == nil {
		d.Discipline = discipline.NewTracker(d.Store)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(realIP(d.TrustedProxies))
	r.Use(chimw.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(requestLogger(d.Logger))
	r.Use(cors(d.CORSOrigin))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	if d.CronSecret != "" {
		r.Handle(APIPrefix+"/leaderboard/cron-update", service.CronHandler(d.Pipeline, d.CronSecret))
	}

	logging := middleware.LoggingInterceptor(d.Logger)
	optional := connect.WithInterceptors(middleware.OptionalAuth(d.JWT), logging)
	member := connect.WithInterceptors(middleware.RequireAuth(d.JWT), middleware.RequireActive(), logging)
	signedIn := connect.WithInterceptors(middleware.RequireAuth(d.JWT), logging)

	authOpts := []connect.HandlerOption{optional}
	if d.AuthLimiter != nil {
		authOpts = append(authOpts, connect.WithInterceptors(d.AuthLimiter.Interceptor(
			apiconnect.AuthServiceLoginProcedure,
			apiconnect.AuthServiceRegisterProcedure,
		)))
	}

	mount := mountOn(r)
	mount(apiconnect.NewAuthServiceHandler(
		service.NewAuthService(d.Store, d.Authenticator, d.Codes, d.JWT, d.Logger), authOpts...))
	mount(apiconnect.NewInvitationServiceHandler(
		service.NewInvitationService(d.Store, d.Codes), optional))
	mount(apiconnect.NewAdminServiceHandler(
		service.NewAdminService(d.Store), signedIn))
	mount(apiconnect.NewCalculatorServiceHandler(
		service.NewCalculatorService(), signedIn))
	mount(apiconnect.NewTradeServiceHandler(
		service.NewTradeService(d.Store, d.Discipline), member))
	mount(apiconnect.NewDisciplineServiceHandler(
		service.NewDisciplineService(d.Store, d.Discipline), member))
	mount(apiconnect.NewAcademyServiceHandler(
		service.NewAcademyService(d.Store), member))
	mount(apiconnect.NewLeaderboardServiceHandler(
		service.NewLeaderboardService(d.Store, d.Board, d.Pipeline), member))
	mount(apiconnect.NewChatServiceHandler(
		service.NewChatService(d.Store), member))

	return r
}

// mountOn returns a func that serves a Connect handler below /api. Its
// signature matches the (path, handler) pair the apiconnect constructors return.
func mountOn(r chi.Router) func(path string, h http.Handler) {
	return func(path string, h http.Handler) {
		r.Mount(APIPrefix+path, http.StripPrefix(APIPrefix, h))
	}
}

// requestLogger logs every non-RPC request; RPCs are logged by the interceptor.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("Request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", chimw.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// cors adds CORS headers for browser access.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Cron-Token, Connect-Protocol-Version, Connect-Timeout-Ms")
			w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
