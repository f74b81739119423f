package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mptwarrior/warrior/internal/app"
	"github.com/mptwarrior/warrior/internal/config"
	"github.com/mptwarrior/warrior/internal/leaderboard"
	"github.com/mptwarrior/warrior/internal/middleware"
	"github.com/mptwarrior/warrior/internal/server"
	"github.com/mptwarrior/warrior/pkg/logging"
)

const (
	shutdownTimeout        = 15 * time.Second
	limiterCleanupInterval = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	scheduler, err := leaderboard.NewScheduler(a.Pipeline, cfg.LeaderboardSchedule, logger)
	if err != nil {
		return err
	}
	scheduler.Start()

	limiter := middleware.NewRateLimiter(cfg.AuthRatePerSecond, cfg.AuthRateBurst)
	limiter.StartCleanup(ctx, limiterCleanupInterval)

	proxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return err
	}

	if cfg.CronSecret == "" {
		logger.Warn("CRON_SECRET is not set; the HTTP cron trigger is disabled")
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: server.New(server.Deps{
			Store:         a.Store,
			Authenticator: a.Authenticator,
			JWT:           a.JWT,
			Codes:         a.Codes,
			Discipline:    a.Discipline,
			Board:         a.Board,
			Pipeline:      a.Pipeline,
			AuthLimiter:   limiter,
			Logger:        logger,
			CORSOrigin:    cfg.CORSOrigin,
			CronSecret:    cfg.CronSecret,

			TrustedProxies: proxies,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
