// Package app builds the shared object graph used by the server and warriorctl.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mptwarrior/warrior/internal/auth"
	"github.com/mptwarrior/warrior/internal/cache"
	"github.com/mptwarrior/warrior/internal/config"
	"github.com/mptwarrior/warrior/internal/discipline"
	"github.com/mptwarrior/warrior/internal/invitation"
	"github.com/mptwarrior/warrior/internal/leaderboard"
	"github.com/mptwarrior/warrior/internal/storage"
	"github.com/mptwarrior/warrior/internal/storage/cosmos"
	"github.com/mptwarrior/warrior/internal/storage/sqlite"
)

// App holds long-lived collaborators. Close releases them.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Store         storage.Store
	Cache         cache.Cache
	Authenticator *auth.PasswordAuthenticator
	JWT           *auth.JWTManager
	Codes         *invitation.Manager
	Discipline    *discipline.Tracker
	Board         *leaderboard.Board
	Pipeline      *leaderboard.Pipeline
}

// New opens the configured store and cache and wires the domain services.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Storage initialized", "driver", cfg.StorageDriver)

	c := cache.New(ctx, cfg.RedisURL)
	board := leaderboard.NewBoard(store, c)
	if err := board.Invalidate(ctx); err != nil {
		// The board still serves from the store, uncached.
		logger.Warn("Failed to start leaderboard cache generation", "error", err)
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		Store:         store,
		Cache:         c,
		Authenticator: auth.NewPasswordAuthenticator(store),
		JWT:           auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		Codes:         invitation.NewManager(store),
		Discipline:    discipline.NewTracker(store),
		Board:         board,
		Pipeline:      leaderboard.NewPipeline(store, c, logger),
	}, nil
}

// OpenStore returns the storage backend selected by STORAGE_DRIVER.
func OpenStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverCosmos:
		store, err := cosmos.New(cosmos.Config{
			ConnectionString: cfg.CosmosConnectionString,
			Endpoint:         cfg.CosmosEndpoint,
			Key:              cfg.CosmosKey,
			Database:         cfg.CosmosDatabase,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open cosmos store: %w", err)
		}
		return store, nil
	case config.DriverSQLite:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func (a *App) Close() error {
	if err := a.Cache.Close(); err != nil {
		a.Logger.Warn("Failed to close cache", "error", err)
	}
	return a.Store.Close()
}
