// Package cache stores the rendered leaderboard between recalculations.
// Redis is used when configured; otherwise, or when Redis goes away, values
// live in process memory.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mptwarrior/warrior/internal/metrics"
)

const (
	// LeaderboardGenerationKey names the current leaderboard generation.
	// Cached top slices are keyed by generation, so rotating it orphans
	// every slice cached before, including one written late by a reader
	// that loaded the store mid-recalculation.
	LeaderboardGenerationKey = "leaderboard:generation"
	// LeaderboardTTL bounds how long an orphaned slice lingers.
	LeaderboardTTL = time.Hour
)

// LeaderboardKey holds the top 100 entries for one generation.
func LeaderboardKey(generation string) string {
	return "leaderboard:top100:" + generation
}

// Generation reads the generation stored under key. A miss or error reports
// false, and callers should then bypass the cache.
func Generation(ctx context.Context, c Cache, key string) (string, bool) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil {
		slog.Warn("Cache get failed", "key", key, "error", err)
		return "", false
	}
	if !ok || len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

// RotateGeneration stores a fresh generation under key. It never expires.
func RotateGeneration(ctx context.Context, c Cache, key string) (string, error) {
	gen := uuid.NewString()
	if err := c.Set(ctx, key, []byte(gen), 0); err != nil {
		return "", fmt.Errorf("failed to rotate %s: %w", key, err)
	}
	return gen, nil
}

// Cache is a byte-oriented key/value cache with expiry.
type Cache interface {
	// Get returns the value and true on a hit, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New returns a Redis-backed cache with an in-memory fallback when redisURL
// is set and reachable, and a pure in-memory cache otherwise.
func New(ctx context.Context, redisURL string) Cache {
	mem := NewMemory()
	if redisURL == "" {
		slog.Info("Using in-memory cache")
		return mem
	}

	r, err := NewRedis(ctx, redisURL)
	if err != nil {
		slog.Warn("Redis unavailable, using in-memory cache", "error", err)
		return mem
	}
	slog.Info("Using Redis cache")
	return &Fallback{Primary: r, Secondary: mem}
}

// GetJSON decodes a cached JSON value into dst. A miss or undecodable value
// reports false.
func GetJSON(ctx context.Context, c Cache, key string, dst any) bool {
	raw, ok, err := c.Get(ctx, key)
	if err != nil {
		slog.Warn("Cache get failed", "key", key, "error", err)
		ok = false
	}
	if ok {
		if err := json.Unmarshal(raw, dst); err != nil {
			slog.Warn("Discarding undecodable cache value", "key", key, "error", err)
			ok = false
		}
	}
	metrics.RecordCacheLookup(ok)
	return ok
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	return c.Set(ctx, key, raw, ttl)
}

// Fallback serves from Primary and drops to Secondary whenever Primary errors.
type Fallback struct {
	Primary   Cache
	Secondary Cache
}

func (f *Fallback) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := f.Primary.Get(ctx, key)
	if err == nil {
		return v, ok, nil
	}
	slog.Warn("Primary cache get failed, using fallback", "key", key, "error", err)
	return f.Secondary.Get(ctx, key)
}

func (f *Fallback) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := f.Primary.Set(ctx, key, value, ttl); err != nil {
		slog.Warn("Primary cache set failed, using fallback", "key", key, "error", err)
		return f.Secondary.Set(ctx, key, value, ttl)
	}
	return nil
}

// Delete removes key from both layers so a value written during an outage
// is not served later.
func (f *Fallback) Delete(ctx context.Context, key string) error {
	secErr := f.Secondary.Delete(ctx, key)
	if err := f.Primary.Delete(ctx, key); err != nil {
		return err
	}
	return secErr
}

func (f *Fallback) Close() error {
	f.Secondary.Close()
	return f.Primary.Close()
}
