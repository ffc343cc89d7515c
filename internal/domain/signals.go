package domain

import (
	"context"
	"time"
)

// SignalStore is the per-key TTL cache detectors read and write: last known
// device, last known location, OTP-failure counters, profile snapshots.
// Implementations: in-process LRU, Redis, or two-phase LRU+Redis.
type SignalStore interface {
	// Get retrieves a value. Returns nil, nil on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// IncrementCounter atomically increments a rolling counter and returns
	// the new value. The window starts when the counter is created.
	IncrementCounter(ctx context.Context, key string, window time.Duration) (int64, error)

	// CounterValue reads a rolling counter without incrementing it.
	// Returns 0 for missing or expired counters.
	CounterValue(ctx context.Context, key string) (int64, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// SignalsConfig holds configuration for signal store initialization.
type SignalsConfig struct {
	// Type is the store type: "memory" or "redis"
	Type string

	// Local LRU settings
	LocalMaxSize int
	LocalTTL     time.Duration

	// Redis settings
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// If true, check local first, then Redis.
	EnableTwoPhase bool
}
