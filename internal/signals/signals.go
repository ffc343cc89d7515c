package signals

import (
	"context"
	"fmt"
	"time"

	"github.com/reshadx/fraudguard/internal/domain"
)

// New creates a signal store from configuration.
// "memory" returns an LRU store; "redis" returns Redis, optionally wrapped in
// a two-phase store with a local first phase.
func New(cfg domain.SignalsConfig) (domain.SignalStore, error) {
	switch cfg.Type {
	case "memory":
		return NewLRUStore(cfg.LocalMaxSize), nil

	case "redis":
		if cfg.EnableTwoPhase {
			return NewTwoPhaseStore(cfg)
		}
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	default:
		return nil, fmt.Errorf("unsupported signal store type: %s", cfg.Type)
	}
}

// TwoPhaseStore layers a local LRU in front of Redis.
// L1: local LRU for fast reads.
// L2: Redis for distributed state.
// Counters bypass L1 so velocity-style signals stay accurate across nodes.
type TwoPhaseStore struct {
	local  *LRUStore
	remote *RedisStore
	l1TTL  time.Duration
}

// NewTwoPhaseStore creates a two-phase store with LRU + Redis.
func NewTwoPhaseStore(cfg domain.SignalsConfig) (*TwoPhaseStore, error) {
	local := NewLRUStore(cfg.LocalMaxSize)

	remote, err := NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis store: %w", err)
	}

	l1TTL := cfg.LocalTTL
	if l1TTL == 0 {
		l1TTL = 5 * time.Minute
	}

	return &TwoPhaseStore{
		local:  local,
		remote: remote,
		l1TTL:  l1TTL,
	}, nil
}

// Get retrieves from L1 first, then L2. Populates L1 on an L2 hit.
func (s *TwoPhaseStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.local.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if val != nil {
		return val, nil
	}

	val, err = s.remote.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if val != nil {
		_ = s.local.Set(ctx, key, val, s.l1TTL)
	}

	return val, nil
}

// Set writes to both L1 and L2.
func (s *TwoPhaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	l1TTL := s.l1TTL
	if ttl < l1TTL {
		l1TTL = ttl
	}
	if err := s.local.Set(ctx, key, value, l1TTL); err != nil {
		return err
	}
	return s.remote.Set(ctx, key, value, ttl)
}

// Delete removes from both L1 and L2.
func (s *TwoPhaseStore) Delete(ctx context.Context, key string) error {
	if err := s.local.Delete(ctx, key); err != nil {
		return err
	}
	return s.remote.Delete(ctx, key)
}

// IncrementCounter always goes to Redis so counts hold across nodes.
func (s *TwoPhaseStore) IncrementCounter(ctx context.Context, key string, window time.Duration) (int64, error) {
	return s.remote.IncrementCounter(ctx, key, window)
}

// CounterValue always reads from Redis.
func (s *TwoPhaseStore) CounterValue(ctx context.Context, key string) (int64, error) {
	return s.remote.CounterValue(ctx, key)
}

// Ping checks both L1 and L2 health.
func (s *TwoPhaseStore) Ping(ctx context.Context) error {
	if err := s.local.Ping(ctx); err != nil {
		return fmt.Errorf("L1 ping failed: %w", err)
	}
	if err := s.remote.Ping(ctx); err != nil {
		return fmt.Errorf("L2 ping failed: %w", err)
	}
	return nil
}

// Close closes both L1 and L2.
func (s *TwoPhaseStore) Close() error {
	_ = s.local.Close()
	return s.remote.Close()
}
