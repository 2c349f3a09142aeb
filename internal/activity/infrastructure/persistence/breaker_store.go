package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/flowstate/internal/activity/domain"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the store circuit breaker.
type BreakerConfig struct {
	// Failures is the number of consecutive failures that opens the breaker.
	Failures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
}

// DefaultBreakerConfig opens after 5 failures for 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{Failures: 5, Timeout: 30 * time.Second}
}

// BreakerStore guards a remote store with a circuit breaker. A missing key
// counts as success. While open, calls fail fast with ErrStoreUnavailable.
type BreakerStore struct {
	next    domain.KeyValueStore
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewBreakerStore wraps next.
func NewBreakerStore(name string, next domain.KeyValueStore, cfg BreakerConfig, logger *slog.Logger) *BreakerStore {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Failures == 0 {
		cfg.Failures = DefaultBreakerConfig().Failures
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultBreakerConfig().Timeout
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrKeyNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit breaker state changed",
				"store", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &BreakerStore{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

func (s *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.breaker.Execute(func() ([]byte, error) {
		return s.next.Get(ctx, key)
	})
	return val, s.translate(err)
}

func (s *BreakerStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.breaker.Execute(func() ([]byte, error) {
		return nil, s.next.Set(ctx, key, value)
	})
	return s.translate(err)
}

func (s *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := s.breaker.Execute(func() ([]byte, error) {
		return nil, s.next.Delete(ctx, key)
	})
	return s.translate(err)
}

// State returns the breaker state name.
func (s *BreakerStore) State() string {
	return s.breaker.State().String()
}

// Ping delegates to the wrapped store when it supports pinging.
func (s *BreakerStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *BreakerStore) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", domain.ErrStoreUnavailable, err)
	}
	return err
}
