package connector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"creator_scout/internal/domain"
	"creator_scout/internal/metrics"
)

// BreakerSettings tunes the circuit wrapped around a connector.
type BreakerSettings struct {
	// MinRequests observed in the current interval before the circuit may open.
	MinRequests uint32
	// FailureRatio at or above which the circuit opens.
	FailureRatio float64
	Interval     time.Duration
	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MinRequests:  10,
		FailureRatio: 0.6,
		Interval:     time.Minute,
		OpenTimeout:  2 * time.Minute,
	}
}

// Breaker stops calling a platform that keeps failing. While open, every call
// returns ErrUnavailable without reaching the platform.
type Breaker struct {
	next Connector
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

var _ Connector = (*Breaker)(nil)

func NewBreaker(next Connector, s BreakerSettings, logger *slog.Logger) *Breaker {
	name := string(next.Platform()) + "-api"
	logger = logger.With("component", "circuit_breaker", "breaker", name)

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		// Auth and unsupported errors say nothing about platform health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrAuth) ||
				errors.Is(err, ErrUnsupported) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Breaker{next: next, cb: cb, name: name}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 2
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 0
	}
}

func (b *Breaker) Platform() domain.Platform { return b.next.Platform() }

// Provider forwards the wrapped connector's billing key.
func (b *Breaker) Provider() string { return ProviderOf(b.next) }

// State exposes the current circuit state.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

func (b *Breaker) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, b.name, err)
	}
	return result, err
}

func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		if v, ok := result.(T); ok {
			return v, err
		}
		return zero, err
	}
	v, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return v, nil
}

func (b *Breaker) FetchCategoryPage(ctx context.Context, categoryID string, pageSize int, cursor string) (Page, error) {
	return castResult[Page](b.execute(func() (any, error) {
		return b.next.FetchCategoryPage(ctx, categoryID, pageSize, cursor)
	}))
}

func (b *Breaker) FetchByIdentifiers(ctx context.Context, identifiers []string) ([]Item, error) {
	return castResult[[]Item](b.execute(func() (any, error) {
		return b.next.FetchByIdentifiers(ctx, identifiers)
	}))
}

func (b *Breaker) Search(ctx context.Context, keyword string, pageSize int, cursor string) (Page, error) {
	return castResult[Page](b.execute(func() (any, error) {
		return b.next.Search(ctx, keyword, pageSize, cursor)
	}))
}

func (b *Breaker) FetchFollowerCount(ctx context.Context, identifier string) (int64, error) {
	return castResult[int64](b.execute(func() (any, error) {
		return b.next.FetchFollowerCount(ctx, identifier)
	}))
}
