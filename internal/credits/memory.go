package credits

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"creator_scout/internal/metrics"
)

// Memory is a process-local Ledger. Only the current day is retained.
type Memory struct {
	caps   map[string]int64
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	date  string
	usage map[string]int64
}

type MemoryOption func(*Memory)

// WithClock replaces time.Now, for tests that cross a day boundary.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(caps map[string]int64, logger *slog.Logger, opts ...MemoryOption) *Memory {
	m := &Memory{
		caps:   caps,
		logger: logger.With("component", "credits"),
		now:    time.Now,
		usage:  make(map[string]int64),
	}
	for _, opt := range opts {
		opt(m)
	}
	publishCaps(caps)
	return m
}

func (m *Memory) HasBudget(_ context.Context, provider string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollLocked()
	return within(m.caps[provider], m.usage[provider])
}

func (m *Memory) Record(_ context.Context, provider string, units int64) error {
	if units <= 0 {
		return nil
	}
	m.mu.Lock()
	m.rollLocked()
	m.usage[provider] += units
	consumed := m.usage[provider]
	m.mu.Unlock()

	metrics.CreditsConsumed.WithLabelValues(provider).Set(float64(consumed))
	if c := m.caps[provider]; c > 0 && consumed >= c && consumed-units < c {
		m.logger.Warn("provider reached daily credit cap", "provider", provider, "consumed", consumed, "cap", c)
	}
	return nil
}

func (m *Memory) Snapshot(_ context.Context) ([]Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollLocked()

	consumed := make(map[string]int64, len(m.usage))
	for p, n := range m.usage {
		consumed[p] = n
	}
	return buildSnapshot(m.date, m.caps, consumed), nil
}

func (m *Memory) rollLocked() {
	today := dateKey(m.now())
	if today != m.date {
		m.date = today
		m.usage = make(map[string]int64)
	}
}
