// Package scheduler fires named, independently timed actions. It knows
// nothing about what the actions do.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

var (
	ErrUnknownSchedule   = errors.New("scheduler: unknown schedule")
	ErrDuplicateSchedule = errors.New("scheduler: schedule already added")
	ErrInvalidSchedule   = errors.New("scheduler: schedule needs a name, an action and a positive interval")
)

// Action is the work done on every tick of a schedule.
type Action func(ctx context.Context) error

type Schedule struct {
	Name  string
	Every time.Duration
	// Timeout bounds a single run. Zero means Every.
	Timeout    time.Duration
	RunOnStart bool
	Action     Action
}

type Scheduler struct {
	mu        sync.Mutex
	schedules map[string]*Schedule
	logger    *slog.Logger
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		schedules: make(map[string]*Schedule),
		logger:    logger.With("component", "scheduler"),
	}
}

func (s *Scheduler) Add(sc Schedule) error {
	if sc.Name == "" || sc.Action == nil || sc.Every <= 0 {
		return fmt.Errorf("add %q: %w", sc.Name, ErrInvalidSchedule)
	}
	if sc.Timeout <= 0 {
		sc.Timeout = sc.Every
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[sc.Name]; ok {
		return fmt.Errorf("add %q: %w", sc.Name, ErrDuplicateSchedule)
	}
	s.schedules[sc.Name] = &sc
	return nil
}

// Names returns the added schedules in name order.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.schedules))
	for n := range s.schedules {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RunNow runs one schedule immediately, outside its ticker, and returns its
// error.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.schedules[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("run %q: %w", name, ErrUnknownSchedule)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()
	return e.Action(runCtx)
}

// Start runs every schedule on its own ticker until ctx is cancelled. Runs of
// one schedule never overlap; ticks that fire during a long run are dropped.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	schedules := make([]*Schedule, 0, len(s.schedules))
	for _, e := range s.schedules {
		schedules = append(schedules, e)
	}
	s.mu.Unlock()

	s.logger.Info("scheduler started", "schedules", len(schedules))

	var wg sync.WaitGroup
	for _, e := range schedules {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.loop(ctx, e)
		}()
	}
	wg.Wait()

	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

// Serve adapts Start to a supervised service.
func (s *Scheduler) Serve(ctx context.Context) error {
	return s.Start(ctx)
}

func (s *Scheduler) String() string {
	return "scheduler"
}

func (s *Scheduler) loop(ctx context.Context, e *Schedule) {
	if e.RunOnStart {
		s.run(ctx, e)
	}

	ticker := time.NewTicker(e.Every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx, e)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, e *Schedule) {
	runCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	start := time.Now()
	if err := e.Action(runCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("schedule run failed", "schedule", e.Name, "error", err)
		return
	}
	s.logger.Debug("schedule run completed", "schedule", e.Name, "duration", time.Since(start))
}
