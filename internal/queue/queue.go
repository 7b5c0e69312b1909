// Package queue runs typed jobs on bounded worker pools with retries.
//
// Two backends share the same semantics: Memory keeps everything in process
// and is deterministic enough for tests, RabbitMQ survives restarts.
package queue

import (
	"context"
	"errors"
	"time"

	"creator_scout/internal/config"
	"creator_scout/internal/domain"
	"creator_scout/internal/metrics"
)

var (
	ErrUnknownType       = errors.New("queue: no handler registered for job type")
	ErrAlreadyRegistered = errors.New("queue: job type already registered")
	ErrRunning           = errors.New("queue: already running")
)

type Job struct {
	ID          string            `json:"id"`
	Type        domain.JobType    `json:"type"`
	Payload     domain.JobPayload `json:"payload"`
	Priority    int               `json:"priority"`
	Attempts    int               `json:"attempts"`
	MaxAttempts int               `json:"max_attempts"`
	EnqueuedAt  time.Time         `json:"enqueued_at"`
	StartedAt   time.Time         `json:"started_at,omitempty"`
	FinishedAt  time.Time         `json:"finished_at,omitempty"`
	LastError   string            `json:"last_error,omitempty"`
}

// Priorities used by triggers. Higher runs first within a job type.
const (
	PriorityLow    = 1
	PriorityNormal = 5
	PriorityHigh   = 9
)

// Handler processes one job. A returned error schedules a retry unless it
// was wrapped with Permanent or the job is out of attempts.
type Handler func(ctx context.Context, job *Job) error

type Options struct {
	Concurrency int
	Timeout     time.Duration
}

// Counts is a point-in-time view of the queue. Waiting includes jobs whose
// retry delay has not yet elapsed.
type Counts struct {
	Waiting   int
	Active    int
	Completed int
	Failed    int
}

// Stalled reports the health signal of a queue that has work but nothing
// running.
func (c Counts) Stalled(threshold int) bool {
	return c.Active == 0 && c.Waiting > threshold
}

type Queue interface {
	Register(jobType domain.JobType, h Handler, opts Options) error
	Enqueue(ctx context.Context, job Job) (string, error)
	// Run processes jobs until ctx is cancelled.
	Run(ctx context.Context) error
	Counts(ctx context.Context) (Counts, error)
	Failed() []Job
	Completed() []Job
	// Stalled returns active jobs with no progress for longer than threshold.
	Stalled(threshold time.Duration) []Job
}

// Settings are the retry and retention limits shared by every job type.
type Settings struct {
	MaxAttempts        int
	BaseBackoff        time.Duration
	MaxBackoff         time.Duration
	CompletedRetention int
	FailedRetention    int
}

func SettingsFrom(cfg config.QueueConfig) Settings {
	return Settings{
		MaxAttempts:        cfg.MaxAttempts,
		BaseBackoff:        cfg.BaseBackoff,
		MaxBackoff:         cfg.MaxBackoff,
		CompletedRetention: cfg.CompletedRetention,
		FailedRetention:    cfg.FailedRetention,
	}
}

// Backoff returns the delay before retry number attempt (1-based):
// base * 2^(attempt-1), capped at maxDelay.
func Backoff(attempt int, base, maxDelay time.Duration) time.Duration {
	d := base
	for i := 1; i < attempt && (maxDelay <= 0 || d < maxDelay); i++ {
		d *= 2
	}
	if maxDelay > 0 && d > maxDelay {
		d = maxDelay
	}
	return d
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

type progressKey struct{}

// Progress records a heartbeat for the job running under ctx. Long handlers
// call it between units of work so they are not reported as stalled.
func Progress(ctx context.Context) {
	if beat, ok := ctx.Value(progressKey{}).(func()); ok {
		beat()
	}
}

func withProgress(ctx context.Context, beat func()) context.Context {
	return context.WithValue(ctx, progressKey{}, beat)
}

func publishCounts(c Counts) {
	metrics.QueueJobs.WithLabelValues("waiting").Set(float64(c.Waiting))
	metrics.QueueJobs.WithLabelValues("active").Set(float64(c.Active))
	metrics.QueueJobs.WithLabelValues("completed").Set(float64(c.Completed))
	metrics.QueueJobs.WithLabelValues("failed").Set(float64(c.Failed))
}
