package queue

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"creator_scout/internal/metrics"
)

// outcome is what a backend must do with a job after one attempt.
type outcome int

const (
	outcomeCompleted outcome = iota
	outcomeRetry
	outcomeFailed
)

// executor runs single attempts and applies the retry policy. Backends own
// where jobs wait; executor owns what happens during and after an attempt.
type executor struct {
	settings Settings
	tracker  *tracker
	logger   *slog.Logger
	now      func() time.Time
}

func newExecutor(settings Settings, logger *slog.Logger) *executor {
	return &executor{
		settings: settings,
		tracker:  newTracker(settings.CompletedRetention, settings.FailedRetention),
		logger:   logger,
		now:      time.Now,
	}
}

func (e *executor) prepare(job *Job) {
	if job.MaxAttempts <= 0 {
		job.MaxAttempts = max(e.settings.MaxAttempts, 1)
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = e.now()
	}
}

// attempt runs one try of job and returns the follow-up and, for retries,
// the delay before the next try. job is updated in place.
func (e *executor) attempt(ctx context.Context, h Handler, opts Options, job *Job) (outcome, time.Duration) {
	job.Attempts++
	job.StartedAt = e.now()
	e.tracker.start(*job)

	runCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	id := job.ID
	runCtx = withProgress(runCtx, func() { e.tracker.progress(id) })

	err := e.call(runCtx, h, job)
	e.tracker.finish(job.ID)
	job.FinishedAt = e.now()

	elapsed := job.FinishedAt.Sub(job.StartedAt)
	metrics.JobDuration.WithLabelValues(string(job.Type)).Observe(elapsed.Seconds())

	logger := e.logger.With("job_id", job.ID, "job_type", job.Type, "attempt", job.Attempts)

	if err == nil {
		job.LastError = ""
		e.tracker.complete(*job)
		metrics.JobsProcessed.WithLabelValues(string(job.Type), "completed").Inc()
		logger.Debug("job completed", "duration", elapsed)
		return outcomeCompleted, 0
	}

	job.LastError = err.Error()

	if IsPermanent(err) || job.Attempts >= job.MaxAttempts {
		e.tracker.fail(*job)
		metrics.JobsProcessed.WithLabelValues(string(job.Type), "failed").Inc()
		logger.Error("job failed",
			"max_attempts", job.MaxAttempts,
			"permanent", IsPermanent(err),
			"error", err,
		)
		return outcomeFailed, 0
	}

	delay := Backoff(job.Attempts, e.settings.BaseBackoff, e.settings.MaxBackoff)
	metrics.JobsProcessed.WithLabelValues(string(job.Type), "retried").Inc()
	logger.Warn("job failed, retrying",
		"max_attempts", job.MaxAttempts,
		"backoff", delay,
		"error", err,
	)
	return outcomeRetry, delay
}

func (e *executor) call(ctx context.Context, h Handler, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("job handler panicked",
				"job_id", job.ID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, job)
}
