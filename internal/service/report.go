package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"creator_scout/internal/credits"
	"creator_scout/internal/dedup"
	"creator_scout/internal/domain"
	"creator_scout/internal/queue"
)

// Reporter logs a periodic snapshot of queue health, credit usage, tier
// distribution, store size and dedup cache size.
type Reporter struct {
	queue          queue.Queue
	ledger         credits.Ledger
	tiers          TierSyncer
	creators       CreatorStore
	cache          *dedup.Cache
	stallThreshold time.Duration
	stallBacklog   int
	logger         *slog.Logger
}

func NewReporter(
	q queue.Queue,
	ledger credits.Ledger,
	tiers TierSyncer,
	creators CreatorStore,
	cache *dedup.Cache,
	stallThreshold time.Duration,
	stallBacklog int,
	logger *slog.Logger,
) *Reporter {
	return &Reporter{
		queue:          q,
		ledger:         ledger,
		tiers:          tiers,
		creators:       creators,
		cache:          cache,
		stallThreshold: stallThreshold,
		stallBacklog:   stallBacklog,
		logger:         logger.With("component", "reporter"),
	}
}

func (r *Reporter) Report(ctx context.Context) error {
	counts, err := r.queue.Counts(ctx)
	if err != nil {
		return fmt.Errorf("queue counts: %w", err)
	}
	usage, err := r.ledger.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("credit snapshot: %w", err)
	}
	dist, err := r.tiers.Distribution(ctx)
	if err != nil {
		return fmt.Errorf("tier distribution: %w", err)
	}
	total, err := r.creators.Count(ctx)
	if err != nil {
		return fmt.Errorf("count creators: %w", err)
	}

	tierAttrs := make([]any, 0, len(domain.Tiers))
	for _, t := range domain.Tiers {
		tierAttrs = append(tierAttrs, slog.Int64(string(t), dist[t]))
	}
	creditAttrs := make([]any, 0, len(usage))
	for _, u := range usage {
		creditAttrs = append(creditAttrs, slog.Group(u.Provider,
			"consumed", u.Consumed,
			"cap", u.Cap,
			"remaining", u.Remaining(),
		))
	}

	r.logger.Info("stats report",
		slog.Group("queue",
			"waiting", counts.Waiting,
			"active", counts.Active,
			"completed", counts.Completed,
			"failed", counts.Failed,
		),
		slog.Group("tiers", tierAttrs...),
		slog.Group("credits", creditAttrs...),
		"creators", total,
		"dedup_entries", r.cache.Len(),
	)

	if counts.Stalled(r.stallBacklog) {
		r.logger.Warn("queue stalled: jobs waiting but none running", "waiting", counts.Waiting)
	}
	for _, job := range r.queue.Stalled(r.stallThreshold) {
		r.logger.Warn("job stalled",
			"job_id", job.ID,
			"job_type", job.Type,
			"started_at", job.StartedAt,
		)
	}
	return nil
}
