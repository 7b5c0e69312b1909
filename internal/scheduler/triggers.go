package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"creator_scout/internal/config"
	"creator_scout/internal/domain"
	"creator_scout/internal/queue"
	"creator_scout/internal/tiering"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, job queue.Job) (string, error)
}

type Recalculator interface {
	Recalculate(ctx context.Context) (tiering.Distribution, error)
}

type Reporter interface {
	Report(ctx context.Context) error
}

// Targets are what the default schedules trigger.
type Targets struct {
	Queue    Enqueuer
	Tiers    Recalculator
	Reporter Reporter
}

// Schedule names understood by Build.
const (
	DiscoveryFull    = "discovery-full"
	DiscoveryQuick   = "discovery-quick"
	Trending         = "trending"
	TierSyncHot      = "tier-sync-hot"
	TierSyncActive   = "tier-sync-active"
	TierSyncStandard = "tier-sync-standard"
	TierSyncCold     = "tier-sync-cold"
	TierRecalculate  = "tier-recalculate"
	StatsReport      = "stats-report"
)

// Build turns configured cadences into schedules. Cadences of zero or less
// disable their schedule; unknown names are an error.
func Build(cfg config.SchedulesConfig, t Targets) ([]Schedule, error) {
	actions := map[string]struct {
		action     Action
		runOnStart bool
	}{
		DiscoveryFull:    {action: enqueue(t.Queue, domain.JobFull, domain.JobPayload{}, queue.PriorityLow)},
		DiscoveryQuick:   {action: enqueue(t.Queue, domain.JobIncremental, domain.JobPayload{}, queue.PriorityNormal), runOnStart: true},
		Trending:         {action: enqueue(t.Queue, domain.JobTrending, domain.JobPayload{}, queue.PriorityNormal)},
		TierSyncHot:      {action: enqueueTier(t.Queue, domain.TierHot, queue.PriorityHigh), runOnStart: true},
		TierSyncActive:   {action: enqueueTier(t.Queue, domain.TierActive, queue.PriorityNormal)},
		TierSyncStandard: {action: enqueueTier(t.Queue, domain.TierStandard, queue.PriorityLow)},
		TierSyncCold:     {action: enqueueTier(t.Queue, domain.TierCold, queue.PriorityLow)},
		TierRecalculate:  {action: recalculate(t.Tiers)},
		StatsReport:      {action: report(t.Reporter)},
	}

	var out []Schedule
	var unknown []string
	for name, every := range cfg {
		a, ok := actions[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if every <= 0 {
			continue
		}
		out = append(out, Schedule{
			Name:       name,
			Every:      every,
			RunOnStart: a.runOnStart,
			Action:     a.action,
		})
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown schedules: %s", strings.Join(unknown, ", "))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func enqueue(q Enqueuer, t domain.JobType, payload domain.JobPayload, priority int) Action {
	return func(ctx context.Context) error {
		if _, err := q.Enqueue(ctx, queue.Job{Type: t, Payload: payload, Priority: priority}); err != nil {
			return fmt.Errorf("enqueue %s job: %w", t, err)
		}
		return nil
	}
}

func enqueueTier(q Enqueuer, tier domain.SyncTier, priority int) Action {
	return enqueue(q, domain.JobTierSync, domain.JobPayload{Tier: tier}, priority)
}

func recalculate(r Recalculator) Action {
	return func(ctx context.Context) error {
		if _, err := r.Recalculate(ctx); err != nil {
			return fmt.Errorf("recalculate tiers: %w", err)
		}
		return nil
	}
}

func report(r Reporter) Action {
	return func(ctx context.Context) error {
		return r.Report(ctx)
	}
}
