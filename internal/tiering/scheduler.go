package tiering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"creator_scout/internal/config"
	"creator_scout/internal/connector"
	"creator_scout/internal/credits"
	"creator_scout/internal/dedup"
	"creator_scout/internal/domain"
	"creator_scout/internal/metrics"
)

// Distribution is the number of creators per tier.
type Distribution map[domain.SyncTier]int64

// Scheduler recomputes tiers and refreshes creators whose tier interval has
// elapsed since their last sync.
type Scheduler struct {
	store      Store
	writer     Writer
	connectors map[domain.Platform]connector.Connector
	ledger     credits.Ledger
	cfg        config.TiersConfig
	logger     *slog.Logger
	now        func() time.Time
}

func NewScheduler(
	store Store,
	writer Writer,
	connectors map[domain.Platform]connector.Connector,
	ledger credits.Ledger,
	cfg config.TiersConfig,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		store:      store,
		writer:     writer,
		connectors: connectors,
		ledger:     ledger,
		cfg:        cfg,
		logger:     logger.With("component", "tier_scheduler"),
		now:        time.Now,
	}
}

// NeedsSync returns up to limit creators in tier whose last sync is older
// than the tier interval, never-synced first and then oldest first. An empty
// platform matches every platform.
func (s *Scheduler) NeedsSync(ctx context.Context, tier domain.SyncTier, limit int, platform domain.Platform) ([]domain.Creator, error) {
	if limit <= 0 {
		return nil, nil
	}
	staleBefore := s.now().Add(-s.cfg.Interval(tier))

	recs, err := s.store.ListStale(ctx, tier, staleBefore, platform, limit)
	if err != nil {
		return nil, fmt.Errorf("select overdue %s creators: %w", tier, err)
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// Dispatch refreshes overdue creators of one tier. An empty platform runs
// every configured platform in name order. limit <= 0 uses the configured
// dispatch limit.
func (s *Scheduler) Dispatch(ctx context.Context, tier domain.SyncTier, platform domain.Platform, limit int) (*domain.SyncStats, error) {
	if limit <= 0 {
		limit = s.cfg.DispatchLimit
	}

	start := time.Now()
	stats := &domain.SyncStats{Platform: platform}

	platforms := []domain.Platform{platform}
	if platform == "" {
		platforms = s.platforms()
	}

	var errs []error
	for _, p := range platforms {
		ps, err := s.dispatchPlatform(ctx, tier, p, limit)
		stats.Add(ps)
		if err != nil {
			errs = append(errs, err)
		}
	}
	stats.Duration = time.Since(start)

	s.logger.Info("tier sync completed",
		"tier", tier,
		"platform", platform,
		"found", stats.Found,
		"updated", stats.Updated,
		"created", stats.Created,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)

	return stats, errors.Join(errs...)
}

func (s *Scheduler) platforms() []domain.Platform {
	out := make([]domain.Platform, 0, len(s.connectors))
	for p := range s.connectors {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *Scheduler) gated(tier domain.SyncTier) bool {
	return tier == domain.TierHot || s.cfg.GateAllTiers
}

func (s *Scheduler) dispatchPlatform(ctx context.Context, tier domain.SyncTier, platform domain.Platform, limit int) (*domain.SyncStats, error) {
	stats := &domain.SyncStats{Platform: platform}
	logger := s.logger.With("tier", tier, "platform", platform)

	conn, ok := s.connectors[platform]
	if !ok {
		logger.Warn("no connector configured, skipping tier sync")
		return stats, nil
	}
	provider := connector.ProviderOf(conn)

	if s.gated(tier) && !s.ledger.HasBudget(ctx, provider) {
		logger.Warn("credit budget exhausted, skipping tier sync cycle", "provider", provider)
		metrics.BudgetSkips.WithLabelValues(provider, "tier-sync").Inc()
		return stats, nil
	}

	recs, err := s.NeedsSync(ctx, tier, limit, platform)
	if err != nil {
		return stats, err
	}
	if len(recs) == 0 {
		return stats, nil
	}

	batchSize := max(s.cfg.BatchSize, 1)
	provenance := domain.Provenance(domain.MethodSpecific, "tier-"+strings.ToLower(string(tier)))

	for start := 0; start < len(recs); start += batchSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if start > 0 && s.gated(tier) && !s.ledger.HasBudget(ctx, provider) {
			logger.Warn("credit budget exhausted mid-cycle, stopping tier sync", "provider", provider, "remaining", len(recs)-start)
			metrics.BudgetSkips.WithLabelValues(provider, "tier-sync").Inc()
			break
		}

		batch := recs[start:min(start+batchSize, len(recs))]
		ids := make([]string, 0, len(batch))
		for _, r := range batch {
			ids = append(ids, r.Identifier)
		}

		items, err := conn.FetchByIdentifiers(ctx, ids)
		if err != nil {
			stats.Errors += len(batch)
			logger.Warn("fetch batch failed", "size", len(batch), "error", err)
			if errors.Is(err, connector.ErrAuth) || errors.Is(err, connector.ErrUnavailable) {
				break
			}
			continue
		}
		if len(items) > 0 {
			applied, err := s.writer.Apply(ctx, platform, items, provenance)
			stats.Add(applied)
			if err != nil {
				logger.Warn("apply batch failed", "size", len(items), "error", err)
				stats.Errors += len(items)
			}
		}

		if missing := missingIdentifiers(platform, ids, items); len(missing) > 0 {
			if err := s.writer.Touch(ctx, platform, missing, s.now()); err != nil {
				logger.Warn("mark missing creators synced failed", "count", len(missing), "error", err)
			}
		}
	}

	metrics.TierSynced.WithLabelValues(string(tier), string(platform)).Add(float64(stats.Updated))
	return stats, nil
}

func missingIdentifiers(platform domain.Platform, requested []string, items []connector.Item) []string {
	returned := make(map[string]struct{}, len(items))
	for _, it := range items {
		returned[dedup.Normalize(platform, it.Identifier)] = struct{}{}
	}

	var missing []string
	for _, id := range requested {
		if _, ok := returned[dedup.Normalize(platform, id)]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// Recalculate reassigns every creator's tier from its activity fields,
// writing only the records whose tier changed.
func (s *Scheduler) Recalculate(ctx context.Context) (Distribution, error) {
	start := time.Now()
	now := s.now()
	pageSize := max(s.cfg.RecalcPageSize, 1)

	dist := make(Distribution, len(domain.Tiers))
	for _, t := range domain.Tiers {
		dist[t] = 0
	}

	var afterID, changed int64
	for {
		page, err := s.store.ListPage(ctx, afterID, pageSize)
		if err != nil {
			return nil, fmt.Errorf("list creators after %d: %w", afterID, err)
		}
		if len(page) == 0 {
			break
		}

		updates := make(map[int64]domain.SyncTier)
		for i := range page {
			tier := Assign(&page[i], now, s.cfg)
			dist[tier]++
			if tier != page[i].Tier {
				updates[page[i].ID] = tier
			}
		}

		if len(updates) > 0 {
			n, err := s.store.UpdateTiers(ctx, updates)
			if err != nil {
				return nil, fmt.Errorf("update tiers: %w", err)
			}
			changed += n
		}

		afterID = page[len(page)-1].ID
		if len(page) < pageSize {
			break
		}
	}

	publish(dist)
	s.logger.Info("tier recalculation completed",
		"changed", changed,
		"hot", dist[domain.TierHot],
		"active", dist[domain.TierActive],
		"standard", dist[domain.TierStandard],
		"cold", dist[domain.TierCold],
		"duration", time.Since(start),
	)

	return dist, nil
}

// Distribution reads the current tier counts from the store.
func (s *Scheduler) Distribution(ctx context.Context) (Distribution, error) {
	counts, err := s.store.CountByTier(ctx)
	if err != nil {
		return nil, fmt.Errorf("count tiers: %w", err)
	}
	dist := Distribution(counts)
	publish(dist)
	return dist, nil
}

func publish(d Distribution) {
	for tier, n := range d {
		metrics.TierCreators.WithLabelValues(string(tier)).Set(float64(n))
	}
}
