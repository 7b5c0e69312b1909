// Package discovery finds creators the store does not know yet by browsing
// platform categories and, when that falls short, keyword searches.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"creator_scout/internal/classifier"
	"creator_scout/internal/config"
	"creator_scout/internal/connector"
	"creator_scout/internal/credits"
	"creator_scout/internal/dedup"
	"creator_scout/internal/domain"
	"creator_scout/internal/metrics"
	"creator_scout/internal/queue"
	"creator_scout/internal/storage"
)

// CreatorStore is the write side discovery needs. Create must enforce
// (platform, identifier) uniqueness and report collisions as
// storage.ErrConflict.
type CreatorStore interface {
	Create(ctx context.Context, c *domain.Creator) error
}

type Options struct {
	// Platforms to run. Empty means every platform with a connector.
	Platforms []domain.Platform
	// Quick browses only the highest priority category of each platform.
	Quick bool
}

type Service struct {
	store      CreatorStore
	cache      *dedup.Cache
	connectors map[domain.Platform]connector.Connector
	ledger     credits.Ledger
	cfg        config.DiscoveryConfig
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(
	store CreatorStore,
	cache *dedup.Cache,
	connectors map[domain.Platform]connector.Connector,
	ledger credits.Ledger,
	cfg config.DiscoveryConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:      store,
		cache:      cache,
		connectors: connectors,
		ledger:     ledger,
		cfg:        cfg,
		logger:     logger.With("component", "discovery"),
		now:        time.Now,
	}
}

// Run discovers creators on the selected platforms one after another. Only
// a failed dedup warm-up or cancellation is returned as an error; failures
// of single pages, keywords or candidates are logged and counted.
func (s *Service) Run(ctx context.Context, opts Options) (*domain.DiscoveryStats, error) {
	start := time.Now()
	stats := domain.NewDiscoveryStats()

	if err := s.cache.EnsureInitialized(ctx); err != nil {
		return stats, fmt.Errorf("warm up dedup cache: %w", err)
	}

	platforms := opts.Platforms
	if len(platforms) == 0 {
		platforms = s.platforms()
	}

	for _, p := range platforms {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Merge(s.RunPlatform(ctx, p, opts.Quick))
	}

	stats.Duration = time.Since(start)
	metrics.DedupEntries.Set(float64(s.cache.Len()))

	s.logger.Info("discovery run completed",
		"platforms", len(platforms),
		"quick", opts.Quick,
		"created", stats.TotalCreated(),
		"skipped", stats.TotalSkipped(),
		"filtered", stats.Filtered,
		"failed", stats.Failed,
		"duration", stats.Duration,
	)

	return stats, ctx.Err()
}

func (s *Service) platforms() []domain.Platform {
	out := make([]domain.Platform, 0, len(s.connectors))
	for p := range s.connectors {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// tally is a DiscoveryStats shared by concurrently crawled categories.
type tally struct {
	mu    sync.Mutex
	stats *domain.DiscoveryStats
}

func (t *tally) created(p domain.Platform, method string) {
	t.mu.Lock()
	t.stats.AddCreated(p, method, 1)
	t.mu.Unlock()
}

func (t *tally) skipped(p domain.Platform, method string) {
	t.mu.Lock()
	t.stats.AddSkipped(p, method, 1)
	t.mu.Unlock()
}

func (t *tally) filtered() {
	t.mu.Lock()
	t.stats.Filtered++
	t.mu.Unlock()
}

func (t *tally) failed() {
	t.mu.Lock()
	t.stats.Failed++
	t.mu.Unlock()
}

func (t *tally) createdFor(p domain.Platform) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.CreatedFor(p)
}

// platformRun carries the state of one platform within a run.
type platformRun struct {
	platform domain.Platform
	conn     connector.Connector
	provider string
	logger   *slog.Logger
	tally    *tally
	authLost atomic.Bool
}

func (r *platformRun) stopOnAuth(err error) bool {
	if !errors.Is(err, connector.ErrAuth) {
		return false
	}
	if r.authLost.CompareAndSwap(false, true) {
		r.logger.Warn("platform rejected credentials, skipping for this run", "error", err)
	}
	return true
}

// RunPlatform runs discovery on a single platform. The dedup cache must
// already be initialized.
func (s *Service) RunPlatform(ctx context.Context, platform domain.Platform, quick bool) *domain.DiscoveryStats {
	start := time.Now()
	stats := domain.NewDiscoveryStats()
	logger := s.logger.With("platform", platform)

	conn, ok := s.connectors[platform]
	if !ok {
		logger.Warn("no connector configured, skipping platform")
		return stats
	}

	run := &platformRun{
		platform: platform,
		conn:     conn,
		provider: connector.ProviderOf(conn),
		logger:   logger,
		tally:    &tally{stats: stats},
	}

	if !s.ledger.HasBudget(ctx, run.provider) {
		logger.Warn("credit budget exhausted, skipping discovery", "provider", run.provider)
		metrics.BudgetSkips.WithLabelValues(run.provider, "discovery").Inc()
		return stats
	}

	pcfg := s.cfg.Platforms[string(platform)]
	categories := pcfg.Categories
	if quick && len(categories) > 1 {
		categories = categories[:1]
	}

	var g errgroup.Group
	g.SetLimit(max(s.cfg.CategoryParallelism, 1))
	for i, cat := range categories {
		g.Go(func() error {
			if i > 0 && pause(ctx, s.cfg.PageDelay) != nil {
				return nil
			}
			s.crawl(ctx, run, domain.MethodCategory, cat.Label(), func(ctx context.Context, size int, cursor string) (connector.Page, error) {
				return conn.FetchCategoryPage(ctx, cat.ID, size, cursor)
			})
			return nil
		})
	}
	_ = g.Wait()

	if !quick {
		s.keywordFallback(ctx, run, pcfg.Keywords)
	}

	stats.Duration = time.Since(start)
	s.publish(platform, stats)

	logger.Info("platform discovery completed",
		"categories", len(categories),
		"created", stats.TotalCreated(),
		"skipped", stats.TotalSkipped(),
		"filtered", stats.Filtered,
		"failed", stats.Failed,
		"duration", stats.Duration,
	)
	return stats
}

func (s *Service) keywordFallback(ctx context.Context, run *platformRun, keywords []string) {
	for _, kw := range keywords {
		if ctx.Err() != nil || run.authLost.Load() {
			return
		}
		if run.tally.createdFor(run.platform) >= s.cfg.TargetCount {
			return
		}
		if pause(ctx, s.cfg.PageDelay) != nil {
			return
		}

		unsupported := false
		s.crawl(ctx, run, domain.MethodKeyword, kw, func(ctx context.Context, size int, cursor string) (connector.Page, error) {
			page, err := run.conn.Search(ctx, kw, size, cursor)
			if errors.Is(err, connector.ErrUnsupported) {
				unsupported = true
			}
			return page, err
		})
		if unsupported {
			run.logger.Info("keyword search not supported, skipping keyword fallback")
			return
		}
	}
}

type fetchFunc func(ctx context.Context, size int, cursor string) (connector.Page, error)

// crawl pages through one category or keyword until the per-source cap, a
// short page or a missing cursor. Keyword crawls also stop once the platform
// reaches its target.
func (s *Service) crawl(ctx context.Context, run *platformRun, method, detail string, fetch fetchFunc) {
	logger := run.logger.With("method", method, "source", detail)
	provenance := domain.Provenance(method, detail)
	limit := s.cfg.PerCategoryCap
	pageSize := max(s.cfg.PageSize, 1)

	examined := 0
	cursor := ""
	for page := 0; examined < limit; page++ {
		if ctx.Err() != nil || run.authLost.Load() {
			return
		}
		if page > 0 && pause(ctx, s.cfg.PageDelay) != nil {
			return
		}
		if !s.ledger.HasBudget(ctx, run.provider) {
			logger.Warn("credit budget exhausted, stopping", "provider", run.provider, "examined", examined)
			metrics.BudgetSkips.WithLabelValues(run.provider, "discovery").Inc()
			return
		}

		size := min(pageSize, limit-examined)
		res, err := fetch(ctx, size, cursor)
		if err != nil {
			if run.stopOnAuth(err) || errors.Is(err, connector.ErrUnsupported) {
				return
			}
			logger.Warn("fetch page failed", "page", page, "error", err)
			return
		}

		items := res.Items
		if len(items) > limit-examined {
			items = items[:limit-examined]
		}
		examined += len(items)

		s.process(ctx, run, items, method, provenance)
		queue.Progress(ctx)

		if method == domain.MethodKeyword && run.tally.createdFor(run.platform) >= s.cfg.TargetCount {
			return
		}
		if len(res.Items) < size || res.NextCursor == "" {
			return
		}
		cursor = res.NextCursor
	}
}

type candidate struct {
	id   string
	item connector.Item
}

func (s *Service) process(ctx context.Context, run *platformRun, items []connector.Item, method, provenance string) {
	platform := run.platform

	seen := make(map[string]struct{}, len(items))
	fresh := make([]candidate, 0, len(items))
	for _, it := range items {
		id := dedup.Normalize(platform, it.Identifier)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup || s.cache.Exists(platform, id) {
			run.tally.skipped(platform, method)
			continue
		}
		seen[id] = struct{}{}
		fresh = append(fresh, candidate{id: id, item: it})
	}

	s.enrich(ctx, run, fresh)

	now := s.now()
	for _, c := range fresh {
		if !s.passesQuality(c.item) {
			run.tally.filtered()
			continue
		}

		rec := c.item.NewCreator(platform, c.id, now)
		rec.Category = classifier.Classify(c.item.Label, nil, c.item.Tags, c.item.Title)
		rec.Provenance = provenance

		err := s.store.Create(ctx, &rec)
		switch {
		case err == nil:
			s.cache.Add(platform, c.id)
			run.tally.created(platform, method)
		case errors.Is(err, storage.ErrConflict):
			s.cache.Add(platform, c.id)
			run.tally.skipped(platform, method)
		default:
			run.tally.failed()
			run.logger.Warn("create creator failed", "identifier", c.id, "error", err)
		}
	}
}

// enrich fills follower counts for the most watched candidates that lack one.
func (s *Service) enrich(ctx context.Context, run *platformRun, fresh []candidate) {
	if s.cfg.EnrichTopN <= 0 {
		return
	}

	idx := make([]int, 0, len(fresh))
	for i := range fresh {
		if fresh[i].item.Followers == 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return fresh[idx[a]].item.Viewers > fresh[idx[b]].item.Viewers
	})
	if len(idx) > s.cfg.EnrichTopN {
		idx = idx[:s.cfg.EnrichTopN]
	}

	for _, i := range idx {
		if ctx.Err() != nil {
			return
		}
		n, err := run.conn.FetchFollowerCount(ctx, fresh[i].id)
		if err != nil {
			if errors.Is(err, connector.ErrUnsupported) {
				return
			}
			run.logger.Debug("follower count unavailable", "identifier", fresh[i].id, "error", err)
			continue
		}
		fresh[i].item.Followers = n
	}
}

func (s *Service) passesQuality(it connector.Item) bool {
	minF, minV := s.cfg.MinFollowers, s.cfg.MinViewers
	if minF <= 0 && minV <= 0 {
		return true
	}
	return (minF > 0 && it.Followers >= minF) || (minV > 0 && it.Viewers >= minV)
}

func (s *Service) publish(platform domain.Platform, stats *domain.DiscoveryStats) {
	for k, n := range stats.Created {
		metrics.DiscoveryCreated.WithLabelValues(string(k.Platform), k.Method).Add(float64(n))
	}
	for k, n := range stats.Skipped {
		metrics.DiscoverySkipped.WithLabelValues(string(k.Platform), k.Method).Add(float64(n))
	}
	metrics.DiscoveryFiltered.WithLabelValues(string(platform)).Add(float64(stats.Filtered))
}

// pause blocks for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
