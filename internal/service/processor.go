package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"creator_scout/internal/config"
	"creator_scout/internal/connector"
	"creator_scout/internal/credits"
	"creator_scout/internal/dedup"
	"creator_scout/internal/discovery"
	"creator_scout/internal/domain"
	"creator_scout/internal/metrics"
	"creator_scout/internal/queue"
	"creator_scout/internal/tiering"
)

var errNoConnector = errors.New("no connector configured for platform")

// Processor executes queued jobs against the discovery pipeline, the tier
// scheduler and the platform connectors.
type Processor struct {
	discovery  Discoverer
	tiers      TierSyncer
	writer     tiering.Writer
	runs       SyncRunStore
	connectors map[domain.Platform]connector.Connector
	ledger     credits.Ledger
	discCfg    config.DiscoveryConfig
	tiersCfg   config.TiersConfig
	logger     *slog.Logger
	now        func() time.Time
}

func NewProcessor(
	disc Discoverer,
	tiers TierSyncer,
	writer tiering.Writer,
	runs SyncRunStore,
	connectors map[domain.Platform]connector.Connector,
	ledger credits.Ledger,
	discCfg config.DiscoveryConfig,
	tiersCfg config.TiersConfig,
	logger *slog.Logger,
) *Processor {
	return &Processor{
		discovery:  disc,
		tiers:      tiers,
		writer:     writer,
		runs:       runs,
		connectors: connectors,
		ledger:     ledger,
		discCfg:    discCfg,
		tiersCfg:   tiersCfg,
		logger:     logger.With("component", "processor"),
		now:        time.Now,
	}
}

// Register installs the processor as the handler of every job type.
func (p *Processor) Register(q queue.Queue, cfg config.QueueConfig) error {
	for _, t := range domain.JobTypes {
		tc := cfg.For(t)
		if err := q.Register(t, p.Handle, queue.Options{Concurrency: tc.Concurrency, Timeout: tc.Timeout}); err != nil {
			return fmt.Errorf("register %s handler: %w", t, err)
		}
	}
	return nil
}

// Handle runs one job, writes its audit row and logs the outcome. The
// returned error decides whether the queue retries the job.
func (p *Processor) Handle(ctx context.Context, job *queue.Job) error {
	started := p.now()
	logger := p.logger.With("job_id", job.ID, "job_type", job.Type, "attempt", job.Attempts)

	var stats *domain.SyncStats
	var err error
	switch job.Type {
	case domain.JobFull:
		stats, err = p.discover(ctx, job.Payload, false)
	case domain.JobIncremental:
		stats, err = p.discover(ctx, job.Payload, true)
	case domain.JobTrending:
		stats, err = p.trending(ctx, job.Payload)
	case domain.JobSpecific:
		stats, err = p.specific(ctx, job.Payload)
	case domain.JobTierSync:
		stats, err = p.tierSync(ctx, job.Payload)
	default:
		err = queue.Permanent(fmt.Errorf("%w: %s", queue.ErrUnknownType, job.Type))
	}
	if stats == nil {
		stats = &domain.SyncStats{Platform: job.Payload.Platform}
	}
	stats.Duration = p.now().Sub(started)

	p.record(ctx, job, stats, started, err)

	attrs := []any{
		"platform", job.Payload.Platform,
		"found", stats.Found,
		"created", stats.Created,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"duration", stats.Duration,
	}
	if err != nil {
		logger.Warn("job failed", append(attrs, "error", err)...)
		return err
	}
	logger.Info("job completed", attrs...)
	return nil
}

func (p *Processor) record(ctx context.Context, job *queue.Job, stats *domain.SyncStats, started time.Time, jobErr error) {
	run := &domain.SyncRun{
		JobID:      job.ID,
		JobType:    string(job.Type),
		Platform:   string(job.Payload.Platform),
		Found:      stats.Found,
		Created:    stats.Created,
		Updated:    stats.Updated,
		Errors:     stats.Errors,
		DurationMS: stats.Duration.Milliseconds(),
		StartedAt:  started,
		FinishedAt: started.Add(stats.Duration),
	}
	if jobErr != nil {
		run.Error = jobErr.Error()
	}
	// A cancelled job context must not lose its audit row.
	if err := p.runs.Record(context.WithoutCancel(ctx), run); err != nil {
		p.logger.Warn("record sync run failed", "job_id", job.ID, "error", err)
	}
}

func (p *Processor) discover(ctx context.Context, payload domain.JobPayload, quick bool) (*domain.SyncStats, error) {
	opts := discovery.Options{Quick: quick}
	if payload.Platform != "" {
		opts.Platforms = []domain.Platform{payload.Platform}
	}

	ds, err := p.discovery.Run(ctx, opts)
	stats := &domain.SyncStats{Platform: payload.Platform}
	if ds != nil {
		stats.Created = ds.TotalCreated()
		stats.Skipped = ds.TotalSkipped() + ds.Filtered
		stats.Errors = ds.Failed
		stats.Found = stats.Created + stats.Skipped + stats.Errors
	}
	if err != nil {
		return stats, fmt.Errorf("run discovery: %w", err)
	}
	return stats, nil
}

func (p *Processor) targets(platform domain.Platform) []domain.Platform {
	if platform != "" {
		return []domain.Platform{platform}
	}
	out := make([]domain.Platform, 0, len(p.connectors))
	for pl := range p.connectors {
		out = append(out, pl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// trending upserts everything on the first pages of each platform's top
// category, or of the payload's category or keyword when given.
func (p *Processor) trending(ctx context.Context, payload domain.JobPayload) (*domain.SyncStats, error) {
	stats := &domain.SyncStats{Platform: payload.Platform}
	targets := p.targets(payload.Platform)

	var errs []error
	for _, platform := range targets {
		conn, ok := p.connectors[platform]
		if !ok {
			return stats, queue.Permanent(fmt.Errorf("%w: %s", errNoConnector, platform))
		}
		ps, err := p.trendingPlatform(ctx, platform, conn, payload)
		stats.Add(ps)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			if errors.Is(err, connector.ErrAuth) {
				p.logger.Warn("platform rejected credentials, skipping trending", "platform", platform, "error", err)
				continue
			}
			errs = append(errs, fmt.Errorf("%s: %w", platform, err))
		}
	}

	// Retry only when nothing could be fetched at all.
	if len(targets) > 0 && len(errs) == len(targets) {
		return stats, errors.Join(errs...)
	}
	for _, err := range errs {
		p.logger.Warn("trending fetch failed", "error", err)
	}
	return stats, nil
}

func (p *Processor) trendingPlatform(ctx context.Context, platform domain.Platform, conn connector.Connector, payload domain.JobPayload) (*domain.SyncStats, error) {
	stats := &domain.SyncStats{Platform: platform}
	provider := connector.ProviderOf(conn)

	source := payload.Category
	fetch := func(ctx context.Context, size int, cursor string) (connector.Page, error) {
		return conn.FetchCategoryPage(ctx, source, size, cursor)
	}
	switch {
	case payload.Keyword != "":
		source = payload.Keyword
		fetch = func(ctx context.Context, size int, cursor string) (connector.Page, error) {
			return conn.Search(ctx, payload.Keyword, size, cursor)
		}
	case source == "":
		cats := p.discCfg.Platforms[string(platform)].Categories
		if len(cats) == 0 {
			return stats, nil
		}
		source = cats[0].ID
	}
	provenance := domain.Provenance(domain.MethodTrending, source)

	cursor := ""
	for page := 0; page < max(p.discCfg.TrendingPages, 1); page++ {
		if !p.ledger.HasBudget(ctx, provider) {
			p.logger.Warn("credit budget exhausted, skipping trending", "platform", platform, "provider", provider)
			metrics.BudgetSkips.WithLabelValues(provider, string(domain.JobTrending)).Inc()
			return stats, nil
		}

		res, err := fetch(ctx, p.discCfg.PageSize, cursor)
		if err != nil {
			return stats, fmt.Errorf("fetch trending page: %w", err)
		}
		applied, err := p.writer.Apply(ctx, platform, res.Items, provenance)
		stats.Add(applied)
		if err != nil {
			return stats, fmt.Errorf("apply trending page: %w", err)
		}
		queue.Progress(ctx)

		if res.NextCursor == "" {
			break
		}
		cursor = res.NextCursor
	}
	return stats, nil
}

// specific refreshes or creates the named creators of one platform.
func (p *Processor) specific(ctx context.Context, payload domain.JobPayload) (*domain.SyncStats, error) {
	platform := payload.Platform
	stats := &domain.SyncStats{Platform: platform}

	if platform == "" || len(payload.Identifiers) == 0 {
		return stats, queue.Permanent(errors.New("specific job needs a platform and identifiers"))
	}
	conn, ok := p.connectors[platform]
	if !ok {
		return stats, queue.Permanent(fmt.Errorf("%w: %s", errNoConnector, platform))
	}
	provider := connector.ProviderOf(conn)

	ids := make([]string, 0, len(payload.Identifiers))
	seen := make(map[string]struct{}, len(payload.Identifiers))
	for _, raw := range payload.Identifiers {
		id := dedup.Normalize(platform, raw)
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	provenance := domain.Provenance(domain.MethodSpecific, "")
	batchSize := max(p.tiersCfg.BatchSize, 1)
	for start := 0; start < len(ids); start += batchSize {
		if !p.ledger.HasBudget(ctx, provider) {
			p.logger.Warn("credit budget exhausted, skipping specific sync", "platform", platform, "provider", provider, "remaining", len(ids)-start)
			metrics.BudgetSkips.WithLabelValues(provider, string(domain.JobSpecific)).Inc()
			return stats, nil
		}

		batch := ids[start:min(start+batchSize, len(ids))]
		items, err := conn.FetchByIdentifiers(ctx, batch)
		if err != nil {
			if errors.Is(err, connector.ErrAuth) {
				return stats, queue.Permanent(fmt.Errorf("fetch creators: %w", err))
			}
			return stats, fmt.Errorf("fetch creators: %w", err)
		}

		applied, err := p.writer.Apply(ctx, platform, items, provenance)
		stats.Add(applied)
		if err != nil {
			return stats, fmt.Errorf("apply creators: %w", err)
		}

		if gone := notReturned(batch, platform, items); len(gone) > 0 {
			if err := p.writer.Touch(ctx, platform, gone, p.now()); err != nil {
				p.logger.Warn("mark missing creators synced failed", "platform", platform, "count", len(gone), "error", err)
			}
		}
		queue.Progress(ctx)
	}
	return stats, nil
}

func notReturned(requested []string, platform domain.Platform, items []connector.Item) []string {
	returned := make(map[string]struct{}, len(items))
	for _, it := range items {
		returned[dedup.Normalize(platform, it.Identifier)] = struct{}{}
	}
	var out []string
	for _, id := range requested {
		if _, ok := returned[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func (p *Processor) tierSync(ctx context.Context, payload domain.JobPayload) (*domain.SyncStats, error) {
	tier, ok := domain.ParseTier(string(payload.Tier))
	if !ok {
		return nil, queue.Permanent(fmt.Errorf("unknown tier %q", payload.Tier))
	}
	limit := payload.Limit
	if limit <= 0 {
		limit = p.tiersCfg.DispatchLimit
	}

	stats, err := p.tiers.Dispatch(ctx, tier, payload.Platform, limit)
	if err != nil {
		return stats, fmt.Errorf("dispatch %s: %w", tier, err)
	}
	return stats, nil
}
