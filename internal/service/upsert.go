package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"creator_scout/internal/classifier"
	"creator_scout/internal/connector"
	"creator_scout/internal/dedup"
	"creator_scout/internal/domain"
)

// Upserter writes fresh platform observations into the creator store.
// Known creators get their volatile fields refreshed, unknown ones are
// created with the caller's provenance.
type Upserter struct {
	creators  CreatorStore
	txManager TransactionManager
	cache     *dedup.Cache
	logger    *slog.Logger
	now       func() time.Time
}

func NewUpserter(creators CreatorStore, txManager TransactionManager, cache *dedup.Cache, logger *slog.Logger) *Upserter {
	return &Upserter{
		creators:  creators,
		txManager: txManager,
		cache:     cache,
		logger:    logger.With("component", "upserter"),
		now:       time.Now,
	}
}

// Apply upserts items seen on platform. Per-record failures are counted in
// the returned stats; only a failed lookup is returned as an error.
func (u *Upserter) Apply(ctx context.Context, platform domain.Platform, items []connector.Item, provenance string) (*domain.SyncStats, error) {
	stats := &domain.SyncStats{Platform: platform, Found: len(items)}
	if len(items) == 0 {
		return stats, nil
	}

	byID := make(map[string]connector.Item, len(items))
	order := make([]string, 0, len(items))
	for _, it := range items {
		id := dedup.Normalize(platform, it.Identifier)
		if id == "" {
			stats.Skipped++
			continue
		}
		if _, dup := byID[id]; !dup {
			order = append(order, id)
		}
		byID[id] = it
	}

	existing, err := u.creators.GetMany(ctx, platform, order)
	if err != nil {
		return stats, fmt.Errorf("load creators: %w", err)
	}

	now := u.now()
	var updates []*domain.Creator
	var creates []domain.Creator
	for _, id := range order {
		it := byID[id]
		if c, ok := existing[id]; ok {
			var history []string
			if c.ContentLabel != "" {
				history = []string{c.ContentLabel}
			}
			it.ApplyTo(c, now)
			c.Category = classifier.Classify(c.ContentLabel, history, c.Tags, it.Title)
			updates = append(updates, c)
			continue
		}

		rec := it.NewCreator(platform, id, now)
		rec.Category = classifier.Classify(it.Label, nil, it.Tags, it.Title)
		rec.Provenance = provenance
		creates = append(creates, rec)
	}

	if len(updates) > 0 {
		err := u.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			for _, c := range updates {
				if err := u.creators.Update(txCtx, c); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			stats.Errors += len(updates)
			u.logger.Warn("update creators failed", "platform", platform, "count", len(updates), "error", err)
		} else {
			stats.Updated += len(updates)
		}
	}

	// A record created concurrently since the lookup is refreshed in place.
	for i := range creates {
		rec := &creates[i]
		inserted, err := u.creators.Upsert(ctx, rec)
		if err != nil {
			stats.Errors++
			u.logger.Warn("upsert creator failed", "platform", platform, "identifier", rec.Identifier, "error", err)
			continue
		}
		u.cache.Add(platform, rec.Identifier)
		if inserted {
			stats.Created++
		} else {
			stats.Updated++
		}
	}

	return stats, nil
}

// Touch marks creators the platform did not return as synced so they are
// not selected again until their tier interval elapses.
func (u *Upserter) Touch(ctx context.Context, platform domain.Platform, identifiers []string, at time.Time) error {
	if err := u.creators.TouchSynced(ctx, platform, identifiers, at); err != nil {
		return fmt.Errorf("touch creators: %w", err)
	}
	return nil
}
