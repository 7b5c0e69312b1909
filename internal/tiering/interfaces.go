package tiering

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"creator_scout/internal/connector"
	"creator_scout/internal/domain"
)

type Store interface {
	ListStale(ctx context.Context, tier domain.SyncTier, staleBefore time.Time, platform domain.Platform, limit int) ([]domain.Creator, error)
	ListPage(ctx context.Context, afterID int64, limit int) ([]domain.Creator, error)
	UpdateTiers(ctx context.Context, tiers map[int64]domain.SyncTier) (int64, error)
	CountByTier(ctx context.Context) (map[domain.SyncTier]int64, error)
}

// Writer persists fresh observations of creators.
type Writer interface {
	Apply(ctx context.Context, platform domain.Platform, items []connector.Item, provenance string) (*domain.SyncStats, error)
	Touch(ctx context.Context, platform domain.Platform, identifiers []string, at time.Time) error
}
