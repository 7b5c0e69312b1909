package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"creator_scout/internal/discovery"
	"creator_scout/internal/domain"
	"creator_scout/internal/tiering"
)

type CreatorStore interface {
	Get(ctx context.Context, platform domain.Platform, identifier string) (*domain.Creator, error)
	GetMany(ctx context.Context, platform domain.Platform, identifiers []string) (map[string]*domain.Creator, error)
	Upsert(ctx context.Context, c *domain.Creator) (bool, error)
	Update(ctx context.Context, c *domain.Creator) error
	TouchSynced(ctx context.Context, platform domain.Platform, identifiers []string, at time.Time) error
	Count(ctx context.Context) (int64, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

type SyncRunStore interface {
	Record(ctx context.Context, run *domain.SyncRun) error
	Recent(ctx context.Context, limit int) ([]domain.SyncRun, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Discoverer interface {
	Run(ctx context.Context, opts discovery.Options) (*domain.DiscoveryStats, error)
}

type TierSyncer interface {
	Dispatch(ctx context.Context, tier domain.SyncTier, platform domain.Platform, limit int) (*domain.SyncStats, error)
	Distribution(ctx context.Context) (tiering.Distribution, error)
}
