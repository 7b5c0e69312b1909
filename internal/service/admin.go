package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"creator_scout/internal/dedup"
	"creator_scout/internal/domain"
	"creator_scout/internal/storage"
)

var ErrInvalidRef = errors.New("creator reference must look like platform:identifier")

const defaultHistoryLimit = 20

// Admin answers operator lookups and removals against the creator store.
type Admin struct {
	creators CreatorStore
	runs     SyncRunStore
	cache    *dedup.Cache
	logger   *slog.Logger
}

func NewAdmin(creators CreatorStore, runs SyncRunStore, cache *dedup.Cache, logger *slog.Logger) *Admin {
	return &Admin{
		creators: creators,
		runs:     runs,
		cache:    cache,
		logger:   logger.With("component", "admin"),
	}
}

// ParseRef splits "twitch:shroud" into its platform and normalized
// identifier.
func ParseRef(ref string) (domain.Platform, string, error) {
	p, id, ok := strings.Cut(ref, ":")
	if !ok {
		return "", "", ErrInvalidRef
	}
	platform := domain.Platform(strings.ToLower(strings.TrimSpace(p)))
	id = dedup.Normalize(platform, id)
	if platform == "" || id == "" {
		return "", "", ErrInvalidRef
	}
	return platform, id, nil
}

func (a *Admin) Creator(ctx context.Context, ref string) (*domain.Creator, error) {
	platform, id, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	c, err := a.creators.Get(ctx, platform, id)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", ref, err)
	}
	return c, nil
}

// History returns the latest job audit rows, newest first.
func (a *Admin) History(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	runs, err := a.runs.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent sync runs: %w", err)
	}
	return runs, nil
}

// Remove deletes the referenced creators and forgets them in the dedup
// cache so discovery may find them again. Unknown references are skipped;
// storage.ErrNotFound is returned when none of them exist.
func (a *Admin) Remove(ctx context.Context, refs []string) (int64, error) {
	byPlatform := make(map[domain.Platform][]string)
	for _, ref := range refs {
		platform, id, err := ParseRef(ref)
		if err != nil {
			return 0, fmt.Errorf("%q: %w", ref, err)
		}
		byPlatform[platform] = append(byPlatform[platform], id)
	}

	var ids []int64
	type known struct {
		platform domain.Platform
		id       string
	}
	var found []known
	for platform, list := range byPlatform {
		records, err := a.creators.GetMany(ctx, platform, list)
		if err != nil {
			return 0, fmt.Errorf("load creators: %w", err)
		}
		for id, c := range records {
			ids = append(ids, c.ID)
			found = append(found, known{platform: platform, id: id})
		}
	}
	if len(ids) == 0 {
		return 0, storage.ErrNotFound
	}

	deleted, err := a.creators.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete creators: %w", err)
	}
	for _, k := range found {
		a.cache.Remove(k.platform, k.id)
	}

	a.logger.Info("creators removed", "requested", len(refs), "deleted", deleted)
	return deleted, nil
}
