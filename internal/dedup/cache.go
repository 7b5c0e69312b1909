// Package dedup keeps an in-memory index of every (platform, identifier)
// already known to the store so discovery can skip them without a round trip.
//
// The index is append-only and best-effort once warmed up: a candidate the
// cache believes is new may still collide in the store, and the store's
// uniqueness constraint settles it.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"creator_scout/internal/domain"
)

var ErrNotInitialized = errors.New("dedup cache not initialized")

// IdentifierLister loads every known identifier grouped by platform.
type IdentifierLister interface {
	ListIdentifiers(ctx context.Context) (map[domain.Platform][]string, error)
}

type Cache struct {
	store  IdentifierLister
	logger *slog.Logger

	mu    sync.RWMutex
	known map[domain.Platform]map[string]struct{}

	ready atomic.Bool
	group singleflight.Group
}

func New(store IdentifierLister, logger *slog.Logger) *Cache {
	return &Cache{
		store:  store,
		logger: logger.With("component", "dedup"),
		known:  make(map[domain.Platform]map[string]struct{}),
	}
}

// EnsureInitialized loads the known set from the store once per process.
// Concurrent callers share a single load. If the load fails every waiting
// caller gets the error and a later call tries again.
func (c *Cache) EnsureInitialized(ctx context.Context) error {
	if c.ready.Load() {
		return nil
	}

	_, err, _ := c.group.Do("warmup", func() (interface{}, error) {
		if c.ready.Load() {
			return nil, nil
		}

		start := time.Now()
		ids, err := c.store.ListIdentifiers(ctx)
		if err != nil {
			return nil, fmt.Errorf("load known identifiers: %w", err)
		}

		total := 0
		c.mu.Lock()
		for platform, list := range ids {
			for _, id := range list {
				c.addLocked(platform, Normalize(platform, id))
				total++
			}
		}
		c.mu.Unlock()

		c.ready.Store(true)
		c.logger.Info("dedup cache warmed",
			"identifiers", total,
			"duration", time.Since(start),
		)
		return nil, nil
	})
	return err
}

// Ready reports whether the warm-up has completed.
func (c *Cache) Ready() bool {
	return c.ready.Load()
}

func (c *Cache) Exists(platform domain.Platform, id string) bool {
	id = Normalize(platform, id)
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.known[platform][id]
	return ok
}

func (c *Cache) Add(platform domain.Platform, id string) {
	id = Normalize(platform, id)
	if id == "" {
		return
	}
	c.mu.Lock()
	c.addLocked(platform, id)
	c.mu.Unlock()
}

// Remove forgets id so a later discovery may create it again.
func (c *Cache) Remove(platform domain.Platform, id string) {
	id = Normalize(platform, id)
	c.mu.Lock()
	delete(c.known[platform], id)
	c.mu.Unlock()
}

// FilterNew returns the normalized candidates not yet known, in input order
// and without repeats.
func (c *Cache) FilterNew(platform domain.Platform, candidates []string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, raw := range candidates {
		id := Normalize(platform, raw)
		if id == "" {
			continue
		}
		if _, ok := c.known[platform][id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, set := range c.known {
		n += len(set)
	}
	return n
}

func (c *Cache) LenFor(platform domain.Platform) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.known[platform])
}

func (c *Cache) addLocked(platform domain.Platform, id string) {
	set, ok := c.known[platform]
	if !ok {
		set = make(map[string]struct{})
		c.known[platform] = set
	}
	set[id] = struct{}{}
}
