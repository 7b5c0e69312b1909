// Package tiering sorts creators into freshness tiers and refreshes the
// overdue ones.
package tiering

import (
	"time"

	"creator_scout/internal/config"
	"creator_scout/internal/domain"
)

// Assign returns the tier a creator belongs in at now. The result depends
// only on the record's activity fields, so reassigning is idempotent.
func Assign(c *domain.Creator, now time.Time, cfg config.TiersConfig) domain.SyncTier {
	if c.IsLive {
		return domain.TierHot
	}

	liveWithin := func(window time.Duration) bool {
		return c.LastLiveAt != nil && now.Sub(*c.LastLiveAt) <= window
	}

	if cfg.HotViewers > 0 && c.PeakViewers >= cfg.HotViewers && liveWithin(cfg.HotWindow) {
		return domain.TierHot
	}
	if liveWithin(cfg.ActiveWindow) || (cfg.ActiveFollowers > 0 && c.Followers >= cfg.ActiveFollowers) {
		return domain.TierActive
	}
	if liveWithin(cfg.StandardWindow) {
		return domain.TierStandard
	}
	return domain.TierCold
}
