package connector

import (
	"time"

	"creator_scout/internal/domain"
)

// NewCreator builds the record persisted for a newly discovered item.
// identifier must already be normalized. Category and Provenance are left to
// the caller.
func (it Item) NewCreator(platform domain.Platform, identifier string, now time.Time) domain.Creator {
	c := domain.Creator{
		Platform:   platform,
		Identifier: identifier,
		Tier:       domain.TierCold,
	}
	it.ApplyTo(&c, now)
	if c.IsLive {
		c.Tier = domain.TierHot
	}
	return c
}

// ApplyTo refreshes the volatile fields of c from a fresh observation.
func (it Item) ApplyTo(c *domain.Creator, now time.Time) {
	if it.DisplayName != "" {
		c.DisplayName = it.DisplayName
	}
	if it.AvatarURL != "" {
		c.AvatarURL = it.AvatarURL
	}
	if it.Followers > 0 {
		c.Followers = it.Followers
	}
	if it.Label != "" {
		c.ContentLabel = it.Label
	}
	if len(it.Tags) > 0 {
		c.Tags = it.Tags
	}
	if it.Language != "" {
		c.Language = it.Language
	}

	c.IsLive = it.IsLive
	if it.IsLive {
		viewers := it.Viewers
		c.Viewers = &viewers
		c.PeakViewers = max(c.PeakViewers, viewers)
		seen := now
		c.LastLiveAt = &seen
	} else {
		c.Viewers = nil
	}
	c.RecentTitles = domain.AppendRecentTitle(c.RecentTitles, it.Title, now)

	synced := now
	c.LastSyncedAt = &synced
}
