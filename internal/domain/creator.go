package domain

import (
	"strings"
	"time"
)

type Platform string

const (
	PlatformTwitch  Platform = "twitch"
	PlatformKick    Platform = "kick"
	PlatformYouTube Platform = "youtube"
	PlatformTikTok  Platform = "tiktok"
)

type Category string

const (
	CategoryGaming    Category = "Gaming"
	CategoryIGaming   Category = "iGaming"
	CategoryIRL       Category = "IRL"
	CategoryMusic     Category = "Music"
	CategoryCreative  Category = "Creative"
	CategorySports    Category = "Sports"
	CategoryEducation Category = "Education"
	CategoryVariety   Category = "Variety"
)

// SyncTier is the freshness class of a creator. Tiers are ordered by
// expected refresh value, HOT first.
type SyncTier string

const (
	TierHot      SyncTier = "HOT"
	TierActive   SyncTier = "ACTIVE"
	TierStandard SyncTier = "STANDARD"
	TierCold     SyncTier = "COLD"
)

// Tiers lists every tier from most to least frequently refreshed.
var Tiers = []SyncTier{TierHot, TierActive, TierStandard, TierCold}

func ParseTier(s string) (SyncTier, bool) {
	t := SyncTier(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Tiers {
		if t == known {
			return t, true
		}
	}
	return "", false
}

const (
	// MaxRecentTitles bounds the rolling title history kept per creator.
	MaxRecentTitles = 20
	// RecentTitleWindow suppresses re-appending a title seen this recently.
	RecentTitleWindow = 24 * time.Hour
)

// Provenance methods describe how a creator record came to exist.
const (
	MethodCategory = "category"
	MethodKeyword  = "keyword"
	MethodTrending = "trending"
	MethodSpecific = "specific"
)

type Creator struct {
	ID           int64
	Platform     Platform
	Identifier   string
	DisplayName  string
	AvatarURL    string
	Followers    int64
	Viewers      *int64
	PeakViewers  int64
	IsLive       bool
	ContentLabel string
	Tags         []string
	Language     string
	Category     Category
	Tier         SyncTier
	LastSyncedAt *time.Time
	LastLiveAt   *time.Time
	Provenance   string
	RecentTitles []RecentTitle
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RecentTitle struct {
	Title  string    `json:"title"`
	SeenAt time.Time `json:"seen_at"`
}

// Provenance builds the "method:detail" tag stored on new records.
func Provenance(method, detail string) string {
	if detail == "" {
		return method
	}
	return method + ":" + detail
}

// AppendRecentTitle returns history with title prepended, newest first.
// A title already seen within RecentTitleWindow is not added again, and the
// result never holds more than MaxRecentTitles entries. history is not modified.
func AppendRecentTitle(history []RecentTitle, title string, now time.Time) []RecentTitle {
	title = strings.TrimSpace(title)
	if title == "" {
		return history
	}

	for _, h := range history {
		if strings.EqualFold(h.Title, title) && now.Sub(h.SeenAt) < RecentTitleWindow {
			return history
		}
	}

	out := make([]RecentTitle, 0, min(len(history)+1, MaxRecentTitles))
	out = append(out, RecentTitle{Title: title, SeenAt: now})
	for _, h := range history {
		if len(out) == MaxRecentTitles {
			break
		}
		out = append(out, h)
	}
	return out
}

// StaleSince reports whether the creator was last synced before cutoff.
// Never-synced creators are always stale.
func (c *Creator) StaleSince(cutoff time.Time) bool {
	return c.LastSyncedAt == nil || c.LastSyncedAt.Before(cutoff)
}
