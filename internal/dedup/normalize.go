package dedup

import (
	"strings"

	"creator_scout/internal/domain"
)

var commonPrefixes = []string{"https://", "http://", "www."}

var platformPrefixes = map[domain.Platform][]string{
	domain.PlatformTwitch:  {"twitch.tv/"},
	domain.PlatformKick:    {"kick.com/"},
	domain.PlatformYouTube: {"youtube.com/channel/", "youtube.com/c/", "youtube.com/@", "youtube.com/"},
	domain.PlatformTikTok:  {"tiktok.com/@", "tiktok.com/"},
}

// Normalize returns the canonical form of a platform identifier: trimmed,
// lower-cased, with profile URL prefixes, a leading "@" and trailing slashes
// removed. "https://www.Twitch.tv/Foo/" and "@foo" both become "foo".
func Normalize(platform domain.Platform, id string) string {
	id = strings.ToLower(strings.TrimSpace(id))

	for _, p := range commonPrefixes {
		id = strings.TrimPrefix(id, p)
	}
	for _, p := range platformPrefixes[platform] {
		if strings.HasPrefix(id, p) {
			id = strings.TrimPrefix(id, p)
			break
		}
	}

	id = strings.TrimPrefix(id, "@")
	if i := strings.IndexAny(id, "?#"); i >= 0 {
		id = id[:i]
	}
	return strings.Trim(id, "/ ")
}
