package kick

import (
	"creator_scout/internal/connector"
)

type category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// livestreamsResponse is the body of GET /livestreams.
type livestreamsResponse struct {
	Data    []Livestream `json:"data"`
	Message string       `json:"message"`
}

type Livestream struct {
	BroadcasterUserID int64    `json:"broadcaster_user_id"`
	ChannelID         int64    `json:"channel_id"`
	Slug              string   `json:"slug"`
	StreamTitle       string   `json:"stream_title"`
	Language          string   `json:"language"`
	HasMatureContent  bool     `json:"has_mature_content"`
	ViewerCount       int64    `json:"viewer_count"`
	StartedAt         string   `json:"started_at"`
	Thumbnail         string   `json:"thumbnail"`
	ProfilePicture    string   `json:"profile_picture"`
	Category          category `json:"category"`
	CustomTags        []string `json:"custom_tags"`
}

// Every entry in a livestream listing is live.
func (l Livestream) toItem() connector.Item {
	return connector.Item{
		Identifier:  l.Slug,
		DisplayName: l.Slug,
		AvatarURL:   l.ProfilePicture,
		Viewers:     l.ViewerCount,
		IsLive:      true,
		Label:       l.Category.Name,
		Tags:        l.CustomTags,
		Language:    l.Language,
		Title:       l.StreamTitle,
	}
}

// channelsResponse is the body of GET /channels.
type channelsResponse struct {
	Data    []Channel `json:"data"`
	Message string    `json:"message"`
}

type Channel struct {
	BroadcasterUserID  int64         `json:"broadcaster_user_id"`
	Slug               string        `json:"slug"`
	ChannelDescription string        `json:"channel_description"`
	BannerPicture      string        `json:"banner_picture"`
	StreamTitle        string        `json:"stream_title"`
	Category           category      `json:"category"`
	Stream             channelStream `json:"stream"`
}

type channelStream struct {
	IsLive      bool     `json:"is_live"`
	ViewerCount int64    `json:"viewer_count"`
	Language    string   `json:"language"`
	CustomTags  []string `json:"custom_tags"`
	StartTime   string   `json:"start_time"`
}

func (c Channel) toItem() connector.Item {
	item := connector.Item{
		Identifier:  c.Slug,
		DisplayName: c.Slug,
		IsLive:      c.Stream.IsLive,
		Label:       c.Category.Name,
		Tags:        c.Stream.CustomTags,
		Language:    c.Stream.Language,
		Title:       c.StreamTitle,
	}
	if c.Stream.IsLive {
		item.Viewers = c.Stream.ViewerCount
	}
	return item
}
