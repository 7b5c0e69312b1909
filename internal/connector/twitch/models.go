package twitch

import (
	"creator_scout/internal/connector"
)

type pagination struct {
	Cursor string `json:"cursor"`
}

// streamsResponse is the body of GET /streams.
type streamsResponse struct {
	Data       []Stream   `json:"data"`
	Pagination pagination `json:"pagination"`
}

type Stream struct {
	ID           string   `json:"id"`
	UserID       string   `json:"user_id"`
	UserLogin    string   `json:"user_login"`
	UserName     string   `json:"user_name"`
	GameID       string   `json:"game_id"`
	GameName     string   `json:"game_name"`
	Type         string   `json:"type"`
	Title        string   `json:"title"`
	ViewerCount  int64    `json:"viewer_count"`
	StartedAt    string   `json:"started_at"`
	Language     string   `json:"language"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Tags         []string `json:"tags"`
}

func (s Stream) toItem() connector.Item {
	return connector.Item{
		Identifier:  s.UserLogin,
		DisplayName: s.UserName,
		Viewers:     s.ViewerCount,
		IsLive:      s.Type == "live",
		Label:       s.GameName,
		Tags:        s.Tags,
		Language:    s.Language,
		Title:       s.Title,
	}
}

// usersResponse is the body of GET /users.
type usersResponse struct {
	Data []User `json:"data"`
}

type User struct {
	ID              string `json:"id"`
	Login           string `json:"login"`
	DisplayName     string `json:"display_name"`
	Description     string `json:"description"`
	ProfileImageURL string `json:"profile_image_url"`
}

// searchResponse is the body of GET /search/channels.
type searchResponse struct {
	Data       []Channel  `json:"data"`
	Pagination pagination `json:"pagination"`
}

type Channel struct {
	ID                  string   `json:"id"`
	BroadcasterLogin    string   `json:"broadcaster_login"`
	DisplayName         string   `json:"display_name"`
	BroadcasterLanguage string   `json:"broadcaster_language"`
	GameName            string   `json:"game_name"`
	IsLive              bool     `json:"is_live"`
	Tags                []string `json:"tags"`
	ThumbnailURL        string   `json:"thumbnail_url"`
	Title               string   `json:"title"`
}

// Search results carry no viewer counts.
func (c Channel) toItem() connector.Item {
	return connector.Item{
		Identifier:  c.BroadcasterLogin,
		DisplayName: c.DisplayName,
		AvatarURL:   c.ThumbnailURL,
		IsLive:      c.IsLive,
		Label:       c.GameName,
		Tags:        c.Tags,
		Language:    c.BroadcasterLanguage,
		Title:       c.Title,
	}
}

// followersResponse is the body of GET /channels/followers.
type followersResponse struct {
	Total int64 `json:"total"`
}
