// Package twitch reads live streams and channels from the Twitch Helix API.
package twitch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"creator_scout/internal/config"
	"creator_scout/internal/connector"
	"creator_scout/internal/domain"
)

// maxIDsPerRequest is the Helix limit on repeated login parameters.
const maxIDsPerRequest = 100

// Source implements connector.Connector for Twitch.
type Source struct {
	client   *connector.Client
	provider string
	logger   *slog.Logger
}

var _ connector.Connector = (*Source)(nil)

func New(cfg config.ConnectorConfig, logger *slog.Logger) *Source {
	header := http.Header{}
	header.Set("Client-Id", cfg.ClientID)

	return &Source{
		client:   connector.NewClient(string(domain.PlatformTwitch), cfg, header, logger),
		provider: cfg.Provider,
		logger:   logger.With("platform", domain.PlatformTwitch),
	}
}

func (s *Source) Platform() domain.Platform {
	return domain.PlatformTwitch
}

func (s *Source) Provider() string {
	return s.provider
}

// FetchCategoryPage lists live streams in a game, most viewed first.
func (s *Source) FetchCategoryPage(ctx context.Context, categoryID string, pageSize int, cursor string) (connector.Page, error) {
	q := url.Values{}
	q.Set("game_id", categoryID)
	q.Set("first", strconv.Itoa(clampPageSize(pageSize)))
	if cursor != "" {
		q.Set("after", cursor)
	}

	var resp streamsResponse
	if err := s.client.GetJSON(ctx, "/streams", q, &resp); err != nil {
		return connector.Page{}, fmt.Errorf("fetch streams for game %s: %w", categoryID, err)
	}

	page := connector.Page{
		Items:      make([]connector.Item, 0, len(resp.Data)),
		NextCursor: resp.Pagination.Cursor,
	}
	for _, st := range resp.Data {
		page.Items = append(page.Items, st.toItem())
	}

	s.logger.Debug("fetched category page",
		"game_id", categoryID,
		"streams", len(page.Items),
		"has_more", page.NextCursor != "",
	)
	return page, nil
}

// FetchByIdentifiers returns the current state of the given logins. Offline
// channels are reported with IsLive false. Unknown logins are omitted.
func (s *Source) FetchByIdentifiers(ctx context.Context, identifiers []string) ([]connector.Item, error) {
	items := make([]connector.Item, 0, len(identifiers))

	for start := 0; start < len(identifiers); start += maxIDsPerRequest {
		end := min(start+maxIDsPerRequest, len(identifiers))
		batch, err := s.fetchBatch(ctx, identifiers[start:end])
		if err != nil {
			return items, err
		}
		items = append(items, batch...)
	}

	return items, nil
}

func (s *Source) fetchBatch(ctx context.Context, logins []string) ([]connector.Item, error) {
	q := url.Values{}
	for _, l := range logins {
		q.Add("login", l)
	}
	var users usersResponse
	if err := s.client.GetJSON(ctx, "/users", q, &users); err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}

	q = url.Values{}
	for _, l := range logins {
		q.Add("user_login", l)
	}
	q.Set("first", strconv.Itoa(maxIDsPerRequest))
	var streams streamsResponse
	if err := s.client.GetJSON(ctx, "/streams", q, &streams); err != nil {
		return nil, fmt.Errorf("fetch streams by login: %w", err)
	}

	live := make(map[string]Stream, len(streams.Data))
	for _, st := range streams.Data {
		live[strings.ToLower(st.UserLogin)] = st
	}

	items := make([]connector.Item, 0, len(users.Data))
	for _, u := range users.Data {
		item := connector.Item{
			Identifier:  u.Login,
			DisplayName: u.DisplayName,
			AvatarURL:   u.ProfileImageURL,
		}
		if st, ok := live[strings.ToLower(u.Login)]; ok {
			item = st.toItem()
			item.AvatarURL = u.ProfileImageURL
		}
		items = append(items, item)
	}
	return items, nil
}

// Search finds live channels matching keyword.
func (s *Source) Search(ctx context.Context, keyword string, pageSize int, cursor string) (connector.Page, error) {
	q := url.Values{}
	q.Set("query", keyword)
	q.Set("live_only", "true")
	q.Set("first", strconv.Itoa(clampPageSize(pageSize)))
	if cursor != "" {
		q.Set("after", cursor)
	}

	var resp searchResponse
	if err := s.client.GetJSON(ctx, "/search/channels", q, &resp); err != nil {
		return connector.Page{}, fmt.Errorf("search channels %q: %w", keyword, err)
	}

	page := connector.Page{
		Items:      make([]connector.Item, 0, len(resp.Data)),
		NextCursor: resp.Pagination.Cursor,
	}
	for _, ch := range resp.Data {
		page.Items = append(page.Items, ch.toItem())
	}
	return page, nil
}

// FetchFollowerCount resolves the login to a broadcaster id, then reads the
// follower total.
func (s *Source) FetchFollowerCount(ctx context.Context, identifier string) (int64, error) {
	q := url.Values{}
	q.Set("login", identifier)
	var users usersResponse
	if err := s.client.GetJSON(ctx, "/users", q, &users); err != nil {
		return 0, fmt.Errorf("fetch user %s: %w", identifier, err)
	}
	if len(users.Data) == 0 {
		return 0, fmt.Errorf("fetch user %s: not found", identifier)
	}

	q = url.Values{}
	q.Set("broadcaster_id", users.Data[0].ID)
	q.Set("first", "1")
	var followers followersResponse
	if err := s.client.GetJSON(ctx, "/channels/followers", q, &followers); err != nil {
		return 0, fmt.Errorf("fetch followers for %s: %w", identifier, err)
	}
	return followers.Total, nil
}

func clampPageSize(n int) int {
	if n <= 0 || n > 100 {
		return 100
	}
	return n
}
