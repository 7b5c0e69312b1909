// Package kick reads livestreams and channels from the Kick public API.
package kick

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"creator_scout/internal/config"
	"creator_scout/internal/connector"
	"creator_scout/internal/domain"
)

const (
	maxSlugsPerRequest = 50
	maxPageSize        = 100
)

// Source implements connector.Connector for Kick. The livestream listing is
// not paginated, so every category has a single page.
type Source struct {
	client   *connector.Client
	provider string
	logger   *slog.Logger
}

var _ connector.Connector = (*Source)(nil)

func New(cfg config.ConnectorConfig, logger *slog.Logger) *Source {
	return &Source{
		client:   connector.NewClient(string(domain.PlatformKick), cfg, nil, logger),
		provider: cfg.Provider,
		logger:   logger.With("platform", domain.PlatformKick),
	}
}

func (s *Source) Platform() domain.Platform {
	return domain.PlatformKick
}

func (s *Source) Provider() string {
	return s.provider
}

func (s *Source) FetchCategoryPage(ctx context.Context, categoryID string, pageSize int, cursor string) (connector.Page, error) {
	if cursor != "" {
		return connector.Page{}, nil
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	q := url.Values{}
	q.Set("category_id", categoryID)
	q.Set("limit", strconv.Itoa(pageSize))
	q.Set("sort", "viewer_count")

	var resp livestreamsResponse
	if err := s.client.GetJSON(ctx, "/livestreams", q, &resp); err != nil {
		return connector.Page{}, fmt.Errorf("fetch livestreams for category %s: %w", categoryID, err)
	}

	page := connector.Page{Items: make([]connector.Item, 0, len(resp.Data))}
	for _, l := range resp.Data {
		page.Items = append(page.Items, l.toItem())
	}

	s.logger.Debug("fetched category page", "category_id", categoryID, "streams", len(page.Items))
	return page, nil
}

func (s *Source) FetchByIdentifiers(ctx context.Context, identifiers []string) ([]connector.Item, error) {
	items := make([]connector.Item, 0, len(identifiers))

	for start := 0; start < len(identifiers); start += maxSlugsPerRequest {
		end := min(start+maxSlugsPerRequest, len(identifiers))

		q := url.Values{}
		for _, slug := range identifiers[start:end] {
			q.Add("slug", slug)
		}

		var resp channelsResponse
		if err := s.client.GetJSON(ctx, "/channels", q, &resp); err != nil {
			return items, fmt.Errorf("fetch channels: %w", err)
		}
		for _, ch := range resp.Data {
			items = append(items, ch.toItem())
		}
	}

	return items, nil
}

func (s *Source) Search(context.Context, string, int, string) (connector.Page, error) {
	return connector.Page{}, fmt.Errorf("kick search: %w", connector.ErrUnsupported)
}

func (s *Source) FetchFollowerCount(context.Context, string) (int64, error) {
	return 0, fmt.Errorf("kick follower count: %w", connector.ErrUnsupported)
}
