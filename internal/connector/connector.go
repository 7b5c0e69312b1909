// Package connector defines the uniform read surface over streaming
// platforms and the decorators shared by every platform implementation.
package connector

//go:generate mockgen -source=connector.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"

	"creator_scout/internal/domain"
)

var (
	// ErrAuth means the platform rejected our credentials. Callers skip the
	// platform for the current run.
	ErrAuth = errors.New("connector: authentication failed")
	// ErrUnavailable means the platform is not being called right now, for
	// example because its circuit breaker is open.
	ErrUnavailable = errors.New("connector: platform unavailable")
	// ErrUnsupported is returned by operations a platform does not offer.
	ErrUnsupported = errors.New("connector: operation not supported")
)

// Item is one creator as seen in a single platform response.
type Item struct {
	Identifier  string
	DisplayName string
	AvatarURL   string
	Viewers     int64
	IsLive      bool
	Label       string
	Tags        []string
	Language    string
	Title       string
	// Followers is zero when the endpoint does not report it.
	Followers int64
}

// Page is one page of a paginated listing. An empty NextCursor means the
// listing is exhausted.
type Page struct {
	Items      []Item
	NextCursor string
}

type Connector interface {
	Platform() domain.Platform
	FetchCategoryPage(ctx context.Context, categoryID string, pageSize int, cursor string) (Page, error)
	FetchByIdentifiers(ctx context.Context, identifiers []string) ([]Item, error)
	Search(ctx context.Context, keyword string, pageSize int, cursor string) (Page, error)
	FetchFollowerCount(ctx context.Context, identifier string) (int64, error)
}

type providerNamer interface {
	Provider() string
}

// ProviderOf returns the credit ledger key billed for c's calls. Connectors
// that do not name a provider are billed under their platform name.
func ProviderOf(c Connector) string {
	if p, ok := c.(providerNamer); ok && p.Provider() != "" {
		return p.Provider()
	}
	return string(c.Platform())
}
