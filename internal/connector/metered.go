package connector

import (
	"context"
	"log/slog"

	"creator_scout/internal/credits"
	"creator_scout/internal/domain"
)

// Metered bills every successful call of the wrapped connector to the
// credit ledger. Failed calls are not billed.
type Metered struct {
	next     Connector
	ledger   credits.Ledger
	provider string
	cost     int64
	logger   *slog.Logger
}

var _ Connector = (*Metered)(nil)

func NewMetered(next Connector, ledger credits.Ledger, provider string, costPerCall int64, logger *slog.Logger) *Metered {
	if provider == "" {
		provider = ProviderOf(next)
	}
	return &Metered{
		next:     next,
		ledger:   ledger,
		provider: provider,
		cost:     max(costPerCall, 1),
		logger:   logger.With("component", "metered_connector", "provider", provider),
	}
}

func (m *Metered) Platform() domain.Platform { return m.next.Platform() }

func (m *Metered) Provider() string { return m.provider }

func (m *Metered) record(ctx context.Context, err error) {
	if err != nil {
		return
	}
	if recErr := m.ledger.Record(ctx, m.provider, m.cost); recErr != nil {
		m.logger.Warn("record credit usage failed", "error", recErr)
	}
}

func (m *Metered) FetchCategoryPage(ctx context.Context, categoryID string, pageSize int, cursor string) (Page, error) {
	page, err := m.next.FetchCategoryPage(ctx, categoryID, pageSize, cursor)
	m.record(ctx, err)
	return page, err
}

func (m *Metered) FetchByIdentifiers(ctx context.Context, identifiers []string) ([]Item, error) {
	items, err := m.next.FetchByIdentifiers(ctx, identifiers)
	m.record(ctx, err)
	return items, err
}

func (m *Metered) Search(ctx context.Context, keyword string, pageSize int, cursor string) (Page, error) {
	page, err := m.next.Search(ctx, keyword, pageSize, cursor)
	m.record(ctx, err)
	return page, err
}

func (m *Metered) FetchFollowerCount(ctx context.Context, identifier string) (int64, error) {
	n, err := m.next.FetchFollowerCount(ctx, identifier)
	m.record(ctx, err)
	return n, err
}
