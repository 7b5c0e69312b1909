package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"creator_scout/internal/domain"
	"creator_scout/internal/storage"
)

const uniqueViolation = "23505"

const creatorColumns = `
	id, platform, identifier, display_name, avatar_url, followers, viewers,
	peak_viewers, is_live, content_label, tags, language, category, sync_tier,
	last_synced_at, last_live_at, provenance, recent_titles, created_at, updated_at`

type CreatorStore struct {
	db *sqlx.DB
}

func NewCreatorStore(db *sqlx.DB) *CreatorStore {
	return &CreatorStore{db: db}
}

type recentTitles []domain.RecentTitle

func (r recentTitles) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]domain.RecentTitle(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *recentTitles) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan recent titles: unsupported type %T", src)
	}
	return json.Unmarshal(raw, (*[]domain.RecentTitle)(r))
}

type creatorRow struct {
	ID           int64          `db:"id"`
	Platform     string         `db:"platform"`
	Identifier   string         `db:"identifier"`
	DisplayName  string         `db:"display_name"`
	AvatarURL    string         `db:"avatar_url"`
	Followers    int64          `db:"followers"`
	Viewers      sql.NullInt64  `db:"viewers"`
	PeakViewers  int64          `db:"peak_viewers"`
	IsLive       bool           `db:"is_live"`
	ContentLabel string         `db:"content_label"`
	Tags         pq.StringArray `db:"tags"`
	Language     string         `db:"language"`
	Category     string         `db:"category"`
	SyncTier     string         `db:"sync_tier"`
	LastSyncedAt sql.NullTime   `db:"last_synced_at"`
	LastLiveAt   sql.NullTime   `db:"last_live_at"`
	Provenance   string         `db:"provenance"`
	RecentTitles recentTitles   `db:"recent_titles"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r *creatorRow) toDomain() domain.Creator {
	c := domain.Creator{
		ID:           r.ID,
		Platform:     domain.Platform(r.Platform),
		Identifier:   r.Identifier,
		DisplayName:  r.DisplayName,
		AvatarURL:    r.AvatarURL,
		Followers:    r.Followers,
		PeakViewers:  r.PeakViewers,
		IsLive:       r.IsLive,
		ContentLabel: r.ContentLabel,
		Tags:         []string(r.Tags),
		Language:     r.Language,
		Category:     domain.Category(r.Category),
		Tier:         domain.SyncTier(r.SyncTier),
		Provenance:   r.Provenance,
		RecentTitles: []domain.RecentTitle(r.RecentTitles),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Viewers.Valid {
		v := r.Viewers.Int64
		c.Viewers = &v
	}
	if r.LastSyncedAt.Valid {
		t := r.LastSyncedAt.Time
		c.LastSyncedAt = &t
	}
	if r.LastLiveAt.Valid {
		t := r.LastLiveAt.Time
		c.LastLiveAt = &t
	}
	return c
}

func tagsOf(c *domain.Creator) pq.StringArray {
	if c.Tags == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(c.Tags)
}

func categoryOf(c *domain.Creator) string {
	if c.Category == "" {
		return string(domain.CategoryVariety)
	}
	return string(c.Category)
}

func tierOf(c *domain.Creator) string {
	if c.Tier == "" {
		return string(domain.TierCold)
	}
	return string(c.Tier)
}

// Create inserts a new creator and fills its ID and timestamps. A record with
// the same (platform, identifier) yields storage.ErrConflict.
func (s *CreatorStore) Create(ctx context.Context, c *domain.Creator) error {
	query := `
		INSERT INTO creators (
			platform, identifier, display_name, avatar_url, followers, viewers,
			peak_viewers, is_live, content_label, tags, language, category,
			sync_tier, last_synced_at, last_live_at, provenance, recent_titles
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)
		RETURNING id, created_at, updated_at`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		c.Platform,
		c.Identifier,
		c.DisplayName,
		c.AvatarURL,
		c.Followers,
		c.Viewers,
		c.PeakViewers,
		c.IsLive,
		c.ContentLabel,
		tagsOf(c),
		c.Language,
		categoryOf(c),
		tierOf(c),
		c.LastSyncedAt,
		c.LastLiveAt,
		c.Provenance,
		recentTitles(c.RecentTitles),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("insert creator %s/%s: %w", c.Platform, c.Identifier, storage.ErrConflict)
		}
		return fmt.Errorf("insert creator %s/%s: %w", c.Platform, c.Identifier, err)
	}
	return nil
}

// Upsert inserts c or refreshes the existing record's volatile fields.
// Provenance and created_at of an existing record are never changed.
func (s *CreatorStore) Upsert(ctx context.Context, c *domain.Creator) (bool, error) {
	query := `
		INSERT INTO creators (
			platform, identifier, display_name, avatar_url, followers, viewers,
			peak_viewers, is_live, content_label, tags, language, category,
			sync_tier, last_synced_at, last_live_at, provenance, recent_titles
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)
		ON CONFLICT (platform, identifier) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			avatar_url = EXCLUDED.avatar_url,
			followers = GREATEST(creators.followers, EXCLUDED.followers),
			viewers = EXCLUDED.viewers,
			peak_viewers = GREATEST(creators.peak_viewers, EXCLUDED.peak_viewers),
			is_live = EXCLUDED.is_live,
			content_label = EXCLUDED.content_label,
			tags = EXCLUDED.tags,
			language = EXCLUDED.language,
			category = EXCLUDED.category,
			last_synced_at = EXCLUDED.last_synced_at,
			last_live_at = COALESCE(EXCLUDED.last_live_at, creators.last_live_at),
			recent_titles = EXCLUDED.recent_titles,
			updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`

	var inserted bool
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		c.Platform,
		c.Identifier,
		c.DisplayName,
		c.AvatarURL,
		c.Followers,
		c.Viewers,
		c.PeakViewers,
		c.IsLive,
		c.ContentLabel,
		tagsOf(c),
		c.Language,
		categoryOf(c),
		tierOf(c),
		c.LastSyncedAt,
		c.LastLiveAt,
		c.Provenance,
		recentTitles(c.RecentTitles),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("upsert creator %s/%s: %w", c.Platform, c.Identifier, err)
	}
	return inserted, nil
}

func (s *CreatorStore) Get(ctx context.Context, platform domain.Platform, identifier string) (*domain.Creator, error) {
	query := `SELECT ` + creatorColumns + ` FROM creators WHERE platform = $1 AND identifier = $2`

	var row creatorRow
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, platform, identifier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get creator %s/%s: %w", platform, identifier, err)
	}

	c := row.toDomain()
	return &c, nil
}

// GetMany returns the known records among identifiers, keyed by identifier.
func (s *CreatorStore) GetMany(ctx context.Context, platform domain.Platform, identifiers []string) (map[string]*domain.Creator, error) {
	result := make(map[string]*domain.Creator, len(identifiers))
	if len(identifiers) == 0 {
		return result, nil
	}

	query := `SELECT ` + creatorColumns + ` FROM creators WHERE platform = $1 AND identifier = ANY($2)`

	var rows []creatorRow
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query, platform, pq.Array(identifiers)); err != nil {
		return nil, fmt.Errorf("get creators: %w", err)
	}

	for i := range rows {
		c := rows[i].toDomain()
		result[c.Identifier] = &c
	}
	return result, nil
}

// Update writes every mutable field of an existing record by ID.
func (s *CreatorStore) Update(ctx context.Context, c *domain.Creator) error {
	query := `
		UPDATE creators SET
			display_name = $2,
			avatar_url = $3,
			followers = $4,
			viewers = $5,
			peak_viewers = $6,
			is_live = $7,
			content_label = $8,
			tags = $9,
			language = $10,
			category = $11,
			sync_tier = $12,
			last_synced_at = $13,
			last_live_at = $14,
			recent_titles = $15,
			updated_at = NOW()
		WHERE id = $1`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		c.ID,
		c.DisplayName,
		c.AvatarURL,
		c.Followers,
		c.Viewers,
		c.PeakViewers,
		c.IsLive,
		c.ContentLabel,
		tagsOf(c),
		c.Language,
		categoryOf(c),
		tierOf(c),
		c.LastSyncedAt,
		c.LastLiveAt,
		recentTitles(c.RecentTitles),
	)
	if err != nil {
		return fmt.Errorf("update creator %d: %w", c.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update creator %d: %w", c.ID, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// TouchSynced marks records as synced at the given time without changing
// anything else. Used for creators the platform no longer returns.
func (s *CreatorStore) TouchSynced(ctx context.Context, platform domain.Platform, identifiers []string, at time.Time) error {
	if len(identifiers) == 0 {
		return nil
	}

	query := `
		UPDATE creators SET last_synced_at = $3, is_live = FALSE, viewers = NULL
		WHERE platform = $1 AND identifier = ANY($2)`

	if _, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, platform, pq.Array(identifiers), at); err != nil {
		return fmt.Errorf("touch creators: %w", err)
	}
	return nil
}

// ListStale returns up to limit records in tier whose last sync is before
// staleBefore or missing, never-synced and oldest first. An empty platform
// matches every platform.
func (s *CreatorStore) ListStale(ctx context.Context, tier domain.SyncTier, staleBefore time.Time, platform domain.Platform, limit int) ([]domain.Creator, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT ` + creatorColumns + `
		FROM creators
		WHERE sync_tier = $1
			AND (last_synced_at IS NULL OR last_synced_at < $2)
			AND ($3::text = '' OR platform = $3::text)
		ORDER BY last_synced_at ASC NULLS FIRST, id ASC
		LIMIT $4`

	var rows []creatorRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, tier, staleBefore, string(platform), limit); err != nil {
		return nil, fmt.Errorf("list stale creators: %w", err)
	}
	return toDomainSlice(rows), nil
}

// ListPage returns up to limit records with id > afterID in id order.
func (s *CreatorStore) ListPage(ctx context.Context, afterID int64, limit int) ([]domain.Creator, error) {
	query := `SELECT ` + creatorColumns + ` FROM creators WHERE id > $1 ORDER BY id ASC LIMIT $2`

	var rows []creatorRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, afterID, limit); err != nil {
		return nil, fmt.Errorf("list creators: %w", err)
	}
	return toDomainSlice(rows), nil
}

func (s *CreatorStore) ListIdentifiers(ctx context.Context) (map[domain.Platform][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT platform, identifier FROM creators`)
	if err != nil {
		return nil, fmt.Errorf("list identifiers: %w", err)
	}
	defer rows.Close()

	result := make(map[domain.Platform][]string)
	for rows.Next() {
		var platform, identifier string
		if err := rows.Scan(&platform, &identifier); err != nil {
			return nil, fmt.Errorf("scan identifier: %w", err)
		}
		p := domain.Platform(platform)
		result[p] = append(result[p], identifier)
	}

	return result, rows.Err()
}

// UpdateTiers writes the given tier per record ID, skipping unchanged rows.
// It returns the number of rows changed.
func (s *CreatorStore) UpdateTiers(ctx context.Context, tiers map[int64]domain.SyncTier) (int64, error) {
	if len(tiers) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(tiers))
	values := make([]string, 0, len(tiers))
	for id, t := range tiers {
		ids = append(ids, id)
		values = append(values, string(t))
	}

	query := `
		UPDATE creators AS c SET sync_tier = u.tier, updated_at = NOW()
		FROM unnest($1::bigint[], $2::text[]) AS u(id, tier)
		WHERE c.id = u.id AND c.sync_tier <> u.tier`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, pq.Array(ids), pq.Array(values))
	if err != nil {
		return 0, fmt.Errorf("update tiers: %w", err)
	}
	return res.RowsAffected()
}

func (s *CreatorStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM creators`); err != nil {
		return 0, fmt.Errorf("count creators: %w", err)
	}
	return n, nil
}

func (s *CreatorStore) CountByTier(ctx context.Context) (map[domain.SyncTier]int64, error) {
	var rows []struct {
		Tier  string `db:"sync_tier"`
		Count int64  `db:"count"`
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT sync_tier, COUNT(*) AS count FROM creators GROUP BY sync_tier`); err != nil {
		return nil, fmt.Errorf("count creators by tier: %w", err)
	}

	result := make(map[domain.SyncTier]int64, len(domain.Tiers))
	for _, t := range domain.Tiers {
		result[t] = 0
	}
	for _, r := range rows {
		result[domain.SyncTier(r.Tier)] = r.Count
	}
	return result, nil
}

func (s *CreatorStore) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, `DELETE FROM creators WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete creators: %w", err)
	}
	return res.RowsAffected()
}

func toDomainSlice(rows []creatorRow) []domain.Creator {
	out := make([]domain.Creator, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}
