package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"creator_scout/internal/domain"
)

// SyncRunStore is the append-only audit trail of processed jobs.
type SyncRunStore struct {
	db *sqlx.DB
}

func NewSyncRunStore(db *sqlx.DB) *SyncRunStore {
	return &SyncRunStore{db: db}
}

func (s *SyncRunStore) Record(ctx context.Context, run *domain.SyncRun) error {
	query := `
		INSERT INTO sync_runs (
			job_id, job_type, platform, found, created, updated, errors,
			duration_ms, error, started_at, finished_at
		) VALUES (
			:job_id, :job_type, :platform, :found, :created, :updated, :errors,
			:duration_ms, :error, :started_at, :finished_at
		)
		RETURNING id`

	rows, err := sqlx.NamedQueryContext(ctx, GetExecutor(ctx, s.db), query, run)
	if err != nil {
		return fmt.Errorf("record sync run: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&run.ID); err != nil {
			return fmt.Errorf("scan sync run id: %w", err)
		}
	}
	return rows.Err()
}

// Recent returns the latest runs, newest first.
func (s *SyncRunStore) Recent(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	query := `
		SELECT id, job_id, job_type, platform, found, created, updated, errors,
			duration_ms, error, started_at, finished_at
		FROM sync_runs
		ORDER BY started_at DESC, id DESC
		LIMIT $1`

	var runs []domain.SyncRun
	if err := s.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	return runs, nil
}
