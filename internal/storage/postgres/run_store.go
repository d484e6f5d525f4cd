package postgres

import (
	"context"
	"fmt"

	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/sites"
)

// RunStore persists the loader run ledger.
type RunStore struct {
	db DB
}

// NewRunStore creates a RunStore over the given pool.
func NewRunStore(db DB) *RunStore {
	return &RunStore{db: db}
}

// CreateRun inserts the ledger row for a run that just started.
func (s *RunStore) CreateRun(ctx context.Context, run etl.SourceRun) error {
	query := `
		INSERT INTO source_runs (
			id, source, started_at, status, fetched, inserted,
			skipped, failed, error_text, details
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := s.db.Exec(ctx, query,
		run.ID, run.Source, run.StartedAt, run.Status,
		run.Counters.Fetched, run.Counters.Inserted,
		run.Counters.Skipped, run.Counters.Failed,
		run.ErrorText, detailsOrEmpty(run.Details),
	)
	if err != nil {
		return fmt.Errorf("insert source run: %w", err)
	}
	return nil
}

// FinishRun records the final state of a run.
func (s *RunStore) FinishRun(ctx context.Context, run etl.SourceRun) error {
	query := `
		UPDATE source_runs
		SET finished_at = $1, status = $2, fetched = $3, inserted = $4,
			skipped = $5, failed = $6, error_text = $7, details = $8
		WHERE id = $9`
	tag, err := s.db.Exec(ctx, query,
		run.FinishedAt, run.Status,
		run.Counters.Fetched, run.Counters.Inserted,
		run.Counters.Skipped, run.Counters.Failed,
		run.ErrorText, detailsOrEmpty(run.Details), run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish source run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sites.ErrNotFound
	}
	return nil
}

// ListRuns returns recent runs, newest first, optionally restricted to
// one source.
func (s *RunStore) ListRuns(ctx context.Context, source string, limit int) ([]etl.SourceRun, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, source, started_at, finished_at, status, fetched,
			inserted, skipped, failed, error_text, details
		FROM source_runs
		WHERE ($1::text = '' OR source = $1)
		ORDER BY started_at DESC
		LIMIT $2`
	rows, err := s.db.Query(ctx, query, source, limit)
	if err != nil {
		return nil, fmt.Errorf("list source runs: %w", err)
	}
	defer rows.Close()

	var out []etl.SourceRun
	for rows.Next() {
		var run etl.SourceRun
		err := rows.Scan(
			&run.ID, &run.Source, &run.StartedAt, &run.FinishedAt, &run.Status,
			&run.Counters.Fetched, &run.Counters.Inserted,
			&run.Counters.Skipped, &run.Counters.Failed,
			&run.ErrorText, &run.Details,
		)
		if err != nil {
			return nil, fmt.Errorf("scan source run row: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list source runs: %w", err)
	}
	return out, nil
}

// detailsOrEmpty keeps the details column json-object shaped; a nil map
// would encode as SQL null.
func detailsOrEmpty(d map[string]string) map[string]string {
	if d == nil {
		return map[string]string{}
	}
	return d
}
