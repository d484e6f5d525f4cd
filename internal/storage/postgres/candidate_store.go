package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stordev/sitescout/internal/sites"
)

// CandidateStore persists site candidates.
type CandidateStore struct {
	db DB
}

// NewCandidateStore creates a CandidateStore over the given pool.
func NewCandidateStore(db DB) *CandidateStore {
	return &CandidateStore{db: db}
}

const candidateColumns = `id, address, city, county, state, zip, acreage, asking_price,
	traffic_count, population, households, status, final_score, created_at, updated_at`

// Create inserts a new candidate. IDs are assigned by the caller, so a
// duplicate id is an error, not a conflict to ignore.
func (s *CandidateStore) Create(ctx context.Context, c sites.SiteCandidate) error {
	query := `
		INSERT INTO site_candidates (
			id, address, city, county, state, zip, acreage, asking_price,
			traffic_count, population, households, status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err := s.db.Exec(ctx, query,
		c.ID, c.Address, c.City, c.County, c.State, c.Zip, c.Acreage, c.AskingPrice,
		c.TrafficCount, c.Population, c.Households, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

// Get returns one candidate by id.
func (s *CandidateStore) Get(ctx context.Context, id string) (sites.SiteCandidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM site_candidates WHERE id = $1`
	var c sites.SiteCandidate
	err := s.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Address, &c.City, &c.County, &c.State, &c.Zip, &c.Acreage, &c.AskingPrice,
		&c.TrafficCount, &c.Population, &c.Households, &c.Status, &c.FinalScore,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sites.SiteCandidate{}, sites.ErrNotFound
		}
		return sites.SiteCandidate{}, fmt.Errorf("get candidate: %w", err)
	}
	return c, nil
}

// List returns candidates matching the filter, best scores first.
func (s *CandidateStore) List(ctx context.Context, f sites.CandidateFilter) ([]sites.SiteCandidate, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + candidateColumns + `
		FROM site_candidates
		WHERE ($1::text = '' OR state = $1)
		  AND ($2::text = '' OR county = $2)
		  AND ($3::text = '' OR status = $3)
		  AND ($4::double precision IS NULL OR final_score >= $4)
		ORDER BY final_score DESC NULLS LAST, created_at
		LIMIT $5 OFFSET $6`
	rows, err := s.db.Query(ctx, query,
		f.State, f.County, string(f.Status), f.MinScore, limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var out []sites.SiteCandidate
	for rows.Next() {
		var c sites.SiteCandidate
		err := rows.Scan(
			&c.ID, &c.Address, &c.City, &c.County, &c.State, &c.Zip, &c.Acreage, &c.AskingPrice,
			&c.TrafficCount, &c.Population, &c.Households, &c.Status, &c.FinalScore,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return out, nil
}

// SetScore records the final score and advances the candidate status.
func (s *CandidateStore) SetScore(ctx context.Context, id string, finalScore float64, status sites.CandidateStatus) error {
	query := `
		UPDATE site_candidates
		SET final_score = $1, status = $2, updated_at = now()
		WHERE id = $3`
	tag, err := s.db.Exec(ctx, query, finalScore, status, id)
	if err != nil {
		return fmt.Errorf("set candidate score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sites.ErrNotFound
	}
	return nil
}
