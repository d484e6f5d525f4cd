package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stordev/sitescout/internal/sites"
)

// SaturationStore persists market-saturation analyses. Saturation is
// recomputable, so conflicts merge the fresh analysis over the old one.
type SaturationStore struct {
	db DB
}

// NewSaturationStore creates a SaturationStore over the given pool.
func NewSaturationStore(db DB) *SaturationStore {
	return &SaturationStore{db: db}
}

// Upsert inserts or refreshes the analysis for one candidate.
func (s *SaturationStore) Upsert(ctx context.Context, a sites.Saturation) error {
	query := `
		INSERT INTO saturation (
			candidate_id, population, required_sqft, existing_sqft,
			ratio, score, market_status, computed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (candidate_id) DO UPDATE SET
			population = EXCLUDED.population,
			required_sqft = EXCLUDED.required_sqft,
			existing_sqft = EXCLUDED.existing_sqft,
			ratio = EXCLUDED.ratio,
			score = EXCLUDED.score,
			market_status = EXCLUDED.market_status,
			computed_at = EXCLUDED.computed_at`
	_, err := s.db.Exec(ctx, query,
		a.CandidateID, a.Population, a.RequiredSqft, a.ExistingSqft,
		a.Ratio, a.Score, a.MarketStatus, a.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert saturation: %w", err)
	}
	return nil
}

// GetByCandidate returns the analysis for one candidate.
func (s *SaturationStore) GetByCandidate(ctx context.Context, candidateID string) (sites.Saturation, error) {
	query := `
		SELECT candidate_id, population, required_sqft, existing_sqft,
			ratio, score, market_status, computed_at
		FROM saturation WHERE candidate_id = $1`
	var a sites.Saturation
	err := s.db.QueryRow(ctx, query, candidateID).Scan(
		&a.CandidateID, &a.Population, &a.RequiredSqft, &a.ExistingSqft,
		&a.Ratio, &a.Score, &a.MarketStatus, &a.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sites.Saturation{}, sites.ErrNotFound
		}
		return sites.Saturation{}, fmt.Errorf("get saturation: %w", err)
	}
	return a, nil
}
