package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stordev/sitescout/internal/sites"
)

// ScoreStore persists score rollups. Rollups are recomputable, so
// conflicts merge.
type ScoreStore struct {
	db DB
}

// NewScoreStore creates a ScoreStore over the given pool.
func NewScoreStore(db DB) *ScoreStore {
	return &ScoreStore{db: db}
}

// Upsert inserts or refreshes the rollup for one candidate.
func (s *ScoreStore) Upsert(ctx context.Context, sc sites.ScoreCard) error {
	query := `
		INSERT INTO site_scores (
			candidate_id, parcel_score, county_difficulty,
			financial_score, saturation_score, final_score, computed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (candidate_id) DO UPDATE SET
			parcel_score = EXCLUDED.parcel_score,
			county_difficulty = EXCLUDED.county_difficulty,
			financial_score = EXCLUDED.financial_score,
			saturation_score = EXCLUDED.saturation_score,
			final_score = EXCLUDED.final_score,
			computed_at = EXCLUDED.computed_at`
	_, err := s.db.Exec(ctx, query,
		sc.CandidateID, sc.ParcelScore, sc.CountyDifficulty,
		sc.FinancialScore, sc.SaturationScore, sc.FinalScore, sc.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert score card: %w", err)
	}
	return nil
}

// GetByCandidate returns the rollup for one candidate.
func (s *ScoreStore) GetByCandidate(ctx context.Context, candidateID string) (sites.ScoreCard, error) {
	query := `
		SELECT candidate_id, parcel_score, county_difficulty,
			financial_score, saturation_score, final_score, computed_at
		FROM site_scores WHERE candidate_id = $1`
	var sc sites.ScoreCard
	err := s.db.QueryRow(ctx, query, candidateID).Scan(
		&sc.CandidateID, &sc.ParcelScore, &sc.CountyDifficulty,
		&sc.FinancialScore, &sc.SaturationScore, &sc.FinalScore, &sc.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sites.ScoreCard{}, sites.ErrNotFound
		}
		return sites.ScoreCard{}, fmt.Errorf("get score card: %w", err)
	}
	return sc, nil
}
