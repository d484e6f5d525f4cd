package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stordev/sitescout/internal/sites"
)

// ParcelStore persists parcel analyses, one per candidate. Parcels are
// immutable after insert: re-runs hit the conflict-ignore path.
type ParcelStore struct {
	db DB
}

// NewParcelStore creates a ParcelStore over the given pool.
func NewParcelStore(db DB) *ParcelStore {
	return &ParcelStore{db: db}
}

// Insert writes a parcel row. Returns false when the candidate already
// has a parcel and the row was skipped.
func (s *ParcelStore) Insert(ctx context.Context, p sites.Parcel) (bool, error) {
	query := `
		INSERT INTO parcels (
			candidate_id, shape_score, slope_score, access_score,
			floodplain, soil_quality, has_rock, viable, score, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (candidate_id) DO NOTHING`
	tag, err := s.db.Exec(ctx, query,
		p.CandidateID, p.ShapeScore, p.SlopeScore, p.AccessScore,
		p.Floodplain, p.SoilQuality, p.HasRock, p.Viable, p.Score, p.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert parcel: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByCandidate returns the parcel for one candidate.
func (s *ParcelStore) GetByCandidate(ctx context.Context, candidateID string) (sites.Parcel, error) {
	query := `
		SELECT candidate_id, shape_score, slope_score, access_score,
			floodplain, soil_quality, has_rock, viable, score, created_at
		FROM parcels WHERE candidate_id = $1`
	var p sites.Parcel
	err := s.db.QueryRow(ctx, query, candidateID).Scan(
		&p.CandidateID, &p.ShapeScore, &p.SlopeScore, &p.AccessScore,
		&p.Floodplain, &p.SoilQuality, &p.HasRock, &p.Viable, &p.Score, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sites.Parcel{}, sites.ErrNotFound
		}
		return sites.Parcel{}, fmt.Errorf("get parcel: %w", err)
	}
	return p, nil
}
