package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stordev/sitescout/internal/sites"
)

// ZipStore persists ZIP-level demographics. Rows accumulate append-only:
// a ZIP already loaded is skipped, never refreshed.
type ZipStore struct {
	db DB
}

// NewZipStore creates a ZipStore over the given pool.
func NewZipStore(db DB) *ZipStore {
	return &ZipStore{db: db}
}

// Insert writes one ZIP row. Returns false when the ZIP already existed.
func (s *ZipStore) Insert(ctx context.Context, z sites.ZipDemographics) (bool, error) {
	query := `
		INSERT INTO zips_master (
			zip, state, population, households, median_income,
			median_age, poverty_rate, renter_pct, year, loaded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (zip) DO NOTHING`
	tag, err := s.db.Exec(ctx, query,
		z.Zip, z.State, z.Population, z.Households, z.MedianIncome,
		z.MedianAge, z.PovertyRate, z.RenterPct, z.Year, z.LoadedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert zip: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Get returns one ZIP row.
func (s *ZipStore) Get(ctx context.Context, zip string) (sites.ZipDemographics, error) {
	query := `
		SELECT zip, state, population, households, median_income,
			median_age, poverty_rate, renter_pct, year, loaded_at
		FROM zips_master WHERE zip = $1`
	var z sites.ZipDemographics
	err := s.db.QueryRow(ctx, query, zip).Scan(
		&z.Zip, &z.State, &z.Population, &z.Households, &z.MedianIncome,
		&z.MedianAge, &z.PovertyRate, &z.RenterPct, &z.Year, &z.LoadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sites.ZipDemographics{}, sites.ErrNotFound
		}
		return sites.ZipDemographics{}, fmt.Errorf("get zip: %w", err)
	}
	return z, nil
}
