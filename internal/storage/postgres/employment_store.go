package postgres

import (
	"context"
	"fmt"

	"github.com/stordev/sitescout/internal/sites"
)

// EmploymentStore persists QCEW county aggregates, append-only by
// (county_fips, year).
type EmploymentStore struct {
	db DB
}

// NewEmploymentStore creates an EmploymentStore over the given pool.
func NewEmploymentStore(db DB) *EmploymentStore {
	return &EmploymentStore{db: db}
}

// Insert writes one county-year row. Returns false when the row already
// existed.
func (s *EmploymentStore) Insert(ctx context.Context, r sites.EmploymentRecord) (bool, error) {
	query := `
		INSERT INTO employment_data (
			county_fips, county_name, state, year, establishments,
			employment, total_wages, avg_weekly_wage, loaded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (county_fips, year) DO NOTHING`
	tag, err := s.db.Exec(ctx, query,
		r.CountyFIPS, r.CountyName, r.State, r.Year, r.Establishments,
		r.Employment, r.TotalWages, r.AvgWeeklyWage, r.LoadedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert employment record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
