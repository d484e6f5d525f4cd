package postgres

import (
	"context"
	"fmt"

	"github.com/stordev/sitescout/internal/sites"
)

// PermitStore persists parsed building permits keyed by permit number.
type PermitStore struct {
	db DB
}

// NewPermitStore creates a PermitStore over the given pool.
func NewPermitStore(db DB) *PermitStore {
	return &PermitStore{db: db}
}

// Insert writes one permit. Returns false when the permit number already
// existed.
func (s *PermitStore) Insert(ctx context.Context, p sites.Permit) (bool, error) {
	query := `
		INSERT INTO permits (
			permit_number, county, state, address, owner,
			declared_value, classification, development, loaded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (permit_number) DO NOTHING`
	tag, err := s.db.Exec(ctx, query,
		p.PermitNumber, p.County, p.State, p.Address, p.Owner,
		p.DeclaredValue, p.Classification, p.Development, p.LoadedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert permit: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns permits matching the filter, newest first.
func (s *PermitStore) List(ctx context.Context, f sites.PermitFilter) ([]sites.Permit, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT permit_number, county, state, address, owner,
			declared_value, classification, development, loaded_at
		FROM permits
		WHERE ($1::text = '' OR county = $1)
		  AND ($2::text = '' OR state = $2)
		  AND ($3::text = '' OR classification = $3)
		  AND ($4::text = '' OR development = $4)
		ORDER BY loaded_at DESC, permit_number
		LIMIT $5`
	rows, err := s.db.Query(ctx, query,
		f.County, f.State, string(f.Classification), f.Development, limit)
	if err != nil {
		return nil, fmt.Errorf("list permits: %w", err)
	}
	defer rows.Close()

	var out []sites.Permit
	for rows.Next() {
		var p sites.Permit
		err := rows.Scan(
			&p.PermitNumber, &p.County, &p.State, &p.Address, &p.Owner,
			&p.DeclaredValue, &p.Classification, &p.Development, &p.LoadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan permit row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list permits: %w", err)
	}
	return out, nil
}
