package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stordev/sitescout/internal/sites"
)

// CountyStore persists county reference data. Counties are refreshed in
// place: conflicts merge the new difficulty ratings over the old row.
type CountyStore struct {
	db DB
}

// NewCountyStore creates a CountyStore over the given pool.
func NewCountyStore(db DB) *CountyStore {
	return &CountyStore{db: db}
}

// Upsert inserts or refreshes one county keyed by (name, state).
func (s *CountyStore) Upsert(ctx context.Context, c sites.County) error {
	query := `
		INSERT INTO counties (
			name, state, zoning_difficulty, permitting_speed,
			stormwater_difficulty, overall_difficulty, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (name, state) DO UPDATE SET
			zoning_difficulty = EXCLUDED.zoning_difficulty,
			permitting_speed = EXCLUDED.permitting_speed,
			stormwater_difficulty = EXCLUDED.stormwater_difficulty,
			overall_difficulty = EXCLUDED.overall_difficulty,
			updated_at = EXCLUDED.updated_at`
	_, err := s.db.Exec(ctx, query,
		c.Name, c.State, c.ZoningDifficulty, c.PermittingSpeed,
		c.StormwaterDifficulty, c.OverallDifficulty, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert county: %w", err)
	}
	return nil
}

// Get returns one county by (name, state).
func (s *CountyStore) Get(ctx context.Context, name, state string) (sites.County, error) {
	query := `
		SELECT name, state, zoning_difficulty, permitting_speed,
			stormwater_difficulty, overall_difficulty, updated_at
		FROM counties WHERE name = $1 AND state = $2`
	var c sites.County
	err := s.db.QueryRow(ctx, query, name, state).Scan(
		&c.Name, &c.State, &c.ZoningDifficulty, &c.PermittingSpeed,
		&c.StormwaterDifficulty, &c.OverallDifficulty, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sites.County{}, sites.ErrNotFound
		}
		return sites.County{}, fmt.Errorf("get county: %w", err)
	}
	return c, nil
}

// List returns counties, optionally restricted to one state.
func (s *CountyStore) List(ctx context.Context, state string) ([]sites.County, error) {
	query := `
		SELECT name, state, zoning_difficulty, permitting_speed,
			stormwater_difficulty, overall_difficulty, updated_at
		FROM counties
		WHERE ($1::text = '' OR state = $1)
		ORDER BY state, name`
	rows, err := s.db.Query(ctx, query, state)
	if err != nil {
		return nil, fmt.Errorf("list counties: %w", err)
	}
	defer rows.Close()

	var out []sites.County
	for rows.Next() {
		var c sites.County
		err := rows.Scan(
			&c.Name, &c.State, &c.ZoningDifficulty, &c.PermittingSpeed,
			&c.StormwaterDifficulty, &c.OverallDifficulty, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan county row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list counties: %w", err)
	}
	return out, nil
}
