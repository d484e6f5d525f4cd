package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Migration is one schema change, applied exactly once in version order.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the list of all migrations in order. Append only; never
// edit an entry that has shipped.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "candidate_tables",
		SQL:     migrationV1,
	},
	{
		Version: 2,
		Name:    "market_signal_tables",
		SQL:     migrationV2,
	},
	{
		Version: 3,
		Name:    "permits_and_run_ledger",
		SQL:     migrationV3,
	},
	{
		Version: 4,
		Name:    "read_path_indexes",
		SQL:     migrationV4,
	},
}

// Migrate applies pending migrations in version order, each inside its own
// transaction, recording progress in schema_migrations.
func Migrate(ctx context.Context, db DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var currentVersion int
	err := db.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("read current schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
			m.Version, m.Name); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}

		logger.Info("applied migration",
			zap.Int("version", m.Version),
			zap.String("name", m.Name),
		)
	}

	return nil
}

const migrationV1 = `
CREATE TABLE IF NOT EXISTS site_candidates (
	id UUID PRIMARY KEY,
	address TEXT NOT NULL,
	city TEXT NOT NULL DEFAULT '',
	county TEXT NOT NULL,
	state TEXT NOT NULL,
	zip TEXT NOT NULL,
	acreage DOUBLE PRECISION NOT NULL DEFAULT 0,
	asking_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	traffic_count INTEGER NOT NULL DEFAULT 0,
	population INTEGER NOT NULL DEFAULT 0,
	households INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'pending',
	final_score DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS parcels (
	candidate_id UUID PRIMARY KEY REFERENCES site_candidates(id) ON DELETE CASCADE,
	shape_score DOUBLE PRECISION NOT NULL,
	slope_score DOUBLE PRECISION NOT NULL,
	access_score DOUBLE PRECISION NOT NULL,
	floodplain BOOLEAN NOT NULL DEFAULT FALSE,
	soil_quality TEXT NOT NULL DEFAULT '',
	has_rock BOOLEAN NOT NULL DEFAULT FALSE,
	viable BOOLEAN NOT NULL DEFAULT TRUE,
	score DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS counties (
	name TEXT NOT NULL,
	state TEXT NOT NULL,
	zoning_difficulty DOUBLE PRECISION NOT NULL DEFAULT 5,
	permitting_speed DOUBLE PRECISION NOT NULL DEFAULT 5,
	stormwater_difficulty DOUBLE PRECISION NOT NULL DEFAULT 5,
	overall_difficulty DOUBLE PRECISION NOT NULL DEFAULT 5,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (name, state)
);

CREATE TABLE IF NOT EXISTS saturation (
	candidate_id UUID PRIMARY KEY REFERENCES site_candidates(id) ON DELETE CASCADE,
	population INTEGER NOT NULL DEFAULT 0,
	required_sqft DOUBLE PRECISION NOT NULL DEFAULT 0,
	existing_sqft DOUBLE PRECISION NOT NULL DEFAULT 0,
	ratio DOUBLE PRECISION,
	score DOUBLE PRECISION NOT NULL DEFAULT 0,
	market_status TEXT NOT NULL DEFAULT '',
	computed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS site_scores (
	candidate_id UUID PRIMARY KEY REFERENCES site_candidates(id) ON DELETE CASCADE,
	parcel_score DOUBLE PRECISION NOT NULL,
	county_difficulty DOUBLE PRECISION NOT NULL,
	financial_score DOUBLE PRECISION NOT NULL,
	saturation_score DOUBLE PRECISION NOT NULL,
	final_score DOUBLE PRECISION NOT NULL,
	computed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const migrationV2 = `
CREATE TABLE IF NOT EXISTS zips_master (
	zip TEXT PRIMARY KEY,
	state TEXT NOT NULL DEFAULT '',
	population INTEGER NOT NULL DEFAULT 0,
	households INTEGER NOT NULL DEFAULT 0,
	median_income DOUBLE PRECISION,
	median_age DOUBLE PRECISION,
	poverty_rate DOUBLE PRECISION,
	renter_pct DOUBLE PRECISION,
	year INTEGER NOT NULL,
	loaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS employment_data (
	county_fips TEXT NOT NULL,
	county_name TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	year INTEGER NOT NULL,
	establishments INTEGER NOT NULL DEFAULT 0,
	employment INTEGER NOT NULL DEFAULT 0,
	total_wages BIGINT NOT NULL DEFAULT 0,
	avg_weekly_wage INTEGER NOT NULL DEFAULT 0,
	loaded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (county_fips, year)
);

CREATE TABLE IF NOT EXISTS logistics_facilities (
	place_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	company TEXT NOT NULL,
	category TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	county TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	zip TEXT NOT NULL DEFAULT '',
	lat DOUBLE PRECISION NOT NULL DEFAULT 0,
	lng DOUBLE PRECISION NOT NULL DEFAULT 0,
	loaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS storage_facilities (
	place_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	county TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	zip TEXT NOT NULL DEFAULT '',
	lat DOUBLE PRECISION NOT NULL DEFAULT 0,
	lng DOUBLE PRECISION NOT NULL DEFAULT 0,
	rating DOUBLE PRECISION,
	ratings_total INTEGER NOT NULL DEFAULT 0,
	loaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS military_bases (
	name TEXT NOT NULL,
	branch TEXT NOT NULL DEFAULT '',
	county TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL,
	personnel INTEGER NOT NULL DEFAULT 0,
	lat DOUBLE PRECISION NOT NULL DEFAULT 0,
	lng DOUBLE PRECISION NOT NULL DEFAULT 0,
	loaded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (name, state)
);

CREATE TABLE IF NOT EXISTS universities (
	name TEXT NOT NULL,
	county TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL,
	enrollment INTEGER NOT NULL DEFAULT 0,
	lat DOUBLE PRECISION NOT NULL DEFAULT 0,
	lng DOUBLE PRECISION NOT NULL DEFAULT 0,
	loaded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (name, state)
);
`

const migrationV3 = `
CREATE TABLE IF NOT EXISTS permits (
	permit_number TEXT PRIMARY KEY,
	county TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	owner TEXT NOT NULL DEFAULT '',
	declared_value DOUBLE PRECISION NOT NULL DEFAULT 0,
	classification TEXT NOT NULL,
	development TEXT NOT NULL DEFAULT '',
	loaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS source_runs (
	id UUID PRIMARY KEY,
	source TEXT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	status TEXT NOT NULL,
	fetched INTEGER NOT NULL DEFAULT 0,
	inserted INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	error_text TEXT NOT NULL DEFAULT '',
	details JSONB NOT NULL DEFAULT '{}'::jsonb
);
`

const migrationV4 = `
CREATE INDEX IF NOT EXISTS idx_site_candidates_state_county ON site_candidates (state, county);
CREATE INDEX IF NOT EXISTS idx_site_candidates_status ON site_candidates (status);
CREATE INDEX IF NOT EXISTS idx_storage_facilities_county_state ON storage_facilities (county, state);
CREATE INDEX IF NOT EXISTS idx_permits_county_state ON permits (county, state);
CREATE INDEX IF NOT EXISTS idx_permits_classification ON permits (classification);
CREATE INDEX IF NOT EXISTS idx_source_runs_source_started ON source_runs (source, started_at DESC);
`
