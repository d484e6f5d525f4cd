package postgres

import (
	"context"
	"fmt"

	"github.com/stordev/sitescout/internal/sites"
)

// LogisticsStore persists classified logistics facilities keyed by
// Places place_id.
type LogisticsStore struct {
	db DB
}

// NewLogisticsStore creates a LogisticsStore over the given pool.
func NewLogisticsStore(db DB) *LogisticsStore {
	return &LogisticsStore{db: db}
}

// Insert writes one facility. Returns false when the place_id already
// existed.
func (s *LogisticsStore) Insert(ctx context.Context, f sites.LogisticsFacility) (bool, error) {
	query := `
		INSERT INTO logistics_facilities (
			place_id, name, company, category, address,
			county, state, zip, lat, lng, loaded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (place_id) DO NOTHING`
	tag, err := s.db.Exec(ctx, query,
		f.PlaceID, f.Name, f.Company, f.Category, f.Address,
		f.County, f.State, f.Zip, f.Lat, f.Lng, f.LoadedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert logistics facility: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// StorageFacilityStore persists existing self-storage competitors.
type StorageFacilityStore struct {
	db DB
}

// NewStorageFacilityStore creates a StorageFacilityStore over the given pool.
func NewStorageFacilityStore(db DB) *StorageFacilityStore {
	return &StorageFacilityStore{db: db}
}

// Insert writes one competitor. Returns false when the place_id already
// existed.
func (s *StorageFacilityStore) Insert(ctx context.Context, f sites.StorageFacility) (bool, error) {
	query := `
		INSERT INTO storage_facilities (
			place_id, name, address, county, state, zip,
			lat, lng, rating, ratings_total, loaded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (place_id) DO NOTHING`
	tag, err := s.db.Exec(ctx, query,
		f.PlaceID, f.Name, f.Address, f.County, f.State, f.Zip,
		f.Lat, f.Lng, f.Rating, f.RatingsTotal, f.LoadedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert storage facility: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountByCounty returns how many competitors are on file for a county.
// The saturation analysis turns this into existing square footage.
func (s *StorageFacilityStore) CountByCounty(ctx context.Context, county, state string) (int, error) {
	query := `SELECT count(*) FROM storage_facilities WHERE county = $1 AND state = $2`
	var n int
	if err := s.db.QueryRow(ctx, query, county, state).Scan(&n); err != nil {
		return 0, fmt.Errorf("count storage facilities: %w", err)
	}
	return n, nil
}

// MilitaryBaseStore persists curated military installations keyed by
// (name, state).
type MilitaryBaseStore struct {
	db DB
}

// NewMilitaryBaseStore creates a MilitaryBaseStore over the given pool.
func NewMilitaryBaseStore(db DB) *MilitaryBaseStore {
	return &MilitaryBaseStore{db: db}
}

// Insert writes one installation. Returns false when it already existed.
func (s *MilitaryBaseStore) Insert(ctx context.Context, b sites.MilitaryBase) (bool, error) {
	query := `
		INSERT INTO military_bases (
			name, branch, county, state, personnel, lat, lng, loaded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (name, state) DO NOTHING`
	tag, err := s.db.Exec(ctx, query,
		b.Name, b.Branch, b.County, b.State, b.Personnel, b.Lat, b.Lng, b.LoadedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert military base: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UniversityStore persists curated universities keyed by (name, state).
type UniversityStore struct {
	db DB
}

// NewUniversityStore creates a UniversityStore over the given pool.
func NewUniversityStore(db DB) *UniversityStore {
	return &UniversityStore{db: db}
}

// Insert writes one university. Returns false when it already existed.
func (s *UniversityStore) Insert(ctx context.Context, u sites.University) (bool, error) {
	query := `
		INSERT INTO universities (
			name, county, state, enrollment, lat, lng, loaded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (name, state) DO NOTHING`
	tag, err := s.db.Exec(ctx, query,
		u.Name, u.County, u.State, u.Enrollment, u.Lat, u.Lng, u.LoadedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert university: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SignalStore reads flattened map pins across the signal tables.
type SignalStore struct {
	db DB
}

// NewSignalStore creates a SignalStore over the given pool.
func NewSignalStore(db DB) *SignalStore {
	return &SignalStore{db: db}
}

// Each query returns key, name, county, state, lat, lng in that order.
var signalQueries = map[sites.SignalKind]string{
	sites.SignalLogistics: `
		SELECT place_id, name, county, state, lat, lng
		FROM logistics_facilities
		WHERE ($1::text = '' OR state = $1)
		ORDER BY name`,
	sites.SignalStorage: `
		SELECT place_id, name, county, state, lat, lng
		FROM storage_facilities
		WHERE ($1::text = '' OR state = $1)
		ORDER BY name`,
	sites.SignalMilitary: `
		SELECT name, name, county, state, lat, lng
		FROM military_bases
		WHERE ($1::text = '' OR state = $1)
		ORDER BY name`,
	sites.SignalUniversity: `
		SELECT name, name, county, state, lat, lng
		FROM universities
		WHERE ($1::text = '' OR state = $1)
		ORDER BY name`,
}

// ListPins returns the pins of one signal kind, optionally restricted to
// a state.
func (s *SignalStore) ListPins(ctx context.Context, kind sites.SignalKind, state string) ([]sites.SignalPin, error) {
	query, ok := signalQueries[kind]
	if !ok {
		return nil, fmt.Errorf("unknown signal kind %q", kind)
	}
	rows, err := s.db.Query(ctx, query, state)
	if err != nil {
		return nil, fmt.Errorf("list %s pins: %w", kind, err)
	}
	defer rows.Close()

	var out []sites.SignalPin
	for rows.Next() {
		pin := sites.SignalPin{Kind: kind}
		err := rows.Scan(&pin.Key, &pin.Name, &pin.County, &pin.State, &pin.Lat, &pin.Lng)
		if err != nil {
			return nil, fmt.Errorf("scan %s pin: %w", kind, err)
		}
		out = append(out, pin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s pins: %w", kind, err)
	}
	return out, nil
}
