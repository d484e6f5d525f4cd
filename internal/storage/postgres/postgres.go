// Package postgres implements every store interface of the toolkit on a
// shared pgx connection pool.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the stores rely on. pgxmock satisfies
// it, so the stores are testable without a live database.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Stores bundles one of each store over a single pool.
type Stores struct {
	Candidates   *CandidateStore
	Parcels      *ParcelStore
	Counties     *CountyStore
	Saturation   *SaturationStore
	Scores       *ScoreStore
	Zips         *ZipStore
	Employment   *EmploymentStore
	Logistics    *LogisticsStore
	StorageFacs  *StorageFacilityStore
	Military     *MilitaryBaseStore
	Universities *UniversityStore
	Permits      *PermitStore
	Signals      *SignalStore
	Runs         *RunStore
}

// NewStores wires every store to the given pool.
func NewStores(db DB) *Stores {
	return &Stores{
		Candidates:   NewCandidateStore(db),
		Parcels:      NewParcelStore(db),
		Counties:     NewCountyStore(db),
		Saturation:   NewSaturationStore(db),
		Scores:       NewScoreStore(db),
		Zips:         NewZipStore(db),
		Employment:   NewEmploymentStore(db),
		Logistics:    NewLogisticsStore(db),
		StorageFacs:  NewStorageFacilityStore(db),
		Military:     NewMilitaryBaseStore(db),
		Universities: NewUniversityStore(db),
		Permits:      NewPermitStore(db),
		Signals:      NewSignalStore(db),
		Runs:         NewRunStore(db),
	}
}
