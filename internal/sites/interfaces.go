package sites

import (
	"context"
	"errors"
)

// ErrNotFound is returned by store lookups when no row matches.
var ErrNotFound = errors.New("not found")

// Insert methods on signal stores return inserted=false when the natural
// key already existed and the row was skipped (conflict-ignore policy).

// CandidateStore persists site candidates.
type CandidateStore interface {
	Create(ctx context.Context, c SiteCandidate) error
	Get(ctx context.Context, id string) (SiteCandidate, error)
	List(ctx context.Context, f CandidateFilter) ([]SiteCandidate, error)
	SetScore(ctx context.Context, id string, finalScore float64, status CandidateStatus) error
}

// ParcelStore persists parcel analyses, one per candidate.
type ParcelStore interface {
	Insert(ctx context.Context, p Parcel) (bool, error)
	GetByCandidate(ctx context.Context, candidateID string) (Parcel, error)
}

// CountyStore persists county reference data (merge on conflict).
type CountyStore interface {
	Upsert(ctx context.Context, c County) error
	Get(ctx context.Context, name, state string) (County, error)
	List(ctx context.Context, state string) ([]County, error)
}

// SaturationStore persists market-saturation analyses (merge on conflict).
type SaturationStore interface {
	Upsert(ctx context.Context, s Saturation) error
	GetByCandidate(ctx context.Context, candidateID string) (Saturation, error)
}

// ScoreStore persists score rollups (merge on conflict).
type ScoreStore interface {
	Upsert(ctx context.Context, sc ScoreCard) error
	GetByCandidate(ctx context.Context, candidateID string) (ScoreCard, error)
}

// ZipStore persists ZIP-level demographics.
type ZipStore interface {
	Insert(ctx context.Context, z ZipDemographics) (bool, error)
	Get(ctx context.Context, zip string) (ZipDemographics, error)
}

// EmploymentStore persists QCEW county aggregates.
type EmploymentStore interface {
	Insert(ctx context.Context, r EmploymentRecord) (bool, error)
}

// LogisticsStore persists classified logistics facilities.
type LogisticsStore interface {
	Insert(ctx context.Context, f LogisticsFacility) (bool, error)
}

// StorageFacilityStore persists existing storage competitors.
type StorageFacilityStore interface {
	Insert(ctx context.Context, f StorageFacility) (bool, error)
	CountByCounty(ctx context.Context, county, state string) (int, error)
}

// MilitaryBaseStore persists curated military installations.
type MilitaryBaseStore interface {
	Insert(ctx context.Context, b MilitaryBase) (bool, error)
}

// UniversityStore persists curated universities.
type UniversityStore interface {
	Insert(ctx context.Context, u University) (bool, error)
}

// PermitFilter narrows permit listings.
type PermitFilter struct {
	County         string
	State          string
	Classification PermitClass
	Development    string
	Limit          int
}

// PermitStore persists parsed building permits.
type PermitStore interface {
	Insert(ctx context.Context, p Permit) (bool, error)
	List(ctx context.Context, f PermitFilter) ([]Permit, error)
}

// SignalStore reads flattened map pins across the signal tables.
type SignalStore interface {
	ListPins(ctx context.Context, kind SignalKind, state string) ([]SignalPin, error)
}
