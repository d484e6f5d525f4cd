// Package curated carries the hand-maintained datasets: expansion-market
// county seats, military installations, universities, and known
// distribution hubs. The seed loader inserts them with the same
// conflict-ignore policy as the remote sources, so re-seeding is a no-op
// for rows already present.
package curated

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/sites"
)

// CountySeat is one county to canvass: the seat's coordinates anchor the
// Places nearby searches and the FIPS code keys the QCEW fetch.
type CountySeat struct {
	County string
	State  string
	Seat   string
	FIPS   string
	Lat    float64
	Lng    float64
}

// CountySeats returns the expansion-market counties iterated by the Places
// and QCEW loaders.
func CountySeats() []CountySeat {
	return append([]CountySeat(nil), countySeats...)
}

// MilitaryBases returns the curated military installations.
func MilitaryBases() []sites.MilitaryBase {
	return append([]sites.MilitaryBase(nil), militaryBases...)
}

// Universities returns the curated universities.
func Universities() []sites.University {
	return append([]sites.University(nil), universities...)
}

// DistributionHubs returns the curated logistics hubs that predate the
// Places loader. Their place ids carry a curated: prefix so they never
// collide with API results.
func DistributionHubs() []sites.LogisticsFacility {
	return append([]sites.LogisticsFacility(nil), distributionHubs...)
}

// ZCTAs returns the ZIP Code Tabulation Areas the ACS loader fetches when
// no explicit list is given.
func ZCTAs() []string {
	return append([]string(nil), zctas...)
}

// Loader seeds the curated datasets into their signal tables.
type Loader struct {
	military     sites.MilitaryBaseStore
	universities sites.UniversityStore
	logistics    sites.LogisticsStore
	clock        clockwork.Clock
	logger       *zap.Logger
}

// NewLoader returns a seed loader. A nil clock means wall time.
func NewLoader(military sites.MilitaryBaseStore, universities sites.UniversityStore, logistics sites.LogisticsStore, clock clockwork.Clock, logger *zap.Logger) *Loader {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		military:     military,
		universities: universities,
		logistics:    logistics,
		clock:        clock,
		logger:       logger,
	}
}

// Run inserts every curated row, counting inserts and skips on rec.
func (l *Loader) Run(ctx context.Context, rec *etl.Recorder) error {
	now := l.clock.Now().UTC()

	for _, b := range MilitaryBases() {
		b.LoadedAt = now
		inserted, err := l.military.Insert(ctx, b)
		if err != nil {
			rec.RecordFailure("insert military base", err, zap.String("name", b.Name))
			continue
		}
		rec.CountRow("military_bases", inserted)
	}

	for _, u := range Universities() {
		u.LoadedAt = now
		inserted, err := l.universities.Insert(ctx, u)
		if err != nil {
			rec.RecordFailure("insert university", err, zap.String("name", u.Name))
			continue
		}
		rec.CountRow("universities", inserted)
	}

	for _, f := range DistributionHubs() {
		f.LoadedAt = now
		inserted, err := l.logistics.Insert(ctx, f)
		if err != nil {
			rec.RecordFailure("insert distribution hub", err, zap.String("place_id", f.PlaceID))
			continue
		}
		rec.CountRow("logistics_facilities", inserted)
	}

	return ctx.Err()
}
