package qcew

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/sites"
	"github.com/stordev/sitescout/internal/source/curated"
)

// Loader fetches the annual employment aggregate for each county and
// appends it to employment_data. Counties without a qualifying row are
// skipped without error.
type Loader struct {
	client     *Client
	employment sites.EmploymentStore
	clock      clockwork.Clock
	logger     *zap.Logger
}

// NewLoader returns a QCEW loader. A nil clock means wall time.
func NewLoader(client *Client, employment sites.EmploymentStore, clock clockwork.Clock, logger *zap.Logger) *Loader {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{client: client, employment: employment, clock: clock, logger: logger}
}

// Run loads one year of aggregates for every county.
func (l *Loader) Run(ctx context.Context, rec *etl.Recorder, seats []curated.CountySeat, year int) error {
	for _, seat := range seats {
		if err := ctx.Err(); err != nil {
			return err
		}

		agg, raw, err := l.client.CountyAnnual(ctx, year, seat.FIPS)
		rec.CountFetch(len(raw), err)
		if len(raw) > 0 {
			rec.ArchiveRaw(ctx, fmt.Sprintf("qcew-%s-%d.csv", seat.FIPS, year), "text/csv", raw)
		}
		if err != nil {
			rec.RecordFailure("qcew fetch failed", err, zap.String("county", seat.County), zap.String("fips", seat.FIPS))
			continue
		}
		if agg == nil {
			l.logger.Info("no all-industry aggregate for county",
				zap.String("county", seat.County),
				zap.String("fips", seat.FIPS),
				zap.Int("year", year),
			)
			continue
		}

		inserted, err := l.employment.Insert(ctx, sites.EmploymentRecord{
			CountyFIPS:     seat.FIPS,
			CountyName:     seat.County,
			State:          seat.State,
			Year:           year,
			Establishments: agg.Establishments,
			Employment:     agg.Employment,
			TotalWages:     agg.TotalWages,
			AvgWeeklyWage:  agg.AvgWeeklyWage,
			LoadedAt:       l.clock.Now().UTC(),
		})
		if err != nil {
			rec.RecordFailure("insert employment record", err, zap.String("fips", seat.FIPS))
			continue
		}
		rec.CountRow("employment_data", inserted)
	}
	return nil
}
