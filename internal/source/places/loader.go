package places

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/config"
	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/sites"
	"github.com/stordev/sitescout/internal/source/curated"
)

// Loader canvasses county seats: one logistics pass classifying results
// into logistics_facilities, then one self-storage pass feeding the
// saturation supply side. Failures on one county or record are logged and
// counted, never fatal.
type Loader struct {
	client    *Client
	logistics sites.LogisticsStore
	storage   sites.StorageFacilityStore
	cfg       config.PlacesConfig
	clock     clockwork.Clock
	logger    *zap.Logger
}

// LoaderConfig wires the Places loader.
type LoaderConfig struct {
	Client    *Client
	Logistics sites.LogisticsStore
	Storage   sites.StorageFacilityStore
	Places    config.PlacesConfig
	Clock     clockwork.Clock
	Logger    *zap.Logger
}

// NewLoader returns a Places loader. A nil clock means wall time.
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Loader{
		client:    cfg.Client,
		logistics: cfg.Logistics,
		storage:   cfg.Storage,
		cfg:       cfg.Places,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
	}
}

// Run canvasses every county seat. fetchDetails enables the place-details
// enrichment pass on logistics results.
func (l *Loader) Run(ctx context.Context, rec *etl.Recorder, seats []curated.CountySeat, fetchDetails bool) error {
	for _, seat := range seats {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.loadLogistics(ctx, rec, seat, fetchDetails)
		l.loadStorage(ctx, rec, seat)
	}
	return nil
}

func (l *Loader) loadLogistics(ctx context.Context, rec *etl.Recorder, seat curated.CountySeat, fetchDetails bool) {
	results, raw, err := l.client.NearbySearch(ctx, seat.Lat, seat.Lng, l.cfg.RadiusMeters, l.cfg.Keyword)
	rec.CountFetch(len(raw), err)
	if len(raw) > 0 {
		rec.ArchiveRaw(ctx, archiveName("logistics", seat), "application/json", raw)
	}
	if err != nil {
		rec.RecordFailure("nearby search failed", err, zap.String("county", seat.County))
		return
	}

	now := l.clock.Now().UTC()
	for _, p := range results {
		company, category := Classify(p.Name)
		f := sites.LogisticsFacility{
			PlaceID:  p.PlaceID,
			Name:     p.Name,
			Company:  company,
			Category: category,
			Address:  p.Address,
			County:   seat.County,
			State:    seat.State,
			Lat:      p.Lat,
			Lng:      p.Lng,
			LoadedAt: now,
		}

		if fetchDetails {
			l.enrich(ctx, rec, &f)
		}

		inserted, err := l.logistics.Insert(ctx, f)
		if err != nil {
			rec.RecordFailure("insert logistics facility", err, zap.String("place_id", p.PlaceID))
			continue
		}
		rec.CountRow("logistics_facilities", inserted)
	}
}

func (l *Loader) loadStorage(ctx context.Context, rec *etl.Recorder, seat curated.CountySeat) {
	results, raw, err := l.client.NearbySearch(ctx, seat.Lat, seat.Lng, l.cfg.RadiusMeters, l.cfg.StorageKeyword)
	rec.CountFetch(len(raw), err)
	if len(raw) > 0 {
		rec.ArchiveRaw(ctx, archiveName("storage", seat), "application/json", raw)
	}
	if err != nil {
		rec.RecordFailure("storage search failed", err, zap.String("county", seat.County))
		return
	}

	now := l.clock.Now().UTC()
	for _, p := range results {
		inserted, err := l.storage.Insert(ctx, sites.StorageFacility{
			PlaceID:      p.PlaceID,
			Name:         p.Name,
			Address:      p.Address,
			County:       seat.County,
			State:        seat.State,
			Zip:          zipFromAddress(p.Address),
			Lat:          p.Lat,
			Lng:          p.Lng,
			Rating:       p.Rating,
			RatingsTotal: p.RatingsTotal,
			LoadedAt:     now,
		})
		if err != nil {
			rec.RecordFailure("insert storage facility", err, zap.String("place_id", p.PlaceID))
			continue
		}
		rec.CountRow("storage_facilities", inserted)
	}
}

// enrich replaces the vicinity address with the formatted one from a
// details lookup. A failed lookup leaves the base record intact.
func (l *Loader) enrich(ctx context.Context, rec *etl.Recorder, f *sites.LogisticsFacility) {
	details, raw, err := l.client.PlaceDetails(ctx, f.PlaceID)
	rec.CountFetch(len(raw), err)
	if err != nil {
		rec.RecordFailure("place details failed", err, zap.String("place_id", f.PlaceID))
		return
	}
	if details.FormattedAddress != "" {
		f.Address = details.FormattedAddress
		f.Zip = zipFromAddress(details.FormattedAddress)
	}
}

var zipRe = regexp.MustCompile(`\b(\d{5})(?:-\d{4})?\b`)

// zipFromAddress pulls the last five-digit ZIP out of an address string,
// or "" when none is present.
func zipFromAddress(addr string) string {
	matches := zipRe.FindAllStringSubmatch(addr, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1]
}

func archiveName(pass string, seat curated.CountySeat) string {
	county := strings.ToLower(strings.ReplaceAll(seat.County, " ", "-"))
	return fmt.Sprintf("%s-%s-%s.json", pass, county, strings.ToLower(seat.State))
}
