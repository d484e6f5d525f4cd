package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/sites"
)

// CSV headers for the three operator import files. Column order is free;
// the importer locates columns by name.
const (
	colAddress      = "address"
	colCity         = "city"
	colCounty       = "county"
	colState        = "state"
	colZip          = "zip"
	colAcreage      = "acreage"
	colAskingPrice  = "asking_price"
	colTrafficCount = "traffic_count"
	colPopulation   = "population"
	colHouseholds   = "households"

	colCandidateID = "candidate_id"
	colShapeScore  = "shape_score"
	colSlopeScore  = "slope_score"
	colAccessScore = "access_score"
	colFloodplain  = "floodplain"
	colSoilQuality = "soil_quality"
	colHasRock     = "has_rock"
	colViable      = "viable"

	colName        = "name"
	colZoning      = "zoning_difficulty"
	colPermitSpeed = "permitting_speed"
	colStormwater  = "stormwater_difficulty"
)

// Importer loads operator-entered CSV files: new candidates, parcel
// walk-through assessments, and county difficulty ratings. Row failures
// are logged and counted; a malformed header aborts the import.
type Importer struct {
	candidates sites.CandidateStore
	parcels    sites.ParcelStore
	counties   sites.CountyStore
	ids        etl.IDGenerator
	clock      clockwork.Clock
	logger     *zap.Logger
}

// NewImporter returns a CSV importer. A nil clock means wall time.
func NewImporter(candidates sites.CandidateStore, parcels sites.ParcelStore, counties sites.CountyStore, ids etl.IDGenerator, clock clockwork.Clock, logger *zap.Logger) *Importer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		candidates: candidates,
		parcels:    parcels,
		counties:   counties,
		ids:        ids,
		clock:      clock,
		logger:     logger,
	}
}

// ImportCandidates creates one pending candidate per CSV row.
func (im *Importer) ImportCandidates(ctx context.Context, rec *etl.Recorder, r io.Reader) error {
	rows, err := newCSVRows(r,
		colAddress, colCounty, colState, colZip, colAcreage)
	if err != nil {
		return err
	}

	for {
		row, err := rows.next()
		if errors.Is(err, io.EOF) {
			return ctx.Err()
		}
		if err != nil {
			rec.RecordFailure("unreadable candidate row", err, zap.Int("line", rows.line))
			continue
		}

		c := sites.SiteCandidate{
			Address: row.get(colAddress),
			City:    row.get(colCity),
			County:  row.get(colCounty),
			State:   row.get(colState),
			Zip:     row.get(colZip),
			Status:  sites.StatusPending,
		}
		if c.Address == "" || c.County == "" || c.State == "" {
			rec.RecordFailure("candidate row missing address, county, or state", nil, zap.Int("line", rows.line))
			continue
		}
		if c.Acreage, err = row.getFloat(colAcreage); err != nil {
			rec.RecordFailure("bad candidate acreage", err, zap.Int("line", rows.line))
			continue
		}
		if c.AskingPrice, err = row.getFloat(colAskingPrice); err != nil {
			rec.RecordFailure("bad candidate asking price", err, zap.Int("line", rows.line))
			continue
		}
		if c.TrafficCount, err = row.getInt(colTrafficCount); err != nil {
			rec.RecordFailure("bad candidate traffic count", err, zap.Int("line", rows.line))
			continue
		}
		if c.Population, err = row.getInt(colPopulation); err != nil {
			rec.RecordFailure("bad candidate population", err, zap.Int("line", rows.line))
			continue
		}
		if c.Households, err = row.getInt(colHouseholds); err != nil {
			rec.RecordFailure("bad candidate households", err, zap.Int("line", rows.line))
			continue
		}

		if c.ID, err = im.ids.NewID(); err != nil {
			return fmt.Errorf("new candidate id: %w", err)
		}
		now := im.clock.Now().UTC()
		c.CreatedAt = now
		c.UpdatedAt = now

		if err := im.candidates.Create(ctx, c); err != nil {
			rec.RecordFailure("create candidate", err, zap.String("address", c.Address))
			continue
		}
		rec.CountRow("site_candidates", true)
	}
}

// ImportParcels inserts one parcel assessment per CSV row. The parcel
// sub-score is derived here from the assessed attributes; rows naming an
// unknown candidate are failures, duplicate parcels are skips.
func (im *Importer) ImportParcels(ctx context.Context, rec *etl.Recorder, r io.Reader) error {
	rows, err := newCSVRows(r,
		colCandidateID, colShapeScore, colSlopeScore, colAccessScore, colViable)
	if err != nil {
		return err
	}

	for {
		row, err := rows.next()
		if errors.Is(err, io.EOF) {
			return ctx.Err()
		}
		if err != nil {
			rec.RecordFailure("unreadable parcel row", err, zap.Int("line", rows.line))
			continue
		}

		p := sites.Parcel{
			CandidateID: row.get(colCandidateID),
			SoilQuality: row.get(colSoilQuality),
		}
		if p.ShapeScore, err = row.getFloat(colShapeScore); err != nil {
			rec.RecordFailure("bad parcel shape score", err, zap.Int("line", rows.line))
			continue
		}
		if p.SlopeScore, err = row.getFloat(colSlopeScore); err != nil {
			rec.RecordFailure("bad parcel slope score", err, zap.Int("line", rows.line))
			continue
		}
		if p.AccessScore, err = row.getFloat(colAccessScore); err != nil {
			rec.RecordFailure("bad parcel access score", err, zap.Int("line", rows.line))
			continue
		}
		if p.Floodplain, err = row.getBool(colFloodplain); err != nil {
			rec.RecordFailure("bad parcel floodplain flag", err, zap.Int("line", rows.line))
			continue
		}
		if p.HasRock, err = row.getBool(colHasRock); err != nil {
			rec.RecordFailure("bad parcel rock flag", err, zap.Int("line", rows.line))
			continue
		}
		if p.Viable, err = row.getBool(colViable); err != nil {
			rec.RecordFailure("bad parcel viable flag", err, zap.Int("line", rows.line))
			continue
		}

		if _, err := im.candidates.Get(ctx, p.CandidateID); err != nil {
			rec.RecordFailure("parcel names unknown candidate", err, zap.String("candidate_id", p.CandidateID))
			continue
		}

		p.Score = p.ComputeScore()
		p.CreatedAt = im.clock.Now().UTC()

		inserted, err := im.parcels.Insert(ctx, p)
		if err != nil {
			rec.RecordFailure("insert parcel", err, zap.String("candidate_id", p.CandidateID))
			continue
		}
		rec.CountRow("parcels", inserted)
	}
}

// ImportCounties merges one county difficulty rating per CSV row. The
// overall difficulty is derived from the three rated axes.
func (im *Importer) ImportCounties(ctx context.Context, rec *etl.Recorder, r io.Reader) error {
	rows, err := newCSVRows(r,
		colName, colState, colZoning, colPermitSpeed, colStormwater)
	if err != nil {
		return err
	}

	for {
		row, err := rows.next()
		if errors.Is(err, io.EOF) {
			return ctx.Err()
		}
		if err != nil {
			rec.RecordFailure("unreadable county row", err, zap.Int("line", rows.line))
			continue
		}

		c := sites.County{
			Name:  row.get(colName),
			State: row.get(colState),
		}
		if c.Name == "" || c.State == "" {
			rec.RecordFailure("county row missing name or state", nil, zap.Int("line", rows.line))
			continue
		}
		if c.ZoningDifficulty, err = row.getFloat(colZoning); err != nil {
			rec.RecordFailure("bad county zoning difficulty", err, zap.Int("line", rows.line))
			continue
		}
		if c.PermittingSpeed, err = row.getFloat(colPermitSpeed); err != nil {
			rec.RecordFailure("bad county permitting speed", err, zap.Int("line", rows.line))
			continue
		}
		if c.StormwaterDifficulty, err = row.getFloat(colStormwater); err != nil {
			rec.RecordFailure("bad county stormwater difficulty", err, zap.Int("line", rows.line))
			continue
		}

		c.OverallDifficulty = c.ComputeOverallDifficulty()
		c.UpdatedAt = im.clock.Now().UTC()

		if err := im.counties.Upsert(ctx, c); err != nil {
			rec.RecordFailure("upsert county", err, zap.String("county", c.Name), zap.String("state", c.State))
			continue
		}
		rec.CountRow("counties", true)
	}
}

// csvRows reads one header-addressed CSV record at a time.
type csvRows struct {
	reader *csv.Reader
	idx    map[string]int
	line   int
}

// newCSVRows reads the header and checks the required columns are present.
func newCSVRows(r io.Reader, required ...string) (*csvRows, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("csv header missing required column %q", name)
		}
	}
	return &csvRows{reader: reader, idx: idx, line: 1}, nil
}

func (r *csvRows) next() (csvRow, error) {
	r.line++
	record, err := r.reader.Read()
	if err != nil {
		return csvRow{}, err
	}
	return csvRow{idx: r.idx, record: record}, nil
}

type csvRow struct {
	idx    map[string]int
	record []string
}

func (r csvRow) get(name string) string {
	i, ok := r.idx[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// getFloat parses an optional numeric field; empty means zero.
func (r csvRow) getFloat(name string) (float64, error) {
	s := r.get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", name, s, err)
	}
	return v, nil
}

func (r csvRow) getInt(name string) (int, error) {
	s := r.get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", name, s, err)
	}
	return v, nil
}

// getBool parses an optional flag field; empty means false.
func (r csvRow) getBool(name string) (bool, error) {
	s := r.get(name)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return false, fmt.Errorf("parse %s %q: %w", name, s, err)
	}
	return v, nil
}
