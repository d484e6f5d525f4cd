package pipeline

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/sites"
)

// Scorer rolls the stored sub-scores into a final score per candidate:
// parcel score, county difficulty, saturation score, and a financial
// score computed here from asking price against the cost ceiling. A
// candidate missing any input is skipped with a logged reason, never
// failed. Scoring is deterministic for fixed inputs and weights.
type Scorer struct {
	candidates sites.CandidateStore
	parcels    sites.ParcelStore
	counties   sites.CountyStore
	saturation sites.SaturationStore
	scores     sites.ScoreStore

	weights        sites.Weights
	maxCostPerAcre float64
	clock          clockwork.Clock
	logger         *zap.Logger
}

// ScorerConfig wires the scoring stage.
type ScorerConfig struct {
	Candidates     sites.CandidateStore
	Parcels        sites.ParcelStore
	Counties       sites.CountyStore
	Saturation     sites.SaturationStore
	Scores         sites.ScoreStore
	Weights        sites.Weights
	MaxCostPerAcre float64
	Clock          clockwork.Clock
	Logger         *zap.Logger
}

// NewScorer returns a scoring stage. A nil clock means wall time.
func NewScorer(cfg ScorerConfig) *Scorer {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Scorer{
		candidates:     cfg.Candidates,
		parcels:        cfg.Parcels,
		counties:       cfg.Counties,
		saturation:     cfg.Saturation,
		scores:         cfg.Scores,
		weights:        cfg.Weights,
		maxCostPerAcre: cfg.MaxCostPerAcre,
		clock:          cfg.Clock,
		logger:         cfg.Logger,
	}
}

// Run scores every candidate, optionally restricted to one state.
// Pending candidates advance to scored; reviewed candidates keep their
// status when re-scored.
func (s *Scorer) Run(ctx context.Context, rec *etl.Recorder, state string) error {
	candidates, err := listAllCandidates(ctx, s.candidates, state)
	if err != nil {
		return err
	}

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.scoreCandidate(ctx, rec, c)
	}
	return nil
}

func (s *Scorer) scoreCandidate(ctx context.Context, rec *etl.Recorder, c sites.SiteCandidate) {
	parcel, ok := s.lookupParcel(ctx, rec, c)
	if !ok {
		return
	}
	county, ok := s.lookupCounty(ctx, rec, c)
	if !ok {
		return
	}
	sat, ok := s.lookupSaturation(ctx, rec, c)
	if !ok {
		return
	}
	financial, ok := sites.FinancialScore(c.AskingPrice, c.Acreage, s.maxCostPerAcre)
	if !ok {
		s.skip(rec, c, "no asking price or acreage on record")
		return
	}

	card := sites.ScoreCard{
		CandidateID:      c.ID,
		ParcelScore:      parcel.Score,
		CountyDifficulty: county.OverallDifficulty,
		FinancialScore:   financial,
		SaturationScore:  sat.Score,
		FinalScore:       s.weights.FinalScore(parcel.Score, county.OverallDifficulty, financial, sat.Score),
		ComputedAt:       s.clock.Now().UTC(),
	}
	if err := s.scores.Upsert(ctx, card); err != nil {
		rec.RecordFailure("upsert score card", err, zap.String("candidate_id", c.ID))
		return
	}

	status := c.Status
	if status == sites.StatusPending {
		status = sites.StatusScored
	}
	if err := s.candidates.SetScore(ctx, c.ID, card.FinalScore, status); err != nil {
		rec.RecordFailure("set candidate score", err, zap.String("candidate_id", c.ID))
		return
	}
	rec.CountRow("site_scores", true)
}

func (s *Scorer) lookupParcel(ctx context.Context, rec *etl.Recorder, c sites.SiteCandidate) (sites.Parcel, bool) {
	parcel, err := s.parcels.GetByCandidate(ctx, c.ID)
	switch {
	case err == nil:
		return parcel, true
	case errors.Is(err, sites.ErrNotFound):
		s.skip(rec, c, "no parcel analysis")
	default:
		rec.RecordFailure("load parcel", err, zap.String("candidate_id", c.ID))
	}
	return sites.Parcel{}, false
}

func (s *Scorer) lookupCounty(ctx context.Context, rec *etl.Recorder, c sites.SiteCandidate) (sites.County, bool) {
	county, err := s.counties.Get(ctx, c.County, c.State)
	switch {
	case err == nil:
		return county, true
	case errors.Is(err, sites.ErrNotFound):
		s.skip(rec, c, "county difficulty not rated")
	default:
		rec.RecordFailure("load county", err, zap.String("candidate_id", c.ID), zap.String("county", c.County))
	}
	return sites.County{}, false
}

func (s *Scorer) lookupSaturation(ctx context.Context, rec *etl.Recorder, c sites.SiteCandidate) (sites.Saturation, bool) {
	sat, err := s.saturation.GetByCandidate(ctx, c.ID)
	switch {
	case err == nil:
		return sat, true
	case errors.Is(err, sites.ErrNotFound):
		s.skip(rec, c, "no saturation analysis")
	default:
		rec.RecordFailure("load saturation", err, zap.String("candidate_id", c.ID))
	}
	return sites.Saturation{}, false
}

// skip counts an incomplete candidate as skipped so the run summary
// separates them from real failures.
func (s *Scorer) skip(rec *etl.Recorder, c sites.SiteCandidate, reason string) {
	s.logger.Info("candidate skipped: "+reason,
		zap.String("candidate_id", c.ID),
		zap.String("address", c.Address),
	)
	rec.CountRow("site_scores", false)
}
