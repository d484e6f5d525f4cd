package pipeline

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/sites"
)

// Saturator sizes each candidate's market: demand from the candidate's
// population, supply from the storage facilities counted in its county.
// The analysis is recomputable, so results merge on re-run.
type Saturator struct {
	candidates sites.CandidateStore
	facilities sites.StorageFacilityStore
	saturation sites.SaturationStore
	factors    sites.SaturationFactors
	clock      clockwork.Clock
	logger     *zap.Logger
}

// NewSaturator returns a saturation stage. A nil clock means wall time.
func NewSaturator(candidates sites.CandidateStore, facilities sites.StorageFacilityStore, saturation sites.SaturationStore, factors sites.SaturationFactors, clock clockwork.Clock, logger *zap.Logger) *Saturator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Saturator{
		candidates: candidates,
		facilities: facilities,
		saturation: saturation,
		factors:    factors,
		clock:      clock,
		logger:     logger,
	}
}

// Run computes saturation for every candidate, optionally restricted to
// one state. A candidate with no recorded population still gets a row;
// its market reads as unknown with a zero score.
func (s *Saturator) Run(ctx context.Context, rec *etl.Recorder, state string) error {
	candidates, err := listAllCandidates(ctx, s.candidates, state)
	if err != nil {
		return err
	}

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}

		count, err := s.facilities.CountByCounty(ctx, c.County, c.State)
		if err != nil {
			rec.RecordFailure("count storage facilities", err,
				zap.String("candidate_id", c.ID), zap.String("county", c.County))
			continue
		}

		sat := sites.ComputeSaturation(c.Population, count, s.factors)
		sat.CandidateID = c.ID
		sat.ComputedAt = s.clock.Now().UTC()

		if err := s.saturation.Upsert(ctx, sat); err != nil {
			rec.RecordFailure("upsert saturation", err, zap.String("candidate_id", c.ID))
			continue
		}
		rec.CountRow("saturation", true)

		if sat.MarketStatus == "unknown" {
			s.logger.Info("candidate has no population on record; market unknown",
				zap.String("candidate_id", c.ID), zap.String("county", c.County))
		}
	}
	return nil
}
