package pipeline_test

import (
	"context"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/stordev/sitescout/internal/pipeline"
	"github.com/stordev/sitescout/internal/sites"
)

type scorerFixture struct {
	candidates *fakeCandidateStore
	parcels    *fakeParcelStore
	counties   *fakeCountyStore
	saturation *fakeSaturationStore
	scores     *fakeScoreStore
	scorer     *pipeline.Scorer
}

// newScorerFixture seeds one fully analyzed candidate: parcel score 8,
// county difficulty 4, saturation score 9, and $450k asking on 5.2 acres
// against a $250k/acre ceiling.
func newScorerFixture() *scorerFixture {
	f := &scorerFixture{
		candidates: &fakeCandidateStore{rows: []sites.SiteCandidate{{
			ID:          "cand-1",
			Address:     "101 Jot Em Down Rd",
			County:      "Cherokee",
			State:       "GA",
			Acreage:     5.2,
			AskingPrice: 450000,
			Status:      sites.StatusPending,
		}}},
		parcels:    newFakeParcelStore(),
		counties:   newFakeCountyStore(),
		saturation: newFakeSaturationStore(),
		scores:     newFakeScoreStore(),
	}
	f.parcels.rows["cand-1"] = sites.Parcel{CandidateID: "cand-1", Score: 8}
	f.counties.rows["Cherokee|GA"] = sites.County{Name: "Cherokee", State: "GA", OverallDifficulty: 4}
	f.saturation.rows["cand-1"] = sites.Saturation{CandidateID: "cand-1", Score: 9}

	f.scorer = pipeline.NewScorer(pipeline.ScorerConfig{
		Candidates:     f.candidates,
		Parcels:        f.parcels,
		Counties:       f.counties,
		Saturation:     f.saturation,
		Scores:         f.scores,
		Weights:        sites.DefaultWeights(),
		MaxCostPerAcre: 250000,
		Clock:          clockwork.NewFakeClock(),
	})
	return f
}

func TestScorerRollsUpFinalScore(t *testing.T) {
	t.Parallel()

	f := newScorerFixture()
	rec := newRecorder(t, "score")

	require.NoError(t, f.scorer.Run(context.Background(), rec, "GA"))
	require.Equal(t, 1, rec.Counters().Inserted)

	card, err := f.scores.GetByCandidate(context.Background(), "cand-1")
	require.NoError(t, err)
	require.Equal(t, 8.0, card.ParcelScore)
	require.Equal(t, 4.0, card.CountyDifficulty)
	require.Equal(t, 6.5, card.FinancialScore, "$86.5k per acre against a $250k ceiling")
	require.Equal(t, 9.0, card.SaturationScore)
	require.Equal(t, 7.4, card.FinalScore, "0.35*8 + 0.20*(10-4) + 0.25*6.5 + 0.20*9, rounded")

	require.Len(t, f.candidates.scoreCalls, 1)
	call := f.candidates.scoreCalls[0]
	require.Equal(t, "cand-1", call.id)
	require.Equal(t, 7.4, call.score)
	require.Equal(t, sites.StatusScored, call.status)
}

func TestScorerIsDeterministicOnRerun(t *testing.T) {
	t.Parallel()

	f := newScorerFixture()
	require.NoError(t, f.scorer.Run(context.Background(), newRecorder(t, "score"), ""))
	first, err := f.scores.GetByCandidate(context.Background(), "cand-1")
	require.NoError(t, err)

	rec := newRecorder(t, "score")
	require.NoError(t, f.scorer.Run(context.Background(), rec, ""))
	require.Equal(t, 1, rec.Counters().Inserted, "the rollup merges, so a re-run writes again")

	second, err := f.scores.GetByCandidate(context.Background(), "cand-1")
	require.NoError(t, err)
	require.Equal(t, first.FinalScore, second.FinalScore)

	require.Equal(t, sites.StatusScored, f.candidates.scoreCalls[1].status,
		"an already scored candidate stays scored")
}

func TestScorerSkipsIncompleteCandidates(t *testing.T) {
	t.Parallel()

	f := newScorerFixture()
	f.candidates.rows = append(f.candidates.rows,
		sites.SiteCandidate{ID: "no-parcel", County: "Cherokee", State: "GA", Acreage: 2, AskingPrice: 100000},
		sites.SiteCandidate{ID: "no-county", County: "Dawson", State: "GA", Acreage: 2, AskingPrice: 100000},
		sites.SiteCandidate{ID: "no-saturation", County: "Cherokee", State: "GA", Acreage: 2, AskingPrice: 100000},
	)
	f.parcels.rows["no-county"] = sites.Parcel{CandidateID: "no-county", Score: 5}
	f.parcels.rows["no-saturation"] = sites.Parcel{CandidateID: "no-saturation", Score: 5}

	rec := newRecorder(t, "score")
	require.NoError(t, f.scorer.Run(context.Background(), rec, ""))

	counters := rec.Counters()
	require.Equal(t, 1, counters.Inserted, "only the fully analyzed candidate scores")
	require.Equal(t, 3, counters.Skipped)
	require.Zero(t, counters.Failed, "missing analyses are skips, not failures")

	require.Len(t, f.scores.rows, 1)
	require.Len(t, f.candidates.scoreCalls, 1)
}

func TestScorerSkipsUnpriceableCandidate(t *testing.T) {
	t.Parallel()

	f := newScorerFixture()
	f.candidates.rows[0].AskingPrice = 0

	rec := newRecorder(t, "score")
	require.NoError(t, f.scorer.Run(context.Background(), rec, ""))

	counters := rec.Counters()
	require.Zero(t, counters.Inserted)
	require.Equal(t, 1, counters.Skipped)
	require.Empty(t, f.scores.rows)
}

func TestScorerKeepsReviewedStatus(t *testing.T) {
	t.Parallel()

	f := newScorerFixture()
	f.candidates.rows[0].Status = sites.StatusReviewed

	rec := newRecorder(t, "score")
	require.NoError(t, f.scorer.Run(context.Background(), rec, ""))

	require.Len(t, f.candidates.scoreCalls, 1)
	require.Equal(t, sites.StatusReviewed, f.candidates.scoreCalls[0].status,
		"re-scoring never demotes a reviewed candidate")
}
