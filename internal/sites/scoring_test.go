package sites

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeightsValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultWeights().Validate())

	err := Weights{Parcel: 0.5, County: 0.5, Financial: 0.5, Saturation: 0.5}.Validate()
	require.ErrorContains(t, err, "sum to 1.0")

	err = Weights{Parcel: -0.1, County: 0.4, Financial: 0.4, Saturation: 0.3}.Validate()
	require.ErrorContains(t, err, "negative")
}

func TestFinalScoreDeterministic(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	first := w.FinalScore(8.0, 4.0, 6.5, 8.0)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, w.FinalScore(8.0, 4.0, 6.5, 8.0))
	}
	// 0.35*8 + 0.20*(10-4) + 0.25*6.5 + 0.20*8 = 2.8+1.2+1.625+1.6 = 7.225
	require.InDelta(t, 7.2, first, 1e-9)
}

func TestFinalScoreCountyIsAPenalty(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	easy := w.FinalScore(5, 1, 5, 5)
	hard := w.FinalScore(5, 9, 5, 5)
	require.Greater(t, easy, hard)
}

func TestParcelComputeScore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		parcel Parcel
		want   float64
	}{
		{
			name:   "clean parcel averages the three axes",
			parcel: Parcel{ShapeScore: 9, SlopeScore: 6, AccessScore: 9, Viable: true},
			want:   8.0,
		},
		{
			name:   "floodplain and rock penalties stack",
			parcel: Parcel{ShapeScore: 9, SlopeScore: 9, AccessScore: 9, Floodplain: true, HasRock: true, Viable: true},
			want:   6.0,
		},
		{
			name:   "non-viable parcel scores zero",
			parcel: Parcel{ShapeScore: 10, SlopeScore: 10, AccessScore: 10, Viable: false},
			want:   0,
		},
		{
			name:   "penalties never push below zero",
			parcel: Parcel{ShapeScore: 1, SlopeScore: 1, AccessScore: 1, Floodplain: true, Viable: true},
			want:   0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, tc.parcel.ComputeScore())
		})
	}
}

func TestCountyOverallDifficulty(t *testing.T) {
	t.Parallel()

	c := County{ZoningDifficulty: 7, PermittingSpeed: 4, StormwaterDifficulty: 6}
	require.Equal(t, 5.7, c.ComputeOverallDifficulty())
}

func TestFinancialScore(t *testing.T) {
	t.Parallel()

	score, ok := FinancialScore(500000, 10, 250000)
	require.True(t, ok)
	require.Equal(t, 8.0, score) // $50k/acre against a $250k ceiling

	score, ok = FinancialScore(5000000, 10, 250000)
	require.True(t, ok)
	require.Equal(t, 0.0, score) // at twice the ceiling, clamped

	_, ok = FinancialScore(500000, 0, 250000)
	require.False(t, ok)

	_, ok = FinancialScore(0, 10, 250000)
	require.False(t, ok)
}

func TestComputeSaturation(t *testing.T) {
	t.Parallel()

	f := DefaultSaturationFactors()

	t.Run("underserved market", func(t *testing.T) {
		t.Parallel()
		// 50k residents need 350k sqft; two facilities supply 110k.
		s := ComputeSaturation(50000, 2, f)
		require.NotNil(t, s.Ratio)
		require.InDelta(t, 0.31, *s.Ratio, 1e-9)
		require.Equal(t, 10.0, s.Score)
		require.Equal(t, "underserved", s.MarketStatus)
	})

	t.Run("oversaturated market", func(t *testing.T) {
		t.Parallel()
		s := ComputeSaturation(10000, 3, f)
		require.NotNil(t, s.Ratio)
		require.Equal(t, 1.0, s.Score)
		require.Equal(t, "oversaturated", s.MarketStatus)
	})

	t.Run("zero population is unknown, not a panic", func(t *testing.T) {
		t.Parallel()
		s := ComputeSaturation(0, 5, f)
		require.Nil(t, s.Ratio)
		require.Equal(t, 0.0, s.Score)
		require.Equal(t, "unknown", s.MarketStatus)
	})
}

func TestSaturationBandBoundaries(t *testing.T) {
	t.Parallel()

	// Population 10000 with 7 sqft/capita requires 70000 sqft. Vary the
	// facility size factor to land exactly on band edges.
	mk := func(existing float64) Saturation {
		return ComputeSaturation(10000, 1, SaturationFactors{SqftPerCapita: 7, AvgFacilitySqft: existing})
	}
	require.Equal(t, "underserved", mk(34999).MarketStatus)
	require.Equal(t, "below equilibrium", mk(35000).MarketStatus) // 0.50 falls into the next band
	require.Equal(t, "balanced", mk(56000).MarketStatus)
	require.Equal(t, "saturated", mk(84000).MarketStatus)
	require.Equal(t, "oversaturated", mk(105000).MarketStatus)
}
