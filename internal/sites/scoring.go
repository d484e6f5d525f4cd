package sites

import (
	"fmt"
	"math"
)

// Weights controls how the four sub-scores combine into final_score.
// The weighting is a business rule, so it is injected from configuration
// rather than hardcoded here.
type Weights struct {
	Parcel     float64 `mapstructure:"parcel" json:"parcel"`
	County     float64 `mapstructure:"county" json:"county"`
	Financial  float64 `mapstructure:"financial" json:"financial"`
	Saturation float64 `mapstructure:"saturation" json:"saturation"`
}

// DefaultWeights returns the product team's current weighting.
func DefaultWeights() Weights {
	return Weights{Parcel: 0.35, County: 0.20, Financial: 0.25, Saturation: 0.20}
}

const weightSumTolerance = 1e-9

// Validate checks that every weight is non-negative and that the weights
// sum to 1.0.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"parcel":     w.Parcel,
		"county":     w.County,
		"financial":  w.Financial,
		"saturation": w.Saturation,
	} {
		if v < 0 {
			return fmt.Errorf("scoring weight %s is negative: %v", name, v)
		}
	}
	sum := w.Parcel + w.County + w.Financial + w.Saturation
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("scoring weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// FinalScore combines sub-scores on a 0-10 scale. County difficulty is a
// penalty, so its contribution uses the inverted value (10 - difficulty).
func (w Weights) FinalScore(parcel, countyDifficulty, financial, saturation float64) float64 {
	score := w.Parcel*parcel +
		w.County*(10-countyDifficulty) +
		w.Financial*financial +
		w.Saturation*saturation
	return round1(clampScore(score))
}

// Parcel score penalties. A floodplain parcel loses more than a rocky one
// because remediation is rarely economic.
const (
	floodplainPenalty = 2.0
	rockPenalty       = 1.0
)

// ComputeScore derives the parcel sub-score from shape, slope, and access,
// minus the floodplain and rock penalties. A non-viable parcel scores 0.
func (p Parcel) ComputeScore() float64 {
	if !p.Viable {
		return 0
	}
	score := (p.ShapeScore + p.SlopeScore + p.AccessScore) / 3
	if p.Floodplain {
		score -= floodplainPenalty
	}
	if p.HasRock {
		score -= rockPenalty
	}
	return round1(clampScore(score))
}

// ComputeOverallDifficulty averages the three difficulty axes, rounded to
// one decimal.
func (c County) ComputeOverallDifficulty() float64 {
	return round1((c.ZoningDifficulty + c.PermittingSpeed + c.StormwaterDifficulty) / 3)
}

// FinancialScore rates land cost per acre against a budget ceiling on a
// 0-10 scale. Cost at or above the ceiling scores 0; free land scores 10.
// A zero or negative acreage or price cannot be scored and returns false.
func FinancialScore(askingPrice, acreage, maxCostPerAcre float64) (float64, bool) {
	if askingPrice <= 0 || acreage <= 0 || maxCostPerAcre <= 0 {
		return 0, false
	}
	costPerAcre := askingPrice / acreage
	score := 10 * (1 - costPerAcre/maxCostPerAcre)
	return round1(clampScore(score)), true
}

// SaturationFactors sizes market supply and demand.
type SaturationFactors struct {
	// SqftPerCapita is the industry demand benchmark, square feet of
	// storage demanded per resident.
	SqftPerCapita float64 `mapstructure:"sqft_per_capita" json:"sqft_per_capita"`
	// AvgFacilitySqft estimates rentable square footage per existing
	// facility when only a facility count is known.
	AvgFacilitySqft float64 `mapstructure:"avg_facility_sqft" json:"avg_facility_sqft"`
}

// DefaultSaturationFactors returns the benchmark demand factors.
func DefaultSaturationFactors() SaturationFactors {
	return SaturationFactors{SqftPerCapita: 7.0, AvgFacilitySqft: 55000}
}

// Saturation ratio bands, ascending. The ratio is existing supply over
// required supply; below 1.0 the market is undersupplied.
var saturationBands = []struct {
	upTo   float64
	score  float64
	status string
}{
	{upTo: 0.50, score: 10, status: "underserved"},
	{upTo: 0.80, score: 8, status: "below equilibrium"},
	{upTo: 1.20, score: 5, status: "balanced"},
	{upTo: 1.50, score: 3, status: "saturated"},
	{upTo: math.Inf(1), score: 1, status: "oversaturated"},
}

// ComputeSaturation sizes a market: required sqft from population and the
// per-capita benchmark, existing sqft from the facility count. When the
// population is zero the ratio is undefined (nil) and the market reads as
// unknown with a zero score.
func ComputeSaturation(population, facilityCount int, f SaturationFactors) Saturation {
	s := Saturation{
		Population:   population,
		RequiredSqft: float64(population) * f.SqftPerCapita,
		ExistingSqft: float64(facilityCount) * f.AvgFacilitySqft,
	}
	if s.RequiredSqft <= 0 {
		s.MarketStatus = "unknown"
		return s
	}
	ratio := s.ExistingSqft / s.RequiredSqft
	rounded := math.Round(ratio*100) / 100
	s.Ratio = &rounded
	for _, band := range saturationBands {
		if ratio < band.upTo {
			s.Score = band.score
			s.MarketStatus = band.status
			break
		}
	}
	return s
}

func clampScore(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 10:
		return 10
	default:
		return v
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
