// Package sites defines the core entities of the site-selection pipeline
// and the pure scoring math applied to them. Everything here is owned by
// the database; these types are the in-process row shapes.
package sites

import (
	"time"
)

// CandidateStatus tracks how far a candidate has moved through the pipeline.
type CandidateStatus string

// Candidate status values persisted in site_candidates.
const (
	StatusPending  CandidateStatus = "pending"
	StatusScored   CandidateStatus = "scored"
	StatusReviewed CandidateStatus = "reviewed"
)

// SiteCandidate is a prospective storage-facility site.
type SiteCandidate struct {
	ID           string          `json:"id"`
	Address      string          `json:"address"`
	City         string          `json:"city,omitempty"`
	County       string          `json:"county"`
	State        string          `json:"state"`
	Zip          string          `json:"zip"`
	Acreage      float64         `json:"acreage"`
	AskingPrice  float64         `json:"asking_price,omitempty"`
	TrafficCount int             `json:"traffic_count,omitempty"`
	Population   int             `json:"population,omitempty"`
	Households   int             `json:"households,omitempty"`
	Status       CandidateStatus `json:"status"`
	FinalScore   *float64        `json:"final_score,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Parcel holds the physical attributes of a candidate's land parcel.
// One per candidate, immutable once inserted.
type Parcel struct {
	CandidateID string    `json:"candidate_id"`
	ShapeScore  float64   `json:"shape_score"`
	SlopeScore  float64   `json:"slope_score"`
	AccessScore float64   `json:"access_score"`
	Floodplain  bool      `json:"floodplain"`
	SoilQuality string    `json:"soil_quality,omitempty"`
	HasRock     bool      `json:"has_rock"`
	Viable      bool      `json:"viable"`
	Score       float64   `json:"score"`
	CreatedAt   time.Time `json:"created_at"`
}

// County is jurisdiction reference data. Many candidates reference one
// county by (name, state).
type County struct {
	Name                 string    `json:"name"`
	State                string    `json:"state"`
	ZoningDifficulty     float64   `json:"zoning_difficulty"`
	PermittingSpeed      float64   `json:"permitting_speed"`
	StormwaterDifficulty float64   `json:"stormwater_difficulty"`
	OverallDifficulty    float64   `json:"overall_difficulty"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Saturation is the market-saturation analysis for one candidate.
type Saturation struct {
	CandidateID  string    `json:"candidate_id"`
	Population   int       `json:"population"`
	RequiredSqft float64   `json:"required_sqft"`
	ExistingSqft float64   `json:"existing_sqft"`
	Ratio        *float64  `json:"ratio,omitempty"`
	Score        float64   `json:"score"`
	MarketStatus string    `json:"market_status"`
	ComputedAt   time.Time `json:"computed_at"`
}

// ScoreCard is the rollup of all sub-scores for one candidate.
type ScoreCard struct {
	CandidateID      string    `json:"candidate_id"`
	ParcelScore      float64   `json:"parcel_score"`
	CountyDifficulty float64   `json:"county_difficulty"`
	FinancialScore   float64   `json:"financial_score"`
	SaturationScore  float64   `json:"saturation_score"`
	FinalScore       float64   `json:"final_score"`
	ComputedAt       time.Time `json:"computed_at"`
}

// CandidateDetail is the full read-side view of one candidate.
type CandidateDetail struct {
	Candidate  SiteCandidate `json:"candidate"`
	Parcel     *Parcel       `json:"parcel,omitempty"`
	Saturation *Saturation   `json:"saturation,omitempty"`
	Scores     *ScoreCard    `json:"scores,omitempty"`
}

// CandidateFilter narrows candidate listings.
type CandidateFilter struct {
	State    string
	County   string
	Status   CandidateStatus
	MinScore *float64
	Limit    int
	Offset   int
}
