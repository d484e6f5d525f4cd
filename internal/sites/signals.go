package sites

import "time"

// LogisticsFacility is a classified demand signal from the Places source:
// a distribution center, fulfillment center, or similar logistics site.
type LogisticsFacility struct {
	PlaceID  string    `json:"place_id"`
	Name     string    `json:"name"`
	Company  string    `json:"company"`
	Category string    `json:"category"`
	Address  string    `json:"address,omitempty"`
	County   string    `json:"county"`
	State    string    `json:"state"`
	Zip      string    `json:"zip,omitempty"`
	Lat      float64   `json:"lat"`
	Lng      float64   `json:"lng"`
	LoadedAt time.Time `json:"loaded_at"`
}

// StorageFacility is an existing self-storage competitor, the supply side
// of the saturation analysis.
type StorageFacility struct {
	PlaceID      string    `json:"place_id"`
	Name         string    `json:"name"`
	Address      string    `json:"address,omitempty"`
	County       string    `json:"county"`
	State        string    `json:"state"`
	Zip          string    `json:"zip,omitempty"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	Rating       *float64  `json:"rating,omitempty"`
	RatingsTotal int       `json:"ratings_total,omitempty"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// MilitaryBase is a curated demand signal keyed by (name, state).
type MilitaryBase struct {
	Name      string    `json:"name"`
	Branch    string    `json:"branch"`
	County    string    `json:"county"`
	State     string    `json:"state"`
	Personnel int       `json:"personnel"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// University is a curated demand signal keyed by (name, state).
type University struct {
	Name       string    `json:"name"`
	County     string    `json:"county"`
	State      string    `json:"state"`
	Enrollment int       `json:"enrollment"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// ZipDemographics is one zips_master row: ACS-derived demographics for a
// ZIP Code Tabulation Area. Pointer fields are nil when the API reported
// no value for the variable.
type ZipDemographics struct {
	Zip          string    `json:"zip"`
	State        string    `json:"state,omitempty"`
	Population   int       `json:"population"`
	Households   int       `json:"households"`
	MedianIncome *float64  `json:"median_income,omitempty"`
	MedianAge    *float64  `json:"median_age,omitempty"`
	PovertyRate  *float64  `json:"poverty_rate,omitempty"`
	RenterPct    *float64  `json:"renter_pct,omitempty"`
	Year         int       `json:"year"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// EmploymentRecord is one employment_data row: the QCEW all-ownership,
// all-industry aggregate for a county and year.
type EmploymentRecord struct {
	CountyFIPS     string    `json:"county_fips"`
	CountyName     string    `json:"county_name,omitempty"`
	State          string    `json:"state,omitempty"`
	Year           int       `json:"year"`
	Establishments int       `json:"establishments"`
	Employment     int       `json:"employment"`
	TotalWages     int64     `json:"total_wages"`
	AvgWeeklyWage  int       `json:"avg_weekly_wage"`
	LoadedAt       time.Time `json:"loaded_at"`
}

// PermitClass labels a building permit by what it authorizes.
type PermitClass string

// Permit classifications persisted in permits.classification.
const (
	PermitMultiUnit    PermitClass = "multi_unit"
	PermitSingleFamily PermitClass = "single_family"
	PermitOther        PermitClass = "other"
)

// Permit is one parsed building-permit record from a county PDF report.
type Permit struct {
	PermitNumber   string      `json:"permit_number"`
	County         string      `json:"county"`
	State          string      `json:"state"`
	Address        string      `json:"address,omitempty"`
	Owner          string      `json:"owner,omitempty"`
	DeclaredValue  float64     `json:"declared_value,omitempty"`
	Classification PermitClass `json:"classification"`
	Development    string      `json:"development,omitempty"`
	LoadedAt       time.Time   `json:"loaded_at"`
}

// SignalKind selects a signal table for the map-pin endpoint.
type SignalKind string

// Signal kinds accepted by the read API.
const (
	SignalLogistics  SignalKind = "logistics"
	SignalStorage    SignalKind = "storage"
	SignalMilitary   SignalKind = "military"
	SignalUniversity SignalKind = "university"
)

// SignalPin is the flattened map-pin shape returned for any signal kind.
type SignalPin struct {
	Kind   SignalKind `json:"kind"`
	Key    string     `json:"key"`
	Name   string     `json:"name"`
	County string     `json:"county"`
	State  string     `json:"state"`
	Lat    float64    `json:"lat"`
	Lng    float64    `json:"lng"`
}
