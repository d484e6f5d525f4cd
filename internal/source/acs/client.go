// Package acs loads ZIP-level demographics from the Census ACS 5-year API.
// ZCTAs are fetched in batches of up to fifty per request, the API's hard
// limit, through a small producer/consumer pipeline.
package acs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/config"
	"github.com/stordev/sitescout/internal/policy/ratelimit"
	"github.com/stordev/sitescout/internal/sites"
)

// maxBatch is the Census API's per-request ZCTA limit.
const maxBatch = 50

// ACS variables fetched per ZCTA.
const (
	varPopulation      = "B01003_001E"
	varMedianIncome    = "B19013_001E"
	varPovertyUniverse = "B17001_001E"
	varPovertyBelow    = "B17001_002E"
	varTenureTotal     = "B25003_001E"
	varTenureRenter    = "B25003_003E"
	varMedianAge       = "B01002_001E"
	varHouseholds      = "B11001_001E"

	zctaColumn = "zip code tabulation area"
)

var variables = []string{
	varPopulation,
	varMedianIncome,
	varPovertyUniverse,
	varPovertyBelow,
	varTenureTotal,
	varTenureRenter,
	varMedianAge,
	varHouseholds,
}

// Client fetches ACS 5-year estimates. The API key is optional; the Census
// API serves small volumes without one.
type Client struct {
	apiKey     string
	baseURL    string
	year       int
	httpClient *http.Client
	limiter    *ratelimit.Window
	logger     *zap.Logger
}

// NewClient builds an ACS client from configuration.
func NewClient(cfg config.CensusConfig, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		year:       cfg.Year,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    ratelimit.PerMinute("acs", cfg.RequestsPerMinute),
		logger:     logger,
	}
}

// Year returns the vintage this client queries.
func (c *Client) Year() int {
	return c.year
}

// FetchBatch fetches demographics for up to fifty ZCTAs in one request.
// The raw response body is returned for archiving whenever one was read.
func (c *Client) FetchBatch(ctx context.Context, zctas []string) ([]sites.ZipDemographics, []byte, error) {
	if len(zctas) == 0 {
		return nil, nil, nil
	}
	if len(zctas) > maxBatch {
		return nil, nil, fmt.Errorf("batch of %d exceeds the %d ZCTA limit", len(zctas), maxBatch)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	params := url.Values{
		"get": {strings.Join(variables, ",")},
		"for": {zctaColumn + ":" + strings.Join(zctas, ",")},
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	reqURL := fmt.Sprintf("%s/%d/acs/acs5?%s", c.baseURL, c.year, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("acs request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, body, fmt.Errorf("acs API error: status %d: %s", resp.StatusCode, body)
	}

	rows, err := parseBatch(body, c.year)
	if err != nil {
		return nil, body, err
	}
	return rows, body, nil
}

// parseBatch decodes the ACS array-of-arrays payload. The first row is the
// header; every value is a string or null.
func parseBatch(body []byte, year int) ([]sites.ZipDemographics, error) {
	var table [][]*string
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, fmt.Errorf("decode acs response: %w", err)
	}
	if len(table) < 1 {
		return nil, fmt.Errorf("acs response has no header row")
	}

	idx := make(map[string]int, len(table[0]))
	for i, name := range table[0] {
		if name != nil {
			idx[*name] = i
		}
	}
	for _, name := range append([]string{zctaColumn}, variables...) {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("acs response missing column %s", name)
		}
	}

	rows := make([]sites.ZipDemographics, 0, len(table)-1)
	for _, record := range table[1:] {
		zip := stringValue(record, idx[zctaColumn])
		if zip == "" {
			continue
		}

		d := sites.ZipDemographics{
			Zip:          zip,
			Population:   countValue(record, idx[varPopulation]),
			Households:   countValue(record, idx[varHouseholds]),
			MedianIncome: floatValue(record, idx[varMedianIncome]),
			MedianAge:    floatValue(record, idx[varMedianAge]),
			Year:         year,
		}

		// Poverty rate and renter share are derived, with zero
		// denominators yielding nil rather than a panic.
		if universe := countValue(record, idx[varPovertyUniverse]); universe > 0 {
			rate := float64(countValue(record, idx[varPovertyBelow])) / float64(universe) * 100
			d.PovertyRate = &rate
		}
		if total := countValue(record, idx[varTenureTotal]); total > 0 {
			pct := float64(countValue(record, idx[varTenureRenter])) / float64(total) * 100
			d.RenterPct = &pct
		}

		rows = append(rows, d)
	}
	return rows, nil
}

func stringValue(record []*string, i int) string {
	if i >= len(record) || record[i] == nil {
		return ""
	}
	return strings.TrimSpace(*record[i])
}

// countValue parses a count variable. Null, blank, unparseable, and the
// API's negative sentinel values all count as zero.
func countValue(record []*string, i int) int {
	n, err := strconv.Atoi(stringValue(record, i))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// floatValue parses a median-style variable. Null, blank, unparseable, and
// negative sentinels yield nil.
func floatValue(record []*string, i int) *float64 {
	f, err := strconv.ParseFloat(stringValue(record, i), 64)
	if err != nil || f < 0 {
		return nil
	}
	return &f
}
