// Package qcew loads county employment aggregates from the BLS Quarterly
// Census of Employment and Wages open-data CSV endpoint.
package qcew

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/config"
	"github.com/stordev/sitescout/internal/policy/ratelimit"
)

// The county aggregate is the single row covering all ownerships and all
// industries in the annual area file.
const (
	aggregateOwnCode      = "0"
	aggregateIndustryCode = "10"
)

// Required CSV columns, by the names BLS publishes.
const (
	colOwnCode        = "own_code"
	colIndustryCode   = "industry_code"
	colEstablishments = "annual_avg_estabs"
	colEmployment     = "annual_avg_emplvl"
	colTotalWages     = "total_annual_wages"
	colWeeklyWage     = "annual_avg_wkly_wage"
)

// CountyAggregate is the all-ownership, all-industry annual row for one
// county.
type CountyAggregate struct {
	Establishments int
	Employment     int
	TotalWages     int64
	AvgWeeklyWage  int
}

// Client fetches QCEW annual area files.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.Window
	logger     *zap.Logger
}

// NewClient builds a QCEW client from configuration.
func NewClient(cfg config.QCEWConfig, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    ratelimit.PerMinute("qcew", cfg.RequestsPerMinute),
		logger:     logger,
	}
}

// CountyAnnual fetches and parses the annual area CSV for one county FIPS.
// It returns nil (with no error) when the file carries no qualifying
// aggregate row or lacks the expected columns; the raw body is returned
// whenever a response was read so the caller can archive it.
func (c *Client) CountyAnnual(ctx context.Context, year int, fips string) (*CountyAggregate, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	url := fmt.Sprintf("%s/%d/a/area/%s.csv", c.baseURL, year, strings.ToUpper(fips))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("qcew request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, body, fmt.Errorf("qcew API error: status %d for area %s", resp.StatusCode, fips)
	}

	agg, err := parseAnnualCSV(body)
	if err != nil {
		return nil, body, fmt.Errorf("parse area %s: %w", fips, err)
	}
	return agg, body, nil
}

// parseAnnualCSV selects the aggregate row. A missing row or missing
// required column yields (nil, nil): the county simply has nothing to load.
func parseAnnualCSV(body []byte) (*CountyAggregate, error) {
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	idx := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{colOwnCode, colIndustryCode, colEstablishments, colEmployment, colTotalWages, colWeeklyWage} {
		if _, ok := idx[name]; !ok {
			return nil, nil
		}
	}

	for _, row := range records[1:] {
		if field(row, idx[colOwnCode]) != aggregateOwnCode || field(row, idx[colIndustryCode]) != aggregateIndustryCode {
			continue
		}

		establishments, err := strconv.Atoi(field(row, idx[colEstablishments]))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", colEstablishments, err)
		}
		employment, err := strconv.Atoi(field(row, idx[colEmployment]))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", colEmployment, err)
		}
		totalWages, err := strconv.ParseInt(field(row, idx[colTotalWages]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", colTotalWages, err)
		}
		weeklyWage, err := strconv.Atoi(field(row, idx[colWeeklyWage]))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", colWeeklyWage, err)
		}

		return &CountyAggregate{
			Establishments: establishments,
			Employment:     employment,
			TotalWages:     totalWages,
			AvgWeeklyWage:  weeklyWage,
		}, nil
	}
	return nil, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
