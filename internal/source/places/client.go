// Package places loads logistics and self-storage demand signals from the
// Google Places API: a nearby search per county seat, a keyword classifier
// over the result names, and an optional place-details enrichment pass.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/config"
	"github.com/stordev/sitescout/internal/policy/ratelimit"
)

// Client calls the Places nearby-search and place-details endpoints. Every
// request consumes one rate-limiter slot before it is issued.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.Window
	logger     *zap.Logger
}

// Place is one normalized nearby-search result.
type Place struct {
	PlaceID      string
	Name         string
	Address      string
	Lat          float64
	Lng          float64
	Rating       *float64
	RatingsTotal int
}

// Details carries the enrichment fields from a place-details lookup.
type Details struct {
	FormattedAddress string
	Phone            string
	Website          string
}

// NewClient builds a Places client from configuration. The API key must be
// present; it is only ever injected via environment or config file.
func NewClient(cfg config.PlacesConfig, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("places.api_key is required (set SITESCOUT_PLACES_API_KEY)")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    ratelimit.PerMinute("places", cfg.RequestsPerMinute),
		logger:     logger,
	}, nil
}

// NearbySearch returns places matching the keyword around a coordinate.
// The raw response body is returned alongside the parsed results so the
// caller can archive it; it is non-nil whenever a response was read, even
// when parsing failed.
func (c *Client) NearbySearch(ctx context.Context, lat, lng float64, radiusMeters int, keyword string) ([]Place, []byte, error) {
	params := url.Values{
		"location": {fmt.Sprintf("%.6f,%.6f", lat, lng)},
		"radius":   {strconv.Itoa(radiusMeters)},
		"keyword":  {keyword},
	}

	body, err := c.get(ctx, "/nearbysearch/json", params)
	if err != nil {
		return nil, body, err
	}

	var parsed nearbyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, body, fmt.Errorf("decode nearby response: %w", err)
	}
	if parsed.Status != "OK" && parsed.Status != "ZERO_RESULTS" {
		return nil, body, fmt.Errorf("places status %s: %s", parsed.Status, parsed.ErrorMessage)
	}

	results := make([]Place, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, Place{
			PlaceID:      r.PlaceID,
			Name:         r.Name,
			Address:      r.Vicinity,
			Lat:          r.Geometry.Location.Lat,
			Lng:          r.Geometry.Location.Lng,
			Rating:       r.Rating,
			RatingsTotal: r.RatingsTotal,
		})
	}
	return results, body, nil
}

// PlaceDetails fetches the enrichment fields for one place.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (Details, []byte, error) {
	params := url.Values{
		"place_id": {placeID},
		"fields":   {"formatted_address,formatted_phone_number,website"},
	}

	body, err := c.get(ctx, "/details/json", params)
	if err != nil {
		return Details{}, body, err
	}

	var parsed detailsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Details{}, body, fmt.Errorf("decode details response: %w", err)
	}
	if parsed.Status != "OK" {
		return Details{}, body, fmt.Errorf("places status %s: %s", parsed.Status, parsed.ErrorMessage)
	}

	return Details{
		FormattedAddress: parsed.Result.FormattedAddress,
		Phone:            parsed.Result.Phone,
		Website:          parsed.Result.Website,
	}, body, nil
}

// get issues one rate-limited GET and reads the full body. The API key is
// appended here so it never appears in caller-built URLs.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return body, fmt.Errorf("places API error: status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

// Google Places API response types.

type nearbyResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Results      []placeResult `json:"results"`
}

type placeResult struct {
	PlaceID      string   `json:"place_id"`
	Name         string   `json:"name"`
	Vicinity     string   `json:"vicinity"`
	Rating       *float64 `json:"rating"`
	RatingsTotal int      `json:"user_ratings_total"`
	Geometry     struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		FormattedAddress string `json:"formatted_address"`
		Phone            string `json:"formatted_phone_number"`
		Website          string `json:"website"`
	} `json:"result"`
}
