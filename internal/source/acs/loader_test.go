package acs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stordev/sitescout/internal/config"
	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/id/uuid"
	"github.com/stordev/sitescout/internal/sites"
)

type fakeZipStore struct {
	mu   sync.Mutex
	rows map[string]sites.ZipDemographics
}

func (s *fakeZipStore) Insert(_ context.Context, z sites.ZipDemographics) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[z.Zip]; ok {
		return false, nil
	}
	s.rows[z.Zip] = z
	return true, nil
}

func (s *fakeZipStore) Get(_ context.Context, zip string) (sites.ZipDemographics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.rows[zip]
	if !ok {
		return sites.ZipDemographics{}, sites.ErrNotFound
	}
	return z, nil
}

// acsFixtureServer echoes one synthetic row per requested ZCTA.
func acsFixtureServer(t *testing.T, requests *int) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		*requests++
		mu.Unlock()

		spec := r.URL.Query().Get("for")
		zctas := strings.Split(strings.TrimPrefix(spec, "zip code tabulation area:"), ",")

		table := [][]any{{
			"B01003_001E", "B19013_001E", "B17001_001E", "B17001_002E",
			"B25003_001E", "B25003_003E", "B01002_001E", "B11001_001E",
			"zip code tabulation area",
		}}
		for _, z := range zctas {
			table = append(table, []any{"1000", "60000", "1000", "150", "400", "100", "35.5", "380", z})
		}
		require.NoError(t, json.NewEncoder(w).Encode(table))
	}))
}

func testLoaderConfig(batchSize int) config.CensusConfig {
	return config.CensusConfig{
		Year:          2023,
		BatchSize:     batchSize,
		PipelineDepth: 2,
		BatchDelayMs:  0,
	}
}

func beginRecorder(t *testing.T) *etl.Recorder {
	t.Helper()
	rec, err := etl.Begin(context.Background(), etl.RecorderConfig{
		Source: "acs",
		IDs:    uuid.NewUUIDGenerator(),
		Clock:  clockwork.NewFakeClock(),
	})
	require.NoError(t, err)
	return rec
}

func TestLoaderPipelinesBatches(t *testing.T) {
	requests := 0
	srv := acsFixtureServer(t, &requests)
	defer srv.Close()

	store := &fakeZipStore{rows: map[string]sites.ZipDemographics{}}
	loader := NewLoader(testACSClient(srv.URL), store, testLoaderConfig(2), clockwork.NewRealClock(), nil)
	rec := beginRecorder(t)

	zctas := []string{"30114", "30115", "30117", "30188", "30189"}
	require.NoError(t, loader.Run(context.Background(), rec, zctas, "GA"))

	counters := rec.Counters()
	assert.Equal(t, 3, counters.Fetched, "five ZCTAs in batches of two is three requests")
	assert.Equal(t, 3, requests)
	assert.Equal(t, 5, counters.Inserted)
	assert.Zero(t, counters.Failed)

	row, err := store.Get(context.Background(), "30188")
	require.NoError(t, err)
	assert.Equal(t, "GA", row.State)
	assert.Equal(t, 2023, row.Year)
	assert.Equal(t, 1000, row.Population)
	require.NotNil(t, row.PovertyRate)
	assert.Equal(t, 15.0, *row.PovertyRate)
}

func TestLoaderRerunSkipsExistingZips(t *testing.T) {
	requests := 0
	srv := acsFixtureServer(t, &requests)
	defer srv.Close()

	store := &fakeZipStore{rows: map[string]sites.ZipDemographics{}}
	loader := NewLoader(testACSClient(srv.URL), store, testLoaderConfig(50), clockwork.NewRealClock(), nil)

	zctas := []string{"30114", "30115"}
	require.NoError(t, loader.Run(context.Background(), beginRecorder(t), zctas, "GA"))

	rec := beginRecorder(t)
	require.NoError(t, loader.Run(context.Background(), rec, zctas, "GA"))
	assert.Zero(t, rec.Counters().Inserted)
	assert.Equal(t, 2, rec.Counters().Skipped)
}

func TestLoaderContinuesPastBatchFailure(t *testing.T) {
	var served int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		served++
		first := served == 1
		mu.Unlock()

		if first {
			http.Error(w, "over quota", http.StatusTooManyRequests)
			return
		}

		spec := r.URL.Query().Get("for")
		zctas := strings.Split(strings.TrimPrefix(spec, "zip code tabulation area:"), ",")
		table := [][]any{{
			"B01003_001E", "B19013_001E", "B17001_001E", "B17001_002E",
			"B25003_001E", "B25003_003E", "B01002_001E", "B11001_001E",
			"zip code tabulation area",
		}}
		for _, z := range zctas {
			table = append(table, []any{"1000", "60000", "1000", "150", "400", "100", "35.5", "380", z})
		}
		require.NoError(t, json.NewEncoder(w).Encode(table))
	}))
	defer srv.Close()

	store := &fakeZipStore{rows: map[string]sites.ZipDemographics{}}
	loader := NewLoader(testACSClient(srv.URL), store, testLoaderConfig(2), clockwork.NewRealClock(), nil)
	rec := beginRecorder(t)

	require.NoError(t, loader.Run(context.Background(), rec, []string{"30114", "30115", "30117"}, "GA"))

	counters := rec.Counters()
	assert.Equal(t, 1, counters.Failed, "the rejected batch is one failure")
	assert.Equal(t, 1, counters.Inserted, "the surviving batch still loads")
	assert.NotContains(t, store.rows, "30114")
	assert.Contains(t, store.rows, "30117")
}

func TestLoaderHonorsBatchDelay(t *testing.T) {
	requests := 0
	srv := acsFixtureServer(t, &requests)
	defer srv.Close()

	cfg := testLoaderConfig(1)
	cfg.BatchDelayMs = 10

	store := &fakeZipStore{rows: map[string]sites.ZipDemographics{}}
	loader := NewLoader(testACSClient(srv.URL), store, cfg, clockwork.NewRealClock(), nil)

	start := time.Now()
	require.NoError(t, loader.Run(context.Background(), beginRecorder(t), []string{"30114", "30115", "30117"}, "GA"))
	elapsed := time.Since(start)

	assert.Equal(t, 3, requests)
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond, "two inter-batch delays of 10ms each")
}

func TestLoaderStopsOnCancel(t *testing.T) {
	requests := 0
	srv := acsFixtureServer(t, &requests)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &fakeZipStore{rows: map[string]sites.ZipDemographics{}}
	loader := NewLoader(testACSClient(srv.URL), store, testLoaderConfig(2), clockwork.NewRealClock(), nil)

	err := loader.Run(ctx, beginRecorder(t), []string{"30114", "30115"}, "GA")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.rows)
}
