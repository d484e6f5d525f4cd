package qcew

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/id/uuid"
	"github.com/stordev/sitescout/internal/sites"
	"github.com/stordev/sitescout/internal/source/curated"
)

type fakeEmploymentStore struct {
	rows     map[string]sites.EmploymentRecord
	failFIPS string
}

func (s *fakeEmploymentStore) Insert(_ context.Context, r sites.EmploymentRecord) (bool, error) {
	if r.CountyFIPS == s.failFIPS {
		return false, fmt.Errorf("connection reset")
	}
	key := fmt.Sprintf("%s|%d", r.CountyFIPS, r.Year)
	if _, ok := s.rows[key]; ok {
		return false, nil
	}
	s.rows[key] = r
	return true, nil
}

func testSeats() []curated.CountySeat {
	return []curated.CountySeat{
		{County: "Cherokee", State: "GA", Seat: "Canton", FIPS: "13057"},
		{County: "Cobb", State: "GA", Seat: "Marietta", FIPS: "13067"},
	}
}

func beginRecorder(t *testing.T) *etl.Recorder {
	t.Helper()
	rec, err := etl.Begin(context.Background(), etl.RecorderConfig{
		Source: "qcew",
		IDs:    uuid.NewUUIDGenerator(),
		Clock:  clockwork.NewFakeClock(),
	})
	require.NoError(t, err)
	return rec
}

func TestLoaderInsertsAggregates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(annualFixture))
	}))
	defer srv.Close()

	store := &fakeEmploymentStore{rows: map[string]sites.EmploymentRecord{}}
	loader := NewLoader(testQCEWClient(srv.URL), store, clockwork.NewFakeClock(), nil)
	rec := beginRecorder(t)

	require.NoError(t, loader.Run(context.Background(), rec, testSeats(), 2023))

	counters := rec.Counters()
	assert.Equal(t, 2, counters.Fetched)
	assert.Equal(t, 2, counters.Inserted)
	assert.Zero(t, counters.Failed)

	row := store.rows["13057|2023"]
	assert.Equal(t, "Cherokee", row.CountyName)
	assert.Equal(t, "GA", row.State)
	assert.Equal(t, 5000, row.Establishments)
	assert.Equal(t, int64(5200000000), row.TotalWages)
}

func TestLoaderRerunSkipsExistingYears(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(annualFixture))
	}))
	defer srv.Close()

	store := &fakeEmploymentStore{rows: map[string]sites.EmploymentRecord{}}
	loader := NewLoader(testQCEWClient(srv.URL), store, clockwork.NewFakeClock(), nil)

	require.NoError(t, loader.Run(context.Background(), beginRecorder(t), testSeats(), 2023))

	rec := beginRecorder(t)
	require.NoError(t, loader.Run(context.Background(), rec, testSeats(), 2023))
	assert.Zero(t, rec.Counters().Inserted)
	assert.Equal(t, 2, rec.Counters().Skipped)
}

func TestLoaderSkipsCountyWithoutAggregate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/2023/a/area/13057.csv" {
			// Ownership breakdowns only, no all-industry aggregate.
			_, _ = w.Write([]byte(`"area_fips","own_code","industry_code","annual_avg_estabs","annual_avg_emplvl","total_annual_wages","annual_avg_wkly_wage"
"13057","5","10","4200","70000","4100000000","1050"
`))
			return
		}
		_, _ = w.Write([]byte(annualFixture))
	}))
	defer srv.Close()

	store := &fakeEmploymentStore{rows: map[string]sites.EmploymentRecord{}}
	loader := NewLoader(testQCEWClient(srv.URL), store, clockwork.NewFakeClock(), nil)
	rec := beginRecorder(t)

	require.NoError(t, loader.Run(context.Background(), rec, testSeats(), 2023))

	counters := rec.Counters()
	assert.Equal(t, 2, counters.Fetched)
	assert.Equal(t, 1, counters.Inserted, "only the county with an aggregate row loads")
	assert.Zero(t, counters.Failed, "a missing aggregate is not a failure")
	assert.NotContains(t, store.rows, "13057|2023")
}

func TestLoaderContinuesPastFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/2023/a/area/13057.csv" {
			http.Error(w, "gone", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(annualFixture))
	}))
	defer srv.Close()

	store := &fakeEmploymentStore{rows: map[string]sites.EmploymentRecord{}}
	loader := NewLoader(testQCEWClient(srv.URL), store, clockwork.NewFakeClock(), nil)
	rec := beginRecorder(t)

	require.NoError(t, loader.Run(context.Background(), rec, testSeats(), 2023))

	counters := rec.Counters()
	assert.Equal(t, 1, counters.Failed)
	assert.Equal(t, 1, counters.Inserted)
	assert.Contains(t, store.rows, "13067|2023")
}
