package places

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stordev/sitescout/internal/config"
	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/id/uuid"
	"github.com/stordev/sitescout/internal/sites"
	"github.com/stordev/sitescout/internal/source/curated"
)

type fakeLogisticsStore struct {
	rows   map[string]sites.LogisticsFacility
	failID string
}

func (s *fakeLogisticsStore) Insert(_ context.Context, f sites.LogisticsFacility) (bool, error) {
	if f.PlaceID == s.failID {
		return false, fmt.Errorf("connection reset")
	}
	if _, ok := s.rows[f.PlaceID]; ok {
		return false, nil
	}
	s.rows[f.PlaceID] = f
	return true, nil
}

type fakeStorageStore struct {
	rows map[string]sites.StorageFacility
}

func (s *fakeStorageStore) Insert(_ context.Context, f sites.StorageFacility) (bool, error) {
	if _, ok := s.rows[f.PlaceID]; ok {
		return false, nil
	}
	s.rows[f.PlaceID] = f
	return true, nil
}

func (s *fakeStorageStore) CountByCounty(_ context.Context, county, state string) (int, error) {
	n := 0
	for _, f := range s.rows {
		if f.County == county && f.State == state {
			n++
		}
	}
	return n, nil
}

// fixtureServer answers nearby searches by keyword and details by place id.
func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/nearbysearch/json", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("keyword") {
		case "distribution center":
			_, _ = w.Write([]byte(`{"status": "OK", "results": [
				{"place_id": "log-1", "name": "Amazon Fulfillment Center", "vicinity": "100 Commerce Way", "geometry": {"location": {"lat": 34.25, "lng": -84.48}}},
				{"place_id": "log-2", "name": "Canton Freight Depot", "vicinity": "5 Industrial Dr", "geometry": {"location": {"lat": 34.21, "lng": -84.47}}}
			]}`))
		case "self storage":
			_, _ = w.Write([]byte(`{"status": "OK", "results": [
				{"place_id": "sto-1", "name": "Canton Self Storage", "vicinity": "9 Depot St, Canton, GA 30114", "rating": 4.6, "user_ratings_total": 88, "geometry": {"location": {"lat": 34.23, "lng": -84.49}}}
			]}`))
		default:
			_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
		}
	})
	mux.HandleFunc("/details/json", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("place_id")
		_, _ = w.Write([]byte(fmt.Sprintf(`{"status": "OK", "result": {"formatted_address": "addr for %s, Canton, GA 30114, USA"}}`, id)))
	})
	return httptest.NewServer(mux)
}

func testSeat() curated.CountySeat {
	return curated.CountySeat{County: "Cherokee", State: "GA", Seat: "Canton", FIPS: "13057", Lat: 34.2368, Lng: -84.4908}
}

func testLoader(srv *httptest.Server, logistics *fakeLogisticsStore, storage *fakeStorageStore) *Loader {
	cfg := config.PlacesConfig{
		BaseURL:        srv.URL,
		RadiusMeters:   40000,
		Keyword:        "distribution center",
		StorageKeyword: "self storage",
	}
	return NewLoader(LoaderConfig{
		Client:    testClient(srv.URL),
		Logistics: logistics,
		Storage:   storage,
		Places:    cfg,
		Clock:     clockwork.NewFakeClock(),
	})
}

func beginRecorder(t *testing.T) *etl.Recorder {
	t.Helper()
	rec, err := etl.Begin(context.Background(), etl.RecorderConfig{
		Source: "places",
		IDs:    uuid.NewUUIDGenerator(),
		Clock:  clockwork.NewFakeClock(),
	})
	require.NoError(t, err)
	return rec
}

func TestLoaderClassifiesAndInserts(t *testing.T) {
	srv := fixtureServer(t)
	defer srv.Close()

	logistics := &fakeLogisticsStore{rows: map[string]sites.LogisticsFacility{}}
	storage := &fakeStorageStore{rows: map[string]sites.StorageFacility{}}
	loader := testLoader(srv, logistics, storage)
	rec := beginRecorder(t)

	require.NoError(t, loader.Run(context.Background(), rec, []curated.CountySeat{testSeat()}, false))

	counters := rec.Counters()
	assert.Equal(t, 2, counters.Fetched, "one logistics search and one storage search")
	assert.Equal(t, 3, counters.Inserted)
	assert.Zero(t, counters.Failed)

	amazon := logistics.rows["log-1"]
	assert.Equal(t, "Amazon", amazon.Company)
	assert.Equal(t, "Fulfillment Center", amazon.Category)
	assert.Equal(t, "Cherokee", amazon.County)
	assert.Equal(t, "GA", amazon.State)

	other := logistics.rows["log-2"]
	assert.Equal(t, "Other", other.Company)
	assert.Equal(t, "Warehouse", other.Category)

	sto := storage.rows["sto-1"]
	require.NotNil(t, sto.Rating)
	assert.Equal(t, 4.6, *sto.Rating)
	assert.Equal(t, 88, sto.RatingsTotal)
	assert.Equal(t, "30114", sto.Zip, "zip parsed out of the vicinity address")
}

func TestLoaderRerunSkipsExistingRows(t *testing.T) {
	srv := fixtureServer(t)
	defer srv.Close()

	logistics := &fakeLogisticsStore{rows: map[string]sites.LogisticsFacility{}}
	storage := &fakeStorageStore{rows: map[string]sites.StorageFacility{}}
	loader := testLoader(srv, logistics, storage)

	require.NoError(t, loader.Run(context.Background(), beginRecorder(t), []curated.CountySeat{testSeat()}, false))

	rec := beginRecorder(t)
	require.NoError(t, loader.Run(context.Background(), rec, []curated.CountySeat{testSeat()}, false))

	counters := rec.Counters()
	assert.Zero(t, counters.Inserted)
	assert.Equal(t, 3, counters.Skipped)
}

func TestLoaderDetailsEnrichment(t *testing.T) {
	srv := fixtureServer(t)
	defer srv.Close()

	logistics := &fakeLogisticsStore{rows: map[string]sites.LogisticsFacility{}}
	storage := &fakeStorageStore{rows: map[string]sites.StorageFacility{}}
	loader := testLoader(srv, logistics, storage)
	rec := beginRecorder(t)

	require.NoError(t, loader.Run(context.Background(), rec, []curated.CountySeat{testSeat()}, true))

	assert.Equal(t, 4, rec.Counters().Fetched, "two searches plus two detail lookups")
	assert.Equal(t, "addr for log-1, Canton, GA 30114, USA", logistics.rows["log-1"].Address)
	assert.Equal(t, "30114", logistics.rows["log-1"].Zip)
}

func TestLoaderContinuesPastInsertFailure(t *testing.T) {
	srv := fixtureServer(t)
	defer srv.Close()

	logistics := &fakeLogisticsStore{rows: map[string]sites.LogisticsFacility{}, failID: "log-1"}
	storage := &fakeStorageStore{rows: map[string]sites.StorageFacility{}}
	loader := testLoader(srv, logistics, storage)
	rec := beginRecorder(t)

	require.NoError(t, loader.Run(context.Background(), rec, []curated.CountySeat{testSeat()}, false))

	counters := rec.Counters()
	assert.Equal(t, 1, counters.Failed)
	assert.Equal(t, 2, counters.Inserted)
	assert.Contains(t, logistics.rows, "log-2", "later records still load")
}

func TestLoaderContinuesPastSearchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/nearbysearch/json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("keyword") == "distribution center" {
			http.Error(w, "quota exhausted", http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"status": "OK", "results": [
			{"place_id": "sto-9", "name": "Depot Storage", "geometry": {"location": {"lat": 1, "lng": 2}}}
		]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	logistics := &fakeLogisticsStore{rows: map[string]sites.LogisticsFacility{}}
	storage := &fakeStorageStore{rows: map[string]sites.StorageFacility{}}
	loader := testLoader(srv, logistics, storage)
	rec := beginRecorder(t)

	require.NoError(t, loader.Run(context.Background(), rec, []curated.CountySeat{testSeat()}, false))

	counters := rec.Counters()
	assert.Equal(t, 1, counters.Failed, "failed logistics search is recorded")
	assert.Equal(t, 1, counters.Inserted, "storage pass still runs")
	assert.Empty(t, logistics.rows)
}

func TestZipFromAddress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "30114", zipFromAddress("9 Depot St, Canton, GA 30114, USA"))
	assert.Equal(t, "30114", zipFromAddress("9 Depot St, Canton, GA 30114-2201, USA"))
	assert.Equal(t, "30188", zipFromAddress("Suite 100, 30060 Plaza, Woodstock, GA 30188"))
	assert.Equal(t, "", zipFromAddress("9 Depot St, Canton"))
}
