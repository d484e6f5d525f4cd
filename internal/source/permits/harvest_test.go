package permits

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexFixture = `<html><body>
<h1>Weekly Building Permit Reports</h1>
<a href="/reports/2026-07-27.pdf">Week of July 27</a>
<a href="/reports/2026-08-03.pdf">Week of August 3</a>
<a href="/reports/2026-08-03.pdf">duplicate link</a>
<a href="/about">About this page</a>
<a href="https://cdn.example.org/archive/2026-06.PDF">June archive</a>
</body></html>`

func TestHarvestCollectsPDFLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(indexFixture))
	}))
	defer srv.Close()

	h := NewLinkHarvester("sitescout/test", 5*time.Second, false, nil)
	links, body, err := h.Harvest(context.Background(), srv.URL)
	require.NoError(t, err)
	require.NotEmpty(t, body)

	require.Len(t, links, 3, "pdf links only, deduplicated")
	assert.Equal(t, srv.URL+"/reports/2026-07-27.pdf", links[0])
	assert.Equal(t, srv.URL+"/reports/2026-08-03.pdf", links[1])
	assert.Equal(t, "https://cdn.example.org/archive/2026-06.PDF", links[2])
}

func TestHarvestRespectsRobots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(indexFixture))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	blocked := NewLinkHarvester("sitescout/test", 5*time.Second, true, nil)
	_, _, err := blocked.Harvest(context.Background(), srv.URL+"/index.html")
	require.Error(t, err, "robots disallow blocks the visit")

	ignoring := NewLinkHarvester("sitescout/test", 5*time.Second, false, nil)
	links, _, err := ignoring.Harvest(context.Background(), srv.URL+"/index.html")
	require.NoError(t, err)
	assert.Len(t, links, 3)
}

func TestHarvestSurfacesFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance window", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h := NewLinkHarvester("sitescout/test", 5*time.Second, false, nil)
	_, _, err := h.Harvest(context.Background(), srv.URL)
	require.Error(t, err)
}
