package permits

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// RobotsGate enforces robots.txt for the direct PDF downloads. The colly
// harvester carries its own robots handling; plain GETs go through here.
// A nil gate allows everything, which is how the respect_robots toggle is
// turned off.
type RobotsGate struct {
	client    *http.Client
	cache     sync.Map
	userAgent string
	logger    *zap.Logger
}

// NewRobotsGate returns a gate, or nil when robots enforcement is off.
func NewRobotsGate(respect bool, userAgent string, logger *zap.Logger) *RobotsGate {
	if !respect {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RobotsGate{
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Allowed checks the host's robots.txt. Fetch failures allow access, with
// a warning; an unreachable robots file should not block a county report.
func (g *RobotsGate) Allowed(ctx context.Context, rawURL string) bool {
	if g == nil {
		return true
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	data, err := g.load(ctx, parsed)
	if err != nil {
		g.logger.Warn("robots fetch failed; allowing access", zap.String("host", parsed.Host), zap.Error(err))
		return true
	}
	group := data.FindGroup(g.userAgent)
	if group == nil {
		return true
	}
	return group.Test(parsed.Path)
}

func (g *RobotsGate) load(ctx context.Context, parsed *url.URL) (*robotstxt.RobotsData, error) {
	hostKey := strings.ToLower(parsed.Host)
	if cached, ok := g.cache.Load(hostKey); ok {
		data, castOK := cached.(*robotstxt.RobotsData)
		if !castOK {
			return nil, fmt.Errorf("robots cache type mismatch: %T", cached)
		}
		return data, nil
	}

	robotsURL := *parsed
	robotsURL.Path = path.Join("/", "robots.txt")
	robotsURL.RawQuery = ""
	robotsURL.Fragment = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new robots request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read robots body: %w", err)
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots: %w", err)
	}
	g.cache.Store(hostKey, data)
	return data, nil
}
