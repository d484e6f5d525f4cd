package permits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// LinkHarvester discovers PDF report links on a permit portal index page.
type LinkHarvester struct {
	base   *colly.Collector
	logger *zap.Logger
}

// NewLinkHarvester builds a harvester. Robots handling rides on colly's
// own enforcement, toggled by respectRobots.
func NewLinkHarvester(userAgent string, timeout time.Duration, respectRobots bool, logger *zap.Logger) *LinkHarvester {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := colly.NewCollector(colly.UserAgent(userAgent))
	base.IgnoreRobotsTxt = !respectRobots
	base.AllowURLRevisit = true
	base.SetRequestTimeout(timeout)
	return &LinkHarvester{base: base, logger: logger}
}

// Harvest fetches the index page and returns every linked PDF as an
// absolute URL, deduplicated in document order. The page body comes back
// too so the caller can decide whether a browser is needed instead.
func (h *LinkHarvester) Harvest(ctx context.Context, indexURL string) ([]string, []byte, error) {
	collector := h.base.Clone()

	var (
		links    []string
		seen     = map[string]bool{}
		body     []byte
		fetchErr error
	)

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := e.Attr("href")
		if !strings.Contains(strings.ToLower(href), ".pdf") {
			return
		}
		abs := e.Request.AbsoluteURL(href)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(indexURL); err != nil {
		return nil, nil, fmt.Errorf("visit index: %w", err)
	}
	collector.Wait()

	if err := ctx.Err(); err != nil {
		return nil, body, err
	}
	if fetchErr != nil {
		return nil, body, fmt.Errorf("fetch index: %w", fetchErr)
	}

	h.logger.Debug("harvested index page", zap.String("url", indexURL), zap.Int("links", len(links)))
	return links, body, nil
}
