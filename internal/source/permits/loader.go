package permits

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/config"
	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/policy/ratelimit"
	"github.com/stordev/sitescout/internal/sites"
)

// Loader turns permit reports into rows, by whichever route the county
// publishes them: a direct PDF link, an index page of PDF links, or the
// portal's report viewer.
type Loader struct {
	extractor  TextExtractor
	harvester  *LinkHarvester
	portal     *Portal
	robots     *RobotsGate
	store      sites.PermitStore
	httpClient *http.Client
	limiter    *ratelimit.Window
	userAgent  string
	cfg        config.PermitsConfig
	clock      clockwork.Clock
	logger     *zap.Logger
}

// LoaderConfig wires the permits loader. Portal may be nil when headless
// automation is disabled; Robots may be nil to skip robots enforcement.
type LoaderConfig struct {
	Extractor TextExtractor
	Harvester *LinkHarvester
	Portal    *Portal
	Robots    *RobotsGate
	Store     sites.PermitStore
	Timeout   time.Duration
	UserAgent string
	Permits   config.PermitsConfig
	Clock     clockwork.Clock
	Logger    *zap.Logger
}

// NewLoader returns a permits loader. A nil extractor means the real PDF
// extractor; a nil clock means wall time.
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.Extractor == nil {
		cfg.Extractor = PDFExtractor{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Loader{
		extractor:  cfg.Extractor,
		harvester:  cfg.Harvester,
		portal:     cfg.Portal,
		robots:     cfg.Robots,
		store:      cfg.Store,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    ratelimit.PerMinute("permits", cfg.Permits.RequestsPerMinute),
		userAgent:  cfg.UserAgent,
		cfg:        cfg.Permits,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
	}
}

// LoadPDF downloads one published report and inserts its permits. Fetch
// and parse failures are recorded, not returned; the only errors out of
// here are cancellation.
func (l *Loader) LoadPDF(ctx context.Context, rec *etl.Recorder, pdfURL, county, state string) error {
	if !l.robots.Allowed(ctx, pdfURL) {
		l.logger.Warn("robots disallows report", zap.String("url", pdfURL))
		return nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}

	data, err := l.fetch(ctx, pdfURL)
	rec.CountFetch(len(data), err)
	if len(data) > 0 {
		rec.ArchiveRaw(ctx, reportArchiveName(pdfURL), "application/pdf", data)
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rec.RecordFailure("fetch permit report", err, zap.String("url", pdfURL))
		return nil
	}

	text, err := l.extractor.Extract(data)
	if err != nil {
		rec.RecordFailure("extract permit report", err, zap.String("url", pdfURL))
		return nil
	}

	l.insert(ctx, rec, ParseReport(text, county, state, l.clock.Now().UTC()))
	return nil
}

// LoadIndex harvests an index page and loads every linked report. When
// the page turns out to need a browser and the portal is enabled, the
// portal walk takes over.
func (l *Loader) LoadIndex(ctx context.Context, rec *etl.Recorder, indexURL, county, state string) error {
	links, body, err := l.harvester.Harvest(ctx, indexURL)
	rec.CountFetch(len(body), err)
	if err != nil {
		return err
	}

	if len(links) == 0 && NeedsBrowser(body) {
		if l.portal == nil {
			return errors.New("index page requires a browser and portal automation is disabled")
		}
		l.logger.Info("index page needs a browser, walking the portal", zap.String("url", indexURL))
		return l.LoadPortal(ctx, rec, state)
	}

	for _, link := range links {
		if err := l.LoadPDF(ctx, rec, link, county, state); err != nil {
			return err
		}
	}
	return nil
}

// LoadPortal drives the report viewer across all counties and inserts
// every row. Pages collected before a mid-walk failure still load.
func (l *Loader) LoadPortal(ctx context.Context, rec *etl.Recorder, state string) error {
	pages, walkErr := l.portal.CollectReportPages(ctx, l.cfg.PortalURL, 0)
	now := l.clock.Now().UTC()

	for i, page := range pages {
		rec.CountFetch(len(page), nil)
		rec.ArchiveRaw(ctx, fmt.Sprintf("portal-page-%02d.html", i+1), "text/html", []byte(page))

		permits, err := ParseReportPage(page, state, now)
		if err != nil {
			rec.RecordFailure("parse report page", err, zap.Int("page", i+1))
			continue
		}
		l.insert(ctx, rec, permits)
	}

	if walkErr != nil {
		if len(pages) == 0 {
			return walkErr
		}
		rec.RecordFailure("portal walk ended early", walkErr, zap.Int("pages", len(pages)))
	}
	return nil
}

func (l *Loader) insert(ctx context.Context, rec *etl.Recorder, permits []sites.Permit) {
	for _, p := range permits {
		inserted, err := l.store.Insert(ctx, p)
		if err != nil {
			rec.RecordFailure("insert permit", err, zap.String("permit", p.PermitNumber))
			continue
		}
		rec.CountRow("permits", inserted)
	}
}

func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("report request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return body, fmt.Errorf("report fetch: status %d", resp.StatusCode)
	}
	return body, nil
}

// reportArchiveName keeps the source filename when the URL has one.
func reportArchiveName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || path.Base(parsed.Path) == "/" || path.Base(parsed.Path) == "." {
		return "report.pdf"
	}
	return path.Base(parsed.Path)
}
