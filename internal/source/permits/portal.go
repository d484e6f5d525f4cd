package permits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/config"
)

// ErrPortalDisabled indicates headless portal automation is off in config.
var ErrPortalDisabled = errors.New("portal automation disabled")

// Report viewer selectors. Every county in the market runs the same vendor
// viewer, so these are stable.
const (
	countySelect     = `select#ddlCounty`
	countyAllValue   = "ALL"
	viewReportButton = `#btnViewReport`
	reportTable      = `table#tblPermits`
	nextPageLink     = `#lnkNext`
)

// defaultMaxReportPages bounds the pager walk when the caller passes no
// limit.
const defaultMaxReportPages = 50

// Portal drives the server-rendered permit report viewer with a headless
// browser: reports sit behind form postbacks, not stable URLs.
type Portal struct {
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	sem             chan struct{}
	navTimeout      time.Duration
	userAgent       string
	logger          *zap.Logger
}

// NewPortal starts the shared headless browser. ErrPortalDisabled is
// returned when headless automation is off.
func NewPortal(cfg config.PermitsConfig, userAgent string, logger *zap.Logger) (*Portal, error) {
	if !cfg.HeadlessEnabled {
		return nil, ErrPortalDisabled
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(userAgent),
	)
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		allocatorCancel()
		browserCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Portal{
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		sem:             make(chan struct{}, cfg.HeadlessMaxParallel),
		navTimeout:      time.Duration(cfg.NavTimeoutSeconds) * time.Second,
		userAgent:       userAgent,
		logger:          logger,
	}, nil
}

// Close tears down the browser and allocator contexts. Nil-safe.
func (p *Portal) Close() {
	if p == nil {
		return
	}
	p.browserCancel()
	p.allocatorCancel()
}

// CollectReportPages selects All Counties, opens the report, and walks the
// pager, returning each page's HTML. maxPages <= 0 applies the default
// bound.
func (p *Portal) CollectReportPages(ctx context.Context, portalURL string, maxPages int) ([]string, error) {
	if p == nil {
		return nil, ErrPortalDisabled
	}
	if maxPages <= 0 {
		maxPages = defaultMaxReportPages
	}

	release, err := p.acquireSlot(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	tabCtx, cancelTab := chromedp.NewContext(p.browserCtx)
	defer cancelTab()
	stopForward := forwardCancel(ctx, cancelTab)
	defer stopForward()

	var html string
	if err := p.run(tabCtx, chromedp.Tasks{
		network.Enable(),
		emulation.SetUserAgentOverride(p.userAgent),
		chromedp.Navigate(portalURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.SetValue(countySelect, countyAllValue, chromedp.ByQuery),
		chromedp.Click(viewReportButton, chromedp.ByQuery),
		chromedp.WaitVisible(reportTable, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}); err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}

	pages := []string{html}
	for len(pages) < maxPages {
		var hasNext bool
		if err := p.run(tabCtx, chromedp.Tasks{
			chromedp.Evaluate(hasNextExpr, &hasNext),
		}); err != nil {
			return pages, fmt.Errorf("probe pager: %w", err)
		}
		if !hasNext {
			break
		}

		if err := p.run(tabCtx, chromedp.Tasks{
			chromedp.Click(nextPageLink, chromedp.ByQuery),
			chromedp.WaitVisible(reportTable, chromedp.ByQuery),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		}); err != nil {
			return pages, fmt.Errorf("page %d: %w", len(pages)+1, err)
		}
		pages = append(pages, html)
	}

	p.logger.Info("collected report pages", zap.String("portal", portalURL), zap.Int("pages", len(pages)))
	return pages, nil
}

// hasNextExpr checks the pager link without failing the walk when the
// viewer omits it on the last page.
const hasNextExpr = `(() => { const n = document.querySelector('` + nextPageLink + `'); return n !== null && !n.hasAttribute('disabled'); })()`

// run executes one viewer step under the navigation timeout.
func (p *Portal) run(tabCtx context.Context, tasks chromedp.Tasks) error {
	stepCtx, cancel := context.WithTimeout(tabCtx, p.navTimeout)
	defer cancel()
	return chromedp.Run(stepCtx, tasks)
}

func (p *Portal) acquireSlot(ctx context.Context) (func(), error) {
	select {
	case p.sem <- struct{}{}:
		return func() { <-p.sem }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire portal slot: %w", ctx.Err())
	}
}

// forwardCancel propagates the caller's cancellation into the chromedp tab
// context, which is not derived from it.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
