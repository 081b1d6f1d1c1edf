package airbnb

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"airbnb-price-analyzer/models"
	"airbnb-price-analyzer/scraper"
	"airbnb-price-analyzer/utils"
)

// ChromeProvider renders result pages in a headless Chrome. Every session
// is a separate browser process.
type ChromeProvider struct {
	opts   Options
	logger *utils.Logger
}

func NewChromeProvider(opts Options, logger *utils.Logger) *ChromeProvider {
	return &ChromeProvider{opts: opts, logger: logger}
}

func (p *ChromeProvider) OpenSession(ctx context.Context) (scraper.Session, error) {
	chromeBin := p.opts.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	p.logger.Debug("[chrome] Using browser binary: %q", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", p.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1366, 768),
		chromedp.UserAgent(p.opts.UserAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// An empty Run starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &chromeSession{
		opts:        p.opts,
		logger:      p.logger,
		retry:       p.opts.retry(p.logger),
		browserCtx:  browserCtx,
		cancelAlloc: cancelAlloc,
	}, nil
}

type chromeSession struct {
	opts        Options
	logger      *utils.Logger
	retry       *utils.RetryConfig
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
}

func (s *chromeSession) Search(ctx context.Context, city string, dr models.DateRange) ([]models.RawListing, error) {
	target := SearchURL(s.opts.BaseURL, city, dr)
	s.logger.Info("[chrome] %s: loading %s", city, target)

	var html string
	err := s.retry.Do(ctx, "search "+city, func(ctx context.Context) error {
		tabCtx, cancel := chromedp.NewContext(s.browserCtx)
		defer cancel()
		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.opts.PageTimeout)
		defer cancelTimeout()

		// Stop the tab as soon as the city is cancelled.
		stop := context.AfterFunc(ctx, cancelTimeout)
		defer stop()

		return chromedp.Run(tabCtx, s.loadResults(target, &html)...)
	})
	if err != nil {
		return nil, err
	}

	cards, err := ParseCards(html, s.opts.BaseURL, s.opts.MaxListings)
	if err != nil {
		return nil, err
	}
	s.logger.Info("[chrome] %s: %d cards", city, len(cards))
	return cards, nil
}

func (s *chromeSession) loadResults(target string, html *string) []chromedp.Action {
	actions := []chromedp.Action{network.Enable()}
	if s.opts.AcceptLanguage != "" {
		actions = append(actions, network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": s.opts.AcceptLanguage,
		}))
	}
	return append(actions,
		chromedp.Navigate(target),
		chromedp.Sleep(s.opts.PageSettle),
		// Lazy cards only render once scrolled into view
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 2)`, nil),
		chromedp.Sleep(time.Second),
		chromedp.OuterHTML("html", html, chromedp.ByQuery),
	)
}

func (s *chromeSession) Close() error {
	err := chromedp.Cancel(s.browserCtx)
	s.cancelAlloc()
	return err
}

// findChromeBinary locates a Chrome/Chromium binary. An empty result lets
// chromedp fall back to its own lookup.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}
	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	for _, p := range []string{"/snap/bin/chromium", "/opt/google/chrome/google-chrome"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
