package scraper

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/marcosevegrand/footwear-promo/internal/config"
	"github.com/marcosevegrand/footwear-promo/internal/navigator"
)

const (
	retryPause     = 5 * time.Second
	scrollPause    = 1 * time.Second
	settlePause    = 2 * time.Second
	afterClickWait = 4 * time.Second
)

var systemChromiumPaths = []string{
	"/usr/bin/chromium-browser",
	"/usr/bin/chromium",
}

// BrowserFetcher renders listing pages in headless Chromium so that
// script-rendered catalogs are captured.
type BrowserFetcher struct {
	cfg     config.ScrapingConfig
	logger  logrus.FieldLogger
	limiter *rate.Limiter

	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowserFetcher creates a fetcher. The browser starts on first use.
func NewBrowserFetcher(cfg config.ScrapingConfig, logger logrus.FieldLogger) *BrowserFetcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &BrowserFetcher{
		cfg:     cfg,
		logger:  logger,
		limiter: newLimiter(cfg.Polite.DelayMS),
	}
}

func (b *BrowserFetcher) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false).
		Set("disable-blink-features", "AutomationControlled")

	if bin := b.browserBin(); bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	b.browser = browser
	return browser, nil
}

func (b *BrowserFetcher) browserBin() string {
	if b.cfg.BrowserBin != "" {
		return b.cfg.BrowserBin
	}
	for _, p := range systemChromiumPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Fetch renders url and, when asked, clicks through the following pages.
// A failure after the first page returns the pages captured so far.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string, opts FetchOptions) (*FetchResult, error) {
	browser, err := b.connect()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if b.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.cfg.UserAgent}); err != nil {
			b.logger.WithError(err).Warn("Failed to set user agent")
		}
	}

	limit := opts.PageLimit()
	var pages []string
	var pageErr error
	currentURL := url

	for pageNum := 1; pageNum <= limit; pageNum++ {
		log := b.logger.WithFields(logrus.Fields{
			"page": pageNum,
			"of":   limit,
			"url":  currentURL,
		})

		html, err := b.capture(ctx, page, currentURL, pageNum == 1, log)
		if err != nil {
			if len(pages) == 0 {
				return nil, err
			}
			log.WithError(err).Warn("Stopping pagination after page error")
			pageErr = err
			break
		}
		pages = append(pages, html)
		log.WithField("bytes", len(html)).Info("Page captured")

		if pageNum == limit {
			break
		}

		nextURL, found, err := b.clickNext(ctx, page)
		if err != nil {
			pageErr = err
			break
		}
		if !found {
			log.Info("No more pages found")
			break
		}
		currentURL = nextURL
	}

	result := newFetchResult(url, TypeBrowser, pages)
	if pageErr != nil {
		result.Meta.Error = pageErr.Error()
	}
	return result, nil
}

// capture loads the page (navigating only when asked), lets lazy content
// settle and returns the rendered markup.
func (b *BrowserFetcher) capture(ctx context.Context, page *rod.Page, url string, navigate bool, log logrus.FieldLogger) (string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", err
	}

	if navigate {
		if err := b.navigateWithRetry(ctx, page, url, log); err != nil {
			return "", err
		}
	}

	if err := sleepCtx(ctx, time.Duration(b.cfg.PageWaitMS)*time.Millisecond); err != nil {
		return "", err
	}

	if _, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight / 2)`); err != nil {
		log.WithError(err).Debug("Scroll failed")
	}
	if err := sleepCtx(ctx, scrollPause); err != nil {
		return "", err
	}
	if _, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		log.WithError(err).Debug("Scroll failed")
	}
	if err := sleepCtx(ctx, settlePause); err != nil {
		return "", err
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page HTML: %w", err)
	}
	return html, nil
}

func (b *BrowserFetcher) navigateWithRetry(ctx context.Context, page *rod.Page, url string, log logrus.FieldLogger) error {
	attempts := b.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	timeout := time.Duration(b.cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		p := page.Timeout(timeout)
		err := p.Navigate(url)
		if err == nil {
			err = p.WaitLoad()
		}
		if err == nil {
			return nil
		}

		lastErr = err
		log.WithError(err).WithField("attempt", attempt).Warn("Page load failed")
		if attempt < attempts {
			if err := sleepCtx(ctx, retryPause); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("failed to load %s after %d attempts: %w", url, attempts, lastErr)
}

// clickNext clicks the first enabled, visible pagination control and
// returns the URL the page ends up on.
func (b *BrowserFetcher) clickNext(ctx context.Context, page *rod.Page) (string, bool, error) {
	for _, selector := range navigator.NextPageSelectors {
		elements, err := page.Elements(selector)
		if err != nil {
			continue
		}

		for _, el := range elements {
			if visible, err := el.Visible(); err != nil || !visible {
				continue
			}
			if isDisabledElement(el) {
				continue
			}
			if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
				b.logger.WithError(err).WithField("selector", selector).Debug("Next click failed")
				continue
			}

			if err := sleepCtx(ctx, afterClickWait); err != nil {
				return "", false, err
			}
			_ = page.Timeout(30 * time.Second).WaitLoad()

			info, err := page.Info()
			if err != nil {
				return "", false, fmt.Errorf("failed to read page info: %w", err)
			}
			return info.URL, true, nil
		}
	}
	return "", false, nil
}

func isDisabledElement(el *rod.Element) bool {
	attr := func(name string) string {
		v, err := el.Attribute(name)
		if err != nil || v == nil {
			return ""
		}
		return *v
	}
	return navigator.IsDisabledControl(attr("class"), attr("aria-disabled"))
}

// Close shuts the browser down if it was started.
func (b *BrowserFetcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	return err
}
