package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcosevegrand/footwear-promo/internal/config"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

const listingPage = `<html><body>
	<div class="product-card">
		<a href="/p/trail-runner-boot"><img src="boot.jpg"><h3>Trail Runner Boot</h3></a>
		<del>$89.99</del> <span>$59.99</span>
	</div>
	<div class="promo">Up to 40%% off sitewide</div>
	%s
</body></html>`

func newCatalogServer(t *testing.T, robots string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		if robots == "" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, robots)
	})
	mux.HandleFunc("/sale", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Query().Get("page") {
		case "", "1":
			fmt.Fprintf(w, listingPage, `<a rel="next" href="/sale?page=2">Next</a>`)
		case "2":
			fmt.Fprintf(w, listingPage, `<a rel="next" href="/sale?page=3">Next</a>`)
		default:
			http.Error(w, "gone", http.StatusInternalServerError)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestHTTPFetcher(respectRobots bool) *HTTPFetcher {
	requester := NewRequester(config.PoliteConfig{RespectRobotsTxt: respectRobots}, "", 5, quietLogger())
	return NewHTTPFetcher(requester, quietLogger())
}

func TestFetchOptionsPageLimit(t *testing.T) {
	assert.Equal(t, 1, FetchOptions{AutoPaginate: false, MaxPages: 10}.PageLimit())
	assert.Equal(t, 1, FetchOptions{AutoPaginate: true, MaxPages: 0}.PageLimit())
	assert.Equal(t, 5, FetchOptions{AutoPaginate: true, MaxPages: 5}.PageLimit())
}

func TestHTTPFetcherSinglePage(t *testing.T) {
	srv, hits := newCatalogServer(t, "")

	res, err := newTestHTTPFetcher(true).Fetch(context.Background(), srv.URL+"/sale", FetchOptions{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	assert.Equal(t, 1, res.Meta.PagesScraped)
	assert.Equal(t, TypeHTTP, res.Meta.ScraperType)
	assert.Equal(t, len(res.HTML), res.Meta.TotalHTMLLength)
	assert.NotContains(t, res.HTML, "PAGE BREAK")
}

func TestHTTPFetcherPaginates(t *testing.T) {
	srv, hits := newCatalogServer(t, "")

	res, err := newTestHTTPFetcher(false).Fetch(context.Background(), srv.URL+"/sale", FetchOptions{AutoPaginate: true, MaxPages: 2})
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
	assert.Equal(t, 2, res.Meta.PagesScraped)
	assert.Equal(t, 1, strings.Count(res.HTML, PageSeparator))
	assert.Empty(t, res.Meta.Error)
}

func TestHTTPFetcherKeepsPagesBeforeFailure(t *testing.T) {
	srv, _ := newCatalogServer(t, "")

	res, err := newTestHTTPFetcher(false).Fetch(context.Background(), srv.URL+"/sale", FetchOptions{AutoPaginate: true, MaxPages: 5})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Meta.PagesScraped)
	assert.Contains(t, res.Meta.Error, "500")
}

func TestHTTPFetcherLogsProgress(t *testing.T) {
	srv, _ := newCatalogServer(t, "")
	logger, hook := test.NewNullLogger()
	requester := NewRequester(config.PoliteConfig{}, "", 5, logger)

	_, err := NewHTTPFetcher(requester, logger).Fetch(context.Background(), srv.URL+"/sale", FetchOptions{AutoPaginate: true, MaxPages: 5})
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Fetch complete", entry.Message)
	assert.Equal(t, 3, entry.Data["total"])
	assert.Equal(t, 2, entry.Data["scraped"])
	assert.Equal(t, 1, entry.Data["errors"])
}

func TestHTTPFetcherFirstPageFailure(t *testing.T) {
	srv, _ := newCatalogServer(t, "")

	_, err := newTestHTTPFetcher(false).Fetch(context.Background(), srv.URL+"/missing", FetchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestRequesterHonoursRobots(t *testing.T) {
	srv, hits := newCatalogServer(t, "User-agent: *\nDisallow: /sale\n")

	_, err := newTestHTTPFetcher(true).Fetch(context.Background(), srv.URL+"/sale", FetchOptions{})
	assert.ErrorIs(t, err, ErrDisallowed)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestParseRobotsTxt(t *testing.T) {
	rules := parseRobotsTxt(`
# comment
User-agent: Googlebot
Disallow: /google-only

User-agent: *
Disallow: /checkout
Disallow: /account
Crawl-delay: 1.5

User-agent: FootScan
Disallow: /private
`)

	assert.Equal(t, []string{"/checkout", "/account", "/private"}, rules.Disallowed)
	assert.Equal(t, "1.5s", rules.CrawlDelay.String())
}

type fakeFetcher struct {
	result *FetchResult
	err    error
	closed bool
	opts   FetchOptions
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string, opts FetchOptions) (*FetchResult, error) {
	f.opts = opts
	return f.result, f.err
}

func (f *fakeFetcher) Close() error {
	f.closed = true
	return nil
}

func TestAnalyzerAnalyze(t *testing.T) {
	html := fmt.Sprintf(listingPage, "")
	fetcher := &fakeFetcher{result: newFetchResult("https://www.merrell.com/sale", TypeBrowser, []string{html})}
	analyzer := NewAnalyzer(fetcher, nil, quietLogger())

	analysis, err := analyzer.Analyze(context.Background(), "https://www.merrell.com/sale", FetchOptions{AutoPaginate: true, MaxPages: 3})
	require.NoError(t, err)

	assert.NotEmpty(t, analysis.RunID)
	assert.Equal(t, 3, fetcher.opts.MaxPages)
	assert.Equal(t, TypeBrowser, analysis.Meta.ScraperType)
	require.Len(t, analysis.Result.Products, 1)
	assert.Equal(t, "33.3%", analysis.Result.Products[0].Discount)
	assert.Equal(t, []string{"40% Off"}, analysis.Result.Promotions)
	assert.Equal(t, 1, analysis.Summary.OnSale)
	assert.InDelta(t, 100.0, analysis.Summary.PromoIntensity, 0.001)

	report := analysis.Report(true)
	assert.Equal(t, analysis.RunID, report.RunID)
	assert.Len(t, report.Rows, 1)

	require.NoError(t, analyzer.Close())
	assert.True(t, fetcher.closed)
}

func TestAnalyzerErrors(t *testing.T) {
	t.Run("fetch failure", func(t *testing.T) {
		boom := errors.New("browser crashed")
		analyzer := NewAnalyzer(&fakeFetcher{err: boom}, nil, quietLogger())

		_, err := analyzer.Analyze(context.Background(), "https://www.merrell.com/sale", FetchOptions{})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty markup", func(t *testing.T) {
		fetcher := &fakeFetcher{result: &FetchResult{HTML: "  ", Meta: Meta{Error: "timeout"}}}
		analyzer := NewAnalyzer(fetcher, nil, quietLogger())

		_, err := analyzer.Analyze(context.Background(), "https://www.merrell.com/sale", FetchOptions{})
		assert.ErrorIs(t, err, ErrNoContent)
		assert.Contains(t, err.Error(), "timeout")
	})

	t.Run("no fetcher", func(t *testing.T) {
		_, err := NewAnalyzer(nil, nil, quietLogger()).Analyze(context.Background(), "https://x.com", FetchOptions{})
		assert.Error(t, err)
	})
}

func TestAnalyzerAnalyzeHTML(t *testing.T) {
	analyzer := NewAnalyzer(nil, nil, quietLogger())
	page := fmt.Sprintf(listingPage, "")
	html := strings.Join([]string{page, page}, PageSeparator)

	analysis, err := analyzer.AnalyzeHTML(html, "https://www.merrell.com/sale")
	require.NoError(t, err)
	assert.Equal(t, 2, analysis.Meta.PagesScraped)
	assert.Equal(t, "file", analysis.Meta.ScraperType)
	assert.Len(t, analysis.Result.Products, 1, "repeated pages dedupe by name")

	_, err = analyzer.AnalyzeHTML("", "")
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestNewFetcher(t *testing.T) {
	cfg := config.DefaultConfig().Scraping

	cfg.Renderer = TypeHTTP
	f, err := NewFetcher(cfg, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &HTTPFetcher{}, f)

	cfg.Renderer = TypeBrowser
	f, err = NewFetcher(cfg, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &BrowserFetcher{}, f)
	assert.NoError(t, f.Close())

	cfg.Renderer = "curl"
	_, err = NewFetcher(cfg, quietLogger())
	assert.Error(t, err)
}
