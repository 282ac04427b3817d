package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcosevegrand/footwear-promo/internal/extractor"
	"github.com/marcosevegrand/footwear-promo/internal/scraper"
)

const cardMarkup = `<div class="product-card">
	<a href="/p/trail-runner-boot"><h3>Trail Runner Boot</h3></a>
	<del>$89.99</del> <span>$59.99</span>
</div>`

type fakeAnalyzer struct {
	err      error
	url      string
	opts     scraper.FetchOptions
	delegate *scraper.Analyzer
}

func (f *fakeAnalyzer) Analyze(_ context.Context, url string, opts scraper.FetchOptions) (*scraper.Analysis, error) {
	f.url = url
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	analysis, err := f.delegate.AnalyzeHTML(cardMarkup, url)
	if err != nil {
		return nil, err
	}
	analysis.Meta = scraper.Meta{URL: url, PagesScraped: 2, ScraperType: scraper.TypeHTTP}
	return analysis, nil
}

func (f *fakeAnalyzer) AnalyzeHTML(html, sourceURL string) (*scraper.Analysis, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.delegate.AnalyzeHTML(html, sourceURL)
}

func newTestServer(t *testing.T, fake *fakeAnalyzer) http.Handler {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	fake.delegate = scraper.NewAnalyzer(nil, nil, logger)
	return NewRouter(NewHandler(fake, 10, logger), []string{"*"})
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHealth(t *testing.T) {
	rec, body := do(t, newTestServer(t, &fakeAnalyzer{}), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestExtract(t *testing.T) {
	h := newTestServer(t, &fakeAnalyzer{})
	payload, err := json.Marshal(extractRequest{HTML: cardMarkup, SourceURL: "https://www.merrell.com/sale"})
	require.NoError(t, err)

	rec, body := do(t, h, http.MethodPost, "/api/v1/extract", string(payload))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotEmpty(t, body["runId"])
	assert.NotContains(t, body, "meta")
	products := body["products"].([]interface{})
	require.Len(t, products, 1)
	product := products[0].(map[string]interface{})
	assert.Equal(t, "Trail Runner Boot", product["name"])
	assert.Equal(t, "33.3%", product["discount"])
	assert.Equal(t, []interface{}{}, body["warnings"])

	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["onSale"])
}

func TestExtractRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"html":`, http.StatusBadRequest},
		{"missing html", `{"sourceUrl":"https://www.merrell.com"}`, http.StatusBadRequest},
		{"whitespace only", `{"html":"   "}`, http.StatusUnprocessableEntity},
	}

	h := newTestServer(t, &fakeAnalyzer{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, h, http.MethodPost, "/api/v1/extract", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAnalyze(t *testing.T) {
	fake := &fakeAnalyzer{}
	h := newTestServer(t, fake)

	rec, body := do(t, h, http.MethodPost, "/api/v1/analyze", `{"url":" https://www.merrell.com/sale ","maxPages":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "https://www.merrell.com/sale", fake.url)
	assert.True(t, fake.opts.AutoPaginate)
	assert.Equal(t, 3, fake.opts.MaxPages)

	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["pagesScraped"])
	assert.Len(t, body["products"], 1)
}

func TestAnalyzeMaxPages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"unset uses default", `{"url":"https://www.merrell.com/sale"}`, 10},
		{"above limit", `{"url":"https://www.merrell.com/sale","maxPages":50}`, MaxPagesLimit},
		{"negative", `{"url":"https://www.merrell.com/sale","maxPages":-4}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAnalyzer{}
			rec, _ := do(t, newTestServer(t, fake), http.MethodPost, "/api/v1/analyze", tt.body)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, fake.opts.MaxPages)
		})
	}

	fake := &fakeAnalyzer{}
	do(t, newTestServer(t, fake), http.MethodPost, "/api/v1/analyze", `{"url":"https://www.merrell.com/sale","autoPaginate":false}`)
	assert.False(t, fake.opts.AutoPaginate)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		body   string
		status int
	}{
		{"invalid url", nil, `{"url":"merrell"}`, http.StatusBadRequest},
		{"no content", fmt.Errorf("%w from x", scraper.ErrNoContent), `{"url":"https://www.merrell.com/sale"}`, http.StatusUnprocessableEntity},
		{"unparseable", fmt.Errorf("extraction failed: %w", extractor.ErrUnparseable), `{"url":"https://www.merrell.com/sale"}`, http.StatusUnprocessableEntity},
		{"fetch failure", errors.New("fetch failed: timeout"), `{"url":"https://www.merrell.com/sale"}`, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, newTestServer(t, &fakeAnalyzer{err: tt.err}), http.MethodPost, "/api/v1/analyze", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRouting(t *testing.T) {
	h := newTestServer(t, &fakeAnalyzer{})

	rec, _ := do(t, h, http.MethodGet, "/api/v1/extract", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/v2/extract", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	fake := &fakeAnalyzer{delegate: scraper.NewAnalyzer(nil, nil, logger)}
	h := NewRouter(NewHandler(fake, 10, logger), nil)

	rec, _ := do(t, h, http.MethodGet, "/api/v1/analyze", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "API request", entry.Message)
	assert.Equal(t, "/api/v1/analyze", entry.Data["path"])
	assert.Equal(t, http.StatusMethodNotAllowed, entry.Data["status"])

	hook.Reset()
	do(t, h, http.MethodGet, "/health", "")
	assert.Empty(t, hook.AllEntries())
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, &fakeAnalyzer{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestClampPages(t *testing.T) {
	h := NewHandler(nil, 0, nil)
	assert.Equal(t, 1, h.clampPages(0))
	assert.Equal(t, 7, h.clampPages(7))
	assert.Equal(t, MaxPagesLimit, h.clampPages(21))
}
