package scraper

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNoContent is returned when a fetch produced no markup at all.
	ErrNoContent = errors.New("no HTML content was captured")
	// ErrDisallowed is returned when robots.txt forbids the target URL.
	ErrDisallowed = errors.New("URL disallowed by robots.txt")
)

// PageSeparator joins the markup of consecutive listing pages.
const PageSeparator = "\n\n<!-- PAGE BREAK -->\n\n"

// Fetcher types reported in Meta.ScraperType.
const (
	TypeBrowser = "browser"
	TypeHTTP    = "http"
)

// FetchOptions controls pagination for a single fetch.
type FetchOptions struct {
	AutoPaginate bool
	MaxPages     int
}

// PageLimit is the number of pages the fetch may visit.
func (o FetchOptions) PageLimit() int {
	if !o.AutoPaginate || o.MaxPages < 1 {
		return 1
	}
	return o.MaxPages
}

// Meta describes how a fetch went.
type Meta struct {
	URL             string `json:"url"`
	PagesScraped    int    `json:"pagesScraped"`
	TotalHTMLLength int    `json:"totalHtmlLength"`
	ScraperType     string `json:"scraperType"`
	Error           string `json:"error,omitempty"`
}

// FetchResult is the combined markup of every page visited.
type FetchResult struct {
	HTML string
	Meta Meta
}

// Fetcher renders a listing URL, following pagination when asked.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts FetchOptions) (*FetchResult, error)
	Close() error
}

func newFetchResult(url, scraperType string, pages []string) *FetchResult {
	html := strings.Join(pages, PageSeparator)
	return &FetchResult{
		HTML: html,
		Meta: Meta{
			URL:             url,
			PagesScraped:    len(pages),
			TotalHTMLLength: len(html),
			ScraperType:     scraperType,
		},
	}
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
