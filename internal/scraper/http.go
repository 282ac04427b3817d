package scraper

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/marcosevegrand/footwear-promo/internal/navigator"
)

// HTTPFetcher fetches static markup without running scripts. Pagination
// follows next-page links found in each document.
type HTTPFetcher struct {
	requester *Requester
	logger    logrus.FieldLogger
}

// NewHTTPFetcher creates a static fetcher around a Requester.
func NewHTTPFetcher(requester *Requester, logger logrus.FieldLogger) *HTTPFetcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HTTPFetcher{requester: requester, logger: logger}
}

// Fetch retrieves url and, when asked, the pages after it. A failure after
// the first page stops the crawl and returns what was captured.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, opts FetchOptions) (*FetchResult, error) {
	nav := navigator.NewPageNavigator(opts.PageLimit())
	var pages []string
	var pageErr error

	currentURL := url
	for nav.HasCapacity() {
		index := nav.AddPage(currentURL)
		log := f.logger.WithFields(logrus.Fields{
			"page": index,
			"url":  currentURL,
		})

		body, err := f.requester.Fetch(ctx, currentURL)
		if err != nil {
			nav.UpdatePageStatus(index, navigator.StatusError)
			if len(pages) == 0 {
				return nil, fmt.Errorf("failed to fetch %s: %w", currentURL, err)
			}
			log.WithError(err).Warn("Stopping pagination after page error")
			pageErr = err
			break
		}

		pages = append(pages, string(body))
		nav.UpdatePageStatus(index, navigator.StatusScraped)
		log.WithField("bytes", len(body)).Info("Page captured")

		if !nav.HasCapacity() {
			break
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			break
		}
		nextURL, found := nav.FindNextPageLink(doc, currentURL)
		if !found {
			log.Debug("No further pages found")
			break
		}
		currentURL = nextURL
	}

	result := newFetchResult(url, TypeHTTP, pages)
	if pageErr != nil {
		result.Meta.Error = pageErr.Error()
	}

	total, scraped, failed := nav.GetProgress()
	f.logger.WithFields(logrus.Fields{
		"url":     url,
		"total":   total,
		"scraped": scraped,
		"errors":  failed,
		"bytes":   result.Meta.TotalHTMLLength,
	}).Info("Fetch complete")

	return result, nil
}

// Close is a no-op; the static fetcher holds no resources.
func (f *HTTPFetcher) Close() error {
	return nil
}
