package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marcosevegrand/footwear-promo/internal/config"
	"github.com/marcosevegrand/footwear-promo/internal/extractor"
	"github.com/marcosevegrand/footwear-promo/internal/output"
)

// Analysis is the outcome of fetching and extracting one listing.
type Analysis struct {
	RunID     string            `json:"runId"`
	URL       string            `json:"url"`
	Meta      Meta              `json:"meta"`
	Result    *extractor.Result `json:"result"`
	Summary   output.Summary    `json:"summary"`
	StartedAt time.Time         `json:"startedAt"`
	Duration  time.Duration     `json:"duration"`
}

// Report converts the analysis into an exportable report.
func (a *Analysis) Report(onSaleOnly bool) *output.Report {
	r := output.NewReport(a.RunID, a.URL, a.Result, onSaleOnly)
	r.GeneratedAt = a.StartedAt
	return r
}

// Analyzer orchestrates fetch and extraction.
type Analyzer struct {
	fetcher   Fetcher
	extractor *extractor.Extractor
	logger    logrus.FieldLogger
}

// NewAnalyzer creates an analyzer. The fetcher may be nil when only
// AnalyzeHTML is used.
func NewAnalyzer(fetcher Fetcher, ex *extractor.Extractor, logger logrus.FieldLogger) *Analyzer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if ex == nil {
		ex = extractor.NewExtractor(nil, logger)
	}
	return &Analyzer{
		fetcher:   fetcher,
		extractor: ex,
		logger:    logger,
	}
}

// NewFetcher builds the fetcher named by cfg.Renderer.
func NewFetcher(cfg config.ScrapingConfig, logger logrus.FieldLogger) (Fetcher, error) {
	switch cfg.Renderer {
	case TypeBrowser:
		return NewBrowserFetcher(cfg, logger), nil
	case TypeHTTP:
		requester := NewRequester(cfg.Polite, cfg.UserAgent, cfg.Timeout, logger)
		return NewHTTPFetcher(requester, logger), nil
	default:
		return nil, fmt.Errorf("unknown renderer: %s", cfg.Renderer)
	}
}

// Analyze fetches url (following pagination per opts) and extracts it.
func (a *Analyzer) Analyze(ctx context.Context, url string, opts FetchOptions) (*Analysis, error) {
	if a.fetcher == nil {
		return nil, fmt.Errorf("analyzer has no fetcher")
	}

	started := time.Now()
	runID := output.GenerateRunID()
	log := a.logger.WithFields(logrus.Fields{
		"run": runID,
		"url": url,
	})
	log.WithFields(logrus.Fields{
		"autoPaginate": opts.AutoPaginate,
		"maxPages":     opts.PageLimit(),
	}).Info("Starting analysis")

	fetched, err := a.fetcher.Fetch(ctx, url, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	if strings.TrimSpace(fetched.HTML) == "" {
		if fetched.Meta.Error != "" {
			return nil, fmt.Errorf("%w from %s: %s", ErrNoContent, url, fetched.Meta.Error)
		}
		return nil, fmt.Errorf("%w from %s", ErrNoContent, url)
	}

	analysis, err := a.extract(runID, fetched.HTML, url, started)
	if err != nil {
		return nil, err
	}
	analysis.Meta = fetched.Meta

	log.WithFields(logrus.Fields{
		"pages":    fetched.Meta.PagesScraped,
		"products": analysis.Summary.TotalProducts,
		"onSale":   analysis.Summary.OnSale,
		"elapsed":  analysis.Duration.String(),
	}).Info("Analysis complete")

	return analysis, nil
}

// AnalyzeHTML extracts already captured markup, e.g. a saved page.
func (a *Analyzer) AnalyzeHTML(html, sourceURL string) (*Analysis, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrNoContent
	}

	analysis, err := a.extract(output.GenerateRunID(), html, sourceURL, time.Now())
	if err != nil {
		return nil, err
	}
	analysis.Meta = Meta{
		URL:             sourceURL,
		PagesScraped:    strings.Count(html, strings.TrimSpace(PageSeparator)) + 1,
		TotalHTMLLength: len(html),
		ScraperType:     "file",
	}
	return analysis, nil
}

func (a *Analyzer) extract(runID, html, url string, started time.Time) (*Analysis, error) {
	result, err := a.extractor.Extract(html, url)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	return &Analysis{
		RunID:     runID,
		URL:       url,
		Result:    result,
		Summary:   output.Summarize(result.Products),
		StartedAt: started,
		Duration:  time.Since(started),
	}, nil
}

// Close releases the fetcher.
func (a *Analyzer) Close() error {
	if a.fetcher == nil {
		return nil
	}
	return a.fetcher.Close()
}
