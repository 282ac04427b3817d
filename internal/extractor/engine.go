package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/marcosevegrand/footwear-promo/internal/formatter"
	"github.com/marcosevegrand/footwear-promo/internal/navigator"
)

// Extractor runs the full extraction pass over a listing page.
type Extractor struct {
	options  *Options
	locators []NameLocator
	logger   logrus.FieldLogger
}

// NewExtractor creates an extractor. Nil options fall back to DefaultOptions
// and a nil logger to the logrus standard logger.
func NewExtractor(opts *Options, logger logrus.FieldLogger) *Extractor {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Extractor{
		options:  opts,
		locators: DefaultNameLocators(),
		logger:   logger,
	}
}

// SetNameLocators replaces the name strategies, in priority order.
func (e *Extractor) SetNameLocators(locators []NameLocator) {
	e.locators = locators
}

// Extract parses a listing page and returns its products and sitewide
// promotions. Only a document that cannot be read at all is an error.
func (e *Extractor) Extract(rawHTML, sourceURL string) (*Result, error) {
	result := &Result{
		Products:   make([]Product, 0),
		Promotions: make([]string, 0),
	}

	if strings.TrimSpace(rawHTML) == "" {
		result.Warnings = noProductsWarnings()
		return result, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	if e.options.CleanScripts {
		doc.Find("script, style, noscript, template").Remove()
	}

	log := e.logger.WithFields(logrus.Fields{
		"url":    sourceURL,
		"domain": navigator.ExtractDomain(sourceURL),
	})

	candidates, analyzed := FindContainers(doc, e.options)
	result.Stats.ElementsAnalyzed = analyzed
	result.Stats.Containers = len(candidates)

	log.WithFields(logrus.Fields{
		"elements":   analyzed,
		"containers": len(candidates),
	}).Debug("Scored product containers")

	baseURL := navigator.BaseURL(sourceURL)
	brand := brandOrNA(sourceURL)
	seen := make(map[string]bool)

	for _, candidate := range candidates {
		res := e.processContainer(candidate, baseURL, brand, seen)
		switch res.Outcome {
		case OutcomeExtracted:
			result.Products = append(result.Products, *res.Product)
			result.Stats.Extracted++
		case OutcomeFiltered:
			result.Stats.Filtered++
		case OutcomeDuplicate:
			result.Stats.Duplicates++
		case OutcomeFaulted:
			result.Stats.Faulted++
			log.WithError(res.Err).WithField("score", res.Score).Debug("Skipped faulted container")
		}
	}

	if len(result.Products) == 0 {
		log.Info("No products from container scan, falling back to price patterns")
		result.Products = append(result.Products, ExtractFromPricePatterns(doc, sourceURL, e.options)...)
		result.Stats.UsedFallback = true
	}

	result.Promotions = append(result.Promotions, extractSitePromotions(rawHTML, e.options)...)

	for _, p := range result.Products {
		if p.HasSalePrice() {
			result.Stats.WithPrices++
		}
		if p.HasDiscount() {
			result.Stats.WithDiscounts++
		}
	}
	result.Warnings = buildWarnings(result)

	log.WithFields(logrus.Fields{
		"products":   len(result.Products),
		"filtered":   result.Stats.Filtered,
		"duplicates": result.Stats.Duplicates,
		"faulted":    result.Stats.Faulted,
		"fallback":   result.Stats.UsedFallback,
		"promotions": len(result.Promotions),
	}).Info("Extraction complete")

	return result, nil
}

// processContainer extracts one product. Panics from malformed subtrees are
// recovered into OutcomeFaulted so one container never aborts the pass.
func (e *Extractor) processContainer(c Candidate, baseURL, brand string, seen map[string]bool) (res ContainerResult) {
	res.Score = c.Score
	defer func() {
		if r := recover(); r != nil {
			res = ContainerResult{
				Outcome: OutcomeFaulted,
				Score:   c.Score,
				Err:     fmt.Errorf("container panic: %v", r),
			}
		}
	}()

	name, ok := FindName(c.Selection, e.locators)
	name = formatter.CleanName(name)
	if !ok || len([]rune(name)) < e.options.MinNameLength {
		res.Outcome = OutcomeFiltered
		res.Reason = "no-name"
		return res
	}

	if rule := invalidNameRules.First(name, e.options); rule != "" {
		res.Outcome = OutcomeFiltered
		res.Reason = rule
		return res
	}
	if rule := nonFootwearRules.First(name, e.options); rule != "" {
		res.Outcome = OutcomeFiltered
		res.Reason = rule
		return res
	}

	key := formatter.NameKey(name, e.options.NameKeyLength)
	if seen[key] {
		res.Outcome = OutcomeDuplicate
		return res
	}
	seen[key] = true

	original, sale := findPrices(c.Selection, e.options)

	res.Outcome = OutcomeExtracted
	res.Product = &Product{
		Name:          name,
		URL:           FindLink(c.Selection, baseURL),
		OriginalPrice: original,
		SalePrice:     sale,
		Discount:      CalculateDiscount(original, sale),
		Brand:         brand,
		Category:      CategoryFootwear,
	}
	return res
}

func buildWarnings(result *Result) []string {
	if len(result.Products) == 0 {
		return noProductsWarnings()
	}

	rate := float64(result.Stats.WithPrices) / float64(len(result.Products)) * 100
	if rate < 50 {
		return []string{
			fmt.Sprintf("Low price extraction rate (%.1f%%)", rate),
			"Prices may be loaded via JavaScript; increase the page wait time",
			"The site may use a non-standard price format",
			"The page may not be a product listing page",
		}
	}
	return nil
}

func noProductsWarnings() []string {
	return []string{
		"No products found",
		"The site may render its catalog with JavaScript that did not load",
		"Bot detection may be blocking the scraper",
		"The page structure may not be recognized, or no products are listed",
		"Verify the URL is a product listing page, raise max pages, or increase the wait time",
	}
}
