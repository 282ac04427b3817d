// Package extractor provides the heuristic product extraction engine for
// footwear listing pages.
package extractor

import (
	"errors"
	"fmt"
)

// ErrUnparseable is returned when a document cannot be read as markup at all.
var ErrUnparseable = errors.New("document could not be parsed as HTML")

const (
	// NotAvailable marks a price or discount that could not be determined.
	NotAvailable = "N/A"
	// CategoryFootwear is the only category this engine produces.
	CategoryFootwear = "Footwear"
)

// Product is a single extracted listing. A zero price means absent.
type Product struct {
	Name          string  `json:"name"`
	URL           string  `json:"url"`
	OriginalPrice float64 `json:"originalPrice,omitempty"`
	SalePrice     float64 `json:"salePrice,omitempty"`
	Discount      string  `json:"discount"`
	Brand         string  `json:"brand"`
	Category      string  `json:"category"`
}

// HasSalePrice reports whether a payable price was found.
func (p Product) HasSalePrice() bool {
	return p.SalePrice > 0
}

// HasDiscount reports whether a discount percentage could be computed.
func (p Product) HasDiscount() bool {
	return p.Discount != "" && p.Discount != NotAvailable
}

// Outcome classifies what happened to a single candidate container.
type Outcome int

const (
	OutcomeExtracted Outcome = iota
	OutcomeFiltered
	OutcomeDuplicate
	OutcomeFaulted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExtracted:
		return "extracted"
	case OutcomeFiltered:
		return "filtered"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ContainerResult is the per-container result aggregated by the Extractor.
type ContainerResult struct {
	Outcome Outcome
	Score   int
	Product *Product
	Reason  string
	Err     error
}

// Stats summarizes a single extraction pass.
type Stats struct {
	ElementsAnalyzed int  `json:"elementsAnalyzed"`
	Containers       int  `json:"containers"`
	Extracted        int  `json:"extracted"`
	Filtered         int  `json:"filtered"`
	Duplicates       int  `json:"duplicates"`
	Faulted          int  `json:"faulted"`
	WithPrices       int  `json:"withPrices"`
	WithDiscounts    int  `json:"withDiscounts"`
	UsedFallback     bool `json:"usedFallback"`
}

// Result is the terminal output of Extract.
type Result struct {
	Products   []Product `json:"products"`
	Promotions []string  `json:"promotions"`
	Stats      Stats     `json:"stats"`
	Warnings   []string  `json:"warnings,omitempty"`
}

// Options holds the tunable thresholds of the engine.
type Options struct {
	MinContainerScore    int
	MaxContainers        int
	PriceWordRatio       float64
	MinAlphaRatio        float64
	MinPrice             float64
	MaxPrice             float64
	NameKeyLength        int
	MinNameLength        int
	MaxPromotions        int
	MaxPercentPromotions int
	CleanScripts         bool
}

// DefaultOptions returns the thresholds the heuristics were tuned with.
func DefaultOptions() *Options {
	return &Options{
		MinContainerScore:    5,
		MaxContainers:        300,
		PriceWordRatio:       0.6,
		MinAlphaRatio:        0.3,
		MinPrice:             5,
		MaxPrice:             2000,
		NameKeyLength:        100,
		MinNameLength:        5,
		MaxPromotions:        10,
		MaxPercentPromotions: 3,
		CleanScripts:         true,
	}
}

func (o *Options) inRange(price float64) bool {
	return price >= o.MinPrice && price <= o.MaxPrice
}
