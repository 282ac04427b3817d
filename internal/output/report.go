// Package output turns extraction results into tabular reports and files.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"github.com/marcosevegrand/footwear-promo/internal/extractor"
	"github.com/marcosevegrand/footwear-promo/internal/formatter"
)

// Headers are the column names of every tabular export.
var Headers = []string{
	"Product Name",
	"Product URL",
	"Original Price",
	"Sale Price",
	"Discount %",
	"Brand",
	"Category",
}

// Row is one product flattened for display and export.
type Row struct {
	ProductName   string `json:"productName"`
	ProductURL    string `json:"productUrl"`
	OriginalPrice string `json:"originalPrice"`
	SalePrice     string `json:"salePrice"`
	Discount      string `json:"discount"`
	Brand         string `json:"brand"`
	Category      string `json:"category"`
}

// Values returns the row in Headers order.
func (r Row) Values() []string {
	return []string{
		r.ProductName,
		r.ProductURL,
		r.OriginalPrice,
		r.SalePrice,
		r.Discount,
		r.Brand,
		r.Category,
	}
}

// NewRow flattens a product, rendering absent values as N/A.
func NewRow(p extractor.Product) Row {
	url := p.URL
	if url == "" {
		url = formatter.NotAvailable
	}
	discount := p.Discount
	if discount == "" {
		discount = formatter.NotAvailable
	}
	return Row{
		ProductName:   p.Name,
		ProductURL:    url,
		OriginalPrice: formatter.FormatPrice(p.OriginalPrice),
		SalePrice:     formatter.FormatPrice(p.SalePrice),
		Discount:      discount,
		Brand:         p.Brand,
		Category:      p.Category,
	}
}

// IsOnSale reports whether a product carries a non-zero discount.
func IsOnSale(p extractor.Product) bool {
	d, ok := formatter.ParsePercent(p.Discount)
	return ok && d > 0
}

// Rows flattens products, optionally keeping only those on sale.
func Rows(products []extractor.Product, onSaleOnly bool) []Row {
	rows := make([]Row, 0, len(products))
	for _, p := range products {
		if onSaleOnly && !IsOnSale(p) {
			continue
		}
		rows = append(rows, NewRow(p))
	}
	return rows
}

// Summary holds the key promotion metrics of a product list.
type Summary struct {
	TotalProducts   int     `json:"totalProducts"`
	OnSale          int     `json:"onSale"`
	WithPrices      int     `json:"withPrices"`
	PromoIntensity  float64 `json:"promoIntensity"`
	AverageDiscount float64 `json:"averageDiscount"`
}

// Summarize computes on-sale count, promotional intensity (share of products
// on sale) and the mean discount over on-sale products.
func Summarize(products []extractor.Product) Summary {
	s := Summary{TotalProducts: len(products)}

	var discountSum float64
	for _, p := range products {
		if p.HasSalePrice() {
			s.WithPrices++
		}
		if d, ok := formatter.ParsePercent(p.Discount); ok && d > 0 {
			s.OnSale++
			discountSum += d
		}
	}

	if s.TotalProducts > 0 {
		s.PromoIntensity = float64(s.OnSale) / float64(s.TotalProducts) * 100
	}
	if s.OnSale > 0 {
		s.AverageDiscount = discountSum / float64(s.OnSale)
	}
	return s
}

// Metrics returns the summary as display label/value pairs.
func (s Summary) Metrics() [][2]string {
	return [][2]string{
		{"Total Products", fmt.Sprintf("%d", s.TotalProducts)},
		{"On Sale", fmt.Sprintf("%d", s.OnSale)},
		{"Promotional Intensity", formatter.FormatPercent(s.PromoIntensity)},
		{"Average Discount", formatter.FormatPercent(s.AverageDiscount)},
	}
}

// Report is a complete, exportable analysis of one listing.
type Report struct {
	RunID       string          `json:"runId"`
	URL         string          `json:"url"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Promotions  []string        `json:"promotions"`
	Summary     Summary         `json:"summary"`
	Rows        []Row           `json:"products"`
	Stats       extractor.Stats `json:"stats"`
	Warnings    []string        `json:"warnings,omitempty"`
}

// NewReport builds a report. The summary always covers every product;
// onSaleOnly only filters the rows.
func NewReport(runID, url string, result *extractor.Result, onSaleOnly bool) *Report {
	if runID == "" {
		runID = GenerateRunID()
	}
	return &Report{
		RunID:       runID,
		URL:         url,
		GeneratedAt: time.Now(),
		Promotions:  result.Promotions,
		Summary:     Summarize(result.Products),
		Rows:        Rows(result.Products, onSaleOnly),
		Stats:       result.Stats,
		Warnings:    result.Warnings,
	}
}

// GenerateRunID returns a fresh identifier for an analysis run.
func GenerateRunID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return id.String()
}

// Filename returns the export file name for a run started at t.
func Filename(ext string, t time.Time) string {
	return fmt.Sprintf("footwear_analysis_%s.%s", t.Format("20060102_150405"), strings.TrimPrefix(ext, "."))
}

// FormatFileSize formats a file size in bytes to human-readable format
func FormatFileSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
