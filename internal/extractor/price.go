package extractor

import (
	"fmt"
	"strconv"
	"strings"
)

var defaultOptions = DefaultOptions()

// ExtractPrice converts a free-form text fragment into a plausible footwear
// price. The second return value is false when the text carries no price.
func ExtractPrice(text string) (float64, bool) {
	return extractPrice(text, defaultOptions)
}

func extractPrice(text string, opts *Options) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	hasCurrency := containsAny(text, currencySymbols)

	// A bare percentage is a discount label.
	if strings.Contains(text, "%") && !hasCurrency {
		return 0, false
	}

	if !hasCurrency && containsAny(strings.ToLower(text), priceNoiseWords) {
		return 0, false
	}

	for _, re := range pricePatterns {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			price, err := parseAmount(match[1])
			if err != nil {
				continue
			}
			if opts.inRange(price) {
				return price, true
			}
		}
	}

	return 0, false
}

func parseAmount(raw string) (float64, error) {
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.ReplaceAll(raw, " ", "")
	return strconv.ParseFloat(raw, 64)
}

// IsPromotionalText reports whether a short fragment is a discount-amount
// banner such as "$10 Off" rather than a price.
func IsPromotionalText(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return false
	}
	for _, re := range promotionalPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// CalculateDiscount returns the discount as a one-decimal percentage string,
// or NotAvailable unless original > sale > 0.
func CalculateDiscount(original, sale float64) string {
	if original > sale && sale > 0 {
		discount := (original - sale) / original * 100
		return fmt.Sprintf("%.1f%%", discount)
	}
	return NotAvailable
}

// resolvePrices applies the strikethrough/minimum resolution to the
// collected candidates. A zero return value means absent.
func resolvePrices(strikethrough float64, others []float64) (original, sale float64) {
	if strikethrough > 0 {
		if len(others) == 0 {
			return 0, strikethrough
		}
		sale = minOf(others)
		// A reference price must exceed what is payable.
		if strikethrough <= sale {
			return 0, sale
		}
		return strikethrough, sale
	}

	switch len(others) {
	case 0:
		return 0, 0
	case 1:
		return 0, others[0]
	default:
		return maxOf(others), minOf(others)
	}
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
