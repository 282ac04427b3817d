package extractor

import (
	"fmt"
	"sort"
	"strconv"
)

// ExtractSitePromotions scans raw markup for sitewide offers: free-shipping
// thresholds, blanket percent-off, clearance and select-styles sales.
func ExtractSitePromotions(rawHTML string) []string {
	return extractSitePromotions(rawHTML, defaultOptions)
}

func extractSitePromotions(rawHTML string, opts *Options) []string {
	var promotions []string
	seen := make(map[string]bool)
	add := func(promo string) {
		if !seen[promo] {
			seen[promo] = true
			promotions = append(promotions, promo)
		}
	}

	for _, match := range freeShippingPattern.FindAllStringSubmatch(rawHTML, -1) {
		add(fmt.Sprintf("Free Shipping: $%s+", match[1]))
	}

	percents := distinctPercents(rawHTML)
	if opts.MaxPercentPromotions >= 0 && len(percents) > opts.MaxPercentPromotions {
		percents = percents[:opts.MaxPercentPromotions]
	}
	for _, p := range percents {
		add(fmt.Sprintf("%d%% Off", p))
	}

	if clearancePattern.MatchString(rawHTML) {
		add("Clearance Available")
	}
	if selectStylesPattern.MatchString(rawHTML) {
		add("Sale on Select Styles")
	}

	if opts.MaxPromotions > 0 && len(promotions) > opts.MaxPromotions {
		promotions = promotions[:opts.MaxPromotions]
	}
	return promotions
}

// distinctPercents returns the percent-off values found, highest first.
func distinctPercents(rawHTML string) []int {
	seen := make(map[int]bool)
	var percents []int
	for _, match := range percentPromoPattern.FindAllStringSubmatch(rawHTML, -1) {
		p, err := strconv.Atoi(match[1])
		if err != nil || seen[p] {
			continue
		}
		seen[p] = true
		percents = append(percents, p)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(percents)))
	return percents
}
