package extractor

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/marcosevegrand/footwear-promo/internal/navigator"
)

// ExtractFromPricePatterns is the fallback for script-rendered catalogs where
// listings carry no structural markers. Every link whose parent shows one or
// more prices becomes a product. Links whose parents show the same price set
// collapse into one product.
func ExtractFromPricePatterns(doc *goquery.Document, sourceURL string, opts *Options) []Product {
	if opts == nil {
		opts = defaultOptions
	}

	baseURL := navigator.BaseURL(sourceURL)
	if baseURL == "" {
		baseURL = sourceURL
	}
	brand := brandOrNA(sourceURL)

	var products []Product
	seenPriceSets := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if containsAny(strings.ToLower(href), skippedHrefMarkers) {
			return
		}

		container := link.Parent()
		if container.Length() == 0 {
			return
		}

		prices := fallbackPrices(joinedText(container.Nodes[0], " "), opts)
		if len(prices) == 0 {
			return
		}

		key := priceSetKey(prices)
		if seenPriceSets[key] {
			return
		}
		seenPriceSets[key] = true

		var original, sale float64
		if len(prices) >= 2 {
			sale, original = prices[0], prices[len(prices)-1]
		} else {
			sale = prices[0]
		}

		products = append(products, Product{
			Name:          fallbackName(link, container, href, sourceURL, sale),
			URL:           navigator.ResolveRelativeURL(baseURL, href),
			OriginalPrice: original,
			SalePrice:     sale,
			Discount:      CalculateDiscount(original, sale),
			Brand:         brand,
			Category:      CategoryFootwear,
		})
	})

	return products
}

// fallbackPrices returns the distinct in-range prices of a text, ascending.
func fallbackPrices(text string, opts *Options) []float64 {
	seen := make(map[float64]bool)
	var prices []float64
	for _, re := range fallbackPricePatterns {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			price, err := parseAmount(match[1])
			if err != nil || !opts.inRange(price) || seen[price] {
				continue
			}
			seen[price] = true
			prices = append(prices, price)
		}
	}
	sort.Float64s(prices)
	return prices
}

func priceSetKey(prices []float64) string {
	parts := make([]string, len(prices))
	for i, p := range prices {
		parts[i] = fmt.Sprintf("%.2f", p)
	}
	return strings.Join(parts, "|")
}

func fallbackName(link, container *goquery.Selection, href, sourceURL string, sale float64) string {
	linkText := elementText(link)
	if n := utf8.RuneCountInString(linkText); n > 5 && n < 200 && !numericLinkText.MatchString(linkText) {
		return linkText
	}

	// A slug name, however short, rules out the heading lookup.
	name := navigator.NameFromPath(href)
	if name == "" {
		name = headingName(container)
	}
	if utf8.RuneCountInString(name) >= 5 {
		return name
	}

	code := navigator.BrandCode(sourceURL)
	if code == "" {
		code = "Product"
	}
	return fmt.Sprintf("%s Footwear - $%.2f", code, sale)
}

func headingName(container *goquery.Selection) string {
	for _, tag := range []string{"h2", "h3", "h4"} {
		heading := container.Find(tag).First()
		if heading.Length() == 0 {
			continue
		}
		if text := elementText(heading); lengthBetween(text, 6, 99) {
			return text
		}
	}
	return ""
}

// joinedText concatenates the trimmed text nodes under n with sep.
func joinedText(n *html.Node, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, sep)
}

func brandOrNA(sourceURL string) string {
	if brand := navigator.BrandFromURL(sourceURL); brand != "" {
		return brand
	}
	return NotAvailable
}
