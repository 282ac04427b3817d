package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/marcosevegrand/footwear-promo/internal/formatter"
	"github.com/marcosevegrand/footwear-promo/internal/navigator"
)

// NameLocator is one strategy for finding a product name inside a container.
type NameLocator interface {
	Name() string
	Locate(container *goquery.Selection) (string, bool)
}

// ClassNameLocator looks for elements whose class reads like a product name or title.
type ClassNameLocator struct {
	Patterns []*regexp.Regexp
}

func (l *ClassNameLocator) Name() string {
	return "class_name"
}

func (l *ClassNameLocator) Locate(container *goquery.Selection) (string, bool) {
	for _, re := range l.Patterns {
		var found string
		container.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if !classMatches(s, re) {
				return true
			}
			text := elementText(s)
			if lengthBetween(text, 10, 250) {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}

// HeadingLocator takes the first reasonably sized heading that is not UI chrome.
type HeadingLocator struct{}

func (l *HeadingLocator) Name() string {
	return "heading"
}

func (l *HeadingLocator) Locate(container *goquery.Selection) (string, bool) {
	for _, tag := range headingTags {
		var found string
		container.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := elementText(s)
			if lengthBetween(text, 10, 250) && !containsAny(strings.ToLower(text), headingNoiseWords) {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}

// AnchorTextLocator uses link text that is not a generic call to action.
type AnchorTextLocator struct{}

func (l *AnchorTextLocator) Name() string {
	return "anchor_text"
}

func (l *AnchorTextLocator) Locate(container *goquery.Selection) (string, bool) {
	var found string
	container.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := elementText(s)
		if lengthBetween(text, 10, 250) && !containsAny(strings.ToLower(text), anchorNoiseWords) {
			found = text
			return false
		}
		return true
	})
	return found, found != ""
}

// TextBlockLocator is the last resort: any substantial wordy span, div or paragraph.
type TextBlockLocator struct{}

func (l *TextBlockLocator) Name() string {
	return "text_block"
}

func (l *TextBlockLocator) Locate(container *goquery.Selection) (string, bool) {
	for _, tag := range textBlockTags {
		var found string
		container.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := elementText(s)
			if lengthBetween(text, 15, 200) && alphaRunPattern.MatchString(text) {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}

// DefaultNameLocators returns the name strategies in priority order.
func DefaultNameLocators() []NameLocator {
	return []NameLocator{
		&ClassNameLocator{Patterns: nameClassPatterns},
		&HeadingLocator{},
		&AnchorTextLocator{},
		&TextBlockLocator{},
	}
}

// FindName runs the locators in order and returns the first name found.
func FindName(container *goquery.Selection, locators []NameLocator) (string, bool) {
	for _, locator := range locators {
		if name, ok := locator.Locate(container); ok {
			return name, true
		}
	}
	return "", false
}

// FindLink returns the canonical product URL of a container resolved
// against baseURL, or "" when the container has no links.
func FindLink(container *goquery.Selection, baseURL string) string {
	links := container.Find("a[href]")
	if links.Length() == 0 {
		return ""
	}

	bestLink := ""
	bestScore := 0
	links.Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		lowerHref := strings.ToLower(href)
		if containsAny(lowerHref, skippedHrefMarkers) {
			return
		}

		score := 0
		if containsAny(lowerHref, productPathMarkers) {
			score += 3
		}
		if lengthBetween(elementText(s), 5, 200) {
			score++
		}

		if score > bestScore {
			bestScore = score
			bestLink = href
		}
	})

	if bestLink == "" {
		bestLink, _ = links.First().Attr("href")
	}
	return navigator.ResolveRelativeURL(baseURL, bestLink)
}

// FindPrices resolves the (original, sale) pair of a container. Zero means absent.
func FindPrices(container *goquery.Selection) (original, sale float64) {
	return findPrices(container, defaultOptions)
}

func findPrices(container *goquery.Selection, opts *Options) (original, sale float64) {
	strikeNodes := strikethroughElements(container)

	var strikethrough float64
	for _, s := range strikeNodes {
		if price, ok := extractPrice(elementText(s), opts); ok {
			strikethrough = price
			break
		}
	}

	struck := make(map[*html.Node]bool, len(strikeNodes))
	for _, s := range strikeNodes {
		struck[s.Nodes[0]] = true
	}

	var prices []float64
	seen := make(map[float64]bool)
	for _, s := range priceElements(container) {
		node := s.Nodes[0]
		if struck[node] || (node.Parent != nil && struck[node.Parent]) {
			continue
		}
		if strikethroughTags[goquery.NodeName(s)] {
			continue
		}
		if style, _ := s.Attr("style"); lineThroughStyle.MatchString(style) {
			continue
		}

		text := elementText(s)
		if IsPromotionalText(text) {
			continue
		}
		if price, ok := extractPrice(text, opts); ok && !seen[price] {
			seen[price] = true
			prices = append(prices, price)
		}
	}

	return resolvePrices(strikethrough, prices)
}

// strikethroughElements collects reference-price signals in priority order:
// strike tags, inline line-through styles, then strikethrough class names.
func strikethroughElements(container *goquery.Selection) []*goquery.Selection {
	var elements []*goquery.Selection
	add := func(_ int, s *goquery.Selection) {
		elements = append(elements, s)
	}

	container.Find("del, s, strike").Each(add)
	container.Find("[style]").Each(func(i int, s *goquery.Selection) {
		if style, _ := s.Attr("style"); lineThroughStyle.MatchString(style) {
			add(i, s)
		}
	})
	for _, re := range strikethroughClasses {
		container.Find("[class]").Each(func(i int, s *goquery.Selection) {
			if classMatches(s, re) {
				add(i, s)
			}
		})
	}
	return elements
}

// priceElements collects every other element that may carry a price.
func priceElements(container *goquery.Selection) []*goquery.Selection {
	var elements []*goquery.Selection
	included := make(map[*html.Node]bool)
	add := func(s *goquery.Selection) {
		elements = append(elements, s)
		included[s.Nodes[0]] = true
	}

	for _, re := range priceClasses {
		container.Find("[class]").Each(func(_ int, s *goquery.Selection) {
			if classMatches(s, re) {
				add(s)
			}
		})
	}

	for _, attr := range priceDataAttrs {
		container.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			add(s)
		})
	}

	container.Find(currencyBlockTags).Each(func(_ int, s *goquery.Selection) {
		if included[s.Nodes[0]] {
			return
		}
		text := elementText(s)
		if IsPromotionalText(text) {
			return
		}
		if hasCurrencyMarker(text) && utf8.RuneCountInString(text) < 100 {
			add(s)
		}
	})

	return elements
}

func hasCurrencyMarker(text string) bool {
	return containsAny(text, currencySymbols) || strings.Contains(text, "USD")
}

// classMatches tests the pattern against each class and the full class attribute.
func classMatches(s *goquery.Selection, re *regexp.Regexp) bool {
	class, ok := s.Attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(class) {
		if re.MatchString(c) {
			return true
		}
	}
	return re.MatchString(class)
}

func elementText(s *goquery.Selection) string {
	return formatter.CleanText(s.Text())
}

func lengthBetween(text string, min, max int) bool {
	n := utf8.RuneCountInString(text)
	return n >= min && n <= max
}
