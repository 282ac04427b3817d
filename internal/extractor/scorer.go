package extractor

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Candidate is a scored element hypothesized to be a single product listing.
type Candidate struct {
	Selection *goquery.Selection
	Score     int
}

// ScoreContainer rates how likely an element is to be one product card.
func ScoreContainer(s *goquery.Selection) int {
	if s.Length() == 0 || !eligibleContainerTags[goquery.NodeName(s)] {
		return 0
	}

	class, _ := s.Attr("class")
	id, _ := s.Attr("id")
	classes := strings.ToLower(class)
	elemID := strings.ToLower(id)
	dataAttrs := strings.ToLower(dataAttributeValues(s))

	score := 0
	for _, keyword := range productKeywords {
		if strings.Contains(classes, keyword) {
			score += 3
		}
		if strings.Contains(elemID, keyword) {
			score += 2
		}
		if strings.Contains(dataAttrs, keyword) {
			score += 2
		}
	}

	if s.Find("a[href]").Length() > 0 {
		score += 2
	}
	if s.Find("img").Length() > 0 {
		score++
	}

	text := s.Text()
	if containsAny(text, currencySymbols) || strings.Contains(text, "USD") {
		score += 3
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) > 5 {
		score++
	}

	return score
}

func dataAttributeValues(s *goquery.Selection) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	var values []string
	for _, attr := range s.Nodes[0].Attr {
		if strings.HasPrefix(attr.Key, "data-") {
			values = append(values, attr.Val)
		}
	}
	return strings.Join(values, " ")
}

// FindContainers scores every eligible element in the document and returns
// the highest scoring candidates. Ties keep document order.
func FindContainers(doc *goquery.Document, opts *Options) (candidates []Candidate, analyzed int) {
	if opts == nil {
		opts = defaultOptions
	}

	elements := doc.Find("div, article, li, section, a")
	analyzed = elements.Length()

	elements.Each(func(_ int, s *goquery.Selection) {
		if score := ScoreContainer(s); score >= opts.MinContainerScore {
			candidates = append(candidates, Candidate{Selection: s, Score: score})
		}
	})

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if opts.MaxContainers > 0 && len(candidates) > opts.MaxContainers {
		candidates = candidates[:opts.MaxContainers]
	}
	return candidates, analyzed
}
