package navigator

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page status values tracked by the PageNavigator.
const (
	StatusPending = "pending"
	StatusScraped = "scraped"
	StatusError   = "error"
)

// PageInfo describes one listing page of a paginated catalog.
type PageInfo struct {
	URL    string
	Index  int
	Status string
}

// NextPageSelectors are the pagination controls tried in order against a
// live browser DOM. The " i" flag makes attribute matches case-insensitive.
var NextPageSelectors = []string{
	"a[aria-label*='next' i]",
	"a[title*='next' i]",
	"button[aria-label*='next' i]",
	"a.pagination__next",
	".pagination a:last-child",
	"a[rel='next']",
	"link[rel='next']",
}

// nextLinkMatcher is the static-document form of a NextPageSelectors entry.
type nextLinkMatcher struct {
	selector string
	attr     string
	contains string
	equals   string
}

func (m nextLinkMatcher) matches(s *goquery.Selection) bool {
	if m.attr == "" {
		return true
	}
	value := strings.ToLower(strings.TrimSpace(s.AttrOr(m.attr, "")))
	if m.equals != "" {
		return value == m.equals
	}
	return strings.Contains(value, m.contains)
}

// Buttons carry no href, so they only count in a live browser.
var nextLinkMatchers = []nextLinkMatcher{
	{selector: "a[aria-label]", attr: "aria-label", contains: "next"},
	{selector: "a[title]", attr: "title", contains: "next"},
	{selector: "a.pagination__next"},
	{selector: ".pagination a:last-child"},
	{selector: "a[rel]", attr: "rel", equals: "next"},
	{selector: "link[rel]", attr: "rel", equals: "next"},
}

// IsDisabledControl reports whether a pagination control is switched off,
// either through a "disabled" class or aria-disabled="true".
func IsDisabledControl(class, ariaDisabled string) bool {
	return strings.Contains(strings.ToLower(class), "disabled") ||
		strings.EqualFold(strings.TrimSpace(ariaDisabled), "true")
}

// PageNavigator tracks the pages of one crawl and discovers the next one.
type PageNavigator struct {
	maxPages int
	pages    []PageInfo
	visited  map[string]bool
}

// NewPageNavigator creates a navigator that stops after maxPages pages.
// A value below one allows a single page.
func NewPageNavigator(maxPages int) *PageNavigator {
	if maxPages < 1 {
		maxPages = 1
	}
	return &PageNavigator{
		maxPages: maxPages,
		pages:    make([]PageInfo, 0),
		visited:  make(map[string]bool),
	}
}

// FindNextPageLink finds the next listing page in a document. It skips
// disabled controls, self links and pages already visited.
func (pn *PageNavigator) FindNextPageLink(doc *goquery.Document, currentURL string) (string, bool) {
	for _, m := range nextLinkMatchers {
		var next string
		doc.Find(m.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if !m.matches(s) {
				return true
			}
			if IsDisabledControl(s.AttrOr("class", ""), s.AttrOr("aria-disabled", "")) {
				return true
			}
			href := strings.TrimSpace(s.AttrOr("href", ""))
			if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
				return true
			}

			candidate := ResolveRelativeURL(currentURL, href)
			if candidate == currentURL || pn.visited[candidate] {
				return true
			}
			next = candidate
			return false
		})
		if next != "" {
			return next, true
		}
	}
	return "", false
}

// HasCapacity reports whether another page may be fetched.
func (pn *PageNavigator) HasCapacity() bool {
	return len(pn.pages) < pn.maxPages
}

// MarkVisited marks a URL as visited
func (pn *PageNavigator) MarkVisited(url string) {
	pn.visited[url] = true
}

// AddPage records a page about to be fetched and returns its 1-based index.
func (pn *PageNavigator) AddPage(url string) int {
	pn.MarkVisited(url)
	pn.pages = append(pn.pages, PageInfo{
		URL:    url,
		Index:  len(pn.pages) + 1,
		Status: StatusPending,
	})
	return len(pn.pages)
}

// UpdatePageStatus updates the status of a page
func (pn *PageNavigator) UpdatePageStatus(index int, status string) {
	if index > 0 && index <= len(pn.pages) {
		pn.pages[index-1].Status = status
	}
}

// GetProgress returns crawl progress statistics
func (pn *PageNavigator) GetProgress() (total, scraped, errors int) {
	total = len(pn.pages)
	for _, p := range pn.pages {
		switch p.Status {
		case StatusScraped:
			scraped++
		case StatusError:
			errors++
		}
	}
	return
}
