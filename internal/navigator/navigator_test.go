package navigator

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURL(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"https://www.merrell.com/us/en/sale?page=2", "https://www.merrell.com"},
		{"http://localhost:8080/listing", "http://localhost:8080"},
		{"merrell.com/sale", ""},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, BaseURL(tc.input))
		})
	}
}

func TestResolveRelativeURL(t *testing.T) {
	testCases := []struct {
		name string
		base string
		rel  string
		want string
	}{
		{name: "root relative", base: "https://www.merrell.com", rel: "/p/boot", want: "https://www.merrell.com/p/boot"},
		{name: "path relative", base: "https://shop.example.com/sale/", rel: "page-2", want: "https://shop.example.com/sale/page-2"},
		{name: "absolute", base: "https://www.merrell.com", rel: "https://cdn.example.com/p", want: "https://cdn.example.com/p"},
		{name: "query only", base: "https://shop.example.com/sale?page=1", rel: "?page=2", want: "https://shop.example.com/sale?page=2"},
		{name: "no base", base: "", rel: " /p/boot ", want: "/p/boot"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveRelativeURL(tc.base, tc.rel))
		})
	}
}

func TestBrandHelpers(t *testing.T) {
	testCases := []struct {
		url    string
		domain string
		brand  string
		code   string
	}{
		{"https://www.merrell.com/us/en/sale", "merrell.com", "Merrell", "MERRELL"},
		{"https://Wolverine.com/mens/boots", "wolverine.com", "Wolverine", "WOLVERINE"},
		{"https://shop.example.co.uk/", "shop.example.co.uk", "Shop", "SHOP"},
		{"", "", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			assert.Equal(t, tc.domain, ExtractDomain(tc.url))
			assert.Equal(t, tc.brand, BrandFromURL(tc.url))
			assert.Equal(t, tc.code, BrandCode(tc.url))
		})
	}
}

func TestNameFromPath(t *testing.T) {
	testCases := []struct {
		href string
		want string
	}{
		{"/men/trail-runner-boot", "Trail Runner Boot"},
		{"/women/everyday-comfort-clog/123", "Everyday Comfort Clog"},
		{"https://www.merrell.com/us/en/moab_3_mid/", "Moab 3 Mid"},
		{"/p/x", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.href, func(t *testing.T) {
			assert.Equal(t, tc.want, NameFromPath(tc.href))
		})
	}
}

func TestURLValidation(t *testing.T) {
	assert.Equal(t, "https://merrell.com/sale", NormalizeURL("  merrell.com/sale "))
	assert.Equal(t, "http://merrell.com", NormalizeURL("http://merrell.com"))
	assert.Empty(t, NormalizeURL(""))

	assert.True(t, IsValidURL("https://www.merrell.com/sale"))
	assert.False(t, IsValidURL("ftp://merrell.com"))
	assert.False(t, IsValidURL("https://localhost"))
	assert.False(t, IsValidURL("not a url"))
}

func parseDoc(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestFindNextPageLink(t *testing.T) {
	const current = "https://shop.example.com/sale?page=1"

	testCases := []struct {
		name   string
		markup string
		want   string
		found  bool
	}{
		{
			name:   "aria label is case insensitive",
			markup: `<nav><a aria-label="Go to NEXT page" href="?page=2">›</a></nav>`,
			want:   "https://shop.example.com/sale?page=2",
			found:  true,
		},
		{
			name:   "title attribute",
			markup: `<a title="Next" href="/sale?page=2">›</a>`,
			want:   "https://shop.example.com/sale?page=2",
			found:  true,
		},
		{
			name:   "rel next link in head",
			markup: `<html><head><link rel="next" href="https://shop.example.com/sale?page=2"></head><body></body></html>`,
			want:   "https://shop.example.com/sale?page=2",
			found:  true,
		},
		{
			name:   "pagination last child",
			markup: `<div class="pagination"><a href="?page=1">1</a><a href="?page=2">2</a></div>`,
			want:   "https://shop.example.com/sale?page=2",
			found:  true,
		},
		{
			name:   "disabled class skipped",
			markup: `<a class="pagination__next is-disabled" href="?page=2">Next</a>`,
		},
		{
			name:   "aria disabled skipped",
			markup: `<a aria-label="next" aria-disabled="true" href="?page=2">Next</a>`,
		},
		{
			name:   "self link skipped",
			markup: `<a rel="next" href="?page=1">Next</a>`,
		},
		{
			name:   "script link skipped",
			markup: `<a rel="next" href="javascript:void(0)">Next</a>`,
		},
		{
			name:   "button without href",
			markup: `<button aria-label="Next page">›</button>`,
		},
		{
			name:   "no pagination",
			markup: `<a href="/p/boot">Boot</a>`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pn := NewPageNavigator(10)
			got, ok := pn.FindNextPageLink(parseDoc(t, tc.markup), current)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFindNextPageLinkSkipsVisited(t *testing.T) {
	doc := parseDoc(t, `<a rel="next" href="?page=2">Next</a><a title="next" href="?page=3">›</a>`)
	pn := NewPageNavigator(10)

	pn.MarkVisited("https://shop.example.com/sale?page=3")
	pn.MarkVisited("https://shop.example.com/sale?page=2")
	_, ok := pn.FindNextPageLink(doc, "https://shop.example.com/sale?page=1")
	assert.False(t, ok)
}

func TestPageNavigatorProgress(t *testing.T) {
	pn := NewPageNavigator(2)
	assert.True(t, pn.HasCapacity())

	first := pn.AddPage("https://shop.example.com/sale")
	second := pn.AddPage("https://shop.example.com/sale?page=2")
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
	assert.False(t, pn.HasCapacity())

	pn.UpdatePageStatus(first, StatusScraped)
	pn.UpdatePageStatus(second, StatusError)
	pn.UpdatePageStatus(9, StatusScraped)

	total, scraped, errors := pn.GetProgress()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, scraped)
	assert.Equal(t, 1, errors)
}

func TestNewPageNavigatorClampsMaxPages(t *testing.T) {
	pn := NewPageNavigator(0)
	pn.AddPage("https://shop.example.com/sale")
	assert.False(t, pn.HasCapacity())
}
