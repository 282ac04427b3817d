package extractor

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestScoreContainer(t *testing.T) {
	testCases := []struct {
		name     string
		markup   string
		selector string
		want     int
	}{
		{
			name:     "full product card",
			markup:   `<div class="product-card"><a href="/p/trail-runner-boot"><img src="boot.jpg"><h3>Trail Runner Boot</h3></a><del>$89.99</del> <span>$59.99</span></div>`,
			selector: "div",
			want:     13,
		},
		{
			name:     "id and data attributes",
			markup:   `<ul><li id="item-42" data-component="ProductTile"><a href="/p/1">Boot</a></li></ul>`,
			selector: "li",
			want:     8,
		},
		{
			name:     "plain block",
			markup:   `<div>Hello world</div>`,
			selector: "div",
			want:     1,
		},
		{
			name:     "ineligible tag",
			markup:   `<p><span class="product-card">$10.00 product</span></p>`,
			selector: "span",
			want:     0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := parseDoc(t, tc.markup)
			assert.Equal(t, tc.want, ScoreContainer(doc.Find(tc.selector).First()))
		})
	}

	t.Run("empty selection", func(t *testing.T) {
		doc := parseDoc(t, `<div></div>`)
		assert.Equal(t, 0, ScoreContainer(doc.Find("article")))
	})
}

const twoCardListing = `
<div class="nav"><a href="/men">Men</a></div>
<div class="product-tile"><a href="/p/a">Alpha Trail Boot</a> <span>$99.00</span></div>
<div class="product-card"><a href="/p/b"><img src="b.jpg">Beta Hiking Boot</a> <span>$89.00</span></div>`

func TestFindContainers(t *testing.T) {
	doc := parseDoc(t, twoCardListing)

	candidates, analyzed := FindContainers(doc, DefaultOptions())
	assert.Equal(t, 6, analyzed)
	require.Len(t, candidates, 2)

	assert.Equal(t, 13, candidates[0].Score)
	assert.True(t, candidates[0].Selection.HasClass("product-card"))
	assert.Equal(t, 12, candidates[1].Score)
	assert.True(t, candidates[1].Selection.HasClass("product-tile"))
}

func TestFindContainersCapsCandidates(t *testing.T) {
	doc := parseDoc(t, twoCardListing)

	opts := DefaultOptions()
	opts.MaxContainers = 1
	candidates, _ := FindContainers(doc, opts)
	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].Selection.HasClass("product-card"))
}

func TestFindContainersKeepsDocumentOrderOnTies(t *testing.T) {
	doc := parseDoc(t, `
		<div class="product-card" id="first"><a href="/p/1">First Trail Boot</a> $80.00</div>
		<div class="product-card" id="second"><a href="/p/2">Second Trail Boot</a> $70.00</div>`)

	candidates, _ := FindContainers(doc, nil)
	require.Len(t, candidates, 2)
	first, _ := candidates[0].Selection.Attr("id")
	second, _ := candidates[1].Selection.Attr("id")
	assert.Equal(t, "first", first)
	assert.Equal(t, "second", second)
}
