package extractor

import "regexp"

// Keyword tables and patterns shared by the rule chains. They are built once
// at package init and never mutated.

var currencySymbols = []string{"$", "€", "£"}

var priceNoiseWords = []string{
	"off", "save", "discount", "free", "shipping", "member", "employee",
	"review", "rating", "star", "sold", "available", "stock",
	"color", "size", "width", "length", "style",
}

// pricePatterns are tried in order; the first pattern with an in-range value wins.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\s*(\d{1,4}(?:,\d{3})*(?:\.\d{2}))`),
	regexp.MustCompile(`\$\s*(\d{1,4}(?:,\d{3})*)`),
	regexp.MustCompile(`(\d{1,4}(?:,\d{3})*(?:\.\d{2}))\s*\$`),
	regexp.MustCompile(`€\s*(\d{1,4}(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`£\s*(\d{1,4}(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`(\d{1,4}(?:,\d{3})*(?:\.\d{2}))\s*USD`),
}

var promotionalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\d+\s*off`),
	regexp.MustCompile(`\d+\s*off`),
	regexp.MustCompile(`save\s*\$?\d+`),
	regexp.MustCompile(`extra\s*\$?\d+`),
	regexp.MustCompile(`limited\s*time`),
	regexp.MustCompile(`discount\s*\$?\d+`),
	regexp.MustCompile(`member\s*\$?\d+`),
	regexp.MustCompile(`get\s*\$?\d+\s*off`),
}

var priceLabelPrefixes = []string{
	"original price:", "sale price:", "regular price:", "was:", "now:", "price:",
}

var priceVocabulary = map[string]bool{
	"original": true, "price": true, "sale": true, "was": true,
	"now": true, "regular": true, "save": true, "off": true,
}

var nonFootwearKeywords = []string{
	"gift", "gift card", "giftcard", "gift certificate",
	"e-gift", "egift", "gift voucher", "store credit",
	"shopping card", "prepaid card", "digital gift", "gift pack",
	"care kit", "cleaning kit", "laces only", "insole only",
	"accessory kit", "water repellent", "shoe cleaner",
	"protective spray", "subscription", "membership",
}

var navigationKeywords = []string{
	"sign in", "sign up", "log in", "login", "register",
	"create account", "my account", "account", "cart", "checkout",
	"wishlist", "favorites", "did you mean", "search results",
	"filter by", "sort by", "product type", "category", "breadcrumb",
	"menu", "navigation", "back to", "view all", "shop now",
	"learn more", "find out", "discover", "explore",
	"add a promotion", "add promotion", "add discount",
	"promo code", "coupon code", "subscribe", "newsletter",
	"email signup", "gifts by price", "gifts under", "price range",
	"shop by price", "$85 and up", "$75+", "sale items",
	"clearance items", "new arrivals", "best sellers", "top rated",
	"customer service", "help center", "contact us",
	"store locator", "find a store",
	"keep up with", "follow us", "stay connected", "join us",
	"connect with", "social media", "follow along",
}

var genericPromoWords = []string{
	"free", "save", "off", "discount", "promotion", "offer",
	"deal", "special", "sale", "clearance", "collection",
}

var promotionalPhrases = []string{
	"keep up with us",
	"20% off boots",
	"30% off boots",
	"40% off boots",
	"50% off boots",
	"x collection",
}

var footwearNouns = []string{"boot", "shoe", "sneaker", "sandal", "slipper", "clog"}

var footwearCategoryNouns = []string{
	"boot", "shoe", "sneaker", "sandal", "slipper", "oxford", "loafer", "clog",
	"runner", "trainer", "heel", "wedge", "moccasin",
}

var uppercaseAllowWords = []string{"boot", "shoe", "sneaker", "work", "steel", "toe"}

var questionPatterns = []string{
	"?", "did you", "do you", "how to", "why", "what is", "sign up", "click here",
}

var (
	percentOffPattern        = regexp.MustCompile(`\d+%\s*off`)
	leadingPercentOffPattern = regexp.MustCompile(`^\d+%?\s+off\s+\w+`)
)

var eligibleContainerTags = map[string]bool{
	"div": true, "article": true, "li": true, "section": true, "a": true,
}

var productKeywords = []string{"product", "item", "card", "tile"}

var (
	nameClassPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)product.*name|item.*name|card.*title`),
		regexp.MustCompile(`(?i)product.*title|item.*title`),
	}
	headingTags       = []string{"h1", "h2", "h3", "h4", "h5"}
	headingNoiseWords = []string{"cart", "menu", "sign in", "account"}
	anchorNoiseWords  = []string{"view", "shop", "cart", "wishlist"}
	textBlockTags     = []string{"span", "div", "p"}
	alphaRunPattern   = regexp.MustCompile(`[a-zA-Z]{3,}`)
)

var (
	skippedHrefMarkers = []string{"cart", "checkout", "account", "login", "javascript:", "#"}
	productPathMarkers = []string{
		"/product/", "/p/", "/item/", "/dp/", ".html",
		"-shoe", "-boot", "-sneaker", "/men/", "/women/",
	}
)

var (
	strikethroughTags    = map[string]bool{"del": true, "s": true, "strike": true}
	strikethroughClasses = compileAll(
		"strike", "strikethrough", "was-price", "original-price",
		"regular-price", "compare-at", "msrp", "list-price",
	)
	priceClasses      = compileAll("price", "cost", "amount", "pricing", "sale", "current", "now")
	priceDataAttrs    = []string{"data-price", "data-product-price", "data-test-price"}
	currencyBlockTags = "span, div, p, strong, b"
	lineThroughStyle  = regexp.MustCompile(`(?i)line-through`)
)

var fallbackPricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+\.\d{2})\s*USD`),
	regexp.MustCompile(`\$\s*(\d+\.\d{2})`),
	regexp.MustCompile(`(\d{1,3},\d{3}\.\d{2})`),
}

var numericLinkText = regexp.MustCompile(`^\$?\d+\.?\d*`)

var (
	freeShippingPattern = regexp.MustCompile(`(?i)free\s+shipping[^.!?\n]{0,50}\$\s*(\d+)`)
	percentPromoPattern = regexp.MustCompile(`(?i)(\d+)%\s*off`)
	clearancePattern    = regexp.MustCompile(`(?i)\bclearance\b`)
	selectStylesPattern = regexp.MustCompile(`(?i)select\s+styles`)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile("(?i)" + p)
	}
	return compiled
}
