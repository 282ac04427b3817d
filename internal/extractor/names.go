package extractor

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule is a named predicate in an ordered, first-match-wins chain.
type Rule struct {
	Name  string
	Match func(name string, opts *Options) bool
}

// RuleChain evaluates rules in order and stops at the first match.
type RuleChain []Rule

// First returns the name of the first matching rule, or "" when none match.
func (c RuleChain) First(text string, opts *Options) string {
	for _, r := range c {
		if r.Match(text, opts) {
			return r.Name
		}
	}
	return ""
}

// invalidNameRules reject candidate names that are really price text or noise.
var invalidNameRules = RuleChain{
	{Name: "empty", Match: func(name string, _ *Options) bool {
		return strings.TrimSpace(name) == ""
	}},
	{Name: "price-label-prefix", Match: func(name string, _ *Options) bool {
		lower := strings.ToLower(strings.TrimSpace(name))
		for _, prefix := range priceLabelPrefixes {
			if strings.HasPrefix(lower, prefix) {
				return true
			}
		}
		trimmed := strings.TrimSpace(name)
		for _, sym := range currencySymbols {
			if strings.HasPrefix(trimmed, sym) {
				return true
			}
		}
		return false
	}},
	{Name: "price-vocabulary", Match: func(name string, opts *Options) bool {
		words := priceStrippedWords(strings.ToLower(name))
		if len(words) == 0 {
			return false
		}
		count := 0
		for _, w := range words {
			if priceVocabulary[w] {
				count++
			}
		}
		return float64(count)/float64(len(words)) > opts.PriceWordRatio
	}},
	{Name: "low-alpha-ratio", Match: func(name string, opts *Options) bool {
		total := utf8.RuneCountInString(name)
		if total == 0 {
			return false
		}
		alpha := 0
		for _, r := range name {
			if unicode.IsLetter(r) {
				alpha++
			}
		}
		return float64(alpha)/float64(total) < opts.MinAlphaRatio
	}},
}

// priceStrippedWords replaces digits, currency symbols and price punctuation
// with spaces and returns the remaining words longer than two characters.
func priceStrippedWords(s string) []string {
	stripped := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return ' '
		case strings.ContainsRune("$€£,.:-", r):
			return ' '
		}
		return r
	}, s)

	var words []string
	for _, w := range strings.Fields(stripped) {
		if utf8.RuneCountInString(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// nonFootwearRules exclude promotions, navigation chrome and non-footwear items.
var nonFootwearRules = RuleChain{
	{Name: "promotional-phrase", Match: func(name string, _ *Options) bool {
		return containsAny(strings.ToLower(name), promotionalPhrases)
	}},
	{Name: "collaboration-banner", Match: func(name string, _ *Options) bool {
		lower := strings.ToLower(name)
		return strings.Contains(lower, " x ") && strings.Contains(lower, "collection")
	}},
	{Name: "percent-off", Match: func(name string, _ *Options) bool {
		lower := strings.ToLower(name)
		return percentOffPattern.MatchString(lower) || leadingPercentOffPattern.MatchString(lower)
	}},
	{Name: "short-promo-banner", Match: func(name string, _ *Options) bool {
		lower := strings.ToLower(name)
		if len(strings.Fields(name)) > 8 || !containsAny(lower, genericPromoWords) {
			return false
		}
		if !containsAny(lower, footwearNouns) {
			return true
		}
		return percentOffPattern.MatchString(lower)
	}},
	{Name: "non-footwear-keyword", Match: func(name string, _ *Options) bool {
		return containsAny(strings.ToLower(name), nonFootwearKeywords)
	}},
	{Name: "navigation-keyword", Match: func(name string, _ *Options) bool {
		return containsAny(strings.ToLower(name), navigationKeywords)
	}},
	{Name: "too-short", Match: func(name string, _ *Options) bool {
		return utf8.RuneCountInString(strings.TrimSpace(name)) < 8
	}},
	{Name: "few-words-no-footwear", Match: func(name string, _ *Options) bool {
		return len(strings.Fields(name)) <= 3 && !containsAny(strings.ToLower(name), footwearCategoryNouns)
	}},
	{Name: "uppercase-banner", Match: func(name string, _ *Options) bool {
		return isUpper(name) && len(strings.Fields(name)) <= 6 &&
			!containsAny(strings.ToLower(name), uppercaseAllowWords)
	}},
	{Name: "question-or-call-to-action", Match: func(name string, _ *Options) bool {
		return containsAny(strings.ToLower(name), questionPatterns)
	}},
}

// IsInvalidName reports whether a candidate name is price text or noise.
func IsInvalidName(name string) bool {
	return invalidNameRules.First(name, defaultOptions) != ""
}

// IsNonFootwear reports whether an accepted name should still be excluded
// as a promotion, navigation element or non-footwear item.
func IsNonFootwear(name string) bool {
	return nonFootwearRules.First(name, defaultOptions) != ""
}

// isUpper mirrors "has cased letters and all of them are upper case".
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
