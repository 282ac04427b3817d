// Package formatter provides text normalization and display formatting.
package formatter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NotAvailable is shown for any value that could not be determined.
const NotAvailable = "N/A"

var spaceRun = regexp.MustCompile(`\s+`)

// CleanText collapses every whitespace run to a single space and trims.
func CleanText(text string) string {
	text = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, text)
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}

// RemoveControlCharacters removes non-printable control characters
func RemoveControlCharacters(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r >= 32 {
			return r
		}
		return -1
	}, text)
}

// TruncateText truncates text to a maximum length (in characters) with ellipsis
func TruncateText(text string, maxLen int) string {
	if maxLen <= 3 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	runes := []rune(text)
	truncated := string(runes[:maxLen-3])
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > len(truncated)/2 {
		truncated = truncated[:lastSpace]
	}

	return truncated + "..."
}

// CleanName prepares an extracted product name for display and keying.
func CleanName(name string) string {
	return CleanText(RemoveControlCharacters(name))
}

// NameKey is the deduplication key for a product name: lower-cased,
// whitespace-collapsed and capped at maxLen characters.
func NameKey(name string, maxLen int) string {
	key := strings.ToLower(CleanText(name))
	if maxLen > 0 && utf8.RuneCountInString(key) > maxLen {
		key = string([]rune(key)[:maxLen])
	}
	return key
}

// FormatPrice renders a price as "$12.34", or N/A when absent.
func FormatPrice(price float64) string {
	if price <= 0 {
		return NotAvailable
	}
	return fmt.Sprintf("$%.2f", price)
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// ParsePercent reads back a "25.0%" string. N/A and empty values yield false.
func ParsePercent(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" || text == NotAvailable {
		return 0, false
	}
	var value float64
	if _, err := fmt.Sscanf(strings.TrimSuffix(text, "%"), "%f", &value); err != nil {
		return 0, false
	}
	return value, true
}
