// Package navigator provides URL helpers and next-page discovery for listing pages.
package navigator

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeURL ensures URL has proper format
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	return rawURL
}

// BaseURL returns scheme://host of a page URL, or "" if it cannot be parsed.
func BaseURL(pageURL string) string {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// ResolveRelativeURL resolves a relative URL against a base URL
func ResolveRelativeURL(baseURL, relativeURL string) string {
	relativeURL = strings.TrimSpace(relativeURL)
	if baseURL == "" {
		return relativeURL
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return relativeURL
	}
	ref, err := url.Parse(relativeURL)
	if err != nil {
		return relativeURL
	}
	return base.ResolveReference(ref).String()
}

// IsValidURL checks if a string looks like an absolute http(s) URL
func IsValidURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && strings.Contains(u.Host, ".")
}

// ExtractDomain extracts the lower-cased host of a URL without a leading "www."
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	domain := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(domain, "www.")
}

// BrandFromURL derives a display brand from the leading label of the domain,
// e.g. "https://www.merrell.com/sale" -> "Merrell". Empty when no domain.
func BrandFromURL(rawURL string) string {
	label := domainLabel(rawURL)
	if label == "" {
		return ""
	}
	return toTitle(label)
}

// BrandCode is the upper-cased leading domain label, used in placeholder names.
func BrandCode(rawURL string) string {
	return strings.ToUpper(domainLabel(rawURL))
}

func domainLabel(rawURL string) string {
	domain := ExtractDomain(rawURL)
	if domain == "" {
		return ""
	}
	return strings.SplitN(domain, ".", 2)[0]
}

// NameFromPath turns the last meaningful path segment of an href into a
// title, e.g. "/men/trail-runner-boot" -> "Trail Runner Boot".
func NameFromPath(href string) string {
	if u, err := url.Parse(href); err == nil {
		href = u.Path
	}
	parts := strings.Split(strings.TrimRight(href, "/"), "/")

	name := ""
	for i := len(parts) - 1; i >= 0; i-- {
		part := parts[i]
		if len(part) <= 3 || strings.HasPrefix(part, "?") {
			continue
		}
		slug := strings.NewReplacer("-", " ", "_", " ").Replace(part)
		name = toTitle(slug)
		if len(name) > 10 {
			break
		}
	}
	return name
}

// Casers are stateful, so one is built per call.
func toTitle(s string) string {
	return cases.Title(language.Und).String(s)
}
