package core

import (
	"regexp"
	"strings"
)

var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// NormalizeURL makes sure a bookmark URL carries a scheme. Bare domains such
// as "example.com" become "https://example.com"; URLs that already carry a
// scheme are returned unchanged.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	lower := strings.ToLower(u)
	if u == "" || schemePrefix.MatchString(u) || strings.HasPrefix(lower, "http:") || strings.HasPrefix(lower, "https:") {
		return u
	}
	return "https://" + u
}
