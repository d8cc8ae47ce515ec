package infocache

import (
	"net/url"
	"strings"
)

// key identifies a cached info. Two keys are equal iff both fields are equal.
type key struct {
	serviceID int
	url       string
}

func keyOf(serviceID int, rawURL string) key {
	return key{serviceID: serviceID, url: NormalizeURL(rawURL)}
}

// NormalizeURL returns the canonical form of rawURL used for cache lookups.
// Surrounding whitespace and the fragment are dropped, scheme and host are lower-cased.
// Strings that do not parse as absolute URLs are only trimmed.
func NormalizeURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)

	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return trimmed
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	return u.String()
}
