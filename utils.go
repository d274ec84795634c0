package openprofile

import (
	"net/url"
	"strings"
)

// NormalizeOrigin reduces a URL or origin string to scheme://host,
// lowercased and without a trailing slash. Returns "" when the input
// does not parse as an absolute URL.
func NormalizeOrigin(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}

// SameOrigin reports whether the requester's origin matches the
// server's canonical base URL. Malformed input never matches.
func SameOrigin(baseURL, origin string) bool {
	base := NormalizeOrigin(baseURL)
	if base == "" {
		return false
	}
	return base == NormalizeOrigin(origin)
}

// DomainOf extracts the host part of a URL or origin, the identifier
// used for federation trust lookups.
func DomainOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	if u.Host != "" {
		return strings.ToLower(u.Hostname())
	}
	// Bare domains are accepted as-is.
	host := strings.ToLower(strings.TrimSpace(raw))
	if host == "" || strings.ContainsAny(host, "/ ") {
		return ""
	}
	return host
}
