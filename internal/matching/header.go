package matching

import (
	"net/http"
	"strings"
)

// MatchHeader checks if any value of the named header equals expectedValue.
// Header names are case-insensitive (per HTTP spec).
func MatchHeader(name, expectedValue string, headers http.Header) bool {
	for _, v := range headers.Values(name) {
		if v == expectedValue {
			return true
		}
	}
	return false
}

// HasHeader checks if the named header is present (regardless of value).
func HasHeader(name string, headers http.Header) bool {
	return len(headers.Values(name)) > 0
}

// MatchHeaders checks if all specified headers match.
// Returns true only if ALL headers match.
func MatchHeaders(expected map[string]string, headers http.Header) bool {
	for name, value := range expected {
		if !MatchHeader(name, value, headers) {
			return false
		}
	}
	return true
}

// MatchHeaderPattern checks if a header value matches a pattern.
// Supports prefix (value*), suffix (*value), contains (*value*) and exact
// patterns. A lone "*" only requires the header to be present.
func MatchHeaderPattern(name, pattern string, headers http.Header) bool {
	values := headers.Values(name)
	if len(values) == 0 {
		return false
	}
	if pattern == "*" {
		return true
	}
	for _, v := range values {
		if matchValuePattern(pattern, v) {
			return true
		}
	}
	return false
}

func matchValuePattern(pattern, value string) bool {
	hasPrefix := strings.HasPrefix(pattern, "*")
	hasSuffix := strings.HasSuffix(pattern, "*")

	switch {
	case hasPrefix && hasSuffix:
		return strings.Contains(value, strings.Trim(pattern, "*"))
	case hasSuffix:
		return strings.HasPrefix(value, strings.TrimSuffix(pattern, "*"))
	case hasPrefix:
		return strings.HasSuffix(value, strings.TrimPrefix(pattern, "*"))
	default:
		return value == pattern
	}
}
