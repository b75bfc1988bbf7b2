package matching

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// URIPattern is a parsed expectation URI.
// Supports:
//   - Exact match: "/api/users" matches "/api/users"
//   - Named params: "/api/users/{id}" matches "/api/users/123" and binds id
//   - Single segment wildcard: "/api/*/items" matches "/api/users/items"
//   - Recursive wildcard: "/api/**" matches "/api/users/1/posts"
//   - Query subset: "/search?q=go" requires q=go, other params are ignored
//   - Absolute URLs: "https://api.example.com/users" also requires the host
type URIPattern struct {
	raw    string
	scheme string
	host   string
	path   string
	query  url.Values
}

// ParseURIPattern parses an expectation URI pattern.
func ParseURIPattern(pattern string) (*URIPattern, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty URI pattern")
	}

	p := &URIPattern{raw: pattern}

	rest := pattern
	if i := strings.Index(rest, "?"); i >= 0 {
		q, err := url.ParseQuery(rest[i+1:])
		if err != nil {
			return nil, fmt.Errorf("invalid query in URI pattern %q: %w", pattern, err)
		}
		p.query = q
		rest = rest[:i]
	}

	if strings.Contains(rest, "://") {
		// Parse only scheme and host; placeholders in the path would
		// otherwise be escaped by url.Parse.
		scheme, after, _ := strings.Cut(rest, "://")
		host, path, found := strings.Cut(after, "/")
		if host == "" {
			return nil, fmt.Errorf("missing host in URI pattern %q", pattern)
		}
		p.scheme = strings.ToLower(scheme)
		p.host = strings.ToLower(host)
		rest = "/"
		if found {
			rest = "/" + path
		}
	}

	p.path = CanonicalPath(rest)

	if strings.Contains(p.path, "**") {
		if !doublestar.ValidatePattern(globPath(p.path)) {
			return nil, fmt.Errorf("invalid glob in URI pattern %q", pattern)
		}
	}

	return p, nil
}

// String returns the pattern as it was written.
func (p *URIPattern) String() string {
	return p.raw
}

// Path returns the normalized path part of the pattern.
func (p *URIPattern) Path() string {
	return p.path
}

// Match checks the request URL against the pattern.
// On success it returns the placeholder bindings (never nil).
func (p *URIPattern) Match(u *url.URL) (map[string]string, bool) {
	if u == nil {
		return nil, false
	}

	if p.host != "" {
		if !strings.EqualFold(p.host, u.Host) {
			return nil, false
		}
		if u.Scheme != "" && !strings.EqualFold(p.scheme, u.Scheme) {
			return nil, false
		}
	}

	params, ok := MatchPath(p.path, CanonicalPath(u.EscapedPath()))
	if !ok {
		return nil, false
	}

	if len(p.query) > 0 && !MatchQuerySubset(p.query, u.Query()) {
		return nil, false
	}

	return params, true
}

// MatchPath checks if the request path matches the pattern and returns the
// bound placeholders. Named params bind by name; single "*" segments bind
// positionally as "0", "1", ... Both arguments are expected in CanonicalPath
// form; bound values are unescaped.
func MatchPath(pattern, path string) (map[string]string, bool) {
	// Exact match
	if pattern == path {
		return map[string]string{}, true
	}

	if strings.Contains(pattern, "**") {
		return matchRecursive(pattern, path)
	}

	patternParts := splitPath(pattern)
	pathParts := splitPath(path)

	// Must have same number of segments
	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	params := make(map[string]string)
	wildcardIndex := 0

	for i, patternPart := range patternParts {
		if name, ok := placeholderName(patternPart); ok {
			if pathParts[i] == "" {
				return nil, false
			}
			params[name] = unescapeSegment(pathParts[i])
			continue
		}
		if patternPart == "*" {
			params[strconv.Itoa(wildcardIndex)] = unescapeSegment(pathParts[i])
			wildcardIndex++
			continue
		}
		// Literal parts must match exactly
		if patternPart != pathParts[i] {
			return nil, false
		}
	}

	return params, true
}

// matchRecursive handles patterns containing "**". Placeholders before the
// first "**" are still bound since their positions are fixed.
func matchRecursive(pattern, path string) (map[string]string, bool) {
	ok, err := doublestar.Match(globPath(pattern), path)
	if err != nil || !ok {
		return nil, false
	}

	params := make(map[string]string)
	patternParts := splitPath(pattern)
	pathParts := splitPath(path)
	for i, patternPart := range patternParts {
		if patternPart == "**" || i >= len(pathParts) {
			break
		}
		if name, ok := placeholderName(patternPart); ok {
			params[name] = unescapeSegment(pathParts[i])
		}
	}

	return params, true
}

// globPath rewrites {name} segments to "*" for doublestar.
func globPath(pattern string) string {
	parts := strings.Split(pattern, "/")
	for i, part := range parts {
		if _, ok := placeholderName(part); ok {
			parts[i] = "*"
		}
	}
	return strings.Join(parts, "/")
}

func placeholderName(segment string) (string, bool) {
	if len(segment) > 2 && strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
		return segment[1 : len(segment)-1], true
	}
	return "", false
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// normalizePath ensures a leading slash and drops a trailing one.
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// CanonicalPath normalizes an escaped path so that equivalent encodings
// compare equal: each segment is unescaped and re-escaped with uppercase
// hex, keeping "%2F" inside a segment distinct from a separator.
// Placeholder braces and glob characters pass through unchanged.
func CanonicalPath(escaped string) string {
	parts := strings.Split(normalizePath(escaped), "/")
	for i, part := range parts {
		parts[i] = canonicalSegment(part)
	}
	return strings.Join(parts, "/")
}

func canonicalSegment(segment string) string {
	if segment == "" {
		return segment
	}
	raw, err := url.PathUnescape(segment)
	if err != nil {
		raw = segment
	}

	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '%' || c == '/' || c == '?' || c == '#' || c == ' ' || c < 0x20 || c >= 0x7f:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func unescapeSegment(segment string) string {
	if v, err := url.PathUnescape(segment); err == nil {
		return v
	}
	return segment
}
