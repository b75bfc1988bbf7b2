package matching

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPath(t *testing.T) {
	tests := []struct {
		name       string
		pattern    string
		path       string
		wantMatch  bool
		wantParams map[string]string
	}{
		{
			name:       "exact match",
			pattern:    "/api/users",
			path:       "/api/users",
			wantMatch:  true,
			wantParams: map[string]string{},
		},
		{
			name:       "named param match",
			pattern:    "/api/users/{id}",
			path:       "/api/users/123",
			wantMatch:  true,
			wantParams: map[string]string{"id": "123"},
		},
		{
			name:       "multiple named params",
			pattern:    "/users/{userId}/posts/{postId}",
			path:       "/users/42/posts/99",
			wantMatch:  true,
			wantParams: map[string]string{"userId": "42", "postId": "99"},
		},
		{
			name:      "named param needs same segment count",
			pattern:   "/api/users/{id}",
			path:      "/api/users/123/posts",
			wantMatch: false,
		},
		{
			name:       "single wildcard",
			pattern:    "/api/*/items",
			path:       "/api/users/items",
			wantMatch:  true,
			wantParams: map[string]string{"0": "users"},
		},
		{
			name:       "recursive wildcard",
			pattern:    "/api/**",
			path:       "/api/users/1/posts",
			wantMatch:  true,
			wantParams: map[string]string{},
		},
		{
			name:       "recursive wildcard keeps leading params",
			pattern:    "/tenants/{tenant}/**",
			path:       "/tenants/acme/users/1",
			wantMatch:  true,
			wantParams: map[string]string{"tenant": "acme"},
		},
		{
			name:      "recursive wildcard mismatch",
			pattern:   "/api/**",
			path:      "/other/users",
			wantMatch: false,
		},
		{
			name:      "no match",
			pattern:   "/api/users",
			path:      "/api/products",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, ok := MatchPath(tt.pattern, tt.path)
			assert.Equal(t, tt.wantMatch, ok)
			if tt.wantMatch {
				assert.Equal(t, tt.wantParams, params)
			}
		})
	}
}

func TestURIPattern_Match(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		url       string
		wantMatch bool
	}{
		{"relative path", "/users/1", "/users/1", true},
		{"trailing slash ignored", "/users/", "/users", true},
		{"missing leading slash", "users/1", "/users/1", true},
		{"query in request ignored", "/users", "/users?page=2", true},
		{"query subset required", "/search?q=go", "/search?q=go&page=1", true},
		{"query subset value mismatch", "/search?q=go", "/search?q=rust", false},
		{"query subset key missing", "/search?q=go", "/search", false},
		{"absolute pattern matches host", "https://api.example.com/users", "https://api.example.com/users", true},
		{"absolute pattern host case", "https://API.example.com/users", "https://api.example.com/users", true},
		{"absolute pattern other host", "https://api.example.com/users", "https://other.example.com/users", false},
		{"absolute pattern other scheme", "https://api.example.com/users", "http://api.example.com/users", false},
		{"absolute pattern relative request", "https://api.example.com/users", "/users", false},
		{"absolute pattern without path", "https://api.example.com", "https://api.example.com/", true},
		{"relative pattern absolute request", "/users", "https://api.example.com/users", true},
		{"escaped space", "/files/a%20b", "/files/a%20b", true},
		{"literal space in pattern", "/files/a b", "/files/a%20b", true},
		{"escaped slash", "/files/a%2Fb", "/files/a%2Fb", true},
		{"escaped slash lowercase hex", "/files/a%2Fb", "/files/a%2fb", true},
		{"escaped slash is not a separator", "/files/a%2Fb", "/files/a/b", false},
		{"separator is not an escaped slash", "/files/a/b", "/files/a%2Fb", false},
		{"non-ASCII", "/caf\u00e9", "/caf%C3%A9", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseURIPattern(tt.pattern)
			require.NoError(t, err)

			u, err := url.Parse(tt.url)
			require.NoError(t, err)

			_, ok := p.Match(u)
			assert.Equal(t, tt.wantMatch, ok)
		})
	}
}

func TestURIPattern_Placeholders(t *testing.T) {
	p, err := ParseURIPattern("https://api.example.com/users/{id}/posts/{post}?expand=author")
	require.NoError(t, err)
	assert.Equal(t, "/users/{id}/posts/{post}", p.Path())
	assert.Equal(t, "https://api.example.com/users/{id}/posts/{post}?expand=author", p.String())

	u, err := url.Parse("https://api.example.com/users/7/posts/hello?expand=author")
	require.NoError(t, err)

	params, ok := p.Match(u)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"id": "7", "post": "hello"}, params)
}

func TestParseURIPattern_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
	}{
		{"empty", ""},
		{"missing host", "https:///users"},
		{"bad query", "/users?%zz"},
		{"bad glob", "/api/**/[unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURIPattern(tt.pattern)
			assert.Error(t, err)
		})
	}
}

func TestURIPattern_MatchNilURL(t *testing.T) {
	p, err := ParseURIPattern("/users")
	require.NoError(t, err)

	_, ok := p.Match(nil)
	assert.False(t, ok)
}

func TestURIPattern_EscapedCaptures(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		url     string
		want    map[string]string
	}{
		{"named param unescaped", "/files/{name}", "/files/a%20b", map[string]string{"name": "a b"}},
		{"named param keeps slash", "/files/{name}", "/files/a%2Fb", map[string]string{"name": "a/b"}},
		{"wildcard unescaped", "/files/*", "/files/a%2Fb", map[string]string{"0": "a/b"}},
		{"recursive keeps leading param", "/files/{dir}/**", "/files/x%20y/z", map[string]string{"dir": "x y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseURIPattern(tt.pattern)
			require.NoError(t, err)

			u, err := url.Parse(tt.url)
			require.NoError(t, err)

			params, ok := p.Match(u)
			require.True(t, ok)
			assert.Equal(t, tt.want, params)
		})
	}
}

func TestCanonicalPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/users/", "/users"},
		{"/files/a%2fb", "/files/a%2Fb"},
		{"/files/a b", "/files/a%20b"},
		{"/files/%7Eme", "/files/~me"},
		{"/users/{id}/**", "/users/{id}/**"},
		{"/bad/%zz", "/bad/%25zz"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalPath(tt.in))
		})
	}
}
