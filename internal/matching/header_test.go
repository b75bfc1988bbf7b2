package matching

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchHeader(t *testing.T) {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Add("Accept", "text/html")
	headers.Add("Accept", "application/json")

	assert.True(t, MatchHeader("content-type", "application/json", headers))
	assert.True(t, MatchHeader("Accept", "application/json", headers), "any value may match")
	assert.False(t, MatchHeader("Content-Type", "text/plain", headers))
	assert.False(t, MatchHeader("X-Missing", "", headers))

	assert.True(t, MatchHeaders(map[string]string{
		"Content-Type": "application/json",
		"Accept":       "text/html",
	}, headers))
	assert.False(t, MatchHeaders(map[string]string{
		"Content-Type": "application/json",
		"X-Api-Key":    "secret",
	}, headers))
}

func TestMatchHeaderPattern(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer abc.def.ghi")

	tests := []struct {
		name    string
		pattern string
		want    bool
	}{
		{"exact", "Bearer abc.def.ghi", true},
		{"prefix", "Bearer *", true},
		{"suffix", "*.ghi", true},
		{"contains", "*def*", true},
		{"presence", "*", true},
		{"prefix mismatch", "Basic *", false},
		{"exact mismatch", "Bearer other", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchHeaderPattern("Authorization", tt.pattern, headers))
		})
	}

	assert.False(t, MatchHeaderPattern("X-Missing", "*", headers))
}

func TestMatchQuery(t *testing.T) {
	params := url.Values{"tag": {"a", "b"}, "page": {"1"}}

	assert.True(t, MatchQueryParam("tag", "b", params))
	assert.False(t, MatchQueryParam("tag", "c", params))
	assert.True(t, HasQueryParam("page", params))
	assert.False(t, HasQueryParam("limit", params))

	assert.True(t, MatchQuerySubset(url.Values{"tag": {"a", "b"}}, params))
	assert.False(t, MatchQuerySubset(url.Values{"tag": {"a", "c"}}, params))
	assert.True(t, MatchQuerySubset(nil, params))
}

func TestHasHeader(t *testing.T) {
	headers := http.Header{"X-Request-Id": {"abc"}}

	assert.True(t, HasHeader("x-request-id", headers))
	assert.False(t, HasHeader("X-Trace", headers))
	assert.False(t, HasHeader("X-Trace", nil))
}
