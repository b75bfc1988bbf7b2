package matching

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
)

// BodyMatcher reports whether a raw request body satisfies a criterion.
type BodyMatcher func(body []byte) bool

// BodyEquals matches a body that is byte-for-byte equal to expected.
func BodyEquals(expected string) BodyMatcher {
	want := []byte(expected)
	return func(body []byte) bool {
		return bytes.Equal(body, want)
	}
}

// BodyContains matches a body containing the substring.
func BodyContains(substr string) BodyMatcher {
	want := []byte(substr)
	return func(body []byte) bool {
		return bytes.Contains(body, want)
	}
}

// BodyPattern compiles a regex body matcher.
// Uses Go's regexp package with RE2 syntax.
func BodyPattern(pattern string) (BodyMatcher, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty body pattern")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid body pattern %q: %w", pattern, err)
	}
	return re.Match, nil
}

// JSONEquals matches a body that decodes to the same JSON value as expected,
// ignoring key order and whitespace.
func JSONEquals(expected []byte) (BodyMatcher, error) {
	var want interface{}
	if err := json.Unmarshal(expected, &want); err != nil {
		return nil, fmt.Errorf("invalid expected JSON: %w", err)
	}
	return func(body []byte) bool {
		var got interface{}
		if err := json.Unmarshal(body, &got); err != nil {
			return false
		}
		return reflect.DeepEqual(got, want)
	}, nil
}
