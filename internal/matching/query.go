package matching

import (
	"net/url"
)

// MatchQueryParam checks if any value of the query parameter equals expectedValue.
func MatchQueryParam(name, expectedValue string, params url.Values) bool {
	for _, v := range params[name] {
		if v == expectedValue {
			return true
		}
	}
	return false
}

// MatchQuerySubset checks that every expected key/value pair is present.
// Extra parameters in the request are ignored.
func MatchQuerySubset(expected, params url.Values) bool {
	for name, values := range expected {
		for _, value := range values {
			if !MatchQueryParam(name, value, params) {
				return false
			}
		}
	}
	return true
}

// HasQueryParam checks if a query parameter exists (regardless of value).
func HasQueryParam(name string, params url.Values) bool {
	_, exists := params[name]
	return exists
}
