package testing

import (
	"encoding/json"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/getmockd/fakereq/internal/matching"
	"github.com/getmockd/fakereq/pkg/fake"
)

// RequestLog is a dispatched call, shaped for assertions.
type RequestLog struct {
	// Method is the HTTP method (GET, POST, etc.)
	Method string
	// Path is the escaped request URL path
	Path string
	// Query holds the parsed query parameters
	Query url.Values
	// Header holds the request headers
	Header http.Header
	// Body is the request body content
	Body string
	// Expectation is the consumed expectation, empty when nothing matched
	Expectation string
	// ExpectationID is the ID of the consumed expectation
	ExpectationID string
	// Unhandled is set when the call matched nothing and failed
	Unhandled bool
}

func newRequestLog(c fake.Call) RequestLog {
	log := RequestLog{
		Method:        c.Method,
		Path:          callPath(c.URI),
		Query:         url.Values{},
		Header:        c.Header,
		Body:          string(c.Body),
		Expectation:   c.Expectation,
		ExpectationID: c.ExpectationID,
		Unhandled:     c.Unhandled,
	}
	if u, err := url.Parse(c.URI); err == nil {
		log.Query = u.Query()
	}
	if log.Header == nil {
		log.Header = http.Header{}
	}
	return log
}

// AssertJSONBody asserts that the request body matches the expected JSON.
// The expected value can be a string, []byte, or any struct/map that will be JSON encoded.
func (r *RequestLog) AssertJSONBody(t testing.TB, expected any) {
	t.Helper()

	var data []byte
	switch v := expected.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			t.Errorf("failed to marshal expected value: %v", err)
			return
		}
	}

	var expectedJSON, actualJSON any
	if err := json.Unmarshal(data, &expectedJSON); err != nil {
		t.Errorf("failed to parse expected JSON: %v", err)
		return
	}
	if err := json.Unmarshal([]byte(r.Body), &actualJSON); err != nil {
		t.Errorf("request body is not valid JSON: %v\nbody: %s", err, r.Body)
		return
	}

	if !reflect.DeepEqual(actualJSON, expectedJSON) {
		expectedBytes, _ := json.MarshalIndent(expectedJSON, "", "  ")
		actualBytes, _ := json.MarshalIndent(actualJSON, "", "  ")
		t.Errorf("request body does not match expected JSON\nexpected:\n%s\nactual:\n%s",
			string(expectedBytes), string(actualBytes))
	}
}

// AssertBody asserts that the request body exactly matches the expected string.
func (r *RequestLog) AssertBody(t testing.TB, expected string) {
	t.Helper()

	if r.Body != expected {
		t.Errorf("request body does not match\nexpected: %q\nactual: %q", expected, r.Body)
	}
}

// AssertBodyContains asserts that the request body contains the expected substring.
func (r *RequestLog) AssertBodyContains(t testing.TB, substr string) {
	t.Helper()

	if !strings.Contains(r.Body, substr) {
		t.Errorf("request body does not contain %q\nbody: %s", substr, r.Body)
	}
}

// AssertHeader asserts that the request had the header with the expected value.
func (r *RequestLog) AssertHeader(t testing.TB, key, expected string) {
	t.Helper()

	if !matching.HasHeader(key, r.Header) {
		t.Errorf("request does not have header %q", key)
		return
	}
	if actual := r.Header.Get(key); actual != expected {
		t.Errorf("header %q value mismatch\nexpected: %q\nactual: %q", key, expected, actual)
	}
}

// AssertHeaders asserts that every header in expected had its value.
func (r *RequestLog) AssertHeaders(t testing.TB, expected map[string]string) {
	t.Helper()

	if !matching.MatchHeaders(expected, r.Header) {
		t.Errorf("request headers mismatch\nexpected: %v\nactual: %v", expected, r.Header)
	}
}

// AssertHeaderExists asserts that the request had the header (any value).
func (r *RequestLog) AssertHeaderExists(t testing.TB, key string) {
	t.Helper()

	if !matching.HasHeader(key, r.Header) {
		t.Errorf("request does not have header %q", key)
	}
}

// AssertHeaderContains asserts that the header value contains the expected substring.
func (r *RequestLog) AssertHeaderContains(t testing.TB, key, substr string) {
	t.Helper()

	if !matching.HasHeader(key, r.Header) {
		t.Errorf("request does not have header %q", key)
		return
	}
	if actual := r.Header.Get(key); !strings.Contains(actual, substr) {
		t.Errorf("header %q value does not contain %q\nvalue: %q", key, substr, actual)
	}
}

// AssertQueryParam asserts that the request had the query parameter.
func (r *RequestLog) AssertQueryParam(t testing.TB, key, expected string) {
	t.Helper()

	if !matching.HasQueryParam(key, r.Query) {
		t.Errorf("request does not have query parameter %q", key)
		return
	}
	if !matching.MatchQueryParam(key, expected, r.Query) {
		t.Errorf("query parameter %q value mismatch\nexpected: %q\nactual: %q", key, expected, r.Query[key])
	}
}

// AssertQueryParamExists asserts that the request had the query parameter (any value).
func (r *RequestLog) AssertQueryParamExists(t testing.TB, key string) {
	t.Helper()

	if !matching.HasQueryParam(key, r.Query) {
		t.Errorf("request does not have query parameter %q", key)
	}
}

// AssertMethod asserts that the request used the expected HTTP method.
func (r *RequestLog) AssertMethod(t testing.TB, expected string) {
	t.Helper()

	if !strings.EqualFold(r.Method, expected) {
		t.Errorf("request method mismatch\nexpected: %q\nactual: %q", expected, r.Method)
	}
}

// AssertPath asserts that the request path satisfies the path pattern.
func (r *RequestLog) AssertPath(t testing.TB, expected string) {
	t.Helper()

	if _, ok := matching.MatchPath(matching.CanonicalPath(expected), r.Path); !ok {
		t.Errorf("request path mismatch\nexpected: %q\nactual: %q", expected, r.Path)
	}
}

// JSONField extracts a field from the request body JSON. The field is a
// JSONPath ("$.user.name") or dot notation ("user.name").
// Returns nil if the body is not valid JSON or the field doesn't exist.
func (r *RequestLog) JSONField(field string) any {
	path := field
	if !strings.HasPrefix(path, "$") {
		path = "$." + path
	}
	v, ok := matching.LookupJSONPath(path, []byte(r.Body))
	if !ok {
		return nil
	}
	return v
}

// AssertJSONField asserts that a JSON field in the request body has the expected value.
func (r *RequestLog) AssertJSONField(t testing.TB, field string, expected any) {
	t.Helper()

	actual := r.JSONField(field)
	if actual == nil {
		t.Errorf("JSON field %q not found in request body: %s", field, r.Body)
		return
	}

	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("JSON field %q mismatch\nexpected: %v (%T)\nactual: %v (%T)",
			field, expected, expected, actual, actual)
	}
}
