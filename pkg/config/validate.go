package config

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/getmockd/fakereq/internal/matching"
)

// ValidationError describes one invalid field of a fixture.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// validHTTPMethods are the allowed HTTP methods.
var validHTTPMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodPatch:   true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// headerNameRegex validates HTTP header names (RFC 7230).
var headerNameRegex = regexp.MustCompile(`^[A-Za-z0-9!#$%&'*+\-.^_\x60|~]+$`)

// Validate checks every expectation and returns all problems joined.
func (f *Fixture) Validate() error {
	if len(f.Expectations) == 0 {
		return &ValidationError{Field: f.prefix() + "expectations", Message: "at least one expectation is required"}
	}

	var errs []error
	for i := range f.Expectations {
		errs = append(errs, f.validateExpectation(i)...)
	}
	return errors.Join(errs...)
}

func (f *Fixture) validateExpectation(i int) []error {
	c := &f.Expectations[i]
	field := f.field(i)

	var errs []error
	invalid := func(name, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field + "." + name, Message: fmt.Sprintf(format, args...)})
	}

	if !validHTTPMethods[strings.ToUpper(c.Method)] {
		invalid("method", "unsupported method %q", c.Method)
	}
	if c.URI == "" {
		invalid("uri", "is required")
	} else if _, err := matching.ParseURIPattern(c.URI); err != nil {
		invalid("uri", "%v", err)
	}

	if m := c.Match; m != nil {
		for name := range m.Headers {
			if !headerNameRegex.MatchString(name) {
				invalid("match.headers", "invalid header name %q", name)
			}
		}
	}

	if r := c.Response; r != nil {
		if r.Status != 0 && (r.Status < 100 || r.Status > 599) {
			invalid("response.status", "must be between 100 and 599, got %d", r.Status)
		}
		for name := range r.Headers {
			if !headerNameRegex.MatchString(name) {
				invalid("response.headers", "invalid header name %q", name)
			}
		}
		set := 0
		for _, present := range []bool{r.Body != "", r.JSON != nil, r.Template != ""} {
			if present {
				set++
			}
		}
		if set > 1 {
			invalid("response", "body, json and template are mutually exclusive")
		}
	}

	if len(errs) > 0 {
		return errs
	}

	// Remaining problems (bad regex, schema, expression) surface from the builders.
	if _, err := c.Build(); err != nil {
		errs = append(errs, &ValidationError{Field: field, Message: err.Error()})
	}
	return errs
}

// field names expectation i in messages, including its name when set.
func (f *Fixture) field(i int) string {
	field := fmt.Sprintf("%sexpectations[%d]", f.prefix(), i)
	if name := f.Expectations[i].Name; name != "" {
		field += fmt.Sprintf("(%s)", name)
	}
	return field
}

func (f *Fixture) prefix() string {
	if f.Source == "" {
		return ""
	}
	return f.Source + ": "
}
