package fake

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/getmockd/fakereq/internal/matching"
	"github.com/getmockd/fakereq/pkg/template"
)

// Matcher is an extra predicate an expectation places on a request.
type Matcher func(req *Request) bool

// Responder produces the response for a consumed expectation. A returned
// error reaches the caller unchanged.
type Responder func(req *Request) (*Response, error)

// criterion is a named Matcher; the name shows up in near-miss reports.
type criterion struct {
	name  string
	match Matcher
}

// Expectation describes one expected call and the response to give it.
// Method and URI are fixed at construction. The With*/Respond* builders
// must be called before the expectation is first dispatched against.
type Expectation struct {
	id        string
	method    string
	uri       string
	pattern   *matching.URIPattern
	criteria  []criterion
	responder Responder
	response  *Response
	template  string
	decorator RequestDecorator
	err       error
}

var templates = template.New()

// NewExpectation creates an expectation for method and URI pattern that
// answers 200 with an empty body until configured otherwise.
func NewExpectation(method, uri string) *Expectation {
	e := &Expectation{
		id:       uuid.NewString(),
		method:   strings.ToUpper(method),
		uri:      uri,
		response: NewResponse(http.StatusOK, nil),
	}
	if e.method == "" {
		e.setError(fmt.Errorf("empty method"))
	}
	pattern, err := matching.ParseURIPattern(uri)
	if err != nil {
		e.setError(err)
	} else {
		e.pattern = pattern
	}
	return e
}

// setError records the first error encountered during building.
// An expectation with an error never matches.
func (e *Expectation) setError(err error) {
	if e.err == nil {
		e.err = err
	}
}

// ID returns the unique id of the expectation.
func (e *Expectation) ID() string { return e.id }

// Method returns the uppercase HTTP method.
func (e *Expectation) Method() string { return e.method }

// URI returns the URI pattern as written.
func (e *Expectation) URI() string { return e.uri }

// Err returns the first error encountered while building the expectation.
func (e *Expectation) Err() error { return e.err }

// String returns "METHOD uri".
func (e *Expectation) String() string {
	return e.method + " " + e.uri
}

// Matches reports whether req satisfies the method, the URI pattern and
// every registered criterion. It has no side effects.
func (e *Expectation) Matches(req *Request) bool {
	_, ok := e.match(req)
	return ok
}

// match returns the decorated request with bound placeholders on success.
func (e *Expectation) match(req *Request) (*Request, bool) {
	if e.err != nil || req == nil {
		return nil, false
	}

	bound := e.prepare(req)
	if !strings.EqualFold(bound.Method, e.method) {
		return nil, false
	}

	params, ok := e.pattern.Match(bound.URL)
	if !ok {
		return nil, false
	}
	bound.Params = params

	for _, c := range e.criteria {
		if !c.match(bound) {
			return nil, false
		}
	}
	return bound, true
}

// prepare applies the decorator to a copy of req.
func (e *Expectation) prepare(req *Request) *Request {
	c := req.clone()
	if e.decorator != nil {
		if decorated := e.decorator(c); decorated != nil {
			c = decorated
		}
	}
	return c
}

// Describe lists why req does not match, one reason per failed check.
// It returns nil when req matches.
func (e *Expectation) Describe(req *Request) []string {
	if req == nil {
		return []string{"no request"}
	}
	if e.err != nil {
		return []string{"invalid expectation: " + e.err.Error()}
	}

	bound := e.prepare(req)
	var reasons []string

	if !strings.EqualFold(bound.Method, e.method) {
		reasons = append(reasons, fmt.Sprintf("method: expected %s, got %s", e.method, bound.Method))
	}
	if params, ok := e.pattern.Match(bound.URL); ok {
		bound.Params = params
	} else {
		reasons = append(reasons, fmt.Sprintf("uri: %s does not match %s", bound.URI, e.uri))
	}
	for _, c := range e.criteria {
		if !c.match(bound) {
			reasons = append(reasons, "not matched: "+c.name)
		}
	}
	return reasons
}

// Respond produces the response for req. Placeholders of the URI pattern
// are bound when req matches it.
func (e *Expectation) Respond(req *Request) (*Response, error) {
	bound := e.prepare(req)
	if e.pattern != nil {
		if params, ok := e.pattern.Match(bound.URL); ok {
			bound.Params = params
		}
	}
	return e.respond(bound)
}

func (e *Expectation) respond(req *Request) (*Response, error) {
	if e.responder != nil {
		resp, err := e.responder(req)
		if err == nil && resp == nil {
			resp = emptyResponse()
		}
		return resp, err
	}

	resp := e.response.clone()
	if e.template != "" {
		body, err := templates.Process(e.template, req.templateContext())
		if err != nil {
			return nil, fmt.Errorf("render response template: %w", err)
		}
		resp.Body = []byte(body)
	}
	return resp, nil
}

// extendRequest sets the decorator used before matching and responding.
func (e *Expectation) extendRequest(fn RequestDecorator) *Expectation {
	e.decorator = fn
	return e
}

func (e *Expectation) addCriterion(name string, fn Matcher) *Expectation {
	e.criteria = append(e.criteria, criterion{name: name, match: fn})
	return e
}

func (e *Expectation) addBodyCriterion(name string, fn matching.BodyMatcher) *Expectation {
	return e.addCriterion(name, func(req *Request) bool {
		return fn(req.Body)
	})
}

// Match adds a custom named predicate.
func (e *Expectation) Match(name string, fn Matcher) *Expectation {
	if fn == nil {
		e.setError(fmt.Errorf("Match %q: nil matcher", name))
		return e
	}
	return e.addCriterion(name, fn)
}

// WithHeader requires a request header with the exact value.
func (e *Expectation) WithHeader(name, value string) *Expectation {
	return e.addCriterion(fmt.Sprintf("header %s: %q", name, value), func(req *Request) bool {
		return matching.MatchHeader(name, value, req.Header)
	})
}

// WithHeaders requires every header in the map, added in name order.
func (e *Expectation) WithHeaders(headers map[string]string) *Expectation {
	for _, name := range slices.Sorted(maps.Keys(headers)) {
		e.WithHeader(name, headers[name])
	}
	return e
}

// WithHeaderPattern requires a request header matching a wildcard pattern
// such as "Bearer *".
func (e *Expectation) WithHeaderPattern(name, pattern string) *Expectation {
	return e.addCriterion(fmt.Sprintf("header %s ~ %q", name, pattern), func(req *Request) bool {
		return matching.MatchHeaderPattern(name, pattern, req.Header)
	})
}

// WithQuery requires a query parameter with the value.
func (e *Expectation) WithQuery(name, value string) *Expectation {
	return e.addCriterion(fmt.Sprintf("query %s=%q", name, value), func(req *Request) bool {
		return matching.MatchQueryParam(name, value, req.Query())
	})
}

// WithBody requires the body to equal body exactly.
func (e *Expectation) WithBody(body string) *Expectation {
	return e.addBodyCriterion(fmt.Sprintf("body equals %q", body), matching.BodyEquals(body))
}

// WithBodyContains requires the body to contain substr.
func (e *Expectation) WithBodyContains(substr string) *Expectation {
	return e.addBodyCriterion(fmt.Sprintf("body contains %q", substr), matching.BodyContains(substr))
}

// WithBodyPattern requires the body to match a regular expression.
func (e *Expectation) WithBodyPattern(pattern string) *Expectation {
	m, err := matching.BodyPattern(pattern)
	if err != nil {
		e.setError(fmt.Errorf("WithBodyPattern: %w", err))
		return e
	}
	return e.addBodyCriterion(fmt.Sprintf("body matches %q", pattern), m)
}

// WithJSONBody requires the body to be JSON equal to v, ignoring key order.
func (e *Expectation) WithJSONBody(v any) *Expectation {
	var data []byte
	switch body := v.(type) {
	case string:
		data = []byte(body)
	case []byte:
		data = body
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			e.setError(fmt.Errorf("WithJSONBody: failed to marshal: %w", err))
			return e
		}
	}
	m, err := matching.JSONEquals(data)
	if err != nil {
		e.setError(fmt.Errorf("WithJSONBody: %w", err))
		return e
	}
	return e.addBodyCriterion(fmt.Sprintf("JSON body %s", data), m)
}

// WithJSONPath requires the JSONPath expression to select expected.
// Use map[string]any{"exists": false} to require absence.
func (e *Expectation) WithJSONPath(path string, expected any) *Expectation {
	c, err := matching.CompileJSONPath(path, expected)
	if err != nil {
		e.setError(fmt.Errorf("WithJSONPath: %w", err))
		return e
	}
	return e.addBodyCriterion(fmt.Sprintf("JSONPath %s = %v", path, expected), c.MatchBody)
}

// WithJSONSchema requires the body to validate against a JSON Schema.
func (e *Expectation) WithJSONSchema(schema string) *Expectation {
	m, err := matching.JSONSchema(schema)
	if err != nil {
		e.setError(fmt.Errorf("WithJSONSchema: %w", err))
		return e
	}
	return e.addBodyCriterion("JSON schema", m)
}

// WithXMLPath requires an XML element at path, with text equal to expected
// unless expected is empty.
func (e *Expectation) WithXMLPath(path, expected string) *Expectation {
	m, err := matching.XMLPath(path, expected)
	if err != nil {
		e.setError(fmt.Errorf("WithXMLPath: %w", err))
		return e
	}
	return e.addBodyCriterion(fmt.Sprintf("XML %s = %q", path, expected), m)
}

// WithGraphQLOperation requires a GraphQL-over-HTTP body declaring the
// named operation.
func (e *Expectation) WithGraphQLOperation(name string) *Expectation {
	return e.addBodyCriterion(fmt.Sprintf("GraphQL operation %s", name), matching.GraphQLOperation(name))
}

// WithBearerClaim requires an Authorization bearer JWT carrying the claim.
// The token signature is not checked.
func (e *Expectation) WithBearerClaim(claim string, expected any) *Expectation {
	return e.addCriterion(fmt.Sprintf("bearer claim %s = %v", claim, expected), func(req *Request) bool {
		return matching.MatchBearerClaim(req.Header, claim, expected)
	})
}

// When requires a boolean expr-lang expression to hold. The environment
// provides method, uri, path, params, query, headers, body and json.
//
//	h.Post("/orders").When(`json.total > 100 && headers["X-Tenant"] == "acme"`)
func (e *Expectation) When(expression string) *Expectation {
	program, err := matching.CompileExpr(expression)
	if err != nil {
		e.setError(fmt.Errorf("When: %w", err))
		return e
	}
	return e.addCriterion(fmt.Sprintf("expression %s", expression), func(req *Request) bool {
		ok, err := program.Eval(req.exprEnv())
		return err == nil && ok
	})
}

// RespondFunc installs a custom responder, replacing any static response.
func (e *Expectation) RespondFunc(fn Responder) *Expectation {
	if fn == nil {
		e.setError(fmt.Errorf("RespondFunc: nil responder"))
		return e
	}
	e.responder = fn
	return e
}

// RespondError makes the call fail with err, as a transport error would.
func (e *Expectation) RespondError(err error) *Expectation {
	return e.RespondFunc(func(*Request) (*Response, error) {
		return nil, err
	})
}

// WithStatus sets the response status code. Default is 200.
func (e *Expectation) WithStatus(status int) *Expectation {
	e.response.Status = status
	return e
}

// WithResponseHeader adds a response header.
func (e *Expectation) WithResponseHeader(key, value string) *Expectation {
	e.response.Header.Add(key, value)
	return e
}

// WithResponseBody sets the raw response body. Strings and byte slices are
// used as is; other values are encoded as JSON.
func (e *Expectation) WithResponseBody(body any) *Expectation {
	switch v := body.(type) {
	case nil:
		e.response.Body = nil
	case string:
		e.response.Body = []byte(v)
	case []byte:
		e.response.Body = v
	default:
		return e.WithJSON(v)
	}
	return e
}

// WithJSON sets the response body to v encoded as JSON and the
// Content-Type to application/json.
func (e *Expectation) WithJSON(v any) *Expectation {
	data, err := json.Marshal(v)
	if err != nil {
		e.setError(fmt.Errorf("WithJSON: failed to marshal body: %w", err))
		return e
	}
	e.response.Body = data
	e.response.Header.Set("Content-Type", "application/json")
	return e
}

// WithTemplate renders the response body from the request on each use.
// See package template for the available expressions.
func (e *Expectation) WithTemplate(tmpl string) *Expectation {
	e.template = tmpl
	return e
}

// RespondWith is a shorthand for setting status and body together.
func (e *Expectation) RespondWith(status int, body any) *Expectation {
	return e.WithStatus(status).WithResponseBody(body)
}
