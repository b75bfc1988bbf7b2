package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/getmockd/fakereq/pkg/fake"
)

// Build creates the expectation described by c. The returned error is the
// first builder error, if any.
func (c *ExpectationConfig) Build() (*fake.Expectation, error) {
	e := fake.NewExpectation(c.Method, c.URI)

	if m := c.Match; m != nil {
		for _, k := range sortedKeys(m.Headers) {
			e.WithHeader(k, m.Headers[k])
		}
		for _, k := range sortedKeys(m.Query) {
			e.WithQuery(k, m.Query[k])
		}
		if m.Body != nil {
			e.WithBody(*m.Body)
		}
		if m.BodyContains != "" {
			e.WithBodyContains(m.BodyContains)
		}
		if m.BodyPattern != "" {
			e.WithBodyPattern(m.BodyPattern)
		}
		for _, k := range sortedKeys(m.JSONPath) {
			e.WithJSONPath(k, m.JSONPath[k])
		}
		if m.JSONSchema != nil {
			schema, err := schemaString(m.JSONSchema)
			if err != nil {
				return nil, err
			}
			e.WithJSONSchema(schema)
		}
		for _, k := range sortedKeys(m.XMLPath) {
			e.WithXMLPath(k, m.XMLPath[k])
		}
		if m.GraphQLOperation != "" {
			e.WithGraphQLOperation(m.GraphQLOperation)
		}
		for _, k := range sortedKeys(m.BearerClaims) {
			e.WithBearerClaim(k, m.BearerClaims[k])
		}
		if m.Expr != "" {
			e.When(m.Expr)
		}
	}

	if r := c.Response; r != nil {
		if r.Status != 0 {
			e.WithStatus(r.Status)
		}
		for _, k := range sortedKeys(r.Headers) {
			e.WithResponseHeader(k, r.Headers[k])
		}
		switch {
		case r.JSON != nil:
			e.WithJSON(r.JSON)
		case r.Template != "":
			e.WithTemplate(r.Template)
		case r.Body != "":
			e.WithResponseBody(r.Body)
		}
	}

	if err := e.Err(); err != nil {
		return nil, err
	}
	return e, nil
}

// Apply validates f and registers its expectations on h in order.
// Nothing is registered when any expectation is invalid.
func (f *Fixture) Apply(h *fake.Handler) error {
	if err := f.Validate(); err != nil {
		return err
	}

	built := make([]*fake.Expectation, 0, len(f.Expectations))
	for i := range f.Expectations {
		e, err := f.Expectations[i].Build()
		if err != nil {
			return fmt.Errorf("%s: %w", f.field(i), err)
		}
		built = append(built, e)
	}

	if f.AllowUnexpected {
		h.AllowUnexpectedCalls()
	}
	for _, e := range built {
		h.Register(e)
	}
	return nil
}

// schemaString accepts a schema written inline as YAML or as a JSON string.
func schemaString(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding jsonSchema: %w", err)
	}
	return string(data), nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
