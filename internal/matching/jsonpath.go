package matching

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/ohler55/ojg/jp"
)

// JSONPathCondition is a compiled JSONPath expression with its expected value.
// An expected value of {"exists": true|false} checks presence only.
type JSONPathCondition struct {
	path     string
	expr     jp.Expr
	expected interface{}
}

// CompileJSONPath parses a JSONPath expression for later matching.
func CompileJSONPath(path string, expected interface{}) (*JSONPathCondition, error) {
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath expression %q: %w", path, err)
	}
	return &JSONPathCondition{path: path, expr: expr, expected: expected}, nil
}

// Path returns the source expression.
func (c *JSONPathCondition) Path() string {
	return c.path
}

// MatchBody evaluates the condition against a raw JSON body.
// A body that is not valid JSON never matches.
func (c *JSONPathCondition) MatchBody(body []byte) bool {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return false
	}
	return c.Match(data)
}

// Match evaluates the condition against decoded JSON.
func (c *JSONPathCondition) Match(data interface{}) bool {
	results := c.expr.Get(data)

	if exists, ok := existenceCheck(c.expected); ok {
		return exists == (len(results) > 0)
	}

	// For wildcard paths that return multiple results, any match is enough
	for _, result := range results {
		if valuesEqual(result, c.expected) {
			return true
		}
	}

	return false
}

// LookupJSONPath returns the first value at path in a raw JSON body.
func LookupJSONPath(path string, body []byte) (interface{}, bool) {
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, false
	}
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, false
	}
	results := expr.Get(data)
	if len(results) == 0 {
		return nil, false
	}
	return results[0], true
}

// existenceCheck reports whether expected is an {"exists": bool} object and
// the wanted presence.
func existenceCheck(expected interface{}) (exists bool, ok bool) {
	m, isMap := expected.(map[string]interface{})
	if !isMap || len(m) != 1 {
		return false, false
	}
	v, has := m["exists"]
	if !has {
		return false, false
	}
	b, isBool := v.(bool)
	return isBool && b, true
}

// valuesEqual compares two values for equality, handling type coercion.
// JSON numbers decode as float64 while expectations are often written with ints.
func valuesEqual(actual, expected interface{}) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}

	if reflect.DeepEqual(actual, expected) {
		return true
	}

	actualNum, actualIsNum := toFloat64(actual)
	expectedNum, expectedIsNum := toFloat64(expected)
	if actualIsNum && expectedIsNum {
		return actualNum == expectedNum
	}

	return false
}

// toFloat64 attempts to convert a value to float64.
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
