package config

import (
	"gopkg.in/yaml.v3"
)

// Fixture is the content of one fixture file.
type Fixture struct {
	// Source is the file the fixture was loaded from, empty when parsed
	// from memory.
	Source string `yaml:"-" json:"-"`

	// AllowUnexpected makes calls that match nothing succeed with the
	// default response.
	AllowUnexpected bool `yaml:"allowUnexpected,omitempty" json:"allowUnexpected,omitempty"`

	// Expectations are registered in order.
	Expectations []ExpectationConfig `yaml:"expectations" json:"expectations"`
}

// UnmarshalYAML accepts a bare sequence of expectations as well as the
// document form.
func (f *Fixture) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var expectations []ExpectationConfig
		if err := node.Decode(&expectations); err != nil {
			return err
		}
		f.Expectations = expectations
		return nil
	}

	type fixtureAlias Fixture
	return node.Decode((*fixtureAlias)(f))
}

// ExpectationConfig describes one expected call.
type ExpectationConfig struct {
	// Name is only used in error messages.
	Name     string          `yaml:"name,omitempty" json:"name,omitempty"`
	Method   string          `yaml:"method" json:"method"`
	URI      string          `yaml:"uri" json:"uri"`
	Match    *MatchConfig    `yaml:"match,omitempty" json:"match,omitempty"`
	Response *ResponseConfig `yaml:"response,omitempty" json:"response,omitempty"`
}

// MatchConfig holds the criteria beyond method and URI. All of them must hold.
type MatchConfig struct {
	Headers      map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Query        map[string]string `yaml:"query,omitempty" json:"query,omitempty"`
	Body         *string           `yaml:"body,omitempty" json:"body,omitempty"`
	BodyContains string            `yaml:"bodyContains,omitempty" json:"bodyContains,omitempty"`
	BodyPattern  string            `yaml:"bodyPattern,omitempty" json:"bodyPattern,omitempty"`

	// JSONPath maps JSONPath expressions to expected values.
	// {exists: false} requires the path to be absent.
	JSONPath map[string]any `yaml:"jsonPath,omitempty" json:"jsonPath,omitempty"`

	// JSONSchema is a schema document, given inline as YAML or as a JSON string.
	JSONSchema any `yaml:"jsonSchema,omitempty" json:"jsonSchema,omitempty"`

	// XMLPath maps etree paths to expected element text; "" only requires
	// the element to exist.
	XMLPath map[string]string `yaml:"xmlPath,omitempty" json:"xmlPath,omitempty"`

	GraphQLOperation string         `yaml:"graphqlOperation,omitempty" json:"graphqlOperation,omitempty"`
	BearerClaims     map[string]any `yaml:"bearerClaims,omitempty" json:"bearerClaims,omitempty"`

	// Expr is an expr-lang boolean expression.
	Expr string `yaml:"expr,omitempty" json:"expr,omitempty"`
}

// ResponseConfig describes the response. Body, JSON and Template are
// mutually exclusive.
type ResponseConfig struct {
	Status   int               `yaml:"status,omitempty" json:"status,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Body     string            `yaml:"body,omitempty" json:"body,omitempty"`
	JSON     any               `yaml:"json,omitempty" json:"json,omitempty"`
	Template string            `yaml:"template,omitempty" json:"template,omitempty"`
}
