package matching

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JSONSchema compiles a JSON Schema document into a body matcher.
// The body matches when it is valid JSON and validates against the schema.
func JSONSchema(schema string) (BodyMatcher, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource("schema.json", strings.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid JSON schema: %w", err)
	}

	return func(body []byte) bool {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		var data interface{}
		if err := dec.Decode(&data); err != nil {
			return false
		}
		return compiled.Validate(data) == nil
	}, nil
}
