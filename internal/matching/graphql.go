package matching

import (
	"encoding/json"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// graphQLEnvelope is the standard GraphQL-over-HTTP request body.
type graphQLEnvelope struct {
	Query         string `json:"query"`
	OperationName string `json:"operationName"`
}

// GraphQLOperation matches a GraphQL-over-HTTP body whose document declares
// the named operation. When the envelope selects an operation by name, that
// selection must be the expected one.
func GraphQLOperation(name string) BodyMatcher {
	return func(body []byte) bool {
		var env graphQLEnvelope
		if err := json.Unmarshal(body, &env); err != nil || env.Query == "" {
			return false
		}
		if env.OperationName != "" && env.OperationName != name {
			return false
		}

		doc, err := parser.ParseQuery(&ast.Source{Input: env.Query})
		if err != nil {
			return false
		}
		return doc.Operations.ForName(name) != nil
	}
}
