// Package fake intercepts outgoing HTTP calls in tests and answers them from
// declared expectations instead of the network.
//
// A Handler keeps an ordered list of pending expectations. Each call is
// matched against that list in registration order; the first expectation that
// matches is removed and produces the response. An expectation is therefore
// used at most once: declare it twice to expect two calls.
//
// # Basic Usage
//
//	h := fake.New()
//	h.Get("/users/{id}").
//	    WithHeader("Accept", "application/json").
//	    WithJSON(map[string]any{"id": 1})
//
//	client := h.Client() // *http.Client with the handler as transport
//	resp, err := client.Get("https://api.example.com/users/1")
//
//	if err := h.Verify(); err != nil {
//	    t.Fatal(err) // A GET request to "/users/{id}" was expected.
//	}
//
// # Unmatched Calls
//
// By default a call that matches no pending expectation fails with an
// *UnhandledRequestError naming the method and URI and listing the closest
// pending expectations. AllowUnexpectedCalls makes such calls succeed with an
// empty 200 response, or with the response set through DefaultResponse.
//
// # Matching
//
// Method and URI pattern are always checked. URI patterns support {name}
// placeholders, * and ** globs, a required query subset and absolute URLs.
// Further criteria (headers, query, body, JSONPath, JSON Schema, XML, GraphQL
// operations, bearer token claims, expressions and custom predicates) are
// AND-combined.
//
// # Responses
//
// Static responses are configured with WithStatus, WithJSON, RespondWith and
// friends. WithTemplate renders the body from the request, for example
// {{request.params.id}}. RespondFunc installs a custom Responder; its errors are
// returned unchanged to the caller.
//
// The package pkg/testing wires a Handler to a test's lifecycle.
package fake
