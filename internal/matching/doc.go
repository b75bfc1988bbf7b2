// Package matching provides the request predicates used by expectations.
//
// It covers the criteria an expectation can place on an intercepted request:
//
//   - URI patterns: exact paths, {name} placeholders, * and ** globs, query
//     subsets and absolute URLs with a host
//   - Header matching: exact values and wildcard patterns
//   - Query parameter matching: key-value verification
//   - Body matching: exact, contains, regex, JSONPath, JSON Schema, XML paths
//     and GraphQL operation names
//   - Bearer token claims and boolean expressions
//
// Constructors that take user input (regexes, schemas, expressions) compile it
// once and return an error for invalid input, so an expectation can fail at
// setup rather than silently never matching.
//
// Key types:
//
//   - URIPattern: a parsed URI pattern that binds placeholders on match
//   - BodyMatcher: a predicate over a raw request body
package matching
