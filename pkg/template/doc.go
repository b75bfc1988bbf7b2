// Package template renders response bodies from request data.
//
// Templates use {{expression}} placeholders. Unknown expressions render as an
// empty string; an unclosed {{ is an error.
//
// # Request Data
//
//	{{request.method}}           uppercase HTTP method
//	{{request.path}}             URL path
//	{{request.uri}}              request URI as sent
//	{{request.body}}             raw request body
//	{{request.params.id}}        placeholder bound by the URI pattern /users/{id}
//	{{request.query.page}}       first value of a query parameter
//	{{request.header.X-Trace}}   first value of a request header
//	{{request.json.$.user.name}} JSONPath lookup into a JSON request body
//
// # Built-ins
//
//	{{now}} {{timestamp}} {{timestamp.unix_ms}} {{uuid}} {{uuid.short}}
//
// # Functions
//
//	{{upper(request.params.name)}}
//	{{lower(request.header.X-Env)}}
//	{{default(request.query.limit, "10")}}
package template
