package fake

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"

	"github.com/getmockd/fakereq/pkg/template"
)

// Request is the view of an intercepted call that matchers and responders see.
type Request struct {
	// Method is the uppercase HTTP method.
	Method string
	// URI is the request URI as sent: path plus query.
	URI string
	// URL is the parsed request URL. It carries scheme and host for calls
	// made through a client.
	URL *url.URL
	// Header holds the request headers.
	Header http.Header
	// Body is the request body, nil when the call had none.
	Body []byte
	// Params holds the placeholders bound by the matched URI pattern.
	Params map[string]string
	// Extension is free for a RequestDecorator to attach richer data.
	Extension any
	// Raw is the originating *http.Request with its body restored, or nil
	// when the request was built with NewRequest.
	Raw *http.Request
}

// RequestDecorator wraps or enriches a request before matchers and the
// responder of an expectation see it. It must not mutate its argument.
type RequestDecorator func(req *Request) *Request

// NewRequest builds a request for direct dispatch.
func NewRequest(method, uri string, body []byte) (*Request, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid request URI %q: %w", uri, err)
	}
	return &Request{
		Method: strings.ToUpper(method),
		URI:    u.RequestURI(),
		URL:    u,
		Header: make(http.Header),
		Body:   body,
	}, nil
}

// FromHTTP converts an outgoing client request. The body is read and closed;
// Raw receives a clone of r whose body can be read again.
func FromHTTP(r *http.Request) (*Request, error) {
	body, err := readBody(r.Body)
	if err != nil {
		return nil, err
	}

	raw := r.Clone(r.Context())
	raw.Body = io.NopCloser(bytes.NewReader(body))

	return &Request{
		Method: strings.ToUpper(methodOrGet(r.Method)),
		URI:    r.URL.RequestURI(),
		URL:    r.URL,
		Header: r.Header.Clone(),
		Body:   body,
		Raw:    raw,
	}, nil
}

// fromServerRequest converts an incoming server request, filling in the
// scheme and host that a server-side URL lacks.
func fromServerRequest(r *http.Request) (*Request, error) {
	req, err := FromHTTP(r)
	if err != nil {
		return nil, err
	}

	u := *r.URL
	if u.Host == "" {
		u.Host = r.Host
		u.Scheme = "http"
		if r.TLS != nil {
			u.Scheme = "https"
		}
	}
	req.URL = &u
	if r.RequestURI != "" {
		req.URI = r.RequestURI
	}
	return req, nil
}

func readBody(body io.ReadCloser) ([]byte, error) {
	if body == nil || body == http.NoBody {
		return nil, nil
	}
	defer body.Close()
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return b, nil
}

func methodOrGet(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return method
}

// Param returns a placeholder bound by the URI pattern.
func (r *Request) Param(name string) string {
	return r.Params[name]
}

// Query returns the parsed query parameters.
func (r *Request) Query() url.Values {
	if r.URL == nil {
		return url.Values{}
	}
	return r.URL.Query()
}

// DecodeJSON unmarshals the body into v.
func (r *Request) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// Extension returns the decorator data attached to req when it has type T.
func Extension[T any](req *Request) (T, bool) {
	v, ok := req.Extension.(T)
	return v, ok
}

// clone returns a shallow copy with its own Params map.
func (r *Request) clone() *Request {
	c := *r
	c.Params = maps.Clone(r.Params)
	return &c
}

// path returns the URL path, "/" when empty.
func (r *Request) path() string {
	if r.URL == nil || r.URL.Path == "" {
		return "/"
	}
	return r.URL.Path
}

// templateContext exposes the request to the template engine.
func (r *Request) templateContext() *template.Context {
	return &template.Context{
		Method: r.Method,
		Path:   r.path(),
		URI:    r.URI,
		Query:  r.Query(),
		Header: r.Header,
		Params: r.Params,
		Body:   r.Body,
	}
}

// exprEnv exposes the request to When expressions.
func (r *Request) exprEnv() map[string]interface{} {
	query := make(map[string]string)
	for k, v := range r.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}
	headers := make(map[string]string)
	for k, v := range r.Header {
		if len(v) > 0 {
			headers[http.CanonicalHeaderKey(k)] = v[0]
		}
	}
	params := r.Params
	if params == nil {
		params = map[string]string{}
	}

	var data interface{}
	if len(r.Body) > 0 {
		if err := json.Unmarshal(r.Body, &data); err != nil {
			data = nil
		}
	}

	return map[string]interface{}{
		"method":  r.Method,
		"uri":     r.URI,
		"path":    r.path(),
		"params":  params,
		"query":   query,
		"headers": headers,
		"body":    string(r.Body),
		"json":    data,
	}
}
