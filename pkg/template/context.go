package template

import (
	"net/http"
	"net/url"
)

// Context holds the request data available for template evaluation.
type Context struct {
	Method string
	Path   string
	URI    string
	Query  url.Values
	Header http.Header
	Params map[string]string
	Body   []byte
}

// param returns a bound placeholder or "" when absent.
func (c *Context) param(name string) string {
	if c == nil || c.Params == nil {
		return ""
	}
	return c.Params[name]
}

func (c *Context) query(name string) string {
	if c == nil || c.Query == nil {
		return ""
	}
	return c.Query.Get(name)
}

func (c *Context) header(name string) string {
	if c == nil || c.Header == nil {
		return ""
	}
	return c.Header.Get(name)
}
