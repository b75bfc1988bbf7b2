package fake

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// Response is the synthesized answer to an intercepted call.
type Response struct {
	// Status is the HTTP status code.
	Status int
	// Header holds the response headers.
	Header http.Header
	// Body is the raw payload, nil for an empty body.
	Body []byte
}

// NewResponse creates a response with the given status and raw body.
func NewResponse(status int, body []byte) *Response {
	return &Response{Status: status, Header: make(http.Header), Body: body}
}

// JSONResponse creates a response with v encoded as JSON.
func JSONResponse(status int, v any) (*Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response body: %w", err)
	}
	resp := NewResponse(status, data)
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

// emptyResponse is the generic answer to an allowed unexpected call.
func emptyResponse() *Response {
	return NewResponse(http.StatusOK, nil)
}

// clone copies the response so callers cannot alter a stored one.
func (r *Response) clone() *Response {
	c := &Response{Status: r.Status, Header: r.Header.Clone()}
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	if r.Body != nil {
		c.Body = bytes.Clone(r.Body)
	}
	return c
}

// HTTP converts the response into an *http.Response answering req.
func (r *Response) HTTP(req *http.Request) *http.Response {
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	header := r.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}

	body := r.Body
	if req != nil && req.Method == http.MethodHead {
		body = nil
	}

	return &http.Response{
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

// Write sends the response to w.
func (r *Response) Write(w http.ResponseWriter) error {
	for k, values := range r.Header {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(r.Body) == 0 {
		return nil
	}
	if _, err := w.Write(r.Body); err != nil {
		return fmt.Errorf("write response body: %w", err)
	}
	return nil
}
