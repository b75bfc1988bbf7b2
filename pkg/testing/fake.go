package testing

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/getmockd/fakereq/internal/matching"
	"github.com/getmockd/fakereq/pkg/fake"
	"github.com/getmockd/fakereq/pkg/logging"
)

// Handler is a fake.Handler bound to a test. Expectations left pending, and
// calls that matched nothing, fail the test when it completes.
type Handler struct {
	*fake.Handler

	t       testing.TB
	mu      sync.Mutex
	httpSrv *httptest.Server
}

// New creates a Handler whose expectations are verified in t.Cleanup.
// Handler logs go to t.Log unless a logger option is given.
func New(t testing.TB, opts ...fake.Option) *Handler {
	t.Helper()

	opts = append([]fake.Option{fake.WithLogger(logging.New(logging.Config{
		Level:  logging.LevelDebug,
		Format: logging.FormatText,
		Output: logging.TestWriter(t),
	}))}, opts...)

	h := &Handler{Handler: fake.New(opts...), t: t}
	t.Cleanup(func() {
		h.Stop()
		Verify(t, h.Handler)
	})
	return h
}

// Verify fails t when h still has pending expectations or saw calls that
// matched nothing. It reports whether verification passed.
func Verify(t testing.TB, h *fake.Handler) bool {
	t.Helper()

	if err := h.Verify(); err != nil {
		t.Errorf("%v", err)
		return false
	}
	return true
}

// Server starts an httptest server backed by h and closes it when the test
// completes.
func Server(t testing.TB, h *fake.Handler) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

// Start serves the handler over HTTP and returns the base URL.
// Repeated calls return the same URL.
func (h *Handler) Start() string {
	h.t.Helper()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.httpSrv == nil {
		h.httpSrv = httptest.NewServer(h.Handler)
	}
	return h.httpSrv.URL
}

// URL returns the base URL of the started server, or "" before Start.
func (h *Handler) URL() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.httpSrv == nil {
		return ""
	}
	return h.httpSrv.URL
}

// Stop closes the HTTP server if one was started.
func (h *Handler) Stop() {
	h.mu.Lock()
	srv := h.httpSrv
	h.httpSrv = nil
	h.mu.Unlock()

	if srv != nil {
		srv.Close()
	}
}

// Requests returns the dispatched calls for assertions, oldest first.
func (h *Handler) Requests() []RequestLog {
	calls := h.Calls()
	result := make([]RequestLog, len(calls))
	for i, c := range calls {
		result[i] = newRequestLog(c)
	}
	return result
}

// AssertCalled asserts that a call matching method and path pattern was made.
func (h *Handler) AssertCalled(t testing.TB, method, path string) {
	t.Helper()

	if count := h.countCalls(method, path); count == 0 {
		t.Errorf("expected %s %s to be called, but it was not called", method, path)
	}
}

// AssertCalledTimes asserts that exactly n calls matched method and path pattern.
func (h *Handler) AssertCalledTimes(t testing.TB, method, path string, times int) {
	t.Helper()

	if count := h.countCalls(method, path); count != times {
		t.Errorf("expected %s %s to be called %d times, but was called %d times",
			method, path, times, count)
	}
}

// AssertNotCalled asserts that no call matched method and path pattern.
func (h *Handler) AssertNotCalled(t testing.TB, method, path string) {
	t.Helper()

	if count := h.countCalls(method, path); count > 0 {
		t.Errorf("expected %s %s to not be called, but it was called %d times",
			method, path, count)
	}
}

// countCalls counts calls whose method equals method and whose path
// satisfies the path pattern, placeholders included.
func (h *Handler) countCalls(method, path string) int {
	pattern := matching.CanonicalPath(path)
	count := 0
	for _, c := range h.Calls() {
		if !strings.EqualFold(c.Method, method) {
			continue
		}
		if _, ok := matching.MatchPath(pattern, callPath(c.URI)); ok {
			count++
		}
	}
	return count
}

// callPath returns the canonical escaped path of a recorded request URI.
func callPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "/"
	}
	return matching.CanonicalPath(u.EscapedPath())
}
