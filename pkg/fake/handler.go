package fake

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/getmockd/fakereq/pkg/logging"
)

// maxNearMisses caps the near misses attached to an UnhandledRequestError.
const maxNearMisses = 3

// Call records one dispatched request.
type Call struct {
	Method string
	URI    string
	Header http.Header
	Body   []byte
	// Expectation is the consumed expectation ("GET /users/{id}"), empty
	// when the call matched nothing.
	Expectation   string
	ExpectationID string
	// Unhandled is set when the call failed with an UnhandledRequestError.
	Unhandled bool
}

// Handler is the registry of pending expectations and the dispatcher for
// intercepted calls. Use one Handler per test.
//
// Calls are expected to arrive one at a time. The internal lock only keeps
// the state consistent when net/http runs the handler on its own goroutines.
type Handler struct {
	mu               sync.Mutex
	pending          []*Expectation
	calls            []Call
	allowUnexpected  bool
	defaultResponder func() *Response
	decorator        RequestDecorator
	ignoreUnhandled  bool
	logger           *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// IgnoreUnhandledInVerify keeps unhandled calls out of Verify. Use it when a
// test asserts on the UnhandledRequestError it got back from the call.
func IgnoreUnhandledInVerify() Option {
	return func(h *Handler) {
		h.ignoreUnhandled = true
	}
}

// New creates an empty Handler.
func New(opts ...Option) *Handler {
	h := &Handler{logger: logging.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register appends e to the pending expectations and returns it.
func (h *Handler) Register(e *Expectation) *Expectation {
	h.mu.Lock()
	h.pending = append(h.pending, e)
	h.mu.Unlock()

	h.logger.Debug("expectation registered", "expectation", e.String(), "id", e.ID())
	return e
}

// Expects registers an expectation for method and URI pattern.
func (h *Handler) Expects(method, uri string) *Expectation {
	e := NewExpectation(method, uri)

	h.mu.Lock()
	decorator := h.decorator
	h.mu.Unlock()

	if decorator != nil {
		e.extendRequest(decorator)
	}
	return h.Register(e)
}

// Get registers a GET expectation.
func (h *Handler) Get(uri string) *Expectation { return h.Expects(http.MethodGet, uri) }

// Post registers a POST expectation.
func (h *Handler) Post(uri string) *Expectation { return h.Expects(http.MethodPost, uri) }

// Put registers a PUT expectation.
func (h *Handler) Put(uri string) *Expectation { return h.Expects(http.MethodPut, uri) }

// Patch registers a PATCH expectation.
func (h *Handler) Patch(uri string) *Expectation { return h.Expects(http.MethodPatch, uri) }

// Delete registers a DELETE expectation.
func (h *Handler) Delete(uri string) *Expectation { return h.Expects(http.MethodDelete, uri) }

// Head registers a HEAD expectation.
func (h *Handler) Head(uri string) *Expectation { return h.Expects(http.MethodHead, uri) }

// Options registers an OPTIONS expectation.
func (h *Handler) Options(uri string) *Expectation { return h.Expects(http.MethodOptions, uri) }

// IsEmpty reports whether every expectation has been consumed.
func (h *Handler) IsEmpty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending) == 0
}

// Pending returns the unconsumed expectations in registration order.
func (h *Handler) Pending() []*Expectation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.pending)
}

// Calls returns the dispatched requests in order.
func (h *Handler) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.calls)
}

// AllowUnexpectedCalls makes calls without a matching expectation succeed
// with the default response instead of failing.
func (h *Handler) AllowUnexpectedCalls() *Handler {
	h.mu.Lock()
	h.allowUnexpected = true
	h.mu.Unlock()
	return h
}

// DefaultResponse sets the response factory used for allowed unexpected
// calls. Without it they get a 200 with an empty body.
func (h *Handler) DefaultResponse(fn func() *Response) *Handler {
	h.mu.Lock()
	h.defaultResponder = fn
	h.mu.Unlock()
	return h
}

// ExtendRequest sets a decorator applied to requests before the matchers and
// responder of expectations registered afterwards through Expects and the
// verb helpers.
func (h *Handler) ExtendRequest(fn RequestDecorator) *Handler {
	h.mu.Lock()
	h.decorator = fn
	h.mu.Unlock()
	return h
}

// Reset drops all pending expectations and the call history.
func (h *Handler) Reset() {
	h.mu.Lock()
	h.pending = nil
	h.calls = nil
	h.mu.Unlock()
}

// Dispatch answers req from the first pending expectation that matches it,
// consuming that expectation. Responder errors are returned unchanged.
// Without a match it returns the default response when unexpected calls are
// allowed and an *UnhandledRequestError otherwise.
func (h *Handler) Dispatch(req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("dispatch: nil request")
	}

	var pending []*Expectation
	for {
		h.mu.Lock()
		pending = slices.Clone(h.pending)
		h.mu.Unlock()

		// Matchers and decorators run unlocked and may call back into h.
		e, bound := firstMatch(pending, req)
		if e == nil {
			break
		}

		h.mu.Lock()
		i := slices.Index(h.pending, e)
		if i < 0 {
			// Consumed by a concurrent call.
			h.mu.Unlock()
			continue
		}
		h.pending = slices.Delete(h.pending, i, i+1)
		h.calls = append(h.calls, newCall(req, e, false))
		h.mu.Unlock()

		h.logger.Debug("expectation matched",
			"method", req.Method, "uri", req.URI, "expectation", e.String(), "id", e.ID())
		return e.respond(bound)
	}

	h.mu.Lock()
	allow, factory := h.allowUnexpected, h.defaultResponder
	if allow {
		h.calls = append(h.calls, newCall(req, nil, false))
	}
	h.mu.Unlock()

	if allow {
		h.logger.Warn("unexpected request allowed", "method", req.Method, "uri", req.URI)
		if factory != nil {
			if resp := factory(); resp != nil {
				return resp, nil
			}
		}
		return emptyResponse(), nil
	}

	err := &UnhandledRequestError{
		Method:     req.Method,
		URI:        req.URI,
		NearMisses: nearMisses(pending, req),
	}
	h.mu.Lock()
	h.calls = append(h.calls, newCall(req, nil, true))
	h.mu.Unlock()

	h.logger.Warn("unhandled request", "method", req.Method, "uri", req.URI, "nearMisses", len(err.NearMisses))
	return nil, err
}

// Verify reports what a test left unfinished: expectations that failed to
// build, calls that were unhandled (unless IgnoreUnhandledInVerify is set),
// and the earliest expectation that was never consumed. It returns nil when
// there is nothing to report.
func (h *Handler) Verify() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for _, e := range h.pending {
		if e.err != nil {
			errs = append(errs, fmt.Errorf("%w %s: %w", ErrInvalidExpectation, e, e.err))
		}
	}
	for _, c := range h.calls {
		if c.Unhandled && !h.ignoreUnhandled {
			errs = append(errs, &UnhandledRequestError{Method: c.Method, URI: c.URI})
		}
	}
	if len(h.pending) > 0 {
		first := h.pending[0]
		errs = append(errs, &UnsatisfiedExpectationError{
			Method:  first.Method(),
			URI:     first.URI(),
			Pending: len(h.pending),
		})
	}
	return errors.Join(errs...)
}

func newCall(req *Request, e *Expectation, unhandled bool) Call {
	c := Call{
		Method:    req.Method,
		URI:       req.URI,
		Header:    req.Header.Clone(),
		Body:      req.Body,
		Unhandled: unhandled,
	}
	if e != nil {
		c.Expectation = e.String()
		c.ExpectationID = e.ID()
	}
	return c
}

// firstMatch returns the earliest expectation in pending that matches req,
// with the request as its matchers saw it.
func firstMatch(pending []*Expectation, req *Request) (*Expectation, *Request) {
	for _, e := range pending {
		if bound, ok := e.match(req); ok {
			return e, bound
		}
	}
	return nil, nil
}

// nearMisses reports pending expectations that agree with req on method or
// URI, in registration order.
func nearMisses(pending []*Expectation, req *Request) []NearMiss {
	var misses []NearMiss
	for _, e := range pending {
		if e.err != nil {
			continue
		}
		reasons := e.Describe(req)
		if len(reasons) == 0 || !partialMatch(e, req) {
			continue
		}
		misses = append(misses, NearMiss{Expectation: e.String(), Reasons: reasons})
		if len(misses) == maxNearMisses {
			break
		}
	}
	return misses
}

func partialMatch(e *Expectation, req *Request) bool {
	bound := e.prepare(req)
	if strings.EqualFold(bound.Method, e.method) {
		return true
	}
	_, ok := e.pattern.Match(bound.URL)
	return ok
}
