package fake

import (
	"errors"
	"net/http"

	"github.com/getmockd/fakereq/pkg/httputil"
)

// RoundTrip implements http.RoundTripper so a Handler can stand in for the
// network under any *http.Client. Dispatch errors are returned as transport
// errors; http.Client wraps them in *url.Error, which still unwraps to
// *UnhandledRequestError or the responder's error.
func (h *Handler) RoundTrip(r *http.Request) (*http.Response, error) {
	if err := r.Context().Err(); err != nil {
		return nil, err
	}

	req, err := FromHTTP(r)
	if err != nil {
		return nil, err
	}

	resp, err := h.Dispatch(req)
	if err != nil {
		return nil, err
	}
	return resp.HTTP(r), nil
}

// Client returns an *http.Client whose transport is the Handler.
func (h *Handler) Client() *http.Client {
	return &http.Client{Transport: h}
}

// ServeHTTP implements http.Handler for code under test that can only be
// pointed at a base URL. Unhandled calls get a 501 with the near misses in
// the JSON body and are reported again by Verify; responder errors get a 500.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := fromServerRequest(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	resp, err := h.Dispatch(req)

	var unhandled *UnhandledRequestError
	switch {
	case errors.As(err, &unhandled):
		httputil.WriteErrorWithDetails(w, http.StatusNotImplemented, "unhandled_request", unhandled.Error(), unhandled.NearMisses)
	case err != nil:
		httputil.WriteError(w, http.StatusInternalServerError, "responder_failed", err.Error())
	default:
		if err := resp.Write(w); err != nil {
			h.logger.Warn("failed to write response", "method", req.Method, "uri", req.URI, "error", err)
		}
	}
}
