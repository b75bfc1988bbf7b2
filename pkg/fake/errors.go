package fake

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks.
var (
	ErrUnhandledRequest       = errors.New("unhandled request")
	ErrUnsatisfiedExpectation = errors.New("unsatisfied expectation")
	ErrInvalidExpectation     = errors.New("invalid expectation")
)

// NearMiss is a pending expectation that partially matched an unhandled call.
type NearMiss struct {
	Expectation string   `json:"expectation"`
	Reasons     []string `json:"reasons"`
}

// UnhandledRequestError is returned when a call matches no pending
// expectation and unexpected calls are not allowed.
type UnhandledRequestError struct {
	Method     string
	URI        string
	NearMisses []NearMiss
}

func (e *UnhandledRequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unhandled request: %s %s", e.Method, e.URI)
	if len(e.NearMisses) > 0 {
		nm := e.NearMisses[0]
		fmt.Fprintf(&b, " (closest expectation %s: %s)", nm.Expectation, strings.Join(nm.Reasons, "; "))
	}
	return b.String()
}

// Is reports whether target is ErrUnhandledRequest.
func (e *UnhandledRequestError) Is(target error) bool {
	return target == ErrUnhandledRequest
}

// UnsatisfiedExpectationError is returned by Verify when expectations are
// still pending. It names the earliest one.
type UnsatisfiedExpectationError struct {
	Method  string
	URI     string
	Pending int
}

func (e *UnsatisfiedExpectationError) Error() string {
	msg := fmt.Sprintf("A %s request to %q was expected.", e.Method, e.URI)
	if e.Pending > 1 {
		msg += fmt.Sprintf(" %d expectations are still pending.", e.Pending)
	}
	return msg
}

// Is reports whether target is ErrUnsatisfiedExpectation.
func (e *UnsatisfiedExpectationError) Is(target error) bool {
	return target == ErrUnsatisfiedExpectation
}
