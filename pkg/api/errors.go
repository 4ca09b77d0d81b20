package api

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures produced by the executor and the
// wizard reducer. Callers that only need a coarse branch (render error
// view vs. retry manually) can switch on the kind; the underlying typed
// errors carry the details.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnknownEndpoint
	KindHTTP
	KindTransport
	KindDecode
	KindUnknownAction
)

// UnknownEndpointError indicates a registry lookup with a key that was
// never configured. This is a programmer error, not a runtime condition
// worth retrying.
type UnknownEndpointError struct {
	Key string
}

func (e *UnknownEndpointError) Error() string {
	return "unknown endpoint: " + e.Key
}

// HTTPError indicates that the server answered with a status code
// outside the 2xx success range. Body holds the raw response body, if
// any, for diagnostics.
type HTTPError struct {
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: status %d", e.Status)
}

// TransportError indicates that the request never produced a usable
// response: connection refused, DNS failure, timeout, cancelled
// context, or a failure while reading the body.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError indicates that a 2xx response body was not valid JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode error: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UnknownActionError is returned by Reduce when it receives an action
// variant it has no case for. It is a programmer error and fatal to
// that dispatch; the session surfaces it to the caller unchanged.
type UnknownActionError struct {
	Type string
}

func (e *UnknownActionError) Error() string {
	return "unknown wizard action: " + e.Type
}

// IsHTTPError returns (status, true) if err is (or wraps) an HTTPError.
func IsHTTPError(err error) (int, bool) {
	var h *HTTPError
	if errors.As(err, &h) {
		return h.Status, true
	}
	return 0, false
}

// Kind reports the ErrorKind of err, or KindUnknown for errors outside
// the taxonomy (including nil).
func Kind(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var (
		ue *UnknownEndpointError
		he *HTTPError
		te *TransportError
		de *DecodeError
		ae *UnknownActionError
	)
	switch {
	case errors.As(err, &ue):
		return KindUnknownEndpoint
	case errors.As(err, &he):
		return KindHTTP
	case errors.As(err, &te):
		return KindTransport
	case errors.As(err, &de):
		return KindDecode
	case errors.As(err, &ae):
		return KindUnknownAction
	}
	return KindUnknown
}
