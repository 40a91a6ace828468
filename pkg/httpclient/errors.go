package httpclient

import (
	"errors"
	"fmt"
)

var (
	// ErrBuild is returned when a request cannot be assembled, usually
	// because the URL is invalid.
	ErrBuild = errors.New("could not build request, URL likely invalid")
	// ErrNoResponse is returned when the transport produced no response object.
	ErrNoResponse = errors.New("no response received")
	// ErrEmptyBody is returned for a successful status with no body bytes.
	ErrEmptyBody = errors.New("response data is null")
	// ErrShapeMismatch is returned when the body is valid JSON but neither an
	// object nor an array.
	ErrShapeMismatch = errors.New("cannot cast json to an object or array")
)

// TransportError wraps a network level failure (DNS, connection reset, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport error: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError wraps a failure to parse the response body as JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("cannot load json: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// StatusClass groups non-success HTTP status codes.
type StatusClass int

const (
	UnexpectedStatus StatusClass = iota
	ClientError
	ServerError
)

func (c StatusClass) String() string {
	switch c {
	case ClientError:
		return "client_error"
	case ServerError:
		return "server_error"
	default:
		return "unexpected_status"
	}
}

// StatusError reports a response whose status code is outside 200-299.
type StatusError struct {
	Class      StatusClass
	StatusCode int
}

func (e *StatusError) Error() string {
	switch e.Class {
	case ClientError:
		return fmt.Sprintf("client error, please retry later (status code %d)", e.StatusCode)
	case ServerError:
		return fmt.Sprintf("service unavailable, please retry later (status code %d)", e.StatusCode)
	default:
		return fmt.Sprintf("unexpected status code %d", e.StatusCode)
	}
}

// classifyStatus returns nil for 2xx and a StatusError otherwise.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code <= 299:
		return nil
	case code >= 400 && code <= 499:
		return &StatusError{Class: ClientError, StatusCode: code}
	case code >= 500 && code <= 599:
		return &StatusError{Class: ServerError, StatusCode: code}
	default:
		return &StatusError{Class: UnexpectedStatus, StatusCode: code}
	}
}

// IsStatusClass reports whether err is a StatusError of the given class.
func IsStatusClass(err error, class StatusClass) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Class == class
}
