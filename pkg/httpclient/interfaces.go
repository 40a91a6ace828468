package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts the shared network session so callers can inject mocks or
// different transports. A nil Response with a nil error means the transport
// produced no response object at all.
type Client interface {
	Execute(ctx context.Context, spec *RequestSpec) (Response, error)
}
