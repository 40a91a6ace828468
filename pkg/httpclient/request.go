package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Method is an HTTP verb supported by the builder.
type Method string

const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost

	// DefaultTimeout applies when Defaults carries no timeout.
	DefaultTimeout = 30 * time.Second
)

// ParseMethod normalizes a verb read from config or the command line.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(s))); m {
	case MethodGet, MethodPost:
		return m, nil
	case "":
		return MethodGet, nil
	default:
		return "", fmt.Errorf("unsupported method %q", s)
	}
}

// Defaults holds the fixed timeout and baseline headers applied to every request.
type Defaults struct {
	Timeout time.Duration
	Header  http.Header
}

// DefaultHeaders returns the baseline JSON headers.
func DefaultHeaders() http.Header {
	return http.Header{
		"Content-Type": {"application/json"},
		"Accept":       {"application/json"},
	}
}

// DefaultDefaults returns Defaults with DefaultTimeout and DefaultHeaders.
func DefaultDefaults() Defaults {
	return Defaults{Timeout: DefaultTimeout, Header: DefaultHeaders()}
}

// RequestSpec is the immutable description of an HTTP call before it is sent.
type RequestSpec struct {
	url     *url.URL
	method  Method
	header  http.Header
	body    []byte
	timeout time.Duration
}

func (s *RequestSpec) URL() string            { return s.url.String() }
func (s *RequestSpec) Method() Method         { return s.method }
func (s *RequestSpec) Timeout() time.Duration { return s.timeout }

// Header returns a copy of the request headers.
func (s *RequestSpec) Header() http.Header { return s.header.Clone() }

// Body returns a copy of the encoded body; nil when the request has none.
func (s *RequestSpec) Body() []byte {
	if len(s.body) == 0 {
		return nil
	}
	out := make([]byte, len(s.body))
	copy(out, s.body)
	return out
}

// Builder turns URL strings, verbs, headers and bodies into RequestSpecs.
type Builder struct {
	defaults Defaults
	log      Logger
}

// NewBuilder returns a Builder applying defaults to every request.
func NewBuilder(defaults Defaults, log Logger) *Builder {
	if defaults.Timeout <= 0 {
		defaults.Timeout = DefaultTimeout
	}
	if defaults.Header == nil {
		defaults.Header = DefaultHeaders()
	} else {
		defaults.Header = defaults.Header.Clone()
	}
	return &Builder{defaults: defaults, log: ensureLogger(log)}
}

// Build validates rawURL and assembles a RequestSpec. POST bodies default to
// an empty JSON object; a body that cannot be encoded is logged and sent
// empty. Extra headers are added on top of the baseline headers, so a
// colliding key carries both values.
func (b *Builder) Build(rawURL string, method Method, extraHeaders map[string]string, body any) (*RequestSpec, error) {
	u, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if method != MethodGet && method != MethodPost {
		return nil, fmt.Errorf("%w: unsupported method %q", ErrBuild, method)
	}

	spec := &RequestSpec{
		url:     u,
		method:  method,
		header:  b.defaults.Header.Clone(),
		timeout: b.defaults.Timeout,
	}

	if method == MethodPost {
		spec.body = b.encodeBody(u, body)
	}

	for key, value := range extraHeaders {
		spec.header.Add(key, value)
	}

	return spec, nil
}

func (b *Builder) encodeBody(u *url.URL, body any) []byte {
	if body == nil {
		body = map[string]any{}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		b.log.WarnObj("request body is not json serializable; sending empty body", "body_encode_error", map[string]any{
			"url":   u.String(),
			"type":  fmt.Sprintf("%T", body),
			"error": err.Error(),
		})
		return nil
	}
	return raw
}

func parseURL(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" || trimmed != rawURL {
		return nil, fmt.Errorf("%w: %q", ErrBuild, rawURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuild, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute url", ErrBuild, rawURL)
	}
	return u, nil
}
