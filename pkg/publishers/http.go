package publishers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gonet/dgnet/pkg/httpclient"
)

const maxErrorSnippet = 512

// httpPublisher POSTs events as JSON through the same builder and client
// stack used for outgoing requests.
type httpPublisher struct {
	id      string
	url     string
	headers map[string]string
	builder *httpclient.Builder
	client  httpclient.Client
	log     Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, errors.New("missing http block")
	}

	log = ensureLogger(log)
	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	return &httpPublisher{
		id:      cfg.ID,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		builder: httpclient.NewBuilder(httpclient.Defaults{Timeout: timeout, Header: httpclient.DefaultHeaders()}, log),
		client:  httpclient.NewRestyClient(timeout),
		log:     log,
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	spec, err := h.builder.Build(h.url, httpclient.MethodPost, h.headers, evt)
	if err != nil {
		return err
	}
	// The builder degrades unencodable bodies to empty; an event must not.
	if spec.Body() == nil {
		return errors.New("event is not json serializable")
	}

	ctx, cancel := context.WithTimeout(ctx, spec.Timeout())
	defer cancel()

	resp, err := h.client.Execute(ctx, spec)
	if err != nil {
		return fmt.Errorf("deliver event: %w", err)
	}
	if resp == nil {
		return httpclient.ErrNoResponse
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		body := resp.Body()
		if len(body) > maxErrorSnippet {
			body = body[:maxErrorSnippet]
		}
		return fmt.Errorf("webhook answered status %d: %s", code, strings.TrimSpace(string(body)))
	}

	h.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"request_id":   evt.RequestID,
		"status_code":  resp.StatusCode(),
	})
	return nil
}
