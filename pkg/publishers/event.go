package publishers

import (
	"time"

	"github.com/gonet/dgnet/pkg/httpclient"
	"github.com/gonet/dgnet/pkg/jsonvalue"
)

// Event represents a successful request result published downstream.
type Event struct {
	RequestID   string          `json:"request_id"`
	Method      string          `json:"method"`
	URL         string          `json:"url"`
	Result      jsonvalue.Value `json:"result"`
	CompletedAt time.Time       `json:"completed_at"`
}

// NewEvent constructs an Event for the given request and its decoded result.
func NewEvent(requestID string, method httpclient.Method, url string, result httpclient.Result) Event {
	return Event{
		RequestID:   requestID,
		Method:      string(method),
		URL:         url,
		Result:      result.Value(),
		CompletedAt: time.Now().UTC(),
	}
}
