package publishers

import "context"

// Publisher forwards successful results to one downstream sink. Sinks that
// hold long-lived clients also implement io.Closer.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
