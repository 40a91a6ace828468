package publishers

import (
	"context"
	"fmt"
	"strings"
)

// Builder constructs a sink from its config entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error)

// Factory maps sink types to builders.
type Factory map[string]Builder

// DefaultFactory knows every built-in sink type.
func DefaultFactory() Factory {
	return Factory{
		TypeHTTP:   newHTTPPublisher,
		TypeSQS:    newSQSPublisher,
		TypeSNS:    newSNSPublisher,
		TypePubSub: newPubSubPublisher,
	}
}

// Build constructs the sink described by cfg.
func (f Factory) Build(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	build, ok := f[strings.ToLower(cfg.Type)]
	if !ok {
		return nil, fmt.Errorf("publisher %q: no builder for type %q", cfg.ID, cfg.Type)
	}
	pub, err := build(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("publisher %q: %w", cfg.ID, err)
	}
	return pub, nil
}

// BuildFanout builds every entry into one Fanout. When an entry fails, the
// sinks already built are closed before the error is returned.
func BuildFanout(ctx context.Context, f Factory, cfgs []PublisherConfig, log Logger) (*Fanout, error) {
	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		pub, err := f.Build(ctx, cfg, log)
		if err != nil {
			_ = NewFanout(pubs).Close()
			return nil, err
		}
		pubs = append(pubs, pub)
	}
	return NewFanout(pubs), nil
}
