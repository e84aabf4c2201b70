package messaging

import (
	"context"
)

// Broker fans notification events out to connected clients. Publish is
// fire-and-forget from the caller's point of view; delivery guarantees are
// whatever the underlying transport offers.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
