package ports

import (
	"context"

	"github.com/erptask/taskdeck/internal/core/domain"
)

// EventChannel is one live connection to the backend's broadcast socket.
// Envelopes arrive on Events in arrival order; the channel is closed when the
// connection drops or Close is called, after which no further envelopes are
// delivered. Delivery is best-effort, at most once; there is no automatic
// reconnect.
type EventChannel interface {
	Events() <-chan domain.Envelope
	// Close disposes the connection. Idempotent; safe on all teardown paths.
	Close() error
}

// EventDialer opens a new EventChannel per consumer view. Views never share
// a channel.
type EventDialer interface {
	Dial(ctx context.Context) (EventChannel, error)
}
