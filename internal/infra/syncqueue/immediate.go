// Package syncqueue delivers deferred feed sync triggers to a handler.
package syncqueue

import (
	"context"

	"github.com/yanqian/support-expert/internal/domain/feedsync"
)

// Handler runs a sync for feed.
type Handler func(ctx context.Context, feed feedsync.Feed)

// HandlerQueue supports setting a handler for trigger delivery.
type HandlerQueue interface {
	feedsync.TriggerQueue
	SetHandler(handler Handler)
	Close()
}

// ImmediateQueue calls the handler in a new goroutine on enqueue.
type ImmediateQueue struct {
	handler Handler
}

// NewImmediateQueue constructs the queue.
func NewImmediateQueue(handler Handler) *ImmediateQueue {
	return &ImmediateQueue{handler: handler}
}

// SetHandler replaces the handler used for queued triggers.
func (q *ImmediateQueue) SetHandler(handler Handler) {
	q.handler = handler
}

// Enqueue invokes the handler asynchronously. The request context is not
// propagated since the sync outlives the request.
func (q *ImmediateQueue) Enqueue(_ context.Context, feed feedsync.Feed) error {
	if q.handler == nil {
		return nil
	}
	go q.handler(context.Background(), feed)
	return nil
}

// Close is a no-op.
func (q *ImmediateQueue) Close() {}

var _ HandlerQueue = (*ImmediateQueue)(nil)
