// Package broadcast delivers formatted messages to every current participant.
//
// Hub logs each message and publishes it on an in-process pubsub hub; every
// subscriber has a bounded queue and one that falls behind loses messages.
// There is no acknowledgment.
package broadcast

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/juju/pubsub/v2"

	"github.com/oshokin/clearmob/internal/logger"
	"github.com/oshokin/clearmob/internal/message"
)

const (
	// DefaultBuffer is the per-subscriber queue length.
	DefaultBuffer = 16

	// Topic is the pubsub topic carrying broadcast messages.
	Topic = "clearmob.broadcast"
)

// Hub fans messages out to subscribers.
type Hub struct {
	// hub delivers published messages to every subscription handler.
	hub *pubsub.SimpleHub
	// buffer is the queue length of new subscriptions.
	buffer int
	// dropped counts messages lost to full queues.
	dropped atomic.Int64

	// mu protects subscriptions, next and closed.
	mu            sync.Mutex
	subscriptions map[uint64]*subscription
	next          uint64
	closed        bool
}

// subscription is one subscriber queue. The queue is never sent to after it is closed.
type subscription struct {
	queue       chan string
	unsubscribe func()

	mu     sync.Mutex
	closed bool
}

// NewHub creates a hub whose subscriber queues hold buffer messages.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	return &Hub{
		hub: pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{
			Logger: hubLogger{ctx: logger.WithName(context.Background(), "broadcast")},
		}),
		buffer:        buffer,
		subscriptions: make(map[uint64]*subscription),
	}
}

// Broadcast logs msg and publishes it to every subscriber.
// Delivery happens asynchronously; Broadcast never waits for slow subscribers.
func (h *Hub) Broadcast(ctx context.Context, msg string) error {
	logger.InfoKV(ctx, "Broadcast", "message", message.Strip(msg))

	_ = h.hub.Publish(Topic, msg)

	return nil
}

// Subscribe registers a new subscriber. The returned function unsubscribes
// and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan string, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscription{queue: make(chan string, h.buffer)}
	if h.closed {
		close(sub.queue)

		return sub.queue, func() {}
	}

	id := h.next
	h.next++

	sub.unsubscribe = h.hub.Subscribe(Topic, func(_ string, data any) {
		h.deliver(id, sub, data)
	})
	h.subscriptions[id] = sub

	return sub.queue, func() {
		h.mu.Lock()
		delete(h.subscriptions, id)
		h.mu.Unlock()

		sub.close()
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subscriptions)
}

// Dropped returns how many messages were lost to full subscriber queues.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Close ends every subscription by closing its channel.
// Later subscriptions receive an already closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true

	subscriptions := h.subscriptions
	h.subscriptions = make(map[uint64]*subscription)
	h.mu.Unlock()

	for _, sub := range subscriptions {
		sub.close()
	}
}

// deliver offers one published message to a subscriber queue without blocking.
func (h *Hub) deliver(id uint64, sub *subscription, data any) {
	msg, ok := data.(string)
	if !ok {
		logger.Errorf(context.Background(), "programming error: broadcast data expected string, got %T", data)

		return
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()

	if sub.closed {
		return
	}

	select {
	case sub.queue <- msg:
	default:
		h.dropped.Add(1)
		logger.WarnKV(context.Background(), "Subscriber is behind, message dropped", "subscriber", id)
	}
}

// close closes the queue once and then unsubscribes from the hub.
// Unsubscribing happens outside the lock: a handler may be waiting on it.
func (s *subscription) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()

		return
	}

	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.unsubscribe()
}

// hubLogger routes pubsub diagnostics into the zap logger.
type hubLogger struct {
	ctx context.Context //nolint:containedctx // Carries the named logger only.
}

func (l hubLogger) Errorf(format string, args ...any)   { logger.Errorf(l.ctx, format, args...) }
func (l hubLogger) Warningf(format string, args ...any) { logger.Warnf(l.ctx, format, args...) }
func (l hubLogger) Infof(format string, args ...any)    { logger.FromContext(l.ctx).Debugf(format, args...) }
func (l hubLogger) Debugf(format string, args ...any)   { logger.FromContext(l.ctx).Debugf(format, args...) }
func (l hubLogger) Tracef(format string, args ...any)   { logger.FromContext(l.ctx).Debugf(format, args...) }
