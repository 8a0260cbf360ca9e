// Package channel defines the MessageChannel collaborator interface the
// engine sends IndexUpdates and Responses through and receives Requests
// from, plus an in-memory implementation for tests and single-process use.
package channel

import (
	"context"
	"errors"
	"sync"

	"github.com/blockpeer/syncengine/pkg/bep"
)

// EventKind identifies which message type a handler subscribes to.
type EventKind int

const (
	EventRequest EventKind = iota
)

// Handler is invoked for every message matching the EventKind it was
// subscribed under. Implementations must tolerate concurrent invocation for
// unrelated messages.
type Handler func(req bep.Request)

// CompletionHandle reports the outcome of an enqueued Send once the wire
// write finishes. Obtaining a handle from Send must never block on the wire.
type CompletionHandle interface {
	// Wait blocks until the write completes or ctx is done, whichever is
	// first, and returns the write's result (or ctx.Err()).
	Wait(ctx context.Context) error

	// Cancel requests that the enqueued write be abandoned if it has not
	// already started. It is a no-op once the write has completed.
	Cancel()
}

// MessageChannel is the abstract, already-authenticated, already-framed
// transport to one remote device. It must be safe for concurrent use and
// must preserve FIFO ordering of sends per peer.
type MessageChannel interface {
	// Send enqueues msg for transmission and returns immediately with a
	// handle the caller can await independently. msg must be one of
	// bep.IndexUpdate or bep.Response.
	Send(msg any) CompletionHandle

	// Subscribe registers handler for events of kind and returns a token
	// that Unsubscribe accepts to remove it.
	Subscribe(kind EventKind, handler Handler) SubscriptionID

	// Unsubscribe removes a previously registered handler. It is a no-op
	// if id is unknown or already removed.
	Unsubscribe(id SubscriptionID)

	// HasFolder reports whether this channel's peer shares folder.
	HasFolder(folder string) bool

	// Close releases the underlying transport. Sends enqueued but not yet
	// delivered are discarded.
	Close() error
}

// SubscriptionID identifies a registered Handler for later Unsubscribe.
type SubscriptionID uint64

// ErrChannelClosed is returned by completion handles for sends enqueued on
// (or outstanding when) a closed channel.
var ErrChannelClosed = errors.New("channel: closed")

// completionHandle is the in-memory implementation's CompletionHandle.
type completionHandle struct {
	done      chan struct{}
	resolveMu sync.Once
	mu        sync.Mutex
	err       error
	cancelled bool
}

func newCompletionHandle() *completionHandle {
	return &completionHandle{done: make(chan struct{})}
}

func (h *completionHandle) resolve(err error) {
	h.resolveMu.Do(func() {
		h.mu.Lock()
		h.err = err
		h.mu.Unlock()
		close(h.done)
	})
}

func (h *completionHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *completionHandle) Cancel() {
	h.mu.Lock()
	h.cancelled = true
	h.mu.Unlock()
}

// Channel is an in-memory MessageChannel with no wire transport and no
// goroutine of its own: Send records each message in an outbox, and Deliver
// runs the subscribed Request handlers on the caller's goroutine. It is
// intended for tests and for wiring two in-process peers together.
type Channel struct {
	folders map[string]struct{}

	mu        sync.Mutex
	nextSubID SubscriptionID
	handlers  map[SubscriptionID]subscription
	closed    bool

	// outbox records every message handed to Send, for test assertions and
	// for an attached peer's delivery loop to drain.
	outboxMu sync.Mutex
	outbox   []any
}

type subscription struct {
	kind    EventKind
	handler Handler
}

// New returns an in-memory channel that considers every folder in shared to
// be shared with the remote peer.
func New(shared ...string) *Channel {
	folders := make(map[string]struct{}, len(shared))
	for _, f := range shared {
		folders[f] = struct{}{}
	}
	return &Channel{
		folders:  folders,
		handlers: make(map[SubscriptionID]subscription),
	}
}

// Send implements MessageChannel. The in-memory channel resolves the
// returned handle immediately since there is no real wire: successfully
// while the channel is open, and with ErrChannelClosed after Close, which
// is how a wire failure is simulated.
func (c *Channel) Send(msg any) CompletionHandle {
	h := newCompletionHandle()

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	c.outboxMu.Lock()
	c.outbox = append(c.outbox, msg)
	c.outboxMu.Unlock()

	if closed {
		h.resolve(ErrChannelClosed)
	} else {
		h.resolve(nil)
	}
	return h
}

// Outbox returns every message handed to Send so far, in order.
func (c *Channel) Outbox() []any {
	c.outboxMu.Lock()
	defer c.outboxMu.Unlock()
	out := make([]any, len(c.outbox))
	copy(out, c.outbox)
	return out
}

// Deliver feeds an inbound Request to every handler subscribed to
// EventRequest, on the calling goroutine. Paired with a worker pool
// upstream (see pkg/upload), this stands in for the "dispatch thread".
func (c *Channel) Deliver(req bep.Request) {
	c.mu.Lock()
	handlers := make([]Handler, 0, len(c.handlers))
	for _, s := range c.handlers {
		if s.kind == EventRequest {
			handlers = append(handlers, s.handler)
		}
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(req)
	}
}

func (c *Channel) Subscribe(kind EventKind, handler Handler) SubscriptionID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSubID++
	id := c.nextSubID
	c.handlers[id] = subscription{kind: kind, handler: handler}
	return id
}

func (c *Channel) Unsubscribe(id SubscriptionID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, id)
}

func (c *Channel) HasFolder(folder string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.folders[folder]
	return ok
}

func (c *Channel) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}
