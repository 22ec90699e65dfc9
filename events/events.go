// Package events provides an optional block-commit notification hook. A
// chain store fires a BlockCommitted event synchronously, inside the same
// append that wrote the block, the way internal/events/events.go's Bus
// decouples producers from subscribers in the teacher — except here there
// is no background dispatch loop, since a single-writer ledger never hands
// work to a goroutine behind the caller's back.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerchain/ledgerchain/codec"
)

// EventBlockCommitted is fired once a block and its records have been
// durably written and the chain header sealed.
const EventBlockCommitted = "block.committed"

var (
	// ErrBusClosed is returned when publishing to or subscribing on a closed bus.
	ErrBusClosed = errors.New("events: bus is closed")
	// ErrNilHandler is returned when subscribing with a nil handler.
	ErrNilHandler = errors.New("events: nil handler")
	// ErrEmptyTopic is returned when subscribing to an empty topic.
	ErrEmptyTopic = errors.New("events: empty topic")
)

// BlockCommitted is the payload carried by an EventBlockCommitted event.
type BlockCommitted struct {
	Position    uint64     `json:"position"`
	Nonce       uint64     `json:"nonce"`
	Hash        codec.Hash `json:"hash"`
	PrevHash    codec.Hash `json:"prev_hash"`
	MerkleRoot  codec.Hash `json:"merkle_root"`
	RecordCount int        `json:"record_count"`
	Timestamp   int64      `json:"timestamp"`
}

// Event is a single notification carried over a Bus.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent builds an Event with a generated ID, stamped with the current
// time.
func NewEvent(eventType string, payload any) Event {
	return Event{ID: uuid.New().String(), Type: eventType, Payload: payload, Timestamp: time.Now().UTC()}
}

// Handler processes a single Event.
type Handler func(Event)

// Bus publishes block-lifecycle events to interested subscribers.
// Implementations must be safe for concurrent use.
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}

// NoopBus discards every event. It is the default Bus for a Store that was
// opened without an explicit one.
type NoopBus struct{}

// Publish always succeeds and does nothing.
func (NoopBus) Publish(ctx context.Context, event Event) error { return nil }

// Subscribe always succeeds and registers nothing.
func (NoopBus) Subscribe(ctx context.Context, topic string, handler Handler) error { return nil }

// Close always succeeds.
func (NoopBus) Close() error { return nil }

// InMemoryBus dispatches events synchronously, in-process, to subscribers
// of matching topics (or the wildcard topic "*").
type InMemoryBus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	closed      bool
}

// NewInMemoryBus returns a ready-to-use InMemoryBus.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{subscribers: make(map[string][]Handler)}
}

// Publish synchronously invokes every handler subscribed to event.Type, then
// every wildcard subscriber; each group runs in subscription order.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	handlers = append(handlers, b.subscribers["*"]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		safeCall(h, event)
	}
	return nil
}

// Subscribe registers handler for topic, or for every event if topic is "*".
func (b *InMemoryBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrEmptyTopic
	}
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	b.subscribers[topic] = append(b.subscribers[topic], handler)
	return nil
}

// Close marks the bus closed. Further Publish/Subscribe calls fail.
func (b *InMemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// safeCall invokes a handler, recovering from any panic so that one bad
// subscriber cannot abort an append in progress.
func safeCall(h Handler, event Event) {
	defer func() { recover() }()
	h(event)
}
