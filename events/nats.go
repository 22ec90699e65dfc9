//go:build events_nats

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSBus publishes block-commit events over a NATS JetStream stream,
// adapted from internal/events/nats.go for a single topic family
// ("ledger.>") instead of a general-purpose domain event taxonomy.
type NATSBus struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	mu     sync.RWMutex
	subs   map[string]*nats.Subscription
	closed bool
	config NATSConfig
}

// NATSConfig configures the NATS event bus.
type NATSConfig struct {
	URL           string
	StreamName    string
	DurableName   string
	MaxReconnects int
	ReconnectWait time.Duration
	StreamMaxAge  time.Duration
}

// DefaultNATSConfig returns sensible defaults for a single ledger instance.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		StreamName:    "LEDGER",
		DurableName:   "ledgerchain",
		MaxReconnects: 10,
		ReconnectWait: 2 * time.Second,
		StreamMaxAge:  24 * time.Hour,
	}
}

// NewNATSBus connects to NATS and ensures the backing JetStream stream
// exists.
func NewNATSBus(config NATSConfig) (*NATSBus, error) {
	if config.URL == "" {
		config.URL = nats.DefaultURL
	}

	nc, err := nats.Connect(config.URL,
		nats.Name("ledgerchain"),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
	)
	if err != nil {
		return nil, fmt.Errorf("events: nats connect: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("events: jetstream context: %w", err)
	}

	bus := &NATSBus{nc: nc, js: js, subs: make(map[string]*nats.Subscription), config: config}
	if err := bus.ensureStream(); err != nil {
		nc.Close()
		return nil, fmt.Errorf("events: ensure stream: %w", err)
	}
	return bus, nil
}

func (b *NATSBus) ensureStream() error {
	cfg := &nats.StreamConfig{
		Name:     b.config.StreamName,
		Subjects: []string{b.config.StreamName + ".>"},
		MaxAge:   b.config.StreamMaxAge,
		Storage:  nats.FileStorage,
	}
	if _, err := b.js.StreamInfo(b.config.StreamName); err != nil {
		if err == nats.ErrStreamNotFound {
			_, err = b.js.AddStream(cfg)
			return err
		}
		return err
	}
	_, err := b.js.UpdateStream(cfg)
	return err
}

func (b *NATSBus) subject(topic string) string {
	return b.config.StreamName + "." + topic
}

// Publish writes event to the JetStream stream under its topic's subject.
func (b *NATSBus) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	b.mu.RUnlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}
	if _, err := b.js.Publish(b.subject(event.Type), data); err != nil {
		return fmt.Errorf("events: jetstream publish: %w", err)
	}
	return nil
}

// Subscribe registers a durable JetStream consumer for topic.
func (b *NATSBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
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

	sub, err := b.js.Subscribe(b.subject(topic), func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return
		}
		handler(event)
		msg.Ack()
	}, nats.Durable(b.config.DurableName), nats.ManualAck())
	if err != nil {
		return fmt.Errorf("events: subscribe: %w", err)
	}
	b.subs[topic] = sub
	return nil
}

// Close unsubscribes every consumer and drains the connection.
func (b *NATSBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, sub := range b.subs {
		sub.Unsubscribe()
	}
	return b.nc.Drain()
}
