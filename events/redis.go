//go:build events_redis

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBus publishes block-commit events over Redis Pub/Sub, adapted from
// internal/events/redis.go with the Streams/consumer-group variant dropped
// since a single-writer ledger has no competing-consumer fan-out to manage.
type RedisBus struct {
	client redis.UniversalClient
	mu     sync.RWMutex
	cancel map[string]context.CancelFunc
	closed bool
	prefix string
}

// RedisConfig configures the Redis event bus.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisBus connects to a single Redis instance.
func NewRedisBus(config RedisConfig) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("events: redis ping: %w", err)
	}
	prefix := config.Prefix
	if prefix == "" {
		prefix = "ledgerchain"
	}
	return &RedisBus{client: client, cancel: make(map[string]context.CancelFunc), prefix: prefix}, nil
}

func (b *RedisBus) channel(topic string) string {
	return b.prefix + ":" + topic
}

// Publish writes event as JSON to topic's channel.
func (b *RedisBus) Publish(ctx context.Context, event Event) error {
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
	return b.client.Publish(ctx, b.channel(event.Type), data).Err()
}

// Subscribe starts a background receive loop for topic's channel, invoking
// handler for each decodable message until Close is called.
func (b *RedisBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
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
	if b.closed {
		b.mu.Unlock()
		return ErrBusClosed
	}
	subCtx, cancel := context.WithCancel(ctx)
	b.cancel[topic] = cancel
	b.mu.Unlock()

	pubsub := b.client.Subscribe(subCtx, b.channel(topic))
	ch := pubsub.Channel()

	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				handler(event)
			}
		}
	}()

	return nil
}

// Close cancels every subscription and closes the client connection.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, cancel := range b.cancel {
		cancel()
	}
	return b.client.Close()
}
