package events

import (
	"context"
	"testing"
)

func TestNoopBusDiscardsEverything(t *testing.T) {
	var b NoopBus
	if err := b.Publish(context.Background(), NewEvent(EventBlockCommitted, nil)); err != nil {
		t.Errorf("Publish: %v", err)
	}
	if err := b.Subscribe(context.Background(), EventBlockCommitted, func(Event) {}); err != nil {
		t.Errorf("Subscribe: %v", err)
	}
}

func TestInMemoryBusDispatchesToMatchingSubscribers(t *testing.T) {
	b := NewInMemoryBus()
	ctx := context.Background()

	var received []Event
	if err := b.Subscribe(ctx, EventBlockCommitted, func(e Event) {
		received = append(received, e)
	}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	payload := BlockCommitted{Position: 1, RecordCount: 3}
	if err := b.Publish(ctx, NewEvent(EventBlockCommitted, payload)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := b.Publish(ctx, NewEvent("other.topic", nil)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(received) != 1 {
		t.Fatalf("expected exactly one dispatched event, got %d", len(received))
	}
	got, ok := received[0].Payload.(BlockCommitted)
	if !ok {
		t.Fatalf("payload type = %T, want BlockCommitted", received[0].Payload)
	}
	if got.Position != 1 || got.RecordCount != 3 {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestInMemoryBusWildcardSubscriber(t *testing.T) {
	b := NewInMemoryBus()
	ctx := context.Background()

	count := 0
	if err := b.Subscribe(ctx, "*", func(Event) { count++ }); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	b.Publish(ctx, NewEvent(EventBlockCommitted, nil))
	b.Publish(ctx, NewEvent("anything.else", nil))

	if count != 2 {
		t.Errorf("wildcard subscriber fired %d times, want 2", count)
	}
}

func TestInMemoryBusRejectsAfterClose(t *testing.T) {
	b := NewInMemoryBus()
	ctx := context.Background()

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := b.Publish(ctx, NewEvent(EventBlockCommitted, nil)); err != ErrBusClosed {
		t.Errorf("Publish after close = %v, want ErrBusClosed", err)
	}
	if err := b.Subscribe(ctx, EventBlockCommitted, func(Event) {}); err != ErrBusClosed {
		t.Errorf("Subscribe after close = %v, want ErrBusClosed", err)
	}
}

func TestInMemoryBusRejectsInvalidSubscriptions(t *testing.T) {
	b := NewInMemoryBus()
	ctx := context.Background()

	if err := b.Subscribe(ctx, "", func(Event) {}); err != ErrEmptyTopic {
		t.Errorf("empty topic = %v, want ErrEmptyTopic", err)
	}
	if err := b.Subscribe(ctx, EventBlockCommitted, nil); err != ErrNilHandler {
		t.Errorf("nil handler = %v, want ErrNilHandler", err)
	}
}

func TestInMemoryBusRecoversFromPanickingHandler(t *testing.T) {
	b := NewInMemoryBus()
	ctx := context.Background()

	ran := false
	b.Subscribe(ctx, EventBlockCommitted, func(Event) { panic("boom") })
	b.Subscribe(ctx, EventBlockCommitted, func(Event) { ran = true })

	if err := b.Publish(ctx, NewEvent(EventBlockCommitted, nil)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !ran {
		t.Error("a panicking subscriber must not prevent later subscribers from running")
	}
}
