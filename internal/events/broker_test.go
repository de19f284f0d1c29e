package events

import (
	"testing"
	"time"
)

const (
	typeA Type = "test.a"
	typeB Type = "test.b"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBroker_PublishToSubscriber(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	ch := b.Subscribe(typeA)

	b.Publish(Event{Type: typeA, Payload: 42})

	e := receive(t, ch)
	if e.Type != typeA {
		t.Errorf("event type = %q, want %q", e.Type, typeA)
	}
	if got, ok := e.Payload.(int); !ok || got != 42 {
		t.Errorf("payload = %v, want 42", e.Payload)
	}
}

func TestBroker_TypeFiltering(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	ch := b.Subscribe(typeA)

	b.Publish(Event{Type: typeB})
	b.Publish(Event{Type: typeA})

	e := receive(t, ch)
	if e.Type != typeA {
		t.Errorf("received %q, want only %q events", e.Type, typeA)
	}
	select {
	case e := <-ch:
		t.Errorf("received unexpected extra event %v", e)
	default:
	}
}

func TestBroker_MultipleTypes(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	ch := b.Subscribe(typeA, typeB)

	b.Publish(Event{Type: typeA})
	b.Publish(Event{Type: typeB})

	if e := receive(t, ch); e.Type != typeA {
		t.Errorf("first event = %q, want %q", e.Type, typeA)
	}
	if e := receive(t, ch); e.Type != typeB {
		t.Errorf("second event = %q, want %q", e.Type, typeB)
	}
}

func TestBroker_Unsubscribe(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	ch := b.Subscribe(typeA)
	b.Unsubscribe(ch, typeA)

	// Channel must be closed
	if _, open := <-ch; open {
		t.Error("channel still open after Unsubscribe")
	}

	// Publishing after unsubscribe must not panic
	b.Publish(Event{Type: typeA})
}

func TestBroker_Unsubscribe_AllTypes(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	ch := b.Subscribe(typeA, typeB)
	b.Unsubscribe(ch)

	if _, open := <-ch; open {
		t.Error("channel still open after Unsubscribe")
	}
	b.Publish(Event{Type: typeA})
	b.Publish(Event{Type: typeB})
}

func TestBroker_NonBlockingPublish(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	ch := b.Subscribe(typeA)

	// Overflow the subscriber buffer; Publish must not block
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			b.Publish(Event{Type: typeA, Payload: i})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber channel")
	}

	// The first buffered events are still delivered in order
	if e := receive(t, ch); e.Payload.(int) != 0 {
		t.Errorf("first payload = %v, want 0", e.Payload)
	}
}

func TestBroker_Clear(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	ch1 := b.Subscribe(typeA)
	ch2 := b.Subscribe(typeA, typeB)

	b.Clear()

	if _, open := <-ch1; open {
		t.Error("ch1 still open after Clear")
	}
	if _, open := <-ch2; open {
		t.Error("ch2 still open after Clear")
	}
	b.Publish(Event{Type: typeA})
}
