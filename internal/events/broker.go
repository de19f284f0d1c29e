// Package events provides a small in-process event broker.
//
// Subscribers receive events on buffered channels; publishing never blocks.
// If a subscriber falls behind, events for that subscriber are dropped
// rather than stalling the publisher.
package events

import "sync"

// Type identifies a kind of event.
type Type string

// Event is a published event with an optional payload.
type Event struct {
	Type    Type
	Payload any
}

// Broker manages event distribution.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[Type][]chan Event
	bufferSize  int
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Type][]chan Event),
		bufferSize:  16,
	}
}

// Subscribe creates a subscription to the given event types.
// The returned channel is closed on Unsubscribe or Clear.
func (b *Broker) Subscribe(types ...Type) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	for _, t := range types {
		b.subscribers[t] = append(b.subscribers[t], ch)
	}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// With no types given, the channel is removed from every type it was
// subscribed to. Passing a subset of the subscribed types leaves a closed
// channel registered for the rest, so callers must pass the same type list
// used at Subscribe time (or none).
func (b *Broker) Unsubscribe(ch <-chan Event, types ...Type) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(types) == 0 {
		for t := range b.subscribers {
			types = append(types, t)
		}
	}

	closed := false
	for _, t := range types {
		subs := b.subscribers[t]
		for i, c := range subs {
			if c == ch {
				b.subscribers[t] = append(subs[:i], subs[i+1:]...)
				if !closed {
					close(c)
					closed = true
				}
				break
			}
		}
		if len(b.subscribers[t]) == 0 {
			delete(b.subscribers, t)
		}
	}
}

// Publish sends an event to all subscribers of its type.
// Sends are non-blocking: full subscriber channels are skipped.
func (b *Broker) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[e.Type] {
		select {
		case ch <- e:
		default:
			// Subscriber is not keeping up, drop the event for it
		}
	}
}

// Clear removes all subscriptions and closes their channels.
func (b *Broker) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[chan Event]bool)
	for _, subs := range b.subscribers {
		for _, ch := range subs {
			if !seen[ch] {
				close(ch)
				seen[ch] = true
			}
		}
	}
	b.subscribers = make(map[Type][]chan Event)
}
