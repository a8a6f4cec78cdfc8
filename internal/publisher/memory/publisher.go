// Package memory provides an in-process publisher used when no broker is
// configured.
package memory

import (
	"context"
	"fmt"
	"sync"
)

// Event is one recorded publish.
type Event struct {
	Topic   string
	Payload any
}

// Publisher appends events to an in-memory log. It stands in for the
// Pub/Sub publisher in development and in tests.
type Publisher struct {
	mu     sync.Mutex
	seq    int
	events []Event
}

// New returns an empty Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish records the event and returns a synthetic message id.
func (p *Publisher) Publish(_ context.Context, topic string, payload any) (string, error) {
	if topic == "" {
		return "", fmt.Errorf("topic name is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	p.events = append(p.events, Event{Topic: topic, Payload: payload})
	return fmt.Sprintf("local-%d", p.seq), nil
}

// Events returns a copy of everything published so far.
func (p *Publisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
