package eventsink

import (
	"context"
	"sync"

	"peerlend/internal/domain/event"
)

var _ event.Sink = (*Collector)(nil)

// Collector records published events for assertions. Safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	events []event.Event

	// PublishErr, when set, is returned from Publish after recording.
	PublishErr error
}

func New() *Collector { return &Collector{} }

func (c *Collector) Publish(_ context.Context, ev event.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return c.PublishErr
}

// Events returns a snapshot of everything published so far.
func (c *Collector) Events() []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]event.Event, len(c.events))
	copy(out, c.events)
	return out
}

// ByType filters the recorded events on EventType.
func (c *Collector) ByType(eventType string) []event.Event {
	var out []event.Event
	for _, ev := range c.Events() {
		if ev.EventType() == eventType {
			out = append(out, ev)
		}
	}
	return out
}
