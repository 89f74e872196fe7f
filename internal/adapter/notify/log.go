package notify

import (
	"context"
	"log"

	"peerlend/internal/domain/event"
)

// LogSink is the fallback sink when no redis is configured: events land in
// the service log and nothing else.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, ev event.Event) error {
	log.Printf("event %s aggregate=%s/%s payload=%s",
		ev.EventType(), ev.AggregateType(), ev.AggregateID(), ev.Payload())
	return nil
}
