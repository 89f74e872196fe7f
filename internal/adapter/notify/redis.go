package notify

import (
	"context"
	"encoding/json"
	"time"

	"peerlend/internal/domain/event"

	"github.com/redis/go-redis/v9"
)

// envelope is the wire form of an event on the notification channel.
type envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// RedisSink publishes events to a redis pub/sub channel. The notification
// service on the other end decides delivery channels; the core only
// signals.
type RedisSink struct {
	rdb     *redis.Client
	channel string
}

func NewRedisSink(rdb *redis.Client, channel string) *RedisSink {
	return &RedisSink{rdb: rdb, channel: channel}
}

func (s *RedisSink) Publish(ctx context.Context, ev event.Event) error {
	raw, err := json.Marshal(envelope{
		EventID:       ev.EventID().String(),
		EventType:     ev.EventType(),
		AggregateID:   ev.AggregateID(),
		AggregateType: ev.AggregateType(),
		OccurredAt:    ev.OccurredAt(),
		Payload:       ev.Payload(),
	})
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, s.channel, raw).Err()
}
