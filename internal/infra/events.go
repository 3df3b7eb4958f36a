package infra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// EventChannel is the Redis pub/sub channel carrying cash day events.
// Every mutation that can move a day's balance publishes here so connected
// dashboards see totals change without polling.
const EventChannel = "cash:events"

// CashEvent is the wire form of a published day event.
type CashEvent struct {
	Day  string    `json:"day"`
	Kind string    `json:"kind"`
	At   time.Time `json:"at"`
}

// EventBus publishes and subscribes to cash day events over Redis pub/sub.
// It satisfies service.EventPublisher.
type EventBus struct {
	rdb *redis.Client
}

func NewEventBus(rdb *redis.Client) *EventBus {
	return &EventBus{rdb: rdb}
}

// PublishCashEvent fires a day event. Publishing is best-effort — a dropped
// event only delays a dashboard refresh, so failures are logged, not returned.
func (b *EventBus) PublishCashEvent(ctx context.Context, day, kind string) {
	data, err := json.Marshal(CashEvent{Day: day, Kind: kind, At: time.Now().UTC()})
	if err != nil {
		log.Error().Err(err).Msg("events: marshal failed")
		return
	}
	if err := b.rdb.Publish(ctx, EventChannel, data).Err(); err != nil {
		log.Warn().Err(err).Str("kind", kind).Msg("events: publish failed")
	}
}

// Subscribe returns a pub/sub subscription on the event channel. The caller
// owns the subscription and must Close it.
func (b *EventBus) Subscribe(ctx context.Context) *redis.PubSub {
	return b.rdb.Subscribe(ctx, EventChannel)
}
