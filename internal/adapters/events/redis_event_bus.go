package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/dentalbooking/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/observability"
)

// subscriberBuffer is the number of events buffered per subscriber before
// new events are dropped
const subscriberBuffer = 100

var (
	_ providers.EventPublisher  = (*RedisEventBus)(nil)
	_ providers.EventSubscriber = (*RedisEventBus)(nil)
)

// RedisEventBus publishes and streams booking events over Redis Pub/Sub
type RedisEventBus struct {
	client *redis.Client
}

// NewRedisEventBus creates a Redis-backed event bus
func NewRedisEventBus(client *redisclient.Client) *RedisEventBus {
	return &RedisEventBus{client: client.Client()}
}

// Publish publishes an event to all subscribers of channel
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.BookingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	observability.LoggerFromContext(ctx).Debug().
		Str("channel", channel).
		Str("event_id", event.ID).
		Str("event_type", string(event.EventType)).
		Msg("published booking event")
	return nil
}

// Subscribe opens a dedicated Pub/Sub connection for channel. Messages that
// do not decode as booking events are skipped.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.BookingEvent, error) {
	pubsub := b.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	logger := observability.LoggerFromContext(ctx)
	events := make(chan *entities.BookingEvent, subscriberBuffer)
	go func() {
		defer close(events)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event entities.BookingEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					logger.Warn().Err(err).Str("channel", channel).Msg("skipping undecodable booking event")
					continue
				}
				select {
				case events <- &event:
				default:
					logger.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("subscriber full, dropping booking event")
				}
			}
		}
	}()
	return events, nil
}

// Close is a no-op; the Redis client is owned by the caller
func (b *RedisEventBus) Close() error {
	return nil
}
