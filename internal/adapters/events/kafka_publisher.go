package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/observability"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventPublisher writes booking events to a Kafka topic. The message
// key is the facility id so each facility's events stay on one partition;
// the logical channel travels as a header.
type KafkaEventPublisher struct {
	writer MessageWriter
}

// NewKafkaEventPublisher wraps a configured writer
func NewKafkaEventPublisher(writer MessageWriter) providers.EventPublisher {
	return &KafkaEventPublisher{writer: writer}
}

// Publish writes one message per facility channel. The topic already holds
// every event, so the all-bookings channel is skipped.
func (p *KafkaEventPublisher) Publish(ctx context.Context, channel string, event *entities.BookingEvent) error {
	if channel == providers.EventChannelBookings {
		return nil
	}

	msg, err := bookingMessage(channel, event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	observability.LoggerFromContext(ctx).Debug().
		Str("channel", channel).
		Str("event_id", event.ID).
		Msg("published booking event to kafka")
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}

func bookingMessage(channel string, event *entities.BookingEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.FacilityID),
		Value: data,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(event.ID)},
			{Key: "event-type", Value: []byte(event.EventType)},
			{Key: "facility-id", Value: []byte(event.FacilityID)},
			{Key: "channel", Value: []byte(channel)},
		},
	}, nil
}
