package providers

import (
	"context"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
)

// EventPublisher publishes booking events to downstream consumers
type EventPublisher interface {
	// Publish publishes an event on a channel (Redis channel or Kafka key)
	Publish(ctx context.Context, channel string, event *entities.BookingEvent) error

	// Close releases the underlying connection
	Close() error
}

const (
	// EventChannelBookings carries every booking event
	EventChannelBookings = "bookings:all"

	// EventChannelFacilityPrefix is the prefix for facility-specific channels
	EventChannelFacilityPrefix = "bookings:"
)

// GetFacilityChannel returns the channel name for a specific facility
func GetFacilityChannel(facilityID string) string {
	return EventChannelFacilityPrefix + facilityID
}

// EventSubscriber streams booking events published on a channel. The
// returned channel is closed once ctx is done.
type EventSubscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan *entities.BookingEvent, error)
}
