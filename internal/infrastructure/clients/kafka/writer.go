package kafka

import (
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/observability"
	"github.com/zatekoja/dentalbooking/backend/pkg/config"
)

// NewWriter builds a kafka-go writer for the booking topic. Messages are
// hashed by key so events of one facility stay ordered.
func NewWriter(cfg *config.EventsConfig) (*kafka.Writer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.KafkaTopic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	logger := observability.GetLogger()
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            compress.Snappy,
		MaxAttempts:            3,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
		Logger:                 kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Error().Msgf(msg, args...)
		}),
	}, nil
}
