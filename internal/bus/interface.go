package bus

import (
	"context"
	"io"
	"log"
)

// Bus publishes console activity (mutations, transform outcomes) so
// other local tooling can react to it, e.g. a shipper tailing the
// stream into a SIEM.
type Bus interface {
	// PublishActivity publishes an activity record to the activity stream
	PublishActivity(ctx context.Context, msg ActivityMessage) error

	// PublishTransform publishes a completed transform run to the transforms stream
	PublishTransform(ctx context.Context, msg TransformMessage) error

	// HealthCheck performs a health check on the bus connection
	HealthCheck(ctx context.Context) error

	// Close closes the bus connection
	Close() error
}

// NewBus creates a new bus instance based on the Redis URL.
// If redisURL is empty or unreachable, returns a NullBus.
func NewBus(redisURL string, logger *log.Logger) Bus {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	if redisURL == "" {
		return NewNullBus(logger)
	}

	if redisBus, err := NewRedisBus(redisURL, logger); err == nil {
		return redisBus
	}

	return NewNullBus(logger)
}
