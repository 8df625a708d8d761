package bus

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisBus publishes console activity over Redis Streams.
type RedisBus struct {
	client *redis.Client
	logger *log.Logger
}

// ActivityMessage mirrors one timeline-style activity record on the wire.
type ActivityMessage struct {
	ID           string `json:"id"`
	Action       string `json:"action"`
	ResourceType string `json:"resource_type"`
	ResourceID   int64  `json:"resource_id"`
	ResourceName string `json:"resource_name"`
	Details      string `json:"details"`
	Timestamp    int64  `json:"timestamp"`
}

// TransformMessage reports a resolved transform run on the wire.
type TransformMessage struct {
	ID          string `json:"id"`
	EntityID    int64  `json:"entity_id"`
	EntityName  string `json:"entity_name"`
	NewEntities int    `json:"new_entities"`
	NewEdges    int    `json:"new_edges"`
	Message     string `json:"message"`
	Timestamp   int64  `json:"timestamp"`
}

// NewRedisBus creates a new Redis bus instance.
func NewRedisBus(redisURL string, logger *log.Logger) (*RedisBus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = log.New(log.Writer(), "[RedisBus] ", log.LstdFlags)
	}

	return &RedisBus{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection.
func (rb *RedisBus) Close() error {
	return rb.client.Close()
}

// PublishActivity publishes an activity record to the activity stream.
func (rb *RedisBus) PublishActivity(ctx context.Context, msg ActivityMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}

	fields := map[string]interface{}{
		"id":            msg.ID,
		"action":        msg.Action,
		"resource_type": msg.ResourceType,
		"resource_id":   msg.ResourceID,
		"resource_name": msg.ResourceName,
		"details":       msg.Details,
		"timestamp":     msg.Timestamp,
	}

	result := rb.client.XAdd(ctx, &redis.XAddArgs{
		Stream: "ghostlock:activity",
		Values: fields,
	})

	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to publish activity: %w", err)
	}

	rb.logger.Printf("Published %s %s to activity stream", msg.Action, msg.ResourceType)
	return nil
}

// PublishTransform publishes a completed transform run to the transforms stream.
func (rb *RedisBus) PublishTransform(ctx context.Context, msg TransformMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}

	fields := map[string]interface{}{
		"id":           msg.ID,
		"entity_id":    msg.EntityID,
		"entity_name":  msg.EntityName,
		"new_entities": msg.NewEntities,
		"new_edges":    msg.NewEdges,
		"message":      msg.Message,
		"timestamp":    msg.Timestamp,
	}

	result := rb.client.XAdd(ctx, &redis.XAddArgs{
		Stream: "ghostlock:transforms",
		Values: fields,
	})

	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to publish transform result: %w", err)
	}

	rb.logger.Printf("Published transform result for entity %d", msg.EntityID)
	return nil
}

// HealthCheck pings the Redis connection.
func (rb *RedisBus) HealthCheck(ctx context.Context) error {
	if err := rb.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
