package cmd

import (
	"context"

	"github.com/spf13/viper"

	"github.com/ghostlock/console/internal/bus"
)

// publishActivity announces one mutation on the activity bus so local
// tooling tailing the stream sees the same record the server timeline
// will carry. Publishing is best effort; an absent or unreachable
// Redis never fails the command that did the mutation.
func publishActivity(ctx context.Context, action, resourceType string, resourceID int64, resourceName, details string) {
	logger := newLogger("[bus] ")
	b := bus.NewBus(viper.GetString("redis.url"), logger)
	defer b.Close()

	err := b.PublishActivity(ctx, bus.ActivityMessage{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ResourceName: resourceName,
		Details:      details,
	})
	if err != nil {
		logger.Printf("failed to publish activity: %v", err)
	}
}
