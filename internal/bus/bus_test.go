package bus

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestNewBusWithoutRedisFallsBackToNull(t *testing.T) {
	b := NewBus("", testLogger())
	defer b.Close()

	_, ok := b.(*NullBus)
	assert.True(t, ok)
}

func TestNewBusWithBadURLFallsBackToNull(t *testing.T) {
	b := NewBus("not-a-redis-url", testLogger())
	defer b.Close()

	_, ok := b.(*NullBus)
	assert.True(t, ok)
}

func TestNullBusAcceptsAllPublishes(t *testing.T) {
	b := NewNullBus(testLogger())
	ctx := context.Background()

	require.NoError(t, b.PublishActivity(ctx, ActivityMessage{
		Action:       "created",
		ResourceType: "entity",
		ResourceID:   7,
		ResourceName: "evil.com",
	}))
	require.NoError(t, b.PublishTransform(ctx, TransformMessage{
		EntityID:    7,
		EntityName:  "evil.com",
		NewEntities: 2,
		NewEdges:    2,
	}))
	require.NoError(t, b.HealthCheck(ctx))
	require.NoError(t, b.Close())
}
