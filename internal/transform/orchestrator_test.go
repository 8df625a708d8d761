package transform

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghostlock/console/internal/cache"
	"github.com/ghostlock/console/internal/model"
)

// fakeStore counts calls and can block RunTransform until released.
type fakeStore struct {
	mu            sync.Mutex
	runCalls      int32
	listCalls     int32
	result        *model.TransformResult
	runErr        error
	entities      []model.Entity
	relationships []model.Relationship
	block         chan struct{}
}

func (f *fakeStore) RunTransform(ctx context.Context, entityID int64) (*model.TransformResult, error) {
	atomic.AddInt32(&f.runCalls, 1)
	if f.block != nil {
		<-f.block
	}
	if f.runErr != nil {
		return nil, f.runErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &model.TransformResult{}, nil
}

func (f *fakeStore) ListEntities(ctx context.Context) ([]model.Entity, error) {
	atomic.AddInt32(&f.listCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entities, nil
}

func (f *fakeStore) ListRelationships(ctx context.Context) ([]model.Relationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.relationships, nil
}

func seededCache() *cache.Snapshot {
	snap := cache.New()
	snap.SetEntities([]model.Entity{
		{ID: 10, CaseID: 1, Name: "1.2.3.4", Kind: "ip"},
		{ID: 11, CaseID: 1, Name: "evil.com", Kind: "domain"},
		{ID: 12, CaseID: 1, Name: "Mallory", Kind: "person"},
	})
	return snap
}

func TestRunSuccessRefreshesCache(t *testing.T) {
	store := &fakeStore{
		result: &model.TransformResult{
			Nodes: []model.Entity{{ID: 13, CaseID: 1, Name: "AbuseIPDB score=90", Kind: "threat"}},
			Edges: []model.Relationship{{ID: 102, SourceEntityID: 10, TargetEntityID: 13, Relation: "reported_as"}},
		},
		entities: []model.Entity{
			{ID: 10, CaseID: 1, Name: "1.2.3.4", Kind: "ip"},
			{ID: 13, CaseID: 1, Name: "AbuseIPDB score=90", Kind: "threat"},
		},
		relationships: []model.Relationship{
			{ID: 102, SourceEntityID: 10, TargetEntityID: 13, Relation: "reported_as"},
		},
	}
	snap := seededCache()
	orch := New(store, snap, nil)

	summary, err := orch.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NewEntities)
	assert.Equal(t, 1, summary.NewEdges)

	// Both collections were replaced wholesale from the store.
	_, ok := snap.EntityByID(13)
	assert.True(t, ok, "refresh should have pulled the new entity")
	_, ok = snap.EntityByID(11)
	assert.False(t, ok, "refresh replaces, it does not merge")
	assert.Len(t, snap.Relationships(), 1)
}

func TestRunSurfacesProviderMessage(t *testing.T) {
	store := &fakeStore{
		result: &model.TransformResult{Message: "Missing SHODAN_API_KEY in API vault"},
	}
	orch := New(store, seededCache(), nil)

	summary, err := orch.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.NewEntities)
	assert.Equal(t, "Missing SHODAN_API_KEY in API vault", summary.Message)
}

func TestRunRejectsUnsupportedKindWithoutRemoteCall(t *testing.T) {
	store := &fakeStore{}
	orch := New(store, seededCache(), nil)

	// Entity 12 is a person; rejected synchronously.
	_, err := orch.Run(context.Background(), 12)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedKind)
	assert.Equal(t, int32(0), atomic.LoadInt32(&store.runCalls))
}

func TestRunRejectsUnknownEntity(t *testing.T) {
	store := &fakeStore{}
	orch := New(store, seededCache(), nil)

	_, err := orch.Run(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&store.runCalls))
}

func TestSingleFlightPerEntity(t *testing.T) {
	store := &fakeStore{block: make(chan struct{})}
	orch := New(store, seededCache(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := orch.Run(context.Background(), 10)
		done <- err
	}()

	// Wait for the first run to hold the slot.
	require.Eventually(t, func() bool { return orch.Busy(10) }, time.Second, 5*time.Millisecond)

	// A second run on the same entity is rejected as busy...
	_, err := orch.Run(context.Background(), 10)
	assert.ErrorIs(t, err, ErrBusy)

	// ...while a different entity is independent.
	assert.False(t, orch.Busy(11))

	close(store.block)
	require.NoError(t, <-done)

	// Exactly one remote call happened for entity 10.
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.runCalls))
}

func TestTerminalStateResetsToIdle(t *testing.T) {
	store := &fakeStore{runErr: errors.New("upstream provider unavailable")}
	orch := New(store, seededCache(), nil)

	_, err := orch.Run(context.Background(), 10)
	require.Error(t, err)
	assert.False(t, orch.Busy(10), "busy flag must clear on failure")

	// A subsequent run is permitted after the failure.
	store.runErr = nil
	_, err = orch.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, orch.Busy(10))
	assert.Equal(t, int32(2), atomic.LoadInt32(&store.runCalls))
}

func TestFailureLeavesCacheUntouched(t *testing.T) {
	store := &fakeStore{runErr: errors.New("boom")}
	snap := seededCache()
	before := snap.Entities()

	orch := New(store, snap, nil)
	_, err := orch.Run(context.Background(), 10)
	require.Error(t, err)

	assert.Equal(t, before, snap.Entities())
	assert.Equal(t, int32(0), atomic.LoadInt32(&store.listCalls), "no refresh on failure")
}
