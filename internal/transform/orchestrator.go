// Package transform manages the lifecycle of server-side enrichment
// runs. Each entity moves Idle → Running → {Succeeded, Failed} → Idle,
// with at most one in-flight run per entity id. Runs for different
// entities are independent.
package transform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/ghostlock/console/internal/cache"
	"github.com/ghostlock/console/internal/model"
)

// ErrBusy is returned when a run is requested for an entity that
// already has one in flight.
var ErrBusy = errors.New("transform already running for this entity")

// ErrUnsupportedKind is returned synchronously, before any remote
// call, when the entity's kind has no transform provider.
var ErrUnsupportedKind = errors.New("entity kind has no transforms")

// Store is the remote surface the orchestrator needs: trigger a
// transform and re-fetch the collections it may have changed.
// *remote.Client satisfies this.
type Store interface {
	RunTransform(ctx context.Context, entityID int64) (*model.TransformResult, error)
	ListEntities(ctx context.Context) ([]model.Entity, error)
	ListRelationships(ctx context.Context) ([]model.Relationship, error)
}

// Summary reports a completed run to the caller.
type Summary struct {
	EntityID     int64  `json:"entity_id"`
	NewEntities  int    `json:"new_entities"`
	NewEdges     int    `json:"new_edges"`
	Message      string `json:"message,omitempty"`
}

// Orchestrator runs transforms with single-flight per entity and
// reconciles the cache afterwards. The busy map is the only shared
// state; it is mutated only at state-transition boundaries.
type Orchestrator struct {
	store  Store
	cache  *cache.Snapshot
	logger *log.Logger

	mu      sync.Mutex
	running map[int64]bool
}

// New creates an orchestrator over the given remote store and cache.
func New(store Store, snap *cache.Snapshot, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Orchestrator{
		store:   store,
		cache:   snap,
		logger:  logger,
		running: make(map[int64]bool),
	}
}

// Busy reports whether a run is in flight for the entity. The
// presentation layer keys its busy indicator off this.
func (o *Orchestrator) Busy(entityID int64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running[entityID]
}

// Run executes one transform for the entity and blocks until it
// resolves. Preconditions are checked synchronously: the entity must
// be cached, its kind must be transformable, and no other run may be
// in flight for it. On success the entity and relationship collections
// are refreshed wholesale before the summary is returned; on failure
// the cache is untouched. Either way the entity returns to idle.
func (o *Orchestrator) Run(ctx context.Context, entityID int64) (*Summary, error) {
	entity, ok := o.cache.EntityByID(entityID)
	if !ok {
		return nil, fmt.Errorf("entity %d is not in the cache", entityID)
	}
	if !model.Transformable(entity.Kind) {
		return nil, fmt.Errorf("kind %q: %w", entity.Kind, ErrUnsupportedKind)
	}

	o.mu.Lock()
	if o.running[entityID] {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.running[entityID] = true
	o.mu.Unlock()

	// Return to idle on every terminal transition, including error
	// paths, so future runs on this entity stay possible.
	defer func() {
		o.mu.Lock()
		delete(o.running, entityID)
		o.mu.Unlock()
	}()

	o.logger.Printf("running transform for entity %d (%s, kind=%s)", entityID, entity.Name, entity.Kind)

	result, err := o.store.RunTransform(ctx, entityID)
	if err != nil {
		o.logger.Printf("transform for entity %d failed: %v", entityID, err)
		return nil, err
	}

	// The transform may have touched state beyond what it reported,
	// so both collections are re-fetched rather than merged.
	if err := o.refresh(ctx); err != nil {
		return nil, fmt.Errorf("transform succeeded but refresh failed: %w", err)
	}

	summary := &Summary{
		EntityID:    entityID,
		NewEntities: len(result.Nodes),
		NewEdges:    len(result.Edges),
		Message:     result.Message,
	}
	o.logger.Printf("transform for entity %d created %d entities, %d relationships",
		entityID, summary.NewEntities, summary.NewEdges)
	return summary, nil
}

func (o *Orchestrator) refresh(ctx context.Context) error {
	entities, err := o.store.ListEntities(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh entities: %w", err)
	}
	rels, err := o.store.ListRelationships(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh relationships: %w", err)
	}
	o.cache.SetEntities(entities)
	o.cache.SetRelationships(rels)
	return nil
}
