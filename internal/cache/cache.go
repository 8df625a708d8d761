// Package cache holds the last-fetched snapshot of cases, entities and
// relationships. It is the single source of truth for every derived
// view. Collections are only ever replaced wholesale, never patched in
// place, so readers can never observe a half-updated collection.
package cache

import (
	"sync"

	"github.com/ghostlock/console/internal/model"
)

// Snapshot is the in-memory record cache for one session. The zero
// value is not usable; call New. State lives only for the process
// lifetime, there is no persistence.
type Snapshot struct {
	mu sync.RWMutex

	cases         []model.Case
	entities      []model.Entity
	relationships []model.Relationship

	caseIndex   map[int64]int
	entityIndex map[int64]int
}

// New creates an empty snapshot.
func New() *Snapshot {
	return &Snapshot{
		caseIndex:   make(map[int64]int),
		entityIndex: make(map[int64]int),
	}
}

// SetCases atomically replaces the case collection.
func (s *Snapshot) SetCases(cases []model.Case) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cases = append([]model.Case(nil), cases...)
	s.caseIndex = make(map[int64]int, len(s.cases))
	for i, c := range s.cases {
		s.caseIndex[c.ID] = i
	}
}

// SetEntities atomically replaces the entity collection.
func (s *Snapshot) SetEntities(entities []model.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities = append([]model.Entity(nil), entities...)
	s.entityIndex = make(map[int64]int, len(s.entities))
	for i, e := range s.entities {
		s.entityIndex[e.ID] = i
	}
}

// SetRelationships atomically replaces the relationship collection.
func (s *Snapshot) SetRelationships(rels []model.Relationship) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.relationships = append([]model.Relationship(nil), rels...)
}

// Cases returns a copy of the cached cases in fetch order.
func (s *Snapshot) Cases() []model.Case {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Case(nil), s.cases...)
}

// Entities returns a copy of the cached entities in fetch order.
func (s *Snapshot) Entities() []model.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Entity(nil), s.entities...)
}

// Relationships returns a copy of the cached relationships in fetch order.
func (s *Snapshot) Relationships() []model.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Relationship(nil), s.relationships...)
}

// CaseByID looks up a cached case.
func (s *Snapshot) CaseByID(id int64) (model.Case, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.caseIndex[id]
	if !ok {
		return model.Case{}, false
	}
	return s.cases[i], true
}

// EntityByID looks up a cached entity.
func (s *Snapshot) EntityByID(id int64) (model.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.entityIndex[id]
	if !ok {
		return model.Entity{}, false
	}
	return s.entities[i], true
}

// EntityName resolves an entity id to its display name, or "" when the
// id is not cached. Filter and export code treat the empty string as
// "no match", never as an error.
func (s *Snapshot) EntityName(id int64) string {
	e, ok := s.EntityByID(id)
	if !ok {
		return ""
	}
	return e.Name
}

// CaseName resolves a case id to its display name, falling back to a
// synthetic label when the case is not cached (e.g. a race with case
// deletion between refreshes).
func (s *Snapshot) CaseName(id int64) string {
	c, ok := s.CaseByID(id)
	if !ok {
		return "(unknown case)"
	}
	return c.Name
}

// Clear drops all cached collections, e.g. on logout.
func (s *Snapshot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases = nil
	s.entities = nil
	s.relationships = nil
	s.caseIndex = make(map[int64]int)
	s.entityIndex = make(map[int64]int)
}
