// Package model holds the wire and domain types shared by the GhostLock
// console: cases, entities, relationships, comments, timeline events and
// transform results, as returned by the GhostLock API.
package model

import (
	"strings"
	"time"
)

// Case is a top-level investigative container owning entities.
type Case struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Entity is a typed investigative subject inside a case.
type Entity struct {
	ID          int64  `json:"id"`
	CaseID      int64  `json:"case_id"`
	Name        string `json:"name"`
	Kind        string `json:"kind,omitempty"`
	Description string `json:"description,omitempty"`
}

// Relationship is a directed, labeled edge between two entities.
// source_entity_id/target_entity_id is the canonical field pair; the
// export path of the legacy server used source_id/target_id and that
// variant is not accepted here.
type Relationship struct {
	ID             int64  `json:"id"`
	SourceEntityID int64  `json:"source_entity_id"`
	TargetEntityID int64  `json:"target_entity_id"`
	Relation       string `json:"relation,omitempty"`
}

// Comment is an append-only note attached to one entity.
type Comment struct {
	ID        int64     `json:"id"`
	EntityID  int64     `json:"entity_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// APIKey is a stored credential for external transform providers.
type APIKey struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Key         string `json:"key"`
	Active      bool   `json:"active"`
}

// TimelineEvent is an immutable activity record emitted by the server
// as a side effect of mutations. The server returns them newest-first.
type TimelineEvent struct {
	Action       string    `json:"action"`        // created|deleted|updated|transform
	ResourceType string    `json:"resource_type"` // case|entity|relationship|apikey
	ResourceID   int64     `json:"resource_id,omitempty"`
	ResourceName string    `json:"resource_name,omitempty"`
	Details      string    `json:"details,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TransformResult is the payload returned by a transform run: entities
// and relationships the enrichment created, plus an optional note from
// the provider (e.g. "Missing SHODAN_API_KEY in API vault").
type TransformResult struct {
	Nodes   []Entity       `json:"nodes"`
	Edges   []Relationship `json:"edges"`
	Message string         `json:"message,omitempty"`
}

// Entity kinds with dedicated styling in the graph view. Anything else
// renders with the default style.
const (
	KindIP           = "ip"
	KindDomain       = "domain"
	KindURL          = "url"
	KindThreat       = "threat"
	KindScreenshot   = "screenshot"
	KindPerson       = "person"
	KindOrganization = "organization"
	KindEmail        = "email"
	KindHash         = "hash"
)

// transformableKinds are the kinds the server has transform providers for.
var transformableKinds = map[string]bool{
	KindIP:     true,
	KindDomain: true,
	KindURL:    true,
}

// Transformable reports whether entities of the given kind can be run
// through a transform. Matching is case-insensitive.
func Transformable(kind string) bool {
	return transformableKinds[strings.ToLower(strings.TrimSpace(kind))]
}
