// Package filter narrows cached collections by user-supplied criteria.
// Every function is pure: inputs are never mutated and input order is
// preserved, so filtering twice with the same criteria is a no-op.
package filter

import (
	"strings"

	"github.com/ghostlock/console/internal/model"
)

// EntityCriteria narrows an entity collection. All set fields are
// AND-combined; zero values mean "no constraint".
type EntityCriteria struct {
	// TextQuery is matched case-insensitively against name and
	// description.
	TextQuery string

	// CaseID restricts to one case when non-nil.
	CaseID *int64

	// Kind is a case-insensitive exact match when non-empty.
	Kind string
}

// CaseCriteria narrows a case collection.
type CaseCriteria struct {
	TextQuery string
}

// RelationshipCriteria narrows a relationship collection. TextQuery
// matches the relation label or either resolved endpoint name.
type RelationshipCriteria struct {
	TextQuery string
}

// NameResolver resolves an entity id to a display name, returning ""
// for ids it cannot resolve. *cache.Snapshot satisfies this via
// EntityName.
type NameResolver interface {
	EntityName(id int64) string
}

func textMatch(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Entities returns the entities matching the criteria.
func Entities(entities []model.Entity, c EntityCriteria) []model.Entity {
	kind := strings.ToLower(strings.TrimSpace(c.Kind))
	out := make([]model.Entity, 0, len(entities))
	for _, e := range entities {
		if c.CaseID != nil && e.CaseID != *c.CaseID {
			continue
		}
		if kind != "" && strings.ToLower(e.Kind) != kind {
			continue
		}
		if !textMatch(c.TextQuery, e.Name, e.Description) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Cases returns the cases matching the criteria.
func Cases(cases []model.Case, c CaseCriteria) []model.Case {
	out := make([]model.Case, 0, len(cases))
	for _, cs := range cases {
		if !textMatch(c.TextQuery, cs.Name, cs.Description) {
			continue
		}
		out = append(out, cs)
	}
	return out
}

// Relationships returns the relationships matching the criteria.
// Endpoint names are resolved through the resolver; an unresolved
// endpoint contributes an empty string, which never matches a
// non-empty query.
func Relationships(rels []model.Relationship, c RelationshipCriteria, names NameResolver) []model.Relationship {
	out := make([]model.Relationship, 0, len(rels))
	for _, r := range rels {
		if !textMatch(c.TextQuery, r.Relation, names.EntityName(r.SourceEntityID), names.EntityName(r.TargetEntityID)) {
			continue
		}
		out = append(out, r)
	}
	return out
}
