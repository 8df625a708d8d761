// Package graph derives the node/edge view-model handed to a rendering
// surface from a cache snapshot and an optional case scope. Building
// is deterministic: the same snapshot and scope always produce
// structurally identical output, so re-renders are flicker-free.
package graph

import "github.com/ghostlock/console/internal/model"

// Node is one renderable entity.
type Node struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Style Style  `json:"style"`

	// Detail carries the full entity record for hover/click handling,
	// so the presentation layer never has to re-fetch.
	Detail model.Entity `json:"detail"`
}

// Edge is one renderable directed relationship.
type Edge struct {
	ID       int64  `json:"id"`
	From     int64  `json:"from"`
	To       int64  `json:"to"`
	Label    string `json:"label"`
	Directed bool   `json:"directed"`
}

// Graph is the complete view-model for one build.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Build constructs the view-model. When scopeCaseID is non-nil only
// entities of that case become nodes, and only relationships with both
// endpoints inside the scoped set become edges, so there are never
// dangling edges. An empty scoped set yields an empty graph, not an
// error.
func Build(entities []model.Entity, relationships []model.Relationship, scopeCaseID *int64) Graph {
	g := Graph{Nodes: []Node{}, Edges: []Edge{}}

	surviving := make(map[int64]bool, len(entities))
	for _, e := range entities {
		if scopeCaseID != nil && e.CaseID != *scopeCaseID {
			continue
		}
		surviving[e.ID] = true
		g.Nodes = append(g.Nodes, Node{
			ID:     e.ID,
			Label:  e.Name,
			Style:  StyleForKind(e.Kind),
			Detail: e,
		})
	}

	for _, r := range relationships {
		if !surviving[r.SourceEntityID] || !surviving[r.TargetEntityID] {
			continue
		}
		g.Edges = append(g.Edges, Edge{
			ID:       r.ID,
			From:     r.SourceEntityID,
			To:       r.TargetEntityID,
			Label:    r.Relation,
			Directed: true,
		})
	}

	return g
}

// NodeByID returns the node with the given id, for click handling.
func (g Graph) NodeByID(id int64) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
