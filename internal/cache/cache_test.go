package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghostlock/console/internal/model"
)

func TestSetEntitiesReplacesWholesale(t *testing.T) {
	snap := New()

	snap.SetEntities([]model.Entity{
		{ID: 10, CaseID: 1, Name: "1.2.3.4", Kind: "ip"},
		{ID: 11, CaseID: 1, Name: "evil.com", Kind: "domain"},
	})

	e, ok := snap.EntityByID(10)
	require.True(t, ok)
	assert.Equal(t, "1.2.3.4", e.Name)

	// Replace drops every id not in the new list.
	snap.SetEntities([]model.Entity{
		{ID: 12, CaseID: 1, Name: "10.0.0.1", Kind: "ip"},
	})

	_, ok = snap.EntityByID(10)
	assert.False(t, ok, "expected no residue from the prior collection")
	_, ok = snap.EntityByID(11)
	assert.False(t, ok)
	_, ok = snap.EntityByID(12)
	assert.True(t, ok)
	assert.Len(t, snap.Entities(), 1)
}

func TestCaseLookup(t *testing.T) {
	snap := New()
	snap.SetCases([]model.Case{
		{ID: 1, Name: "Alpha"},
		{ID: 2, Name: "Bravo", Description: "second"},
	})

	c, ok := snap.CaseByID(2)
	require.True(t, ok)
	assert.Equal(t, "Bravo", c.Name)

	_, ok = snap.CaseByID(99)
	assert.False(t, ok)
}

func TestNameFallbacks(t *testing.T) {
	snap := New()
	snap.SetCases([]model.Case{{ID: 1, Name: "Alpha"}})
	snap.SetEntities([]model.Entity{{ID: 10, CaseID: 1, Name: "1.2.3.4", Kind: "ip"}})

	assert.Equal(t, "Alpha", snap.CaseName(1))
	assert.Equal(t, "(unknown case)", snap.CaseName(42))

	assert.Equal(t, "1.2.3.4", snap.EntityName(10))
	assert.Equal(t, "", snap.EntityName(99), "unresolved entities resolve to empty string")
}

func TestReadersGetCopies(t *testing.T) {
	snap := New()
	snap.SetEntities([]model.Entity{{ID: 10, CaseID: 1, Name: "1.2.3.4", Kind: "ip"}})

	entities := snap.Entities()
	entities[0].Name = "mutated"

	e, ok := snap.EntityByID(10)
	require.True(t, ok)
	assert.Equal(t, "1.2.3.4", e.Name, "caller mutation must not leak into the cache")
}

func TestSetDoesNotAliasInput(t *testing.T) {
	snap := New()
	input := []model.Entity{{ID: 10, CaseID: 1, Name: "1.2.3.4", Kind: "ip"}}
	snap.SetEntities(input)

	input[0].Name = "mutated"

	e, ok := snap.EntityByID(10)
	require.True(t, ok)
	assert.Equal(t, "1.2.3.4", e.Name)
}

func TestClear(t *testing.T) {
	snap := New()
	snap.SetCases([]model.Case{{ID: 1, Name: "Alpha"}})
	snap.SetEntities([]model.Entity{{ID: 10, CaseID: 1, Name: "1.2.3.4"}})
	snap.SetRelationships([]model.Relationship{{ID: 100, SourceEntityID: 10, TargetEntityID: 10}})

	snap.Clear()

	assert.Empty(t, snap.Cases())
	assert.Empty(t, snap.Entities())
	assert.Empty(t, snap.Relationships())
	_, ok := snap.EntityByID(10)
	assert.False(t, ok)
}
