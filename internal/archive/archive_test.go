package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghostlock/console/internal/model"
)

func TestNewStore(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	var count int
	err = store.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count)
	require.NoError(t, err)
	assert.Greater(t, count, 0, "Expected tables to be created")
}

func TestSnapshotRoundtrip(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	c := model.Case{ID: 1, Name: "Alpha", Description: "intrusion"}
	entities := []model.Entity{
		{ID: 10, CaseID: 1, Name: "1.2.3.4", Kind: "ip", Description: "C2 address"},
		{ID: 11, CaseID: 1, Name: "evil.com", Kind: "domain"},
	}
	rels := []model.Relationship{
		{ID: 100, SourceEntityID: 10, TargetEntityID: 11, Relation: "resolves_to"},
	}
	comments := []model.Comment{
		{ID: 1, EntityID: 10, Text: "first sighted in netflow", CreatedAt: time.Now().Truncate(time.Second)},
	}

	id, err := store.SaveSnapshot(ctx, c, entities, rels, comments)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	gotCase, gotEntities, gotRels, gotComments, err := store.LoadSnapshot(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, c, gotCase)
	require.Len(t, gotEntities, 2)
	assert.Equal(t, "C2 address", gotEntities[0].Description)
	require.Len(t, gotRels, 1)
	assert.Equal(t, int64(10), gotRels[0].SourceEntityID)
	require.Len(t, gotComments, 1)
	assert.Equal(t, "first sighted in netflow", gotComments[0].Text)
}

func TestListSnapshotsCounts(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	c := model.Case{ID: 1, Name: "Alpha"}
	_, err = store.SaveSnapshot(ctx, c,
		[]model.Entity{{ID: 10, CaseID: 1, Name: "a"}},
		[]model.Relationship{},
		[]model.Comment{})
	require.NoError(t, err)
	_, err = store.SaveSnapshot(ctx, c,
		[]model.Entity{{ID: 10, CaseID: 1, Name: "a"}, {ID: 11, CaseID: 1, Name: "b"}},
		[]model.Relationship{{ID: 100, SourceEntityID: 10, TargetEntityID: 11}},
		[]model.Comment{})
	require.NoError(t, err)

	snapshots, err := store.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	total := snapshots[0].Entities + snapshots[1].Entities
	assert.Equal(t, 3, total)
	assert.Equal(t, "Alpha", snapshots[0].CaseName)
}

func TestLoadMissingSnapshot(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, _, _, _, err = store.LoadSnapshot(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
