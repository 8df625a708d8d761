package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghostlock/console/internal/cache"
	"github.com/ghostlock/console/internal/model"
)

func exportSnapshot() *cache.Snapshot {
	snap := cache.New()
	snap.SetCases([]model.Case{{ID: 1, Name: "Alpha", Description: "intrusion"}})
	snap.SetEntities([]model.Entity{
		{ID: 10, CaseID: 1, Name: "1.2.3.4", Kind: "ip"},
		{ID: 11, CaseID: 1, Name: "evil.com", Kind: "domain"},
		{ID: 20, CaseID: 2, Name: "outsider", Kind: "person"},
	})
	snap.SetRelationships([]model.Relationship{
		{ID: 100, SourceEntityID: 10, TargetEntityID: 11, Relation: "resolves_to"},
		// Crosses out of case 1; not exported for case 1.
		{ID: 101, SourceEntityID: 11, TargetEntityID: 20, Relation: "registered_by"},
	})
	return snap
}

func TestCollectScopesToCase(t *testing.T) {
	doc, err := Collect(exportSnapshot(), 1)
	require.NoError(t, err)

	assert.Equal(t, "Alpha", doc.Case.Name)
	require.Len(t, doc.Entities, 2)
	require.Len(t, doc.Relationships, 1)
	assert.Equal(t, int64(100), doc.Relationships[0].ID)
}

func TestCollectUnknownCase(t *testing.T) {
	_, err := Collect(exportSnapshot(), 42)
	require.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	doc, err := Collect(exportSnapshot(), 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc, FormatJSON))

	var decoded Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, doc.Case.ID, decoded.Case.ID)
	assert.Len(t, decoded.Entities, 2)
	assert.Equal(t, int64(10), decoded.Relationships[0].SourceEntityID)
}

func TestWriteCSV(t *testing.T) {
	doc, err := Collect(exportSnapshot(), 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc, FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	// header + case + 2 entities + 1 relationship
	require.Len(t, records, 5)

	assert.Equal(t, "source_entity_id", records[0][5])
	assert.Equal(t, "case", records[1][0])
	assert.Equal(t, "entity", records[2][0])
	assert.Equal(t, []string{"relationship", "100", "", "", "", "10", "11", "resolves_to"}, records[4])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}
