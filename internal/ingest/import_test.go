package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghostlock/console/internal/model"
)

type fakeCreator struct {
	mu      sync.Mutex
	created []model.Entity
	failOn  string
	nextID  int64
}

func (f *fakeCreator) CreateEntity(ctx context.Context, caseID int64, name, kind, description string) (*model.Entity, error) {
	if name == f.failOn {
		return nil, fmt.Errorf("server rejected %q", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e := model.Entity{ID: f.nextID, CaseID: caseID, Name: name, Kind: kind, Description: description}
	f.created = append(f.created, e)
	return &e, nil
}

func (f *fakeCreator) snapshot() []model.Entity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Entity(nil), f.created...)
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportJSON(t *testing.T) {
	path := writeTempFile(t, "entities.json", `[
		{"name": "1.2.3.4", "kind": "ip", "description": "C2"},
		{"name": "evil.com", "type": "domain"}
	]`)

	creator := &fakeCreator{}
	importer := NewImporter(creator, nil)

	result, err := importer.ImportFile(context.Background(), 1, path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Errors)

	created := creator.snapshot()
	require.Len(t, created, 2)
	assert.Equal(t, "ip", created[0].Kind)
	// "type" is accepted as a kind alias.
	assert.Equal(t, "domain", created[1].Kind)
}

func TestImportCSV(t *testing.T) {
	path := writeTempFile(t, "entities.csv",
		"name,kind,description\n1.2.3.4,ip,C2 node\nevil.com,domain,\n")

	creator := &fakeCreator{}
	importer := NewImporter(creator, nil)

	result, err := importer.ImportFile(context.Background(), 7, path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)

	created := creator.snapshot()
	require.Len(t, created, 2)
	assert.Equal(t, int64(7), created[0].CaseID)
	assert.Equal(t, "C2 node", created[0].Description)
}

func TestImportAccumulatesRowErrors(t *testing.T) {
	path := writeTempFile(t, "entities.csv",
		"name,kind\n,ip\nno-kind,\nrejected,domain\ngood.com,domain\n")

	creator := &fakeCreator{failOn: "rejected"}
	importer := NewImporter(creator, nil)

	result, err := importer.ImportFile(context.Background(), 1, path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "Row 1: Missing name")
	assert.Contains(t, result.Errors[1], "Row 2: Missing kind/type")
	assert.Contains(t, result.Errors[2], "Row 3")

	assert.Contains(t, result.Message(), "imported 1 entities with 3 errors")
}

func TestImportRejectsUnknownExtension(t *testing.T) {
	path := writeTempFile(t, "entities.txt", "whatever")

	importer := NewImporter(&fakeCreator{}, nil)
	_, err := importer.ImportFile(context.Background(), 1, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be .csv or .json")
}

func TestImportInvalidJSON(t *testing.T) {
	path := writeTempFile(t, "entities.json", `{"not": "an array"}`)

	importer := NewImporter(&fakeCreator{}, nil)
	_, err := importer.ImportFile(context.Background(), 1, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestWatcherMatches(t *testing.T) {
	w := NewWatcher(NewImporter(&fakeCreator{}, nil), WatchOptions{Dir: t.TempDir()})

	assert.True(t, w.matches("/drop/entities.json"))
	assert.True(t, w.matches("/drop/batch.csv"))
	assert.False(t, w.matches("/drop/notes.txt"))
	assert.False(t, w.matches("/drop/entities.json.tmp"))
}
