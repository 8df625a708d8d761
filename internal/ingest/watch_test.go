package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherImportsDroppedFile(t *testing.T) {
	dir := t.TempDir()
	creator := &fakeCreator{}
	w := NewWatcher(NewImporter(creator, nil), WatchOptions{
		Dir:    dir,
		CaseID: 3,
		Settle: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the watcher time to register before dropping the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "drop.json"),
		[]byte(`[{"name": "1.2.3.4", "kind": "ip"}]`), 0644))

	require.Eventually(t, func() bool {
		return len(creator.snapshot()) == 1
	}, 3*time.Second, 20*time.Millisecond)

	created := creator.snapshot()
	assert.Equal(t, int64(3), created[0].CaseID)
	assert.Equal(t, "1.2.3.4", created[0].Name)
}

func TestWatcherImportsExistingFilesOnStart(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.csv"),
		[]byte("name,kind\nevil.com,domain\n"), 0644))

	creator := &fakeCreator{}
	w := NewWatcher(NewImporter(creator, nil), WatchOptions{Dir: dir, CaseID: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.Eventually(t, func() bool {
		return len(creator.snapshot()) == 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcherCancelStopsPendingImports(t *testing.T) {
	dir := t.TempDir()
	creator := &fakeCreator{}
	w := NewWatcher(NewImporter(creator, nil), WatchOptions{
		Dir:    dir,
		CaseID: 1,
		Settle: 300 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.json"),
		[]byte(`[{"name": "evil.com", "kind": "domain"}]`), 0644))

	// Cancel inside the settle window so the import is still pending.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}

	// The settled timer must not fire an import after shutdown.
	time.Sleep(500 * time.Millisecond)
	assert.Empty(t, creator.snapshot())
}
