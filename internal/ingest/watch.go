package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchOptions controls drop-folder import behavior.
type WatchOptions struct {
	Dir    string
	CaseID int64

	// Patterns limits which files are imported. Defaults to
	// *.json and *.csv.
	Patterns []string

	// Settle is how long a file must be quiet after its last write
	// event before it is imported, so partially copied files are not
	// picked up. Defaults to 500ms.
	Settle time.Duration

	Logger *log.Logger
}

// Watcher imports entity files dropped into a directory.
type Watcher struct {
	importer *Importer
	opts     WatchOptions
	logger   *log.Logger

	mu   sync.Mutex
	seen map[string]bool
}

// NewWatcher constructs a drop-folder watcher with defaults applied.
func NewWatcher(importer *Importer, opts WatchOptions) *Watcher {
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[import-watch] ", log.LstdFlags)
	}
	if len(opts.Patterns) == 0 {
		opts.Patterns = []string{"*.json", "*.csv"}
	}
	if opts.Settle <= 0 {
		opts.Settle = 500 * time.Millisecond
	}
	return &Watcher{
		importer: importer,
		opts:     opts,
		logger:   opts.Logger,
		seen:     make(map[string]bool),
	}
}

// Run imports files already present in the directory, then watches for
// new ones until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := os.Stat(w.opts.Dir); err != nil {
		return fmt.Errorf("watch directory not accessible: %w", err)
	}

	// Initial pass over files already in the folder.
	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		return fmt.Errorf("failed to read watch directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.maybeImport(ctx, filepath.Join(w.opts.Dir, entry.Name()))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.opts.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.opts.Dir, err)
	}
	w.logger.Printf("watching %s for entity files", w.opts.Dir)

	// Pending files settle before import, keyed by path.
	timers := make(map[string]*time.Timer)
	var timerMu sync.Mutex
	defer func() {
		timerMu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			path := event.Name
			if !w.matches(path) {
				continue
			}
			timerMu.Lock()
			if t, exists := timers[path]; exists {
				t.Stop()
			}
			timers[path] = time.AfterFunc(w.opts.Settle, func() {
				timerMu.Lock()
				delete(timers, path)
				timerMu.Unlock()
				// A timer can race Stop on shutdown; never import
				// with a dead context.
				if ctx.Err() != nil {
					return
				}
				w.maybeImport(ctx, path)
			})
			timerMu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("watch error: %v", err)
		}
	}
}

func (w *Watcher) matches(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.opts.Patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// maybeImport runs one file through the importer, at most once per path.
func (w *Watcher) maybeImport(ctx context.Context, path string) {
	if !w.matches(path) {
		return
	}

	w.mu.Lock()
	if w.seen[path] {
		w.mu.Unlock()
		return
	}
	w.seen[path] = true
	w.mu.Unlock()

	result, err := w.importer.ImportFile(ctx, w.opts.CaseID, path)
	if err != nil {
		w.logger.Printf("failed to import %s: %v", filepath.Base(path), err)
		// Allow a retry if the file is rewritten.
		w.mu.Lock()
		delete(w.seen, path)
		w.mu.Unlock()
		return
	}

	w.logger.Printf("%s: %s", filepath.Base(path), result.Message())
	for _, e := range result.Errors {
		w.logger.Printf("  %s", strings.TrimSpace(e))
	}
}
