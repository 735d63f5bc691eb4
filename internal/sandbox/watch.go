package sandbox

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// Watcher reloads fixtures into the store when the file changes, so a
// demo can be reshaped without restarting the server.
type Watcher struct {
	store  *Store
	path   string
	logger *slog.Logger
	fw     *fsnotify.Watcher
	stop   chan struct{}
	done   chan struct{}
}

// NewWatcher starts watching the fixtures file. The directory is
// watched, not the file: editors replace files on save, which drops a
// watch registered on the file itself.
func NewWatcher(store *Store, path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fixture watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	w := &Watcher{
		store:  store,
		path:   filepath.Clean(path),
		logger: logger,
		fw:     fw,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher and waits for the loop to exit.
func (w *Watcher) Close() {
	close(w.stop)
	_ = w.fw.Close()
	<-w.done
}

func (w *Watcher) loop() {
	defer close(w.done)

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Editors fire several events per save; coalesce them.
			debounce.Reset(reloadDebounce)
		case <-debounce.C:
			w.reload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("fixture watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	f, err := LoadFile(w.path)
	if err != nil {
		// Keep serving the previous dataset; a half-saved file is
		// not a reason to wipe state.
		w.logger.Warn("fixture reload failed", "path", w.path, "error", err)
		return
	}
	w.store.Load(f)
	w.logger.Info("fixtures reloaded", "path", w.path, "workspaces", len(f.Workspaces))
}
