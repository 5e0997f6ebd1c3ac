package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gyaneshwarpardhi/advlogic/internal/document"
)

// settle is how long Watch waits after the last document event before
// reloading, so a save that writes in several steps reloads once.
const settle = 200 * time.Millisecond

// Watch reloads the project when a graph document changes on disk. Changes
// are not applied while there are unsaved edits or attached controllers;
// they are logged and skipped. Call the returned stop function to clean up.
func (w *Workspace) Watch() (stop func(), err error) {
	dir := filepath.Dir(document.Logic.Path(w.dir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("document watcher: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("document watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("document watcher add %s: %w", dir, err)
	}
	targets := make(map[string]bool, len(document.Collections))
	for _, c := range document.Collections {
		targets[filepath.Clean(c.Path(w.dir))] = true
	}

	done := make(chan struct{})
	go func() {
		defer fw.Close()
		var pending <-chan time.Time
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if !targets[filepath.Clean(ev.Name)] {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
					pending = time.After(settle)
				}
			case <-pending:
				pending = nil
				w.reloadFromWatch()
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.logger.Warn("document watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

func (w *Workspace) reloadFromWatch() {
	if w.Dirty() || w.Controllers() > 0 {
		w.logger.Warn("documents changed on disk; editing session open, not reloading")
		return
	}
	if err := w.Reload(); err != nil {
		w.logger.Warn("document reload failed; keeping previous graphs", "err", err)
		return
	}
	w.logger.Info("documents reloaded from disk")
}
