package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/gyaneshwarpardhi/advlogic/internal/logging"
	"github.com/gyaneshwarpardhi/advlogic/internal/metrics"
)

// Loader reads a YAML catalog file and watches it for changes.
// An empty path serves the built-in table and never reloads.
type Loader struct {
	path     string
	logger   *slog.Logger
	mu       sync.RWMutex
	current  *Catalog
	onChange []func(*Catalog)
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string, logger *slog.Logger) (*Loader, error) {
	l := &Loader{path: path, logger: logging.OrNop(logger)}
	c, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = c
	return l, nil
}

// Catalog returns the current (latest) catalog.
func (l *Loader) Catalog() *Catalog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Path returns the watched file, or "" for the built-in table.
func (l *Loader) Path() string { return l.path }

// OnChange registers a callback invoked whenever the catalog reloads.
func (l *Loader) OnChange(fn func(*Catalog)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the catalog when the
// file is written or replaced. Call the returned stop function to clean up.
// A failed reload keeps the previous catalog.
func (l *Loader) Watch() (stop func(), err error) {
	if l.path == "" {
		return func() {}, nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("catalog watcher: %w", err)
	}
	// Watch the directory: editors often save through rename, which drops
	// a watch placed on the file itself.
	dir := filepath.Dir(l.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("catalog watcher add %s: %w", dir, err)
	}
	target := filepath.Clean(l.path)

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					if _, err := l.Reload(); err != nil {
						l.logger.Warn("catalog reload failed; keeping previous catalog", "path", l.path, "err", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Warn("catalog watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the catalog file.
func (l *Loader) Reload() (*Catalog, error) {
	c, err := l.load()
	if err != nil {
		metrics.CatalogReloads.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.CatalogReloads.WithLabelValues("ok").Inc()
	l.mu.Lock()
	l.current = c
	callbacks := make([]func(*Catalog), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(c)
	}
	l.logger.Info("catalog loaded", "path", l.path, "version", c.Version())
	return c, nil
}

func (l *Loader) load() (*Catalog, error) {
	if l.path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", l.path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	return c, nil
}

// LoadFile reads a catalog file once, without watching it.
func LoadFile(path string) (*Catalog, error) {
	l := &Loader{path: path}
	return l.load()
}
