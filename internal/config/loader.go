package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/gyaneshwarpardhi/advlogic/internal/logging"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		LogFormat:  "text",
		ProjectDir: ".",
		Canvas: CanvasConf{
			GridSnap:          true,
			GridSize:          20,
			DragThreshold:     3,
			DefaultNodeWidth:  240,
			DefaultNodeHeight: 160,
		},
		IDs:   IDConf{Style: "sequential", Prefix: "node_"},
		Serve: ServeConf{Addr: ":8080", WatchDocuments: true},
	}
}

// Parse decodes a YAML document over Default, so omitted keys keep their
// default values, and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero values an explicit YAML key may have produced.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = def.LogFormat
	}
	if cfg.ProjectDir == "" {
		cfg.ProjectDir = def.ProjectDir
	}
	if cfg.Canvas.GridSize == 0 {
		cfg.Canvas.GridSize = def.Canvas.GridSize
	}
	if cfg.Canvas.DragThreshold == 0 {
		cfg.Canvas.DragThreshold = def.Canvas.DragThreshold
	}
	if cfg.Canvas.DefaultNodeWidth == 0 {
		cfg.Canvas.DefaultNodeWidth = def.Canvas.DefaultNodeWidth
	}
	if cfg.Canvas.DefaultNodeHeight == 0 {
		cfg.Canvas.DefaultNodeHeight = def.Canvas.DefaultNodeHeight
	}
	if cfg.IDs.Style == "" {
		cfg.IDs.Style = def.IDs.Style
	}
	if cfg.IDs.Prefix == "" {
		cfg.IDs.Prefix = def.IDs.Prefix
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = def.Serve.Addr
	}
}

// Loader reads a YAML config file and watches it for changes.
// An empty path serves Default and never reloads.
type Loader struct {
	path     string
	logger   *slog.Logger
	mu       sync.RWMutex
	current  *Config
	onChange []func(*Config)
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string, logger *slog.Logger) (*Loader, error) {
	l := &Loader{path: path, logger: logging.OrNop(logger)}
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Config returns the current (latest) configuration.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the config reloads.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the config on file
// changes. Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	if l.path == "" {
		return func() {}, nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	dir := filepath.Dir(l.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", dir, err)
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
						l.logger.Warn("config reload failed; keeping previous config", "path", l.path, "err", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Warn("config watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the config file.
func (l *Loader) Reload() (*Config, error) {
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = cfg
	callbacks := make([]func(*Config), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
	return cfg, nil
}

func (l *Loader) load() (*Config, error) {
	if l.path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	return cfg, nil
}
