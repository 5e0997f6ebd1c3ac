package document

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
	"github.com/gyaneshwarpardhi/advlogic/internal/metrics"
)

// Collection names one of the project's graph documents.
type Collection string

const (
	Logic    Collection = "logic"
	Dialogue Collection = "dialogue"
)

// Collections lists every known collection in load order.
var Collections = []Collection{Logic, Dialogue}

// ParseCollection validates a collection name.
func ParseCollection(s string) (Collection, error) {
	for _, c := range Collections {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q (want logic or dialogue)", s)
}

// Path returns the document file for c inside a project directory.
func (c Collection) Path(projectDir string) string {
	name := "LogicGraphs.json"
	if c == Dialogue {
		name = "DialogueGraphs.json"
	}
	return filepath.Join(projectDir, "Logic", name)
}

// LoadFile reads a document from disk. A missing file is not an error: the
// result is empty and the report has Missing set.
func LoadFile(path string, logger *slog.Logger) ([]*graph.Graph, *Report, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		metrics.DocumentsLoaded.WithLabelValues("missing").Inc()
		return []*graph.Graph{}, &Report{Missing: true}, nil
	}
	if err != nil {
		metrics.DocumentsLoaded.WithLabelValues("error").Inc()
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	graphs, report, err := NewDecoder(logger).Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return graphs, report, nil
}

// SaveFile writes graphs to path through a temporary file in the same
// directory, so a failed write never leaves a truncated document.
func SaveFile(path string, graphs []*graph.Graph) (err error) {
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.DocumentsSaved.WithLabelValues(result).Inc()
	}()

	data, err := Marshal(graphs)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
