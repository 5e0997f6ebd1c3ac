package raster

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gyaneshwarpardhi/advlogic/internal/catalog"
	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
)

// Result is the outcome of rendering one graph in a batch.
type Result struct {
	Graph string
	Path  string
	Err   error
}

// job is the unit of work dispatched to a worker.
type job struct {
	index int
	g     *graph.Graph
}

// RenderAll writes one PNG per graph into dir, named <graph-id>.png with the
// id path-escaped, using
// up to workers goroutines. Results are returned in input order. A
// cancelled context stops workers from starting new graphs; graphs not
// rendered carry ctx.Err().
func RenderAll(ctx context.Context, graphs []*graph.Graph, cat *catalog.Catalog, opts Options, dir string, workers int) []Result {
	results := make([]Result, len(graphs))
	names := fileNames(graphs)
	for i, g := range graphs {
		results[i] = Result{Graph: g.ID, Path: filepath.Join(dir, names[i])}
	}
	if len(graphs) == 0 {
		return results
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		for i := range results {
			results[i].Err = err
		}
		return results
	}
	workers = max(1, min(workers, len(graphs)))

	queue := make(chan job, len(graphs))
	for i, g := range graphs {
		queue <- job{index: i, g: g}
	}
	close(queue)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				if err := ctx.Err(); err != nil {
					results[j.index].Err = err
					continue
				}
				results[j.index].Err = renderFile(results[j.index].Path, j.g, cat, opts)
			}
		}()
	}
	wg.Wait()
	return results
}

func renderFile(path string, g *graph.Graph, cat *catalog.Catalog, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := RenderPNG(f, g, cat, opts); err != nil {
		return fmt.Errorf("render %s: %w", g.ID, err)
	}
	return nil
}

// fileNames maps graph ids to distinct file names. Ids are path-escaped so
// "a/x" and "b/x" stay apart; names that still collide, ignoring case, get a
// "~N" suffix.
func fileNames(graphs []*graph.Graph) []string {
	names := make([]string, len(graphs))
	taken := make(map[string]bool, len(graphs))
	for i, g := range graphs {
		base := url.PathEscape(g.ID)
		if base == "" {
			base = "_"
		}
		name := base + ".png"
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s~%d.png", base, n)
		}
		taken[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}
