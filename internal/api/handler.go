// Package api serves a read-only HTTP view of a workspace.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/advlogic/internal/catalog"
	"github.com/gyaneshwarpardhi/advlogic/internal/document"
	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
	"github.com/gyaneshwarpardhi/advlogic/internal/logging"
	"github.com/gyaneshwarpardhi/advlogic/internal/raster"
	"github.com/gyaneshwarpardhi/advlogic/internal/workspace"
)

const maxMargin = 500

// Handler holds all HTTP handler dependencies.
type Handler struct {
	ws      *workspace.Workspace
	catalog *catalog.Loader // nil when the built-in catalog is used
	logger  *slog.Logger
	mux     *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(ws *workspace.Workspace, cat *catalog.Loader, logger *slog.Logger) http.Handler {
	h := &Handler{ws: ws, catalog: cat, logger: logging.OrNop(logger), mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /v1/collections/{collection}", h.listGraphs)
	h.mux.HandleFunc("GET /v1/collections/{collection}/graphs/{id}", h.getGraph)
	h.mux.HandleFunc("GET /v1/collections/{collection}/graphs/{id}/tree", h.getTree)
	h.mux.HandleFunc("GET /v1/collections/{collection}/graphs/{id}/render.png", h.renderGraph)
	h.mux.HandleFunc("GET /v1/catalog", h.getCatalog)
	h.mux.HandleFunc("POST /v1/reload", h.reload)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.logger, h.mux)
}

type graphSummary struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Nodes int      `json:"nodes"`
	Edges int      `json:"edges"`
	Roots []string `json:"roots"`
}

// GET /v1/collections/{collection}: graphs of one collection and its load report.
func (h *Handler) listGraphs(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	graphs := h.ws.Graphs(c)
	out := make([]graphSummary, 0, len(graphs))
	for _, g := range graphs {
		s := graphSummary{ID: g.ID, Name: g.Name, Nodes: g.Len(), Edges: g.EdgeCount(), Roots: []string{}}
		for _, n := range g.RootNodes() {
			s.Roots = append(s.Roots, n.ID)
		}
		out = append(out, s)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"collection": c,
		"graphs":     out,
		"report":     h.ws.Report(c),
	})
}

// GET .../graphs/{id}: the persisted record of a graph plus any integrity problems.
func (h *Handler) getGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := h.graph(w, r)
	if !ok {
		return
	}
	data, err := document.MarshalGraph(g)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	problems := g.Problems()
	if problems == nil {
		problems = []graph.Problem{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"graph":    json.RawMessage(data),
		"problems": problems,
	})
}

// GET .../graphs/{id}/tree: outline view; nodes reached twice appear as revisits.
func (h *Handler) getTree(w http.ResponseWriter, r *http.Request) {
	g, ok := h.graph(w, r)
	if !ok {
		return
	}
	tree := g.Tree()
	if tree == nil {
		tree = []*graph.TreeNode{}
	}
	writeJSON(w, http.StatusOK, tree)
}

// GET .../graphs/{id}/render.png?selected=a,b&margin=20
func (h *Handler) renderGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := h.graph(w, r)
	if !ok {
		return
	}
	opts := raster.Options{Margin: 20}
	if s := r.URL.Query().Get("margin"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 0 || m > maxMargin {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("margin must be an integer in [0, %d]", maxMargin))
			return
		}
		opts.Margin = m
	}
	if s := r.URL.Query().Get("selected"); s != "" {
		opts.Selected = strings.Split(s, ",")
	}
	c, err := raster.RenderGraph(g, h.ws.Catalog(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if err := c.EncodePNG(w); err != nil {
		h.logger.Warn("png encode failed", "graph", g.ID, "err", err)
	}
}

// GET /v1/catalog: the active command catalog.
func (h *Handler) getCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ws.Catalog().File())
}

// POST /v1/reload: re-read the catalog and every graph document from disk.
func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	if h.catalog != nil {
		if _, err := h.catalog.Reload(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	if err := h.ws.Reload(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, workspace.ErrGestureInFlight) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	counts := make(map[document.Collection]int, len(document.Collections))
	for _, c := range document.Collections {
		counts[c] = len(h.ws.Graphs(c))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded":        true,
		"catalog_version": h.ws.Catalog().Version(),
		"graphs":          counts,
	})
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) collection(w http.ResponseWriter, r *http.Request) (document.Collection, bool) {
	c, err := document.ParseCollection(r.PathValue("collection"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return c, true
}

func (h *Handler) graph(w http.ResponseWriter, r *http.Request) (*graph.Graph, bool) {
	c, ok := h.collection(w, r)
	if !ok {
		return nil, false
	}
	g, err := h.ws.Graph(c, r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return g, true
}
