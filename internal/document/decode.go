package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
	"github.com/gyaneshwarpardhi/advlogic/internal/logging"
	"github.com/gyaneshwarpardhi/advlogic/internal/metrics"
)

// Skip describes a record left out of the loaded result.
type Skip struct {
	Graph  string `json:"graph"`
	Index  int    `json:"index"`
	NodeID string `json:"node_id,omitempty"`
	Reason string `json:"reason"`
}

// Report summarises what a load had to work around. A clean modern document
// yields a report with only Graphs and Nodes set.
type Report struct {
	Graphs   int             `json:"graphs"`
	Nodes    int             `json:"nodes"`
	Migrated []string        `json:"migrated,omitempty"` // nodes that carried legacy parameters
	Generic  []string        `json:"generic,omitempty"`  // nodes of unrecognised type
	Skipped  []Skip          `json:"skipped,omitempty"`
	Repaired []graph.Problem `json:"repaired,omitempty"`
	// Missing is set when the file did not exist; the result is then empty.
	Missing bool `json:"missing,omitempty"`
}

// Clean reports whether nothing was skipped or repaired.
func (r *Report) Clean() bool {
	return len(r.Skipped) == 0 && len(r.Repaired) == 0
}

// Decoder turns persisted documents into graphs.
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder returns a Decoder that logs skipped records to logger.
func NewDecoder(logger *slog.Logger) *Decoder {
	return &Decoder{logger: logging.OrNop(logger)}
}

// Unmarshal decodes data with a no-op logger.
func Unmarshal(data []byte) ([]*graph.Graph, *Report, error) {
	return NewDecoder(nil).Decode(bytes.NewReader(data))
}

// Decode reads a whole document. Invalid JSON, or a top level that is not an
// array, fails with ErrMalformedDocument. Individual bad graph or node records
// are skipped and listed in the report.
func (d *Decoder) Decode(r io.Reader) ([]*graph.Graph, *Report, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		metrics.DocumentsLoaded.WithLabelValues("malformed").Inc()
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	report := &Report{}
	graphs := make([]*graph.Graph, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, msg := range raw {
		gid, g, err := d.decodeGraph(msg, seen, report)
		if err != nil {
			report.Skipped = append(report.Skipped, Skip{Graph: gid, Index: i, Reason: err.Error()})
			d.logger.Warn("skipping graph record", "index", i, "graph", gid, "error", err)
			continue
		}
		seen[gid] = true
		graphs = append(graphs, g)
	}
	report.Graphs = len(graphs)
	metrics.DocumentsLoaded.WithLabelValues("ok").Inc()
	return graphs, report, nil
}

// decodeGraph decodes one graph record. A record whose id is already in seen
// is rejected with ErrDuplicateGraph before any of its nodes are counted.
func (d *Decoder) decodeGraph(msg json.RawMessage, seen map[string]bool, report *Report) (string, *graph.Graph, error) {
	var rec struct {
		ID    json.RawMessage   `json:"id"`
		Name  json.RawMessage   `json:"name"`
		Nodes []json.RawMessage `json:"nodes"`
	}
	if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		return "", nil, fmt.Errorf("graph record: null")
	}
	if err := json.Unmarshal(msg, &rec); err != nil {
		return "", nil, fmt.Errorf("graph record: %w", err)
	}
	id, name := rawString(rec.ID), rawString(rec.Name)
	if seen[id] {
		return id, nil, fmt.Errorf("graph %q: %w", id, ErrDuplicateGraph)
	}
	skip := func(i int, nodeID string, err error) {
		report.Skipped = append(report.Skipped, Skip{Graph: id, Index: i, NodeID: nodeID, Reason: err.Error()})
		metrics.NodesDecoded.WithLabelValues("skipped").Inc()
		d.logger.Warn("skipping node record", "graph", id, "index", i, "node", nodeID, "error", err)
	}

	// Lists may name nodes that appear later in the record, so adjacency is
	// restored once every node is known.
	var (
		nodes    []*graph.Node
		indices  []int
		migrated = map[*graph.Node]bool{}
	)
	for i, nodeMsg := range rec.Nodes {
		n, legacy, err := decodeNode(nodeMsg)
		if err != nil {
			nodeID := ""
			if n != nil {
				nodeID = n.ID
			}
			skip(i, nodeID, err)
			continue
		}
		nodes = append(nodes, n)
		indices = append(indices, i)
		if legacy {
			migrated[n] = true
		}
	}

	g, rejected, fixed := graph.Restore(id, name, nodes)
	for _, r := range rejected {
		skip(indices[r.Index], nodes[r.Index].ID, r.Err)
	}
	for _, n := range g.Nodes() {
		report.Nodes++
		switch {
		case n.Kind() == graph.KindGeneric:
			report.Generic = append(report.Generic, n.ID)
			metrics.NodesDecoded.WithLabelValues("generic").Inc()
		case migrated[n]:
			report.Migrated = append(report.Migrated, n.ID)
			metrics.NodesDecoded.WithLabelValues("migrated").Inc()
		default:
			metrics.NodesDecoded.WithLabelValues("ok").Inc()
		}
	}
	if len(fixed) > 0 {
		report.Repaired = append(report.Repaired, fixed...)
		d.logger.Warn("repaired graph connectivity", "graph", id, "problems", len(fixed))
	}
	return id, g, nil
}

// rawString accepts a JSON string or number; anything else is "".
func rawString(msg json.RawMessage) string {
	var v any
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	}
	return ""
}

// decodeNode builds one node from its record. migrated reports whether legacy
// parameters were applied.
func decodeNode(msg json.RawMessage) (n *graph.Node, migrated bool, err error) {
	var rec map[string]any
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, false, fmt.Errorf("node record: %w", err)
	}
	if rec == nil {
		return nil, false, fmt.Errorf("node record: null")
	}

	var base struct {
		ID       string   `mapstructure:"id"`
		NodeType string   `mapstructure:"node_type"`
		X        int      `mapstructure:"x"`
		Y        int      `mapstructure:"y"`
		Width    int      `mapstructure:"width"`
		Height   int      `mapstructure:"height"`
		Inputs   []string `mapstructure:"inputs"`
		Outputs  []string `mapstructure:"outputs"`
	}
	if err := graph.DecodeWeak(pick(rec, baseKeys), &base); err != nil {
		return nil, false, fmt.Errorf("node record: %w", err)
	}
	if base.ID == "" {
		return nil, false, fmt.Errorf("node record: missing id")
	}

	migrated = migrateLegacy(rec)
	for _, k := range baseKeys {
		delete(rec, k)
	}

	n = graph.NewNode(graph.Kind(base.NodeType), base.ID, base.X, base.Y)
	if base.Width > 0 {
		n.Width = base.Width
	}
	if base.Height > 0 {
		n.Height = base.Height
	}
	n.Inputs = nonNil(base.Inputs)
	n.Outputs = nonNil(base.Outputs)

	switch p := n.Payload.(type) {
	case *graph.Dialogue, *graph.Condition, *graph.Action:
		if err := graph.DecodeWeak(rec, p); err != nil {
			return n, false, fmt.Errorf("node %q (%s): %w", base.ID, base.NodeType, err)
		}
	case *graph.Generic:
		p.Extra = rec
	}
	return n, migrated, nil
}

func pick(rec map[string]any, keys []string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			out[k] = v
		}
	}
	return out
}
