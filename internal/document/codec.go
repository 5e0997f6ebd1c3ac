// Package document reads and writes graph collections in the persisted JSON
// form: a top-level array of {"id","name","nodes":[...]} objects whose node
// records carry a node_type discriminator and flat snake_case fields.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
)

// ErrMalformedDocument is returned when the top-level document cannot be
// parsed at all. Per-record problems never produce it.
var ErrMalformedDocument = errors.New("malformed graph document")

// ErrDuplicateGraph is the reason recorded for a graph record whose id an
// earlier record already used.
var ErrDuplicateGraph = errors.New("duplicate graph id")

// Base record keys shared by every node type.
const (
	keyID       = "id"
	keyNodeType = "node_type"
	keyX        = "x"
	keyY        = "y"
	keyWidth    = "width"
	keyHeight   = "height"
	keyInputs   = "inputs"
	keyOutputs  = "outputs"
)

var baseKeys = []string{keyID, keyNodeType, keyX, keyY, keyWidth, keyHeight, keyInputs, keyOutputs}

type graphRecord struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Nodes []map[string]any `json:"nodes"`
}

// Encode writes graphs to w as an indented JSON array.
func Encode(w io.Writer, graphs []*graph.Graph) error {
	data, err := Marshal(graphs)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Marshal returns the persisted form of graphs.
func Marshal(graphs []*graph.Graph) ([]byte, error) {
	records := make([]graphRecord, 0, len(graphs))
	for _, g := range graphs {
		rec, err := graphToRecord(g)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode graphs: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalGraph returns the persisted form of a single graph object.
func MarshalGraph(g *graph.Graph) ([]byte, error) {
	rec, err := graphToRecord(g)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(rec, "", "  ")
}

func graphToRecord(g *graph.Graph) (graphRecord, error) {
	rec := graphRecord{ID: g.ID, Name: g.Name, Nodes: make([]map[string]any, 0, g.Len())}
	for _, n := range g.Nodes() {
		m, err := nodeToRecord(n)
		if err != nil {
			return graphRecord{}, fmt.Errorf("graph %q: %w", g.ID, err)
		}
		rec.Nodes = append(rec.Nodes, m)
	}
	return rec, nil
}

func nodeToRecord(n *graph.Node) (map[string]any, error) {
	m, err := graph.Params(n)
	if err != nil {
		return nil, err
	}
	m[keyID] = n.ID
	m[keyNodeType] = n.TypeName()
	m[keyX] = n.X
	m[keyY] = n.Y
	m[keyWidth] = n.Width
	m[keyHeight] = n.Height
	m[keyInputs] = nonNil(n.Inputs)
	m[keyOutputs] = nonNil(n.Outputs)
	return m, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
