package graph

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// IDStyle selects how an IDGenerator forms ids.
type IDStyle string

const (
	IDSequential IDStyle = "sequential" // prefix + counter, e.g. node_7
	IDUUID       IDStyle = "uuid"
)

// IDGenerator hands out node ids that are never reused within a session,
// even after the node carrying them is deleted.
type IDGenerator struct {
	style  IDStyle
	prefix string

	mu   sync.Mutex
	high int
	used map[string]bool
}

// NewIDGenerator returns a generator. An empty prefix defaults to "node_".
func NewIDGenerator(style IDStyle, prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "node_"
	}
	if style == "" {
		style = IDSequential
	}
	return &IDGenerator{style: style, prefix: prefix, used: make(map[string]bool)}
}

// Observe records every id present in g so later ids do not collide with
// them. Call it after loading a graph.
func (gen *IDGenerator) Observe(g *Graph) {
	gen.mu.Lock()
	defer gen.mu.Unlock()
	for _, n := range g.nodes {
		gen.observe(n.ID)
	}
}

func (gen *IDGenerator) observe(id string) {
	gen.used[id] = true
	rest, ok := strings.CutPrefix(id, gen.prefix)
	if !ok {
		return
	}
	if n, err := strconv.Atoi(rest); err == nil && n > gen.high {
		gen.high = n
	}
}

// Next returns a fresh id not present in g and never returned before.
func (gen *IDGenerator) Next(g *Graph) string {
	gen.mu.Lock()
	defer gen.mu.Unlock()
	for {
		var id string
		switch gen.style {
		case IDUUID:
			id = gen.prefix + uuid.NewString()
		default:
			gen.high++
			id = fmt.Sprintf("%s%d", gen.prefix, gen.high)
		}
		if gen.used[id] || (g != nil && g.index[id] != nil) {
			continue
		}
		gen.observe(id)
		return id
	}
}
