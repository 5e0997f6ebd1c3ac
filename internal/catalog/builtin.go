package catalog

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed default.yaml
var defaultYAML []byte

var builtin = sync.OnceValue(func() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in table is invalid: %v", err))
	}
	return c
})

// Default returns the built-in command table shipped with the editor.
func Default() *Catalog { return builtin() }

// DefaultYAML returns a copy of the built-in table's YAML source, useful as a
// starting point for a project-specific catalog file.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}
