// Package catalog holds the table of condition and action commands a logic
// node can reference, together with the parameters each command takes.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category groups commands by the node kind that uses them.
type Category string

const (
	Conditions Category = "conditions"
	Actions    Category = "actions"
)

// ParamType is the value type of a command parameter.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeInt    ParamType = "int"
	TypeBool   ParamType = "bool"
	TypeChoice ParamType = "choice"
)

var (
	// ErrCommandNotFound is returned when a command name is not in the catalog.
	ErrCommandNotFound = errors.New("command not found")
	// ErrUnknownCategory is returned for a category other than conditions/actions.
	ErrUnknownCategory = errors.New("unknown command category")
)

// Param is one named parameter of a command. Name is the display name
// (PascalCase) persisted in legacy documents; Field is derived from it.
type Param struct {
	Name   string    `yaml:"name" json:"name"`
	Type   ParamType `yaml:"type" json:"type"`
	Values []string  `yaml:"values,omitempty" json:"values,omitempty"`
}

// Field returns the node field that stores this parameter.
func (p Param) Field() string { return FieldName(p.Name) }

// Definition describes one command.
type Definition struct {
	Name     string   `yaml:"name" json:"name"`
	Category Category `yaml:"-" json:"category"`
	Params   []Param  `yaml:"params" json:"params"`
}

// Param returns the parameter with the given display name.
func (d Definition) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// File is the on-disk YAML layout of a catalog.
type File struct {
	Version    string       `yaml:"version" json:"version"`
	Actions    []Definition `yaml:"actions" json:"actions"`
	Conditions []Definition `yaml:"conditions" json:"conditions"`
}

// Catalog is an immutable, ordered command table. It is safe for concurrent reads.
type Catalog struct {
	version string
	defs    map[Category][]Definition
	index   map[Category]map[string]int
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return FromFile(f)
}

// FromFile builds a Catalog from an already decoded File.
func FromFile(f File) (*Catalog, error) {
	c := &Catalog{
		version: f.Version,
		defs:    make(map[Category][]Definition, 2),
		index:   make(map[Category]map[string]int, 2),
	}
	var errs []string
	for _, group := range []struct {
		cat  Category
		defs []Definition
	}{
		{Conditions, f.Conditions},
		{Actions, f.Actions},
	} {
		idx := make(map[string]int, len(group.defs))
		out := make([]Definition, 0, len(group.defs))
		for i, d := range group.defs {
			if d.Name == "" {
				errs = append(errs, fmt.Sprintf("%s[%d]: name is required", group.cat, i))
				continue
			}
			if _, dup := idx[d.Name]; dup {
				errs = append(errs, fmt.Sprintf("%s: duplicate command %q", group.cat, d.Name))
				continue
			}
			d.Category = group.cat
			params, perrs := normalizeParams(d)
			errs = append(errs, perrs...)
			d.Params = params
			idx[d.Name] = len(out)
			out = append(out, d)
		}
		c.defs[group.cat] = out
		c.index[group.cat] = idx
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("catalog validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return c, nil
}

func normalizeParams(d Definition) ([]Param, []string) {
	var errs []string
	seen := make(map[string]struct{}, len(d.Params))
	out := make([]Param, 0, len(d.Params))
	for i, p := range d.Params {
		loc := fmt.Sprintf("%s %s.params[%d]", d.Category, d.Name, i)
		if p.Name == "" {
			errs = append(errs, loc+": name is required")
			continue
		}
		if _, dup := seen[p.Name]; dup {
			errs = append(errs, fmt.Sprintf("%s: duplicate parameter %q", loc, p.Name))
			continue
		}
		seen[p.Name] = struct{}{}
		switch strings.ToLower(string(p.Type)) {
		case "", "string", "str", "any":
			p.Type = TypeString
		case "int", "integer":
			p.Type = TypeInt
		case "bool", "boolean":
			p.Type = TypeBool
		case "choice", "enum":
			p.Type = TypeChoice
			if len(p.Values) == 0 {
				errs = append(errs, fmt.Sprintf("%s: choice parameter %q has no values", loc, p.Name))
			}
		default:
			errs = append(errs, fmt.Sprintf("%s: unsupported type %q", loc, p.Type))
			continue
		}
		if p.Type != TypeChoice {
			p.Values = nil
		}
		out = append(out, p)
	}
	return out, errs
}

// Version returns the catalog's declared version string.
func (c *Catalog) Version() string { return c.version }

// Lookup returns the definition of a command. A missing command is reported
// as ErrCommandNotFound so callers render no parameter fields for it.
func (c *Catalog) Lookup(cat Category, name string) (Definition, error) {
	idx, ok := c.index[cat]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	i, ok := idx[name]
	if !ok {
		return Definition{}, fmt.Errorf("%s %q: %w", cat, name, ErrCommandNotFound)
	}
	return c.defs[cat][i], nil
}

// Names lists command names of a category in definition order.
func (c *Catalog) Names(cat Category) ([]string, error) {
	defs, ok := c.defs[cat]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Name
	}
	return out, nil
}

// Definitions returns a copy of all definitions of a category.
func (c *Catalog) Definitions(cat Category) []Definition {
	defs := c.defs[cat]
	out := make([]Definition, len(defs))
	copy(out, defs)
	return out
}

// File returns the catalog in its serialisable layout.
func (c *Catalog) File() File {
	return File{
		Version:    c.version,
		Actions:    c.Definitions(Actions),
		Conditions: c.Definitions(Conditions),
	}
}
