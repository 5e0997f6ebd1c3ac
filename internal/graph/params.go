package graph

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/gyaneshwarpardhi/advlogic/internal/catalog"
)

// Params returns the node's kind-specific fields keyed by field name, for
// example {"condition_type": "HAS_ITEM", "item_id": "key", "amount": 1, ...}.
func Params(n *Node) (map[string]any, error) {
	switch p := n.Payload.(type) {
	case *Dialogue, *Condition, *Action:
		out := make(map[string]any)
		if err := mapstructure.Decode(p, &out); err != nil {
			return nil, fmt.Errorf("node %q params: %w", n.ID, err)
		}
		return out, nil
	case *Generic:
		return maps.Clone(p.Extra), nil
	case nil:
		return map[string]any{}, nil
	default:
		panic(fmt.Sprintf("graph: unhandled payload %T", p))
	}
}

// SetParam writes one field, converting the value to the field's type the way
// a form would ("5" -> 5, "true" -> true). Other fields are left untouched,
// including fields the current command no longer uses.
func SetParam(n *Node, field string, value any) error {
	switch p := n.Payload.(type) {
	case *Dialogue, *Condition, *Action:
		current, err := Params(n)
		if err != nil {
			return err
		}
		if _, ok := current[field]; !ok {
			return fmt.Errorf("node %q (%s): %w %q", n.ID, n.Kind(), ErrUnknownField, field)
		}
		return DecodeWeak(map[string]any{field: value}, p)
	case *Generic:
		if _, ok := p.Extra[field]; !ok {
			return fmt.Errorf("node %q (%s): %w %q", n.ID, p.TypeName, ErrUnknownField, field)
		}
		p.Extra[field] = value
		return nil
	default:
		return fmt.Errorf("node %q: %w %q", n.ID, ErrUnknownField, field)
	}
}

// DecodeWeak decodes input into the struct pointed to by out, accepting
// loosely typed values. Fields absent from input keep their current values.
func DecodeWeak(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(roundToInt),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// roundToInt lets integer fields take fractional numbers, which some editors
// write for geometry: 312.5 becomes 313, 40.25 becomes 40.
func roundToInt(_, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return data, nil
	}
	var f float64
	switch v := data.(type) {
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return data, nil
		}
		parsed, err := v.Float64()
		if err != nil {
			return data, nil
		}
		f = parsed
	case float64:
		f = v
	case float32:
		f = float64(v)
	case string:
		s := strings.TrimSpace(v)
		if _, err := strconv.ParseInt(s, 0, 64); err == nil {
			return data, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return data, nil
		}
		f = parsed
	default:
		return data, nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return nil, fmt.Errorf("%v is out of integer range", data)
	}
	return int64(math.Round(f)), nil
}

// Command returns the catalog category and command a condition or action
// node refers to; ok is false for other kinds.
func Command(n *Node) (cat catalog.Category, name string, ok bool) {
	switch p := n.Payload.(type) {
	case *Condition:
		return catalog.Conditions, p.ConditionType, true
	case *Action:
		return catalog.Actions, p.ActionCommand, true
	default:
		return "", "", false
	}
}

// FormField is one row of a property form.
type FormField struct {
	Param  string            `json:"param"`
	Field  string            `json:"field"`
	Type   catalog.ParamType `json:"type"`
	Values []string          `json:"values,omitempty"`
	Value  any               `json:"value"`
}

// ActiveParams returns the form rows a property editor shows for n. For
// conditions and actions the rows come from the command's catalog entry; an
// unknown command yields catalog.ErrCommandNotFound, meaning "show no rows".
func ActiveParams(n *Node, cat *catalog.Catalog) ([]FormField, error) {
	values, err := Params(n)
	if err != nil {
		return nil, err
	}
	switch n.Payload.(type) {
	case *Dialogue:
		return []FormField{
			{Param: "Character ID", Field: "character_id", Type: catalog.TypeString, Value: values["character_id"]},
			{Param: "Dialogue Text", Field: "dialogue_text", Type: catalog.TypeString, Value: values["dialogue_text"]},
		}, nil
	case *Condition, *Action:
		category, command, _ := Command(n)
		def, err := cat.Lookup(category, command)
		if err != nil {
			return nil, err
		}
		rows := make([]FormField, 0, len(def.Params))
		for _, p := range def.Params {
			rows = append(rows, FormField{
				Param:  p.Name,
				Field:  p.Field(),
				Type:   p.Type,
				Values: p.Values,
				Value:  values[p.Field()],
			})
		}
		return rows, nil
	default:
		return nil, nil
	}
}

// ValidateParams checks a condition or action node against its command
// definition. The result is advisory.
func ValidateParams(n *Node, cat *catalog.Catalog) ([]catalog.Issue, error) {
	category, command, ok := Command(n)
	if !ok {
		return nil, nil
	}
	def, err := cat.Lookup(category, command)
	if err != nil {
		return nil, err
	}
	values, err := Params(n)
	if err != nil {
		return nil, err
	}
	return catalog.Validate(def, values), nil
}

// Summary renders the text shown in a node's body.
func Summary(n *Node, cat *catalog.Catalog) string {
	switch p := n.Payload.(type) {
	case *Dialogue:
		return fmt.Sprintf("Char: %s\n\"%s\"", p.CharacterID, p.DialogueText)
	case *Condition:
		head := "IF " + p.ConditionType
		switch p.ConditionType {
		case "VARIABLE_EQUALS":
			return fmt.Sprintf("%s\n  %s == %s", head, p.VarName, p.Value)
		case "HAS_ITEM":
			return fmt.Sprintf("%s\n  Player has %d of %s", head, p.Amount, p.ItemID)
		case "ATTRIBUTE_CHECK":
			return fmt.Sprintf("%s\n  %s %s %s", head, p.AttributeID, p.Comparison, p.Value)
		}
		return head + paramLine(n, cat)
	case *Action:
		return "DO " + p.ActionCommand + paramLine(n, cat)
	case *Generic:
		return p.TypeName
	default:
		return ""
	}
}

func paramLine(n *Node, cat *catalog.Catalog) string {
	if cat == nil {
		return ""
	}
	rows, err := ActiveParams(n, cat)
	if err != nil || len(rows) == 0 {
		return ""
	}
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = fmt.Sprintf("%s: %v", r.Param, r.Value)
	}
	return "\n  (" + strings.Join(parts, ", ") + ")"
}
