package catalog

import (
	"fmt"
	"slices"
	"strconv"
)

// Issue is an advisory finding about one parameter value. Issues are never
// enforced: editors show them but keep the value.
type Issue struct {
	Param  string
	Field  string
	Reason string
	Value  any
}

func (i Issue) Error() string {
	if i.Value == nil {
		return fmt.Sprintf("parameter %q (%s): %s", i.Param, i.Field, i.Reason)
	}
	return fmt.Sprintf("parameter %q (%s): %s (got %v)", i.Param, i.Field, i.Reason, i.Value)
}

// Validate checks values, keyed by field name, against a definition's
// parameter types. Missing fields are reported; extra fields are ignored.
func Validate(def Definition, values map[string]any) []Issue {
	var issues []Issue
	for _, p := range def.Params {
		field := p.Field()
		v, ok := values[field]
		if !ok {
			issues = append(issues, Issue{Param: p.Name, Field: field, Reason: "missing"})
			continue
		}
		if reason := checkType(p, v); reason != "" {
			issues = append(issues, Issue{Param: p.Name, Field: field, Reason: reason, Value: v})
		}
	}
	return issues
}

func checkType(p Param, v any) string {
	switch p.Type {
	case TypeString:
		switch v.(type) {
		case string, int, int64, float64, bool:
			// Stored as text on the node; anything printable is acceptable.
			return ""
		}
		return fmt.Sprintf("expected string, got %T", v)
	case TypeInt:
		switch n := v.(type) {
		case int, int8, int16, int32, int64:
			return ""
		case float64:
			if n == float64(int64(n)) {
				return ""
			}
			return "expected int, got fractional number"
		case string:
			// Text fields shared between commands hold numbers as text.
			if _, err := strconv.Atoi(n); err == nil {
				return ""
			}
			return "expected int"
		}
		return fmt.Sprintf("expected int, got %T", v)
	case TypeBool:
		if _, ok := v.(bool); ok {
			return ""
		}
		return fmt.Sprintf("expected bool, got %T", v)
	case TypeChoice:
		s, ok := v.(string)
		if !ok {
			return fmt.Sprintf("expected one of %v, got %T", p.Values, v)
		}
		if s == "" || slices.Contains(p.Values, s) {
			return ""
		}
		return fmt.Sprintf("not one of %v", p.Values)
	}
	return fmt.Sprintf("unsupported type %q", p.Type)
}
