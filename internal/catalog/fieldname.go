package catalog

import (
	"regexp"
	"strings"
)

// Parameter names that would land on node geometry get their own fields.
var fieldOverrides = map[string]string{
	"X": "pos_x",
	"Y": "pos_y",
}

var (
	titleWord   = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	lowerUpper  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	repeatedSep = regexp.MustCompile(`_+`)
)

// FieldName maps a PascalCase parameter display name to the snake_case node
// field that stores it: "VarName" -> "var_name", "ItemID" -> "item_id",
// "DialogueNodeID" -> "dialogue_node_id".
func FieldName(param string) string {
	if f, ok := fieldOverrides[param]; ok {
		return f
	}
	s := titleWord.ReplaceAllString(param, "${1}_${2}")
	s = lowerUpper.ReplaceAllString(s, "${1}_${2}")
	s = repeatedSep.ReplaceAllString(s, "_")
	return strings.ToLower(s)
}
