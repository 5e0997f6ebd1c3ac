package document

import "github.com/gyaneshwarpardhi/advlogic/internal/catalog"

// Keys older documents carried that inputs/outputs and typed fields replaced.
var legacyKeys = []string{"parameters", "parent_id", "children_ids", "action_node", "body_text"}

// migrateLegacy moves an old-style "parameters" map ({"VarName": "v", ...})
// into typed fields and strips the superseded bookkeeping keys. A field that
// already has a value is never overwritten. It reports whether a parameters
// map was present.
func migrateLegacy(rec map[string]any) bool {
	params, hasParams := rec["parameters"].(map[string]any)
	for name, v := range params {
		field := catalog.FieldName(name)
		if present(rec[field]) {
			continue
		}
		rec[field] = v
	}
	for _, k := range legacyKeys {
		delete(rec, k)
	}
	return hasParams
}

func present(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case string:
		return v != ""
	default:
		return true
	}
}
