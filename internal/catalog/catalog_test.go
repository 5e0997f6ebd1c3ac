package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gyaneshwarpardhi/advlogic/internal/catalog"
)

func TestDefaultCatalog(t *testing.T) {
	c := catalog.Default()
	actions, err := c.Names(catalog.Actions)
	require.NoError(t, err)
	conditions, err := c.Names(catalog.Conditions)
	require.NoError(t, err)
	assert.Equal(t, "SET_VARIABLE", actions[0])
	assert.Contains(t, actions, "FORCE_SAVE")
	assert.Contains(t, conditions, "TIME_OF_DAY_IS")

	def, err := c.Lookup(catalog.Conditions, "TIME_OF_DAY_IS")
	require.NoError(t, err)
	require.Len(t, def.Params, 1)
	assert.Equal(t, catalog.TypeChoice, def.Params[0].Type)
	assert.Equal(t, []string{"Night", "Morning", "Day", "Evening"}, def.Params[0].Values)
	assert.Equal(t, catalog.Conditions, def.Category)
}

func TestLookupErrors(t *testing.T) {
	c := catalog.Default()
	_, err := c.Lookup(catalog.Actions, "DANCE")
	assert.ErrorIs(t, err, catalog.ErrCommandNotFound)

	// Names are per category.
	_, err = c.Lookup(catalog.Actions, "HAS_ITEM")
	assert.ErrorIs(t, err, catalog.ErrCommandNotFound)

	_, err = c.Lookup("verbs", "LOOK")
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
	_, err = c.Names("verbs")
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
}

func TestParseNormalizesTypes(t *testing.T) {
	c, err := catalog.Parse([]byte(`
version: v2
actions:
  - name: TELEPORT
    params:
      - {name: SceneID, type: str}
      - {name: Steps, type: integer}
      - {name: Fade, type: boolean}
      - {name: Payload, type: any}
      - {name: Speed, type: enum, values: [slow, fast]}
conditions: []
`))
	require.NoError(t, err)
	assert.Equal(t, "v2", c.Version())
	def, err := c.Lookup(catalog.Actions, "TELEPORT")
	require.NoError(t, err)
	var types []catalog.ParamType
	for _, p := range def.Params {
		types = append(types, p.Type)
	}
	assert.Equal(t, []catalog.ParamType{
		catalog.TypeString, catalog.TypeInt, catalog.TypeBool, catalog.TypeString, catalog.TypeChoice,
	}, types)
}

func TestParseRejectsInvalidTables(t *testing.T) {
	for name, doc := range map[string]string{
		"duplicate command": "actions:\n  - name: A\n  - name: A\n",
		"missing name":      "conditions:\n  - params: []\n",
		"choice no values":  "actions:\n  - name: A\n    params:\n      - {name: Mode, type: choice}\n",
		"unknown type":      "actions:\n  - name: A\n    params:\n      - {name: Mode, type: float}\n",
		"duplicate param":   "actions:\n  - name: A\n    params:\n      - {name: X}\n      - {name: X}\n",
		"bad yaml":          "actions: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestFileRoundTripKeepsOrder(t *testing.T) {
	orig := catalog.Default()
	data, err := yaml.Marshal(orig.File())
	require.NoError(t, err)

	again, err := catalog.Parse(data)
	require.NoError(t, err)
	for _, cat := range []catalog.Category{catalog.Actions, catalog.Conditions} {
		want, _ := orig.Names(cat)
		got, _ := again.Names(cat)
		assert.Equal(t, want, got)
		assert.Equal(t, orig.Definitions(cat), again.Definitions(cat))
	}
}

func TestFieldName(t *testing.T) {
	for param, want := range map[string]string{
		"VarName":        "var_name",
		"ItemID":         "item_id",
		"DialogueNodeID": "dialogue_node_id",
		"SceneID":        "scene_id",
		"Amount":         "amount",
		"TimeState":      "time_state",
		"X":              "pos_x",
		"Y":              "pos_y",
	} {
		assert.Equal(t, want, catalog.FieldName(param), param)
	}
}

func TestValidate(t *testing.T) {
	def, err := catalog.Default().Lookup(catalog.Conditions, "ATTRIBUTE_CHECK")
	require.NoError(t, err)

	issues := catalog.Validate(def, map[string]any{
		"attribute_id": "strength",
		"value":        "12",
		"comparison":   ">=",
	})
	assert.Empty(t, issues)

	issues = catalog.Validate(def, map[string]any{
		"attribute_id": "strength",
		"value":        "lots",
		"comparison":   "~=",
	})
	require.Len(t, issues, 2)
	assert.Equal(t, "value", issues[0].Field)
	assert.Equal(t, "comparison", issues[1].Field)
	assert.Contains(t, issues[1].Error(), "~=")

	issues = catalog.Validate(def, map[string]any{})
	assert.Len(t, issues, 3)
}
