package graph

import "image"

// Kind discriminates the node variants.
type Kind string

const (
	KindDialogue  Kind = "Dialogue"
	KindCondition Kind = "Condition"
	KindAction    Kind = "Action"
	KindGeneric   Kind = "Generic"
)

// Default and minimum box sizes, in canvas units.
const (
	DefaultWidth  = 240
	DefaultHeight = 160
	MinWidth      = 150
	MinHeight     = 100
)

// Payload is the kind-specific part of a node. The set of implementations is
// closed: *Dialogue, *Condition, *Action and *Generic.
type Payload interface {
	kind() Kind
}

// Dialogue is a line spoken by a character.
type Dialogue struct {
	CharacterID  string `mapstructure:"character_id"`
	DialogueText string `mapstructure:"dialogue_text"`
}

func (*Dialogue) kind() Kind { return KindDialogue }

// Condition checks world state. ConditionType selects a catalog command whose
// parameters decide which of the remaining fields are in use.
type Condition struct {
	ConditionType string `mapstructure:"condition_type"`
	VarName       string `mapstructure:"var_name"`
	Value         string `mapstructure:"value"`
	ItemID        string `mapstructure:"item_id"`
	Amount        int    `mapstructure:"amount"`
	AttributeID   string `mapstructure:"attribute_id"`
	Comparison    string `mapstructure:"comparison"`
	HotspotID     string `mapstructure:"hotspot_id"`
	State         bool   `mapstructure:"state"`
	EntityID      string `mapstructure:"entity_id"`
	Visible       bool   `mapstructure:"visible"`
	SceneID       string `mapstructure:"scene_id"`
	Times         int    `mapstructure:"times"`
	CheckID       string `mapstructure:"check_id"`
	MeshID        string `mapstructure:"mesh_id"`
	TimeState     string `mapstructure:"time_state"`
}

func (*Condition) kind() Kind { return KindCondition }

// Action mutates world state. ActionCommand selects a catalog command.
type Action struct {
	ActionCommand  string `mapstructure:"action_command"`
	VarName        string `mapstructure:"var_name"`
	Value          string `mapstructure:"value"`
	ItemID         string `mapstructure:"item_id"`
	Amount         int    `mapstructure:"amount"`
	SceneID        string `mapstructure:"scene_id"`
	SpawnPoint     string `mapstructure:"spawn_point"`
	ShopID         string `mapstructure:"shop_id"`
	AttributeID    string `mapstructure:"attribute_id"`
	CinematicID    string `mapstructure:"cinematic_id"`
	SoundID        string `mapstructure:"sound_id"`
	HotspotID      string `mapstructure:"hotspot_id"`
	TargetID       string `mapstructure:"target_id"`
	AnimationKey   string `mapstructure:"animation_key"`
	Loop           bool   `mapstructure:"loop"`
	EntityID       string `mapstructure:"entity_id"`
	PosX           int    `mapstructure:"pos_x"`
	PosY           int    `mapstructure:"pos_y"`
	Mode           string `mapstructure:"mode"`
	MeshID         string `mapstructure:"mesh_id"`
	DialogueNodeID string `mapstructure:"dialogue_node_id"`
	QuestID        string `mapstructure:"quest_id"`
	ObjectiveID    string `mapstructure:"objective_id"`
}

func (*Action) kind() Kind { return KindAction }

// Generic holds a record of a type this version does not know. TypeName and
// Extra are written back unchanged so the record survives a save.
type Generic struct {
	TypeName string
	Extra    map[string]any
}

func (*Generic) kind() Kind { return KindGeneric }

// Node is one box on the canvas. Identity is fixed at construction; geometry
// and payload are mutable. Inputs and Outputs must only be changed through
// Graph.Connect, Graph.Disconnect and Graph.RemoveNode.
type Node struct {
	ID      string
	X, Y    int
	Width   int
	Height  int
	Inputs  []string
	Outputs []string
	Payload Payload
}

// Kind reports the node variant.
func (n *Node) Kind() Kind {
	if n.Payload == nil {
		return KindGeneric
	}
	return n.Payload.kind()
}

// TypeName is the persisted node_type discriminator.
func (n *Node) TypeName() string {
	if g, ok := n.Payload.(*Generic); ok {
		return g.TypeName
	}
	return string(n.Kind())
}

// Rect is the node's bounding box.
func (n *Node) Rect() image.Rectangle {
	return image.Rect(n.X, n.Y, n.X+n.Width, n.Y+n.Height)
}

// Pos is the node's top-left corner.
func (n *Node) Pos() image.Point { return image.Pt(n.X, n.Y) }

// Size is the node's width and height.
func (n *Node) Size() image.Point { return image.Pt(n.Width, n.Height) }

// Resize sets the box size, clamped to MinWidth x MinHeight.
func (n *Node) Resize(w, h int) {
	n.Width = max(w, MinWidth)
	n.Height = max(h, MinHeight)
}

func newNode(id string, x, y int, p Payload) *Node {
	return &Node{
		ID:      id,
		X:       x,
		Y:       y,
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Inputs:  []string{},
		Outputs: []string{},
		Payload: p,
	}
}

// NewDialogue creates a dialogue node with the default size.
func NewDialogue(id string, x, y int, characterID, text string) *Node {
	return newNode(id, x, y, &Dialogue{CharacterID: characterID, DialogueText: text})
}

// NewCondition creates a condition node checking the given command.
func NewCondition(id string, x, y int, conditionType string) *Node {
	return newNode(id, x, y, &Condition{ConditionType: conditionType})
}

// NewAction creates an action node running the given command.
func NewAction(id string, x, y int, command string) *Node {
	return newNode(id, x, y, &Action{ActionCommand: command})
}

// NewGeneric creates a node of an unrecognised type.
func NewGeneric(id string, x, y int, typeName string) *Node {
	return newNode(id, x, y, &Generic{TypeName: typeName, Extra: map[string]any{}})
}

// NewNode creates an empty node of the given kind.
func NewNode(kind Kind, id string, x, y int) *Node {
	switch kind {
	case KindDialogue:
		return NewDialogue(id, x, y, "", "")
	case KindCondition:
		return NewCondition(id, x, y, "")
	case KindAction:
		return NewAction(id, x, y, "")
	default:
		return NewGeneric(id, x, y, string(kind))
	}
}
