package graph

import "errors"

var (
	// ErrDuplicateID is returned by AddNode when the id is already in the graph.
	ErrDuplicateID = errors.New("duplicate node id")
	// ErrNodeNotFound is returned when an operation names an id absent from the graph.
	ErrNodeNotFound = errors.New("node not found")
	// ErrSelfLoop is returned by Connect and AddNode when an edge would join a node to itself.
	ErrSelfLoop = errors.New("node cannot connect to itself")
	// ErrInvalidNode is returned by AddNode for a nil node or an empty id.
	ErrInvalidNode = errors.New("invalid node")
	// ErrUnknownField is returned when a parameter field is not part of the node's variant.
	ErrUnknownField = errors.New("unknown parameter field")
)
