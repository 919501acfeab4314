package schema

import (
	"bytes"
	"encoding/json"
)

// Position is a node's canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EdgeType distinguishes plain links from step (control-flow ordering) links.
type EdgeType string

const (
	EdgeTypeDefault EdgeType = "default"
	EdgeTypeStep    EdgeType = "step"
)

// Edge is a directed link between two nodes. Endpoints are not validated
// against existing node ids at this layer: dangling edges are a tolerated
// state, flagged only as warnings by the semantic pass.
type Edge struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	SourceHandle string   `json:"sourceHandle,omitempty"`
	TargetHandle string   `json:"targetHandle,omitempty"`
	Type         EdgeType `json:"type,omitempty"`
	Animated     bool     `json:"animated,omitempty"`
}

// Node is one positioned, typed unit in the graph. Type always mirrors
// Data's kind discriminator.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeKind `json:"type"`
	Position Position `json:"position"`
	Selected bool     `json:"selected,omitempty"`
	Data     NodeData `json:"data"`
}

// nodeEnvelope mirrors Node with data left raw for two-phase decode.
type nodeEnvelope struct {
	ID       string          `json:"id"`
	Type     NodeKind        `json:"type"`
	Position Position        `json:"position"`
	Selected bool            `json:"selected,omitempty"`
	Data     json.RawMessage `json:"data"`
}

// UnmarshalJSON decodes the node envelope, then dispatches data on the
// kind discriminator. The node-level type and the data-level kind must
// agree; a mismatch fails closed.
func (n *Node) UnmarshalJSON(raw []byte) error {
	var env nodeEnvelope
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&env); err != nil {
		return err
	}
	if len(env.Data) == 0 {
		return NewErrorf(ErrCodeValidation, "node %q has no data", env.ID)
	}

	kind, err := probeKind(env.Data)
	if err != nil {
		return err
	}
	if env.Type != "" && env.Type != kind {
		return NewErrorf(ErrCodeValidation,
			"node %q type %q does not match data kind %q", env.ID, env.Type, kind)
	}

	data, err := DecodeNodeData(kind, env.Data)
	if err != nil {
		return err
	}

	n.ID = env.ID
	n.Type = kind
	n.Position = env.Position
	n.Selected = env.Selected
	n.Data = data
	return nil
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() Node {
	out := *n
	if n.Data != nil {
		out.Data = n.Data.CloneData()
	}
	return out
}

// Graph is the full node-and-edge document for one workspace tab.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Clone returns a deep copy of the graph. Mutating the copy never affects
// the original; presets rely on this to stay reusable across loads.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i := range g.Nodes {
		out.Nodes[i] = g.Nodes[i].Clone()
	}
	copy(out.Edges, g.Edges)
	return out
}

// NodeByID returns a pointer to the node with the given id, or nil.
func (g *Graph) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// EmptyGraph returns a graph with no nodes or edges. Slices are non-nil so
// the document serializes as [] rather than null.
func EmptyGraph() *Graph {
	return &Graph{Nodes: []Node{}, Edges: []Edge{}}
}
