package workspace

import (
	"github.com/rendis/atelier/internal/streaming"
	"github.com/rendis/atelier/pkg/schema"
)

// NodeChangeType enumerates canvas-originated node mutations.
type NodeChangeType string

const (
	NodeChangePosition NodeChangeType = "position"
	NodeChangeSelect   NodeChangeType = "select"
	NodeChangeRemove   NodeChangeType = "remove"
)

// NodeChange is one element of a canvas change batch. Position carries the
// new coordinates for a position change; Selected carries the new
// selection state for a select change.
type NodeChange struct {
	Type     NodeChangeType   `json:"type"`
	ID       string           `json:"id"`
	Position *schema.Position `json:"position,omitempty"`
	Selected *bool            `json:"selected,omitempty"`
}

// EdgeChangeType enumerates canvas-originated edge mutations.
type EdgeChangeType string

const (
	EdgeChangeSelect EdgeChangeType = "select"
	EdgeChangeRemove EdgeChangeType = "remove"
)

// EdgeChange is one element of a canvas edge change batch.
type EdgeChange struct {
	Type     EdgeChangeType `json:"type"`
	ID       string         `json:"id"`
	Selected *bool          `json:"selected,omitempty"`
}

// Connection is a proposed new edge between two node handles.
type Connection struct {
	Source       string          `json:"source"`
	Target       string          `json:"target"`
	SourceHandle string          `json:"sourceHandle,omitempty"`
	TargetHandle string          `json:"targetHandle,omitempty"`
	Type         schema.EdgeType `json:"type,omitempty"`
	Animated     bool            `json:"animated,omitempty"`
}

// ApplyNodeChanges applies a batch of canvas node changes to the active
// graph in order. Changes naming unknown ids are skipped; a remove change
// cascades edges exactly like DeleteNode.
func (s *Store) ApplyNodeChanges(changes []NodeChange) {
	if len(changes) == 0 {
		return
	}

	s.mu.Lock()
	g := s.graphs[s.activeTab]
	for _, ch := range changes {
		switch ch.Type {
		case NodeChangePosition:
			if n := g.NodeByID(ch.ID); n != nil && ch.Position != nil {
				n.Position = *ch.Position
			}
		case NodeChangeSelect:
			if n := g.NodeByID(ch.ID); n != nil && ch.Selected != nil {
				n.Selected = *ch.Selected
			}
		case NodeChangeRemove:
			removeNodeLocked(g, ch.ID)
		}
	}
	s.mu.Unlock()

	s.publish(streaming.EventNodesChanged, "", "")
}

// ApplyEdgeChanges applies a batch of canvas edge changes to the active
// graph in order.
func (s *Store) ApplyEdgeChanges(changes []EdgeChange) {
	if len(changes) == 0 {
		return
	}

	s.mu.Lock()
	g := s.graphs[s.activeTab]
	for _, ch := range changes {
		switch ch.Type {
		case EdgeChangeSelect:
			// Edges carry no selection state in the model; the canvas
			// tracks edge highlight locally. Accepted and ignored.
		case EdgeChangeRemove:
			for i := range g.Edges {
				if g.Edges[i].ID == ch.ID {
					g.Edges = append(g.Edges[:i], g.Edges[i+1:]...)
					break
				}
			}
		}
	}
	s.mu.Unlock()

	s.publish(streaming.EventEdgesChanged, "", "")
}

// removeNodeLocked deletes a node and its incident edges. Caller holds s.mu.
func removeNodeLocked(g *schema.Graph, id string) {
	idx := -1
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	g.Nodes = append(g.Nodes[:idx], g.Nodes[idx+1:]...)

	kept := g.Edges[:0]
	for _, e := range g.Edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	g.Edges = kept
}
