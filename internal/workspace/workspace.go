package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rendis/atelier/internal/streaming"
	"github.com/rendis/atelier/pkg/schema"
)

// Tab is one named graph slot. The set is fixed: switching tabs preserves
// each tab's graph independently, and every mutation targets exactly the
// active tab.
type Tab string

const (
	TabAPI            Tab = "api"
	TabProcess        Tab = "process"
	TabDatabase       Tab = "database"
	TabInfrastructure Tab = "infrastructure"
	TabSchema         Tab = "schema"
)

// Tabs lists every valid workspace tab.
var Tabs = []Tab{TabAPI, TabProcess, TabDatabase, TabInfrastructure, TabSchema}

// ValidTab reports whether t is a member of the fixed tab set.
func ValidTab(t Tab) bool {
	for _, tab := range Tabs {
		if tab == t {
			return true
		}
	}
	return false
}

// Store is the single source of truth for all node-graph state, keyed per
// workspace tab. Every operation is a total function over the current
// state: invalid target ids and kind-mismatched mutations are silent
// no-ops, and no operation ever partially applies.
//
// Safe for concurrent use. The original design assumed an event loop
// serialized mutations; the HTTP consumers here do not, so a mutex guards
// the whole state instead.
type Store struct {
	mu        sync.RWMutex
	activeTab Tab
	graphs    map[Tab]*schema.Graph

	// lastPos is where the most recent AddNode landed; the next node
	// without an explicit position is offset from it.
	lastPos schema.Position

	idSeq uint64
	now   func() time.Time

	hub streaming.EventHub
}

// NewStore creates a workspace store with the given initial active tab.
// The hub may be nil; events are then discarded.
func NewStore(initial Tab, hub streaming.EventHub) *Store {
	if !ValidTab(initial) {
		initial = TabAPI
	}
	s := &Store{
		activeTab: initial,
		graphs:    map[Tab]*schema.Graph{initial: schema.EmptyGraph()},
		lastPos:   schema.Position{X: 100, Y: 50},
		now:       time.Now,
		hub:       hub,
	}
	return s
}

// ActiveTab returns the currently active tab.
func (s *Store) ActiveTab() Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeTab
}

// Graph returns a deep copy of the active tab's graph. Callers can mutate
// the copy freely without affecting store state.
func (s *Store) Graph() *schema.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graphs[s.activeTab].Clone()
}

// GraphFor returns a deep copy of the given tab's graph, or an empty graph
// for a valid tab that has never been visited. Invalid tabs yield an empty
// graph as well: reads stay total like writes.
func (s *Store) GraphFor(tab Tab) *schema.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, ok := s.graphs[tab]; ok {
		return g.Clone()
	}
	return schema.EmptyGraph()
}

// SelectedNode returns a copy of the selected node in the active graph.
// The store does not enforce single selection; if several nodes are
// selected, the first wins.
func (s *Store) SelectedNode() (schema.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.graphs[s.activeTab].Nodes {
		if s.graphs[s.activeTab].Nodes[i].Selected {
			return s.graphs[s.activeTab].Nodes[i].Clone(), true
		}
	}
	return schema.Node{}, false
}

// SetActiveTab switches the projection to tab, initializing it to the
// empty graph preset on first visit. No-op if already active or if tab is
// not in the fixed set. Other tabs' graphs are untouched.
func (s *Store) SetActiveTab(tab Tab) {
	if !ValidTab(tab) {
		return
	}

	s.mu.Lock()
	if tab == s.activeTab {
		s.mu.Unlock()
		return
	}
	if _, visited := s.graphs[tab]; !visited {
		s.graphs[tab] = schema.EmptyGraph()
	}
	s.activeTab = tab
	s.mu.Unlock()

	s.publish(streaming.EventTabSwitched, "", "")
}

// SetGraph wholesale-replaces the active tab's graph from an externally
// supplied value (e.g. loaded from persistence). The graph is deep-copied
// so later caller mutations cannot leak into the store.
func (s *Store) SetGraph(g *schema.Graph) {
	if g == nil {
		return
	}

	s.mu.Lock()
	s.graphs[s.activeTab] = g.Clone()
	s.mu.Unlock()

	s.publish(streaming.EventGraphReplaced, "", "")
}

// LoadPreset replaces the active tab's graph with a deep copy of a named
// built-in preset. Unknown preset names are a no-op; presets stay
// reusable because every load hands out a fresh copy.
func (s *Store) LoadPreset(name string) {
	preset, ok := presets[name]
	if !ok {
		return
	}

	s.mu.Lock()
	s.graphs[s.activeTab] = preset().Clone()
	s.mu.Unlock()

	s.publish(streaming.EventGraphReplaced, "", "")
}

// AddNode constructs a node from the named template (per kind/sub-kind,
// e.g. "api_get" yields a GET api_binding preset), assigns a fresh unique
// id, selects it exclusively, and places it at pos or offset (+50,+150)
// from the last-added node. Returns the new node id, or "" for an unknown
// template.
func (s *Store) AddNode(template string, pos *schema.Position) string {
	tpl, ok := nodeTemplates[template]
	if !ok {
		return ""
	}

	s.mu.Lock()

	var p schema.Position
	if pos != nil {
		p = *pos
	} else {
		p = schema.Position{X: s.lastPos.X + 50, Y: s.lastPos.Y + 150}
	}
	s.lastPos = p

	data := tpl()
	regenerateQueryCode(data)

	id := s.nextNodeID(data.Kind())
	g := s.graphs[s.activeTab]
	for i := range g.Nodes {
		g.Nodes[i].Selected = false
	}
	g.Nodes = append(g.Nodes, schema.Node{
		ID:       id,
		Type:     data.Kind(),
		Position: p,
		Selected: true,
		Data:     data,
	})

	s.mu.Unlock()

	s.publish(streaming.EventNodeAdded, id, "")
	return id
}

// UpdateNodeData replaces the data of the node with the given id. The
// caller supplies a complete value of the node's own variant; a kind
// mismatch or unknown id is a silent no-op, so the stored graph can never
// hold data that disagrees with its node's type tag.
func (s *Store) UpdateNodeData(id string, data schema.NodeData) {
	if data == nil {
		return
	}

	s.mu.Lock()
	n := s.graphs[s.activeTab].NodeByID(id)
	if n == nil || n.Data.Kind() != data.Kind() {
		s.mu.Unlock()
		return
	}
	fresh := data.CloneData()
	regenerateQueryCode(fresh)
	n.Data = fresh
	s.mu.Unlock()

	s.publish(streaming.EventNodeUpdated, id, "")
}

// DeleteNode removes the node and, atomically in the same operation,
// every edge whose source or target equals id. Unknown ids are a no-op.
func (s *Store) DeleteNode(id string) {
	s.mu.Lock()
	g := s.graphs[s.activeTab]

	idx := -1
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
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
	s.mu.Unlock()

	s.publish(streaming.EventNodeDeleted, id, "")
}

// Connect appends a new edge for a proposed source/target pair. Endpoint
// kinds are deliberately not validated: any node may connect to any node,
// and dangling endpoints are tolerated (the semantic validator warns).
func (s *Store) Connect(conn Connection) string {
	if conn.Source == "" || conn.Target == "" {
		return ""
	}

	edgeType := conn.Type
	if edgeType == "" {
		edgeType = schema.EdgeTypeDefault
	}

	s.mu.Lock()
	id := s.nextEdgeID()
	g := s.graphs[s.activeTab]
	g.Edges = append(g.Edges, schema.Edge{
		ID:           id,
		Source:       conn.Source,
		Target:       conn.Target,
		SourceHandle: conn.SourceHandle,
		TargetHandle: conn.TargetHandle,
		Type:         edgeType,
		Animated:     conn.Animated,
	})
	s.mu.Unlock()

	s.publish(streaming.EventEdgeAdded, "", id)
	return id
}

// nextNodeID generates a node id from a timestamp base plus a counter
// suffix; rapid successive calls cannot collide. Caller holds s.mu.
func (s *Store) nextNodeID(kind schema.NodeKind) string {
	s.idSeq++
	return fmt.Sprintf("%s_%d_%d", kind, s.now().UnixMilli(), s.idSeq)
}

// nextEdgeID generates an edge id. Caller holds s.mu.
func (s *Store) nextEdgeID() string {
	s.idSeq++
	return fmt.Sprintf("edge_%d_%d", s.now().UnixMilli(), s.idSeq)
}

// regenerateQueryCode refreshes the derived GeneratedCode of every query
// on a database variant. Other variants pass through untouched.
func regenerateQueryCode(data schema.NodeData) {
	db, ok := data.(*schema.DatabaseData)
	if !ok {
		return
	}
	for i := range db.Queries {
		db.Queries[i].GeneratedCode = schema.GenerateQueryCode(db.Queries[i])
	}
}

// publish emits a graph event for the active tab. Nil hub discards.
func (s *Store) publish(eventType, nodeID, edgeID string) {
	if s.hub == nil {
		return
	}
	s.mu.RLock()
	tab := s.activeTab
	s.mu.RUnlock()
	_ = s.hub.Publish(context.Background(), streaming.GraphEvent{
		Tab:       string(tab),
		EventType: eventType,
		NodeID:    nodeID,
		EdgeID:    edgeID,
		Timestamp: s.now().UTC(),
	})
}
