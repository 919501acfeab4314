package streaming

import (
	"context"
	"time"
)

// Graph event types published by the workspace store.
const (
	EventTabSwitched   = "tab_switched"
	EventNodeAdded     = "node_added"
	EventNodeUpdated   = "node_updated"
	EventNodeDeleted   = "node_deleted"
	EventEdgeAdded     = "edge_added"
	EventNodesChanged  = "nodes_changed"
	EventEdgesChanged  = "edges_changed"
	EventGraphReplaced = "graph_replaced"
)

// GraphEvent notifies subscribers (the canvas SSE feed) that a tab's graph
// changed and a re-render is due.
type GraphEvent struct {
	Tab       string    `json:"tab"`
	EventType string    `json:"event_type"`
	NodeID    string    `json:"node_id,omitempty"`
	EdgeID    string    `json:"edge_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventFilter narrows a subscription to a tab and/or event types.
type EventFilter struct {
	Tab        string
	EventTypes []string
}

// EventHub fans graph events out to subscribers.
type EventHub interface {
	Publish(ctx context.Context, event GraphEvent) error
	Subscribe(ctx context.Context, filter EventFilter) (<-chan GraphEvent, func(), error)
}
