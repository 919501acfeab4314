package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/atelier/pkg/schema"
)

func sampleGraph() *schema.Graph {
	return &schema.Graph{
		Nodes: []schema.Node{
			{
				ID:   "api-1",
				Type: schema.NodeKindAPIBinding,
				Data: &schema.APIBindingData{
					NodeType: schema.NodeKindAPIBinding,
					Method:   schema.MethodGet,
					Route:    "/orders",
				},
			},
			{
				ID:   "proc-1",
				Type: schema.NodeKindProcess,
				Data: &schema.ProcessData{
					NodeType: schema.NodeKindProcess,
					ID:       "listOrders",
					Label:    "List Orders",
				},
			},
			{
				ID:   "db-1",
				Type: schema.NodeKindDatabase,
				Data: &schema.DatabaseData{
					NodeType: schema.NodeKindDatabase,
					Label:    "Orders DB",
				},
			},
		},
		Edges: []schema.Edge{
			{ID: "e1", Source: "api-1", Target: "proc-1", Type: schema.EdgeTypeDefault},
			{ID: "e2", Source: "proc-1", Target: "db-1", Type: schema.EdgeTypeStep},
		},
	}
}

func TestRenderMermaid(t *testing.T) {
	out := RenderMermaid(sampleGraph(), "Order Service")

	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "%% Order Service")

	// Shapes by kind.
	assert.Contains(t, out, `api_1(["GET /orders"])`)
	assert.Contains(t, out, `proc_1["List Orders"]`)
	assert.Contains(t, out, `db_1[("Orders DB")]`)

	// Plain edges solid, step edges dashed.
	assert.Contains(t, out, "api_1 --> proc_1")
	assert.Contains(t, out, "proc_1 -.-> db_1")

	// Kind classes applied.
	assert.Contains(t, out, "class proc_1 process")
	assert.Contains(t, out, "class db_1 database")
}

func TestRenderMermaid_EmptyGraph(t *testing.T) {
	out := RenderMermaid(schema.EmptyGraph(), "")
	assert.Contains(t, out, "graph TD")
	assert.NotContains(t, out, "-->")
}

func TestRenderDOT(t *testing.T) {
	out := RenderDOT(sampleGraph(), "Order Service")

	assert.Contains(t, out, "digraph architecture {")
	assert.Contains(t, out, `label="Order Service";`)
	assert.Contains(t, out, `"db-1" [label="Orders DB", shape=cylinder];`)
	assert.Contains(t, out, `"api-1" -> "proc-1";`)
	assert.Contains(t, out, `"proc-1" -> "db-1" [style=dashed];`)
}

func TestRenderDOT_DanglingEdgeKept(t *testing.T) {
	g := &schema.Graph{
		Edges: []schema.Edge{{ID: "e", Source: "ghost", Target: "nowhere"}},
	}
	out := RenderDOT(g, "")
	assert.Contains(t, out, `"ghost" -> "nowhere";`)
}

func TestNodeLabel_Fallbacks(t *testing.T) {
	n := schema.Node{
		ID:   "q-1",
		Type: schema.NodeKindQueue,
		Data: &schema.QueueData{NodeType: schema.NodeKindQueue},
	}
	assert.Equal(t, "q-1", nodeLabel(&n))

	n.Data = &schema.QueueData{NodeType: schema.NodeKindQueue, Label: "Events"}
	assert.Equal(t, "Events", nodeLabel(&n))
}

func TestRenderImage(t *testing.T) {
	png, err := RenderImage(t.Context(), sampleGraph(), "Order Service")
	require.NoError(t, err)
	require.NotEmpty(t, png)
	// PNG magic header.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
