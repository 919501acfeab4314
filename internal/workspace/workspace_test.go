package workspace

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/atelier/pkg/schema"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(TabAPI, nil)
}

func marshalNode(t *testing.T, n schema.Node) []byte {
	t.Helper()
	raw, err := json.Marshal(n)
	require.NoError(t, err)
	return raw
}

func TestAddNode_APIGetTemplate(t *testing.T) {
	s := newTestStore(t)

	first := s.AddNode("process", nil)
	require.NotEmpty(t, first)

	pos := schema.Position{X: 10, Y: 20}
	id := s.AddNode("api_get", &pos)
	require.NotEmpty(t, id)
	assert.NotEqual(t, first, id)

	g := s.Graph()
	require.Len(t, g.Nodes, 2)

	added := g.NodeByID(id)
	require.NotNil(t, added)
	assert.Equal(t, schema.NodeKindAPIBinding, added.Type)
	assert.Equal(t, schema.Position{X: 10, Y: 20}, added.Position)
	assert.True(t, added.Selected)

	data, ok := added.Data.(*schema.APIBindingData)
	require.True(t, ok)
	assert.Equal(t, schema.MethodGet, data.Method)
	assert.Equal(t, schema.NodeKindAPIBinding, data.NodeType)

	// All previously existing nodes are deselected.
	prev := g.NodeByID(first)
	require.NotNil(t, prev)
	assert.False(t, prev.Selected)
}

func TestAddNode_DefaultOffsetFromLast(t *testing.T) {
	s := newTestStore(t)

	pos := schema.Position{X: 200, Y: 400}
	s.AddNode("queue", &pos)

	id := s.AddNode("queue", nil)
	n := s.Graph().NodeByID(id)
	require.NotNil(t, n)
	assert.Equal(t, schema.Position{X: 250, Y: 550}, n.Position)
}

func TestAddNode_UnknownTemplate(t *testing.T) {
	s := newTestStore(t)
	assert.Empty(t, s.AddNode("nope", nil))
	assert.Empty(t, s.Graph().Nodes)
}

func TestDeleteNode_CascadesEdges(t *testing.T) {
	s := newTestStore(t)
	a := s.AddNode("process", nil)
	b := s.AddNode("database", nil)
	c := s.AddNode("queue", nil)

	s.Connect(Connection{Source: a, Target: b})
	s.Connect(Connection{Source: b, Target: c})
	s.Connect(Connection{Source: c, Target: a})
	require.Len(t, s.Graph().Edges, 3)

	s.DeleteNode(b)

	g := s.Graph()
	assert.Nil(t, g.NodeByID(b))
	require.Len(t, g.Edges, 1)
	for _, e := range g.Edges {
		assert.NotEqual(t, b, e.Source)
		assert.NotEqual(t, b, e.Target)
	}
}

func TestDeleteNode_UnknownIDNoOp(t *testing.T) {
	s := newTestStore(t)
	s.AddNode("process", nil)
	before := s.Graph()

	s.DeleteNode("missing")
	assert.Equal(t, before, s.Graph())
}

func TestProcessOnlyGuard_NonProcessNodesUnchanged(t *testing.T) {
	s := newTestStore(t)

	ids := map[string]string{
		"database":    s.AddNode("database", nil),
		"queue":       s.AddNode("queue", nil),
		"infra":       s.AddNode("infra", nil),
		"api_binding": s.AddNode("api_get", nil),
	}

	field := schema.Field{Name: "f", Type: schema.FieldTypeString}
	step := schema.Step{ID: "s1", Kind: schema.StepKindCompute}

	for kind, id := range ids {
		before := marshalNode(t, *s.Graph().NodeByID(id))

		s.AddInput(id, field)
		s.RemoveInput(id, "f")
		s.UpdateInput(id, "f", field)
		s.AddOutput(id, OutputSuccess, field)
		s.RemoveOutput(id, OutputError, "f")
		s.UpdateOutput(id, OutputSuccess, "f", field)
		s.AddStep(id, step)
		s.RemoveStep(id, "s1")
		s.UpdateStep(id, step)

		after := marshalNode(t, *s.Graph().NodeByID(id))
		assert.JSONEq(t, string(before), string(after), "kind %s must be untouched", kind)
	}
}

func TestFieldAndStepOps_OnProcessNode(t *testing.T) {
	s := newTestStore(t)
	id := s.AddNode("process", nil)

	s.AddInput(id, schema.Field{Name: "amount", Type: schema.FieldTypeNumber})
	s.AddOutput(id, OutputSuccess, schema.Field{Name: "total", Type: schema.FieldTypeNumber})
	s.AddOutput(id, OutputError, schema.Field{Name: "reason", Type: schema.FieldTypeString})
	s.AddStep(id, schema.Step{ID: "calc", Kind: schema.StepKindCompute})

	pd := s.Graph().NodeByID(id).Data.(*schema.ProcessData)
	require.Len(t, pd.Inputs, 1)
	require.Len(t, pd.Outputs.Success, 1)
	require.Len(t, pd.Outputs.Error, 1)
	require.Len(t, pd.Steps, 1)

	s.UpdateInput(id, "amount", schema.Field{Name: "amount", Type: schema.FieldTypeString})
	s.UpdateStep(id, schema.Step{ID: "calc", Name: "Calculate", Kind: schema.StepKindCompute})

	pd = s.Graph().NodeByID(id).Data.(*schema.ProcessData)
	assert.Equal(t, schema.FieldTypeString, pd.Inputs[0].Type)
	assert.Equal(t, "Calculate", pd.Steps[0].Name)

	s.RemoveInput(id, "amount")
	s.RemoveOutput(id, OutputSuccess, "total")
	s.RemoveStep(id, "calc")

	pd = s.Graph().NodeByID(id).Data.(*schema.ProcessData)
	assert.Empty(t, pd.Inputs)
	assert.Empty(t, pd.Outputs.Success)
	assert.Len(t, pd.Outputs.Error, 1)
	assert.Empty(t, pd.Steps)
}

func TestUpdateNodeData_KindMismatchNoOp(t *testing.T) {
	s := newTestStore(t)
	id := s.AddNode("queue", nil)
	before := marshalNode(t, *s.Graph().NodeByID(id))

	s.UpdateNodeData(id, &schema.ProcessData{NodeType: schema.NodeKindProcess, ID: "p"})

	after := marshalNode(t, *s.Graph().NodeByID(id))
	assert.JSONEq(t, string(before), string(after))
}

func TestUpdateNodeData_ReplacesMatchingKind(t *testing.T) {
	s := newTestStore(t)
	id := s.AddNode("queue", nil)

	s.UpdateNodeData(id, &schema.QueueData{
		NodeType: schema.NodeKindQueue,
		Label:    "Orders",
		Delivery: schema.DeliveryExactlyOnce,
		Retry:    schema.QueueRetry{MaxAttempts: 5, Backoff: schema.BackoffLinear},
	})

	qd := s.Graph().NodeByID(id).Data.(*schema.QueueData)
	assert.Equal(t, "Orders", qd.Label)
	assert.Equal(t, schema.DeliveryExactlyOnce, qd.Delivery)
	assert.Equal(t, 5, qd.Retry.MaxAttempts)
}

func TestUpdateNodeData_RegeneratesQueryCode(t *testing.T) {
	s := newTestStore(t)
	id := s.AddNode("database", nil)

	s.UpdateNodeData(id, &schema.DatabaseData{
		NodeType: schema.NodeKindDatabase,
		Label:    "Main DB",
		DBType:   schema.DBTypeSQL,
		Engine:   "postgresql",
		Schemas:  []string{"public"},
		Queries: []schema.Query{
			{ID: "q1", Name: "list users", Operation: schema.QuerySelect, Target: "users", Conditions: "active = true"},
		},
	})

	db := s.Graph().NodeByID(id).Data.(*schema.DatabaseData)
	require.Len(t, db.Queries, 1)
	assert.Equal(t, "SELECT * FROM users WHERE active = true;", db.Queries[0].GeneratedCode)
}

func TestLoadPreset_DoubleLoadIsolation(t *testing.T) {
	s := newTestStore(t)

	s.LoadPreset("hello_world_api")
	first := s.Graph()

	// Mutate the first load's state heavily.
	s.UpdateNodeData("hello-process", &schema.ProcessData{
		NodeType:    schema.NodeKindProcess,
		ID:          "mutated",
		Label:       "Mutated",
		ProcessType: schema.ProcessTypeJob,
		Execution:   schema.ExecutionAsync,
		Inputs:      []schema.Field{},
		Outputs:     schema.ProcessOutputs{Success: []schema.Field{}, Error: []schema.Field{}},
		Steps:       []schema.Step{},
	})
	s.DeleteNode("hello-api")

	s.LoadPreset("hello_world_api")
	second := s.Graph()

	require.Len(t, second.Nodes, 2)
	require.Len(t, second.Edges, 1)
	pd := second.NodeByID("hello-process").Data.(*schema.ProcessData)
	assert.Equal(t, "helloWorldProcess", pd.ID)

	// first is a snapshot copy, untouched by the reload.
	assert.Len(t, first.Nodes, 2)
}

func TestHelloWorldPreset_Shape(t *testing.T) {
	s := newTestStore(t)
	s.LoadPreset("hello_world_api")

	g := s.Graph()
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)

	api := g.NodeByID("hello-api")
	require.NotNil(t, api)
	assert.Equal(t, schema.NodeKindAPIBinding, api.Type)
	assert.Equal(t, "helloWorldProcess", api.Data.(*schema.APIBindingData).ProcessRef)

	proc := g.NodeByID("hello-process")
	require.NotNil(t, proc)
	assert.Equal(t, schema.NodeKindProcess, proc.Type)
	assert.Equal(t, "helloWorldProcess", proc.Data.(*schema.ProcessData).ID)

	e := g.Edges[0]
	assert.Equal(t, "hello-api", e.Source)
	assert.Equal(t, "hello-process", e.Target)
}

func TestLoadPreset_UnknownNameNoOp(t *testing.T) {
	s := newTestStore(t)
	s.AddNode("process", nil)
	before := s.Graph()

	s.LoadPreset("not_a_preset")
	assert.Equal(t, before, s.Graph())
}

func TestSetActiveTab_RoundTripPreservesGraph(t *testing.T) {
	s := newTestStore(t)

	s.LoadPreset("hello_world_api")
	id := s.AddNode("queue", nil)
	s.Connect(Connection{Source: "hello-process", Target: id})
	before := s.Graph()

	s.SetActiveTab(TabDatabase)
	assert.Empty(t, s.Graph().Nodes)
	s.AddNode("database", nil)

	s.SetActiveTab(TabAPI)
	assert.Equal(t, before, s.Graph())
}

func TestSetActiveTab_InvalidTabNoOp(t *testing.T) {
	s := newTestStore(t)
	s.SetActiveTab(Tab("bogus"))
	assert.Equal(t, TabAPI, s.ActiveTab())
}

func TestSetGraph_DeepCopiesInput(t *testing.T) {
	s := newTestStore(t)

	g := helloWorldAPIPreset()
	s.SetGraph(g)

	// Mutating the caller's graph after SetGraph must not leak in.
	g.Nodes[0].Position = schema.Position{X: -1, Y: -1}
	g.Nodes = g.Nodes[:1]

	stored := s.Graph()
	require.Len(t, stored.Nodes, 2)
	assert.Equal(t, schema.Position{X: 100, Y: 100}, stored.NodeByID("hello-api").Position)
}

func TestGraph_ReturnsIndependentCopy(t *testing.T) {
	s := newTestStore(t)
	id := s.AddNode("process", nil)

	copy1 := s.Graph()
	copy1.NodeByID(id).Data.(*schema.ProcessData).Label = "hacked"

	assert.NotEqual(t, "hacked", s.Graph().NodeByID(id).Data.(*schema.ProcessData).Label)
}

func TestApplyNodeChanges_PositionSelectRemove(t *testing.T) {
	s := newTestStore(t)
	a := s.AddNode("process", nil)
	b := s.AddNode("queue", nil)
	s.Connect(Connection{Source: a, Target: b})

	newPos := schema.Position{X: 42, Y: 84}
	selected := true
	s.ApplyNodeChanges([]NodeChange{
		{Type: NodeChangePosition, ID: a, Position: &newPos},
		{Type: NodeChangeSelect, ID: a, Selected: &selected},
		{Type: NodeChangeRemove, ID: b},
		{Type: NodeChangeRemove, ID: "missing"},
	})

	g := s.Graph()
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, newPos, g.NodeByID(a).Position)
	assert.True(t, g.NodeByID(a).Selected)
	assert.Empty(t, g.Edges, "removing a node cascades its edges")
}

func TestApplyEdgeChanges_Remove(t *testing.T) {
	s := newTestStore(t)
	a := s.AddNode("process", nil)
	b := s.AddNode("queue", nil)
	edgeID := s.Connect(Connection{Source: a, Target: b})

	s.ApplyEdgeChanges([]EdgeChange{
		{Type: EdgeChangeRemove, ID: edgeID},
		{Type: EdgeChangeRemove, ID: "missing"},
	})

	assert.Empty(t, s.Graph().Edges)
}

func TestConnect_ToleratesDanglingEndpoints(t *testing.T) {
	s := newTestStore(t)
	id := s.Connect(Connection{Source: "ghost-a", Target: "ghost-b", Type: schema.EdgeTypeStep})
	require.NotEmpty(t, id)

	g := s.Graph()
	require.Len(t, g.Edges, 1)
	assert.Equal(t, schema.EdgeTypeStep, g.Edges[0].Type)
}

func TestConnect_DefaultsEdgeType(t *testing.T) {
	s := newTestStore(t)
	s.Connect(Connection{Source: "a", Target: "b"})
	assert.Equal(t, schema.EdgeTypeDefault, s.Graph().Edges[0].Type)
}

func TestNodeIDs_UniqueUnderRapidCalls(t *testing.T) {
	s := newTestStore(t)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := s.AddNode("process", nil)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSelectedNode(t *testing.T) {
	s := newTestStore(t)
	_, ok := s.SelectedNode()
	assert.False(t, ok)

	id := s.AddNode("process", nil)
	n, ok := s.SelectedNode()
	require.True(t, ok)
	assert.Equal(t, id, n.ID)
}
