package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_UnmarshalProcess(t *testing.T) {
	raw := `{
		"id": "n1",
		"type": "process",
		"position": {"x": 10, "y": 20},
		"data": {
			"kind": "process",
			"id": "billingProcess",
			"label": "Billing",
			"processType": "calculation",
			"execution": "sync",
			"inputs": [{"name": "amount", "type": "number", "minimum": 0}],
			"outputs": {
				"success": [{"name": "total", "type": "number"}],
				"error": [{"name": "message", "type": "string"}]
			},
			"steps": [{"id": "s1", "kind": "compute", "config": {"expression": "amount * 1.19"}}]
		}
	}`

	var n Node
	require.NoError(t, json.Unmarshal([]byte(raw), &n))

	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, NodeKindProcess, n.Type)
	assert.Equal(t, Position{X: 10, Y: 20}, n.Position)

	proc, ok := n.Data.(*ProcessData)
	require.True(t, ok)
	assert.Equal(t, "billingProcess", proc.ID)
	assert.Equal(t, ProcessTypeCalculation, proc.ProcessType)
	require.Len(t, proc.Inputs, 1)
	assert.True(t, proc.Inputs[0].IsRequired(), "required defaults to true")
	require.Len(t, proc.Steps, 1)
	assert.Equal(t, StepKindCompute, proc.Steps[0].Kind)
}

func TestNode_UnmarshalRejectsUnknownField(t *testing.T) {
	raw := `{
		"id": "n1",
		"type": "queue",
		"position": {"x": 0, "y": 0},
		"data": {
			"kind": "queue",
			"label": "orders",
			"delivery": "at_least_once",
			"retry": {"maxAttempts": 3, "backoff": "exponential"},
			"deadLetter": true,
			"engine": "postgres"
		}
	}`

	var n Node
	err := json.Unmarshal([]byte(raw), &n)
	require.Error(t, err, "cross-variant field must fail closed")
}

func TestNode_UnmarshalKindMismatch(t *testing.T) {
	raw := `{
		"id": "n1",
		"type": "process",
		"position": {"x": 0, "y": 0},
		"data": {"kind": "queue", "label": "q", "delivery": "at_most_once",
			"retry": {"maxAttempts": 1, "backoff": "linear"}, "deadLetter": false}
	}`

	var n Node
	err := json.Unmarshal([]byte(raw), &n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestNode_UnmarshalUnknownKind(t *testing.T) {
	raw := `{"id": "n1", "type": "widget", "position": {"x": 0, "y": 0},
		"data": {"kind": "widget"}}`

	var n Node
	require.Error(t, json.Unmarshal([]byte(raw), &n))
}

func TestInfraData_TwoLevelUnion(t *testing.T) {
	raw := `{
		"kind": "infra",
		"label": "web tier",
		"resourceType": "ec2",
		"provider": "aws",
		"environment": "production",
		"region": "eu-west-1",
		"tags": ["web"],
		"config": {
			"instanceType": "t3.medium",
			"ami": "ami-0abc",
			"count": 3,
			"subnetIds": ["subnet-1", "subnet-2"],
			"securityGroups": ["sg-1"],
			"diskGb": 80,
			"autoscalingMin": 2,
			"autoscalingMax": 6
		}
	}`

	var d InfraData
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	assert.Equal(t, ResourceEC2, d.Resource)

	ec2, ok := d.Config.(*EC2Config)
	require.True(t, ok)
	assert.Equal(t, "t3.medium", ec2.InstanceType)
	assert.Equal(t, 3, ec2.Count)
	assert.Equal(t, []string{"subnet-1", "subnet-2"}, ec2.SubnetIDs)
}

func TestInfraData_RejectsCrossTypeConfig(t *testing.T) {
	// s3 resource type with an ec2-only field must fail closed.
	raw := `{
		"kind": "infra",
		"label": "assets",
		"resourceType": "s3",
		"provider": "aws",
		"environment": "staging",
		"region": "us-east-1",
		"config": {"bucketName": "assets", "versioning": true, "encryption": true,
			"publicAccess": false, "instanceType": "t3.micro"}
	}`

	var d InfraData
	require.Error(t, json.Unmarshal([]byte(raw), &d))
}

func TestInfraData_UnknownResourceType(t *testing.T) {
	raw := `{"kind": "infra", "label": "x", "resourceType": "mainframe",
		"provider": "aws", "environment": "dev", "region": "us-east-1", "config": {}}`

	var d InfraData
	err := json.Unmarshal([]byte(raw), &d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mainframe")
}

func TestField_DeepNestingRoundTrip(t *testing.T) {
	// object -> array -> object, depth >= 3, must survive a round trip.
	f := Field{
		Name: "order", Type: FieldTypeObject,
		Properties: []Field{
			{Name: "items", Type: FieldTypeArray, Items: &Field{
				Name: "item", Type: FieldTypeObject,
				Properties: []Field{
					{Name: "sku", Type: FieldTypeString, Pattern: "^[A-Z0-9]+$"},
					{Name: "qty", Type: FieldTypeNumber, Minimum: floatPtr(1)},
				},
			}},
		},
	}
	require.GreaterOrEqual(t, f.Depth(), 3)

	raw, err := json.Marshal(f)
	require.NoError(t, err)

	var back Field
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, f, back)
	assert.Equal(t, f.Depth(), back.Depth())
}

func TestField_CloneIsIndependent(t *testing.T) {
	f := Field{
		Name: "payload", Type: FieldTypeObject,
		Properties: []Field{{Name: "id", Type: FieldTypeString, MinLength: intPtr(1)}},
	}

	c := f.Clone()
	c.Properties[0].Name = "mutated"
	*c.Properties[0].MinLength = 99

	assert.Equal(t, "id", f.Properties[0].Name)
	assert.Equal(t, 1, *f.Properties[0].MinLength)
}

func TestGraph_CloneIsDeep(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{
			ID: "n1", Type: NodeKindQueue, Position: Position{X: 1, Y: 2},
			Data: &QueueData{NodeType: NodeKindQueue, Label: "jobs",
				Delivery: DeliveryAtLeastOnce,
				Retry:    QueueRetry{MaxAttempts: 3, Backoff: BackoffLinear}},
		}},
		Edges: []Edge{{ID: "e1", Source: "n1", Target: "n2", Type: EdgeTypeDefault}},
	}

	c := g.Clone()
	c.Nodes[0].ID = "other"
	c.Nodes[0].Data.(*QueueData).Label = "mutated"
	c.Edges[0].Target = "n9"

	assert.Equal(t, "n1", g.Nodes[0].ID)
	assert.Equal(t, "jobs", g.Nodes[0].Data.(*QueueData).Label)
	assert.Equal(t, "n2", g.Edges[0].Target)
}

func TestGraph_RoundTripAllVariants(t *testing.T) {
	raw := `{
		"nodes": [
			{"id": "a", "type": "api_binding", "position": {"x": 0, "y": 0}, "data": {
				"kind": "api_binding", "label": "get user", "apiType": "openapi",
				"method": "GET", "route": "/users/:id",
				"request": {"pathParams": [{"name": "id", "type": "string"}],
					"queryParams": [], "headers": [],
					"body": {"contentType": "application/json", "schema": []}},
				"responses": {"success": {"statusCode": 200, "schema": []},
					"error": {"statusCode": 404, "schema": []}},
				"security": {"type": "bearer"},
				"rateLimit": {"enabled": false},
				"deprecated": false,
				"processRef": "getUser"
			}},
			{"id": "d", "type": "database", "position": {"x": 100, "y": 0}, "data": {
				"kind": "database", "label": "users db", "dbType": "sql", "engine": "postgres",
				"capabilities": {"crud": true, "transactions": true, "joins": true,
					"aggregations": true, "indexes": true, "constraints": true, "pagination": true},
				"schemas": ["public"],
				"queries": [{"id": "q1", "name": "find", "operation": "SELECT", "target": "users"}]
			}}
		],
		"edges": [{"id": "e1", "source": "a", "target": "d", "type": "default", "animated": true}]
	}`

	var g Graph
	require.NoError(t, json.Unmarshal([]byte(raw), &g))
	require.Len(t, g.Nodes, 2)

	api, ok := g.Nodes[0].Data.(*APIBindingData)
	require.True(t, ok)
	assert.Equal(t, MethodGet, api.Method)
	assert.Equal(t, "getUser", api.ProcessRef)

	out, err := json.Marshal(&g)
	require.NoError(t, err)

	var back Graph
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, g, back)
}

func TestGenerateQueryCode(t *testing.T) {
	cases := []struct {
		q    Query
		want string
	}{
		{Query{Operation: QuerySelect, Target: "users", Conditions: "age > 18"},
			"SELECT * FROM users WHERE age > 18;"},
		{Query{Operation: QuerySelect, Target: "users"},
			"SELECT * FROM users;"},
		{Query{Operation: QueryInsert, Target: "orders"},
			"INSERT INTO orders (...) VALUES (...);"},
		{Query{Operation: QueryUpdate, Target: "orders", Conditions: "id = 1"},
			"UPDATE orders SET ... WHERE id = 1;"},
		{Query{Operation: QueryDelete, Target: "sessions", Conditions: "expired"},
			"DELETE FROM sessions WHERE expired;"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GenerateQueryCode(tc.q))
	}
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
