package workspace

import (
	"encoding/json"

	"github.com/rendis/atelier/pkg/schema"
)

// presets maps a preset name to a factory producing the template graph.
// LoadPreset clones the result, so mutation after a load can never reach
// the template and presets stay reusable across loads.
var presets = map[string]func() *schema.Graph{
	"empty":           schema.EmptyGraph,
	"hello_world_api": helloWorldAPIPreset,
}

// PresetNames returns the names LoadPreset accepts.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}

// helloWorldAPIPreset is the two-node starter graph: a GET endpoint bound
// by string reference to a minimal process. The processRef/data.id link is
// a soft reference; the semantic validator warns if it dangles but the
// preset keeps both sides consistent.
func helloWorldAPIPreset() *schema.Graph {
	stepConfig, _ := json.Marshal(map[string]any{
		"expression": `"Hello, " + name + "!"`,
	})

	return &schema.Graph{
		Nodes: []schema.Node{
			{
				ID:       "hello-api",
				Type:     schema.NodeKindAPIBinding,
				Position: schema.Position{X: 100, Y: 100},
				Data: &schema.APIBindingData{
					NodeType: schema.NodeKindAPIBinding,
					Label:    "GET /hello",
					APIType:  schema.APITypeOpenAPI,
					Method:   schema.MethodGet,
					Route:    "/hello",
					Request: schema.APIRequest{
						PathParams: []schema.Field{},
						QueryParams: []schema.Field{
							{Name: "name", Type: schema.FieldTypeString, Description: "Who to greet"},
						},
						Headers: []schema.Field{},
						Body: schema.RequestBody{
							ContentType: "application/json",
							Schema:      []schema.Field{},
						},
					},
					Responses: schema.APIResponses{
						Success: schema.APIResponse{
							StatusCode: 200,
							Schema: []schema.Field{
								{Name: "message", Type: schema.FieldTypeString},
							},
						},
						Error: schema.APIResponse{
							StatusCode: 400,
							Schema: []schema.Field{
								{Name: "error", Type: schema.FieldTypeString},
							},
						},
					},
					Security:   schema.APISecurity{Type: schema.SecurityNone},
					RateLimit:  schema.RateLimit{Enabled: false},
					Version:    "v1",
					ProcessRef: "helloWorldProcess",
				},
			},
			{
				ID:       "hello-process",
				Type:     schema.NodeKindProcess,
				Position: schema.Position{X: 100, Y: 300},
				Data: &schema.ProcessData{
					NodeType:    schema.NodeKindProcess,
					ID:          "helloWorldProcess",
					Label:       "Hello World",
					ProcessType: schema.ProcessTypeCalculation,
					Execution:   schema.ExecutionSync,
					Inputs: []schema.Field{
						{Name: "name", Type: schema.FieldTypeString},
					},
					Outputs: schema.ProcessOutputs{
						Success: []schema.Field{
							{Name: "message", Type: schema.FieldTypeString},
						},
						Error: []schema.Field{
							{Name: "error", Type: schema.FieldTypeString},
						},
					},
					Steps: []schema.Step{
						{
							ID:     "greet",
							Name:   "Build greeting",
							Kind:   schema.StepKindCompute,
							Config: stepConfig,
						},
					},
				},
			},
		},
		Edges: []schema.Edge{
			{
				ID:     "hello-api-to-process",
				Source: "hello-api",
				Target: "hello-process",
				Type:   schema.EdgeTypeDefault,
			},
		},
	}
}
