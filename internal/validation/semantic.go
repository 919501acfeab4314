package validation

import (
	"encoding/json"
	"fmt"

	"github.com/rendis/atelier/pkg/schema"
	"github.com/robfig/cron/v3"
)

// ExpressionChecker compiles step-embedded expressions without evaluating
// them. Implemented by the expressions registry; nil disables the pass.
type ExpressionChecker interface {
	CheckCondition(expression string) error
	CheckCompute(expression string) error
	CheckTransform(program string) error
}

// validateStructural enforces graph invariants JSON Schema cannot express:
// unique node ids, unique edge ids, unique field names per enclosing list.
func validateStructural(g *schema.Graph) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	nodeIDs := make(map[string]int, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		path := fmt.Sprintf("nodes[%d]", i)
		if prev, dup := nodeIDs[n.ID]; dup {
			result.AddError(path+".id", schema.ErrCodeConflict,
				fmt.Sprintf("duplicate node id %q (first seen at nodes[%d])", n.ID, prev))
		} else {
			nodeIDs[n.ID] = i
		}
		validateNodeFields(n, path, result)
	}

	edgeIDs := make(map[string]int, len(g.Edges))
	for i := range g.Edges {
		e := &g.Edges[i]
		if prev, dup := edgeIDs[e.ID]; dup {
			result.AddError(fmt.Sprintf("edges[%d].id", i), schema.ErrCodeConflict,
				fmt.Sprintf("duplicate edge id %q (first seen at edges[%d])", e.ID, prev))
		} else {
			edgeIDs[e.ID] = i
		}
	}

	return result
}

// validateNodeFields checks field-name uniqueness in every field list a
// variant carries.
func validateNodeFields(n *schema.Node, path string, result *schema.ValidationResult) {
	switch data := n.Data.(type) {
	case *schema.ProcessData:
		checkFieldList(data.Inputs, path+".data.inputs", result)
		checkFieldList(data.Outputs.Success, path+".data.outputs.success", result)
		checkFieldList(data.Outputs.Error, path+".data.outputs.error", result)
		stepIDs := make(map[string]bool, len(data.Steps))
		for i, s := range data.Steps {
			if stepIDs[s.ID] {
				result.AddError(fmt.Sprintf("%s.data.steps[%d].id", path, i),
					schema.ErrCodeConflict, fmt.Sprintf("duplicate step id %q", s.ID))
			}
			stepIDs[s.ID] = true
		}
	case *schema.APIBindingData:
		checkFieldList(data.Request.PathParams, path+".data.request.pathParams", result)
		checkFieldList(data.Request.QueryParams, path+".data.request.queryParams", result)
		checkFieldList(data.Request.Headers, path+".data.request.headers", result)
		checkFieldList(data.Request.Body.Schema, path+".data.request.body.schema", result)
		checkFieldList(data.Responses.Success.Schema, path+".data.responses.success.schema", result)
		checkFieldList(data.Responses.Error.Schema, path+".data.responses.error.schema", result)
	case *schema.DatabaseData:
		for i, tbl := range data.Tables {
			checkFieldList(tbl.Fields, fmt.Sprintf("%s.data.tables[%d].fields", path, i), result)
		}
		queryIDs := make(map[string]bool, len(data.Queries))
		for i, q := range data.Queries {
			if queryIDs[q.ID] {
				result.AddError(fmt.Sprintf("%s.data.queries[%d].id", path, i),
					schema.ErrCodeConflict, fmt.Sprintf("duplicate query id %q", q.ID))
			}
			queryIDs[q.ID] = true
		}
	}
}

// checkFieldList verifies name uniqueness within one list, recursing into
// nested properties and array items.
func checkFieldList(fields []schema.Field, path string, result *schema.ValidationResult) {
	seen := make(map[string]bool, len(fields))
	for i := range fields {
		f := &fields[i]
		fpath := fmt.Sprintf("%s[%d]", path, i)
		if seen[f.Name] {
			result.AddError(fpath+".name", schema.ErrCodeConflict,
				fmt.Sprintf("duplicate field name %q", f.Name))
		}
		seen[f.Name] = true

		if len(f.Properties) > 0 {
			checkFieldList(f.Properties, fpath+".properties", result)
		}
		if f.Items != nil {
			checkFieldList([]schema.Field{*f.Items}, fpath+".items", result)
		}
	}
}

// stepConfig is the loose shape of expression-bearing step configs.
type stepConfig struct {
	Expression string `json:"expression,omitempty"`
	JQ         string `json:"jq,omitempty"`
	Ref        string `json:"ref,omitempty"`
}

// validateSemantic produces warnings only. Cross-node references stay
// soft: the editor never enforces them as foreign keys, and a later
// compile/export stage outside this repo resolves them. Dangling edges
// are likewise tolerated, so endpoint checks warn instead of failing.
func validateSemantic(g *schema.Graph, exprs ExpressionChecker) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	nodeIDs := make(map[string]bool, len(g.Nodes))
	processIDs := make(map[string]bool)
	for i := range g.Nodes {
		nodeIDs[g.Nodes[i].ID] = true
		if p, ok := g.Nodes[i].Data.(*schema.ProcessData); ok {
			processIDs[p.ID] = true
		}
	}

	for i := range g.Nodes {
		path := fmt.Sprintf("nodes[%d]", i)
		switch data := g.Nodes[i].Data.(type) {
		case *schema.ProcessData:
			validateProcessSemantic(data, path, nodeIDs, processIDs, exprs, result)
		case *schema.APIBindingData:
			if data.ProcessRef != "" && !processIDs[data.ProcessRef] {
				result.AddWarning(path+".data.processRef", schema.ErrCodeNotFound,
					fmt.Sprintf("process %q is not defined in this graph", data.ProcessRef))
			}
		}
	}

	for i, e := range g.Edges {
		if !nodeIDs[e.Source] {
			result.AddWarning(fmt.Sprintf("edges[%d].source", i), schema.ErrCodeNotFound,
				fmt.Sprintf("edge source %q does not match any node", e.Source))
		}
		if !nodeIDs[e.Target] {
			result.AddWarning(fmt.Sprintf("edges[%d].target", i), schema.ErrCodeNotFound,
				fmt.Sprintf("edge target %q does not match any node", e.Target))
		}
	}

	checkStepEdgeCycles(g, result)
	return result
}

func validateProcessSemantic(data *schema.ProcessData, path string, nodeIDs, processIDs map[string]bool, exprs ExpressionChecker, result *schema.ValidationResult) {
	if data.Schedule != "" {
		if _, err := cron.ParseStandard(data.Schedule); err != nil {
			result.AddWarning(path+".data.schedule", schema.ErrCodeValidation,
				fmt.Sprintf("schedule %q is not a valid cron expression: %s", data.Schedule, err))
		}
	}
	if data.Execution == schema.ExecutionScheduled && data.Schedule == "" {
		result.AddWarning(path+".data.schedule", schema.ErrCodeValidation,
			"scheduled process has no schedule")
	}
	if data.Execution == schema.ExecutionEventDriven && data.Trigger == nil {
		result.AddWarning(path+".data.trigger", schema.ErrCodeValidation,
			"event-driven process has no trigger")
	}

	for i, step := range data.Steps {
		spath := fmt.Sprintf("%s.data.steps[%d]", path, i)
		var cfg stepConfig
		if len(step.Config) > 0 {
			// Malformed opaque config is not an error at this layer.
			_ = json.Unmarshal(step.Config, &cfg)
		}

		switch step.Kind {
		case schema.StepKindRef:
			if cfg.Ref != "" && !nodeIDs[cfg.Ref] && !processIDs[cfg.Ref] {
				result.AddWarning(spath+".config.ref", schema.ErrCodeNotFound,
					fmt.Sprintf("step references %q which is not in this graph", cfg.Ref))
			}
		case schema.StepKindCondition:
			if exprs != nil && cfg.Expression != "" {
				if err := exprs.CheckCondition(cfg.Expression); err != nil {
					result.AddWarning(spath+".config.expression", schema.ErrCodeExpression,
						fmt.Sprintf("condition does not compile: %s", err))
				}
			}
		case schema.StepKindCompute:
			if exprs != nil && cfg.Expression != "" {
				if err := exprs.CheckCompute(cfg.Expression); err != nil {
					result.AddWarning(spath+".config.expression", schema.ErrCodeExpression,
						fmt.Sprintf("expression does not compile: %s", err))
				}
			}
		case schema.StepKindTransform:
			if exprs != nil && cfg.JQ != "" {
				if err := exprs.CheckTransform(cfg.JQ); err != nil {
					result.AddWarning(spath+".config.jq", schema.ErrCodeExpression,
						fmt.Sprintf("jq program does not compile: %s", err))
				}
			}
		}
	}
}

// checkStepEdgeCycles warns when step-typed edges form a cycle. Step edges
// express control-flow ordering, so a cycle almost certainly means a wiring
// mistake, but the editor tolerates it (warning, not error).
func checkStepEdgeCycles(g *schema.Graph, result *schema.ValidationResult) {
	adj := make(map[string][]string)
	for _, e := range g.Edges {
		if e.Type == schema.EdgeTypeStep {
			adj[e.Source] = append(adj[e.Source], e.Target)
		}
	}
	if len(adj) == 0 {
		return
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		for _, next := range adj[id] {
			switch color[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for id := range adj {
		if color[id] == white && visit(id) {
			result.AddWarning("edges", schema.ErrCodeValidation,
				fmt.Sprintf("step edges form a cycle reachable from %q", id))
			return
		}
	}
}
