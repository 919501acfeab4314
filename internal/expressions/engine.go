package expressions

import "context"

// Engine evaluates expressions embedded in process step configs.
// Three implementations: CEL (condition steps), GoJQ (transform steps),
// Expr (compute steps).
type Engine interface {
	Name() string
	// Check compiles the expression without evaluating it. Used by the
	// semantic validator to surface broken expressions at edit time.
	Check(expression string) error
	// Evaluate compiles (or retrieves from cache) and runs the expression
	// against the provided data. Used by query/step previews.
	Evaluate(ctx context.Context, expression string, data map[string]any) (any, error)
}

// Registry bundles the three engines and satisfies the validator's
// ExpressionChecker interface.
type Registry struct {
	CEL  *CELEngine
	Expr *ExprEngine
	JQ   *GoJQEngine
}

// NewRegistry constructs all engines. CEL environment construction is the
// only fallible part.
func NewRegistry() (*Registry, error) {
	celEngine, err := NewCELEngine()
	if err != nil {
		return nil, err
	}
	return &Registry{
		CEL:  celEngine,
		Expr: NewExprEngine(),
		JQ:   NewGoJQEngine(),
	}, nil
}

// CheckCondition compiles a condition-step CEL expression.
func (r *Registry) CheckCondition(expression string) error {
	return r.CEL.Check(expression)
}

// CheckCompute compiles a compute-step expr expression.
func (r *Registry) CheckCompute(expression string) error {
	return r.Expr.Check(expression)
}

// CheckTransform compiles a transform-step jq program.
func (r *Registry) CheckTransform(program string) error {
	return r.JQ.Check(program)
}
