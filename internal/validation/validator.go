package validation

import "github.com/rendis/atelier/pkg/schema"

// Validator checks graph documents before they enter the workspace store.
// Uses JSON Schema Draft 2020-12 for structural validation; the semantic
// pass adds soft-reference and expression warnings on top.
type Validator interface {
	// ValidateDocument validates a raw graph document. Structural failures
	// are errors; unresolved soft references are warnings only.
	ValidateDocument(doc []byte) *schema.ValidationResult

	// ValidateGraph runs the same pipeline on an already-decoded graph.
	ValidateGraph(g *schema.Graph) *schema.ValidationResult

	// ValidatePayload validates an untyped payload against a recursive
	// Field definition, reporting the failing field path on mismatch.
	ValidatePayload(payload any, fields []schema.Field) error
}
