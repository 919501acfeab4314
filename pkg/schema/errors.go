package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeExpression    = "EXPRESSION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeQuotaExceeded = "QUOTA_EXCEEDED"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeStore         = "STORE_ERROR"
)

// AtelierError is the structured error type for all atelier operations.
type AtelierError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	NodeID  string         `json:"node_id,omitempty"`
	Cause   error          `json:"-"`
}

func (e *AtelierError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("[%s] node %s: %s", e.Code, e.NodeID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AtelierError) Unwrap() error {
	return e.Cause
}

// NewError creates a new AtelierError.
func NewError(code, message string) *AtelierError {
	return &AtelierError{Code: code, Message: message}
}

// NewErrorf creates a new AtelierError with a formatted message.
func NewErrorf(code, format string, args ...any) *AtelierError {
	return &AtelierError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithNode attaches a node ID to the error.
func (e *AtelierError) WithNode(nodeID string) *AtelierError {
	e.NodeID = nodeID
	return e
}

// WithCause attaches an underlying cause.
func (e *AtelierError) WithCause(err error) *AtelierError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *AtelierError) WithDetails(details map[string]any) *AtelierError {
	e.Details = details
	return e
}
