package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rendis/atelier/pkg/schema"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an error to a JSON error response. AtelierError codes
// select the HTTP status; anything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := schema.ErrCodeStore
	msg := err.Error()

	var atlErr *schema.AtelierError
	if errors.As(err, &atlErr) {
		code = atlErr.Code
		status = statusForCode(atlErr.Code)
	}

	writeJSON(w, status, map[string]any{
		"error": msg,
		"code":  code,
	})
}

// writeBadRequest reports a malformed request body.
func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": msg,
		"code":  schema.ErrCodeValidation,
	})
}

// statusForCode maps the error taxonomy onto HTTP statuses. Quota
// exhaustion gets its own status so clients can tell it apart from
// validation failures.
func statusForCode(code string) int {
	switch code {
	case schema.ErrCodeValidation, schema.ErrCodeExpression:
		return http.StatusBadRequest
	case schema.ErrCodeNotFound:
		return http.StatusNotFound
	case schema.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case schema.ErrCodeQuotaExceeded:
		return http.StatusTooManyRequests
	case schema.ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// queryInt extracts an integer query param with a default value.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
