package schema

import (
	"fmt"
	"strings"
)

// GenerateQueryCode derives the preview SQL string for a stored query.
// Conditions are free text and pass through verbatim; they are previewed,
// not executed, so no quoting or binding is attempted here.
func GenerateQueryCode(q Query) string {
	target := q.Target
	if target == "" {
		target = "<table>"
	}

	var b strings.Builder
	switch q.Operation {
	case QuerySelect:
		fmt.Fprintf(&b, "SELECT * FROM %s", target)
		if q.Conditions != "" {
			fmt.Fprintf(&b, " WHERE %s", q.Conditions)
		}
	case QueryInsert:
		fmt.Fprintf(&b, "INSERT INTO %s (...) VALUES (...)", target)
	case QueryUpdate:
		fmt.Fprintf(&b, "UPDATE %s SET ...", target)
		if q.Conditions != "" {
			fmt.Fprintf(&b, " WHERE %s", q.Conditions)
		}
	case QueryDelete:
		fmt.Fprintf(&b, "DELETE FROM %s", target)
		if q.Conditions != "" {
			fmt.Fprintf(&b, " WHERE %s", q.Conditions)
		}
	default:
		return ""
	}
	b.WriteString(";")
	return b.String()
}
