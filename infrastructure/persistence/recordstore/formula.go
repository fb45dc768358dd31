package recordstore

import (
	"fmt"
	"strings"
)

// Formula helpers for the store's boolean expression language. Services
// build their filters with these so quoting stays in one place.

// Equals builds a {field}='value' comparison with the value's single
// quotes escaped.
func Equals(field, value string) string {
	escaped := strings.ReplaceAll(value, "'", "\\'")
	return fmt.Sprintf("{%s}='%s'", field, escaped)
}

// And combines formulas with logical AND, dropping empty ones. A single
// surviving formula is returned as-is.
func And(formulas ...string) string {
	parts := make([]string, 0, len(formulas))
	for _, f := range formulas {
		if f != "" {
			parts = append(parts, f)
		}
	}

	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return fmt.Sprintf("AND(%s)", strings.Join(parts, ","))
	}
}
