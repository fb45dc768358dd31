package memory

import (
	"fmt"
	"strings"

	apperrors "cvwizard-backend/pkg/errors"
)

// matchFormula evaluates the subset of the store formula language the
// services emit: {field}='literal' comparisons combined with AND(...).
// An empty formula matches everything.
func matchFormula(fields map[string]interface{}, formula string) (bool, error) {
	formula = strings.TrimSpace(formula)
	if formula == "" {
		return true, nil
	}

	if strings.HasPrefix(formula, "AND(") && strings.HasSuffix(formula, ")") {
		inner := formula[len("AND(") : len(formula)-1]
		for _, part := range splitTopLevel(inner) {
			ok, err := matchFormula(fields, part)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}

	field, value, err := parseEquals(formula)
	if err != nil {
		return false, err
	}

	actual := fields[field]
	if actual == nil {
		return value == "", nil
	}
	return fmt.Sprintf("%v", actual) == value, nil
}

// parseEquals parses a {field}='value' comparison, unescaping \' in the
// value.
func parseEquals(expr string) (string, string, error) {
	expr = strings.TrimSpace(expr)
	if !strings.HasPrefix(expr, "{") {
		return "", "", unsupportedFormula(expr)
	}

	closeBrace := strings.Index(expr, "}")
	if closeBrace < 0 {
		return "", "", unsupportedFormula(expr)
	}
	field := expr[1:closeBrace]

	rest := strings.TrimSpace(expr[closeBrace+1:])
	if !strings.HasPrefix(rest, "=") {
		return "", "", unsupportedFormula(expr)
	}
	rest = strings.TrimSpace(rest[1:])
	if len(rest) < 2 || rest[0] != '\'' || rest[len(rest)-1] != '\'' {
		return "", "", unsupportedFormula(expr)
	}

	value := strings.ReplaceAll(rest[1:len(rest)-1], "\\'", "'")
	return field, value, nil
}

// splitTopLevel splits on commas that are not inside quoted literals
func splitTopLevel(s string) []string {
	var parts []string
	var depth int
	var inQuote bool
	start := 0

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			if i > 0 && s[i-1] == '\\' {
				continue
			}
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote {
				depth--
			}
		case ',':
			if !inQuote && depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func unsupportedFormula(expr string) error {
	return apperrors.NewInternalError(fmt.Sprintf("unsupported filter formula: %q", expr))
}
