package repository

import "strings"

// inClause returns `column IN (?,?,...)` for count values, or "" when there
// are none so callers can skip the WHERE.
func inClause(column string, count int) string {
	if count <= 0 {
		return ""
	}
	return column + " IN (" + sqlPlaceholders(count) + ")"
}

func sqlPlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}

// stringArgs converts keys to the []any expected by database/sql.
func stringArgs(values []string) []any {
	args := make([]any, 0, len(values))
	for _, value := range values {
		args = append(args, value)
	}
	return args
}
