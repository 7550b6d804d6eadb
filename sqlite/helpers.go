package sqlite

import (
	"fmt"
	"time"
)

// formatTime encodes t for storage. Timestamps are stored as UTC RFC3339
// text so they sort lexically.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime decodes a stored timestamp of the named column.
func parseTime(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return t, nil
}

// limitClause returns the LIMIT and OFFSET suffix of a query and its
// arguments. SQLite requires a LIMIT before OFFSET, so an offset alone
// uses LIMIT -1.
func limitClause(limit, offset int) (string, []any) {
	switch {
	case limit > 0 && offset > 0:
		return " LIMIT ? OFFSET ?", []any{limit, offset}
	case limit > 0:
		return " LIMIT ?", []any{limit}
	case offset > 0:
		return " LIMIT -1 OFFSET ?", []any{offset}
	default:
		return "", nil
	}
}
