package db

import (
	"fmt"
	"strings"

	"habittracker/internal/sorting"
)

// Columns maps sort expressions onto SQL column names. Only whitelisted
// expressions ever reach a query string.
type Columns map[string]string

// OrderBy renders steps as an ORDER BY clause. tieBreak is appended unless
// the steps already order by it, so paging stays stable. With no steps the
// fallback expression is used.
func OrderBy(steps []sorting.OrderStep, cols Columns, fallback, tieBreak string) (string, error) {
	if len(steps) == 0 && fallback != "" {
		steps = []sorting.OrderStep{{Path: fallback, Ascending: true}}
	}
	parts := make([]string, 0, len(steps)+1)
	seen := make(map[string]bool, len(steps))
	for _, s := range steps {
		col, ok := cols[s.Path]
		if !ok {
			return "", fmt.Errorf("kolom sort untuk %q tidak dikenal", s.Path)
		}
		if seen[col] {
			continue
		}
		seen[col] = true
		dir := "ASC"
		if !s.Ascending {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	if tieBreak != "" && !seen[tieBreak] {
		parts = append(parts, tieBreak+" ASC")
	}
	if len(parts) == 0 {
		return "", nil
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// NullString stores nil or blank strings as NULL.
func NullString(s *string) any {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return *s
}
