package sorting

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when no definition exists for a type pair.
	ErrNotConfigured = errors.New("sort mapping not configured")
	// ErrDuplicateSortField rejects a definition that repeats a sort field.
	ErrDuplicateSortField = errors.New("duplicate sort field")
	// ErrDuplicateDefinition rejects a second definition for the same type pair.
	ErrDuplicateDefinition = errors.New("duplicate sort mapping definition")
	// ErrEmptySortField rejects a mapping without a client facing name.
	ErrEmptySortField = errors.New("empty sort field")
)

// NotConfiguredError is a programming error: the caller asked for a pair that
// was never registered.
type NotConfiguredError struct {
	Pair TypePair
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("the mapping from '%s' into '%s' is not defined",
		typeName(e.Pair.Source), typeName(e.Pair.Destination))
}

func (e *NotConfiguredError) Unwrap() error { return ErrNotConfigured }

// InvalidSortError carries the raw sort parameter that failed validation.
type InvalidSortError struct {
	Sort  string
	Field string
}

func (e *InvalidSortError) Error() string {
	return fmt.Sprintf("The provided sort parameter is not valid: '%s'", e.Sort)
}

// IsConfiguration reports whether err is a catalog configuration defect.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrNotConfigured) ||
		errors.Is(err, ErrDuplicateSortField) ||
		errors.Is(err, ErrDuplicateDefinition) ||
		errors.Is(err, ErrEmptySortField)
}
