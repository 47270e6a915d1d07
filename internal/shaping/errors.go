package shaping

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNotRegistered is returned for DTO types missing from the registry.
	ErrNotRegistered = errors.New("type not registered for shaping")
	// ErrShapingDefect marks a field that passed validation but could not be read.
	ErrShapingDefect = errors.New("shaping defect")
	// ErrDuplicateField rejects types where two fields share a name.
	ErrDuplicateField = errors.New("duplicate shapeable field")
	// ErrNotStruct rejects non struct types at registration.
	ErrNotStruct = errors.New("shapeable type must be a struct")
)

type NotRegisteredError struct {
	Type reflect.Type
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("type '%s' is not registered for data shaping", e.Type)
}

func (e *NotRegisteredError) Unwrap() error { return ErrNotRegistered }

// ShapingDefectError is an internal error; callers validate before shaping.
type ShapingDefectError struct {
	Type  reflect.Type
	Field string
}

func (e *ShapingDefectError) Error() string {
	return fmt.Sprintf("cannot shape field %q of type '%s'", e.Field, e.Type)
}

func (e *ShapingDefectError) Unwrap() error { return ErrShapingDefect }

// InvalidFieldsError carries the raw fields parameter that failed validation.
type InvalidFieldsError struct {
	Fields string
}

func (e *InvalidFieldsError) Error() string {
	return fmt.Sprintf("The provided data shaping fields are not valid: '%s'", e.Fields)
}

// IsConfiguration reports whether err is a registry configuration defect.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrNotRegistered) ||
		errors.Is(err, ErrDuplicateField) ||
		errors.Is(err, ErrNotStruct)
}
