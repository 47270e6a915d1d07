package shaping

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

var timeType = reflect.TypeFor[time.Time]()

// Field is one addressable name of a DTO. Nested fields are addressed as
// "outer.inner" and only one level deep.
type Field struct {
	Name   string
	Nested bool

	index    []int
	outerPtr bool
	inner    []int
}

// TypeFields is the descriptor table of a registered DTO type.
type TypeFields struct {
	typ    reflect.Type
	top    []Field
	all    []Field
	byName map[string]Field
}

func (tf *TypeFields) Type() reflect.Type { return tf.typ }

// Names lists every addressable name, each top level field followed by its
// nested fields.
func (tf *TypeFields) Names() []string {
	out := make([]string, len(tf.all))
	for i, f := range tf.all {
		out[i] = f.Name
	}
	return out
}

// TopLevel lists the top level names in declaration order.
func (tf *TypeFields) TopLevel() []string {
	out := make([]string, len(tf.top))
	for i, f := range tf.top {
		out[i] = f.Name
	}
	return out
}

// Lookup finds a field ignoring case.
func (tf *TypeFields) Lookup(name string) (Field, bool) {
	f, ok := tf.byName[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

func (tf *TypeFields) Has(name string) bool {
	_, ok := tf.Lookup(name)
	return ok
}

// Registry holds field tables per DTO type. Types are registered during
// startup; afterwards the registry is read-only and safe for concurrent use.
type Registry struct {
	types map[reflect.Type]*TypeFields
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[reflect.Type]*TypeFields)}
}

// Register computes the field table of T.
func Register[T any](r *Registry) error {
	_, err := r.register(reflect.TypeFor[T]())
	return err
}

func (r *Registry) register(t reflect.Type) (*TypeFields, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if tf, ok := r.types[t]; ok {
		return tf, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s: %w", t, ErrNotStruct)
	}

	tf := &TypeFields{typ: t, byName: map[string]Field{}}
	if err := collect(t, nil, tf); err != nil {
		return nil, err
	}
	r.types[t] = tf
	return tf, nil
}

// FieldsOf returns the table for T.
func FieldsOf[T any](r *Registry) (*TypeFields, error) {
	return r.Fields(reflect.TypeFor[T]())
}

// Fields returns the table for t.
func (r *Registry) Fields(t reflect.Type) (*TypeFields, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if r != nil {
		if tf, ok := r.types[t]; ok {
			return tf, nil
		}
	}
	return nil, &NotRegisteredError{Type: t}
}

// collect walks the exported fields of t. Embedded structs are promoted the
// way encoding/json promotes them.
func collect(t reflect.Type, prefix []int, tf *TypeFields) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, skip := fieldName(sf)
		if skip {
			continue
		}
		index := appendIndex(prefix, i)

		if sf.Anonymous && !hasJSONName(sf) && sf.Type.Kind() == reflect.Struct {
			if err := collect(sf.Type, index, tf); err != nil {
				return err
			}
			continue
		}

		outer := Field{Name: name, index: index}
		if err := tf.add(outer); err != nil {
			return err
		}
		tf.top = append(tf.top, outer)

		nestedType, isPtr := composite(sf.Type)
		if nestedType == nil {
			continue
		}
		for j := 0; j < nestedType.NumField(); j++ {
			inner := nestedType.Field(j)
			innerName, skip := fieldName(inner)
			if skip || inner.Anonymous {
				continue
			}
			nested := Field{
				Name:     name + "." + innerName,
				Nested:   true,
				index:    index,
				outerPtr: isPtr,
				inner:    []int{j},
			}
			if err := tf.add(nested); err != nil {
				return err
			}
		}
	}
	return nil
}

func (tf *TypeFields) add(f Field) error {
	key := strings.ToLower(f.Name)
	if _, dup := tf.byName[key]; dup {
		return fmt.Errorf("%s.%s: %w", tf.typ, f.Name, ErrDuplicateField)
	}
	tf.byName[key] = f
	tf.all = append(tf.all, f)
	return nil
}

// composite returns the struct type behind t when its fields should be
// addressable, or nil for leaves.
func composite(t reflect.Type) (reflect.Type, bool) {
	isPtr := false
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
		isPtr = true
	}
	if t.Kind() != reflect.Struct || t == timeType || t.ConvertibleTo(timeType) {
		return nil, false
	}
	return t, isPtr
}

func fieldName(sf reflect.StructField) (string, bool) {
	if !sf.IsExported() && !(sf.Anonymous && sf.Type.Kind() == reflect.Struct) {
		return "", true
	}
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return sf.Name, false
}

func hasJSONName(sf reflect.StructField) bool {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	return name != "" && name != "-"
}

func appendIndex(prefix []int, i int) []int {
	out := make([]int, len(prefix)+1)
	copy(out, prefix)
	out[len(prefix)] = i
	return out
}
