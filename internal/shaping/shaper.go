package shaping

import (
	"reflect"
	"strings"

	"github.com/samber/lo"
)

// LinkInjector returns the links of one item; the result is stored under
// LinksKey.
type LinkInjector[T any] func(item T) (any, error)

// parseFields splits a fields parameter, dropping blanks and repeated names
// (first occurrence wins, case-insensitive).
func parseFields(fields string) []string {
	parts := lo.Map(strings.Split(fields, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	parts = lo.Filter(parts, func(p string, _ int) bool { return p != "" })
	return lo.UniqBy(parts, strings.ToLower)
}

// Validate reports whether every requested field exists. Empty means all
// fields and is valid.
func (tf *TypeFields) Validate(fields string) bool {
	for _, name := range parseFields(fields) {
		if !tf.Has(name) {
			return false
		}
	}
	return true
}

// Shape reduces src to the requested fields. src must be a value of (or a
// pointer to) the registered type.
func (tf *TypeFields) Shape(src any, fields string) (Record, error) {
	rv := reflect.ValueOf(src)
	if !rv.IsValid() {
		return Record{}, &ShapingDefectError{Type: tf.typ, Field: "<nil>"}
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Record{}, &ShapingDefectError{Type: tf.typ, Field: "<nil>"}
		}
		rv = rv.Elem()
	}
	if rv.Type() != tf.typ {
		return Record{}, &ShapingDefectError{Type: tf.typ, Field: "<" + rv.Type().String() + ">"}
	}

	requested := parseFields(fields)
	if len(requested) == 0 {
		rec := Record{entries: make([]Entry, 0, len(tf.top))}
		for _, f := range tf.top {
			rec.Set(f.Name, f.value(rv))
		}
		return rec, nil
	}

	rec := Record{entries: make([]Entry, 0, len(requested))}
	for _, name := range requested {
		f, ok := tf.Lookup(name)
		if !ok {
			return Record{}, &ShapingDefectError{Type: tf.typ, Field: name}
		}
		rec.Set(f.Name, f.value(rv))
	}
	return rec, nil
}

func (f Field) value(rv reflect.Value) any {
	v := rv.FieldByIndex(f.index)
	if !f.Nested {
		return v.Interface()
	}
	if f.outerPtr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.FieldByIndex(f.inner).Interface()
}

// ValidateFields checks fields against the table of T. The error is only set
// when T was never registered.
func ValidateFields[T any](r *Registry, fields string) (bool, error) {
	tf, err := FieldsOf[T](r)
	if err != nil {
		return false, err
	}
	return tf.Validate(fields), nil
}

// Shape shapes a single T.
func Shape[T any](r *Registry, src T, fields string) (Record, error) {
	tf, err := FieldsOf[T](r)
	if err != nil {
		return Record{}, err
	}
	return tf.Shape(src, fields)
}

// ShapeCollection shapes every element eagerly. When inject is set its
// result is stored under LinksKey on each record.
func ShapeCollection[T any](r *Registry, srcs []T, fields string, inject LinkInjector[T]) ([]Record, error) {
	tf, err := FieldsOf[T](r)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(srcs))
	for _, src := range srcs {
		rec, err := tf.Shape(src, fields)
		if err != nil {
			return nil, err
		}
		if inject != nil {
			links, err := inject(src)
			if err != nil {
				return nil, err
			}
			rec.Set(LinksKey, links)
		}
		out = append(out, rec)
	}
	return out, nil
}
