package sorting

import (
	"fmt"
	"reflect"
	"strings"
)

// Mapping binds a client facing sort field to the expression evaluated
// against the entity. Reverse flips the requested direction.
type Mapping struct {
	SortField  string
	Expression string
	Reverse    bool
}

// TypePair identifies a (source DTO, destination entity) pair.
type TypePair struct {
	Source      reflect.Type
	Destination reflect.Type
}

// PairOf returns the TypePair for TSource and TDest.
func PairOf[TSource, TDest any]() TypePair {
	return TypePair{
		Source:      reflect.TypeFor[TSource](),
		Destination: reflect.TypeFor[TDest](),
	}
}

func (p TypePair) String() string {
	return fmt.Sprintf("%s -> %s", typeName(p.Source), typeName(p.Destination))
}

// Definition owns the mappings of exactly one type pair. It is immutable
// once built.
type Definition struct {
	pair     TypePair
	mappings []Mapping
	index    map[string]int
}

// Define builds the definition for (TSource, TDest).
func Define[TSource, TDest any](mappings ...Mapping) Definition {
	return NewDefinition(PairOf[TSource, TDest](), mappings...)
}

// NewDefinition builds a definition for an explicit pair.
func NewDefinition(pair TypePair, mappings ...Mapping) Definition {
	own := make([]Mapping, len(mappings))
	copy(own, mappings)
	return Definition{pair: pair, mappings: own}
}

func (d Definition) Pair() TypePair { return d.pair }

// Mappings returns a copy of the mapping table.
func (d Definition) Mappings() []Mapping {
	out := make([]Mapping, len(d.mappings))
	copy(out, d.mappings)
	return out
}

// Lookup finds the mapping for field, ignoring case.
func (d Definition) Lookup(field string) (Mapping, bool) {
	if d.index != nil {
		i, ok := d.index[strings.ToLower(field)]
		if !ok {
			return Mapping{}, false
		}
		return d.mappings[i], true
	}
	return lookup(d.mappings, field)
}

// sealed validates the table and builds the case-insensitive index.
func (d Definition) sealed() (Definition, error) {
	index := make(map[string]int, len(d.mappings))
	for i, m := range d.mappings {
		key := strings.ToLower(strings.TrimSpace(m.SortField))
		if key == "" {
			return Definition{}, fmt.Errorf("%s: mapping %d: %w", d.pair, i, ErrEmptySortField)
		}
		if _, dup := index[key]; dup {
			return Definition{}, fmt.Errorf("%s: %q: %w", d.pair, m.SortField, ErrDuplicateSortField)
		}
		index[key] = i
	}
	d.index = index
	return d, nil
}

func lookup(mappings []Mapping, field string) (Mapping, bool) {
	for _, m := range mappings {
		if strings.EqualFold(strings.TrimSpace(m.SortField), field) {
			return m, true
		}
	}
	return Mapping{}, false
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}
