package sorting

import "strings"

// OrderStep is one ordering instruction for the query layer.
type OrderStep struct {
	Path      string
	Ascending bool
}

type sortToken struct {
	field      string
	descending bool
}

// parseSort splits a raw sort parameter into tokens. Blank tokens between
// commas are skipped. A token is "<field> [direction]"; a leading '-' on the
// field is shorthand for descending.
func parseSort(sort string) []sortToken {
	var tokens []sortToken
	for _, raw := range strings.Split(sort, ",") {
		parts := strings.Fields(raw)
		if len(parts) == 0 {
			continue
		}
		tok := sortToken{field: parts[0]}
		if strings.HasPrefix(tok.field, "-") {
			tok.field = tok.field[1:]
			tok.descending = true
		}
		if len(parts) > 1 && isDescending(parts[1]) {
			tok.descending = true
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func isDescending(direction string) bool {
	return strings.EqualFold(direction, "desc") || strings.EqualFold(direction, "descending")
}

// Validate reports whether every field in sort is known to def. An empty
// sort is valid. Direction tokens are not checked here.
func Validate(sort string, def Definition) bool {
	for _, tok := range parseSort(sort) {
		if _, ok := def.Lookup(tok.field); !ok {
			return false
		}
	}
	return true
}

// ValidateSort resolves the definition for (TSource, TDest) and validates
// sort against it. The error is only set for configuration problems.
func ValidateSort[TSource, TDest any](c *Catalog, sort string) (bool, error) {
	def, err := c.Resolve(PairOf[TSource, TDest]())
	if err != nil {
		return false, err
	}
	return Validate(sort, def), nil
}

// Expand turns sort into order steps using mappings. Duplicated fields are
// kept in encounter order.
func Expand(sort string, mappings []Mapping) ([]OrderStep, error) {
	return expand(sort, func(field string) (Mapping, bool) { return lookup(mappings, field) })
}

func expand(sort string, find func(field string) (Mapping, bool)) ([]OrderStep, error) {
	tokens := parseSort(sort)
	steps := make([]OrderStep, 0, len(tokens))
	for _, tok := range tokens {
		m, ok := find(tok.field)
		if !ok {
			return nil, &InvalidSortError{Sort: sort, Field: tok.field}
		}
		ascending := !tok.descending
		if m.Reverse {
			ascending = !ascending
		}
		steps = append(steps, OrderStep{Path: m.Expression, Ascending: ascending})
	}
	return steps, nil
}

// SortSteps resolves the definition for (TSource, TDest) and expands sort.
func SortSteps[TSource, TDest any](c *Catalog, sort string) ([]OrderStep, error) {
	def, err := c.Resolve(PairOf[TSource, TDest]())
	if err != nil {
		return nil, err
	}
	return expand(sort, def.Lookup)
}
