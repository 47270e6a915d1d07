package sorting

import "fmt"

// Catalog maps type pairs to their sort definitions. It is populated at
// startup and only read afterwards, so lookups need no locking.
type Catalog struct {
	defs map[TypePair]Definition
}

// NewCatalog registers every definition and fails on the first
// configuration error.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[TypePair]Definition, len(defs))}
	for _, def := range defs {
		if err := c.Register(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustCatalog is NewCatalog for process startup.
func MustCatalog(defs ...Definition) *Catalog {
	c, err := NewCatalog(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Register adds def. Must not be called once the catalog is shared.
func (c *Catalog) Register(def Definition) error {
	if _, exists := c.defs[def.pair]; exists {
		return fmt.Errorf("%s: %w", def.pair, ErrDuplicateDefinition)
	}
	sealed, err := def.sealed()
	if err != nil {
		return err
	}
	c.defs[def.pair] = sealed
	return nil
}

// Resolve returns the definition registered for exactly pair.
func (c *Catalog) Resolve(pair TypePair) (Definition, error) {
	if c != nil {
		if def, ok := c.defs[pair]; ok {
			return def, nil
		}
	}
	return Definition{}, &NotConfiguredError{Pair: pair}
}

// MappingsFor returns the mapping table for (TSource, TDest).
func MappingsFor[TSource, TDest any](c *Catalog) ([]Mapping, error) {
	def, err := c.Resolve(PairOf[TSource, TDest]())
	if err != nil {
		return nil, err
	}
	return def.Mappings(), nil
}
