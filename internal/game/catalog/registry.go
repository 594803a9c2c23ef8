package catalog

import (
	"fmt"
	"sort"
)

// Registry holds all loaded item definitions indexed by ID.
//
// A Registry is populated at startup and read-only afterwards.
type Registry struct {
	items  map[string]*ItemDef
	sorted []*ItemDef
}

// NewRegistry returns an empty Registry.
//
// Postcondition: the internal map is initialised.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]*ItemDef)}
}

// Register adds d to the registry.
//
// Precondition:  d must not be nil and must have passed Validate.
// Postcondition: Item(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) Register(d *ItemDef) error {
	if _, exists := r.items[d.ID]; exists {
		return fmt.Errorf("catalog: Registry.Register: item ID %q already registered", d.ID)
	}
	r.items[d.ID] = d
	r.sorted = nil
	return nil
}

// RegisterAll registers every def, stopping at the first collision.
func (r *Registry) RegisterAll(defs []*ItemDef) error {
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// Item returns the ItemDef for the given id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (r *Registry) Item(id string) (*ItemDef, bool) {
	d, ok := r.items[id]
	return d, ok
}

// All returns every registered ItemDef ordered by ID.
//
// Postcondition: the order is stable across calls, so seeded drafts replay.
func (r *Registry) All() []*ItemDef {
	if r.sorted == nil {
		r.sorted = make([]*ItemDef, 0, len(r.items))
		for _, d := range r.items {
			r.sorted = append(r.sorted, d)
		}
		sort.Slice(r.sorted, func(i, j int) bool { return r.sorted[i].ID < r.sorted[j].ID })
	}
	out := make([]*ItemDef, len(r.sorted))
	copy(out, r.sorted)
	return out
}

// Len returns the number of registered items.
func (r *Registry) Len() int { return len(r.items) }
