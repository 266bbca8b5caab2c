package inventory

import "fmt"

// Registry holds all loaded item and gear definitions indexed by ID.
type Registry struct {
	items map[string]*ItemDef
	gear  map[string]*GearDef
}

// NewRegistry returns an empty Registry.
//
// Postcondition: all internal maps are initialised.
func NewRegistry() *Registry {
	return &Registry{
		items: make(map[string]*ItemDef),
		gear:  make(map[string]*GearDef),
	}
}

// RegisterItem adds d to the registry.
//
// Precondition:  d must not be nil.
// Postcondition: Item(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) RegisterItem(d *ItemDef) error {
	if _, exists := r.items[d.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterItem: item ID %q already registered", d.ID)
	}
	r.items[d.ID] = d
	return nil
}

// RegisterGear adds g to the registry.
//
// Precondition:  g must not be nil.
// Postcondition: Gear(g.ID) returns (g, true); returns error if g.ID already registered.
func (r *Registry) RegisterGear(g *GearDef) error {
	if _, exists := r.gear[g.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterGear: gear ID %q already registered", g.ID)
	}
	r.gear[g.ID] = g
	return nil
}

// Item returns the ItemDef for the given id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (r *Registry) Item(id string) (*ItemDef, bool) {
	d, ok := r.items[id]
	return d, ok
}

// Gear returns the GearDef for the given id and whether it was found.
func (r *Registry) Gear(id string) (*GearDef, bool) {
	g, ok := r.gear[id]
	return g, ok
}

// LoadRegistry loads items from itemDir and gear from gearDir into a new Registry.
func LoadRegistry(itemDir, gearDir string) (*Registry, error) {
	r := NewRegistry()
	items, err := LoadItems(itemDir)
	if err != nil {
		return nil, err
	}
	for _, d := range items {
		if err := r.RegisterItem(d); err != nil {
			return nil, err
		}
	}
	gear, err := LoadGear(gearDir)
	if err != nil {
		return nil, err
	}
	for _, g := range gear {
		if err := r.RegisterGear(g); err != nil {
			return nil, err
		}
	}
	return r, nil
}
