package ruleset

import "fmt"

// Registry provides lookup of classes and spells by ID.
type Registry struct {
	classes map[string]*Class
	spells  map[string]*Spell
}

// NewRegistry returns an empty Registry.
//
// Postcondition: Returns a non-nil *Registry ready to accept registrations.
func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[string]*Class),
		spells:  make(map[string]*Spell),
	}
}

// RegisterClass adds c to the registry.
//
// Precondition: c must not be nil.
// Postcondition: Class(c.ID) returns c; returns error if c.ID already registered.
func (r *Registry) RegisterClass(c *Class) error {
	if _, exists := r.classes[c.ID]; exists {
		return fmt.Errorf("ruleset: Registry.RegisterClass: class ID %q already registered", c.ID)
	}
	r.classes[c.ID] = c
	return nil
}

// RegisterSpell adds s to the registry.
//
// Precondition: s must not be nil.
// Postcondition: Spell(s.ID) returns s; returns error if s.ID already registered.
func (r *Registry) RegisterSpell(s *Spell) error {
	if _, exists := r.spells[s.ID]; exists {
		return fmt.Errorf("ruleset: Registry.RegisterSpell: spell ID %q already registered", s.ID)
	}
	r.spells[s.ID] = s
	return nil
}

// Class returns the Class for id, if registered.
func (r *Registry) Class(id string) (*Class, bool) {
	c, ok := r.classes[id]
	return c, ok
}

// Spell returns the Spell for id, if registered.
func (r *Registry) Spell(id string) (*Spell, bool) {
	s, ok := r.spells[id]
	return s, ok
}

// ResolveSpells maps ids to registered spells.
//
// Postcondition: returns an error naming the first unknown id.
func (r *Registry) ResolveSpells(ids []string) ([]*Spell, error) {
	out := make([]*Spell, 0, len(ids))
	for _, id := range ids {
		s, ok := r.spells[id]
		if !ok {
			return nil, fmt.Errorf("ruleset: unknown spell %q", id)
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadRegistry loads classes from classDir and spells from spellDir into a new Registry.
func LoadRegistry(classDir, spellDir string) (*Registry, error) {
	r := NewRegistry()
	classes, err := LoadClasses(classDir)
	if err != nil {
		return nil, err
	}
	for _, c := range classes {
		if err := r.RegisterClass(c); err != nil {
			return nil, err
		}
	}
	spells, err := LoadSpells(spellDir)
	if err != nil {
		return nil, err
	}
	for _, s := range spells {
		if err := r.RegisterSpell(s); err != nil {
			return nil, err
		}
	}
	for _, c := range r.classes {
		for _, ls := range c.Spells {
			if _, ok := r.spells[ls.SpellID]; !ok {
				return nil, fmt.Errorf("ruleset: class %q references unknown spell %q", c.ID, ls.SpellID)
			}
		}
	}
	return r, nil
}
