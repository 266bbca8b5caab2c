package npc

import (
	"fmt"

	"github.com/cory-johannsen/tilequest/internal/game/ruleset"
)

// Bestiary holds monster templates and spawns instances from them.
// It is not safe for concurrent use; the caller must serialise access.
type Bestiary struct {
	templates map[string]*Template
	rules     *ruleset.Registry
	counter   uint64
}

// NewBestiary creates an empty Bestiary resolving classes and spells from rules.
//
// Precondition: rules must not be nil.
func NewBestiary(rules *ruleset.Registry) *Bestiary {
	return &Bestiary{templates: make(map[string]*Template), rules: rules}
}

// Register adds tmpl after checking that its class and spells resolve.
//
// Postcondition: Template(tmpl.ID) returns tmpl; returns error on duplicate ID or unresolved references.
func (b *Bestiary) Register(tmpl *Template) error {
	if _, exists := b.templates[tmpl.ID]; exists {
		return fmt.Errorf("npc: template ID %q already registered", tmpl.ID)
	}
	if _, ok := b.rules.Class(tmpl.Class); !ok {
		return fmt.Errorf("npc: template %q references unknown class %q", tmpl.ID, tmpl.Class)
	}
	if _, err := b.rules.ResolveSpells(tmpl.Spells); err != nil {
		return fmt.Errorf("npc: template %q: %w", tmpl.ID, err)
	}
	b.templates[tmpl.ID] = tmpl
	return nil
}

// Template returns the template with id.
//
// Postcondition: Returns (tmpl, true) if found, or (nil, false) otherwise.
func (b *Bestiary) Template(id string) (*Template, bool) {
	t, ok := b.templates[id]
	return t, ok
}

// Spawn creates a new Instance of templateID with a unique ID.
//
// Postcondition: Returns a full-health Instance, or an error if templateID is unknown.
func (b *Bestiary) Spawn(templateID string) (*Instance, error) {
	tmpl, ok := b.templates[templateID]
	if !ok {
		return nil, fmt.Errorf("npc: unknown template %q", templateID)
	}
	class, _ := b.rules.Class(tmpl.Class)
	spells, err := b.rules.ResolveSpells(tmpl.Spells)
	if err != nil {
		return nil, err
	}
	b.counter++
	id := fmt.Sprintf("%s-%d", tmpl.ID, b.counter)
	return NewInstance(id, tmpl, class, spells), nil
}

// LoadBestiary loads every template in dir into a new Bestiary.
func LoadBestiary(dir string, rules *ruleset.Registry) (*Bestiary, error) {
	templates, err := LoadTemplates(dir)
	if err != nil {
		return nil, err
	}
	b := NewBestiary(rules)
	for _, t := range templates {
		if err := b.Register(t); err != nil {
			return nil, err
		}
	}
	return b, nil
}
