package character

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/tilequest/internal/game/inventory"
	"github.com/cory-johannsen/tilequest/internal/game/ruleset"
)

// Build creates a Player of class at level with the given gear equipped.
//
// Precondition: name must be non-empty; class must be non-nil; level >= 1.
// Postcondition: Returns a Player at full statistics, or a non-nil error.
func Build(name string, class *ruleset.Class, level int, gear ...*inventory.GearDef) (*Player, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if class == nil {
		return nil, errors.New("class must not be nil")
	}
	if level < 1 {
		return nil, fmt.Errorf("level must be >= 1, got %d", level)
	}
	p := &Player{
		Name:  name,
		Class: class,
		Level: level,
	}
	for _, g := range gear {
		if g == nil {
			return nil, errors.New("gear must not be nil")
		}
		if _, err := p.Equipment.Equip(g); err != nil {
			return nil, err
		}
	}
	if level > 1 && class.ExperiencePerLevel > 0 {
		p.Experience = (level - 1) * class.ExperiencePerLevel
	}
	return p, nil
}
