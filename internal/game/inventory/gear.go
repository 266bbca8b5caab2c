package inventory

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tilequest/internal/game/dice"
	"github.com/cory-johannsen/tilequest/internal/game/stats"
)

// GearDef defines a piece of equippable gear loaded from YAML.
type GearDef struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Slot        EquipmentSlot `yaml:"slot"`
	// OwnerBuff is added to the wearer's maximum statistics.
	OwnerBuff          stats.Value   `yaml:"owner_buff"`
	TargetDamageRange  dice.IntRange `yaml:"target_damage_range"`
	HealthDefenseRange dice.IntRange `yaml:"health_defense_range"`
	MagicDefenseRange  dice.IntRange `yaml:"magic_defense_range"`
	Value              int           `yaml:"value"`
}

// Validate reports an error if the GearDef is missing required fields or contains illegal values.
//
// Precondition: g is non-nil.
// Postcondition: Returns nil iff the def is well-formed.
func (g *GearDef) Validate() error {
	var errs []error
	if g.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if g.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if _, ok := validSlots[g.Slot]; !ok {
		errs = append(errs, fmt.Errorf("slot %q is not a valid equipment slot", g.Slot))
	}
	for _, r := range []dice.IntRange{g.TargetDamageRange, g.HealthDefenseRange, g.MagicDefenseRange} {
		if err := r.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if g.Slot != SlotWeapon && !g.TargetDamageRange.IsZero() {
		errs = append(errs, errors.New("only weapons may carry a target_damage_range"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("gear %q: %w", g.ID, errors.Join(errs...))
	}
	return nil
}

// LoadGear reads all YAML files from dir, parses each as a GearDef and validates it.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid GearDefs or the first encountered error.
func LoadGear(dir string) ([]*GearDef, error) {
	var gear []*GearDef
	err := eachYAML(dir, func(path string, data []byte) error {
		var g GearDef
		if err := yaml.Unmarshal(data, &g); err != nil {
			return fmt.Errorf("LoadGear: cannot parse file %q: %w", path, err)
		}
		if err := g.Validate(); err != nil {
			return fmt.Errorf("LoadGear: invalid gear in %q: %w", path, err)
		}
		gear = append(gear, &g)
		return nil
	})
	return gear, err
}
