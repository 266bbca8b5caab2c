// Package inventory provides definitions and loaders for consumable items and
// gear, and the party pack that holds them.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tilequest/internal/game/stats"
)

// Kind constants for ItemDef.Kind.
const (
	KindConsumable = "consumable"
	KindJunk       = "junk"
)

// validKinds is the set of valid ItemDef kinds.
var validKinds = map[string]bool{
	KindConsumable: true,
	KindJunk:       true,
}

// ItemDef defines the static properties of a stackable item loaded from YAML.
type ItemDef struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	Kind           string `yaml:"kind"`
	UsableInBattle bool   `yaml:"usable_in_battle"`
	// Offensive items are thrown at the opposing side.
	Offensive         bool        `yaml:"offensive"`
	TargetEffectRange stats.Range `yaml:"target_effect_range"`
	AdjacentTargets   int         `yaml:"adjacent_targets"`
	Duration          int         `yaml:"duration"`
	ImpactCue         string      `yaml:"impact_cue"`
	MaxStack          int         `yaml:"max_stack"`
	Value             int         `yaml:"value"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("Kind must be one of consumable, junk; got %q", d.Kind))
	}
	if d.MaxStack < 1 {
		errs = append(errs, errors.New("MaxStack must be >= 1"))
	}
	if d.AdjacentTargets < 0 || d.Duration < 0 {
		errs = append(errs, errors.New("AdjacentTargets and Duration must be >= 0"))
	}
	if d.UsableInBattle && d.Kind != KindConsumable {
		errs = append(errs, errors.New("only consumables may be usable in battle"))
	}
	if err := d.TargetEffectRange.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// LoadItems reads all *.yaml and *.yml files from dir, parses each as an
// ItemDef, validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadItems(dir string) ([]*ItemDef, error) {
	var items []*ItemDef
	err := eachYAML(dir, func(path string, data []byte) error {
		var d ItemDef
		if err := yaml.Unmarshal(data, &d); err != nil {
			return fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
		}
		items = append(items, &d)
		return nil
	})
	return items, err
}

// eachYAML calls fn with the contents of every *.yaml and *.yml file in dir.
func eachYAML(dir string, fn func(path string, data []byte) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("inventory: cannot read directory %q: %w", dir, err)
	}
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("inventory: cannot read file %q: %w", path, err)
		}
		if err := fn(path, data); err != nil {
			return err
		}
	}
	return nil
}
