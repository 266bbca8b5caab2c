// Package npc provides monster template definitions and the ephemeral monster
// instances spawned from them for a single combat.
package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tilequest/internal/game/dice"
	"github.com/cory-johannsen/tilequest/internal/game/sprite"
)

// Template defines a reusable monster archetype loaded from YAML.
type Template struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Class       string `yaml:"class"`
	Level       int    `yaml:"level"`
	// Spells lists spell IDs; only battle-usable ones become combat actions.
	Spells             []string      `yaml:"spells"`
	DamageRange        dice.IntRange `yaml:"damage_range"`
	HealthDefenseRange dice.IntRange `yaml:"health_defense_range"`
	MagicDefenseRange  dice.IntRange `yaml:"magic_defense_range"`
	// DefendPercentage is the chance (clamped to 0-100 when used) that the
	// monster tries a defensive action on its turn.
	DefendPercentage int                `yaml:"defend_percentage"`
	BonusExperience  dice.IntRange      `yaml:"bonus_experience"`
	BonusGold        dice.IntRange      `yaml:"bonus_gold"`
	GearDrops        []GearDrop         `yaml:"gear_drops"`
	AIHook           string             `yaml:"ai_hook"`
	Animations       []sprite.Animation `yaml:"animations"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID, Name and Class are non-empty, Level >= 1 and
// every range and drop is well formed; returns an error on the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.Class == "" {
		return fmt.Errorf("npc template %q: class must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("npc template %q: level must be >= 1", t.ID)
	}
	for name, r := range map[string]dice.IntRange{
		"damage_range":         t.DamageRange,
		"health_defense_range": t.HealthDefenseRange,
		"magic_defense_range":  t.MagicDefenseRange,
		"bonus_experience":     t.BonusExperience,
		"bonus_gold":           t.BonusGold,
	} {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("npc template %q: %s: %w", t.ID, name, err)
		}
	}
	for i, d := range t.GearDrops {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("npc template %q: gear_drops[%d]: %w", t.ID, i, err)
		}
	}
	return nil
}

// ClampedDefendPercentage returns DefendPercentage limited to [0, 100].
func (t *Template) ClampedDefendPercentage() int {
	switch {
	case t.DefendPercentage < 0:
		return 0
	case t.DefendPercentage > 100:
		return 100
	default:
		return t.DefendPercentage
	}
}

// LoadTemplateFromBytes parses a single monster template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
