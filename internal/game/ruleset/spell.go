package ruleset

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/tilequest/internal/game/stats"
)

// Spell defines a castable effect.
type Spell struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	MagicPointCost int    `yaml:"magic_point_cost"`
	// Offensive spells are aimed at the opposing side and reduced by the
	// target's magic defense.
	Offensive         bool        `yaml:"offensive"`
	UsableInBattle    bool        `yaml:"usable_in_battle"`
	TargetEffectRange stats.Range `yaml:"target_effect_range"`
	AdjacentTargets   int         `yaml:"adjacent_targets"`
	// Duration in rounds; 0 applies the effect permanently.
	Duration   int    `yaml:"duration"`
	CastingCue string `yaml:"casting_cue"`
	ImpactCue  string `yaml:"impact_cue"`
}

// Validate checks that the Spell satisfies its invariants.
func (s *Spell) Validate() error {
	var errs []error
	if s.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if s.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if s.MagicPointCost < 0 {
		errs = append(errs, errors.New("magic_point_cost must be >= 0"))
	}
	if s.AdjacentTargets < 0 {
		errs = append(errs, errors.New("adjacent_targets must be >= 0"))
	}
	if s.Duration < 0 {
		errs = append(errs, errors.New("duration must be >= 0"))
	}
	if err := s.TargetEffectRange.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("spell %q: %w", s.ID, errors.Join(errs...))
	}
	return nil
}

// LoadSpells reads all .yaml files in dir and parses each as a Spell.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed, valid spells (may be empty slice) or a non-nil error.
func LoadSpells(dir string) ([]*Spell, error) {
	return loadDefinitions[Spell](dir, "spell")
}
