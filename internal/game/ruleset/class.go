package ruleset

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/tilequest/internal/game/sprite"
	"github.com/cory-johannsen/tilequest/internal/game/stats"
)

// LearnedSpell is a spell a class gains on reaching Level.
type LearnedSpell struct {
	SpellID string `yaml:"spell"`
	Level   int    `yaml:"level"`
}

// Class defines how a character (player or monster) grows with level and what
// defeating one is worth.
//
// Precondition: ID and Name must be non-empty after loading.
type Class struct {
	ID                  string             `yaml:"id"`
	Name                string             `yaml:"name"`
	Description         string             `yaml:"description"`
	InitialStatistics   stats.Value        `yaml:"initial_statistics"`
	LevelingStatistics  stats.Value        `yaml:"leveling_statistics"`
	Spells              []LearnedSpell     `yaml:"spells"`
	BaseExperienceValue int                `yaml:"base_experience_value"`
	BaseGoldValue       int                `yaml:"base_gold_value"`
	ExperiencePerLevel  int                `yaml:"experience_per_level"`
	Animations          []sprite.Animation `yaml:"animations"`
}

// Validate checks that the Class satisfies its invariants.
func (c *Class) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if c.InitialStatistics.HealthPoints < 1 {
		errs = append(errs, errors.New("initial_statistics.health_points must be >= 1"))
	}
	if c.BaseExperienceValue < 0 || c.BaseGoldValue < 0 {
		errs = append(errs, errors.New("base experience and gold values must be >= 0"))
	}
	if c.ExperiencePerLevel < 0 {
		errs = append(errs, errors.New("experience_per_level must be >= 0"))
	}
	for _, s := range c.Spells {
		if s.SpellID == "" || s.Level < 1 {
			errs = append(errs, fmt.Errorf("spell entry %+v needs a spell id and level >= 1", s))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("class %q: %w", c.ID, errors.Join(errs...))
	}
	return nil
}

// StatisticsAt returns the maximum statistics of a character of this class at level.
// Levels below 1 are treated as 1.
func (c *Class) StatisticsAt(level int) stats.Value {
	v := c.InitialStatistics
	for l := 2; l <= level; l++ {
		v = v.Add(c.LevelingStatistics)
	}
	return v
}

// ExperienceValue returns the experience awarded for defeating a character of
// this class at level.
func (c *Class) ExperienceValue(level int) int {
	return c.BaseExperienceValue * level
}

// GoldValue returns the gold awarded for defeating a character of this class at level.
func (c *Class) GoldValue(level int) int {
	return c.BaseGoldValue * level
}

// LevelForExperience returns the level reached with xp total experience.
// A class with no experience_per_level never levels past 1.
func (c *Class) LevelForExperience(xp int) int {
	if c.ExperiencePerLevel <= 0 || xp <= 0 {
		return 1
	}
	return 1 + xp/c.ExperiencePerLevel
}

// SpellsAt returns the IDs of spells known at level, in definition order.
func (c *Class) SpellsAt(level int) []string {
	var ids []string
	for _, s := range c.Spells {
		if s.Level <= level {
			ids = append(ids, s.SpellID)
		}
	}
	return ids
}

// LoadClasses reads all .yaml files in dir and parses each as a Class.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed, valid classes (may be empty slice) or a non-nil error.
func LoadClasses(dir string) ([]*Class, error) {
	return loadDefinitions[Class](dir, "class")
}
