package npc

import (
	"fmt"

	"github.com/cory-johannsen/tilequest/internal/game/dice"
	"github.com/cory-johannsen/tilequest/internal/game/inventory"
)

// GearDrop is one piece of gear a monster may drop, with a percent chance.
type GearDrop struct {
	GearID     string `yaml:"gear"`
	Percentage int    `yaml:"percentage"`
}

// Validate checks that the drop names gear and has a chance in [1, 100].
func (d GearDrop) Validate() error {
	if d.GearID == "" {
		return fmt.Errorf("gear drop must have a non-empty gear id")
	}
	if d.Percentage < 1 || d.Percentage > 100 {
		return fmt.Errorf("gear drop %q: percentage must be in [1, 100], got %d", d.GearID, d.Percentage)
	}
	return nil
}

// LootResult holds the rewards rolled for a single defeated monster.
type LootResult struct {
	Experience int
	Gold       int
	Gear       []inventory.GearInstance
}

// GenerateLoot rolls the rewards for defeating inst. Experience and gold are
// the class values at the instance's level plus a bonus roll; each gear drop
// is rolled independently against its percentage.
//
// Precondition: inst and roller must not be nil.
// Postcondition: Experience and Gold are >= 0; every gear instance has a fresh InstanceID.
func GenerateLoot(inst *Instance, roller *dice.Roller) LootResult {
	tmpl := inst.Template
	result := LootResult{
		Experience: inst.Class.ExperienceValue(inst.Level) + roller.Range(tmpl.ID+" bonus experience", tmpl.BonusExperience),
		Gold:       inst.Class.GoldValue(inst.Level) + roller.Range(tmpl.ID+" bonus gold", tmpl.BonusGold),
	}
	if result.Experience < 0 {
		result.Experience = 0
	}
	if result.Gold < 0 {
		result.Gold = 0
	}
	for _, d := range tmpl.GearDrops {
		if roller.Percent(tmpl.ID+" drop "+d.GearID, d.Percentage) {
			result.Gear = append(result.Gear, inventory.NewGearInstance(d.GearID))
		}
	}
	return result
}
