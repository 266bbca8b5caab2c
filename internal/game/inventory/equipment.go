package inventory

import (
	"fmt"

	"github.com/cory-johannsen/tilequest/internal/game/dice"
	"github.com/cory-johannsen/tilequest/internal/game/stats"
)

// EquipmentSlot identifies where a piece of gear is worn.
type EquipmentSlot string

const (
	SlotWeapon    EquipmentSlot = "weapon"
	SlotShield    EquipmentSlot = "shield"
	SlotArmor     EquipmentSlot = "armor"
	SlotHelmet    EquipmentSlot = "helmet"
	SlotAccessory EquipmentSlot = "accessory"
)

var validSlots = map[EquipmentSlot]struct{}{
	SlotWeapon:    {},
	SlotShield:    {},
	SlotArmor:     {},
	SlotHelmet:    {},
	SlotAccessory: {},
}

// Equipment maps slots to the gear definitions occupying them.
// The zero value is an empty, usable Equipment.
type Equipment struct {
	slots map[EquipmentSlot]*GearDef
}

// Equip places g in its slot and returns whatever it replaced.
//
// Precondition: g must not be nil.
func (e *Equipment) Equip(g *GearDef) (*GearDef, error) {
	if _, ok := validSlots[g.Slot]; !ok {
		return nil, fmt.Errorf("inventory: cannot equip %q in unknown slot %q", g.ID, g.Slot)
	}
	if e.slots == nil {
		e.slots = make(map[EquipmentSlot]*GearDef)
	}
	prev := e.slots[g.Slot]
	e.slots[g.Slot] = g
	return prev, nil
}

// Unequip empties slot and returns the gear removed, or nil.
func (e *Equipment) Unequip(slot EquipmentSlot) *GearDef {
	g := e.slots[slot]
	delete(e.slots, slot)
	return g
}

// In returns the gear in slot, or nil.
func (e *Equipment) In(slot EquipmentSlot) *GearDef {
	return e.slots[slot]
}

// IDs returns slot to gear ID for every occupied slot.
func (e *Equipment) IDs() map[EquipmentSlot]string {
	out := make(map[EquipmentSlot]string, len(e.slots))
	for s, g := range e.slots {
		out[s] = g.ID
	}
	return out
}

// Buff returns the sum of every equipped item's owner buff.
func (e *Equipment) Buff() stats.Value {
	var total stats.Value
	for _, g := range e.slots {
		total = total.Add(g.OwnerBuff)
	}
	return total
}

// DamageRange returns the equipped weapon's damage range, or zero when unarmed.
func (e *Equipment) DamageRange() dice.IntRange {
	if w := e.slots[SlotWeapon]; w != nil {
		return w.TargetDamageRange
	}
	return dice.IntRange{}
}

// HealthDefenseRange sums the health defense range of all equipped gear.
func (e *Equipment) HealthDefenseRange() dice.IntRange {
	var r dice.IntRange
	for _, g := range e.slots {
		r = r.Add(g.HealthDefenseRange)
	}
	return r
}

// MagicDefenseRange sums the magic defense range of all equipped gear.
func (e *Equipment) MagicDefenseRange() dice.IntRange {
	var r dice.IntRange
	for _, g := range e.slots {
		r = r.Add(g.MagicDefenseRange)
	}
	return r
}
