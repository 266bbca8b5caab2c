package inventory

import (
	"fmt"

	"github.com/google/uuid"
)

// ItemStack is a quantity of one item definition held in a Pack.
type ItemStack struct {
	InstanceID string
	ItemDefID  string
	Quantity   int
}

// GearInstance is one concrete, unequipped piece of gear.
type GearInstance struct {
	InstanceID string
	GearDefID  string
}

// NewGearInstance returns a GearInstance of defID with a fresh instance ID.
func NewGearInstance(defID string) GearInstance {
	return GearInstance{InstanceID: uuid.New().String(), GearDefID: defID}
}

// Pack is the party's shared inventory. Items stack by definition, one stack
// per definition, up to the definition's MaxStack.
// It is not safe for concurrent use; the caller must serialise access.
type Pack struct {
	items []ItemStack
	gear  []GearInstance
}

// NewPack creates an empty Pack.
func NewPack() *Pack {
	return &Pack{}
}

// Add places quantity units of itemDefID into the pack.
// It is atomic: if MaxStack would be exceeded, no state is modified.
//
// Precondition: quantity > 0, itemDefID exists in reg.
// Postcondition: on success Count(itemDefID) grows by quantity; on error the pack is unchanged.
func (p *Pack) Add(itemDefID string, quantity int, reg *Registry) (*ItemStack, error) {
	def, ok := reg.Item(itemDefID)
	if !ok {
		return nil, fmt.Errorf("pack: unknown item %q", itemDefID)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("pack: quantity must be > 0")
	}
	if i := p.index(itemDefID); i >= 0 {
		if p.items[i].Quantity+quantity > def.MaxStack {
			return nil, fmt.Errorf("pack: adding %d of %q would exceed max stack %d",
				quantity, itemDefID, def.MaxStack)
		}
		p.items[i].Quantity += quantity
		return &p.items[i], nil
	}
	if quantity > def.MaxStack {
		return nil, fmt.Errorf("pack: adding %d of %q would exceed max stack %d",
			quantity, itemDefID, def.MaxStack)
	}
	p.items = append(p.items, ItemStack{
		InstanceID: uuid.New().String(),
		ItemDefID:  itemDefID,
		Quantity:   quantity,
	})
	return &p.items[len(p.items)-1], nil
}

// Remove takes quantity units of itemDefID out of the pack.
//
// Precondition: quantity > 0 and <= Count(itemDefID).
// Postcondition: a stack reaching zero is removed.
func (p *Pack) Remove(itemDefID string, quantity int) error {
	i := p.index(itemDefID)
	if i < 0 {
		return fmt.Errorf("pack: item %q not found", itemDefID)
	}
	if quantity <= 0 || quantity > p.items[i].Quantity {
		return fmt.Errorf("pack: cannot remove %d of %q from stack of %d",
			quantity, itemDefID, p.items[i].Quantity)
	}
	if quantity == p.items[i].Quantity {
		p.items = append(p.items[:i], p.items[i+1:]...)
		return nil
	}
	p.items[i].Quantity -= quantity
	return nil
}

// Count returns how many units of itemDefID the pack holds.
func (p *Pack) Count(itemDefID string) int {
	if i := p.index(itemDefID); i >= 0 {
		return p.items[i].Quantity
	}
	return 0
}

func (p *Pack) index(itemDefID string) int {
	for i := range p.items {
		if p.items[i].ItemDefID == itemDefID {
			return i
		}
	}
	return -1
}

// AddGear stores g in the pack.
func (p *Pack) AddGear(g GearInstance) {
	p.gear = append(p.gear, g)
}

// RemoveGear takes the gear instance with instanceID out of the pack.
func (p *Pack) RemoveGear(instanceID string) (GearInstance, error) {
	for i, g := range p.gear {
		if g.InstanceID == instanceID {
			p.gear = append(p.gear[:i], p.gear[i+1:]...)
			return g, nil
		}
	}
	return GearInstance{}, fmt.Errorf("pack: gear instance %q not found", instanceID)
}

// Items returns a snapshot copy of all item stacks.
//
// Postcondition: returned slice is a copy; mutations do not affect the pack.
func (p *Pack) Items() []ItemStack {
	out := make([]ItemStack, len(p.items))
	copy(out, p.items)
	return out
}

// Gear returns a snapshot copy of all unequipped gear.
func (p *Pack) Gear() []GearInstance {
	out := make([]GearInstance, len(p.gear))
	copy(out, p.gear)
	return out
}

// Restore replaces the pack contents, e.g. after loading from storage.
func (p *Pack) Restore(items []ItemStack, gear []GearInstance) {
	p.items = append([]ItemStack(nil), items...)
	p.gear = append([]GearInstance(nil), gear...)
}
