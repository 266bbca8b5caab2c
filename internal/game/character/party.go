package character

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tilequest/internal/game/inventory"
	"github.com/cory-johannsen/tilequest/internal/game/ruleset"
)

// MaxPartySize is the largest roster that can enter combat.
const MaxPartySize = 5

// Rewards is what a won combat grants the party.
type Rewards struct {
	Experience int
	Gold       int
	Gear       []inventory.GearInstance
}

// IsZero reports whether the rewards grant nothing.
func (r Rewards) IsZero() bool {
	return r.Experience == 0 && r.Gold == 0 && len(r.Gear) == 0
}

// LevelUp records a player gaining levels from a reward.
type LevelUp struct {
	Player *Player
	Gained int
}

// Party is the persistent group of players with a shared pack and purse.
// It is not safe for concurrent use; the caller must serialise access.
type Party struct {
	ID      int64
	Players []*Player
	Pack    *inventory.Pack
	Gold    int
}

// NewParty returns a Party with an empty pack.
func NewParty(players ...*Player) *Party {
	return &Party{Players: players, Pack: inventory.NewPack()}
}

// Roster returns the living players in party order, capped at MaxPartySize.
func (p *Party) Roster() []*Player {
	var out []*Player
	for _, pl := range p.Players {
		if pl.IsAlive() {
			out = append(out, pl)
		}
		if len(out) == MaxPartySize {
			break
		}
	}
	return out
}

// ConsumeItem removes one unit of itemID from the pack.
func (p *Party) ConsumeItem(itemID string) error {
	if err := p.Pack.Remove(itemID, 1); err != nil {
		return fmt.Errorf("consuming %q: %w", itemID, err)
	}
	return nil
}

// ApplyRewards adds gold and gear and splits experience evenly across living
// players; the remainder goes to the earliest players in roster order.
//
// Postcondition: returns every player that gained at least one level.
func (p *Party) ApplyRewards(r Rewards) []LevelUp {
	p.Gold += r.Gold
	for _, g := range r.Gear {
		p.Pack.AddGear(g)
	}
	living := p.Roster()
	if len(living) == 0 || r.Experience <= 0 {
		return nil
	}
	share := r.Experience / len(living)
	rem := r.Experience % len(living)
	var ups []LevelUp
	for i, pl := range living {
		xp := share
		if i < rem {
			xp++
		}
		if gained := pl.GainExperience(xp); gained > 0 {
			ups = append(ups, LevelUp{Player: pl, Gained: gained})
		}
	}
	return ups
}

// RestoreAll brings every player, living or dead, back to full statistics.
func (p *Party) RestoreAll() {
	for _, pl := range p.Players {
		pl.Restore()
	}
}

// partyFile is the YAML shape of a starting party.
type partyFile struct {
	Gold    int `yaml:"gold"`
	Members []struct {
		Name  string   `yaml:"name"`
		Class string   `yaml:"class"`
		Level int      `yaml:"level"`
		Gear  []string `yaml:"gear"`
	} `yaml:"members"`
	Items []struct {
		ID       string `yaml:"id"`
		Quantity int    `yaml:"quantity"`
	} `yaml:"items"`
}

// LoadParty reads a starting party definition from path.
//
// Precondition: rules and items must be non-nil.
// Postcondition: Returns a Party whose classes, gear and items all resolve, or a non-nil error.
func LoadParty(path string, rules *ruleset.Registry, items *inventory.Registry) (*Party, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var f partyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing party file %s: %w", path, err)
	}
	if len(f.Members) == 0 || len(f.Members) > MaxPartySize {
		return nil, fmt.Errorf("party file %s: need 1-%d members, got %d", path, MaxPartySize, len(f.Members))
	}
	party := NewParty()
	party.Gold = f.Gold
	for _, m := range f.Members {
		class, ok := rules.Class(m.Class)
		if !ok {
			return nil, fmt.Errorf("party file %s: member %q has unknown class %q", path, m.Name, m.Class)
		}
		gear := make([]*inventory.GearDef, 0, len(m.Gear))
		for _, id := range m.Gear {
			g, ok := items.Gear(id)
			if !ok {
				return nil, fmt.Errorf("party file %s: member %q has unknown gear %q", path, m.Name, id)
			}
			gear = append(gear, g)
		}
		level := m.Level
		if level < 1 {
			level = 1
		}
		pl, err := Build(m.Name, class, level, gear...)
		if err != nil {
			return nil, fmt.Errorf("party file %s: %w", path, err)
		}
		party.Players = append(party.Players, pl)
	}
	for _, it := range f.Items {
		if _, err := party.Pack.Add(it.ID, it.Quantity, items); err != nil {
			return nil, fmt.Errorf("party file %s: %w", path, err)
		}
	}
	return party, nil
}
