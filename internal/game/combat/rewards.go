package combat

import (
	"github.com/cory-johannsen/tilequest/internal/game/character"
	"github.com/cory-johannsen/tilequest/internal/game/npc"
)

// computeRewards sums the loot of every monster in the session.
func (s *Session) computeRewards() character.Rewards {
	var r character.Rewards
	for _, m := range s.monsters {
		loot := npc.GenerateLoot(m.monster, s.roller)
		r.Experience += loot.Experience
		r.Gold += loot.Gold
		r.Gear = append(r.Gear, loot.Gear...)
	}
	return r
}
