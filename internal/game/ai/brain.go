// Package ai chooses monster actions. Each monster gets a Brain holding its
// candidate actions ranked by heuristic; an optional Lua hook can override
// the decision to defend.
package ai

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tilequest/internal/game/combat"
)

// Hook results understood by ChooseAction.
const (
	HookDefend = "defend"
	HookAttack = "attack"
)

// ScriptCaller evaluates a monster's Lua AI hook.
type ScriptCaller interface {
	// CallHook calls a global Lua function. Returns (LNil, nil) if it is not defined.
	CallHook(hook string, args ...lua.LValue) (lua.LValue, error)
}

// Brain picks one monster's action each turn.
//
// Invariant: offensive always contains a melee action, so a living player can always be attacked.
type Brain struct {
	self      *combat.Combatant
	offensive []*combat.Action
	defensive []*combat.Action
	caller    ScriptCaller
	logger    *zap.Logger
}

// New builds the candidate lists for self: melee plus offensive battle
// spells, and non-offensive battle spells plus defend. Each list is sorted by
// descending heuristic; ties keep insertion order.
//
// Precondition: self must be a monster combatant. caller may be nil.
func New(self *combat.Combatant, caller ScriptCaller, logger *zap.Logger) (*Brain, error) {
	if self == nil || self.Kind != combat.KindMonster {
		return nil, fmt.Errorf("%w: brain needs a monster combatant", combat.ErrInvalidArgument)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Brain{self: self, caller: caller, logger: logger}

	melee, err := combat.NewMeleeAction(self)
	if err != nil {
		return nil, err
	}
	b.offensive = append(b.offensive, melee)
	for _, sp := range self.BattleSpells() {
		a, err := combat.NewSpellAction(self, sp)
		if err != nil {
			return nil, err
		}
		if sp.Offensive {
			b.offensive = append(b.offensive, a)
		} else {
			b.defensive = append(b.defensive, a)
		}
	}
	def, err := combat.NewDefendAction(self)
	if err != nil {
		return nil, err
	}
	b.defensive = append(b.defensive, def)

	b.rank(b.offensive)
	b.rank(b.defensive)
	return b, nil
}

func (b *Brain) rank(actions []*combat.Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Heuristic(b.self) > actions[j].Heuristic(b.self)
	})
}

// Offensive returns the ranked offensive candidates.
func (b *Brain) Offensive() []*combat.Action { return b.offensive }

// Defensive returns the ranked defensive candidates.
func (b *Brain) Defensive() []*combat.Action { return b.defensive }

// ChooseAction returns a targeted, unstarted action for this turn, or nil
// when no living player remains to attack.
func (b *Brain) ChooseAction(s *combat.Session) *combat.Action {
	ws := BuildWorldState(s, b.self)
	if b.wantsToDefend(s, ws) {
		if a := b.chooseDefensive(s, ws); a != nil {
			return a
		}
	}
	return b.chooseOffensive(s, ws)
}

func (b *Brain) wantsToDefend(s *combat.Session, ws *WorldState) bool {
	if hook := b.self.AIHook(); hook != "" && b.caller != nil {
		ret, err := b.caller.CallHook(hook, lua.LNumber(ws.Self.HP), lua.LNumber(ws.Self.MaxHP))
		if err != nil {
			b.logger.Warn("ai hook failed", zap.String("combatant", b.self.ID), zap.String("hook", hook), zap.Error(err))
		} else {
			switch lua.LVAsString(ret) {
			case HookDefend:
				return true
			case HookAttack:
				return false
			}
		}
	}
	return s.Roller().Percent(b.self.ID+" defend", b.self.DefendPercentage())
}

func (b *Brain) chooseDefensive(s *combat.Session, ws *WorldState) *combat.Action {
	ally := ws.WeakestDamagedAlly()
	if ally == nil {
		return nil
	}
	return b.firstUsable(b.defensive, s.Combatant(ally.ID))
}

func (b *Brain) chooseOffensive(s *combat.Session, ws *WorldState) *combat.Action {
	enemies := ws.EnemiesOf()
	if len(enemies) == 0 {
		return nil
	}
	pick := enemies[s.Roller().Intn(b.self.ID+" target", len(enemies))]
	return b.firstUsable(b.offensive, s.Combatant(pick.ID))
}

func (b *Brain) firstUsable(actions []*combat.Action, target *combat.Combatant) *combat.Action {
	for _, a := range actions {
		if !a.IsCharacterValidUser(b.self) {
			continue
		}
		out, err := a.WithTarget(target)
		if err != nil {
			continue
		}
		b.logger.Debug("ai chose action", zap.Stringer("action", out))
		return out
	}
	return nil
}

// NewFactory returns a BrainFactory building a Brain per monster. A monster
// whose Brain cannot be built falls back to the session default.
func NewFactory(caller ScriptCaller, logger *zap.Logger) combat.BrainFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(monster *combat.Combatant, _ *combat.Session) combat.Brain {
		b, err := New(monster, caller, logger)
		if err != nil {
			logger.Warn("building brain", zap.String("combatant", monster.ID), zap.Error(err))
			return nil
		}
		return b
	}
}
