package combat

import (
	"time"

	"github.com/cory-johannsen/tilequest/internal/game/character"
	"github.com/cory-johannsen/tilequest/internal/game/dice"
	"github.com/cory-johannsen/tilequest/internal/game/npc"
	"github.com/cory-johannsen/tilequest/internal/game/ruleset"
	"github.com/cory-johannsen/tilequest/internal/game/sprite"
	"github.com/cory-johannsen/tilequest/internal/game/stats"
)

// effectSink receives one floating number per changed statistic channel.
type effectSink interface {
	spawnEffect(at Vec2, label string, amount int)
}

// Combatant is one participant in a combat: either a persistent player or an
// ephemeral monster. Exactly one of player and monster is set, matching Kind.
type Combatant struct {
	ID               string
	Kind             Kind
	Position         Vec2
	OriginalPosition Vec2
	TurnTaken        bool
	State            CharacterState
	Sprite           *sprite.Sprite

	player  *character.Player
	monster *npc.Instance
	spells  []*ruleset.Spell
	stack   stats.Stack
	brain   Brain
	fx      effectSink
}

func newPlayerCombatant(id string, p *character.Player, spells []*ruleset.Spell, pos Vec2) *Combatant {
	return &Combatant{
		ID:               id,
		Kind:             KindPlayer,
		Position:         pos,
		OriginalPosition: pos,
		Sprite:           sprite.New(p.Class.Animations),
		player:           p,
		spells:           spells,
	}
}

// monsterSprite builds the prototype that every monster of m's template
// clones. Template animations win over class animations.
func monsterSprite(m *npc.Instance) *sprite.Sprite {
	if len(m.Template.Animations) > 0 {
		return sprite.New(m.Template.Animations)
	}
	return sprite.New(m.Class.Animations)
}

// newMonsterCombatant wraps m. look must not be shared with another combatant.
func newMonsterCombatant(id string, m *npc.Instance, look *sprite.Sprite, pos Vec2) *Combatant {
	return &Combatant{
		ID:               id,
		Kind:             KindMonster,
		Position:         pos,
		OriginalPosition: pos,
		Sprite:           look,
		monster:          m,
		spells:           m.Spells,
	}
}

// AppliesPermanently reports whether permanent damage and healing mutate a
// persistent entity (players) rather than an ephemeral copy (monsters).
func (c *Combatant) AppliesPermanently() bool { return c.Kind == KindPlayer }

// Player returns the wrapped player, or nil for monsters.
func (c *Combatant) Player() *character.Player { return c.player }

// Monster returns the wrapped monster, or nil for players.
func (c *Combatant) Monster() *npc.Instance { return c.monster }

// Name returns the display name.
func (c *Combatant) Name() string {
	if c.player != nil {
		return c.player.Name
	}
	return c.monster.Name
}

// Level returns the character level.
func (c *Combatant) Level() int {
	if c.player != nil {
		return c.player.Level
	}
	return c.monster.Level
}

// Spells returns every spell the combatant knows.
func (c *Combatant) Spells() []*ruleset.Spell { return c.spells }

// BattleSpells returns the known spells usable in battle.
func (c *Combatant) BattleSpells() []*ruleset.Spell {
	var out []*ruleset.Spell
	for _, s := range c.spells {
		if s.UsableInBattle {
			out = append(out, s)
		}
	}
	return out
}

// DefendPercentage returns the monster's clamped defend chance; players return 0.
func (c *Combatant) DefendPercentage() int {
	if c.monster == nil {
		return 0
	}
	return c.monster.Template.ClampedDefendPercentage()
}

// AIHook returns the monster's scripted AI hook name, if any.
func (c *Combatant) AIHook() string {
	if c.monster == nil {
		return ""
	}
	return c.monster.Template.AIHook
}

func (c *Combatant) baseStatistics() stats.Value {
	if c.player != nil {
		return c.player.Statistics()
	}
	return c.monster.Statistics()
}

// Statistics returns current statistics including round-limited effects.
func (c *Combatant) Statistics() stats.Value {
	return c.baseStatistics().Add(c.stack.Total())
}

// MaxStatistics returns the maximum statistics before round-limited effects.
func (c *Combatant) MaxStatistics() stats.Value {
	if c.player != nil {
		return c.player.MaxStatistics()
	}
	return c.monster.MaxStatistics()
}

// Effects returns the combatant's round-limited effect stack.
func (c *Combatant) Effects() *stats.Stack { return &c.stack }

// DamageRange returns the weapon damage range shifted by physical offense.
func (c *Combatant) DamageRange() dice.IntRange {
	var r dice.IntRange
	if c.player != nil {
		r = c.player.Equipment.DamageRange()
	} else {
		r = c.monster.Template.DamageRange
	}
	return r.Shift(c.Statistics().PhysicalOffense)
}

// HealthDefenseRange returns the armor health defense range shifted by physical defense.
func (c *Combatant) HealthDefenseRange() dice.IntRange {
	var r dice.IntRange
	if c.player != nil {
		r = c.player.Equipment.HealthDefenseRange()
	} else {
		r = c.monster.Template.HealthDefenseRange
	}
	return r.Shift(c.Statistics().PhysicalDefense)
}

// MagicDefenseRange returns the armor magic defense range shifted by magical defense.
func (c *Combatant) MagicDefenseRange() dice.IntRange {
	var r dice.IntRange
	if c.player != nil {
		r = c.player.Equipment.MagicDefenseRange()
	} else {
		r = c.monster.Template.MagicDefenseRange
	}
	return r.Shift(c.Statistics().MagicalDefense)
}

// IsDeadOrDying reports whether the combatant is out of the fight.
func (c *Combatant) IsDeadOrDying() bool {
	return c.State == StateDying || c.State == StateDead
}

// IsAlive reports whether the combatant can act and be targeted.
func (c *Combatant) IsAlive() bool {
	return !c.IsDeadOrDying() && c.Statistics().HealthPoints > 0
}

func (c *Combatant) applyPermanent(delta stats.Value) {
	if c.player != nil {
		c.player.ApplyModifier(delta)
		return
	}
	c.monster.ApplyModifier(delta)
}

// Damage reduces statistics by delta. With duration > 0 the reduction is
// pushed onto the effect stack for that many rounds; with duration 0 it is
// applied permanently, clamped at zero. A living target enters the Hit state,
// or Dodging when delta is zero.
func (c *Combatant) Damage(delta stats.Value, duration int) {
	if duration > 0 {
		c.stack.Add(delta.Negate(), duration)
	} else {
		c.applyPermanent(delta.Negate())
	}
	if !c.IsDeadOrDying() {
		if delta.IsZero() {
			c.State = StateDodging
			c.Sprite.Play(sprite.Dodge)
		} else {
			c.State = StateHit
			c.Sprite.Play(sprite.Hit)
		}
	}
	c.spawnEffects(delta.Negate())
}

// Heal raises statistics by delta. With duration > 0 the boost is pushed
// onto the effect stack; with duration 0 it is applied permanently, clamped
// at the combatant's maximum.
func (c *Combatant) Heal(delta stats.Value, duration int) {
	if duration > 0 {
		c.stack.Add(delta, duration)
	} else {
		c.applyPermanent(delta)
	}
	c.spawnEffects(delta)
}

func (c *Combatant) spawnEffects(delta stats.Value) {
	if c.fx == nil {
		return
	}
	for _, ch := range stats.Channels {
		if n := delta.Get(ch); n != 0 {
			c.fx.spawnEffect(c.OriginalPosition, ch.Label(), n)
		}
	}
}

// PayCostForSpell deducts the spell's magic cost. It returns false, leaving
// statistics untouched, when current magic is below the cost.
func (c *Combatant) PayCostForSpell(s *ruleset.Spell) bool {
	if c.Statistics().MagicPoints < s.MagicPointCost {
		return false
	}
	if s.MagicPointCost > 0 {
		c.applyPermanent(stats.Value{MagicPoints: -s.MagicPointCost})
	}
	return true
}

// Update advances the sprite and applies the death, revival and recovery transitions.
func (c *Combatant) Update(dt time.Duration) {
	c.Sprite.Update(dt)
	hp := c.Statistics().HealthPoints
	switch c.State {
	case StateDying, StateDead:
		if hp > 0 {
			c.State = StateIdle
			c.Sprite.Play(sprite.Idle)
			return
		}
		if c.State == StateDying && c.Sprite.IsPlaybackComplete() {
			c.State = StateDead
			c.Sprite.Play(sprite.Dead)
		}
	case StateHit, StateDodging:
		if !c.Sprite.IsPlaybackComplete() {
			return
		}
		if hp <= 0 {
			c.die()
			return
		}
		c.State = StateIdle
		c.Sprite.Play(sprite.Idle)
	default:
		if hp <= 0 {
			c.die()
		}
	}
}

func (c *Combatant) die() {
	c.State = StateDying
	c.Sprite.Play(sprite.Die)
}
