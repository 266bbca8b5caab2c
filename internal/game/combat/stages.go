package combat

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tilequest/internal/game/sprite"
	"github.com/cory-johannsen/tilequest/internal/game/stats"
)

// meleeReach is how far from its target an attacker stops.
const meleeReach = 16

// stepAction runs one frame of a started action: the current stage updates,
// and if it is ready the action moves to the next stage and starts it.
// At most one stage transition happens per call.
func (s *Session) stepAction(a *Action, actor *Combatant, dt time.Duration) {
	if a.stage == StageNotStarted || a.stage == StageComplete {
		return
	}
	s.updateStage(a, actor, dt)
	if !s.readyForNextStage(a, actor) {
		return
	}
	a.stage++
	s.logger.Debug("action stage",
		zap.String("combatant", actor.ID),
		zap.Stringer("kind", a.Kind),
		zap.Stringer("stage", a.stage),
	)
	if a.stage != StageComplete {
		s.startStage(a, actor)
	}
}

func (s *Session) startStage(a *Action, actor *Combatant) {
	switch a.stage {
	case StagePreparing:
		s.startPreparing(a, actor)
	case StageAdvancing:
		s.startAdvancing(a, actor)
	case StageExecuting:
		s.startExecuting(a, actor)
	case StageReturning:
		if a.Kind == ActionMelee {
			actor.Sprite.Play(sprite.Walk)
		}
	case StageFinishing:
		if a.Kind != ActionDefend && actor.State == StateIdle {
			actor.Sprite.PlayIfChanged(sprite.Idle)
		}
	}
}

func (s *Session) startPreparing(a *Action, actor *Combatant) {
	switch a.Kind {
	case ActionSpell:
		if !actor.PayCostForSpell(a.Spell) {
			a.fizzled = true
			s.logger.Debug("spell fizzled", zap.String("combatant", actor.ID), zap.String("spell", a.Spell.ID))
		}
		actor.Sprite.Play(sprite.Spell)
		cue := a.Spell.CastingCue
		if cue == "" {
			cue = CueCast
		}
		s.audio.PlayCue(cue)
	case ActionItem:
		if err := s.party.ConsumeItem(a.Item.ID); err != nil {
			a.fizzled = true
			s.logger.Warn("item could not be consumed", zap.String("item", a.Item.ID), zap.Error(err))
		}
		actor.Sprite.Play(sprite.UseItem)
		s.audio.PlayCue(CueItem)
	case ActionDefend:
		actor.State = StateDefending
		actor.Sprite.Play(sprite.Defend)
		s.audio.PlayCue(CueDefend)
	}
}

func (s *Session) startAdvancing(a *Action, actor *Combatant) {
	target := s.byID[a.TargetID]
	switch a.Kind {
	case ActionMelee:
		a.approach = target.Position
		if actor.Position.X < target.Position.X {
			a.approach.X -= meleeReach
		} else {
			a.approach.X += meleeReach
		}
		actor.Sprite.Play(sprite.Walk)
	case ActionSpell, ActionItem:
		if a.fizzled {
			return
		}
		a.projectile = &Projectile{Kind: a.Kind, Position: actor.Position, Destination: target.Position}
	}
}

func (s *Session) startExecuting(a *Action, actor *Combatant) {
	switch a.Kind {
	case ActionMelee:
		actor.Sprite.Play(sprite.Attack)
		s.resolveMelee(actor, s.byID[a.TargetID])
	case ActionSpell, ActionItem:
		a.projectile = nil
		if a.fizzled {
			return
		}
		s.applyEffect(a, actor)
	case ActionDefend:
		cur := actor.Statistics()
		actor.Heal(stats.Value{PhysicalDefense: cur.PhysicalDefense, MagicalDefense: cur.MagicalDefense}, 1)
	}
}

// resolveMelee rolls the attacker's damage range against the defender's
// health defense range. Damage is floored at zero.
func (s *Session) resolveMelee(actor, target *Combatant) {
	attack := s.roller.Range(actor.ID+" damage", actor.DamageRange())
	defense := s.roller.Range(target.ID+" defense", target.HealthDefenseRange())
	dmg := attack - defense
	if dmg < 0 {
		dmg = 0
	}
	target.Damage(stats.Value{HealthPoints: dmg}, 0)
	if dmg > 0 {
		s.audio.PlayCue(CueHit)
	} else {
		s.audio.PlayCue(CueMiss)
	}
	s.logger.Debug("melee resolved",
		zap.String("attacker", actor.ID),
		zap.String("target", target.ID),
		zap.Int("attack", attack),
		zap.Int("defense", defense),
		zap.Int("damage", dmg),
	)
}

// applyEffect applies a spell or item to the primary target and every living
// secondary target captured at commit.
func (s *Session) applyEffect(a *Action, actor *Combatant) {
	targets := []*Combatant{s.byID[a.TargetID]}
	for _, id := range a.secondaryIDs {
		if c := s.byID[id]; c != nil && c.IsAlive() {
			targets = append(targets, c)
		}
	}
	for _, t := range targets {
		switch a.Kind {
		case ActionSpell:
			rng := a.Spell.TargetEffectRange.AddToNonZero(actor.Statistics().MagicalOffense)
			effect := rng.Generate(s.roller.Source())
			if a.Spell.Offensive {
				def := s.roller.Range(t.ID+" magic defense", t.MagicDefenseRange())
				t.Damage(resist(effect, def), a.Spell.Duration)
			} else {
				t.Heal(effect, a.Spell.Duration)
			}
		case ActionItem:
			effect := a.Item.TargetEffectRange.Generate(s.roller.Source())
			if a.Item.Offensive {
				t.Damage(effect, a.Item.Duration)
			} else {
				t.Heal(effect, a.Item.Duration)
			}
		}
	}
	var cue string
	if a.Kind == ActionSpell {
		cue = a.Spell.ImpactCue
	} else {
		cue = a.Item.ImpactCue
	}
	if cue != "" {
		s.audio.PlayCue(cue)
	}
}

// resist lowers every channel the spell touches by the defense roll, never
// below zero.
func resist(effect stats.Value, defense int) stats.Value {
	for _, ch := range stats.Channels {
		if n := effect.Get(ch); n != 0 {
			effect = effect.With(ch, n-defense)
		}
	}
	return effect.ApplyMinimum(stats.Value{})
}

func (s *Session) updateStage(a *Action, actor *Combatant, dt time.Duration) {
	secs := dt.Seconds()
	switch a.stage {
	case StageAdvancing:
		if a.Kind == ActionMelee {
			actor.Position, _ = actor.Position.MoveToward(a.approach, s.settings.MeleeSpeed*secs)
		} else if a.projectile != nil {
			a.projectile.Position, _ = a.projectile.Position.MoveToward(a.projectile.Destination, s.settings.ProjectileSpeed*secs)
		}
	case StageReturning:
		if a.Kind == ActionMelee {
			actor.Position, _ = actor.Position.MoveToward(actor.OriginalPosition, s.settings.MeleeSpeed*secs)
		}
	}
}

func (s *Session) readyForNextStage(a *Action, actor *Combatant) bool {
	switch a.stage {
	case StagePreparing:
		switch a.Kind {
		case ActionSpell:
			return animationDone(actor, sprite.Spell)
		case ActionItem:
			return animationDone(actor, sprite.UseItem)
		}
	case StageAdvancing:
		switch a.Kind {
		case ActionMelee:
			return actor.Position == a.approach
		case ActionSpell, ActionItem:
			return a.projectile == nil || a.projectile.Position == a.projectile.Destination
		}
	case StageExecuting:
		if a.Kind == ActionMelee {
			return animationDone(actor, sprite.Attack)
		}
	case StageReturning:
		if a.Kind == ActionMelee {
			return actor.Position == actor.OriginalPosition
		}
	}
	return true
}

// animationDone reports whether name has finished or been replaced.
func animationDone(c *Combatant, name string) bool {
	return c.Sprite.Current() != name || c.Sprite.IsPlaybackComplete()
}
