package combat

import "time"

// effectRise is how far a floating number climbs over its lifetime, in pixels.
const effectRise = 24

// FloatingEffect is a short-lived number shown above a combatant after its
// statistics change, e.g. "HP -7".
type FloatingEffect struct {
	Label    string
	Amount   int
	Position Vec2
	Age      time.Duration
}

func (s *Session) spawnEffect(at Vec2, label string, amount int) {
	s.effects = append(s.effects, FloatingEffect{Label: label, Amount: amount, Position: at})
}

// updateEffects ages every effect, raises it and drops those past their lifetime.
func (s *Session) updateEffects(dt time.Duration) {
	life := s.settings.EffectLifetime
	if life <= 0 || len(s.effects) == 0 {
		s.effects = s.effects[:0]
		return
	}
	kept := s.effects[:0]
	for _, e := range s.effects {
		e.Age += dt
		if e.Age >= life {
			continue
		}
		e.Position.Y -= effectRise * dt.Seconds() / life.Seconds()
		kept = append(kept, e)
	}
	s.effects = kept
}
