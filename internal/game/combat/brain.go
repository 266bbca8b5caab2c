package combat

// meleeBrain attacks the first living player. It is used when no
// BrainFactory is configured.
type meleeBrain struct {
	self *Combatant
}

func (b meleeBrain) ChooseAction(s *Session) *Action {
	target := firstAlive(s.players)
	if target == nil {
		return nil
	}
	melee, err := NewMeleeAction(b.self)
	if err != nil {
		return nil
	}
	a, err := melee.WithTarget(target)
	if err != nil {
		return nil
	}
	return a
}
