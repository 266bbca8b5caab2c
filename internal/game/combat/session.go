package combat

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tilequest/internal/game/character"
	"github.com/cory-johannsen/tilequest/internal/game/dice"
	"github.com/cory-johannsen/tilequest/internal/game/sprite"
)

// Narration shown on the HUD.
const (
	MsgPartyTurn    = "Your Party's Turn"
	MsgEnemyTurn    = "The Enemy's Turn"
	MsgFled         = "Your Party Has Fled!"
	MsgFailedEscape = "Your Party Failed to Escape!"
	MsgCannotEscape = "This Fight Cannot Be Escaped..."
	MsgVictory      = "Victory!"
	MsgDefeat       = "Your Party Has Fallen..."
)

// Settings tunes pacing and motion.
type Settings struct {
	// DelayDuration separates combat phases.
	DelayDuration time.Duration
	// MeleeSpeed is how fast attackers walk, in pixels per second.
	MeleeSpeed float64
	// ProjectileSpeed is how fast spells and thrown items fly, in pixels per second.
	ProjectileSpeed float64
	// EffectLifetime is how long floating numbers stay on screen.
	EffectLifetime time.Duration
}

// DefaultSettings returns the standard pacing.
func DefaultSettings() Settings {
	return Settings{
		DelayDuration:   1000 * time.Millisecond,
		MeleeSpeed:      160,
		ProjectileSpeed: 240,
		EffectLifetime:  800 * time.Millisecond,
	}
}

// Session is one running combat. It owns both rosters, the in-flight action
// table keyed by combatant ID, the turn and flee state machines and the
// target selection. A Session is created by Engine and is finished once
// Ending returns anything but EndingNone.
type Session struct {
	settings Settings
	logger   *zap.Logger
	roller   *dice.Roller
	party    Party
	audio    Audio
	rewardsP RewardsPresenter
	gameOver GameOver
	narrator Narrator

	players  []*Combatant
	monsters []*Combatant
	byID     map[string]*Combatant
	actions  map[string]*Action

	flow        TurnFlow
	flee        FleeState
	delay       Delay
	playersTurn bool
	playersOpen bool
	round       int

	highlightedID string
	primaryID     string
	secondaryIDs  []string

	fleeThreshold int
	music         string
	effects       []FloatingEffect

	ending  EndingState
	rewards character.Rewards
}

// sessionDeps carries the engine-owned collaborators into a new Session.
type sessionDeps struct {
	settings Settings
	logger   *zap.Logger
	roller   *dice.Roller
	party    Party
	audio    Audio
	rewards  RewardsPresenter
	gameOver GameOver
	narrator Narrator
	brains   BrainFactory
}

// newSession validates the rosters, places combatants in their screen slots,
// sorts monsters by descending Y and enters the StartCombat delay.
//
// Precondition: every combatant has a unique ID.
// Postcondition: on success Flow() is FlowStartCombat and IsDelaying() is true.
func newSession(deps sessionDeps, players, monsters []*Combatant, fleeThreshold int, music string) (*Session, error) {
	if n := len(players); n < 1 || n > MaxCombatantsPerSide {
		return nil, fmt.Errorf("%w: %d players, need 1-%d", ErrInvalidRoster, n, MaxCombatantsPerSide)
	}
	if n := len(monsters); n < 1 || n > MaxCombatantsPerSide {
		return nil, fmt.Errorf("%w: %d monsters, need 1-%d", ErrInvalidRoster, n, MaxCombatantsPerSide)
	}
	s := &Session{
		settings:      deps.settings,
		logger:        deps.logger,
		roller:        deps.roller,
		party:         deps.party,
		audio:         deps.audio,
		rewardsP:      deps.rewards,
		gameOver:      deps.gameOver,
		narrator:      deps.narrator,
		players:       players,
		monsters:      monsters,
		byID:          make(map[string]*Combatant, len(players)+len(monsters)),
		actions:       make(map[string]*Action),
		fleeThreshold: fleeThreshold,
		music:         music,
	}
	for i, c := range players {
		c.Position, c.OriginalPosition = playerSlots[i], playerSlots[i]
	}
	for i, c := range monsters {
		c.Position, c.OriginalPosition = monsterSlots[i], monsterSlots[i]
	}
	sort.SliceStable(s.monsters, func(i, j int) bool {
		return s.monsters[i].Position.Y > s.monsters[j].Position.Y
	})
	for _, c := range s.all() {
		if _, dup := s.byID[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate combatant id %q", ErrInvalidRoster, c.ID)
		}
		s.byID[c.ID] = c
		c.fx = s
	}
	for _, m := range s.monsters {
		if deps.brains != nil {
			m.brain = deps.brains(m, s)
		}
		if m.brain == nil {
			m.brain = meleeBrain{self: m}
		}
	}
	if music != "" {
		s.audio.PushMusic(music)
	}
	s.startFlow(FlowStartCombat)
	s.logger.Info("combat started",
		zap.Int("players", len(players)),
		zap.Int("monsters", len(monsters)),
		zap.Int("flee_threshold", fleeThreshold),
	)
	return s, nil
}

func (s *Session) all() []*Combatant {
	out := make([]*Combatant, 0, len(s.players)+len(s.monsters))
	out = append(out, s.players...)
	return append(out, s.monsters...)
}

func (s *Session) side(players bool) []*Combatant {
	if players {
		return s.players
	}
	return s.monsters
}

// Update advances the combat by one frame. Within a frame the termination
// check runs first, then target sync, then delay processing, then every
// player followed by every monster.
func (s *Session) Update(dt time.Duration) {
	if s.ending != EndingNone {
		return
	}
	if s.checkTermination() {
		return
	}
	s.syncTargets()
	if s.delay.Advance(dt) {
		s.resolveDelay()
		if s.ending != EndingNone {
			return
		}
	}
	for _, c := range s.players {
		s.updateCombatant(c, dt)
	}
	for _, c := range s.monsters {
		s.updateCombatant(c, dt)
	}
	s.updateEffects(dt)
	if s.flow == FlowNoDelay && s.flee == FleeIdle && !s.delay.Active() && s.highlightedTurnOver() {
		s.startFlow(FlowEndCharacterTurn)
	}
}

func (s *Session) updateCombatant(c *Combatant, dt time.Duration) {
	if a, ok := s.actions[c.ID]; ok {
		s.stepAction(a, c, dt)
		if a.stage == StageComplete {
			delete(s.actions, c.ID)
			c.TurnTaken = true
		}
	}
	prev := c.State
	c.Update(dt)
	if prev != StateDying && c.State == StateDying {
		s.audio.PlayCue(CueDeath)
		s.logger.Debug("combatant dying", zap.String("combatant", c.ID))
	}
}

func (s *Session) checkTermination() bool {
	if allDead(s.players) {
		s.endCombat(EndingLoss)
		return true
	}
	if allDead(s.monsters) {
		s.endCombat(EndingVictory)
		return true
	}
	return false
}

func allDead(side []*Combatant) bool {
	for _, c := range side {
		if c.State != StateDead {
			return false
		}
	}
	return true
}

// syncTargets mirrors the highlighted combatant's in-flight action into the target selection.
func (s *Session) syncTargets() {
	a, ok := s.actions[s.highlightedID]
	if !ok || a.TargetID == "" {
		return
	}
	_ = s.SetTargets(a.TargetID, a.AdjacentTargets())
}

func (s *Session) highlightedTurnOver() bool {
	h := s.Highlighted()
	if h == nil {
		return true
	}
	if _, busy := s.actions[h.ID]; busy {
		return false
	}
	return h.TurnTaken || !h.IsAlive()
}

func (s *Session) startFlow(f TurnFlow) {
	s.flow = f
	s.delay.Start(s.settings.DelayDuration)
	s.logger.Debug("delay started", zap.Stringer("flow", f), zap.Duration("remaining", s.delay.Remaining()))
}

func (s *Session) resolveDelay() {
	if s.flee != FleeIdle {
		s.resolveFlee()
		return
	}
	flow := s.flow
	s.flow = FlowNoDelay
	switch flow {
	case FlowStartCombat:
		playersFirst := s.roller.Intn("initiative", 2) == 0
		s.playersOpen = playersFirst
		s.beginTurn(playersFirst)
	case FlowEndCharacterTurn:
		done := s.IsMonstersTurnComplete()
		if s.playersTurn {
			done = s.IsPlayersTurnComplete()
		}
		if !done {
			s.highlight(firstReady(s.side(s.playersTurn)))
			return
		}
		s.highlightedID = ""
		s.startFlow(FlowEndRound)
	case FlowEndRound:
		// The side that just finished always hands over to the other side.
		s.beginTurn(!s.playersTurn)
	}
}

// beginTurn resets one side for a new turn: living combatants return to
// Idle, turn flags and pending actions clear, and each effect stack advances
// one round. The first ready combatant is highlighted.
func (s *Session) beginTurn(players bool) {
	s.playersTurn = players
	if players == s.playersOpen {
		s.round++
	}
	for _, c := range s.side(players) {
		if c.IsAlive() {
			c.State = StateIdle
			c.Sprite.PlayIfChanged(sprite.Idle)
		}
		c.TurnTaken = false
		delete(s.actions, c.ID)
		c.stack.Advance()
	}
	s.highlightedID = ""
	s.primaryID = ""
	s.secondaryIDs = nil
	if players {
		s.narrator.Narrate(MsgPartyTurn)
	} else {
		s.narrator.Narrate(MsgEnemyTurn)
	}
	s.logger.Debug("turn began", zap.Bool("players", players), zap.Int("round", s.round))
	if next := firstReady(s.side(players)); next != nil {
		s.highlight(next)
	}
}

func firstReady(side []*Combatant) *Combatant {
	for _, c := range side {
		if c.IsAlive() && !c.TurnTaken {
			return c
		}
	}
	return nil
}

func (s *Session) highlight(c *Combatant) {
	s.highlightedID = c.ID
	if c.Kind == KindMonster {
		s.chooseMonsterAction(c)
	}
}

func (s *Session) chooseMonsterAction(c *Combatant) {
	a := c.brain.ChooseAction(s)
	if a == nil {
		s.logger.Debug("monster has no action", zap.String("combatant", c.ID))
		c.TurnTaken = true
		return
	}
	if err := s.commit(a); err != nil {
		s.logger.Warn("monster action rejected", zap.String("combatant", c.ID), zap.Error(err))
		c.TurnTaken = true
	}
}

// commit validates a, captures its targets and starts it.
func (s *Session) commit(a *Action) error {
	if a == nil {
		return fmt.Errorf("%w: nil action", ErrInvalidArgument)
	}
	actor, ok := s.byID[a.CombatantID]
	if !ok {
		return fmt.Errorf("%w: unknown combatant %q", ErrInvalidArgument, a.CombatantID)
	}
	if _, busy := s.actions[actor.ID]; busy {
		return fmt.Errorf("%w: %s is already acting", ErrInvalidArgument, actor.ID)
	}
	if a.stage != StageNotStarted {
		return fmt.Errorf("%w: action already started", ErrInvalidArgument)
	}
	if a.IsTargetNeeded() {
		if _, ok := s.byID[a.TargetID]; !ok {
			return fmt.Errorf("%w: unknown target %q", ErrInvalidArgument, a.TargetID)
		}
	}
	if !a.IsCharacterValidUser(actor) {
		return fmt.Errorf("%w: %s cannot perform %s", ErrInvalidArgument, actor.ID, a.Kind)
	}
	if a.IsTargetNeeded() {
		if err := s.SetTargets(a.TargetID, a.AdjacentTargets()); err != nil {
			return err
		}
		a.secondaryIDs = append([]string(nil), s.secondaryIDs...)
	}
	s.actions[actor.ID] = a
	a.stage = StagePreparing
	s.logger.Debug("action committed", zap.Stringer("action", a))
	s.startStage(a, actor)
	return nil
}

// Commit starts a player's chosen action for the highlighted combatant.
//
// Precondition: it is the players' turn, no delay is running and a is owned by the highlighted player.
// Postcondition: a is in StagePreparing and owned by the session.
func (s *Session) Commit(a *Action) error {
	if !s.awaitingPlayerCommand() {
		return ErrNotPlayersTurn
	}
	if a == nil || a.CombatantID != s.highlightedID {
		return fmt.Errorf("%w: action is not for the highlighted combatant", ErrInvalidArgument)
	}
	return s.commit(a)
}

func (s *Session) awaitingPlayerCommand() bool {
	if s.ending != EndingNone || !s.playersTurn || s.flow != FlowNoDelay || s.flee != FleeIdle || s.delay.Active() {
		return false
	}
	h := s.Highlighted()
	if h == nil || h.Kind != KindPlayer || h.TurnTaken {
		return false
	}
	_, busy := s.actions[h.ID]
	return !busy
}

// SetTargets selects primaryID and the adjacentCount neighbours on either
// side of it within its own side's list. Out-of-range indices are skipped;
// dead neighbours are kept and filtered when effects are applied.
func (s *Session) SetTargets(primaryID string, adjacentCount int) error {
	c, ok := s.byID[primaryID]
	if !ok {
		return fmt.Errorf("%w: unknown target %q", ErrInvalidArgument, primaryID)
	}
	side := s.side(c.Kind == KindPlayer)
	idx := 0
	for i, o := range side {
		if o == c {
			idx = i
			break
		}
	}
	var secondary []string
	for k := 1; k <= adjacentCount; k++ {
		if i := idx - k; i >= 0 {
			secondary = append(secondary, side[i].ID)
		}
		if i := idx + k; i < len(side) {
			secondary = append(secondary, side[i].ID)
		}
	}
	s.primaryID = primaryID
	s.secondaryIDs = secondary
	return nil
}

// ClearTargets drops the current target selection.
func (s *Session) ClearTargets() {
	s.primaryID = ""
	s.secondaryIDs = nil
}

// AttemptFlee starts a flee attempt for the party. It consumes the
// highlighted player's turn unless the party escapes.
func (s *Session) AttemptFlee() error {
	if !s.awaitingPlayerCommand() {
		return ErrNotPlayersTurn
	}
	s.flee = FleeAttempting
	s.delay.Start(s.settings.DelayDuration)
	s.audio.PlayCue(CueFlee)
	s.logger.Debug("flee attempted", zap.Int("threshold", s.fleeThreshold))
	return nil
}

func (s *Session) resolveFlee() {
	switch s.flee {
	case FleeAttempting:
		h := s.Highlighted()
		switch {
		case s.fleeThreshold <= 0:
			s.narrator.Narrate(MsgCannotEscape)
			s.flee = FleeIdle
			if h != nil {
				h.TurnTaken = true
			}
		case s.roller.Percent("flee", s.fleeThreshold):
			s.narrator.Narrate(MsgFled)
			s.flee = FleeSucceeded
			s.delay.Start(s.settings.DelayDuration)
		default:
			s.narrator.Narrate(MsgFailedEscape)
			s.flee = FleeIdle
			if h != nil {
				h.TurnTaken = true
			}
		}
	case FleeSucceeded:
		s.endCombat(EndingFled)
	}
}

// endCombat finishes the session and hands off to the matching collaborator.
func (s *Session) endCombat(state EndingState) {
	s.ending = state
	s.delay.Stop()
	s.flow = FlowNoDelay
	s.flee = FleeIdle
	switch state {
	case EndingVictory:
		s.rewards = s.computeRewards()
		s.narrator.Narrate(MsgVictory)
		ups := s.party.ApplyRewards(s.rewards)
		s.rewardsP.PresentRewards(s.rewards, ups)
	case EndingLoss:
		s.narrator.Narrate(MsgDefeat)
		s.gameOver.GameOver()
	}
	if s.music != "" {
		s.audio.PopMusic()
	}
	s.logger.Info("combat ended",
		zap.Stringer("ending", state),
		zap.Int("rounds", s.round),
		zap.Int("experience", s.rewards.Experience),
		zap.Int("gold", s.rewards.Gold),
		zap.Int("gear", len(s.rewards.Gear)),
	)
}

// Draw hands every combatant, projectile and floating effect to r.
func (s *Session) Draw(r Renderer) {
	targeted := make(map[string]bool, len(s.secondaryIDs)+1)
	if s.primaryID != "" {
		targeted[s.primaryID] = true
	}
	for _, id := range s.secondaryIDs {
		targeted[id] = true
	}
	for _, c := range s.all() {
		r.DrawCombatant(c, c.ID == s.highlightedID, targeted[c.ID])
	}
	for _, c := range s.all() {
		if a, ok := s.actions[c.ID]; ok && a.projectile != nil {
			r.DrawProjectile(*a.projectile)
		}
	}
	for _, e := range s.effects {
		r.DrawEffect(e)
	}
}

// Players returns the player combatants in slot order.
func (s *Session) Players() []*Combatant { return append([]*Combatant(nil), s.players...) }

// Monsters returns the monster combatants in draw order.
func (s *Session) Monsters() []*Combatant { return append([]*Combatant(nil), s.monsters...) }

// Combatant returns the combatant with id, or nil.
func (s *Session) Combatant(id string) *Combatant { return s.byID[id] }

// Living returns the living combatants on the players' or monsters' side.
func (s *Session) Living(players bool) []*Combatant {
	var out []*Combatant
	for _, c := range s.side(players) {
		if c.IsAlive() {
			out = append(out, c)
		}
	}
	return out
}

// Highlighted returns the combatant whose turn it is, or nil between turns.
func (s *Session) Highlighted() *Combatant { return s.byID[s.highlightedID] }

// PrimaryTarget returns the selected primary target, or nil.
func (s *Session) PrimaryTarget() *Combatant { return s.byID[s.primaryID] }

// SecondaryTargets returns the selected adjacent targets.
func (s *Session) SecondaryTargets() []*Combatant {
	out := make([]*Combatant, 0, len(s.secondaryIDs))
	for _, id := range s.secondaryIDs {
		out = append(out, s.byID[id])
	}
	return out
}

// FirstEnemyTarget returns the first living opponent of the highlighted
// combatant, or of the party when nobody is highlighted.
func (s *Session) FirstEnemyTarget() *Combatant {
	h := s.Highlighted()
	players := h != nil && h.Kind == KindMonster
	return firstAlive(s.side(players))
}

// FirstAllyTarget returns the first living ally of the highlighted
// combatant, or of the party when nobody is highlighted.
func (s *Session) FirstAllyTarget() *Combatant {
	h := s.Highlighted()
	players := h == nil || h.Kind == KindPlayer
	return firstAlive(s.side(players))
}

func firstAlive(side []*Combatant) *Combatant {
	for _, c := range side {
		if c.IsAlive() {
			return c
		}
	}
	return nil
}

// Action returns the in-flight action of combatantID, if any.
func (s *Session) Action(combatantID string) (*Action, bool) {
	a, ok := s.actions[combatantID]
	return a, ok
}

// IsPlayersTurn reports whether the party is acting.
func (s *Session) IsPlayersTurn() bool { return s.playersTurn }

// IsPlayersTurnComplete reports whether every living player has taken its turn.
func (s *Session) IsPlayersTurnComplete() bool { return sideComplete(s.players) }

// IsMonstersTurnComplete reports whether every living monster has taken its turn.
func (s *Session) IsMonstersTurnComplete() bool { return sideComplete(s.monsters) }

func sideComplete(side []*Combatant) bool {
	for _, c := range side {
		if c.IsAlive() && !c.TurnTaken {
			return false
		}
	}
	return true
}

// AwaitingPlayerCommand reports whether the HUD may commit an action or flee now.
func (s *Session) AwaitingPlayerCommand() bool { return s.awaitingPlayerCommand() }

// IsDelaying reports whether a phase delay is counting down.
func (s *Session) IsDelaying() bool { return s.delay.Active() }

// Flow returns the turn-flow state.
func (s *Session) Flow() TurnFlow { return s.flow }

// Flee returns the flee state.
func (s *Session) Flee() FleeState { return s.flee }

// Round returns the current round, starting at 1 once the first turn begins.
func (s *Session) Round() int { return s.round }

// Ending returns how the combat finished, or EndingNone while it runs.
func (s *Session) Ending() EndingState { return s.ending }

// Rewards returns the rewards computed on victory.
func (s *Session) Rewards() character.Rewards { return s.rewards }

// Roller returns the shared roller.
func (s *Session) Roller() *dice.Roller { return s.roller }

// Logger returns the session logger.
func (s *Session) Logger() *zap.Logger { return s.logger }

// Effects returns the floating effects currently on screen.
func (s *Session) Effects() []FloatingEffect { return append([]FloatingEffect(nil), s.effects...) }
