package combat

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tilequest/internal/game/character"
	"github.com/cory-johannsen/tilequest/internal/game/dice"
	"github.com/cory-johannsen/tilequest/internal/game/npc"
	"github.com/cory-johannsen/tilequest/internal/game/ruleset"
	"github.com/cory-johannsen/tilequest/internal/game/sprite"
)

// Options wires an Engine to its content and collaborators. Roller, Rules,
// Bestiary and Party are required; the rest default to no-ops.
type Options struct {
	Settings Settings
	Logger   *zap.Logger
	Roller   *dice.Roller
	Rules    *ruleset.Registry
	Bestiary *npc.Bestiary
	Party    Party
	Audio    Audio
	Rewards  RewardsPresenter
	GameOver GameOver
	Narrator Narrator
	Brains   BrainFactory
}

// Result is the outcome of the most recently finished combat.
type Result struct {
	Ending  EndingState
	Rewards character.Rewards
	Rounds  int
}

// Engine runs at most one combat Session at a time. It is not safe for
// concurrent use; the host loop owns it.
type Engine struct {
	deps     sessionDeps
	rules    *ruleset.Registry
	bestiary *npc.Bestiary

	session *Session
	last    *Result
}

// NewEngine validates opts and returns an idle Engine.
//
// Precondition: opts.Roller, opts.Rules, opts.Bestiary and opts.Party are non-nil.
// Postcondition: IsActive() is false.
func NewEngine(opts Options) (*Engine, error) {
	switch {
	case opts.Roller == nil:
		return nil, fmt.Errorf("%w: engine needs a roller", ErrInvalidArgument)
	case opts.Rules == nil:
		return nil, fmt.Errorf("%w: engine needs a ruleset", ErrInvalidArgument)
	case opts.Bestiary == nil:
		return nil, fmt.Errorf("%w: engine needs a bestiary", ErrInvalidArgument)
	case opts.Party == nil:
		return nil, fmt.Errorf("%w: engine needs a party", ErrInvalidArgument)
	}
	if opts.Settings == (Settings{}) {
		opts.Settings = DefaultSettings()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Audio == nil {
		opts.Audio = nopAudio{}
	}
	if opts.Rewards == nil {
		opts.Rewards = nopRewards{}
	}
	if opts.GameOver == nil {
		opts.GameOver = nopGameOver{}
	}
	if opts.Narrator == nil {
		opts.Narrator = nopNarrator{}
	}
	return &Engine{
		deps: sessionDeps{
			settings: opts.Settings,
			logger:   opts.Logger,
			roller:   opts.Roller,
			party:    opts.Party,
			audio:    opts.Audio,
			rewards:  opts.Rewards,
			gameOver: opts.GameOver,
			narrator: opts.Narrator,
			brains:   opts.Brains,
		},
		rules:    opts.Rules,
		bestiary: opts.Bestiary,
	}, nil
}

// StartNewFixedCombat begins a combat against the encounter's fixed roster.
//
// Precondition: no combat is active.
// Postcondition: on success IsActive() is true.
func (e *Engine) StartNewFixedCombat(enc *FixedEncounter) error {
	if e.session != nil {
		return ErrCombatActive
	}
	if enc == nil {
		return fmt.Errorf("%w: nil encounter", ErrInvalidArgument)
	}
	ids, err := enc.Compose()
	if err != nil {
		return err
	}
	return e.start(ids, enc.FleeThreshold, enc.Music)
}

// StartNewRandomCombat begins a combat against a freshly rolled roster.
//
// Precondition: no combat is active.
// Postcondition: on success IsActive() is true.
func (e *Engine) StartNewRandomCombat(enc *RandomEncounter) error {
	if e.session != nil {
		return ErrCombatActive
	}
	if enc == nil {
		return fmt.Errorf("%w: nil encounter", ErrInvalidArgument)
	}
	return e.start(enc.Compose(e.deps.roller), enc.FleeThreshold, enc.Music)
}

func (e *Engine) start(templateIDs []string, fleeThreshold int, music string) error {
	roster := e.deps.party.Roster()
	players := make([]*Combatant, 0, len(roster))
	for i, p := range roster {
		if i == MaxCombatantsPerSide {
			break
		}
		spells, err := e.rules.ResolveSpells(p.SpellIDs())
		if err != nil {
			return fmt.Errorf("resolving spells for %s: %w", p.Name, err)
		}
		players = append(players, newPlayerCombatant(fmt.Sprintf("player-%d", i+1), p, spells, Vec2{}))
	}
	monsters := make([]*Combatant, 0, len(templateIDs))
	looks := make(map[string]*sprite.Sprite)
	for _, id := range templateIDs {
		inst, err := e.bestiary.Spawn(id)
		if err != nil {
			return fmt.Errorf("spawning %q: %w", id, err)
		}
		look, ok := looks[id]
		if !ok {
			look = monsterSprite(inst)
			looks[id] = look
		}
		monsters = append(monsters, newMonsterCombatant(inst.ID, inst, look.Clone(), Vec2{}))
	}
	s, err := newSession(e.deps, players, monsters, fleeThreshold, music)
	if err != nil {
		return err
	}
	e.session = s
	e.last = nil
	return nil
}

// Update advances the active combat by dt. When the combat ends the Engine
// records its Result and becomes inactive. It is a no-op while inactive.
func (e *Engine) Update(dt time.Duration) {
	if e.session == nil {
		return
	}
	e.session.Update(dt)
	if end := e.session.Ending(); end != EndingNone {
		e.last = &Result{Ending: end, Rewards: e.session.Rewards(), Rounds: e.session.Round()}
		e.session = nil
	}
}

// Draw renders the active combat through r.
func (e *Engine) Draw(r Renderer) error {
	s, err := e.Session()
	if err != nil {
		return err
	}
	s.Draw(r)
	return nil
}

// ClearCombat abandons the active combat without rewards. It is safe to call when inactive.
func (e *Engine) ClearCombat() {
	if e.session == nil {
		return
	}
	if e.session.music != "" {
		e.deps.audio.PopMusic()
	}
	e.deps.logger.Info("combat cleared", zap.Int("round", e.session.Round()))
	e.session = nil
}

// Roller returns the shared roller, for host decisions such as picking the next encounter.
func (e *Engine) Roller() *dice.Roller { return e.deps.roller }

// IsActive reports whether a combat is running.
func (e *Engine) IsActive() bool { return e.session != nil }

// LastResult returns the outcome of the most recently finished combat.
func (e *Engine) LastResult() (Result, bool) {
	if e.last == nil {
		return Result{}, false
	}
	return *e.last, true
}

// Session returns the active session.
func (e *Engine) Session() (*Session, error) {
	if e.session == nil {
		return nil, ErrNoActiveCombat
	}
	return e.session, nil
}

// Commit starts a's action for the highlighted player.
func (e *Engine) Commit(a *Action) error {
	s, err := e.Session()
	if err != nil {
		return err
	}
	return s.Commit(a)
}

// AttemptFlee starts a flee attempt during the players' turn.
func (e *Engine) AttemptFlee() error {
	s, err := e.Session()
	if err != nil {
		return err
	}
	return s.AttemptFlee()
}

// SetTargets updates the target selection of the active combat.
func (e *Engine) SetTargets(primaryID string, adjacentCount int) error {
	s, err := e.Session()
	if err != nil {
		return err
	}
	return s.SetTargets(primaryID, adjacentCount)
}

// ClearTargets drops the target selection of the active combat.
func (e *Engine) ClearTargets() error {
	s, err := e.Session()
	if err != nil {
		return err
	}
	s.ClearTargets()
	return nil
}

// IsPlayersTurn reports whether the party is acting.
func (e *Engine) IsPlayersTurn() (bool, error) {
	s, err := e.Session()
	if err != nil {
		return false, err
	}
	return s.IsPlayersTurn(), nil
}

// IsDelaying reports whether a phase delay is counting down.
func (e *Engine) IsDelaying() (bool, error) {
	s, err := e.Session()
	if err != nil {
		return false, err
	}
	return s.IsDelaying(), nil
}

// Players returns the player combatants.
func (e *Engine) Players() ([]*Combatant, error) {
	s, err := e.Session()
	if err != nil {
		return nil, err
	}
	return s.Players(), nil
}

// Monsters returns the monster combatants.
func (e *Engine) Monsters() ([]*Combatant, error) {
	s, err := e.Session()
	if err != nil {
		return nil, err
	}
	return s.Monsters(), nil
}

// Highlighted returns the combatant whose turn it is; nil between turns.
func (e *Engine) Highlighted() (*Combatant, error) {
	s, err := e.Session()
	if err != nil {
		return nil, err
	}
	return s.Highlighted(), nil
}

// PrimaryTarget returns the selected primary target; nil when none is selected.
func (e *Engine) PrimaryTarget() (*Combatant, error) {
	s, err := e.Session()
	if err != nil {
		return nil, err
	}
	return s.PrimaryTarget(), nil
}

// SecondaryTargets returns the selected adjacent targets.
func (e *Engine) SecondaryTargets() ([]*Combatant, error) {
	s, err := e.Session()
	if err != nil {
		return nil, err
	}
	return s.SecondaryTargets(), nil
}

// FirstEnemyTarget returns the first living opponent of the highlighted combatant.
func (e *Engine) FirstEnemyTarget() (*Combatant, error) {
	s, err := e.Session()
	if err != nil {
		return nil, err
	}
	return s.FirstEnemyTarget(), nil
}

// FirstAllyTarget returns the first living ally of the highlighted combatant.
func (e *Engine) FirstAllyTarget() (*Combatant, error) {
	s, err := e.Session()
	if err != nil {
		return nil, err
	}
	return s.FirstAllyTarget(), nil
}
