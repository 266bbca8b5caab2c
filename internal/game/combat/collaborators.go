package combat

import "github.com/cory-johannsen/tilequest/internal/game/character"

// Audio plays music and sound cues. Calls are fire-and-forget.
type Audio interface {
	PlayCue(name string)
	PushMusic(name string)
	PopMusic()
}

// RewardsPresenter shows the spoils of a won combat.
type RewardsPresenter interface {
	PresentRewards(r character.Rewards, levelUps []character.LevelUp)
}

// GameOver takes over the host screen when the party is defeated.
type GameOver interface {
	GameOver()
}

// Narrator displays short combat messages on the HUD.
type Narrator interface {
	Narrate(msg string)
}

// Party is the persistent party the combat draws its players from.
type Party interface {
	// Roster returns the living players that enter combat.
	Roster() []*character.Player
	ConsumeItem(itemID string) error
	ApplyRewards(r character.Rewards) []character.LevelUp
}

// Renderer draws the battlefield. The session never touches a graphics API itself.
type Renderer interface {
	DrawCombatant(c *Combatant, highlighted, targeted bool)
	DrawProjectile(p Projectile)
	DrawEffect(e FloatingEffect)
}

// Brain chooses a monster's action at the start of its turn. A nil result
// means the monster does nothing this turn.
type Brain interface {
	ChooseAction(s *Session) *Action
}

// BrainFactory builds the Brain for one monster combatant. It is called once
// per monster when the session is constructed.
type BrainFactory func(monster *Combatant, s *Session) Brain

// Cue names played through Audio.
const (
	CueHit    = "hit"
	CueMiss   = "miss"
	CueCast   = "cast"
	CueItem   = "item"
	CueDefend = "defend"
	CueFlee   = "flee"
	CueDeath  = "death"
)

type nopAudio struct{}

func (nopAudio) PlayCue(string)   {}
func (nopAudio) PushMusic(string) {}
func (nopAudio) PopMusic()        {}

type nopRewards struct{}

func (nopRewards) PresentRewards(character.Rewards, []character.LevelUp) {}

type nopGameOver struct{}

func (nopGameOver) GameOver() {}

type nopNarrator struct{}

func (nopNarrator) Narrate(string) {}
