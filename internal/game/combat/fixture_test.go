package combat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tilequest/internal/game/character"
	"github.com/cory-johannsen/tilequest/internal/game/combat"
	"github.com/cory-johannsen/tilequest/internal/game/dice"
	"github.com/cory-johannsen/tilequest/internal/game/inventory"
	"github.com/cory-johannsen/tilequest/internal/game/npc"
	"github.com/cory-johannsen/tilequest/internal/game/ruleset"
	"github.com/cory-johannsen/tilequest/internal/game/stats"
)

// tick is longer than every delay and one-shot animation, so each Update
// completes whatever the current stage is waiting on.
const tick = 1001 * time.Millisecond

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

type recNarrator struct{ msgs []string }

func (n *recNarrator) Narrate(msg string) { n.msgs = append(n.msgs, msg) }

type recRewards struct {
	called  int
	rewards character.Rewards
}

func (r *recRewards) PresentRewards(rw character.Rewards, _ []character.LevelUp) {
	r.called++
	r.rewards = rw
}

type recGameOver struct{ called int }

func (g *recGameOver) GameOver() { g.called++ }

type recAudio struct {
	cues   []string
	pushed []string
	popped int
}

func (a *recAudio) PlayCue(name string)   { a.cues = append(a.cues, name) }
func (a *recAudio) PushMusic(name string) { a.pushed = append(a.pushed, name) }
func (a *recAudio) PopMusic()             { a.popped++ }

type fixture struct {
	rules    *ruleset.Registry
	items    *inventory.Registry
	bestiary *npc.Bestiary
	party    *character.Party
	narrator *recNarrator
	rewards  *recRewards
	gameOver *recGameOver
	audio    *recAudio
}

func newFixture(t *testing.T, players int) *fixture {
	t.Helper()
	rules := ruleset.NewRegistry()
	require.NoError(t, rules.RegisterSpell(&ruleset.Spell{
		ID: "bolt", Name: "Bolt", MagicPointCost: 2, Offensive: true, UsableInBattle: true,
		TargetEffectRange: stats.Range{HealthPoints: dice.IntRange{Min: 3, Max: 3}},
	}))
	require.NoError(t, rules.RegisterSpell(&ruleset.Spell{
		ID: "meteor", Name: "Meteor", MagicPointCost: 99, Offensive: true, UsableInBattle: true,
		TargetEffectRange: stats.Range{HealthPoints: dice.IntRange{Min: 50, Max: 50}},
	}))
	require.NoError(t, rules.RegisterSpell(&ruleset.Spell{
		ID: "light", Name: "Light", UsableInBattle: false,
	}))
	require.NoError(t, rules.RegisterSpell(&ruleset.Spell{
		ID: "arc", Name: "Arc", MagicPointCost: 2, Offensive: true, UsableInBattle: true, AdjacentTargets: 1,
		TargetEffectRange: stats.Range{HealthPoints: dice.IntRange{Min: 2, Max: 2}},
	}))
	require.NoError(t, rules.RegisterSpell(&ruleset.Spell{
		ID: "hex", Name: "Hex", Offensive: true, UsableInBattle: true, Duration: 2,
		TargetEffectRange: stats.Range{
			HealthPoints:    dice.IntRange{Min: 3, Max: 3},
			PhysicalOffense: dice.IntRange{Min: 2, Max: 2},
		},
	}))
	require.NoError(t, rules.RegisterClass(&ruleset.Class{
		ID:                "fighter",
		Name:              "Fighter",
		InitialStatistics: stats.Value{HealthPoints: 30, MagicPoints: 10, PhysicalOffense: 20},
		Spells: []ruleset.LearnedSpell{
			{SpellID: "bolt", Level: 1},
			{SpellID: "meteor", Level: 1},
			{SpellID: "light", Level: 1},
		},
	}))
	require.NoError(t, rules.RegisterClass(&ruleset.Class{
		ID:                  "goblin",
		Name:                "Goblin",
		InitialStatistics:   stats.Value{HealthPoints: 12},
		LevelingStatistics:  stats.Value{HealthPoints: 4},
		BaseExperienceValue: 10,
		BaseGoldValue:       5,
	}))

	items := inventory.NewRegistry()
	require.NoError(t, items.RegisterItem(&inventory.ItemDef{
		ID: "potion", Name: "Potion", Kind: inventory.KindConsumable, UsableInBattle: true, MaxStack: 9,
		TargetEffectRange: stats.Range{HealthPoints: dice.IntRange{Min: 5, Max: 5}},
	}))

	bestiary := npc.NewBestiary(rules)
	for _, tmpl := range []*npc.Template{
		{ID: "goblin", Name: "Goblin", Class: "goblin", Level: 2, DamageRange: dice.IntRange{Min: 3, Max: 3}},
		{ID: "ironclad", Name: "Ironclad", Class: "goblin", Level: 1, HealthDefenseRange: dice.IntRange{Min: 50, Max: 50}},
		{ID: "ogre", Name: "Ogre", Class: "goblin", Level: 1, DamageRange: dice.IntRange{Min: 100, Max: 100}},
		{ID: "warded", Name: "Warded", Class: "goblin", Level: 1, MagicDefenseRange: dice.IntRange{Min: 1, Max: 1}},
	} {
		require.NoError(t, bestiary.Register(tmpl))
	}

	fighter, _ := rules.Class("fighter")
	var members []*character.Player
	for i := 0; i < players; i++ {
		p, err := character.Build("hero", fighter, 1)
		require.NoError(t, err)
		members = append(members, p)
	}
	party := character.NewParty(members...)
	if players > 0 {
		_, err := party.Pack.Add("potion", 2, items)
		require.NoError(t, err)
	}
	return &fixture{
		rules:    rules,
		items:    items,
		bestiary: bestiary,
		party:    party,
		narrator: &recNarrator{},
		rewards:  &recRewards{},
		gameOver: &recGameOver{},
		audio:    &recAudio{},
	}
}

func (f *fixture) engine(t *testing.T) *combat.Engine {
	t.Helper()
	return f.engineWith(t, nil)
}

// engineWith is engine with tweak applied to the settings first.
func (f *fixture) engineWith(t *testing.T, tweak func(*combat.Settings)) *combat.Engine {
	t.Helper()
	settings := combat.DefaultSettings()
	settings.MeleeSpeed = 10000
	settings.ProjectileSpeed = 10000
	if tweak != nil {
		tweak(&settings)
	}
	e, err := combat.NewEngine(combat.Options{
		Settings: settings,
		Logger:   zap.NewNop(),
		Roller:   dice.NewLoggedRoller(fixedSrc{0}, zap.NewNop()),
		Rules:    f.rules,
		Bestiary: f.bestiary,
		Party:    f.party,
		Audio:    f.audio,
		Rewards:  f.rewards,
		GameOver: f.gameOver,
		Narrator: f.narrator,
	})
	require.NoError(t, err)
	return e
}

func fixed(template string, count, threshold int) *combat.FixedEncounter {
	return &combat.FixedEncounter{
		ID:            "test",
		Monsters:      []combat.EncounterMonster{{Template: template, Count: count}},
		FleeThreshold: threshold,
		Music:         "battle",
	}
}

// startAwaiting starts enc and runs the opening delay so the first player is
// waiting for a command.
func startAwaiting(t *testing.T, e *combat.Engine, enc *combat.FixedEncounter) *combat.Session {
	t.Helper()
	require.NoError(t, e.StartNewFixedCombat(enc))
	return untilAwaiting(t, e)
}

func untilAwaiting(t *testing.T, e *combat.Engine) *combat.Session {
	t.Helper()
	for i := 0; i < 100; i++ {
		s, err := e.Session()
		require.NoError(t, err)
		if s.AwaitingPlayerCommand() {
			return s
		}
		e.Update(tick)
	}
	t.Fatal("players never got a turn")
	return nil
}

func melee(t *testing.T, actor, target *combat.Combatant) *combat.Action {
	t.Helper()
	m, err := combat.NewMeleeAction(actor)
	require.NoError(t, err)
	a, err := m.WithTarget(target)
	require.NoError(t, err)
	return a
}

func defend(t *testing.T, actor *combat.Combatant) *combat.Action {
	t.Helper()
	a, err := combat.NewDefendAction(actor)
	require.NoError(t, err)
	return a
}

// castAt commits id, a spell the actor need not know, at target.
func castAt(t *testing.T, fx *fixture, actor, target *combat.Combatant, id string) *combat.Action {
	t.Helper()
	sp, ok := fx.rules.Spell(id)
	require.True(t, ok, id)
	a, err := combat.NewSpellAction(actor, sp)
	require.NoError(t, err)
	a, err = a.WithTarget(target)
	require.NoError(t, err)
	return a
}

func spell(t *testing.T, actor *combat.Combatant, id string) *ruleset.Spell {
	t.Helper()
	for _, sp := range actor.Spells() {
		if sp.ID == id {
			return sp
		}
	}
	t.Fatalf("spell %q not known", id)
	return nil
}
