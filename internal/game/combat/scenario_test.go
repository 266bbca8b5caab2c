package combat_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tilequest/internal/game/combat"
	"github.com/cory-johannsen/tilequest/internal/game/dice"
)

// autoplay has every player melee the first living monster until the combat ends.
func autoplay(t *testing.T, e *combat.Engine) combat.Result {
	t.Helper()
	for i := 0; i < 500 && e.IsActive(); i++ {
		s, err := e.Session()
		require.NoError(t, err)
		if s.AwaitingPlayerCommand() {
			if target := s.FirstEnemyTarget(); target != nil {
				require.NoError(t, e.Commit(melee(t, s.Highlighted(), target)))
			}
		}
		e.Update(tick)
	}
	require.False(t, e.IsActive(), "combat did not end")
	res, ok := e.LastResult()
	require.True(t, ok)
	return res
}

func TestScenario_FleeSucceeds(t *testing.T) {
	fx := newFixture(t, 1)
	e := fx.engine(t)
	startAwaiting(t, e, fixed("goblin", 1, 100))

	require.NoError(t, e.AttemptFlee())
	e.Update(tick)
	require.True(t, e.IsActive())
	s, err := e.Session()
	require.NoError(t, err)
	assert.Equal(t, combat.FleeSucceeded, s.Flee())
	assert.Contains(t, fx.narrator.msgs, combat.MsgFled)

	e.Update(tick)
	assert.False(t, e.IsActive())
	res, ok := e.LastResult()
	require.True(t, ok)
	assert.Equal(t, combat.EndingFled, res.Ending)
	assert.True(t, res.Rewards.IsZero())
	assert.Zero(t, fx.rewards.called)
	assert.Zero(t, fx.party.Gold)
	assert.Equal(t, 1, fx.audio.popped)
}

func TestScenario_FleeImpossible(t *testing.T) {
	fx := newFixture(t, 2)
	e := fx.engine(t)
	s := startAwaiting(t, e, fixed("goblin", 1, 0))
	fleeing := s.Highlighted()

	require.NoError(t, e.AttemptFlee())
	assert.ErrorIs(t, e.AttemptFlee(), combat.ErrNotPlayersTurn)
	e.Update(tick)

	assert.True(t, e.IsActive())
	assert.Contains(t, fx.narrator.msgs, combat.MsgCannotEscape)
	assert.True(t, fleeing.TurnTaken)
	assert.Equal(t, combat.FleeIdle, s.Flee())

	s = untilAwaiting(t, e)
	assert.Equal(t, s.Players()[1], s.Highlighted())
}

type funcSrc func(n int) int

func (f funcSrc) Intn(n int) int { return f(n) }

func TestScenario_FleeFails(t *testing.T) {
	fx := newFixture(t, 1)
	e, err := combat.NewEngine(combat.Options{
		Roller: dice.NewLoggedRoller(funcSrc(func(n int) int { return n - 1 }), zap.NewNop()),
		Rules:  fx.rules, Bestiary: fx.bestiary, Party: fx.party, Narrator: fx.narrator,
	})
	require.NoError(t, err)
	require.NoError(t, e.StartNewFixedCombat(fixed("goblin", 1, 50)))

	// Initiative rolls 1, so the goblin opens; wait for the party's turn.
	s := untilAwaiting(t, e)
	fleeing := s.Highlighted()
	require.NoError(t, e.AttemptFlee())
	e.Update(tick)

	assert.True(t, e.IsActive())
	assert.Contains(t, fx.narrator.msgs, combat.MsgFailedEscape)
	assert.True(t, fleeing.TurnTaken)
}

func TestScenario_VictoryRewards(t *testing.T) {
	fx := newFixture(t, 2)
	e := fx.engine(t)
	require.NoError(t, e.StartNewFixedCombat(fixed("goblin", 2, 50)))

	res := autoplay(t, e)

	assert.Equal(t, combat.EndingVictory, res.Ending)
	assert.Equal(t, 40, res.Rewards.Experience, "2 goblins x 10 base x level 2")
	assert.Equal(t, 20, res.Rewards.Gold, "2 goblins x 5 base x level 2")
	assert.Empty(t, res.Rewards.Gear)
	assert.Equal(t, 1, fx.rewards.called)
	assert.Equal(t, res.Rewards, fx.rewards.rewards)
	assert.Equal(t, 20, fx.party.Gold)
	assert.Equal(t, 20, fx.party.Players[0].Experience)
	assert.Contains(t, fx.narrator.msgs, combat.MsgVictory)
	assert.Contains(t, fx.audio.cues, combat.CueDeath)
	assert.Zero(t, fx.gameOver.called)
}

func TestScenario_Loss(t *testing.T) {
	fx := newFixture(t, 1)
	e := fx.engine(t)
	s := startAwaiting(t, e, fixed("ogre", 1, 50))
	require.NoError(t, e.Commit(defend(t, s.Highlighted())))

	for i := 0; i < 200 && e.IsActive(); i++ {
		e.Update(tick)
	}
	res, ok := e.LastResult()
	require.True(t, ok)
	assert.Equal(t, combat.EndingLoss, res.Ending)
	assert.True(t, res.Rewards.IsZero())
	assert.Equal(t, 1, fx.gameOver.called)
	assert.Zero(t, fx.rewards.called)
	assert.False(t, fx.party.Players[0].IsAlive())
}

func TestScenario_RandomEncounter(t *testing.T) {
	fx := newFixture(t, 1)
	e := fx.engine(t)
	enc := &combat.RandomEncounter{
		ID:           "woods",
		MonsterCount: dice.IntRange{Min: 3, Max: 3},
		Entries:      []combat.WeightedMonster{{Template: "goblin", Weight: 1}},
	}
	require.NoError(t, enc.Validate())
	require.NoError(t, e.StartNewRandomCombat(enc))
	monsters, err := e.Monsters()
	require.NoError(t, err)
	assert.Len(t, monsters, 3)
}

func TestRandomEncounter_ComposeIsCapped(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lo := rapid.IntRange(1, 10).Draw(t, "lo")
		hi := rapid.IntRange(lo, 12).Draw(t, "hi")
		seed := rapid.Uint64().Draw(t, "seed")
		enc := &combat.RandomEncounter{
			ID:           "r",
			MonsterCount: dice.IntRange{Min: lo, Max: hi},
			Entries: []combat.WeightedMonster{
				{Template: "a", Weight: rapid.IntRange(1, 5).Draw(t, "wa")},
				{Template: "b", Weight: rapid.IntRange(1, 5).Draw(t, "wb")},
			},
		}
		ids := enc.Compose(dice.NewLoggedRoller(dice.NewSeededSource(seed), zap.NewNop()))
		if len(ids) < 1 || len(ids) > combat.MaxCombatantsPerSide {
			t.Fatalf("composed %d monsters", len(ids))
		}
		for _, id := range ids {
			if id != "a" && id != "b" {
				t.Fatalf("unexpected template %q", id)
			}
		}
	})
}

func TestRandomEncounter_WeightedPick(t *testing.T) {
	enc := &combat.RandomEncounter{
		ID:           "r",
		MonsterCount: dice.IntRange{Min: 1, Max: 1},
		Entries: []combat.WeightedMonster{
			{Template: "rare", Weight: 1},
			{Template: "common", Weight: 9},
		},
	}
	pick := func(v int) []string {
		return enc.Compose(dice.NewLoggedRoller(fixedSrc{v}, zap.NewNop()))
	}
	assert.Equal(t, []string{"rare"}, pick(0))
	assert.Equal(t, []string{"common"}, pick(1))
}

func TestFixedEncounter_Compose(t *testing.T) {
	enc := &combat.FixedEncounter{
		ID:       "f",
		Monsters: []combat.EncounterMonster{{Template: "a", Count: 2}, {Template: "b", Count: 1}},
	}
	ids, err := enc.Compose()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a", "b"}, ids)

	enc.Monsters[0].Count = 5
	_, err = enc.Compose()
	assert.ErrorIs(t, err, combat.ErrInvalidRoster)
}

func TestLoadEncounters(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("cave.yaml", `
kind: fixed
id: cave
flee_threshold: 0
music: boss
monsters:
  - template: ogre
    count: 1
`)
	write("woods.yaml", `
kind: random
id: woods
flee_threshold: 60
monster_count: {min: 1, max: 4}
entries:
  - template: goblin
    weight: 3
  - template: wolf
    weight: 1
`)
	write("notes.txt", "ignored")

	encs, err := combat.LoadEncounters(dir)
	require.NoError(t, err)
	require.Contains(t, encs.Fixed, "cave")
	assert.Equal(t, "boss", encs.Fixed["cave"].Music)
	require.Contains(t, encs.Random, "woods")
	assert.Equal(t, 60, encs.Random["woods"].FleeThreshold)
	assert.Len(t, encs.Random["woods"].Entries, 2)

	write("bad.yaml", "kind: sideways\nid: bad\n")
	_, err = combat.LoadEncounters(dir)
	assert.Error(t, err)
}

func TestDelay(t *testing.T) {
	var d combat.Delay
	assert.False(t, d.Active())
	assert.False(t, d.Advance(time.Second))

	d.Start(time.Second)
	assert.True(t, d.Active())
	assert.False(t, d.Advance(999*time.Millisecond))
	assert.True(t, d.Advance(time.Millisecond))
	assert.False(t, d.Active())
	assert.False(t, d.Advance(time.Second), "a fired delay does not fire again")

	d.Start(time.Second)
	d.Stop()
	assert.False(t, d.Advance(2*time.Second))
}

func TestDelay_AccumulatesAcrossFrames(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		frames := rapid.SliceOfN(rapid.IntRange(1, 400), 1, 50).Draw(t, "frames")
		var d combat.Delay
		d.Start(time.Second)
		var total time.Duration
		for _, ms := range frames {
			dt := time.Duration(ms) * time.Millisecond
			fired := d.Advance(dt)
			before := total
			total += dt
			want := before < time.Second && total >= time.Second
			if fired != want {
				t.Fatalf("after %v fired=%v, want %v", total, fired, want)
			}
		}
	})
}
