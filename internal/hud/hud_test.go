package hud_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tilequest/internal/game/character"
	"github.com/cory-johannsen/tilequest/internal/game/combat"
	"github.com/cory-johannsen/tilequest/internal/game/dice"
	"github.com/cory-johannsen/tilequest/internal/game/inventory"
	"github.com/cory-johannsen/tilequest/internal/game/npc"
	"github.com/cory-johannsen/tilequest/internal/game/ruleset"
	"github.com/cory-johannsen/tilequest/internal/game/stats"
	"github.com/cory-johannsen/tilequest/internal/hud"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

type world struct {
	engine *combat.Engine
	menu   *hud.Menu
	party  *character.Party
}

func newWorld(t *testing.T) *world {
	t.Helper()
	rules := ruleset.NewRegistry()
	require.NoError(t, rules.RegisterSpell(&ruleset.Spell{
		ID: "bolt", Name: "Bolt", MagicPointCost: 2, Offensive: true, UsableInBattle: true, AdjacentTargets: 1,
		TargetEffectRange: stats.Range{HealthPoints: dice.IntRange{Min: 3, Max: 3}},
	}))
	require.NoError(t, rules.RegisterClass(&ruleset.Class{
		ID: "mage", Name: "Mage",
		InitialStatistics: stats.Value{HealthPoints: 20, MagicPoints: 10, PhysicalOffense: 2},
		Spells:            []ruleset.LearnedSpell{{SpellID: "bolt", Level: 1}},
	}))
	require.NoError(t, rules.RegisterClass(&ruleset.Class{
		ID: "slime", Name: "Slime", InitialStatistics: stats.Value{HealthPoints: 40},
	}))
	items := inventory.NewRegistry()
	require.NoError(t, items.RegisterItem(&inventory.ItemDef{
		ID: "potion", Name: "Potion", Kind: inventory.KindConsumable, UsableInBattle: true, MaxStack: 9,
		TargetEffectRange: stats.Range{HealthPoints: dice.IntRange{Min: 5, Max: 5}},
	}))
	require.NoError(t, items.RegisterItem(&inventory.ItemDef{
		ID: "pebble", Name: "Pebble", Kind: inventory.KindJunk, MaxStack: 9,
	}))
	bestiary := npc.NewBestiary(rules)
	require.NoError(t, bestiary.Register(&npc.Template{ID: "slime", Name: "Slime", Class: "slime", Level: 1}))

	mage, _ := rules.Class("mage")
	var players []*character.Player
	for i := 0; i < 2; i++ {
		p, err := character.Build("mage", mage, 1)
		require.NoError(t, err)
		players = append(players, p)
	}
	party := character.NewParty(players...)
	_, err := party.Pack.Add("potion", 2, items)
	require.NoError(t, err)
	_, err = party.Pack.Add("pebble", 1, items)
	require.NoError(t, err)

	e, err := combat.NewEngine(combat.Options{
		Roller:   dice.NewLoggedRoller(fixedSrc{0}, zap.NewNop()),
		Rules:    rules,
		Bestiary: bestiary,
		Party:    party,
	})
	require.NoError(t, err)
	require.NoError(t, e.StartNewFixedCombat(&combat.FixedEncounter{
		ID:            "slimes",
		Monsters:      []combat.EncounterMonster{{Template: "slime", Count: 3}},
		FleeThreshold: 50,
	}))
	return &world{engine: e, menu: hud.NewMenu(e, party.Pack, items, zap.NewNop()), party: party}
}

func (w *world) session(t *testing.T) *combat.Session {
	t.Helper()
	s, err := w.engine.Session()
	require.NoError(t, err)
	return s
}

func (w *world) start(t *testing.T) *combat.Session {
	t.Helper()
	w.engine.Update(1001 * time.Millisecond)
	s := w.session(t)
	require.True(t, s.AwaitingPlayerCommand())
	return s
}

func press(t *testing.T, m *hud.Menu, keys ...hud.Key) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, m.HandleKey(k))
	}
}

func TestMenu_IgnoresKeysOutsidePlayerTurn(t *testing.T) {
	w := newWorld(t)
	press(t, w.menu, hud.KeyDown, hud.KeyConfirm)
	assert.Equal(t, hud.ModeTop, w.menu.Mode())
	assert.Equal(t, hud.View{}, w.menu.View())
}

func TestMenu_AttackCyclesEnemyTargets(t *testing.T) {
	w := newWorld(t)
	s := w.start(t)
	v := w.menu.View()
	assert.Equal(t, []string{"Attack", "Spell", "Item", "Defend", "Flee"}, v.Options)

	press(t, w.menu, hud.KeyConfirm)
	assert.Equal(t, hud.ModeTarget, w.menu.Mode())
	monsters := s.Monsters()
	assert.Equal(t, monsters[0], s.PrimaryTarget())
	assert.Len(t, w.menu.View().Options, 3)

	press(t, w.menu, hud.KeyRight)
	assert.Equal(t, monsters[1], s.PrimaryTarget())

	press(t, w.menu, hud.KeyConfirm)
	a, ok := s.Action(s.Players()[0].ID)
	require.True(t, ok)
	assert.Equal(t, combat.ActionMelee, a.Kind)
	assert.Equal(t, monsters[1].ID, a.TargetID)
	assert.Equal(t, hud.ModeTop, w.menu.Mode())
}

func TestMenu_Defend(t *testing.T) {
	w := newWorld(t)
	s := w.start(t)
	press(t, w.menu, hud.KeyDown, hud.KeyDown, hud.KeyDown, hud.KeyConfirm)
	a, ok := s.Action(s.Players()[0].ID)
	require.True(t, ok)
	assert.Equal(t, combat.ActionDefend, a.Kind)
}

func TestMenu_FleeWrapsFromTop(t *testing.T) {
	w := newWorld(t)
	s := w.start(t)
	press(t, w.menu, hud.KeyUp)
	assert.Equal(t, 4, w.menu.View().Cursor)
	press(t, w.menu, hud.KeyConfirm)
	assert.Equal(t, combat.FleeAttempting, s.Flee())
}

func TestMenu_SpellPageAndCancel(t *testing.T) {
	w := newWorld(t)
	s := w.start(t)
	press(t, w.menu, hud.KeyDown, hud.KeyConfirm)
	assert.Equal(t, hud.ModeSpell, w.menu.Mode())
	assert.Equal(t, []string{"Bolt (2 MP)"}, w.menu.View().Options)

	press(t, w.menu, hud.KeyConfirm)
	assert.Equal(t, hud.ModeTarget, w.menu.Mode())
	assert.Len(t, s.SecondaryTargets(), 1, "bolt previews its adjacent target")

	press(t, w.menu, hud.KeyCancel)
	assert.Equal(t, hud.ModeSpell, w.menu.Mode())
	press(t, w.menu, hud.KeyCancel)
	assert.Equal(t, hud.ModeTop, w.menu.Mode())
	_, busy := s.Action(s.Players()[0].ID)
	assert.False(t, busy)
}

func TestMenu_CancelClearsTargetPreview(t *testing.T) {
	w := newWorld(t)
	s := w.start(t)
	press(t, w.menu, hud.KeyDown, hud.KeyConfirm, hud.KeyConfirm)
	require.NotNil(t, s.PrimaryTarget())
	require.NotEmpty(t, s.SecondaryTargets())

	press(t, w.menu, hud.KeyCancel)
	assert.Equal(t, hud.ModeSpell, w.menu.Mode())
	assert.Nil(t, s.PrimaryTarget())
	assert.Empty(t, s.SecondaryTargets())

	w.engine.Update(16 * time.Millisecond)
	assert.Nil(t, s.PrimaryTarget(), "no in-flight action re-selects a target")

	press(t, w.menu, hud.KeyCancel, hud.KeyConfirm)
	assert.Equal(t, hud.ModeTarget, w.menu.Mode())
	assert.Equal(t, s.Monsters()[0], s.PrimaryTarget())
}

func TestMenu_ItemTargetsAllies(t *testing.T) {
	w := newWorld(t)
	s := w.start(t)
	press(t, w.menu, hud.KeyDown, hud.KeyDown, hud.KeyConfirm)
	assert.Equal(t, hud.ModeItem, w.menu.Mode())
	assert.Equal(t, []string{"Potion x2"}, w.menu.View().Options, "junk is not offered")

	press(t, w.menu, hud.KeyConfirm)
	players := s.Players()
	assert.Equal(t, players[0], s.PrimaryTarget())
	press(t, w.menu, hud.KeyDown, hud.KeyConfirm)

	a, ok := s.Action(players[0].ID)
	require.True(t, ok)
	assert.Equal(t, combat.ActionItem, a.Kind)
	assert.Equal(t, players[1].ID, a.TargetID)
	assert.Equal(t, 1, w.party.Pack.Count("potion"))
}

func TestMessageLog(t *testing.T) {
	l := hud.NewMessageLog(2)
	assert.Empty(t, l.Latest())
	l.Narrate(combat.MsgPartyTurn)
	l.Narrate(combat.MsgEnemyTurn)
	l.Narrate(combat.MsgFled)
	assert.Equal(t, []string{combat.MsgEnemyTurn, combat.MsgFled}, l.Messages())
	assert.Equal(t, combat.MsgFled, l.Latest())
}
