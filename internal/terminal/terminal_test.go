package terminal_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
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
	"github.com/cory-johannsen/tilequest/internal/terminal"
)

const tick = 1001 * time.Millisecond

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

type countingStore struct {
	mu    sync.Mutex
	saves int
}

func (s *countingStore) Save(_ context.Context, _ *character.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return nil
}

func (s *countingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(100, 30)
	t.Cleanup(s.Fini)
	return s
}

func rowText(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return b.String()
}

func screenText(s tcell.Screen) string {
	_, h := s.Size()
	var rows []string
	for y := 0; y < h; y++ {
		rows = append(rows, rowText(s, y))
	}
	return strings.Join(rows, "\n")
}

type fixture struct {
	screen tcell.SimulationScreen
	party  *character.Party
	store  *countingStore
	cfg    terminal.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rules := ruleset.NewRegistry()
	require.NoError(t, rules.RegisterClass(&ruleset.Class{
		ID: "hero", Name: "Hero",
		InitialStatistics: stats.Value{HealthPoints: 30, PhysicalOffense: 100},
	}))
	require.NoError(t, rules.RegisterClass(&ruleset.Class{
		ID: "slime", Name: "Slime", InitialStatistics: stats.Value{HealthPoints: 1},
		BaseExperienceValue: 4, BaseGoldValue: 3,
	}))
	items := inventory.NewRegistry()
	bestiary := npc.NewBestiary(rules)
	require.NoError(t, bestiary.Register(&npc.Template{ID: "slime", Name: "Slime", Class: "slime", Level: 1}))

	hero, _ := rules.Class("hero")
	ada, err := character.Build("Ada", hero, 1)
	require.NoError(t, err)
	party := character.NewParty(ada)

	settings := combat.DefaultSettings()
	settings.MeleeSpeed = 10000
	settings.ProjectileSpeed = 10000

	screen := newScreen(t)
	store := &countingStore{}
	return &fixture{
		screen: screen,
		party:  party,
		store:  store,
		cfg: terminal.Config{
			Screen: screen,
			Combat: combat.Options{
				Settings: settings,
				Roller:   dice.NewLoggedRoller(fixedSrc{0}, zap.NewNop()),
				Rules:    rules,
				Bestiary: bestiary,
			},
			Party: party,
			Items: items,
			Encounters: &combat.Encounters{
				Fixed: map[string]*combat.FixedEncounter{
					"intro": {ID: "intro", Monsters: []combat.EncounterMonster{{Template: "slime", Count: 1}}, Music: "battle"},
				},
				Random: map[string]*combat.RandomEncounter{
					"wild": {
						ID:           "wild",
						MonsterCount: dice.IntRange{Min: 2, Max: 2},
						Entries:      []combat.WeightedMonster{{Template: "slime", Weight: 1}},
					},
				},
			},
			Store:          store,
			FirstEncounter: "intro",
			Logger:         zap.NewNop(),
		},
	}
}

func (f *fixture) game(t *testing.T) *terminal.Game {
	t.Helper()
	g, err := terminal.NewGame(f.cfg)
	require.NoError(t, err)
	return g
}

func key(k tcell.Key) *tcell.EventKey { return tcell.NewEventKey(k, 0, tcell.ModNone) }

func runeKey(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

// fight attacks the first enemy whenever a command is awaited until the battle ends.
func fight(t *testing.T, g *terminal.Game) {
	t.Helper()
	for i := 0; i < 500 && g.InBattle(); i++ {
		if s, err := g.Engine().Session(); err == nil && s.AwaitingPlayerCommand() {
			g.HandleEvent(key(tcell.KeyEnter))
			g.HandleEvent(key(tcell.KeyEnter))
		}
		g.Tick(tick)
	}
	require.False(t, g.InBattle(), "battle did not end")
}

func TestNewGame_Validates(t *testing.T) {
	f := newFixture(t)

	cfg := f.cfg
	cfg.Encounters = &combat.Encounters{}
	_, err := terminal.NewGame(cfg)
	assert.Error(t, err)

	cfg = f.cfg
	cfg.FirstEncounter = "missing"
	_, err = terminal.NewGame(cfg)
	assert.Error(t, err)

	cfg = f.cfg
	cfg.Combat.Rules = nil
	_, err = terminal.NewGame(cfg)
	assert.ErrorIs(t, err, combat.ErrInvalidArgument)
}

func TestGame_CampScreen(t *testing.T) {
	f := newFixture(t)
	g := f.game(t)
	g.Draw()

	text := screenText(f.screen)
	assert.Contains(t, text, "Camp")
	assert.Contains(t, text, "Ada")
	assert.Contains(t, text, "Gold 0")
}

func TestGame_FirstEncounterThenVictory(t *testing.T) {
	f := newFixture(t)
	g := f.game(t)

	assert.False(t, g.HandleEvent(key(tcell.KeyEnter)))
	require.True(t, g.InBattle())
	s, err := g.Engine().Session()
	require.NoError(t, err)
	assert.Len(t, s.Monsters(), 1)

	g.Tick(tick)
	g.Draw()
	text := screenText(f.screen)
	assert.Contains(t, text, "Attack")
	assert.Contains(t, text, "♪ battle")

	fight(t, g)
	res, ok := g.Engine().LastResult()
	require.True(t, ok)
	assert.Equal(t, combat.EndingVictory, res.Ending)
	assert.Equal(t, combat.MsgVictory, g.Summary()[0])
	assert.Contains(t, g.Summary(), "Found 3 gold.")
	assert.Equal(t, 3, f.party.Gold)
	assert.Equal(t, 1, f.store.count())

	g.Draw()
	assert.Contains(t, screenText(f.screen), "Victory!")

	g.HandleEvent(key(tcell.KeyEnter))
	g.Draw()
	assert.Contains(t, screenText(f.screen), "Camp")
}

func TestGame_RandomEncounterAfterFirst(t *testing.T) {
	f := newFixture(t)
	g := f.game(t)

	g.HandleEvent(key(tcell.KeyEnter))
	fight(t, g)
	g.HandleEvent(key(tcell.KeyEnter))

	g.HandleEvent(key(tcell.KeyEnter))
	require.True(t, g.InBattle())
	s, err := g.Engine().Session()
	require.NoError(t, err)
	assert.Len(t, s.Monsters(), 2)
}

func TestGame_RestAtCamp(t *testing.T) {
	f := newFixture(t)
	g := f.game(t)
	ada := f.party.Players[0]
	ada.ApplyModifier(stats.Value{HealthPoints: -10})

	g.HandleEvent(runeKey('r'))
	assert.Equal(t, ada.MaxStatistics(), ada.Statistics())
	assert.Contains(t, g.Messages().Latest(), "rests")
}

func TestGame_QuitKeys(t *testing.T) {
	f := newFixture(t)
	g := f.game(t)
	assert.True(t, g.HandleEvent(runeKey('q')))
	assert.True(t, g.HandleEvent(key(tcell.KeyCtrlC)))
	assert.False(t, g.HandleEvent(runeKey('x')))
}

func TestGame_RunStopsAndSaves(t *testing.T) {
	f := newFixture(t)
	g := f.game(t)

	done := make(chan error, 1)
	go func() { done <- g.Run() }()
	g.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("game did not stop")
	}
	assert.Equal(t, 1, f.store.count())
	assert.NotPanics(t, g.Stop)
}

func TestMenuKey(t *testing.T) {
	cases := []struct {
		ev   *tcell.EventKey
		want hud.Key
	}{
		{key(tcell.KeyUp), hud.KeyUp},
		{runeKey('j'), hud.KeyDown},
		{runeKey('a'), hud.KeyLeft},
		{key(tcell.KeyRight), hud.KeyRight},
		{key(tcell.KeyEnter), hud.KeyConfirm},
		{runeKey(' '), hud.KeyConfirm},
		{key(tcell.KeyEscape), hud.KeyCancel},
	}
	for _, tc := range cases {
		got, ok := terminal.MenuKey(tc.ev)
		require.True(t, ok)
		assert.Equal(t, tc.want, got)
	}
	_, ok := terminal.MenuKey(runeKey('z'))
	assert.False(t, ok)
}

func TestAudio_MusicStack(t *testing.T) {
	a := terminal.NewAudio(newScreen(t), zap.NewNop())
	assert.Equal(t, "", a.Playing())
	a.PushMusic("town")
	a.PushMusic("battle")
	assert.Equal(t, "battle", a.Playing())
	a.PopMusic()
	assert.Equal(t, "town", a.Playing())
	a.PopMusic()
	a.PopMusic()
	assert.Equal(t, "", a.Playing())
	assert.NotPanics(t, func() { a.PlayCue(combat.CueDeath) })
}

func TestRenderer_DrawEffect(t *testing.T) {
	s := newScreen(t)
	r := terminal.NewRenderer(s)
	r.DrawEffect(combat.FloatingEffect{Label: "HP", Amount: -5, Position: combat.Vec2{X: 40, Y: 80}})
	assert.Contains(t, rowText(s, 80/8-1), "HP-5")

	r.DrawProjectile(combat.Projectile{Kind: combat.ActionSpell, Position: combat.Vec2{X: 8, Y: 16}})
	got, _, _, _ := s.GetContent(2, 2)
	assert.Equal(t, '*', got)
}
