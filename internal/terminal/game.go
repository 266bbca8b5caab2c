package terminal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tilequest/internal/game/character"
	"github.com/cory-johannsen/tilequest/internal/game/combat"
	"github.com/cory-johannsen/tilequest/internal/game/inventory"
	"github.com/cory-johannsen/tilequest/internal/hud"
)

// saveTimeout bounds one party save.
const saveTimeout = 5 * time.Second

// PartyStore persists the party between fights.
type PartyStore interface {
	Save(ctx context.Context, p *character.Party) error
}

// Config wires a Game.
type Config struct {
	Screen tcell.Screen
	// Combat configures the engine. Party, Narrator, Audio, Rewards and
	// GameOver are supplied by the Game.
	Combat     combat.Options
	Party      *character.Party
	Items      *inventory.Registry
	Encounters *combat.Encounters
	// Store is optional; without one the party lives only in memory.
	Store    PartyStore
	Interval time.Duration
	// FirstEncounter names a fixed encounter fought before any random one.
	FirstEncounter string
	Logger         *zap.Logger
}

type phase int

const (
	phaseCamp phase = iota
	phaseBattle
	phaseAftermath
)

// Game is the terminal host: between fights the party rests at camp, and
// each fight runs frame by frame until the engine reports an ending.
type Game struct {
	screen     tcell.Screen
	engine     *combat.Engine
	menu       *hud.Menu
	log        *hud.MessageLog
	audio      *Audio
	renderer   *Renderer
	party      *character.Party
	items      *inventory.Registry
	encounters *combat.Encounters
	store      PartyStore
	logger     *zap.Logger
	interval   time.Duration
	first      string

	phase    phase
	summary  []string
	defeated bool

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewGame builds the engine and menu around cfg.
//
// Precondition: Screen must be initialised; Party and Encounters must be non-nil.
// Postcondition: Returns a Game at camp, or a non-nil error.
func NewGame(cfg Config) (*Game, error) {
	if cfg.Screen == nil || cfg.Party == nil || cfg.Encounters == nil {
		return nil, errors.New("terminal: screen, party and encounters are required")
	}
	if len(cfg.Encounters.Fixed) == 0 && len(cfg.Encounters.Random) == 0 {
		return nil, errors.New("terminal: no encounters loaded")
	}
	if cfg.FirstEncounter != "" {
		if _, ok := cfg.Encounters.Fixed[cfg.FirstEncounter]; !ok {
			return nil, fmt.Errorf("terminal: unknown fixed encounter %q", cfg.FirstEncounter)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second / 30
	}

	g := &Game{
		screen:     cfg.Screen,
		log:        hud.NewMessageLog(panelHeight),
		audio:      NewAudio(cfg.Screen, cfg.Logger),
		renderer:   NewRenderer(cfg.Screen),
		party:      cfg.Party,
		items:      cfg.Items,
		encounters: cfg.Encounters,
		store:      cfg.Store,
		logger:     cfg.Logger,
		interval:   cfg.Interval,
		first:      cfg.FirstEncounter,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	opts := cfg.Combat
	opts.Party = cfg.Party
	opts.Narrator = g.log
	opts.Audio = g.audio
	opts.Rewards = g
	opts.GameOver = g
	if opts.Logger == nil {
		opts.Logger = cfg.Logger
	}
	engine, err := combat.NewEngine(opts)
	if err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	g.engine = engine
	g.menu = hud.NewMenu(engine, cfg.Party.Pack, cfg.Items, cfg.Logger)
	return g, nil
}

// Engine returns the combat engine the game drives.
func (g *Game) Engine() *combat.Engine { return g.engine }

// Messages returns the narration log.
func (g *Game) Messages() *hud.MessageLog { return g.log }

// Summary returns the lines shown after the last fight.
func (g *Game) Summary() []string { return append([]string(nil), g.summary...) }

// InBattle reports whether a fight is running.
func (g *Game) InBattle() bool { return g.phase == phaseBattle }

// Run drives the frame loop until the player quits or Stop is called. The
// party is saved before Run returns.
func (g *Game) Run() error {
	defer close(g.done)

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-g.done:
				return
			}
		}
	}()

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	last := time.Now()
	g.Draw()
	for {
		select {
		case <-g.quit:
			g.save()
			return nil
		case ev := <-events:
			if g.HandleEvent(ev) {
				g.save()
				return nil
			}
		case now := <-ticker.C:
			g.Tick(now.Sub(last))
			last = now
			g.Draw()
		}
	}
}

// Stop ends Run and waits for it to return.
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.quit) })
	<-g.done
}

// HandleEvent applies one terminal event and reports whether the player asked to quit.
func (g *Game) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		g.screen.Sync()
	case *tcell.EventKey:
		if isQuit(ev) {
			return true
		}
		g.handleKey(ev)
	}
	return false
}

func (g *Game) handleKey(ev *tcell.EventKey) {
	switch g.phase {
	case phaseCamp:
		switch {
		case ev.Key() == tcell.KeyEnter:
			if err := g.startNext(); err != nil {
				g.logger.Error("starting encounter", zap.Error(err))
				g.log.Narrate("No monsters answer the call.")
			}
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'r':
			g.party.RestoreAll()
			g.log.Narrate("Your party rests and recovers.")
		}
	case phaseBattle:
		k, ok := MenuKey(ev)
		if !ok {
			return
		}
		if err := g.menu.HandleKey(k); err != nil {
			g.logger.Debug("command rejected", zap.Error(err))
			if errors.Is(err, combat.ErrInvalidArgument) {
				g.log.Narrate("That cannot be done now.")
			}
		}
	case phaseAftermath:
		if ev.Key() == tcell.KeyEnter {
			if g.defeated {
				g.party.RestoreAll()
				g.defeated = false
			}
			g.summary = nil
			g.phase = phaseCamp
		}
	}
}

// startNext begins the pending fixed encounter, or a random one.
func (g *Game) startNext() error {
	if g.first != "" {
		enc := g.encounters.Fixed[g.first]
		g.first = ""
		if err := g.engine.StartNewFixedCombat(enc); err != nil {
			return err
		}
		g.enterBattle(enc.ID)
		return nil
	}
	if len(g.encounters.Random) > 0 {
		enc := g.encounters.Random[g.pick(sortedKeys(g.encounters.Random))]
		if err := g.engine.StartNewRandomCombat(enc); err != nil {
			return err
		}
		g.enterBattle(enc.ID)
		return nil
	}
	enc := g.encounters.Fixed[g.pick(sortedKeys(g.encounters.Fixed))]
	if err := g.engine.StartNewFixedCombat(enc); err != nil {
		return err
	}
	g.enterBattle(enc.ID)
	return nil
}

func (g *Game) enterBattle(id string) {
	g.logger.Info("encounter started", zap.String("encounter", id))
	g.menu.Reset()
	g.phase = phaseBattle
}

func (g *Game) pick(ids []string) string {
	roller := g.engine.Roller()
	return ids[roller.Intn("encounter", len(ids))]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Tick advances the running fight by dt and moves to the aftermath once it ends.
func (g *Game) Tick(dt time.Duration) {
	if g.phase != phaseBattle {
		return
	}
	g.engine.Update(dt)
	if g.engine.IsActive() {
		return
	}
	res, _ := g.engine.LastResult()
	g.logger.Info("encounter finished",
		zap.Stringer("ending", res.Ending),
		zap.Int("rounds", res.Rounds),
	)
	switch res.Ending {
	case combat.EndingFled:
		g.summary = []string{combat.MsgFled}
	case combat.EndingLoss:
		g.summary = []string{combat.MsgDefeat, "Press Enter to return to camp."}
	}
	g.phase = phaseAftermath
	g.save()
}

// PresentRewards records the spoils for the aftermath screen.
func (g *Game) PresentRewards(r character.Rewards, levelUps []character.LevelUp) {
	lines := []string{
		combat.MsgVictory,
		fmt.Sprintf("Gained %d experience.", r.Experience),
		fmt.Sprintf("Found %d gold.", r.Gold),
	}
	for _, gi := range r.Gear {
		name := gi.GearDefID
		if g.items != nil {
			if def, ok := g.items.Gear(gi.GearDefID); ok {
				name = def.Name
			}
		}
		lines = append(lines, fmt.Sprintf("Found %s.", name))
	}
	for _, up := range levelUps {
		lines = append(lines, fmt.Sprintf("%s reached level %d!", up.Player.Name, up.Player.Level))
	}
	g.summary = lines
}

// GameOver marks the party as defeated; it is restored on returning to camp.
func (g *Game) GameOver() {
	g.defeated = true
}

func (g *Game) save() {
	if g.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := g.store.Save(ctx, g.party); err != nil {
		g.logger.Error("saving party", zap.Error(err))
		g.log.Narrate("The chronicle could not be saved.")
	}
}

// Draw renders the current phase.
func (g *Game) Draw() {
	g.screen.Clear()
	g.drawStatus()
	switch g.phase {
	case phaseCamp:
		g.drawCamp()
	case phaseBattle:
		if err := g.engine.Draw(g.renderer); err != nil {
			g.logger.Debug("drawing battle", zap.Error(err))
		}
		drawMenu(g.screen, g.menu.View())
	case phaseAftermath:
		drawLines(g.screen, 2, 3, g.summary, styleText)
	}
	drawMessages(g.screen, g.log.Messages())
	g.screen.Show()
}

func (g *Game) drawStatus() {
	status := fmt.Sprintf("Gold %d", g.party.Gold)
	if track := g.audio.Playing(); track != "" {
		status += "  ♪ " + track
	}
	drawText(g.screen, 1, 0, status, styleDim)
}

func (g *Game) drawCamp() {
	lines := []string{"Camp", ""}
	for _, p := range g.party.Players {
		st, max := p.Statistics(), p.MaxStatistics()
		lines = append(lines, fmt.Sprintf("%-12s L%-3d HP %3d/%-3d MP %3d/%-3d",
			p.Name, p.Level, st.HealthPoints, max.HealthPoints, st.MagicPoints, max.MagicPoints))
	}
	lines = append(lines, "", "Enter: seek a fight   r: rest   q: quit")
	drawLines(g.screen, 2, 2, lines, styleText)
}
