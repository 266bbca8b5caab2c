// Package main runs tilequest: a terminal host for turn-based party combat.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tilequest/internal/config"
	"github.com/cory-johannsen/tilequest/internal/game/ai"
	"github.com/cory-johannsen/tilequest/internal/game/character"
	"github.com/cory-johannsen/tilequest/internal/game/combat"
	"github.com/cory-johannsen/tilequest/internal/game/dice"
	"github.com/cory-johannsen/tilequest/internal/game/inventory"
	"github.com/cory-johannsen/tilequest/internal/game/npc"
	"github.com/cory-johannsen/tilequest/internal/game/ruleset"
	"github.com/cory-johannsen/tilequest/internal/observability"
	"github.com/cory-johannsen/tilequest/internal/scripting"
	"github.com/cory-johannsen/tilequest/internal/server"
	"github.com/cory-johannsen/tilequest/internal/storage/postgres"
	"github.com/cory-johannsen/tilequest/internal/terminal"
)

// healthInterval is how often the database service pings the pool.
const healthInterval = 30 * time.Second

func main() {
	configPath := flag.String("config", "configs/tilequest.yaml", "path to configuration file")
	partyName := flag.String("party", "default", "name the party is saved under")
	encounter := flag.String("encounter", "", "fixed encounter fought first; empty = random encounters only")
	flag.Parse()

	if err := run(*configPath, *partyName, *encounter); err != nil {
		log.Fatalf("tilequest: %v", err)
	}
}

func run(configPath, partyName, firstEncounter string) error {
	start := time.Now()
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	var src dice.Source
	if cfg.Combat.Seed != 0 {
		src = dice.NewSeededSource(cfg.Combat.Seed)
		logger.Info("using seeded dice", zap.Uint64("seed", cfg.Combat.Seed))
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)

	c, err := loadContent(cfg.Content, logger)
	if err != nil {
		return err
	}

	lc := server.NewLifecycle(logger)

	var (
		party *character.Party
		store terminal.PartyStore
	)
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		repo := postgres.NewPartyRepository(pool.DB(), c.rules, c.items)
		s := repoStore{repo: repo, name: partyName}
		party, err = s.loadOrCreate(ctx, cfg.Content.PartyFile, c)
		if err != nil {
			return err
		}
		store = s
		lc.Add("database", healthService(pool, logger))
	} else {
		party, err = character.LoadParty(cfg.Content.PartyFile, c.rules, c.items)
		if err != nil {
			return fmt.Errorf("loading party: %w", err)
		}
	}

	scripts := scripting.NewManager(roller, logger, cfg.Content.InstructionLimit)
	defer scripts.Close()
	if dir := cfg.Content.ScriptsDir; dir != "" {
		if _, err := os.Stat(dir); err == nil {
			if err := scripts.LoadDir(dir); err != nil {
				return fmt.Errorf("loading scripts: %w", err)
			}
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	game, err := terminal.NewGame(terminal.Config{
		Screen: screen,
		Combat: combat.Options{
			Settings: cfg.Combat.Settings(),
			Logger:   logger,
			Roller:   roller,
			Rules:    c.rules,
			Bestiary: c.bestiary,
			Brains:   ai.NewFactory(scripts, logger),
		},
		Party:          party,
		Items:          c.items,
		Encounters:     c.encounters,
		Store:          store,
		Interval:       cfg.Frame.Interval(),
		FirstEncounter: firstEncounter,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	lc.Add("game", &server.FuncService{StartFn: game.Run, StopFn: game.Stop})

	logger.Info("tilequest ready",
		zap.Int("players", len(party.Players)),
		zap.Duration("startup", time.Since(start)),
	)
	return lc.Run(ctx)
}

type content struct {
	rules      *ruleset.Registry
	items      *inventory.Registry
	bestiary   *npc.Bestiary
	encounters *combat.Encounters
}

func loadContent(cfg config.ContentConfig, logger *zap.Logger) (content, error) {
	start := time.Now()
	rules, err := ruleset.LoadRegistry(cfg.ClassesDir, cfg.SpellsDir)
	if err != nil {
		return content{}, fmt.Errorf("loading classes and spells: %w", err)
	}
	items, err := inventory.LoadRegistry(cfg.ItemsDir, cfg.GearDir)
	if err != nil {
		return content{}, fmt.Errorf("loading items and gear: %w", err)
	}
	bestiary, err := npc.LoadBestiary(cfg.MonstersDir, rules)
	if err != nil {
		return content{}, fmt.Errorf("loading monsters: %w", err)
	}
	encounters, err := combat.LoadEncounters(cfg.EncountersDir)
	if err != nil {
		return content{}, fmt.Errorf("loading encounters: %w", err)
	}
	logger.Info("content loaded",
		zap.Int("fixed_encounters", len(encounters.Fixed)),
		zap.Int("random_encounters", len(encounters.Random)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return content{rules: rules, items: items, bestiary: bestiary, encounters: encounters}, nil
}

// repoStore binds a party repository to one save name.
type repoStore struct {
	repo *postgres.PartyRepository
	name string
}

func (s repoStore) Save(ctx context.Context, p *character.Party) error {
	return s.repo.Save(ctx, s.name, p)
}

// loadOrCreate restores the saved party, seeding it from the starting party file on first run.
func (s repoStore) loadOrCreate(ctx context.Context, partyFile string, c content) (*character.Party, error) {
	party, err := s.repo.Load(ctx, s.name)
	if err == nil {
		return party, nil
	}
	if !errors.Is(err, postgres.ErrPartyNotFound) {
		return nil, fmt.Errorf("loading saved party: %w", err)
	}
	party, err = character.LoadParty(partyFile, c.rules, c.items)
	if err != nil {
		return nil, fmt.Errorf("loading party: %w", err)
	}
	if err := s.repo.Save(ctx, s.name, party); err != nil {
		return nil, fmt.Errorf("saving new party: %w", err)
	}
	return party, nil
}

// healthService pings the pool until stopped, logging when the database becomes unreachable.
func healthService(pool *postgres.Pool, logger *zap.Logger) server.Service {
	stop := make(chan struct{})
	var once sync.Once
	return &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(healthInterval)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return nil
				case <-ticker.C:
					if err := pool.Health(context.Background(), 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			}
		},
		StopFn: func() { once.Do(func() { close(stop) }) },
	}
}
