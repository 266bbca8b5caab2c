package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tilequest/internal/config"
	"github.com/cory-johannsen/tilequest/internal/game/character"
	"github.com/cory-johannsen/tilequest/internal/game/dice"
	"github.com/cory-johannsen/tilequest/internal/scripting"
)

const root = "../.."

func shippedContent(t *testing.T) (config.Config, content) {
	t.Helper()
	cfg, err := config.Load(filepath.Join(root, "configs", "tilequest.yaml"))
	require.NoError(t, err)

	cc := cfg.Content
	for _, dir := range []*string{&cc.ClassesDir, &cc.SpellsDir, &cc.ItemsDir, &cc.GearDir,
		&cc.MonstersDir, &cc.EncountersDir, &cc.ScriptsDir, &cc.PartyFile} {
		*dir = filepath.Join(root, *dir)
	}
	cfg.Content = cc

	c, err := loadContent(cc, zap.NewNop())
	require.NoError(t, err)
	return cfg, c
}

func TestShippedContentLoads(t *testing.T) {
	cfg, c := shippedContent(t)

	assert.Contains(t, c.encounters.Fixed, "road_ambush")
	assert.Contains(t, c.encounters.Random, "meadow")
	for id, enc := range c.encounters.Fixed {
		for _, m := range enc.Monsters {
			_, ok := c.bestiary.Template(m.Template)
			assert.True(t, ok, "encounter %s names unknown monster %s", id, m.Template)
		}
	}
	for id, enc := range c.encounters.Random {
		for _, m := range enc.Entries {
			_, ok := c.bestiary.Template(m.Template)
			assert.True(t, ok, "encounter %s names unknown monster %s", id, m.Template)
		}
	}

	party, err := character.LoadParty(cfg.Content.PartyFile, c.rules, c.items)
	require.NoError(t, err)
	assert.Len(t, party.Players, 3)
	assert.Equal(t, 3, party.Pack.Count("potion"))
	for _, p := range party.Players {
		_, err := c.rules.ResolveSpells(p.SpellIDs())
		assert.NoError(t, err, p.Name)
	}
}

func TestShippedScriptsLoad(t *testing.T) {
	cfg, _ := shippedContent(t)
	m := scripting.NewManager(dice.NewLoggedRoller(dice.NewSeededSource(1), zap.NewNop()), zap.NewNop(), cfg.Content.InstructionLimit)
	defer m.Close()
	require.NoError(t, m.LoadDir(cfg.Content.ScriptsDir))
}
