package npc_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tilequest/internal/game/dice"
	"github.com/cory-johannsen/tilequest/internal/game/npc"
	"github.com/cory-johannsen/tilequest/internal/game/ruleset"
	"github.com/cory-johannsen/tilequest/internal/game/stats"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

func goblinClass() *ruleset.Class {
	return &ruleset.Class{
		ID:                  "goblin",
		Name:                "Goblin",
		InitialStatistics:   stats.Value{HealthPoints: 12, MagicPoints: 3},
		LevelingStatistics:  stats.Value{HealthPoints: 4},
		BaseExperienceValue: 10,
		BaseGoldValue:       5,
	}
}

func rules(t *testing.T) *ruleset.Registry {
	t.Helper()
	r := ruleset.NewRegistry()
	require.NoError(t, r.RegisterClass(goblinClass()))
	require.NoError(t, r.RegisterSpell(&ruleset.Spell{ID: "spark", Name: "Spark", UsableInBattle: true, Offensive: true}))
	return r
}

const goblinYAML = `
id: goblin_scout
name: Goblin Scout
class: goblin
level: 2
spells: [spark]
damage_range: {min: 2, max: 4}
defend_percentage: 150
bonus_gold: {min: 0, max: 3}
gear_drops:
  - gear: rusty_dagger
    percentage: 25
`

func TestLoadTemplateFromBytes(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(goblinYAML))
	require.NoError(t, err)
	assert.Equal(t, "goblin", tmpl.Class)
	assert.Equal(t, 100, tmpl.ClampedDefendPercentage())
	require.Len(t, tmpl.GearDrops, 1)
	assert.Equal(t, 25, tmpl.GearDrops[0].Percentage)
}

func TestTemplate_ValidateRejects(t *testing.T) {
	cases := map[string]string{
		"no class":   "id: a\nname: A\nlevel: 1\n",
		"bad level":  "id: a\nname: A\nclass: goblin\nlevel: 0\n",
		"bad range":  "id: a\nname: A\nclass: goblin\nlevel: 1\ndamage_range: {min: 5, max: 1}\n",
		"bad drop":   "id: a\nname: A\nclass: goblin\nlevel: 1\ngear_drops: [{gear: x, percentage: 0}]\n",
		"empty drop": "id: a\nname: A\nclass: goblin\nlevel: 1\ngear_drops: [{percentage: 10}]\n",
	}
	for name, y := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := npc.LoadTemplateFromBytes([]byte(y))
			assert.Error(t, err)
		})
	}
}

func TestClampedDefendPercentage(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := rapid.IntRange(-500, 500).Draw(rt, "pct")
		got := (&npc.Template{DefendPercentage: p}).ClampedDefendPercentage()
		assert.GreaterOrEqual(rt, got, 0)
		assert.LessOrEqual(rt, got, 100)
	})
}

func TestBestiary_SpawnResolvesClassAndSpells(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "goblin.yaml"), []byte(goblinYAML), 0644))
	b, err := npc.LoadBestiary(dir, rules(t))
	require.NoError(t, err)

	a, err := b.Spawn("goblin_scout")
	require.NoError(t, err)
	c, err := b.Spawn("goblin_scout")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, c.ID)
	assert.Equal(t, 16, a.MaxStatistics().HealthPoints)
	require.Len(t, a.Spells, 1)
	assert.Equal(t, "spark", a.Spells[0].ID)

	_, err = b.Spawn("dragon")
	assert.Error(t, err)
}

func TestBestiary_RejectsUnknownClass(t *testing.T) {
	b := npc.NewBestiary(ruleset.NewRegistry())
	err := b.Register(&npc.Template{ID: "x", Name: "X", Class: "nope", Level: 1})
	assert.Error(t, err)
}

func TestInstance_ApplyModifierClamps(t *testing.T) {
	tmpl := &npc.Template{ID: "g", Name: "G", Class: "goblin", Level: 1}
	inst := npc.NewInstance("g-1", tmpl, goblinClass(), nil)
	inst.ApplyModifier(stats.Value{HealthPoints: -100})
	assert.Equal(t, 0, inst.Statistics().HealthPoints)
	assert.True(t, inst.IsDead())
	assert.Equal(t, "dead", inst.HealthDescription())
	inst.ApplyModifier(stats.Value{HealthPoints: 500})
	assert.Equal(t, 12, inst.Statistics().HealthPoints)
	assert.Equal(t, "unharmed", inst.HealthDescription())
}

func TestGenerateLoot_ScalesWithLevel(t *testing.T) {
	tmpl := &npc.Template{ID: "g", Name: "G", Class: "goblin", Level: 2,
		BonusGold: dice.IntRange{Min: 1, Max: 3},
		GearDrops: []npc.GearDrop{{GearID: "dagger", Percentage: 100}, {GearID: "crown", Percentage: 1}},
	}
	inst := npc.NewInstance("g-1", tmpl, goblinClass(), nil)
	roller := dice.NewLoggedRoller(fixedSrc{val: 1}, zap.NewNop())

	loot := npc.GenerateLoot(inst, roller)

	assert.Equal(t, 20, loot.Experience)
	assert.Equal(t, 12, loot.Gold, "10 base + bonus roll of 2")
	require.Len(t, loot.Gear, 1, "the 1% crown drop misses on a roll of 1")
	assert.Equal(t, "dagger", loot.Gear[0].GearDefID)
	assert.NotEmpty(t, loot.Gear[0].InstanceID)
}
