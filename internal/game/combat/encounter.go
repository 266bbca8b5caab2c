package combat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tilequest/internal/game/dice"
)

// EncounterMonster is one line of a fixed roster.
type EncounterMonster struct {
	Template string `yaml:"template"`
	Count    int    `yaml:"count"`
}

// FixedEncounter always produces the same monsters.
type FixedEncounter struct {
	ID            string             `yaml:"id"`
	Monsters      []EncounterMonster `yaml:"monsters"`
	FleeThreshold int                `yaml:"flee_threshold"`
	Music         string             `yaml:"music"`
}

// Validate checks that the roster is non-empty and that every count is positive.
func (e *FixedEncounter) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("fixed encounter: id must not be empty")
	}
	if len(e.Monsters) == 0 {
		return fmt.Errorf("fixed encounter %q: monsters must not be empty", e.ID)
	}
	for i, m := range e.Monsters {
		if m.Template == "" {
			return fmt.Errorf("fixed encounter %q: monsters[%d]: template must not be empty", e.ID, i)
		}
		if m.Count < 1 {
			return fmt.Errorf("fixed encounter %q: monsters[%d]: count must be >= 1, got %d", e.ID, i, m.Count)
		}
	}
	return nil
}

// Compose expands the roster into template IDs in declaration order.
//
// Postcondition: returns 1 to MaxCombatantsPerSide IDs, or an error wrapping ErrInvalidRoster.
func (e *FixedEncounter) Compose() ([]string, error) {
	var ids []string
	for _, m := range e.Monsters {
		for i := 0; i < m.Count; i++ {
			ids = append(ids, m.Template)
		}
	}
	if len(ids) < 1 || len(ids) > MaxCombatantsPerSide {
		return nil, fmt.Errorf("%w: encounter %q has %d monsters, need 1-%d", ErrInvalidRoster, e.ID, len(ids), MaxCombatantsPerSide)
	}
	return ids, nil
}

// WeightedMonster is one candidate of a random encounter.
type WeightedMonster struct {
	Template string `yaml:"template"`
	Weight   int    `yaml:"weight"`
}

// RandomEncounter rolls a monster count and then picks each monster by weight.
type RandomEncounter struct {
	ID            string            `yaml:"id"`
	MonsterCount  dice.IntRange     `yaml:"monster_count"`
	Entries       []WeightedMonster `yaml:"entries"`
	FleeThreshold int               `yaml:"flee_threshold"`
	Music         string            `yaml:"music"`
}

// Validate checks the count range and that every weight is positive.
func (e *RandomEncounter) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("random encounter: id must not be empty")
	}
	if err := e.MonsterCount.Validate(); err != nil {
		return fmt.Errorf("random encounter %q: monster_count: %w", e.ID, err)
	}
	if e.MonsterCount.Min < 1 {
		return fmt.Errorf("random encounter %q: monster_count min must be >= 1", e.ID)
	}
	if len(e.Entries) == 0 {
		return fmt.Errorf("random encounter %q: entries must not be empty", e.ID)
	}
	for i, w := range e.Entries {
		if w.Template == "" {
			return fmt.Errorf("random encounter %q: entries[%d]: template must not be empty", e.ID, i)
		}
		if w.Weight < 1 {
			return fmt.Errorf("random encounter %q: entries[%d]: weight must be >= 1, got %d", e.ID, i, w.Weight)
		}
	}
	return nil
}

// Compose rolls a roster: a count from MonsterCount, one weighted pick per
// monster, a shuffle, then a cap at MaxCombatantsPerSide.
//
// Precondition: e passed Validate.
func (e *RandomEncounter) Compose(roller *dice.Roller) []string {
	count := roller.Range(e.ID+" monster count", e.MonsterCount)
	total := 0
	for _, w := range e.Entries {
		total += w.Weight
	}
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		pick := roller.Intn(e.ID+" monster pick", total)
		for _, w := range e.Entries {
			if pick < w.Weight {
				ids = append(ids, w.Template)
				break
			}
			pick -= w.Weight
		}
	}
	for i := len(ids) - 1; i > 0; i-- {
		j := roller.Intn(e.ID+" shuffle", i+1)
		ids[i], ids[j] = ids[j], ids[i]
	}
	if len(ids) > MaxCombatantsPerSide {
		ids = ids[:MaxCombatantsPerSide]
	}
	return ids
}

// Encounters indexes loaded encounters by ID.
type Encounters struct {
	Fixed  map[string]*FixedEncounter
	Random map[string]*RandomEncounter
}

// LoadEncounters reads every YAML file in dir. Each file holds one encounter
// and names its shape with `kind: fixed` or `kind: random`.
//
// Postcondition: returns all encounters, or an error naming the first bad file.
func LoadEncounters(dir string) (*Encounters, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading encounter dir %q: %w", dir, err)
	}
	out := &Encounters{
		Fixed:  make(map[string]*FixedEncounter),
		Random: make(map[string]*RandomEncounter),
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		if err := out.add(data); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return out, nil
}

func (e *Encounters) add(data []byte) error {
	var head struct {
		Kind string `yaml:"kind"`
		ID   string `yaml:"id"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("parsing encounter YAML: %w", err)
	}
	if _, dup := e.Fixed[head.ID]; dup {
		return fmt.Errorf("duplicate encounter %q", head.ID)
	}
	if _, dup := e.Random[head.ID]; dup {
		return fmt.Errorf("duplicate encounter %q", head.ID)
	}
	switch head.Kind {
	case "fixed":
		var f FixedEncounter
		if err := yaml.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("parsing encounter YAML: %w", err)
		}
		if err := f.Validate(); err != nil {
			return err
		}
		e.Fixed[f.ID] = &f
	case "random":
		var r RandomEncounter
		if err := yaml.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("parsing encounter YAML: %w", err)
		}
		if err := r.Validate(); err != nil {
			return err
		}
		e.Random[r.ID] = &r
	default:
		return fmt.Errorf("encounter %q: unknown kind %q", head.ID, head.Kind)
	}
	return nil
}
