package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// definition is a YAML-authored rule that can check itself.
type definition interface {
	Validate() error
}

// loadDefinitions decodes every *.yaml / *.yml file in dir into a fresh T,
// in file-name order, and validates each one. kind names the definition in
// errors ("class", "spell").
func loadDefinitions[T any, PT interface {
	*T
	definition
}](dir, kind string) ([]*T, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("reading %s directory %s: %w", kind, dir, err)
	}
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("listing %s definitions in %s: %w", kind, dir, err)
		}
		paths = append(paths, m...)
	}
	slices.Sort(paths)

	out := make([]*T, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		def := PT(new(T))
		if err := yaml.Unmarshal(data, def); err != nil {
			return nil, fmt.Errorf("parsing %s file %s: %w", kind, path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s in %s: %w", kind, path, err)
		}
		out = append(out, (*T)(def))
	}
	return out, nil
}
