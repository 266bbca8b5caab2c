// Package config provides Viper-based configuration loading for the tilequest host.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/tilequest/internal/game/combat"
)

// DatabaseConfig holds PostgreSQL connection settings. When Enabled is false
// the party is loaded from Content.PartyFile and never saved.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File, when set, receives log output instead of stderr so it does not
	// tear the terminal display.
	File string `mapstructure:"file"`
}

// CombatConfig tunes combat pacing.
type CombatConfig struct {
	DelayMs          int     `mapstructure:"delay_ms"`
	MeleeSpeed       float64 `mapstructure:"melee_speed"`
	ProjectileSpeed  float64 `mapstructure:"projectile_speed"`
	EffectLifetimeMs int     `mapstructure:"effect_lifetime_ms"`
	// Seed makes every roll reproducible when non-zero.
	Seed uint64 `mapstructure:"seed"`
}

// Settings converts the configuration into combat settings.
func (c CombatConfig) Settings() combat.Settings {
	return combat.Settings{
		DelayDuration:   time.Duration(c.DelayMs) * time.Millisecond,
		MeleeSpeed:      c.MeleeSpeed,
		ProjectileSpeed: c.ProjectileSpeed,
		EffectLifetime:  time.Duration(c.EffectLifetimeMs) * time.Millisecond,
	}
}

// ContentConfig names the YAML and Lua content directories.
type ContentConfig struct {
	ClassesDir    string `mapstructure:"classes_dir"`
	SpellsDir     string `mapstructure:"spells_dir"`
	ItemsDir      string `mapstructure:"items_dir"`
	GearDir       string `mapstructure:"gear_dir"`
	MonstersDir   string `mapstructure:"monsters_dir"`
	EncountersDir string `mapstructure:"encounters_dir"`
	ScriptsDir    string `mapstructure:"scripts_dir"`
	PartyFile     string `mapstructure:"party_file"`
	// InstructionLimit caps the Lua opcodes of one AI hook call.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// FrameConfig controls the host loop.
type FrameConfig struct {
	FPS int `mapstructure:"fps"`
}

// Interval returns the target time between frames.
//
// Precondition: FPS > 0.
func (f FrameConfig) Interval() time.Duration {
	return time.Second / time.Duration(f.FPS)
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Combat   CombatConfig   `mapstructure:"combat"`
	Content  ContentConfig  `mapstructure:"content"`
	Frame    FrameConfig    `mapstructure:"frame"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, check := range []func() []string{
		func() []string { return validateLogging(c.Logging) },
		func() []string { return validateDatabase(c.Database) },
		func() []string { return validateCombat(c.Combat) },
		func() []string { return validateContent(c.Content) },
		func() []string { return validateFrame(c.Frame) },
	} {
		errs = append(errs, check()...)
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) []string {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", l.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", l.Format))
	}
	return errs
}

func validateDatabase(d DatabaseConfig) []string {
	if !d.Enabled {
		return nil
	}
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 || d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must be in [0, max_conns]")
	}
	return errs
}

func validateCombat(c CombatConfig) []string {
	var errs []string
	if c.DelayMs < 1 {
		errs = append(errs, fmt.Sprintf("combat.delay_ms must be >= 1, got %d", c.DelayMs))
	}
	if c.MeleeSpeed <= 0 {
		errs = append(errs, "combat.melee_speed must be > 0")
	}
	if c.ProjectileSpeed <= 0 {
		errs = append(errs, "combat.projectile_speed must be > 0")
	}
	if c.EffectLifetimeMs < 0 {
		errs = append(errs, "combat.effect_lifetime_ms must not be negative")
	}
	return errs
}

func validateContent(c ContentConfig) []string {
	var errs []string
	for key, dir := range map[string]string{
		"content.classes_dir":    c.ClassesDir,
		"content.spells_dir":     c.SpellsDir,
		"content.items_dir":      c.ItemsDir,
		"content.gear_dir":       c.GearDir,
		"content.monsters_dir":   c.MonstersDir,
		"content.encounters_dir": c.EncountersDir,
	} {
		if dir == "" {
			errs = append(errs, key+" must not be empty")
		}
	}
	if c.InstructionLimit < 0 {
		errs = append(errs, "content.instruction_limit must not be negative")
	}
	return errs
}

func validateFrame(f FrameConfig) []string {
	if f.FPS < 1 || f.FPS > 240 {
		return []string{fmt.Sprintf("frame.fps must be 1-240, got %d", f.FPS)}
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides, e.g. TILEQUEST_COMBAT_SEED.
	v.SetEnvPrefix("TILEQUEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewViper returns a Viper instance preloaded with every default.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "tilequest.log")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tilequest")
	v.SetDefault("database.password", "tilequest")
	v.SetDefault("database.name", "tilequest")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	def := combat.DefaultSettings()
	v.SetDefault("combat.delay_ms", def.DelayDuration.Milliseconds())
	v.SetDefault("combat.melee_speed", def.MeleeSpeed)
	v.SetDefault("combat.projectile_speed", def.ProjectileSpeed)
	v.SetDefault("combat.effect_lifetime_ms", def.EffectLifetime.Milliseconds())
	v.SetDefault("combat.seed", 0)

	v.SetDefault("content.classes_dir", "content/classes")
	v.SetDefault("content.spells_dir", "content/spells")
	v.SetDefault("content.items_dir", "content/items")
	v.SetDefault("content.gear_dir", "content/gear")
	v.SetDefault("content.monsters_dir", "content/monsters")
	v.SetDefault("content.encounters_dir", "content/encounters")
	v.SetDefault("content.scripts_dir", "content/scripts")
	v.SetDefault("content.party_file", "content/party.yaml")
	v.SetDefault("content.instruction_limit", 100000)

	v.SetDefault("frame.fps", 30)
}
