// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is the sentinel wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports a configuration field that would produce undefined
// simulation behavior.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world" ini:"world"`
	Population PopulationConfig `yaml:"population" ini:"population"`
	Energy     EnergyConfig     `yaml:"energy" ini:"energy"`
	Neural     NeuralConfig     `yaml:"neural" ini:"neural"`
	Mutation   MutationConfig   `yaml:"mutation" ini:"mutation"`
	Evolution  EvolutionConfig  `yaml:"evolution" ini:"evolution"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" ini:"telemetry"`
	Server     ServerConfig     `yaml:"server" ini:"server"`
}

// WorldConfig holds grid dimensions and food placement.
type WorldConfig struct {
	GridSize  int `yaml:"grid_size" ini:"grid_size"`   // Cells per side (square grid)
	FoodCount int `yaml:"food_count" ini:"food_count"` // Food cells placed at start, never replenished
}

// PopulationConfig holds agent population parameters.
type PopulationConfig struct {
	Initial       int `yaml:"initial" ini:"initial"`               // Agents at start; also the respawn radius reference
	InitialEnergy int `yaml:"initial_energy" ini:"initial_energy"` // Energy for new and replacement agents
}

// EnergyConfig holds the per-agent energy economy.
type EnergyConfig struct {
	Max      int `yaml:"max" ini:"max"`             // Upper clamp
	Decay    int `yaml:"decay" ini:"decay"`         // Drain per tick
	FeedGain int `yaml:"feed_gain" ini:"feed_gain"` // Gain per food eaten
}

// NeuralConfig holds policy network parameters.
type NeuralConfig struct {
	InitRange      float64 `yaml:"init_range" ini:"init_range"`           // Weights drawn from [-r, r]
	DeadZone       float64 `yaml:"dead_zone" ini:"dead_zone"`             // |output| <= this maps to 0
	DirectionScale float64 `yaml:"direction_scale" ini:"direction_scale"` // tanh(offset / scale)
}

// MutationConfig holds clone-and-mutate parameters.
type MutationConfig struct {
	Rate     float64 `yaml:"rate" ini:"rate"`         // Per-weight mutation probability
	Strength float64 `yaml:"strength" ini:"strength"` // Uniform perturbation half-width
}

// EvolutionConfig holds generational replacement parameters.
type EvolutionConfig struct {
	MinRadius int      `yaml:"min_radius" ini:"min_radius"`
	MaxRadius int      `yaml:"max_radius" ini:"max_radius"`
	Palette   []string `yaml:"palette" ini:"palette" delim:","` // Generation color tags
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window" ini:"stats_window"` // Ticks per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window" ini:"perf_collector_window"`
	HallOfFameSize      int `yaml:"hall_of_fame_size" ini:"hall_of_fame_size"`
	BookmarkHistory     int `yaml:"bookmark_history" ini:"bookmark_history"` // Windows averaged by the bookmark detectors
}

// ServerConfig holds state feed parameters.
type ServerConfig struct {
	Addr             string `yaml:"addr" ini:"addr"`
	SnapshotInterval int    `yaml:"snapshot_interval" ini:"snapshot_interval"` // Ticks between published snapshots
	TickIntervalMS   int    `yaml:"tick_interval_ms" ini:"tick_interval_ms"`   // Driver pacing when serving
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML or INI file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		if err := cfg.merge(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// merge overlays a user file onto cfg. Only fields present in the file are overwritten.
func (c *Config) merge(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini":
		f, err := ini.LoadSources(ini.LoadOptions{
			IgnoreInlineComment: true,
			Insensitive:         true,
		}, path)
		if err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
		if err := f.MapTo(c); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	}
	return nil
}

// Validate rejects configurations that would make the simulation undefined.
func (c *Config) Validate() error {
	switch {
	case c.World.GridSize < 1:
		return &ConfigError{"world.grid_size", "must be at least 1"}
	case c.World.FoodCount < 0:
		return &ConfigError{"world.food_count", "must not be negative"}
	case c.Population.Initial < 0:
		return &ConfigError{"population.initial", "must not be negative"}
	case c.Population.Initial+c.World.FoodCount > c.World.GridSize*c.World.GridSize:
		return &ConfigError{"population.initial", fmt.Sprintf("agents plus food (%d) exceed grid cells (%d)",
			c.Population.Initial+c.World.FoodCount, c.World.GridSize*c.World.GridSize)}
	case c.Energy.Max < 1:
		return &ConfigError{"energy.max", "must be at least 1"}
	case c.Population.InitialEnergy < 1 || c.Population.InitialEnergy > c.Energy.Max:
		return &ConfigError{"population.initial_energy", fmt.Sprintf("must be in [1, %d]", c.Energy.Max)}
	case c.Energy.Decay < 0:
		return &ConfigError{"energy.decay", "must not be negative"}
	case c.Energy.FeedGain < 0:
		return &ConfigError{"energy.feed_gain", "must not be negative"}
	case c.Neural.InitRange <= 0:
		return &ConfigError{"neural.init_range", "must be positive"}
	case c.Neural.DeadZone < 0:
		return &ConfigError{"neural.dead_zone", "must not be negative"}
	case c.Neural.DirectionScale <= 0:
		return &ConfigError{"neural.direction_scale", "must be positive"}
	case c.Mutation.Rate < 0 || c.Mutation.Rate > 1:
		return &ConfigError{"mutation.rate", "must be in [0, 1]"}
	case c.Mutation.Strength < 0:
		return &ConfigError{"mutation.strength", "must not be negative"}
	case c.Evolution.MinRadius < 1:
		return &ConfigError{"evolution.min_radius", "must be at least 1"}
	case c.Evolution.MaxRadius < c.Evolution.MinRadius:
		return &ConfigError{"evolution.max_radius", "must not be below min_radius"}
	case len(c.Evolution.Palette) == 0:
		return &ConfigError{"evolution.palette", "must name at least one color"}
	case c.Telemetry.StatsWindow < 1:
		return &ConfigError{"telemetry.stats_window", "must be at least 1"}
	}
	return nil
}

// Clone returns a deep copy, safe to modify independently.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Evolution.Palette = append([]string(nil), c.Evolution.Palette...)
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
