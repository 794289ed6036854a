package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.World.GridSize != 50 {
		t.Errorf("grid_size = %d, want 50", cfg.World.GridSize)
	}
	if cfg.World.FoodCount != 200 {
		t.Errorf("food_count = %d, want 200", cfg.World.FoodCount)
	}
	if cfg.Population.Initial != 10 || cfg.Population.InitialEnergy != 10 {
		t.Errorf("population = %+v, want 10 agents with energy 10", cfg.Population)
	}
	if cfg.Energy.Max != 100 || cfg.Energy.FeedGain != 5 || cfg.Energy.Decay != 1 {
		t.Errorf("energy = %+v, want max 100, gain 5, decay 1", cfg.Energy)
	}
	if cfg.Mutation.Rate != 0.1 || cfg.Mutation.Strength != 0.5 {
		t.Errorf("mutation = %+v, want 0.1/0.5", cfg.Mutation)
	}
	if cfg.Evolution.MinRadius != 1 || cfg.Evolution.MaxRadius != 5 {
		t.Errorf("radius = [%d, %d], want [1, 5]", cfg.Evolution.MinRadius, cfg.Evolution.MaxRadius)
	}
	if len(cfg.Evolution.Palette) != 10 {
		t.Errorf("palette size = %d, want 10", len(cfg.Evolution.Palette))
	}
	if cfg.Telemetry.BookmarkHistory != 10 {
		t.Errorf("bookmark_history = %d, want 10", cfg.Telemetry.BookmarkHistory)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := []byte("world:\n  grid_size: 8\n  food_count: 4\npopulation:\n  initial: 2\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.GridSize != 8 || cfg.World.FoodCount != 4 || cfg.Population.Initial != 2 {
		t.Errorf("override not applied: %+v %+v", cfg.World, cfg.Population)
	}
	// Untouched sections keep defaults
	if cfg.Energy.Max != 100 {
		t.Errorf("energy.max = %d, want default 100", cfg.Energy.Max)
	}
}

func TestLoadINIOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.ini")
	data := []byte("[world]\ngrid_size = 20\n\n[mutation]\nrate = 0.25\n\n[evolution]\npalette = black,white\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.GridSize != 20 {
		t.Errorf("grid_size = %d, want 20", cfg.World.GridSize)
	}
	if cfg.Mutation.Rate != 0.25 {
		t.Errorf("mutation.rate = %v, want 0.25", cfg.Mutation.Rate)
	}
	if cfg.Mutation.Strength != 0.5 {
		t.Errorf("mutation.strength = %v, want default 0.5", cfg.Mutation.Strength)
	}
	if len(cfg.Evolution.Palette) != 2 || cfg.Evolution.Palette[1] != "white" {
		t.Errorf("palette = %v, want [black white]", cfg.Evolution.Palette)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero grid", func(c *Config) { c.World.GridSize = 0 }, "world.grid_size"},
		{"negative food", func(c *Config) { c.World.FoodCount = -1 }, "world.food_count"},
		{"negative agents", func(c *Config) { c.Population.Initial = -3 }, "population.initial"},
		{"overfull grid", func(c *Config) {
			c.World.GridSize = 3
			c.World.FoodCount = 5
			c.Population.Initial = 5
		}, "population.initial"},
		{"zero start energy", func(c *Config) { c.Population.InitialEnergy = 0 }, "population.initial_energy"},
		{"start energy above max", func(c *Config) { c.Population.InitialEnergy = 101 }, "population.initial_energy"},
		{"mutation rate above one", func(c *Config) { c.Mutation.Rate = 1.5 }, "mutation.rate"},
		{"negative strength", func(c *Config) { c.Mutation.Strength = -0.1 }, "mutation.strength"},
		{"inverted radius", func(c *Config) { c.Evolution.MaxRadius = 0 }, "evolution.max_radius"},
		{"empty palette", func(c *Config) { c.Evolution.Palette = nil }, "evolution.palette"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("error %T is not *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestValidateAcceptsFullGrid(t *testing.T) {
	cfg := Default()
	cfg.World.GridSize = 2
	cfg.World.FoodCount = 2
	cfg.Population.Initial = 2

	if err := cfg.Validate(); err != nil {
		t.Errorf("full but not overfull grid rejected: %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := Default()
	cp := cfg.Clone()
	cp.Evolution.Palette[0] = "black"
	cp.Mutation.Rate = 0.9

	if cfg.Evolution.Palette[0] == "black" {
		t.Error("palette shared between clone and original")
	}
	if cfg.Mutation.Rate == 0.9 {
		t.Error("mutation rate shared between clone and original")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.World.GridSize = 17
	path := filepath.Join(t.TempDir(), "out.yaml")

	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.World.GridSize != 17 {
		t.Errorf("grid_size = %d, want 17", loaded.World.GridSize)
	}
}
