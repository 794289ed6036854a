// Package game runs the forager simulation: agents on a grid, one tick at a
// time, with death-triggered generational replacement.
package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/neural"
	"github.com/pthm-cable/forage/systems"
	"github.com/pthm-cable/forage/telemetry"
)

// Options configures a new game.
type Options struct {
	// Config is validated and copied; nil uses the embedded defaults.
	Config *config.Config
	Seed   int64
	// RunID tags snapshots; empty generates a fresh UUID.
	RunID string

	// LogStats logs each stats window through slog.
	LogStats bool
	// OutputDir receives CSV and JSON output; empty disables it.
	OutputDir string
	// SnapshotDir receives a snapshot per bookmark; empty disables it.
	SnapshotDir string
	// StatsCallback is called on every window flush.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg     *config.Config
	world   *ecs.World
	rng     *rand.Rand
	rngSeed int64
	runID   string

	agentMapper *ecs.Map4[
		components.Position,
		components.Energy,
		components.Lifetime,
		components.Lineage,
	]
	agentFilter *ecs.Filter4[
		components.Position,
		components.Energy,
		components.Lifetime,
		components.Lineage,
	]
	lifeMap    *ecs.Map1[components.Lifetime]
	lineageMap *ecs.Map1[components.Lineage]

	// Policy storage (per agent by ID)
	brains map[uint32]*neural.Policy

	// Canonical processing order: insertion order, replacements appended.
	order []ecs.Entity

	grid   *systems.Grid
	food   *systems.FoodStore
	params systems.BehaviorParams

	// State
	tick            int32
	generation      int
	nextID          uint32
	spawnCollisions int

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	hallOfFame       *telemetry.HallOfFame
	outputManager    *telemetry.OutputManager
	logStats         bool
	snapshotDir      string
	statsCallback    func(telemetry.WindowStats)
}

// NewGameWithOptions validates the configuration and builds the initial
// world: agents on random empty cells first, then food on the remaining
// empty cells. All randomness flows from opts.Seed.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	cfg = cfg.Clone()

	outputManager, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	if err := outputManager.WriteConfig(cfg); err != nil {
		outputManager.Close()
		return nil, fmt.Errorf("initialize: %w", err)
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}

	world := ecs.NewWorld()

	g := &Game{
		cfg:     cfg,
		world:   world,
		rng:     rand.New(rand.NewSource(opts.Seed)),
		rngSeed: opts.Seed,
		runID:   runID,
		agentMapper: ecs.NewMap4[
			components.Position,
			components.Energy,
			components.Lifetime,
			components.Lineage,
		](world),
		agentFilter: ecs.NewFilter4[
			components.Position,
			components.Energy,
			components.Lifetime,
			components.Lineage,
		](world),
		lifeMap:    ecs.NewMap1[components.Lifetime](world),
		lineageMap: ecs.NewMap1[components.Lineage](world),
		brains:     make(map[uint32]*neural.Policy),
		order:      make([]ecs.Entity, 0, cfg.Population.Initial),
		grid:       systems.NewGrid(cfg.World.GridSize),
		food:       systems.NewFoodStore(),
		params: systems.BehaviorParams{
			Decay:          cfg.Energy.Decay,
			DirectionScale: cfg.Neural.DirectionScale,
		},
		nextID: 1,

		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistory),
		hallOfFame:       telemetry.NewHallOfFame(cfg.Telemetry.HallOfFameSize),
		outputManager:    outputManager,
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
		statsCallback:    opts.StatsCallback,
	}

	g.spawnInitialPopulation()
	g.food.Scatter(g.grid, g.rng, cfg.World.FoodCount)

	return g, nil
}

// Close writes the hall of fame and closes output files.
func (g *Game) Close() error {
	if err := g.outputManager.WriteHallOfFame(g.hallOfFame); err != nil {
		g.outputManager.Close()
		return err
	}
	return g.outputManager.Close()
}

// Config returns the game's configuration.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Seed returns the seed the game was built with.
func (g *Game) Seed() int64 {
	return g.rngSeed
}

// RunID returns the identifier attached to this run's snapshots.
func (g *Game) RunID() string {
	return g.runID
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// Generation returns the generation counter.
func (g *Game) Generation() int {
	return g.generation
}

// Population returns the number of live agents.
func (g *Game) Population() int {
	return len(g.order)
}

// FoodLeft returns the number of uneaten food items.
func (g *Game) FoodLeft() int {
	return g.food.Len()
}

// SpawnCollisions returns how many replacements overwrote an occupied cell.
func (g *Game) SpawnCollisions() int {
	return g.spawnCollisions
}

// Grid returns a read-only copy of the world grid.
func (g *Game) Grid() systems.GridView {
	return g.grid.View()
}

// OutputDir returns the output directory, or "" when output is disabled.
func (g *Game) OutputDir() string {
	return g.outputManager.Dir()
}

// HallOfFame returns the longest-lived dead agents recorded so far.
func (g *Game) HallOfFame() *telemetry.HallOfFame {
	return g.hallOfFame
}

// AgentView is a read-only copy of one agent's state.
type AgentView struct {
	ID         uint32
	ParentID   uint32
	Pos        components.Position
	Energy     int
	Lifetime   int
	Generation int
	Color      string
	Eaten      int
}

// Agents returns every live agent in processing order.
func (g *Game) Agents() []AgentView {
	out := make([]AgentView, 0, len(g.order))
	for _, e := range g.order {
		pos, energy, life, lin := g.agentMapper.Get(e)
		out = append(out, AgentView{
			ID:         lin.ID,
			ParentID:   lin.ParentID,
			Pos:        *pos,
			Energy:     energy.Value,
			Lifetime:   life.Ticks,
			Generation: lin.Generation,
			Color:      lin.Color,
			Eaten:      lin.Eaten,
		})
	}
	return out
}

// Policy returns a copy of the policy of the live agent with the given ID.
func (g *Game) Policy(id uint32) (*neural.Policy, bool) {
	p, ok := g.brains[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// newPolicy creates a fresh random policy from the configured ranges.
func (g *Game) newPolicy() *neural.Policy {
	return neural.NewPolicyWith(g.rng, g.cfg.Neural.InitRange, g.cfg.Neural.DeadZone)
}

// generationColor returns the palette tag for generation n.
func (g *Game) generationColor(n int) string {
	palette := g.cfg.Evolution.Palette
	return palette[n%len(palette)]
}
