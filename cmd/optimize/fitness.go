package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/game"
	"github.com/pthm-cable/forage/telemetry"
)

// SeedSummary is the outcome of one seeded headless run.
type SeedSummary struct {
	Seed int64
	// MeanLifetime averages the per-window mean lifetime of living agents.
	MeanLifetime float64
	FoodEaten    int
	FoodTotal    int
	Generations  int
	HallOfFame   *telemetry.HallOfFame
}

// Evaluation is one parameter vector scored across every seed.
type Evaluation struct {
	Params  []float64 // clamped raw values, in ParamVector order
	Seeds   []SeedSummary
	Fitness float64 // lower is better
}

// MeanLifetime averages MeanLifetime over seeds.
func (e Evaluation) MeanLifetime() float64 {
	if len(e.Seeds) == 0 {
		return 0
	}
	v := make([]float64, len(e.Seeds))
	for i, s := range e.Seeds {
		v[i] = s.MeanLifetime
	}
	return stat.Mean(v, nil)
}

// WorstLifetime is the lowest seed MeanLifetime.
func (e Evaluation) WorstLifetime() float64 {
	worst := math.Inf(1)
	for _, s := range e.Seeds {
		worst = math.Min(worst, s.MeanLifetime)
	}
	if math.IsInf(worst, 1) {
		return 0
	}
	return worst
}

// FoodEatenFrac is the share of all placed food eaten across seeds.
func (e Evaluation) FoodEatenFrac() float64 {
	var eaten, total int
	for _, s := range e.Seeds {
		eaten += s.FoodEaten
		total += s.FoodTotal
	}
	if total == 0 {
		return 0
	}
	return float64(eaten) / float64(total)
}

// MeanGenerations averages the replacement batches per run.
func (e Evaluation) MeanGenerations() float64 {
	if len(e.Seeds) == 0 {
		return 0
	}
	var sum int
	for _, s := range e.Seeds {
		sum += s.Generations
	}
	return float64(sum) / float64(len(e.Seeds))
}

// HallOfFame returns the hall of the seed with the longest mean lifetime.
func (e Evaluation) HallOfFame() *telemetry.HallOfFame {
	var best *SeedSummary
	for i := range e.Seeds {
		s := &e.Seeds[i]
		if s.HallOfFame != nil && (best == nil || s.MeanLifetime > best.MeanLifetime) {
			best = s
		}
	}
	if best == nil {
		return nil
	}
	return best.HallOfFame
}

// FitnessEvaluator scores parameter vectors by running seeded games.
type FitnessEvaluator struct {
	params      *ParamVector
	base        *config.Config
	ticks       int32
	seeds       []int64
	statsWindow int

	mu   sync.Mutex
	best Evaluation
}

// NewFitnessEvaluator creates an evaluator running each seed for ticks ticks.
func NewFitnessEvaluator(params *ParamVector, ticks int32, seeds []int64, base *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		base:        base,
		ticks:       ticks,
		seeds:       seeds,
		statsWindow: 100,
		best:        Evaluation{Fitness: math.Inf(1)},
	}
}

// Evaluate runs every seed in parallel with the raw parameter values and
// returns the negated mean lifetime as fitness. Each run is an independent
// single-threaded game.
func (fe *FitnessEvaluator) Evaluate(raw []float64) Evaluation {
	ev := Evaluation{
		Params: fe.params.Clamp(raw),
		Seeds:  make([]SeedSummary, len(fe.seeds)),
	}
	cfg := fe.params.Config(fe.base, ev.Params)
	cfg.Telemetry.StatsWindow = fe.statsWindow

	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(i int, seed int64) {
			defer wg.Done()
			ev.Seeds[i] = fe.runSeed(cfg.Clone(), seed)
		}(i, seed)
	}
	wg.Wait()

	ev.Fitness = -ev.MeanLifetime()

	fe.mu.Lock()
	if ev.Fitness < fe.best.Fitness {
		fe.best = ev
	}
	fe.mu.Unlock()

	return ev
}

// Best returns the lowest-fitness evaluation so far. Params is nil until
// the first evaluation.
func (fe *FitnessEvaluator) Best() Evaluation {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.best
}

// runSeed plays one game. An invalid configuration scores zero lifetime.
func (fe *FitnessEvaluator) runSeed(cfg *config.Config, seed int64) SeedSummary {
	sum := SeedSummary{Seed: seed, FoodTotal: cfg.World.FoodCount}

	var means []float64
	g, err := game.NewGameWithOptions(game.Options{
		Config: cfg,
		Seed:   seed,
		StatsCallback: func(s telemetry.WindowStats) {
			means = append(means, s.LifetimeMean)
		},
	})
	if err != nil {
		return sum
	}

	for g.Tick() < fe.ticks {
		g.Step()
	}

	if len(means) > 0 {
		sum.MeanLifetime = stat.Mean(means, nil)
	}
	sum.FoodEaten = cfg.World.FoodCount - g.FoodLeft()
	sum.Generations = g.Generation()
	sum.HallOfFame = g.HallOfFame()
	return sum
}
