// Command optimize searches mutation and policy parameters with CMA-ES for
// the settings that keep foragers alive longest.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/forage/config"
)

type options struct {
	configPath string
	outputDir  string
	ticks      int
	seeds      int
	maxEvals   int
	population int
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Base config YAML or INI file (empty = use defaults)")
	flag.StringVar(&o.outputDir, "output", "", "Output directory for results (required)")
	flag.IntVar(&o.ticks, "max-ticks", 5000, "Ticks per run")
	flag.IntVar(&o.seeds, "seeds", 3, "Seeds per evaluation")
	flag.IntVar(&o.maxEvals, "max-evals", 100, "Evaluation budget")
	flag.IntVar(&o.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(o); err != nil {
		slog.Error("optimize failed", "error", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if o.outputDir == "" {
		return errors.New("-output is required")
	}
	if err := os.MkdirAll(o.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := config.Init(o.configPath); err != nil {
		return err
	}
	base := config.Cfg()

	params := NewParamVector()
	eval := NewFitnessEvaluator(params, int32(o.ticks), evalSeeds(o.seeds), base)

	log, err := newEvalLog(filepath.Join(o.outputDir, "optimize_log.csv"))
	if err != nil {
		return err
	}
	defer log.Close()

	s := &search{params: params, eval: eval, log: log, base: base, budget: o.maxEvals, start: time.Now()}

	pop := o.population
	if pop == 0 {
		pop = cmaPopulation(params.Dim())
	}
	slog.Info("starting CMA-ES",
		"params", params.Dim(),
		"population", pop,
		"max_evals", o.maxEvals,
		"seeds", o.seeds,
		"ticks", o.ticks,
	)

	_, err = optimize.Minimize(
		optimize.Problem{Func: s.objective},
		params.Normalize(params.DefaultVector()),
		&optimize.Settings{FuncEvaluations: o.maxEvals},
		&optimize.CmaEsChol{InitStepSize: 0.3, Population: pop},
	)
	if err != nil {
		slog.Warn("optimization ended early", "error", err)
	}

	best := eval.Best()
	if best.Params == nil {
		return errors.New("no evaluations completed")
	}
	for i, spec := range params.Specs {
		slog.Info("best param", "name", spec.Name, "value", best.Params[i])
	}
	for _, sd := range best.Seeds {
		slog.Info("best seed",
			"seed", sd.Seed,
			"mean_lifetime", sd.MeanLifetime,
			"food_eaten", sd.FoodEaten,
			"generations", sd.Generations,
		)
	}
	slog.Info("optimization complete", "evals", s.n, "elapsed", time.Since(s.start).Round(time.Second).String())

	return saveResults(o.outputDir, base, params, best)
}

// cmaPopulation is the standard default 4 + floor(3 ln n).
func cmaPopulation(dim int) int {
	return 4 + int(3*math.Log(float64(dim)))
}

// evalSeeds returns n fixed seeds so every evaluation sees the same worlds.
func evalSeeds(n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = int64(i)*7919 + 1
	}
	return seeds
}
