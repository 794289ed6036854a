package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/forage/config"
)

// evalRecord is one optimize_log.csv row.
type evalRecord struct {
	Eval              int     `csv:"eval"`
	MeanLifetime      float64 `csv:"mean_lifetime"`
	WorstSeedLifetime float64 `csv:"worst_seed_lifetime"`
	FoodEatenFrac     float64 `csv:"food_eaten_frac"`
	Generations       float64 `csv:"generations"`
	MutationRate      float64 `csv:"mutation_rate"`
	MutationStrength  float64 `csv:"mutation_strength"`
	DeadZone          float64 `csv:"dead_zone"`
	InitRange         float64 `csv:"init_range"`
}

// newEvalRecord reads the parameter columns back from the applied config,
// so the row shows exactly what the games ran with.
func newEvalRecord(n int, ev Evaluation, cfg *config.Config) evalRecord {
	return evalRecord{
		Eval:              n,
		MeanLifetime:      ev.MeanLifetime(),
		WorstSeedLifetime: ev.WorstLifetime(),
		FoodEatenFrac:     ev.FoodEatenFrac(),
		Generations:       ev.MeanGenerations(),
		MutationRate:      cfg.Mutation.Rate,
		MutationStrength:  cfg.Mutation.Strength,
		DeadZone:          cfg.Neural.DeadZone,
		InitRange:         cfg.Neural.InitRange,
	}
}

// evalLog appends evaluation rows to a CSV file.
type evalLog struct {
	f      *os.File
	header bool
}

func newEvalLog(path string) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating eval log: %w", err)
	}
	return &evalLog{f: f}, nil
}

func (l *evalLog) write(r evalRecord) error {
	rows := []evalRecord{r}
	if l.header {
		return gocsv.MarshalWithoutHeaders(rows, l.f)
	}
	l.header = true
	return gocsv.Marshal(rows, l.f)
}

func (l *evalLog) Close() error {
	return l.f.Close()
}

// search adapts the evaluator to the optimizer's normalized search space
// and records every evaluation.
type search struct {
	params *ParamVector
	eval   *FitnessEvaluator
	log    *evalLog
	base   *config.Config
	budget int

	n     int
	start time.Time
}

// objective is the function minimized by CMA-ES.
func (s *search) objective(x []float64) float64 {
	ev := s.eval.Evaluate(s.params.Denormalize(x))
	s.n++

	if err := s.log.write(newEvalRecord(s.n, ev, s.params.Config(s.base, ev.Params))); err != nil {
		slog.Warn("eval log write failed", "error", err)
	}

	slog.Info("eval",
		"n", s.n,
		"budget", s.budget,
		"mean_lifetime", ev.MeanLifetime(),
		"worst_seed_lifetime", ev.WorstLifetime(),
		"food_eaten", ev.FoodEatenFrac(),
		"best_lifetime", s.eval.Best().MeanLifetime(),
		"elapsed", time.Since(s.start).Round(time.Second).String(),
	)
	return ev.Fitness
}

// saveResults writes best_config.yaml and the best seed's hall_of_fame.json.
func saveResults(dir string, base *config.Config, params *ParamVector, best Evaluation) error {
	cfgPath := filepath.Join(dir, "best_config.yaml")
	if err := params.Config(base, best.Params).WriteYAML(cfgPath); err != nil {
		return err
	}
	slog.Info("best config saved", "path", cfgPath)

	hof := best.HallOfFame()
	if hof == nil {
		return nil
	}
	data, err := hof.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	hofPath := filepath.Join(dir, "hall_of_fame.json")
	if err := os.WriteFile(hofPath, data, 0644); err != nil {
		return fmt.Errorf("writing hall of fame: %w", err)
	}
	slog.Info("hall of fame saved", "path", hofPath, "entries", hof.Size(), "top_lifetime", hof.TopLifetime())
	return nil
}
