package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// State at window end
	Population int `csv:"population"`
	FoodLeft   int `csv:"food_left"`
	Generation int `csv:"generation"`

	// Events during window
	Births          int `csv:"births"`
	OrphanBirths    int `csv:"orphan_births"` // replacements with a fresh random policy
	Deaths          int `csv:"deaths"`
	FoodEaten       int `csv:"food_eaten"`
	Generations     int `csv:"generations"` // replacement batches run
	SpawnCollisions int `csv:"spawn_collisions"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Lifetime distribution of living agents (sampled at window end)
	LifetimeMean float64 `csv:"lifetime_mean"`
	LifetimeStd  float64 `csv:"lifetime_std"`
	LifetimeMax  float64 `csv:"lifetime_max"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// ComputeLifetimeStats calculates mean, population std, and max of lifetimes.
func ComputeLifetimeStats(values []float64) (mean, std, max float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(values, nil)
	return mean, std, floats.Max(values)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("population", s.Population),
		slog.Int("food_left", s.FoodLeft),
		slog.Int("generation", s.Generation),
		slog.Int("births", s.Births),
		slog.Int("orphan_births", s.OrphanBirths),
		slog.Int("deaths", s.Deaths),
		slog.Int("food_eaten", s.FoodEaten),
		slog.Int("generations", s.Generations),
		slog.Int("spawn_collisions", s.SpawnCollisions),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("lifetime_mean", s.LifetimeMean),
		slog.Float64("lifetime_std", s.LifetimeStd),
		slog.Float64("lifetime_max", s.LifetimeMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
