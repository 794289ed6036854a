package telemetry

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	births          int
	orphanBirths    int
	deaths          int
	foodEaten       int
	generations     int
	spawnCollisions int
}

// NewCollector creates a new stats collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowDurationTicks: int32(windowTicks),
	}
}

// RecordBirth records a replacement agent. orphan marks a birth with no
// surviving parent, which gets a fresh random policy.
func (c *Collector) RecordBirth(orphan bool) {
	c.births++
	if orphan {
		c.orphanBirths++
	}
}

// RecordDeath records a starvation.
func (c *Collector) RecordDeath() {
	c.deaths++
}

// RecordFoodEaten records a food cell consumed.
func (c *Collector) RecordFoodEaten() {
	c.foodEaten++
}

// RecordGeneration records a replacement batch.
func (c *Collector) RecordGeneration() {
	c.generations++
}

// RecordSpawnCollision records a replacement that overwrote an occupied cell.
func (c *Collector) RecordSpawnCollision() {
	c.spawnCollisions++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// WorldState is the end-of-window sample the caller provides to Flush.
type WorldState struct {
	Population int
	FoodLeft   int
	Generation int
	Energies   []float64
	Lifetimes  []float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, state WorldState) WindowStats {
	energyMean, p10, p50, p90 := ComputeEnergyStats(state.Energies)
	lifeMean, lifeStd, lifeMax := ComputeLifetimeStats(state.Lifetimes)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Population: state.Population,
		FoodLeft:   state.FoodLeft,
		Generation: state.Generation,

		Births:          c.births,
		OrphanBirths:    c.orphanBirths,
		Deaths:          c.deaths,
		FoodEaten:       c.foodEaten,
		Generations:     c.generations,
		SpawnCollisions: c.spawnCollisions,

		EnergyMean: energyMean,
		EnergyP10:  p10,
		EnergyP50:  p50,
		EnergyP90:  p90,

		LifetimeMean: lifeMean,
		LifetimeStd:  lifeStd,
		LifetimeMax:  lifeMax,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = 0
	c.orphanBirths = 0
	c.deaths = 0
	c.foodEaten = 0
	c.generations = 0
	c.spawnCollisions = 0

	return stats
}
