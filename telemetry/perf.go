package telemetry

import (
	"log/slog"
	"time"
)

// Tick phases, in execution order.
const (
	PhaseMovement  = "movement"
	PhaseEvolution = "evolution"
	PhaseTelemetry = "telemetry"
)

var phaseOrder = []string{PhaseMovement, PhaseEvolution, PhaseTelemetry}

// tickSample is the timing and workload of one tick.
type tickSample struct {
	total  time.Duration
	phases map[string]time.Duration
	agents int // agents processed in the movement phase
	deaths int // agents replaced in the evolution phase
}

// PerfCollector times tick phases over a rolling window of ticks.
type PerfCollector struct {
	ring  []tickSample
	next  int
	count int

	cur        tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      string
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{ring: make([]tickSample, windowSize)}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = tickSample{phases: make(map[string]time.Duration, len(phaseOrder))}
	p.phase = ""
}

// StartPhase closes the running phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = phase
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndTick records the tick with the number of agents it moved and the
// number of deaths it replaced.
func (p *PerfCollector) EndTick(agents, deaths int) {
	now := time.Now()
	p.closePhase(now)
	p.phase = ""

	p.cur.total = now.Sub(p.tickStart)
	p.cur.agents = agents
	p.cur.deaths = deaths

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.count < len(p.ring) {
		p.count++
	}
}

// PerfStats summarizes the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64 // share of average tick time, 0..100

	AvgAgents     float64
	DeathsPerTick float64
	// MovementPerAgent is the average movement phase cost of one agent.
	MovementPerAgent time.Duration
}

// Stats aggregates the samples currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}
	if p.count == 0 {
		return s
	}

	var total time.Duration
	var agents, deaths int
	phaseSum := make(map[string]time.Duration)
	for i, sample := range p.ring[:p.count] {
		total += sample.total
		if i == 0 || sample.total < s.MinTickDuration {
			s.MinTickDuration = sample.total
		}
		if sample.total > s.MaxTickDuration {
			s.MaxTickDuration = sample.total
		}
		for phase, d := range sample.phases {
			phaseSum[phase] += d
		}
		agents += sample.agents
		deaths += sample.deaths
	}

	n := time.Duration(p.count)
	s.AvgTickDuration = total / n
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	for phase, sum := range phaseSum {
		s.PhaseAvg[phase] = sum / n
		if s.AvgTickDuration > 0 {
			s.PhasePct[phase] = float64(s.PhaseAvg[phase]) / float64(s.AvgTickDuration) * 100
		}
	}

	s.AvgAgents = float64(agents) / float64(p.count)
	s.DeathsPerTick = float64(deaths) / float64(p.count)
	if agents > 0 {
		s.MovementPerAgent = phaseSum[PhaseMovement] / time.Duration(agents)
	}
	return s
}

// LogStats logs the window summary.
func (s PerfStats) LogStats() {
	slog.Info("perf", "perf", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
		slog.Float64("agents", s.AvgAgents),
		slog.Float64("deaths_per_tick", s.DeathsPerTick),
		slog.Int64("movement_ns_per_agent", s.MovementPerAgent.Nanoseconds()),
	}
	for _, phase := range phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd          int32   `csv:"window_end"`
	AvgTickUS          int64   `csv:"avg_tick_us"`
	MinTickUS          int64   `csv:"min_tick_us"`
	MaxTickUS          int64   `csv:"max_tick_us"`
	TicksPerSec        float64 `csv:"ticks_per_sec"`
	Agents             float64 `csv:"agents"`
	DeathsPerTick      float64 `csv:"deaths_per_tick"`
	MovementNSPerAgent int64   `csv:"movement_ns_per_agent"`
	MovementPct        float64 `csv:"movement_pct"`
	EvolutionPct       float64 `csv:"evolution_pct"`
	TelemetryPct       float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:          windowEnd,
		AvgTickUS:          s.AvgTickDuration.Microseconds(),
		MinTickUS:          s.MinTickDuration.Microseconds(),
		MaxTickUS:          s.MaxTickDuration.Microseconds(),
		TicksPerSec:        s.TicksPerSecond,
		Agents:             s.AvgAgents,
		DeathsPerTick:      s.DeathsPerTick,
		MovementNSPerAgent: s.MovementPerAgent.Nanoseconds(),
		MovementPct:        s.PhasePct[PhaseMovement],
		EvolutionPct:       s.PhasePct[PhaseEvolution],
		TelemetryPct:       s.PhasePct[PhaseTelemetry],
	}
}
