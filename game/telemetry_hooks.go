package game

import (
	"log/slog"

	"github.com/pthm-cable/forage/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sampleWorld())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sampleWorld collects the end-of-window state for the stats collector.
func (g *Game) sampleWorld() telemetry.WorldState {
	state := telemetry.WorldState{
		Population: len(g.order),
		FoodLeft:   g.food.Len(),
		Generation: g.generation,
		Energies:   make([]float64, 0, len(g.order)),
		Lifetimes:  make([]float64, 0, len(g.order)),
	}

	query := g.agentFilter.Query()
	for query.Next() {
		_, energy, life, _ := query.Get()
		state.Energies = append(state.Energies, float64(energy.Value))
		state.Lifetimes = append(state.Lifetimes, float64(life.Ticks))
	}

	return state
}

// Snapshot returns a read-only copy of the state after the last completed tick.
func (g *Game) Snapshot() *telemetry.Snapshot {
	return g.createSnapshot(nil)
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(g.createSnapshot(bookmark), g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:    telemetry.SnapshotVersion,
		RunID:      g.runID,
		RNGSeed:    g.rngSeed,
		GridSize:   g.grid.Size(),
		Tick:       g.tick,
		Generation: g.generation,
		FoodLeft:   g.food.Len(),
		Rows:       telemetry.EncodeRows(g.grid),
		Agents:     make([]telemetry.AgentState, 0, len(g.order)),
		Bookmark:   bookmark,
	}

	for _, e := range g.order {
		pos, energy, life, lin := g.agentMapper.Get(e)
		brain, ok := g.brains[lin.ID]
		if !ok {
			continue
		}
		snapshot.Agents = append(snapshot.Agents, telemetry.AgentState{
			ID:         lin.ID,
			ParentID:   lin.ParentID,
			X:          pos.X,
			Y:          pos.Y,
			Energy:     energy.Value,
			Lifetime:   life.Ticks,
			Generation: lin.Generation,
			Color:      lin.Color,
			Eaten:      lin.Eaten,
			Policy:     brain.MarshalWeights(),
		})
	}

	return snapshot
}
