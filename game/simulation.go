package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/systems"
	"github.com/pthm-cable/forage/telemetry"
)

// Step runs one tick to completion: every agent moves in processing order,
// then starved agents are replaced in a single batch.
func (g *Game) Step() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseMovement)
	moved := len(g.order)
	deaths := g.updateAgents()

	g.perfCollector.StartPhase(telemetry.PhaseEvolution)
	if len(deaths) > 0 {
		g.replaceDead(deaths)
	}

	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick(moved, len(deaths))
}

// updateAgents moves, feeds, and starves every agent alive at tick start.
// Returns the cells where agents died.
func (g *Game) updateAgents() []death {
	var deaths []death
	alive := make([]ecs.Entity, 0, len(g.order))
	gain := g.cfg.Energy.FeedGain

	for _, e := range g.order {
		pos, energy, life, lin := g.agentMapper.Get(e)
		policy := g.brains[lin.ID]

		// Vacate first so an agent never blocks its own cell
		g.grid.Set(*pos, systems.CellEmpty)

		systems.UpdateBehavior(pos, energy, policy, g.grid, g.params)

		switch {
		case g.grid.At(*pos) == systems.CellFood:
			// Feeding overrides starvation this tick
			systems.Eat(energy, gain)
			g.food.Remove(*pos)
			g.grid.Set(*pos, systems.CellAgent)
			lin.Eaten++
			life.Ticks++
			g.collector.RecordFoodEaten()
			alive = append(alive, e)

		case systems.Starved(*energy):
			deaths = append(deaths, death{pos: *pos})
			g.removeAgent(e)

		default:
			g.grid.Set(*pos, systems.CellAgent)
			life.Ticks++
			alive = append(alive, e)
		}
	}

	g.order = alive
	return deaths
}
