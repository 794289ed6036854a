package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/neural"
	"github.com/pthm-cable/forage/systems"
	"github.com/pthm-cable/forage/telemetry"
)

// spawnInitialPopulation places the founders on random empty cells.
func (g *Game) spawnInitialPopulation() {
	color := g.generationColor(0)
	for i := 0; i < g.cfg.Population.Initial; i++ {
		pos := g.grid.RandomEmpty(g.rng)
		g.spawnAgent(pos, g.newPolicy(), 0, color)
	}
}

// spawnAgent creates an agent with starting energy at pos, marks its cell,
// and appends it to the processing order.
func (g *Game) spawnAgent(pos components.Position, policy *neural.Policy, parentID uint32, color string) ecs.Entity {
	id := g.nextID
	g.nextID++

	energy := components.Energy{Value: g.cfg.Population.InitialEnergy, Max: g.cfg.Energy.Max}
	life := components.Lifetime{BirthTick: g.tick}
	lin := components.Lineage{
		ID:         id,
		ParentID:   parentID,
		Generation: g.generation,
		Color:      color,
	}

	g.brains[id] = policy
	entity := g.agentMapper.NewEntity(&pos, &energy, &life, &lin)
	g.order = append(g.order, entity)
	g.grid.Set(pos, systems.CellAgent)

	return entity
}

// death records an agent removed this tick.
type death struct {
	pos components.Position
}

// removeAgent deletes a starved agent and its policy, offering it to the
// hall of fame first. The caller drops it from the processing order.
func (g *Game) removeAgent(e ecs.Entity) {
	life := g.lifeMap.Get(e)
	lin := g.lineageMap.Get(e)

	if policy, ok := g.brains[lin.ID]; ok {
		g.hallOfFame.Consider(telemetry.HallEntry{
			EntityID:   lin.ID,
			ParentID:   lin.ParentID,
			Generation: lin.Generation,
			Color:      lin.Color,
			Lifetime:   life.Ticks,
			Eaten:      lin.Eaten,
			DeathTick:  g.tick,
			Weights:    policy.MarshalWeights(),
		})
	}

	g.collector.RecordDeath()
	delete(g.brains, lin.ID)
	g.world.RemoveEntity(e)
}

// replaceDead runs one generational replacement batch for all deaths of the
// tick. Survivors, their lifetimes, and the spawn radius are fixed at batch
// start, so replacements never parent each other.
func (g *Game) replaceDead(deaths []death) {
	cfg := g.cfg

	g.generation++
	color := g.generationColor(g.generation)

	survivors := make([]ecs.Entity, len(g.order))
	copy(survivors, g.order)

	radius := systems.SpawnRadius(cfg.Evolution.MinRadius, cfg.Evolution.MaxRadius, len(survivors), cfg.Population.Initial)

	lifetimes := make([]int, len(survivors))
	for i, e := range survivors {
		lifetimes[i] = g.lifeMap.Get(e).Ticks
	}

	for _, d := range deaths {
		pos, collided := systems.ResolveSpawnCell(g.grid, d.pos, radius)
		if collided {
			g.spawnCollisions++
			g.collector.RecordSpawnCollision()
			slog.Warn("spawn collision",
				"tick", g.tick,
				"x", pos.X,
				"y", pos.Y,
				"radius", radius,
			)
		}

		var policy *neural.Policy
		var parentID uint32
		if idx, ok := systems.SelectParent(g.rng, lifetimes); ok {
			parentID = g.lineageMap.Get(survivors[idx]).ID
			policy = g.brains[parentID].CloneAndMutate(g.rng, cfg.Mutation.Rate, cfg.Mutation.Strength)
		} else {
			policy = g.newPolicy()
		}

		child := g.spawnAgent(pos, policy, parentID, color)
		g.collector.RecordBirth(!g.lineageMap.Get(child).HasParent())
	}

	g.collector.RecordGeneration()
	slog.Debug("generation",
		"tick", g.tick,
		"generation", g.generation,
		"deaths", len(deaths),
		"survivors", len(survivors),
		"radius", radius,
		"color", color,
	)
}
