package systems

import (
	"math"

	"github.com/pthm-cable/forage/components"
)

// SensorInputs holds the computed sensor values for one agent.
type SensorInputs struct {
	Hunger   float64 // 1 - energy/100
	FoodDirX float64 // tanh(Δx / scale), 0 when no food exists
	FoodDirY float64 // tanh(Δy / scale), 0 when no food exists
}

// ComputeSensors calculates the sensor inputs for an agent at pos.
// Hunger is measured against the fixed 100-point scale; the food direction
// points at the nearest food cell on the whole grid.
func ComputeSensors(pos components.Position, energy components.Energy, grid *Grid, dirScale float64) SensorInputs {
	inputs := SensorInputs{
		Hunger: 1 - float64(energy.Value)/100.0,
	}

	food, ok := grid.NearestFood(pos)
	if !ok {
		return inputs
	}

	inputs.FoodDirX = math.Tanh(float64(food.X-pos.X) / dirScale)
	inputs.FoodDirY = math.Tanh(float64(food.Y-pos.Y) / dirScale)
	return inputs
}
