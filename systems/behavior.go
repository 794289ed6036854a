package systems

import (
	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/neural"
)

// BehaviorParams holds the per-tick agent update constants.
type BehaviorParams struct {
	Decay          int
	DirectionScale float64
}

// Decide senses the grid and asks the policy for a move.
func Decide(pos components.Position, energy components.Energy, policy *neural.Policy, grid *Grid, dirScale float64) (dx, dy int) {
	in := ComputeSensors(pos, energy, grid, dirScale)
	return policy.Forward(in.Hunger, in.FoodDirX, in.FoodDirY)
}

// UpdateBehavior runs one agent step: drain energy, decide, then move.
// The destination is clamped to the grid per axis and taken only when no
// other agent occupies it; food and empty cells are both legal targets.
// The caller vacates the agent's own cell beforehand.
// Returns true if the position changed.
func UpdateBehavior(
	pos *components.Position,
	energy *components.Energy,
	policy *neural.Policy,
	grid *Grid,
	params BehaviorParams,
) bool {
	UpdateEnergy(energy, params.Decay)

	dx, dy := Decide(*pos, *energy, policy, grid, params.DirectionScale)

	dest := grid.Clamp(pos.Add(dx, dy))
	if dest == *pos {
		return false
	}
	if grid.At(dest) == CellAgent {
		return false
	}
	*pos = dest
	return true
}
