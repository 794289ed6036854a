package systems

import "github.com/pthm-cable/forage/components"

// UpdateEnergy applies the per-tick metabolic drain.
func UpdateEnergy(e *components.Energy, decay int) {
	e.Drain(decay)
}

// Starved reports whether the agent has no energy left.
func Starved(e components.Energy) bool {
	return e.Value <= 0
}
