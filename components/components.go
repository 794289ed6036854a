// Package components defines ECS components for the simulation.
package components

// Position is an agent's grid cell.
type Position struct {
	X, Y int
}

// Add returns the position offset by (dx, dy).
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Energy tracks an agent's metabolic state.
// Value stays in [0, Max]; the agent dies when it reaches 0 without eating.
type Energy struct {
	Value int
	Max   int
}

// Drain subtracts amount, never going below zero.
func (e *Energy) Drain(amount int) {
	e.Value -= amount
	if e.Value < 0 {
		e.Value = 0
	}
}

// Gain adds amount, capped at Max.
func (e *Energy) Gain(amount int) {
	e.Value += amount
	if e.Value > e.Max {
		e.Value = e.Max
	}
}

// Lifetime counts ticks survived. It is the fitness used for parent selection.
type Lifetime struct {
	Ticks     int
	BirthTick int32
}

// Lineage identifies an agent and the replacement batch that produced it.
type Lineage struct {
	ID         uint32
	ParentID   uint32 // 0 for founders and orphans (no survivors to clone)
	Generation int    // Generation counter value at spawn
	Color      string // Generation color tag
	Eaten      int    // Food cells consumed
}

// HasParent reports whether the agent was cloned from a survivor.
func (l Lineage) HasParent() bool {
	return l.ParentID != 0
}
