package systems

import (
	"math/rand"

	"golang.org/x/exp/constraints"

	"github.com/pthm-cable/forage/components"
)

// CellState is the single occupant type of a grid cell.
type CellState uint8

const (
	CellEmpty CellState = iota
	CellFood
	CellAgent
	numCellStates
)

// String returns the cell state name.
func (s CellState) String() string {
	switch s {
	case CellEmpty:
		return "empty"
	case CellFood:
		return "food"
	case CellAgent:
		return "agent"
	}
	return "unknown"
}

// Grid is the shared square cell array. Agents hold coordinates into it,
// never pointers. Cells are stored column by column: index = x*size + y,
// so scans run x-outer, y-inner.
type Grid struct {
	cells  []CellState
	size   int
	counts [numCellStates]int
}

// NewGrid creates an all-empty grid with size cells per side.
func NewGrid(size int) *Grid {
	g := &Grid{
		cells: make([]CellState, size*size),
		size:  size,
	}
	g.counts[CellEmpty] = size * size
	return g
}

// Size returns the number of cells per side.
func (g *Grid) Size() int {
	return g.size
}

// InBounds reports whether p lies on the grid.
func (g *Grid) InBounds(p components.Position) bool {
	return p.X >= 0 && p.X < g.size && p.Y >= 0 && p.Y < g.size
}

// At returns the state of the cell at p. p must be in bounds.
func (g *Grid) At(p components.Position) CellState {
	return g.cells[p.X*g.size+p.Y]
}

// Set marks the cell at p, keeping per-state counts current.
func (g *Grid) Set(p components.Position, s CellState) {
	idx := p.X*g.size + p.Y
	g.counts[g.cells[idx]]--
	g.cells[idx] = s
	g.counts[s]++
}

// Count returns how many cells hold state s.
func (g *Grid) Count(s CellState) int {
	return g.counts[s]
}

// Clamp moves p onto the grid, each axis independently.
func (g *Grid) Clamp(p components.Position) components.Position {
	return components.Position{
		X: clamp(p.X, 0, g.size-1),
		Y: clamp(p.Y, 0, g.size-1),
	}
}

// Cells returns a copy of the raw cell states (index = x*size + y).
func (g *Grid) Cells() []CellState {
	out := make([]CellState, len(g.cells))
	copy(out, g.cells)
	return out
}

// CellReader is the read side of a grid.
type CellReader interface {
	Size() int
	At(p components.Position) CellState
}

// GridView is a detached read-only copy of a grid.
type GridView struct {
	cells  []CellState
	size   int
	counts [numCellStates]int
}

// View copies the grid's current cells into a GridView.
func (g *Grid) View() GridView {
	return GridView{cells: g.Cells(), size: g.size, counts: g.counts}
}

// Size returns the number of cells per side.
func (v GridView) Size() int {
	return v.size
}

// At returns the state of the cell at p. p must be in bounds.
func (v GridView) At(p components.Position) CellState {
	return v.cells[p.X*v.size+p.Y]
}

// Count returns how many cells hold state s.
func (v GridView) Count(s CellState) int {
	return v.counts[s]
}

// NearestFood scans the whole grid for the food cell closest to from by
// Manhattan distance. Ties go to the first cell in scan order.
func (g *Grid) NearestFood(from components.Position) (components.Position, bool) {
	if g.counts[CellFood] == 0 {
		return components.Position{}, false
	}

	best := components.Position{}
	bestDist := -1
	for x := 0; x < g.size; x++ {
		for y := 0; y < g.size; y++ {
			if g.cells[x*g.size+y] != CellFood {
				continue
			}
			d := abs(x-from.X) + abs(y-from.Y)
			if bestDist < 0 || d < bestDist {
				bestDist = d
				best = components.Position{X: x, Y: y}
			}
		}
	}
	return best, bestDist >= 0
}

// FindEmptyNear scans the square neighborhood [-radius, radius]² around center
// (x offset outer, y offset inner) and returns the first in-bounds empty cell.
func (g *Grid) FindEmptyNear(center components.Position, radius int) (components.Position, bool) {
	for rx := -radius; rx <= radius; rx++ {
		for ry := -radius; ry <= radius; ry++ {
			p := center.Add(rx, ry)
			if g.InBounds(p) && g.At(p) == CellEmpty {
				return p, true
			}
		}
	}
	return center, false
}

// RandomEmpty draws uniform positions until it finds an empty cell.
// The caller guarantees at least one empty cell exists.
func (g *Grid) RandomEmpty(rng *rand.Rand) components.Position {
	for {
		p := components.Position{X: rng.Intn(g.size), Y: rng.Intn(g.size)}
		if g.At(p) == CellEmpty {
			return p
		}
	}
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}
