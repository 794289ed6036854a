package systems

import (
	"math/rand"

	"github.com/pthm-cable/forage/components"
)

// SpawnRadius returns the replacement search radius. It shrinks as the
// survivor count recovers toward the initial population:
// max(minR, maxR * survivors / max(1, initial)), using integer division.
func SpawnRadius(minR, maxR, survivors, initial int) int {
	if initial < 1 {
		initial = 1
	}
	r := maxR * survivors / initial
	if r < minR {
		return minR
	}
	return r
}

// ResolveSpawnCell picks where a replacement for an agent that died at
// death is placed. If the death cell already holds an agent marker, the
// first empty cell of the radius neighborhood is used instead. When none is
// empty the occupied death cell is returned with collided set; the caller
// overwrites it.
func ResolveSpawnCell(grid *Grid, death components.Position, radius int) (pos components.Position, collided bool) {
	if grid.At(death) != CellAgent {
		return death, false
	}
	if p, ok := grid.FindEmptyNear(death, radius); ok {
		return p, false
	}
	return death, true
}

// SelectParent picks a survivor index by roulette wheel over lifetimes.
// It draws r in [0, total) and returns the first survivor whose cumulative
// lifetime exceeds r, so zero-lifetime survivors are never picked while any
// survivor has positive lifetime. With no positive lifetime, a survivor is
// chosen uniformly. ok is false when there are no survivors.
func SelectParent(rng *rand.Rand, lifetimes []int) (idx int, ok bool) {
	if len(lifetimes) == 0 {
		return 0, false
	}

	total := 0
	for _, l := range lifetimes {
		total += l
	}

	if total > 0 {
		r := rng.Intn(total)
		acc := 0
		for i, l := range lifetimes {
			acc += l
			if r < acc {
				return i, true
			}
		}
	}

	return rng.Intn(len(lifetimes)), true
}
