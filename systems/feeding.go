package systems

import (
	"math/rand"

	"github.com/pthm-cable/forage/components"
)

// Eat credits one food item, capped at the agent's maximum energy.
func Eat(e *components.Energy, gain int) {
	e.Gain(gain)
}

// FoodStore holds the uneaten food records. Its size always matches the
// number of food cells on the grid.
type FoodStore struct {
	items map[components.Position]struct{}
}

// NewFoodStore creates an empty store.
func NewFoodStore() *FoodStore {
	return &FoodStore{items: make(map[components.Position]struct{})}
}

// Scatter places count food items on random empty cells of the grid.
func (fs *FoodStore) Scatter(grid *Grid, rng *rand.Rand, count int) {
	for i := 0; i < count; i++ {
		p := grid.RandomEmpty(rng)
		fs.Place(grid, p)
	}
}

// Place adds a food item at p and marks the cell.
func (fs *FoodStore) Place(grid *Grid, p components.Position) {
	fs.items[p] = struct{}{}
	grid.Set(p, CellFood)
}

// Remove deletes the food record at p. The caller re-marks the cell.
// Returns false if no food was recorded there.
func (fs *FoodStore) Remove(p components.Position) bool {
	if _, ok := fs.items[p]; !ok {
		return false
	}
	delete(fs.items, p)
	return true
}

// Len returns the number of uneaten food items.
func (fs *FoodStore) Len() int {
	return len(fs.items)
}
