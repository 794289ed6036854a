package systems

import (
	"math/rand"
	"testing"
)

func TestFoodStoreScatter(t *testing.T) {
	g := NewGrid(6)
	g.Set(pos(0, 0), CellAgent)
	fs := NewFoodStore()

	fs.Scatter(g, rand.New(rand.NewSource(5)), 20)

	if fs.Len() != 20 {
		t.Errorf("Len() = %d, want 20", fs.Len())
	}
	if g.Count(CellFood) != 20 {
		t.Errorf("food cells = %d, want 20", g.Count(CellFood))
	}
	if g.At(pos(0, 0)) != CellAgent {
		t.Error("scatter overwrote an agent cell")
	}
	for p := range fs.items {
		if g.At(p) != CellFood {
			t.Errorf("record at %v has no food cell", p)
		}
	}
}

func TestFoodStoreRemove(t *testing.T) {
	g := NewGrid(3)
	fs := NewFoodStore()
	fs.Place(g, pos(1, 2))

	if fs.Remove(pos(0, 0)) {
		t.Error("removed food that was never placed")
	}
	if !fs.Remove(pos(1, 2)) {
		t.Error("failed to remove placed food")
	}
	if fs.Len() != 0 {
		t.Errorf("Len() = %d, want 0", fs.Len())
	}
}
