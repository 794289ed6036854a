package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/forage/components"
)

func TestComputeSensorsHunger(t *testing.T) {
	g := NewGrid(5)

	tests := []struct {
		energy int
		want   float64
	}{
		{100, 0},
		{0, 1},
		{25, 0.75},
		{10, 0.9},
	}
	for _, tt := range tests {
		in := ComputeSensors(pos(0, 0), components.Energy{Value: tt.energy, Max: 100}, g, 5)
		if math.Abs(in.Hunger-tt.want) > 1e-12 {
			t.Errorf("energy %d: hunger = %v, want %v", tt.energy, in.Hunger, tt.want)
		}
	}
}

func TestComputeSensorsFoodDirection(t *testing.T) {
	g := NewGrid(10)
	g.Set(pos(7, 2), CellFood)

	in := ComputeSensors(pos(2, 4), components.Energy{Value: 50, Max: 100}, g, 5)

	wantX := math.Tanh(5.0 / 5.0)
	wantY := math.Tanh(-2.0 / 5.0)
	if math.Abs(in.FoodDirX-wantX) > 1e-12 {
		t.Errorf("FoodDirX = %v, want %v", in.FoodDirX, wantX)
	}
	if math.Abs(in.FoodDirY-wantY) > 1e-12 {
		t.Errorf("FoodDirY = %v, want %v", in.FoodDirY, wantY)
	}
}

func TestComputeSensorsNoFood(t *testing.T) {
	g := NewGrid(4)

	in := ComputeSensors(pos(1, 1), components.Energy{Value: 50, Max: 100}, g, 5)
	if in.FoodDirX != 0 || in.FoodDirY != 0 {
		t.Errorf("direction = (%v, %v), want (0, 0) with no food", in.FoodDirX, in.FoodDirY)
	}
}
