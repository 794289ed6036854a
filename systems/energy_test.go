package systems

import (
	"testing"

	"github.com/pthm-cable/forage/components"
)

func TestUpdateEnergyDrains(t *testing.T) {
	e := components.Energy{Value: 10, Max: 100}
	UpdateEnergy(&e, 1)

	if e.Value != 9 {
		t.Errorf("energy = %d, want 9", e.Value)
	}
}

func TestUpdateEnergyFloorsAtZero(t *testing.T) {
	e := components.Energy{Value: 1, Max: 100}
	UpdateEnergy(&e, 3)

	if e.Value != 0 {
		t.Errorf("energy = %d, want 0", e.Value)
	}
	if !Starved(e) {
		t.Error("agent at zero energy should be starved")
	}
}

func TestEatCapsAtMax(t *testing.T) {
	e := components.Energy{Value: 98, Max: 100}
	Eat(&e, 5)

	if e.Value != 100 {
		t.Errorf("energy = %d, want 100", e.Value)
	}

	e = components.Energy{Value: 0, Max: 100}
	Eat(&e, 5)
	if e.Value != 5 {
		t.Errorf("energy = %d, want 5", e.Value)
	}
	if Starved(e) {
		t.Error("fed agent should not be starved")
	}
}
