package telemetry

import (
	"encoding/json"
	"testing"
)

func TestHallOfFameOrdering(t *testing.T) {
	hof := NewHallOfFame(3)

	for i, life := range []int{5, 20, 1, 12} {
		hof.Consider(HallEntry{EntityID: uint32(i + 1), Lifetime: life})
	}

	entries := hof.Entries()
	if len(entries) != 3 {
		t.Fatalf("size = %d, want 3", len(entries))
	}
	want := []int{20, 12, 5}
	for i, e := range entries {
		if e.Lifetime != want[i] {
			t.Errorf("entry %d lifetime = %d, want %d", i, e.Lifetime, want[i])
		}
	}
	if hof.TopLifetime() != 20 {
		t.Errorf("top = %d, want 20", hof.TopLifetime())
	}
}

func TestHallOfFameRejectsWhenFull(t *testing.T) {
	hof := NewHallOfFame(2)
	hof.Consider(HallEntry{EntityID: 1, Lifetime: 10})
	hof.Consider(HallEntry{EntityID: 2, Lifetime: 8})

	if hof.Consider(HallEntry{EntityID: 3, Lifetime: 3}) {
		t.Error("accepted an entry below the full hall's minimum")
	}
	// Equal lifetime ranks behind existing entrants
	if hof.Consider(HallEntry{EntityID: 4, Lifetime: 8}) {
		t.Error("tie displaced an earlier entrant")
	}
}

func TestHallOfFameDisabled(t *testing.T) {
	hof := NewHallOfFame(0)
	if hof.Consider(HallEntry{Lifetime: 100}) {
		t.Error("zero-size hall accepted an entry")
	}
	if hof.TopLifetime() != 0 {
		t.Error("empty hall reported a top lifetime")
	}
}

func TestHallOfFameEntriesIsCopy(t *testing.T) {
	hof := NewHallOfFame(2)
	hof.Consider(HallEntry{EntityID: 1, Lifetime: 4})

	e := hof.Entries()
	e[0].Lifetime = 99
	if hof.TopLifetime() != 4 {
		t.Error("Entries exposed internal storage")
	}
}

func TestHallOfFameMarshalJSON(t *testing.T) {
	hof := NewHallOfFame(2)
	hof.Consider(HallEntry{EntityID: 7, Lifetime: 9, Color: "red"})

	data, err := hof.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0]["color"] != "red" || out[0]["lifetime"].(float64) != 9 {
		t.Errorf("unexpected JSON: %s", data)
	}
}
