package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/neural"
	"github.com/pthm-cable/forage/systems"
)

func TestSnapshotRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:    SnapshotVersion,
		RNGSeed:    12345,
		GridSize:   3,
		Tick:       1000,
		Generation: 4,
		FoodLeft:   1,
		Rows:       []string{"A..", "...", "..F"},
		Agents: []AgentState{
			{
				ID:         1,
				X:          0,
				Y:          0,
				Energy:     42,
				Lifetime:   17,
				Generation: 4,
				Color:      "purple",
				Policy: neural.Weights{
					W1: make([]float64, neural.NumInputs*neural.NumHidden),
					W2: make([]float64, neural.NumHidden*neural.NumOutputs),
				},
			},
		},
		Bookmark: &Bookmark{
			Type:        BookmarkLifetimeRecord,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}
	snapshot.Agents[0].Policy.W1[5] = -0.75

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.RNGSeed != snapshot.RNGSeed || loaded.Tick != snapshot.Tick || loaded.Generation != 4 {
		t.Errorf("header mismatch: %+v", loaded)
	}
	if len(loaded.Rows) != 3 || loaded.Rows[2] != "..F" {
		t.Errorf("rows = %v", loaded.Rows)
	}
	if len(loaded.Agents) != 1 || loaded.Agents[0].Color != "purple" || loaded.Agents[0].Energy != 42 {
		t.Fatalf("agents = %+v", loaded.Agents)
	}
	if loaded.Agents[0].Policy.W1[5] != -0.75 {
		t.Errorf("policy weight = %v, want -0.75", loaded.Agents[0].Policy.W1[5])
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkLifetimeRecord {
		t.Error("Bookmark not loaded")
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	path, err := SaveSnapshot(&Snapshot{
		Version:  SnapshotVersion,
		Tick:     5000,
		Bookmark: &Bookmark{Type: BookmarkFoodExhausted, Tick: 5000},
	}, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if want := filepath.Join(tmpDir, "snapshot_5000_food_exhausted.json"); path != want {
		t.Errorf("Path mismatch: got %s, want %s", path, want)
	}

	path, err = SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 3000}, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if want := filepath.Join(tmpDir, "snapshot_3000.json"); path != want {
		t.Errorf("Path mismatch: got %s, want %s", path, want)
	}
}

func TestEncodeRows(t *testing.T) {
	g := systems.NewGrid(3)
	g.Set(components.Position{X: 2, Y: 0}, systems.CellFood)
	g.Set(components.Position{X: 0, Y: 1}, systems.CellAgent)

	rows := EncodeRows(g)
	want := []string{"..F", "A..", "..."}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, rows[i], want[i])
		}
	}
}
