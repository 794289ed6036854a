package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/neural"
	"github.com/pthm-cable/forage/systems"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Grid glyphs used in Snapshot.Rows.
const (
	GlyphEmpty = '.'
	GlyphFood  = 'F'
	GlyphAgent = 'A'
)

// Snapshot is a read-only copy of the simulation state at one tick.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id,omitempty"`
	RNGSeed int64  `json:"rng_seed"`

	GridSize   int   `json:"grid_size"`
	Tick       int32 `json:"tick"`
	Generation int   `json:"generation"`
	FoodLeft   int   `json:"food_left"`

	// Rows[y][x] is one glyph per cell.
	Rows []string `json:"rows"`

	Agents []AgentState `json:"agents"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// AgentState holds one agent's complete state.
type AgentState struct {
	ID         uint32 `json:"id"`
	ParentID   uint32 `json:"parent_id,omitempty"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Energy     int    `json:"energy"`
	Lifetime   int    `json:"lifetime"`
	Generation int    `json:"generation"`
	Color      string `json:"color"`
	Eaten      int    `json:"eaten"`

	Policy neural.Weights `json:"policy"`
}

// EncodeRows renders the grid as one string per row.
func EncodeRows(g systems.CellReader) []string {
	size := g.Size()
	rows := make([]string, size)
	buf := make([]byte, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			switch g.At(components.Position{X: x, Y: y}) {
			case systems.CellFood:
				buf[x] = GlyphFood
			case systems.CellAgent:
				buf[x] = GlyphAgent
			default:
				buf[x] = GlyphEmpty
			}
		}
		rows[y] = string(buf)
	}
	return rows
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}
