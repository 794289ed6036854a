package telemetry

import (
	"encoding/json"
	"sort"

	"github.com/pthm-cable/forage/neural"
)

// HallEntry records a dead agent's policy and how long it lasted.
type HallEntry struct {
	EntityID   uint32         `json:"entity_id"`
	ParentID   uint32         `json:"parent_id,omitempty"`
	Generation int            `json:"generation"`
	Color      string         `json:"color"`
	Lifetime   int            `json:"lifetime"`
	Eaten      int            `json:"eaten"`
	DeathTick  int32          `json:"death_tick"`
	Weights    neural.Weights `json:"policy"`
}

// HallOfFame keeps the longest-lived dead agents, sorted by lifetime descending.
// It is an export only; replacement never draws from it.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
}

// NewHallOfFame creates a hall holding at most maxSize entries.
// A non-positive maxSize disables it.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 0 {
		maxSize = 0
	}
	return &HallOfFame{
		entries: make([]HallEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Consider offers a dead agent for entry. Returns true if it was added.
// Ties keep the earlier entrant ahead.
func (hof *HallOfFame) Consider(entry HallEntry) bool {
	// Find insertion point (sorted descending by lifetime)
	idx := sort.Search(len(hof.entries), func(i int) bool {
		return hof.entries[i].Lifetime < entry.Lifetime
	})

	// If hall is full and entry would be last (lowest), skip it
	if idx >= hof.maxSize {
		return false
	}

	hof.entries = append(hof.entries, HallEntry{})
	copy(hof.entries[idx+1:], hof.entries[idx:])
	hof.entries[idx] = entry

	if len(hof.entries) > hof.maxSize {
		hof.entries = hof.entries[:hof.maxSize]
	}
	return true
}

// Size returns the number of entries.
func (hof *HallOfFame) Size() int {
	return len(hof.entries)
}

// TopLifetime returns the longest recorded lifetime, or 0 if the hall is empty.
func (hof *HallOfFame) TopLifetime() int {
	if len(hof.entries) == 0 {
		return 0
	}
	return hof.entries[0].Lifetime
}

// Entries returns a copy of the entries in rank order.
func (hof *HallOfFame) Entries() []HallEntry {
	out := make([]HallEntry, len(hof.entries))
	copy(out, hof.entries)
	return out
}

// MarshalJSON serializes the hall of fame as a ranked list.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hof.entries, "", "  ")
}
