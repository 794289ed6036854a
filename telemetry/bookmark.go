package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFeedingBreakthrough BookmarkType = "feeding_breakthrough"
	BookmarkLifetimeRecord      BookmarkType = "lifetime_record"
	BookmarkFullTurnover        BookmarkType = "full_turnover"
	BookmarkFoodExhausted       BookmarkType = "food_exhausted"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	lifetimeRecord float64
	foodExhausted  bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	// Feeding breakthrough: food eaten > 2x rolling average
	if b := bd.checkFeedingBreakthrough(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Lifetime record: oldest living agent beats every earlier window
	if b := bd.checkLifetimeRecord(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Full turnover: at least one death per living agent this window
	if b := bd.checkFullTurnover(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Food exhausted: fires once
	if !bd.foodExhausted && stats.FoodLeft == 0 {
		bd.foodExhausted = true
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkFoodExhausted,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Last food eaten by generation %d", stats.Generation),
		})
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkFeedingBreakthrough(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.FoodEaten
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.FoodEaten) > avg*2.0 && stats.FoodEaten >= 3 {
		return &Bookmark{
			Type:        BookmarkFeedingBreakthrough,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Ate %d food, %.1fx average (%.1f)", stats.FoodEaten, float64(stats.FoodEaten)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkLifetimeRecord(stats WindowStats) *Bookmark {
	if stats.LifetimeMax <= bd.lifetimeRecord {
		return nil
	}
	old := bd.lifetimeRecord
	bd.lifetimeRecord = stats.LifetimeMax

	// The first window only establishes the baseline
	if old == 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkLifetimeRecord,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Oldest agent reached %.0f ticks (previous record %.0f)", stats.LifetimeMax, old),
	}
}

func (bd *BookmarkDetector) checkFullTurnover(stats WindowStats) *Bookmark {
	if stats.Population == 0 || stats.Deaths < stats.Population {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFullTurnover,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d deaths against a population of %d", stats.Deaths, stats.Population),
	}
}
