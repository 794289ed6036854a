package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/game"
	"github.com/pthm-cable/forage/server"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml or config.ini (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	debug := flag.Bool("debug", false, "Enable debug logging")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in ticks (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stopWhenFoodless := flag.Bool("stop-when-foodless", false, "Stop once all food is eaten")
	serveAddr := flag.String("serve", "", "Serve the websocket state feed on this address (empty = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg().Clone()
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	if *serveAddr != "" {
		cfg.Server.Addr = *serveAddr
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	runID := uuid.New().String()
	slog.SetDefault(logger.With("run_id", runID))

	g, err := game.NewGameWithOptions(game.Options{
		Config:      cfg,
		Seed:        rngSeed,
		RunID:       runID,
		LogStats:    *logStats,
		SnapshotDir: *snapshotDir,
		OutputDir:   *outputDir,
	})
	if err != nil {
		slog.Error("failed to initialize simulation", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := g.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := func() bool {
		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return true
		}
		if *stopWhenFoodless && g.FoodLeft() == 0 {
			slog.Info("food exhausted", "tick", g.Tick(), "generation", g.Generation())
			return true
		}
		return false
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"grid_size", cfg.World.GridSize,
		"agents", cfg.Population.Initial,
		"food", cfg.World.FoodCount,
		"max_ticks", *maxTicks,
		"serve", cfg.Server.Addr,
		"output_dir", g.OutputDir(),
	)

	if cfg.Server.Addr == "" {
		runHeadless(ctx, g, done)
	} else {
		runServed(ctx, g, cfg, done)
	}

	slog.Info("simulation stopped",
		"tick", g.Tick(),
		"generation", g.Generation(),
		"food_left", g.FoodLeft(),
		"top_lifetime", g.HallOfFame().TopLifetime(),
	)
}

// runHeadless steps as fast as possible until done or interrupted.
func runHeadless(ctx context.Context, g *game.Game, done func() bool) {
	for ctx.Err() == nil && !done() {
		g.Step()
	}
}

// runServed paces ticks with a ticker and publishes snapshots to the feed.
// Publishing never blocks the tick loop.
func runServed(ctx context.Context, g *game.Game, cfg *config.Config, done func() bool) {
	hub := server.NewHub()
	go hub.Run(ctx)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: hub.Handler()}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("state feed stopped", "error", err)
		}
	}()
	slog.Info("state feed listening", "addr", cfg.Server.Addr, "path", "/ws")

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("state feed shutdown", "error", err)
		}
	}()

	interval := time.Duration(cfg.Server.TickIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = time.Millisecond
	}
	every := cfg.Server.SnapshotInterval
	if every < 1 {
		every = 1
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	hub.Publish(g.Snapshot())
	for !done() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Step()
			if int(g.Tick())%every == 0 {
				hub.Publish(g.Snapshot())
			}
		}
	}
}
