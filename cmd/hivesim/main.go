// Command hivesim runs the autonomous honeybee colony simulation.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/talgya/apiary/internal/api"
	"github.com/talgya/apiary/internal/config"
	"github.com/talgya/apiary/internal/engine"
	"github.com/talgya/apiary/internal/entropy"
	"github.com/talgya/apiary/internal/hive"
	"github.com/talgya/apiary/internal/persistence"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfgPath := flag.String("config", "", "path to JSON config (defaults used when empty)")
	dbPath := flag.String("db", "data/apiary.db", "path to SQLite database")
	apiPort := flag.Int("port", 8080, "HTTP API port")
	fresh := flag.Bool("fresh", false, "ignore saved state and start a new colony")
	flag.Parse()

	slog.Info("Apiary — Honeybee Colony Simulation")

	// ── Configuration ────────────────────────────────────────────────
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var rng entropy.Source
	if cfg.Seed != 0 {
		rng = entropy.NewSeeded(cfg.Seed)
		slog.Info("deterministic run", "seed", cfg.Seed)
	} else {
		rng = entropy.NewRandom()
	}

	// ── Database ─────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(*dbPath), 0755)
	db, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", *dbPath)

	runID, err := db.RunID()
	if err != nil {
		slog.Error("failed to read run id", "error", err)
		os.Exit(1)
	}

	// ── Load or Create Colony ────────────────────────────────────────
	var colony *hive.Hive
	startClock := time.Now()

	snap, err := db.LoadSnapshot()
	switch {
	case *fresh || errors.Is(err, persistence.ErrNoSnapshot):
		slog.Info("starting new colony",
			"columns", cfg.Columns,
			"rows", cfg.Rows,
			"workers", cfg.InitialWorkers,
		)
		colony = hive.New(cfg, rng)
	case err != nil:
		slog.Error("failed to load saved colony", "error", err)
		os.Exit(1)
	default:
		colony, err = hive.Import(snap, rng)
		if err != nil {
			slog.Error("failed to restore colony", "error", err)
			os.Exit(1)
		}
		if !snap.Date.IsZero() {
			startClock = snap.Date
		}
		slog.Info("colony restored",
			"sim_time", snap.SimTime,
			"cells", len(snap.Cells),
			"bees", len(snap.Bees),
		)
	}

	// ── Engine ───────────────────────────────────────────────────────
	eng := engine.New(100*time.Millisecond, startClock)
	eng.OnFrame = colony.Update
	eng.OnDay = func(now time.Time) {
		if err := db.SaveSnapshot(colony.Export()); err != nil {
			slog.Error("daily save failed", "error", err)
		}
		if err := db.SaveEvents(colony.Events(0)); err != nil {
			slog.Error("daily event save failed", "error", err)
		}
	}

	// ── HTTP API ─────────────────────────────────────────────────────
	adminKey := os.Getenv("HIVESIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("HIVESIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Hive:     colony,
		Eng:      eng,
		DB:       db,
		RunID:    runID,
		Port:     *apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	stats := colony.CollectStats()
	fmt.Printf("\nThe hive is alive: %d bees on a %d×%d comb.\n",
		stats.Population, cfg.Columns, cfg.Rows)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", *apiPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveSnapshot(colony.Export()); err != nil {
		slog.Error("final save failed", "error", err)
	}
	if err := db.SaveEvents(colony.Events(0)); err != nil {
		slog.Error("final event save failed", "error", err)
	}

	fmt.Println("Simulation stopped. Colony state saved.")
}
