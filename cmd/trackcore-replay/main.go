// Command trackcore-replay feeds a JSON-lines capture of transport engine
// callbacks through the recorder and persists each finalized event.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"trackcore/internal/core"
	"trackcore/internal/export"
	"trackcore/internal/infra/blob"
	"trackcore/internal/replay"
)

type cliConfig struct {
	RunID                 string  `env:"TRACKCORE_RUN_ID" envDefault:"local"`
	CaptureFile           string  `env:"TRACKCORE_CAPTURE_FILE"`
	EnergyCutGeV          float64 `env:"TRACKCORE_ENERGY_CUT_GEV" envDefault:"0"`
	StoreTrajectories     bool    `env:"TRACKCORE_STORE_TRAJECTORIES" envDefault:"true"`
	KeepEMShowerDaughters bool    `env:"TRACKCORE_KEEP_EM_SHOWER_DAUGHTERS" envDefault:"true"`
	CorrectPhotonTiming   bool    `env:"TRACKCORE_CORRECT_PHOTON_TIMING" envDefault:"true"`
	ExportEvents          bool    `env:"TRACKCORE_EXPORT_EVENTS" envDefault:"false"`
	Verbose               bool    `env:"TRACKCORE_VERBOSE" envDefault:"false"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "trackcore-replay:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg cliConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if len(os.Args) > 1 {
		cfg.CaptureFile = os.Args[1]
	}

	log, err := newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	input := os.Stdin
	if cfg.CaptureFile != "" && cfg.CaptureFile != "-" {
		f, err := os.Open(cfg.CaptureFile)
		if err != nil {
			return fmt.Errorf("open capture: %w", err)
		}
		defer func() { _ = f.Close() }()
		input = f
	}

	ctx := context.Background()

	recorder := core.NewRecorder(core.Config{
		EnergyCutGeV:          cfg.EnergyCutGeV,
		StoreTrajectories:     cfg.StoreTrajectories,
		KeepEMShowerDaughters: cfg.KeepEMShowerDaughters,
		CorrectPhotonTiming:   cfg.CorrectPhotonTiming,
	}, core.WithLogger(log))

	store, err := core.OpenEventStore(core.DefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}

	var exporter *export.Exporter
	if cfg.ExportEvents {
		blobStore, err := blob.Open(ctx)
		if err != nil {
			return fmt.Errorf("open blob store: %w", err)
		}
		exporter = export.NewExporter(blobStore)
	}

	player := replay.NewPlayer(cfg.RunID, recorder, store, exporter, log)
	sum, err := player.Play(ctx, input)
	if err != nil {
		return err
	}
	log.Info("replay complete",
		zap.String("run_id", cfg.RunID),
		zap.Int("events", sum.Events),
		zap.Int("particles", sum.Particles),
		zap.Int("rejected", sum.Rejected))
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
