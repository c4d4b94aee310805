// Command generate synthesizes a labeled UPI transaction dataset and writes it
// to a single flat file.
//
// Usage:
//
//	go run ./cmd/generate [flags]
//
// Flags:
//
//	-config        YAML config file (default: $UPISYNTH_CONFIG, else environment)
//	-env-file      dotenv file loaded before reading the environment (default: .env)
//	-n             number of transactions (overrides config)
//	-out           output path (overrides config)
//	-format        csv or json (overrides config)
//	-seed          random state (overrides config)
//	-fraud-rate    fraud probability in [0,1] (overrides config)
//	-anchor        end of the 90-day window, RFC3339 (overrides config)
//	-metrics-file  write a Prometheus textfile snapshot here
//
// The dataset is built in two passes: independent sampling, then sequential
// pattern injection over the first 100 users' histories.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"lumina/upi-synth/internal/config"
	"lumina/upi-synth/internal/export"
	"lumina/upi-synth/internal/injector"
	"lumina/upi-synth/internal/metrics"
	"lumina/upi-synth/internal/report"
	"lumina/upi-synth/internal/sampler"
	"lumina/upi-synth/internal/store"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args, generates the dataset and writes it. The summary goes to
// stdout, logs to stderr.
func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to YAML config file (default: $UPISYNTH_CONFIG)")
	envFile := fs.String("env-file", ".env", "dotenv file to load before reading the environment")
	n := fs.Int("n", 0, "number of transactions")
	out := fs.String("out", "", "output file path")
	format := fs.String("format", "", "output format: csv or json")
	seed := fs.Int64("seed", 0, "random state")
	fraudRate := fs.Float64("fraud-rate", -1, "fraud probability in [0,1]")
	anchor := fs.String("anchor", "", "end of the history window (RFC3339)")
	metricsFile := fs.String("metrics-file", "", "Prometheus textfile output path")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	runID := uuid.NewString()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With("run_id", runID)

	// ── Configuration ─────────────────────────────────────────────────────────
	if err := config.LoadDotEnv(*envFile); err != nil {
		return err
	}
	// Resolved after the dotenv load so .env may name the config file.
	if *configPath == "" {
		*configPath = os.Getenv("UPISYNTH_CONFIG")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	// Flags override file and environment values.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			cfg.Generation.Samples = *n
		case "out":
			cfg.Output.Path = *out
		case "format":
			cfg.Output.Format = *format
		case "seed":
			cfg.Generation.RandomState = *seed
		case "fraud-rate":
			cfg.Generation.FraudRate = *fraudRate
		case "anchor":
			cfg.Generation.AnchorTime = *anchor
		case "metrics-file":
			cfg.Output.MetricsFile = *metricsFile
		}
	})

	if err := cfg.Validate(); err != nil {
		return err
	}
	anchorTime, err := cfg.Generation.Anchor()
	if err != nil {
		return err
	}

	return generate(cfg, anchorTime, runID, logger, stdout)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

func generate(cfg *config.Config, anchor time.Time, runID string, logger *slog.Logger, stdout io.Writer) error {
	gen := cfg.Generation
	logger.Info("generating synthetic UPI transactions",
		"n_samples", gen.Samples, "random_state", gen.RandomState, "fraud_rate", gen.FraudRate)

	// ── Stage 1: independent sampling ─────────────────────────────────────────
	rows := sampler.New(sampler.Options{
		Seed:      gen.RandomState,
		FraudRate: gen.FraudRate,
		Anchor:    anchor,
	}).Generate(gen.Samples)

	tbl, err := store.FromRecords(rows)
	if err != nil {
		return fmt.Errorf("build table: %w", err)
	}
	preFraud := tbl.FraudCount()

	// ── Stage 2: sequential patterns ──────────────────────────────────────────
	res := injector.New(gen.RandomState).Inject(tbl)
	logger.Info("sequential patterns injected",
		"users_scanned", res.UsersScanned,
		"relabeled", res.Relabeled(),
		"velocity_relabeled", res.VelocityRelabeled,
		"micropay_relabeled", res.MicropayRelabeled)

	// ── Output ────────────────────────────────────────────────────────────────
	if err := export.WriteFile(cfg.Output.Path, cfg.Output.Format, tbl.Records()); err != nil {
		return err
	}

	summary, err := report.Build(tbl.Records(), preFraud, res)
	if err != nil {
		return err
	}
	summary.Print(stdout)
	fmt.Fprintf(stdout, "Data saved to %s\n", cfg.Output.Path)

	if cfg.Output.MetricsFile != "" {
		rec := metrics.NewRecorder(runID)
		rec.Observe(summary)
		if err := rec.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	logger.Info("dataset written",
		"path", cfg.Output.Path, "records", summary.Total, "fraud_rate", summary.FraudRate)
	return nil
}
