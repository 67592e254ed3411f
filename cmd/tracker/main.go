package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rickgao/congress-tracker/internal/alert"
	"github.com/rickgao/congress-tracker/internal/api"
	"github.com/rickgao/congress-tracker/internal/config"
	"github.com/rickgao/congress-tracker/internal/pipeline"
	"github.com/rickgao/congress-tracker/internal/report"
	"github.com/rickgao/congress-tracker/internal/sector"
	"github.com/rickgao/congress-tracker/internal/store"
	"github.com/rickgao/congress-tracker/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/tracker.local.yaml", "path to config file")
	every := flag.Duration("every", 0, "rerun interval (0 runs once and exits)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Optional .env holds the API key locally; a missing file is fine.
	_ = godotenv.Load()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tracker",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"api_url", cfg.API.BaseURL,
		"db_driver", cfg.Database.Driver,
		"lookback_days", cfg.Tracker.LookbackDays,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Open the trade store
	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	logger.Info("store ready", "driver", cfg.Database.Driver)

	// Sector classifier, with optional overrides from disk
	classifier := sector.New()
	if cfg.Tracker.SectorMapPath != "" {
		if err := classifier.LoadOverrides(cfg.Tracker.SectorMapPath); err != nil {
			logger.Error("failed to load sector map", "error", err, "path", cfg.Tracker.SectorMapPath)
			os.Exit(1)
		}
	}

	// Create API client
	apiClient := api.NewClient(
		cfg.API.BaseURL,
		cfg.API.APIKey,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	formatter, err := report.New(cfg.Tracker.TopPoliticianCount)
	if err != nil {
		logger.Error("failed to build report formatter", "error", err)
		os.Exit(1)
	}

	driver := pipeline.New(
		pipelineConfig(cfg.Tracker),
		apiClient,
		st,
		formatter,
		classifier,
		pipeline.WithLogger(logger),
	)

	if err := runLoop(ctx, driver, *every, logger); err != nil {
		os.Exit(1)
	}

	logger.Info("tracker stopped")
}

// runLoop executes one run, then repeats on the interval if one is set.
// A failed run logs and, in interval mode, waits for the next tick rather
// than exiting.
func runLoop(ctx context.Context, driver *pipeline.Driver, every time.Duration, logger *slog.Logger) error {
	sum, err := driver.Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		if every == 0 {
			return err
		}
	} else {
		logger.Info("run summary", "new_trades", sum.NewTrades, "duplicates", sum.Duplicates)
	}

	if every == 0 {
		return err
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sum, err := driver.Run(ctx)
			if err != nil {
				logger.Error("run failed", "error", err)
				continue
			}
			logger.Info("run summary", "new_trades", sum.NewTrades, "duplicates", sum.Duplicates)
		}
	}
}

func pipelineConfig(t config.TrackerConfig) pipeline.Config {
	return pipeline.Config{
		LookbackDays:       t.LookbackDays,
		MinTradeAmount:     t.MinTradeAmount,
		TopPoliticianCount: t.TopPoliticianCount,
		OutputPath:         t.OutputPath,
		Thresholds: alert.Thresholds{
			LargeTradeAmount:      t.AlertLargeTradeAmount,
			VolumeMultiplier:      t.UnusualVolumeMultiplier,
			SectorShiftPoints:     t.SectorShiftPoints,
			ClusterMinPoliticians: t.ClusterMinPoliticians,
			OnLargeTrades:         enabled(t.AlertOnLargeTrades),
			OnUnusualVolume:       enabled(t.AlertOnUnusualVolume),
			OnSectorChanges:       enabled(t.AlertOnSectorChanges),
			OnClusters:            enabled(t.AlertOnClusters),
		},
	}
}

func enabled(b *bool) bool {
	return b == nil || *b
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case "postgres":
		return store.OpenPostgres(ctx, store.PGConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Name:     cfg.Name,
			User:     cfg.User,
			Password: cfg.Password,
			SSLMode:  cfg.SSLMode,
			MaxConns: cfg.MaxConns,
			MinConns: cfg.MinConns,
		})
	default:
		return store.OpenSQLite(ctx, cfg.Path)
	}
}
