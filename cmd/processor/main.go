package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"lvrcli/internal/config"
	"lvrcli/internal/dataprocessing"
	"lvrcli/internal/exporter"
	"lvrcli/internal/infrastructure"
)

func main() {
	os.Exit(run())
}

func run() int {
	targetSeason := flag.String("season", "", "target year-season for absorption rates, e.g. 113Y2S (defaults to latest observed)")
	workers := flag.Int("workers", 0, "number of concurrent file loaders (defaults to configuration)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	if *targetSeason != "" {
		cfg.Processor.TargetSeason = *targetSeason
	}
	if *workers > 0 {
		cfg.Processor.Workers = *workers
	}

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		return 1
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		return 1
	}

	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = paths.GetLogPath("processor.log")
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting LVR pre-sale processing",
		slog.String("raw_dir", paths.RawDir),
		slog.String("reports_dir", paths.ReportsDir),
		slog.String("target_season", cfg.Processor.TargetSeason),
		slog.Int("workers", cfg.Processor.Workers))

	transactionFiles, err := paths.RawTransactionFiles(cfg.Processor.TransactionGlob)
	if err != nil {
		logger.Error("Failed to list raw transaction files", slog.String("error", err.Error()))
		return 1
	}
	communityFiles, err := paths.RawCommunityFiles(cfg.Processor.CommunityGlob)
	if err != nil {
		logger.Error("Failed to list raw community files", slog.String("error", err.Error()))
		return 1
	}

	fmt.Printf("Found %d transaction files and %d community files\n",
		len(transactionFiles), len(communityFiles))

	metrics := infrastructure.NewMetrics()
	pipeline := dataprocessing.NewPipeline(logger, metrics, cfg.Processor.Workers)

	results, err := pipeline.Run(ctx, cfg.Processor, transactionFiles, communityFiles)
	if err != nil {
		logger.Error("Pipeline failed", slog.String("error", err.Error()))
		return 1
	}

	writer := exporter.NewReportWriter(paths, metrics, logger)
	if err := writer.WriteAll(results); err != nil {
		logger.Error("Failed to write reports", slog.String("error", err.Error()))
		return 1
	}

	summary := results.CancellationSummary
	fmt.Printf("Processed %d records: %d cancelled (%.2f%%), %d unique properties\n",
		summary.Total, summary.Cancelled, summary.CancellationRate*100,
		results.DedupStats.UniqueProperties)
	fmt.Printf("Reports written to %s\n", paths.ReportsDir)

	logger.Info("Processing complete",
		slog.Int("records", summary.Total),
		slog.Int("cancelled", summary.Cancelled),
		slog.Int("projects", len(results.Absorption)),
		slog.Duration("elapsed", results.Elapsed))

	return 0
}
