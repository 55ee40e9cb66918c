// Package dataprocessing turns raw LVR pre-sale exports into the analysis
// artifacts the reports are built from. It consolidates loading, duplicate
// resolution, community matching and the derived statistics into one package
// covering the lifecycle from CSV/Excel ingestion to report-ready figures.
//
// # Architecture
//
// The package is organized around the Pipeline, which drives five stages:
//
// 1. Loader: reads per-transaction CSV and community CSV/Excel exports
// 2. Deduplicate: folds re-registered units into one property each
// 3. Match: joins transactions to community (建案) master data
// 4. ComputeAbsorption: gross/net absorption per project and season
// 5. AssessRisk / AggregateDistricts: scoring and geographic rollups
//
// # Usage
//
// A full run over raw files:
//
//	pipeline := dataprocessing.NewPipeline(logger, metrics, cfg.Workers)
//	results, err := pipeline.Run(ctx, cfg, transactionFiles, communityFiles)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Individual stages are exported and usable on their own:
//
//	properties, stats := dataprocessing.Deduplicate(records)
//	districts := dataprocessing.AggregateDistricts(records)
//
// # Data Flow
//
//	Raw files → Loader → TransactionRecords → Deduplicate/Match → Absorption, Risk, Districts
//
// # Error Handling
//
// Row-level malformation never fails a run: bad rows are skipped, counted
// and logged. Errors are reserved for environment failures such as an
// unreadable file or a missing required column, and carry the AppError
// taxonomy from internal/errors.
//
// # Concurrency
//
// Raw files load concurrently under an errgroup with a configurable worker
// limit. Per-file cancellation summaries are merged afterwards, which yields
// the same result as aggregating the concatenated input.
package dataprocessing
