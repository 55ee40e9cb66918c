package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"lvrcli/internal/cancellation"
	"lvrcli/internal/config"
	apperrors "lvrcli/internal/errors"
	"lvrcli/internal/infrastructure"
	"lvrcli/pkg/contracts/domain"
)

// Pipeline runs the full analysis pass: load raw files, fold cancellation
// events into the summary, resolve duplicates, join community data and
// derive the absorption, risk and district reports.
type Pipeline struct {
	loader  *Loader
	logger  *slog.Logger
	metrics *infrastructure.Metrics
	workers int
}

// NewPipeline creates a pipeline. metrics may be nil for one-off runs that
// do not expose a registry.
func NewPipeline(logger *slog.Logger, metrics *infrastructure.Metrics, workers int) *Pipeline {
	if workers <= 0 {
		workers = 4
	}
	return &Pipeline{
		loader:  NewLoader(logger),
		logger:  logger.With(slog.String("component", "pipeline")),
		metrics: metrics,
		workers: workers,
	}
}

// Results carries every artifact of one pipeline run.
type Results struct {
	Transactions []domain.TransactionRecord
	Communities  []domain.CommunityRecord

	CancellationSummary cancellation.Summary
	Events              []cancellation.Event

	Properties []PropertyRecord
	DedupStats DedupStats

	Matching         MatchResult
	Absorption       []AbsorptionRate
	Dynamics         []ProjectDynamics
	CommunityReports []CommunityReport
	Risk             RiskReport
	Districts        []DistrictReport

	// TopDistricts caps the exported district ranking, taken from the
	// processor configuration.
	TopDistricts int

	SkippedNoCode int
	Elapsed       time.Duration
}

// Run executes the pipeline over the given raw files. Transaction files are
// loaded concurrently; each file's events are aggregated independently and
// the per-file summaries merged, which is equivalent to aggregating the
// concatenated input.
func (p *Pipeline) Run(ctx context.Context, cfg config.ProcessorConfig, transactionFiles, communityFiles []string) (*Results, error) {
	start := time.Now()

	if len(transactionFiles) == 0 {
		return nil, apperrors.NewNotFoundError("raw transaction files")
	}

	p.logger.InfoContext(ctx, "pipeline started",
		slog.Int("transaction_files", len(transactionFiles)),
		slog.Int("community_files", len(communityFiles)),
		slog.Int("workers", p.workers))

	results := &Results{}

	type fileOutcome struct {
		load    *TransactionLoadResult
		events  []cancellation.Event
		summary cancellation.Summary
	}

	outcomes := make([]fileOutcome, len(transactionFiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, path := range transactionFiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			load, err := p.loader.LoadTransactions(path)
			if err != nil {
				return err
			}
			events := make([]cancellation.Event, len(load.Records))
			for j, r := range load.Records {
				events[j] = cancellation.Parse(r.CancellationText)
			}
			outcomes[i] = fileOutcome{
				load:    load,
				events:  events,
				summary: cancellation.Aggregate(events),
			}
			return nil
		})
	}

	communities := make([][]domain.CommunityRecord, len(communityFiles))
	for i, path := range communityFiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			load, err := p.loader.LoadCommunities(path)
			if err != nil {
				return err
			}
			communities[i] = load.Records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, o := range outcomes {
		results.Transactions = append(results.Transactions, o.load.Records...)
		results.Events = append(results.Events, o.events...)
		results.CancellationSummary = results.CancellationSummary.Merge(o.summary)
		results.SkippedNoCode += o.load.SkippedNoCode
	}
	for _, recs := range communities {
		results.Communities = append(results.Communities, recs...)
	}

	if p.metrics != nil {
		p.metrics.RecordsProcessed.WithLabelValues("transactions").Add(float64(len(results.Transactions)))
		p.metrics.RecordsProcessed.WithLabelValues("communities").Add(float64(len(results.Communities)))
		p.metrics.MalformedRows.Add(float64(results.SkippedNoCode))
	}

	results.Properties, results.DedupStats = Deduplicate(results.Transactions)
	results.Matching = Match(results.Transactions, results.Communities)
	results.Risk = AssessRisk(results.Transactions)
	results.Districts = AggregateDistricts(results.Transactions)
	results.TopDistricts = cfg.TopDistricts

	target, err := p.targetSeason(cfg, results.Transactions)
	if err != nil {
		return nil, err
	}
	results.Absorption = ComputeAbsorption(results.Matching.Matched, target)
	results.Dynamics = ComputeDynamics(results.Matching.Matched, target)
	results.CommunityReports = BuildCommunityReports(results.Matching.Matched, results.Absorption, results.Dynamics, target)

	results.Elapsed = time.Since(start)
	if p.metrics != nil {
		p.metrics.PipelineDuration.Observe(results.Elapsed.Seconds())
	}

	p.logger.InfoContext(ctx, "pipeline finished",
		slog.Int("transactions", len(results.Transactions)),
		slog.Int("communities", len(results.Communities)),
		slog.Int("properties", results.DedupStats.UniqueProperties),
		slog.Int("cancelled", results.CancellationSummary.Cancelled),
		slog.Float64("cancellation_rate", results.CancellationSummary.CancellationRate),
		slog.String("target_season", target.String()),
		slog.Duration("elapsed", results.Elapsed))

	return results, nil
}

// targetSeason resolves the absorption cutoff: the configured season when
// set, otherwise the latest season observed in the data.
func (p *Pipeline) targetSeason(cfg config.ProcessorConfig, records []domain.TransactionRecord) (cancellation.YearSeason, error) {
	if cfg.TargetSeason != "" {
		ys, err := cancellation.ParseYearSeason(cfg.TargetSeason)
		if err != nil {
			return cancellation.YearSeason{}, apperrors.NewConfigError("invalid target season", err)
		}
		return ys, nil
	}

	var latest cancellation.YearSeason
	for _, r := range records {
		if season, ok := recordSeason(r); ok && latest.Before(season) {
			latest = season
		}
	}
	if latest == (cancellation.YearSeason{}) {
		latest = cancellation.SeasonOf(time.Now())
	}
	return latest, nil
}
