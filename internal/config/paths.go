package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	DataDir       string
	RawDir        string
	ProcessedDir  string
	ReportsDir    string
	LogsDir       string

	// Well-known report files
	CancellationSummaryJSON string
	CancellationSummaryCSV  string
	CancellationDetailCSV   string
	AbsorptionJSON          string
	AbsorptionCSV           string
	DynamicsJSON            string
	DynamicsCSV             string
	CommunityReportJSON     string
	CommunityReportCSV      string
	RiskJSON                string
	RiskCSV                 string
	DistrictsJSON           string
	DistrictsCSV            string
	DedupStatsCSV           string
	ValidTransactionsCSV    string
}

// GetPaths returns the application paths relative to the executable location
// All paths are ALWAYS relative to the executable directory, never the current working directory
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	exeDir := filepath.Dir(exe)

	// Directory structure:
	// dist/
	//   ├── data/
	//   │   ├── raw/         (CSV/XLSX exports from scraper or manual download)
	//   │   ├── processed/   (Deduplicated and matched datasets)
	//   │   └── reports/     (Generated CSV/JSON reports)
	//   └── logs/            (Application logs)

	dataDir := filepath.Join(exeDir, "data")
	reportsDir := filepath.Join(dataDir, "reports")

	paths := &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		RawDir:        filepath.Join(dataDir, "raw"),
		ProcessedDir:  filepath.Join(dataDir, "processed"),
		ReportsDir:    reportsDir,
		LogsDir:       filepath.Join(exeDir, "logs"),

		CancellationSummaryJSON: filepath.Join(reportsDir, "cancellation_summary.json"),
		CancellationSummaryCSV:  filepath.Join(reportsDir, "cancellation_summary.csv"),
		CancellationDetailCSV:   filepath.Join(reportsDir, "cancellation_detail.csv"),
		AbsorptionJSON:          filepath.Join(reportsDir, "absorption_rates.json"),
		AbsorptionCSV:           filepath.Join(reportsDir, "absorption_rates.csv"),
		DynamicsJSON:            filepath.Join(reportsDir, "absorption_dynamics.json"),
		DynamicsCSV:             filepath.Join(reportsDir, "absorption_dynamics.csv"),
		CommunityReportJSON:     filepath.Join(reportsDir, "community_report.json"),
		CommunityReportCSV:      filepath.Join(reportsDir, "community_report.csv"),
		RiskJSON:                filepath.Join(reportsDir, "risk_scores.json"),
		RiskCSV:                 filepath.Join(reportsDir, "risk_scores.csv"),
		DistrictsJSON:           filepath.Join(reportsDir, "district_stats.json"),
		DistrictsCSV:            filepath.Join(reportsDir, "district_stats.csv"),
		DedupStatsCSV:           filepath.Join(reportsDir, "dedup_stats.csv"),
		ValidTransactionsCSV:    filepath.Join(dataDir, "processed", "valid_transactions.csv"),
	}

	return paths, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.RawDir,
		p.ProcessedDir,
		p.ReportsDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// GetRelativePath returns a path relative to the executable directory
func (p *Paths) GetRelativePath(subpath string) string {
	return filepath.Join(p.ExecutableDir, subpath)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetRawPath returns the path for a raw input file
func (p *Paths) GetRawPath(filename string) string {
	return filepath.Join(p.RawDir, filename)
}

// GetProcessedPath returns the path for a processed dataset file
func (p *Paths) GetProcessedPath(filename string) string {
	return filepath.Join(p.ProcessedDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// RawTransactionFiles returns the raw transaction exports matching the glob.
func (p *Paths) RawTransactionFiles(glob string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(p.RawDir, glob))
	if err != nil {
		return nil, fmt.Errorf("bad transaction glob %q: %w", glob, err)
	}
	return matches, nil
}

// RawCommunityFiles returns the raw community exports matching the glob.
func (p *Paths) RawCommunityFiles(glob string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(p.RawDir, glob))
	if err != nil {
		return nil, fmt.Errorf("bad community glob %q: %w", glob, err)
	}
	return matches, nil
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("raw", p.RawDir),
			slog.String("processed", p.ProcessedDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("report_files",
			slog.String("cancellation_summary_json", p.CancellationSummaryJSON),
			slog.String("absorption_json", p.AbsorptionJSON),
			slog.String("risk_json", p.RiskJSON),
			slog.String("districts_json", p.DistrictsJSON),
		))
}
