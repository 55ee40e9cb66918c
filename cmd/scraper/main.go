package main

import (
	"archive/zip"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"lvrcli/internal/config"
	"lvrcli/internal/infrastructure"
)

// The open-data portal serves one ZIP archive per year-season. Pre-sale
// transaction files inside the archive are named <city>_lvr_land_b.csv.
var presaleEntry = regexp.MustCompile(`_lvr_land_b\.csv$`)

// Season tokens on the portal look like 113S2 (ROC year, season 1-4).
var seasonToken = regexp.MustCompile(`^(\d{3})S([1-4])$`)

func main() {
	os.Exit(run())
}

func run() int {
	seasonsFlag := flag.String("seasons", "", "comma-separated season tokens to fetch, e.g. 112S4,113S1 (defaults to all published)")
	outDir := flag.String("out", "", "directory to save extracted CSV files (defaults to data/raw relative to executable)")
	headless := flag.Bool("headless", true, "run browser headless")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	if !*headless {
		cfg.Scraper.Headless = false
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
	if *outDir == "" {
		*outDir = paths.RawDir
	}

	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = paths.GetLogPath("scraper.log")
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	logger.Info("Starting LVR archive scraper",
		slog.String("base_url", cfg.Scraper.BaseURL),
		slog.String("output_dir", *outDir),
		slog.Bool("headless", cfg.Scraper.Headless),
		slog.Duration("timeout", cfg.Scraper.Timeout))

	var wanted []string
	for _, s := range strings.Split(*seasonsFlag, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !seasonToken.MatchString(s) {
			logger.Error("Invalid season token", slog.String("season", s))
			fmt.Printf("Error: invalid season token %q (expected e.g. 113S2)\n", s)
			return 1
		}
		wanted = append(wanted, s)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Scraper.Headless))
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	ctx, cancelTimeout := context.WithTimeout(ctx, cfg.Scraper.Timeout)
	defer cancelTimeout()

	seasons := wanted
	if len(seasons) == 0 {
		seasons, err = discoverSeasons(ctx, cfg.Scraper.BaseURL, logger)
		if err != nil {
			logger.Error("Failed to discover published seasons", slog.String("error", err.Error()))
			return 1
		}
	}
	logger.Info("Seasons to fetch", slog.Int("count", len(seasons)))
	fmt.Printf("Fetching %d seasons\n", len(seasons))

	downloaded := 0
	for _, season := range seasons {
		select {
		case <-ctx.Done():
			logger.Error("Scrape cancelled", slog.String("error", ctx.Err().Error()))
			return 1
		default:
		}

		n, err := fetchSeason(ctx, cfg.Scraper.BaseURL, season, *outDir, logger)
		if err != nil {
			logger.Error("Failed to fetch season",
				slog.String("season", season),
				slog.String("error", err.Error()))
			continue
		}
		downloaded += n

		// Be polite to the portal between archive downloads.
		select {
		case <-time.After(500 * time.Millisecond):
		case <-ctx.Done():
		}
	}

	logger.Info("Scraper finished",
		slog.Int("seasons", len(seasons)),
		slog.Int("files_extracted", downloaded))
	fmt.Printf("Extracted %d pre-sale CSV files to %s\n", downloaded, *outDir)
	return 0
}

// discoverSeasons drives the download page and reads the season selector.
// The portal renders the selector with JavaScript, so a plain GET is not
// enough.
func discoverSeasons(ctx context.Context, baseURL string, logger *slog.Logger) ([]string, error) {
	var tokens []string
	js := `Array.from(document.querySelectorAll('select[name=season] option, #historySeason_id option'))
		.map(o => o.value.trim())
		.filter(v => /^\d{3}S[1-4]$/.test(v))`

	err := chromedp.Run(ctx,
		chromedp.Navigate(baseURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(js, &tokens),
	)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(tokens))
	var seasons []string
	for _, tok := range tokens {
		if !seen[tok] {
			seen[tok] = true
			seasons = append(seasons, tok)
		}
	}
	logger.Info("Discovered published seasons", slog.Int("count", len(seasons)))
	return seasons, nil
}

// fetchSeason downloads one quarterly archive and extracts its pre-sale
// transaction CSVs into outDir. Already extracted files are skipped.
func fetchSeason(ctx context.Context, baseURL, season, outDir string, logger *slog.Logger) (int, error) {
	url := fmt.Sprintf("%s?fileName=lvr_landcsv.zip&type=zip&season=%s", baseURL, season)

	tmp, err := os.CreateTemp("", "lvr_landcsv_*.zip")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	logger.Info("Downloading archive", slog.String("season", season), slog.String("url", url))
	if err := downloadFile(ctx, url, tmp); err != nil {
		return 0, fmt.Errorf("download %s: %w", season, err)
	}

	return extractPresaleCSVs(tmp.Name(), outDir, season, logger)
}

func downloadFile(ctx context.Context, url string, dst *os.File) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		return err
	}
	return dst.Sync()
}

func extractPresaleCSVs(zipPath, outDir, season string, logger *slog.Logger) (int, error) {
	archive, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer archive.Close()

	extracted := 0
	for _, entry := range archive.File {
		name := filepath.Base(entry.Name)
		if !presaleEntry.MatchString(name) {
			continue
		}

		destName := fmt.Sprintf("lvr_presale_%s_%s", seasonFileTag(season), name)
		destPath := filepath.Join(outDir, destName)
		if _, err := os.Stat(destPath); err == nil {
			logger.Debug("File already exists, skipping", slog.String("file", destName))
			continue
		}

		if err := extractEntry(entry, destPath); err != nil {
			logger.Warn("Failed to extract entry",
				slog.String("entry", entry.Name),
				slog.String("error", err.Error()))
			continue
		}
		logger.Info("Extracted pre-sale CSV",
			slog.String("season", season),
			slog.String("file", destName))
		extracted++
	}
	return extracted, nil
}

func extractEntry(entry *zip.File, destPath string) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(destPath)
		return err
	}
	return dst.Close()
}

// seasonFileTag converts a portal token like 113S2 into the 113Y2S form
// used everywhere else in the generated file names.
func seasonFileTag(season string) string {
	m := seasonToken.FindStringSubmatch(season)
	if m == nil {
		return season
	}
	return fmt.Sprintf("%sY%sS", m[1], m[2])
}
