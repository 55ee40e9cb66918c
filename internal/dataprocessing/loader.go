package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"lvrcli/internal/cancellation"
	apperrors "lvrcli/internal/errors"
	"lvrcli/pkg/contracts/domain"
)

// Loader reads raw LVR exports into domain records. Per-row malformation is
// never fatal: bad rows are counted and logged, and the rest of the file is
// still returned.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader with the given logger.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger.With(slog.String("component", "loader"))}
}

// TransactionLoadResult carries the records of one transaction file plus the
// row-level diagnostics accumulated while reading it.
type TransactionLoadResult struct {
	File          string
	Records       []domain.TransactionRecord
	SkippedNoCode int // rows without a 備查編號
	MalformedRows int // rows with fewer cells than the header
}

// CommunityLoadResult carries the records of one community file.
type CommunityLoadResult struct {
	File          string
	Records       []domain.CommunityRecord
	SkippedNoCode int
	MalformedRows int
}

// Transaction export column headers. Files from different quarters reorder
// columns, so positions are resolved from the header row of each file.
const (
	colProjectCode  = "備查編號"
	colCity         = "縣市"
	colDistrict     = "行政區"
	colStreet       = "坐落街道"
	colFloor        = "樓層"
	colDate         = "交易日期"
	colYearSeason   = "交易年季"
	colTotalPrice   = "交易總價"
	colUnitPrice    = "建物單價"
	colBuildingUse  = "主要用途"
	colCancellation = "解約情形"

	colCommunityCode = "編號"
	colCommunityName = "社區名稱"
	colTotalUnits    = "戶數"
	colSalesStart    = "銷售起始年季"
)

// LoadTransactions reads one per-transaction CSV export.
func (l *Loader) LoadTransactions(path string) (*TransactionLoadResult, error) {
	rows, err := readCSVRows(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read transaction file %s", filepath.Base(path)), err)
	}
	if len(rows) < 2 {
		l.logger.Warn("transaction file has no data rows", slog.String("file", path))
		return &TransactionLoadResult{File: path}, nil
	}

	columns := mapColumns(rows[0])
	if _, ok := columns[colProjectCode]; !ok {
		return nil, apperrors.NewParsingError(fmt.Sprintf("transaction file %s has no %s column", filepath.Base(path), colProjectCode), nil)
	}

	result := &TransactionLoadResult{File: path}
	for _, row := range rows[1:] {
		cell := cellReader(columns, row)

		code := cell(colProjectCode)
		if code == "" {
			result.SkippedNoCode++
			continue
		}
		if len(row) < len(columns) {
			result.MalformedRows++
		}

		record := domain.TransactionRecord{
			ProjectCode:      code,
			City:             cell(colCity),
			District:         cell(colDistrict),
			Street:           cell(colStreet),
			Floor:            cell(colFloor),
			YearSeason:       cell(colYearSeason),
			TotalPrice:       parseAmount(cell(colTotalPrice)),
			UnitPrice:        parseAmount(cell(colUnitPrice)),
			BuildingUse:      cell(colBuildingUse),
			CancellationText: cell(colCancellation),
		}
		if t, ok := parseDateCell(cell(colDate)); ok {
			record.Date = t
			if record.YearSeason == "" {
				record.YearSeason = cancellation.SeasonOf(t).String()
			}
		}
		result.Records = append(result.Records, record)
	}

	l.logger.Info("transaction file loaded",
		slog.String("file", filepath.Base(path)),
		slog.Int("records", len(result.Records)),
		slog.Int("skipped_no_code", result.SkippedNoCode),
		slog.Int("malformed_rows", result.MalformedRows))

	return result, nil
}

// LoadCommunities reads one community (建案) export. Both CSV and Excel
// exports exist in the archive, dispatched on extension.
func (l *Loader) LoadCommunities(path string) (*CommunityLoadResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return l.loadCommunitiesExcel(path)
	default:
		return l.loadCommunitiesCSV(path)
	}
}

func (l *Loader) loadCommunitiesCSV(path string) (*CommunityLoadResult, error) {
	rows, err := readCSVRows(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read community file %s", filepath.Base(path)), err)
	}
	return l.communitiesFromRows(path, rows)
}

func (l *Loader) loadCommunitiesExcel(path string) (*CommunityLoadResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open community file %s", filepath.Base(path)), err)
	}
	defer f.Close()

	// Sheet names vary between quarterly archives. Pick the first sheet
	// whose header row carries the project code and unit count columns.
	var rows [][]string
	for _, name := range f.GetSheetList() {
		sheetRows, err := f.GetRows(name)
		if err != nil || len(sheetRows) < 2 {
			continue
		}
		header := strings.Join(sheetRows[0], " ")
		if strings.Contains(header, colCommunityCode) && strings.Contains(header, colTotalUnits) {
			rows = sheetRows
			l.logger.Debug("community sheet selected", slog.String("file", filepath.Base(path)), slog.String("sheet", name))
			break
		}
	}
	if rows == nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("no community data sheet in %s", filepath.Base(path)), nil)
	}
	return l.communitiesFromRows(path, rows)
}

func (l *Loader) communitiesFromRows(path string, rows [][]string) (*CommunityLoadResult, error) {
	if len(rows) < 2 {
		l.logger.Warn("community file has no data rows", slog.String("file", path))
		return &CommunityLoadResult{File: path}, nil
	}

	columns := mapColumns(rows[0])
	if _, ok := columns[colCommunityCode]; !ok {
		return nil, apperrors.NewParsingError(fmt.Sprintf("community file %s has no %s column", filepath.Base(path), colCommunityCode), nil)
	}

	result := &CommunityLoadResult{File: path}
	for _, row := range rows[1:] {
		cell := cellReader(columns, row)

		code := cell(colCommunityCode)
		if code == "" {
			result.SkippedNoCode++
			continue
		}
		if len(row) < len(columns) {
			result.MalformedRows++
		}

		units, err := strconv.Atoi(strings.ReplaceAll(cell(colTotalUnits), ",", ""))
		if err != nil {
			units = 0
		}

		result.Records = append(result.Records, domain.CommunityRecord{
			ProjectCode:      code,
			Name:             cell(colCommunityName),
			City:             cell(colCity),
			District:         cell(colDistrict),
			TotalUnits:       units,
			SalesStartSeason: cell(colSalesStart),
		})
	}

	l.logger.Info("community file loaded",
		slog.String("file", filepath.Base(path)),
		slog.Int("records", len(result.Records)),
		slog.Int("skipped_no_code", result.SkippedNoCode))

	return result, nil
}

// readCSVRows reads a whole CSV file, stripping the UTF-8 BOM the LVR portal
// prepends to its exports.
func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// mapColumns resolves header names to column positions.
func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	return columns
}

// cellReader returns a lookup closure that tolerates short rows and missing
// columns, yielding "" instead of panicking.
func cellReader(columns map[string]int, row []string) func(string) string {
	return func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
}

// parseAmount parses a price cell. Exports mix thousand separators into
// numeric cells; unparseable cells degrade to zero.
func parseAmount(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseDateCell parses a transaction date. Quarterly exports carry either an
// ISO date or a 7-digit ROC date (e.g. 1120315).
func parseDateCell(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if len(s) == 7 {
		year, errY := strconv.Atoi(s[:3])
		month, errM := strconv.Atoi(s[3:5])
		day, errD := strconv.Atoi(s[5:7])
		if errY == nil && errM == nil && errD == nil {
			if t, ok := cancellation.FromROC(year, month, day); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
