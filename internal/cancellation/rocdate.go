package cancellation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// rocEpochOffset converts between ROC (民國) and Gregorian calendar years.
// ROC year 1 is 1912, so Gregorian = ROC + 1911.
const rocEpochOffset = 1911

// FromROC converts a ROC calendar date to its Gregorian equivalent.
// It reports false for impossible dates (month 13, Feb 30 and the like);
// callers treat those the same as a missing date.
func FromROC(year, month, day int) (time.Time, bool) {
	if year <= 0 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year+rocEpochOffset, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 becomes Mar 1/2), so round-trip
	// the components to catch it.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

// YearSeason identifies a ROC calendar quarter, e.g. 112Y3S is the third
// quarter of ROC year 112 (2023). It is the granularity the LVR exports
// use for transaction periods and sales launch dates.
type YearSeason struct {
	Year   int // ROC year
	Season int // 1..4
}

// ParseYearSeason parses the "112Y3S" form used across the exports.
func ParseYearSeason(s string) (YearSeason, error) {
	s = strings.TrimSpace(s)
	yi := strings.IndexByte(s, 'Y')
	if yi <= 0 || !strings.HasSuffix(s, "S") || len(s) != yi+3 {
		return YearSeason{}, fmt.Errorf("invalid year-season %q", s)
	}
	year, err := strconv.Atoi(s[:yi])
	if err != nil {
		return YearSeason{}, fmt.Errorf("invalid year-season %q", s)
	}
	season := int(s[yi+1] - '0')
	if season < 1 || season > 4 {
		return YearSeason{}, fmt.Errorf("invalid season in %q", s)
	}
	return YearSeason{Year: year, Season: season}, nil
}

// SeasonOf returns the ROC quarter containing t.
func SeasonOf(t time.Time) YearSeason {
	return YearSeason{
		Year:   t.Year() - rocEpochOffset,
		Season: (int(t.Month())-1)/3 + 1,
	}
}

// String formats the season as "112Y3S".
func (ys YearSeason) String() string {
	return fmt.Sprintf("%dY%dS", ys.Year, ys.Season)
}

// Number returns a totally ordered integer encoding (year*10 + season),
// convenient for sorting and range comparisons.
func (ys YearSeason) Number() int {
	return ys.Year*10 + ys.Season
}

// Before reports whether ys precedes other chronologically.
func (ys YearSeason) Before(other YearSeason) bool {
	return ys.Number() < other.Number()
}

// Next returns the following quarter, rolling the year at 4S.
func (ys YearSeason) Next() YearSeason {
	if ys.Season >= 4 {
		return YearSeason{Year: ys.Year + 1, Season: 1}
	}
	return YearSeason{Year: ys.Year, Season: ys.Season + 1}
}

// SeasonRange returns every quarter from start to end inclusive. An empty
// slice is returned when start is after end.
func SeasonRange(start, end YearSeason) []YearSeason {
	var out []YearSeason
	for cur := start; !end.Before(cur); cur = cur.Next() {
		out = append(out, cur)
	}
	return out
}
