package dataprocessing

import (
	"math"
	"sort"

	"lvrcli/internal/cancellation"
	"lvrcli/pkg/contracts/domain"
)

// Absorption calculation outcomes. Projects without usable unit counts are
// reported rather than silently dropped, so the report always accounts for
// every active project.
const (
	AbsorptionOK           = "ok"
	AbsorptionInvalidUnits = "invalid_units"
)

// AbsorptionRate is the per-project absorption figure for one target season.
// Rates are percentages of total units, rounded to two decimals.
type AbsorptionRate struct {
	ProjectCode  string  `json:"project_code"`
	ProjectName  string  `json:"project_name"`
	City         string  `json:"city"`
	District     string  `json:"district"`
	TargetSeason string  `json:"target_season"`
	TotalUnits   int     `json:"total_units"`
	Valid        int     `json:"cumulative_valid"`
	Cancelled    int     `json:"cumulative_cancelled"`
	GrossRate    float64 `json:"gross_rate"`
	NetRate      float64 `json:"net_rate"`
	Status       string  `json:"status"`
}

// recordSeason resolves the season a transaction belongs to, preferring the
// explicit 交易年季 column over the transaction date.
func recordSeason(t domain.TransactionRecord) (cancellation.YearSeason, bool) {
	if ys, err := cancellation.ParseYearSeason(t.YearSeason); err == nil {
		return ys, true
	}
	if !t.Date.IsZero() {
		return cancellation.SeasonOf(t.Date), true
	}
	return cancellation.YearSeason{}, false
}

// ComputeAbsorption calculates gross and net absorption per project as of
// the target season:
//
//	gross = cumulative valid transactions / total units
//	net   = (cumulative valid - cumulative cancelled) / total units
//
// Transactions whose season cannot be resolved are excluded from the
// cumulative counts. Results are ordered by project code.
func ComputeAbsorption(matched []MatchedTransaction, target cancellation.YearSeason) []AbsorptionRate {
	type tally struct {
		community domain.CommunityRecord
		valid     int
		cancelled int
	}

	tallies := make(map[string]*tally)
	for _, m := range matched {
		t, ok := tallies[m.Community.ProjectCode]
		if !ok {
			t = &tally{community: m.Community}
			tallies[m.Community.ProjectCode] = t
		}

		season, ok := recordSeason(m.Transaction)
		if !ok || target.Before(season) {
			continue
		}
		if m.Transaction.HasCancellationText() {
			t.cancelled++
		} else {
			t.valid++
		}
	}

	rates := make([]AbsorptionRate, 0, len(tallies))
	for code, t := range tallies {
		rate := AbsorptionRate{
			ProjectCode:  code,
			ProjectName:  t.community.Name,
			City:         t.community.City,
			District:     t.community.District,
			TargetSeason: target.String(),
			TotalUnits:   t.community.TotalUnits,
			Valid:        t.valid,
			Cancelled:    t.cancelled,
			Status:       AbsorptionOK,
		}
		if t.community.TotalUnits <= 0 {
			rate.Status = AbsorptionInvalidUnits
		} else {
			units := float64(t.community.TotalUnits)
			rate.GrossRate = round2(float64(t.valid) / units * 100)
			rate.NetRate = round2(float64(t.valid-t.cancelled) / units * 100)
		}
		rates = append(rates, rate)
	}

	sort.Slice(rates, func(i, j int) bool {
		return rates[i].ProjectCode < rates[j].ProjectCode
	})

	return rates
}

// AbsorptionGrade buckets a gross absorption rate the way market reports
// read it: 70% and up sells well, under 30% is stalling.
func AbsorptionGrade(grossRate float64) string {
	switch {
	case grossRate >= 70:
		return "high"
	case grossRate >= 30:
		return "medium"
	default:
		return "low"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
