package dataprocessing

import (
	"sort"

	"lvrcli/internal/cancellation"
)

// CommunityReport is the integrated per-project row combining registration
// data, transaction volume, cancellation history, absorption and momentum
// figures for one target season. It is the community-level export analysts
// read instead of the individual reports.
type CommunityReport struct {
	ProjectCode      string `json:"project_code"`
	ProjectName      string `json:"project_name"`
	City             string `json:"city"`
	District         string `json:"district"`
	Street           string `json:"street"`
	TotalUnits       int    `json:"total_units"`
	SalesStartSeason string `json:"sales_start_season"`

	TargetSeason    string `json:"target_season"`
	SalesSeasons    int    `json:"sales_seasons"`
	CumulativeValid int    `json:"cumulative_transactions"`
	SeasonValid     int    `json:"quarterly_transactions"`

	CumulativeCancellations    int     `json:"cumulative_cancellations"`
	SeasonCancellations        int     `json:"quarterly_cancellations"`
	QuarterlyCancellationRate  float64 `json:"quarterly_cancellation_rate"`
	CumulativeCancellationRate float64 `json:"cumulative_cancellation_rate"`
	LatestCancellationSeason   string  `json:"latest_cancellation_season,omitempty"`
	NoCancellationStreak       int     `json:"consecutive_no_cancellation_seasons"`

	GrossRate float64 `json:"gross_rate"`
	NetRate   float64 `json:"net_rate"`

	QuarterlySpeed   float64 `json:"quarterly_speed"`
	Acceleration     float64 `json:"acceleration"`
	EstimatedSeasons int     `json:"estimated_completion_seasons"`
	EfficiencyGrade  string  `json:"efficiency_grade"`

	AvgUnitPrice  float64 `json:"avg_unit_price"`
	AvgTotalPrice float64 `json:"avg_total_price"`

	Status string `json:"status"`
}

// cancellationSeason resolves the quarter a cancellation belongs to,
// preferring the parsed cancellation date over the transaction's season. A
// cancellation registered quarters after the sale should count against the
// quarter it happened in, not the quarter of the original deal.
func cancellationSeason(m MatchedTransaction) (cancellation.YearSeason, bool) {
	event := cancellation.Parse(m.Transaction.CancellationText)
	if event.Date != nil {
		return cancellation.SeasonOf(*event.Date), true
	}
	return recordSeason(m.Transaction)
}

// BuildCommunityReports joins the matched transactions with the absorption
// and dynamics results into one row per project. Every project in the
// absorption report gets a row; transaction counts and prices only include
// records whose season resolves to the target season or earlier.
func BuildCommunityReports(matched []MatchedTransaction, rates []AbsorptionRate, dynamics []ProjectDynamics, target cancellation.YearSeason) []CommunityReport {
	type detail struct {
		street          string
		startSeason     string
		seasonValid     int
		seasonCancelled int
		seasonTotal     int
		latestCancel    cancellation.YearSeason
		hasCancel       bool
		priceSum        float64
		priceCount      int
		totalPriceSum   float64
		totalPriceCount int
	}

	details := make(map[string]*detail)
	for _, m := range matched {
		d, ok := details[m.Community.ProjectCode]
		if !ok {
			d = &detail{startSeason: m.Community.SalesStartSeason}
			details[m.Community.ProjectCode] = d
		}
		if d.street == "" {
			d.street = m.Transaction.Street
		}

		season, ok := recordSeason(m.Transaction)
		if !ok || target.Before(season) {
			continue
		}

		if season == target {
			d.seasonTotal++
		}
		if m.Transaction.HasCancellationText() {
			if season == target {
				d.seasonCancelled++
			}
			if cs, ok := cancellationSeason(m); ok && !target.Before(cs) {
				if !d.hasCancel || d.latestCancel.Before(cs) {
					d.latestCancel = cs
					d.hasCancel = true
				}
			}
			continue
		}

		if season == target {
			d.seasonValid++
		}
		if m.Transaction.UnitPrice > 0 {
			d.priceSum += m.Transaction.UnitPrice
			d.priceCount++
		}
		if m.Transaction.TotalPrice > 0 {
			d.totalPriceSum += m.Transaction.TotalPrice
			d.totalPriceCount++
		}
	}

	dynamicsByCode := make(map[string]ProjectDynamics, len(dynamics))
	for _, d := range dynamics {
		dynamicsByCode[d.ProjectCode] = d
	}

	reports := make([]CommunityReport, 0, len(rates))
	for _, rate := range rates {
		report := CommunityReport{
			ProjectCode:  rate.ProjectCode,
			ProjectName:  rate.ProjectName,
			City:         rate.City,
			District:     rate.District,
			TotalUnits:   rate.TotalUnits,
			TargetSeason: rate.TargetSeason,

			CumulativeValid:         rate.Valid,
			CumulativeCancellations: rate.Cancelled,
			GrossRate:               rate.GrossRate,
			NetRate:                 rate.NetRate,
			Status:                  rate.Status,
		}

		dyn := dynamicsByCode[rate.ProjectCode]
		report.SalesSeasons = dyn.SalesSeasons
		report.QuarterlySpeed = dyn.QuarterlySpeed
		report.Acceleration = dyn.Acceleration
		report.EstimatedSeasons = dyn.EstimatedSeasons
		report.EfficiencyGrade = dyn.EfficiencyGrade

		if d, ok := details[rate.ProjectCode]; ok {
			report.Street = d.street
			report.SalesStartSeason = d.startSeason
			report.SeasonValid = d.seasonValid
			report.SeasonCancellations = d.seasonCancelled

			if d.seasonTotal > 0 {
				report.QuarterlyCancellationRate = round2(float64(d.seasonCancelled) / float64(d.seasonTotal) * 100)
			}
			if total := rate.Valid + rate.Cancelled; total > 0 {
				report.CumulativeCancellationRate = round2(float64(rate.Cancelled) / float64(total) * 100)
			}

			if d.hasCancel {
				report.LatestCancellationSeason = d.latestCancel.String()
				report.NoCancellationStreak = len(cancellation.SeasonRange(d.latestCancel.Next(), target))
			} else {
				report.NoCancellationStreak = dyn.SalesSeasons
			}

			if d.priceCount > 0 {
				report.AvgUnitPrice = round2(d.priceSum / float64(d.priceCount))
			}
			if d.totalPriceCount > 0 {
				report.AvgTotalPrice = round2(d.totalPriceSum / float64(d.totalPriceCount))
			}
		}

		reports = append(reports, report)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].ProjectCode < reports[j].ProjectCode
	})
	return reports
}
