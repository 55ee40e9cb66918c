package dataprocessing

import (
	"sort"

	"lvrcli/pkg/contracts/domain"
)

// DistrictReport aggregates transactions for one 縣市+行政區 pair. Prices
// are in 萬元; the cancellation rate is a percentage.
type DistrictReport struct {
	City             string  `json:"city"`
	District         string  `json:"district"`
	Transactions     int     `json:"transactions"`
	Cancellations    int     `json:"cancellations"`
	CancellationRate float64 `json:"cancellation_rate"`
	MeanPrice        float64 `json:"mean_price"`
	MedianPrice      float64 `json:"median_price"`
	Projects         int     `json:"projects"`
}

// AggregateDistricts groups transactions by city and district. Records with
// neither city nor district are folded into an "(未知)" bucket rather than
// dropped, so totals stay reconcilable with the input. Results are ordered
// by transaction count descending, then by city+district for stable ties.
func AggregateDistricts(records []domain.TransactionRecord) []DistrictReport {
	type group struct {
		city, district string
		cancellations  int
		prices         []float64
		priceSum       float64
		projects       map[string]bool
	}

	groups := make(map[string]*group)
	for _, r := range records {
		city, district := r.City, r.District
		if city == "" && district == "" {
			city = "(未知)"
		}
		key := city + "\x00" + district

		g, ok := groups[key]
		if !ok {
			g = &group{city: city, district: district, projects: make(map[string]bool)}
			groups[key] = g
		}

		g.prices = append(g.prices, r.TotalPrice)
		g.priceSum += r.TotalPrice
		g.projects[r.ProjectCode] = true
		if r.HasCancellationText() {
			g.cancellations++
		}
	}

	reports := make([]DistrictReport, 0, len(groups))
	for _, g := range groups {
		report := DistrictReport{
			City:          g.city,
			District:      g.district,
			Transactions:  len(g.prices),
			Cancellations: g.cancellations,
			Projects:      len(g.projects),
		}
		if n := len(g.prices); n > 0 {
			report.CancellationRate = round2(float64(g.cancellations) / float64(n) * 100)
			report.MeanPrice = round2(g.priceSum / float64(n))
			report.MedianPrice = round2(median(g.prices))
		}
		reports = append(reports, report)
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].Transactions != reports[j].Transactions {
			return reports[i].Transactions > reports[j].Transactions
		}
		if reports[i].City != reports[j].City {
			return reports[i].City < reports[j].City
		}
		return reports[i].District < reports[j].District
	})

	return reports
}

// TopDistricts returns the first n entries of an already-ranked report.
func TopDistricts(reports []DistrictReport, n int) []DistrictReport {
	if n <= 0 || n >= len(reports) {
		return reports
	}
	return reports[:n]
}

// median mutates its argument's order.
func median(values []float64) float64 {
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}
