package dataprocessing

import (
	"sort"
	"strings"

	"lvrcli/pkg/contracts/domain"
)

// RiskLevel is the bucketed interpretation of a cancellation risk score.
type RiskLevel string

const (
	RiskVeryHigh RiskLevel = "very_high" // score >= 80
	RiskHigh     RiskLevel = "high"      // 65-79
	RiskModerate RiskLevel = "moderate"  // 50-64
	RiskLow      RiskLevel = "low"       // 35-49
	RiskVeryLow  RiskLevel = "very_low"  // < 35
)

// riskLevelOrder fixes the reporting order from most to least risky.
var riskLevelOrder = []RiskLevel{RiskVeryHigh, RiskHigh, RiskModerate, RiskLow, RiskVeryLow}

// RiskScore computes the 0-100 cancellation risk score of a transaction.
// Five weighted factors: total price (max 25), unit price (25), city tier
// (20), recency (15) and building use (10). Prices are in 萬元, unit prices
// in 萬元 per 坪. Higher means likelier to cancel.
func RiskScore(t domain.TransactionRecord) int {
	score := 0

	switch {
	case t.TotalPrice > 8000:
		score += 25
	case t.TotalPrice > 5000:
		score += 20
	case t.TotalPrice > 3000:
		score += 15
	case t.TotalPrice > 1000:
		score += 10
	default:
		score += 5
	}

	switch {
	case t.UnitPrice > 150:
		score += 25
	case t.UnitPrice > 100:
		score += 20
	case t.UnitPrice > 70:
		score += 15
	case t.UnitPrice > 50:
		score += 10
	default:
		score += 5
	}

	switch t.City {
	case "台北市", "新北市":
		score += 20
	case "桃園市", "台中市":
		score += 15
	case "高雄市", "台南市":
		score += 10
	default:
		score += 5
	}

	// Recent deals carry more cancellation exposure: the buyer still has
	// years of progress payments ahead.
	if season, ok := recordSeason(t); ok {
		switch {
		case season.Year >= 112:
			score += 15
		case season.Year >= 111:
			score += 10
		default:
			score += 5
		}
	}

	if strings.Contains(t.BuildingUse, "住宅") {
		score += 10
	} else {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

// ClassifyRisk maps a score to its risk level.
func ClassifyRisk(score int) RiskLevel {
	switch {
	case score >= 80:
		return RiskVeryHigh
	case score >= 65:
		return RiskHigh
	case score >= 50:
		return RiskModerate
	case score >= 35:
		return RiskLow
	default:
		return RiskVeryLow
	}
}

// RiskLevelStats holds the observed outcome for one risk level, used to
// validate that higher predicted risk really does cancel more often.
type RiskLevelStats struct {
	Level            RiskLevel `json:"level"`
	Transactions     int       `json:"transactions"`
	Cancelled        int       `json:"cancelled"`
	CancellationRate float64   `json:"cancellation_rate"`
	MeanScore        float64   `json:"mean_score"`
}

// RiskReport is the full risk model output over one dataset.
type RiskReport struct {
	Transactions int              `json:"transactions"`
	MeanScore    float64          `json:"mean_score"`
	Levels       []RiskLevelStats `json:"levels"`
}

// AssessRisk scores every transaction and reports the per-level observed
// cancellation rates. Levels are ordered from very_high down to very_low;
// levels with no transactions are still present with zero counts.
func AssessRisk(records []domain.TransactionRecord) RiskReport {
	type bucket struct {
		count     int
		cancelled int
		scoreSum  int
	}
	buckets := make(map[RiskLevel]*bucket, len(riskLevelOrder))
	for _, level := range riskLevelOrder {
		buckets[level] = &bucket{}
	}

	totalScore := 0
	for _, r := range records {
		score := RiskScore(r)
		totalScore += score

		b := buckets[ClassifyRisk(score)]
		b.count++
		b.scoreSum += score
		if r.HasCancellationText() {
			b.cancelled++
		}
	}

	report := RiskReport{Transactions: len(records)}
	if len(records) > 0 {
		report.MeanScore = round2(float64(totalScore) / float64(len(records)))
	}

	for _, level := range riskLevelOrder {
		b := buckets[level]
		stats := RiskLevelStats{
			Level:        level,
			Transactions: b.count,
			Cancelled:    b.cancelled,
		}
		if b.count > 0 {
			stats.CancellationRate = round2(float64(b.cancelled) / float64(b.count) * 100)
			stats.MeanScore = round2(float64(b.scoreSum) / float64(b.count))
		}
		report.Levels = append(report.Levels, stats)
	}

	return report
}

// Monotonic reports whether observed cancellation rates fall with the level
// order. A healthy model predicts more cancellations at higher levels.
func (r RiskReport) Monotonic() bool {
	var present []RiskLevelStats
	for _, l := range r.Levels {
		if l.Transactions > 0 {
			present = append(present, l)
		}
	}
	return sort.SliceIsSorted(present, func(i, j int) bool {
		return present[i].CancellationRate > present[j].CancellationRate
	})
}
