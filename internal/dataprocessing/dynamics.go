package dataprocessing

import (
	"math"
	"sort"

	"lvrcli/internal/cancellation"
	"lvrcli/pkg/contracts/domain"
)

// Acceleration statuses compare the target quarter's absorption speed with
// the previous quarter's.
const (
	AccelInitial       = "initial"
	AccelRestart       = "restart"
	AccelStagnant      = "stagnant"
	AccelStrongUp      = "strong_acceleration"
	AccelUp            = "acceleration"
	AccelStable        = "stable"
	AccelDown          = "deceleration"
	AccelStrongDown    = "strong_deceleration"
	accelRestartMarker = 999.0
)

// Completion projection statuses. unpredictableSeasons marks projects whose
// current quarter moved no units, so no horizon can be projected.
const (
	CompletionDone          = "completed"
	CompletionFast          = "fast_completion"
	CompletionNormal        = "normal_completion"
	CompletionSlow          = "slow_completion"
	CompletionLongTerm      = "long_term_sales"
	CompletionUnpredictable = "unpredictable"
	unpredictableSeasons    = 999
)

// Efficiency grades on the 100-point composite score.
const (
	GradeExcellent = "excellent"
	GradeGood      = "good"
	GradeAverage   = "average"
	GradePoor      = "poor"
)

// ProjectDynamics is the per-project sales momentum report for one target
// season: quarterly speed, quarter-over-quarter acceleration, projected
// sell-out horizon and the composite efficiency grade.
type ProjectDynamics struct {
	ProjectCode  string `json:"project_code"`
	ProjectName  string `json:"project_name"`
	City         string `json:"city"`
	District     string `json:"district"`
	TargetSeason string `json:"target_season"`
	TotalUnits   int    `json:"total_units"`
	SalesSeasons int    `json:"sales_seasons"`

	QuarterlySpeed     float64 `json:"quarterly_speed"`
	Acceleration       float64 `json:"acceleration"`
	AccelerationStatus string  `json:"acceleration_status"`

	EstimatedSeasons int    `json:"estimated_completion_seasons"`
	CompletionStatus string `json:"completion_status"`
	ProjectedSellout string `json:"projected_sellout_season,omitempty"`

	EfficiencyScore float64 `json:"efficiency_score"`
	AbsorptionScore float64 `json:"absorption_score"`
	SpeedScore      float64 `json:"speed_score"`
	CompletionScore float64 `json:"completion_score"`
	TimeScore       float64 `json:"time_score"`
	EfficiencyGrade string  `json:"efficiency_grade"`

	Status string `json:"status"`
}

// seasonTally is one project's transaction counts bucketed by quarter.
type seasonTally struct {
	community domain.CommunityRecord
	valid     map[int]int // YearSeason.Number() -> count
	cancelled map[int]int
	earliest  cancellation.YearSeason
	hasRecord bool
}

// ComputeDynamics derives the absorption momentum report from the matched
// transactions as of the target season. The sales window for each project
// starts at its registered 銷售起始年季, or at its first observed transaction
// quarter when the registration is missing or later than the data.
func ComputeDynamics(matched []MatchedTransaction, target cancellation.YearSeason) []ProjectDynamics {
	tallies := make(map[string]*seasonTally)
	for _, m := range matched {
		t, ok := tallies[m.Community.ProjectCode]
		if !ok {
			t = &seasonTally{
				community: m.Community,
				valid:     make(map[int]int),
				cancelled: make(map[int]int),
			}
			tallies[m.Community.ProjectCode] = t
		}

		season, ok := recordSeason(m.Transaction)
		if !ok || target.Before(season) {
			continue
		}
		if !t.hasRecord || season.Before(t.earliest) {
			t.earliest = season
			t.hasRecord = true
		}
		if m.Transaction.HasCancellationText() {
			t.cancelled[season.Number()]++
		} else {
			t.valid[season.Number()]++
		}
	}

	out := make([]ProjectDynamics, 0, len(tallies))
	for code, t := range tallies {
		d := ProjectDynamics{
			ProjectCode:  code,
			ProjectName:  t.community.Name,
			City:         t.community.City,
			District:     t.community.District,
			TargetSeason: target.String(),
			TotalUnits:   t.community.TotalUnits,
			Status:       AbsorptionOK,
		}
		if t.community.TotalUnits <= 0 {
			d.Status = AbsorptionInvalidUnits
			out = append(out, d)
			continue
		}

		seasons := cancellation.SeasonRange(t.salesStart(target), target)
		if len(seasons) == 0 {
			seasons = []cancellation.YearSeason{target}
		}
		d.SalesSeasons = len(seasons)

		speeds := t.quarterlySpeeds(seasons)
		current := speeds[len(speeds)-1]
		d.QuarterlySpeed = round2(current)

		d.Acceleration, d.AccelerationStatus = acceleration(speeds)

		netRate := t.netRateAt(target)
		d.EstimatedSeasons, d.CompletionStatus = estimateCompletion(netRate, current, float64(t.community.TotalUnits))
		if d.EstimatedSeasons > 0 && d.EstimatedSeasons < unpredictableSeasons {
			sellout := target
			for i := 0; i < d.EstimatedSeasons; i++ {
				sellout = sellout.Next()
			}
			d.ProjectedSellout = sellout.String()
		}

		d.AbsorptionScore, d.SpeedScore, d.CompletionScore, d.TimeScore =
			efficiencyScores(netRate, current, d.EstimatedSeasons, d.SalesSeasons)
		d.EfficiencyScore = round1(d.AbsorptionScore + d.SpeedScore + d.CompletionScore + d.TimeScore)
		d.EfficiencyGrade = EfficiencyGrade(d.EfficiencyScore)

		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ProjectCode < out[j].ProjectCode
	})
	return out
}

// salesStart picks the project's sales window origin: the registered start
// season, pulled back to the first observed transaction quarter when the
// data predates the registration. With neither, the window collapses to the
// target quarter.
func (t *seasonTally) salesStart(target cancellation.YearSeason) cancellation.YearSeason {
	registered, err := cancellation.ParseYearSeason(t.community.SalesStartSeason)
	switch {
	case err != nil && t.hasRecord:
		return t.earliest
	case err != nil:
		return target
	case t.hasRecord && t.earliest.Before(registered):
		return t.earliest
	default:
		return registered
	}
}

// quarterlySpeeds returns the net units moved in each quarter of the sales
// window, clamped at zero. A quarter where cancellations outnumber new valid
// sales counts as zero movement rather than negative speed.
func (t *seasonTally) quarterlySpeeds(seasons []cancellation.YearSeason) []float64 {
	speeds := make([]float64, len(seasons))
	prev := 0.0
	cumValid, cumCancelled := 0, 0
	for i, s := range seasons {
		cumValid += t.valid[s.Number()]
		cumCancelled += t.cancelled[s.Number()]
		net := float64(cumValid - cumCancelled)
		speeds[i] = math.Max(0, net-prev)
		prev = net
	}
	return speeds
}

// netRateAt returns the cumulative net absorption percentage at the season.
func (t *seasonTally) netRateAt(target cancellation.YearSeason) float64 {
	valid, cancelled := 0, 0
	for n, c := range t.valid {
		if n <= target.Number() {
			valid += c
		}
	}
	for n, c := range t.cancelled {
		if n <= target.Number() {
			cancelled += c
		}
	}
	return float64(valid-cancelled) / float64(t.community.TotalUnits) * 100
}

// acceleration grades the target quarter's speed against the previous
// quarter's. A restart (movement after a dead quarter) cannot be expressed
// as a percentage, so it carries a sentinel value instead.
func acceleration(speeds []float64) (float64, string) {
	if len(speeds) < 2 {
		return 0, AccelInitial
	}
	current, previous := speeds[len(speeds)-1], speeds[len(speeds)-2]

	if previous == 0 {
		if current > 0 {
			return accelRestartMarker, AccelRestart
		}
		return 0, AccelStagnant
	}

	change := (current - previous) / previous * 100
	switch {
	case change > 20:
		return round2(change), AccelStrongUp
	case change > 5:
		return round2(change), AccelUp
	case change > -5:
		return round2(change), AccelStable
	case change > -20:
		return round2(change), AccelDown
	default:
		return round2(change), AccelStrongDown
	}
}

// estimateCompletion projects how many more quarters the project needs to
// sell out, assuming the current quarter's speed holds.
func estimateCompletion(netRate, currentSpeed, totalUnits float64) (int, string) {
	if netRate >= 100 {
		return 0, CompletionDone
	}
	if currentSpeed <= 0 {
		return unpredictableSeasons, CompletionUnpredictable
	}

	remaining := (100 - netRate) / 100 * totalUnits
	estimated := int(math.Ceil(remaining / currentSpeed))
	switch {
	case estimated <= 4:
		return estimated, CompletionFast
	case estimated <= 8:
		return estimated, CompletionNormal
	case estimated <= 16:
		return estimated, CompletionSlow
	default:
		return estimated, CompletionLongTerm
	}
}

// efficiencyScores computes the four components of the 100-point composite:
// net absorption (30), quarterly speed (25), projected completion horizon
// (25) and time efficiency over the sales window (20).
func efficiencyScores(netRate, speed float64, estimatedSeasons, salesSeasons int) (absorption, speedScore, completion, timeScore float64) {
	switch {
	case netRate >= 100:
		absorption = 30
	case netRate >= 80:
		absorption = 25
	case netRate >= 60:
		absorption = 20
	case netRate >= 40:
		absorption = 15
	case netRate >= 20:
		absorption = 10
	default:
		absorption = math.Max(0, netRate/20*10)
	}

	switch {
	case speed >= 5:
		speedScore = 25
	case speed >= 3:
		speedScore = 20
	case speed >= 2:
		speedScore = 15
	case speed >= 1:
		speedScore = 10
	case speed >= 0.5:
		speedScore = 5
	}

	switch {
	case netRate >= 100:
		completion = 25
	case estimatedSeasons <= 4:
		completion = 25
	case estimatedSeasons <= 8:
		completion = 20
	case estimatedSeasons <= 12:
		completion = 15
	case estimatedSeasons <= 20:
		completion = 10
	case estimatedSeasons < unpredictableSeasons:
		completion = 5
	}

	if salesSeasons < 1 {
		salesSeasons = 1
	}
	if netRate >= 100 {
		switch {
		case salesSeasons <= 4:
			timeScore = 20
		case salesSeasons <= 8:
			timeScore = 15
		case salesSeasons <= 12:
			timeScore = 10
		default:
			timeScore = 5
		}
	} else if salesSeasons <= 4 {
		// Extrapolate the pace to a four-quarter window and score against
		// the 50% progress a healthy launch shows by then.
		expected := netRate / float64(salesSeasons) * 4
		timeScore = math.Min(20, math.Max(0, expected/50*20))
	} else {
		timeScore = math.Max(0, 20-float64(salesSeasons-4)*2)
	}

	return round1(absorption), round1(speedScore), round1(completion), round1(timeScore)
}

// EfficiencyGrade buckets the composite score.
func EfficiencyGrade(score float64) string {
	switch {
	case score >= 85:
		return GradeExcellent
	case score >= 70:
		return GradeGood
	case score >= 50:
		return GradeAverage
	default:
		return GradePoor
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
