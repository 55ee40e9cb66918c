package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lvrcli/pkg/contracts/domain"
)

func TestComputeDynamicsSpeedAndAcceleration(t *testing.T) {
	community := domain.CommunityRecord{
		ProjectCode: "P1", Name: "日光苑", City: "台北市", District: "大安區",
		TotalUnits: 40, SalesStartSeason: "112Y4S",
	}
	matched := matchedFor(community,
		domain.TransactionRecord{YearSeason: "112Y4S"},
		domain.TransactionRecord{YearSeason: "112Y4S"},
		domain.TransactionRecord{YearSeason: "112Y4S"},
		domain.TransactionRecord{YearSeason: "113Y1S"},
		domain.TransactionRecord{YearSeason: "113Y1S"},
		domain.TransactionRecord{YearSeason: "113Y1S"},
		domain.TransactionRecord{YearSeason: "113Y1S"},
	)

	dynamics := ComputeDynamics(matched, season("113Y1S"))
	require.Len(t, dynamics, 1)

	d := dynamics[0]
	assert.Equal(t, "P1", d.ProjectCode)
	assert.Equal(t, "113Y1S", d.TargetSeason)
	assert.Equal(t, 2, d.SalesSeasons)
	assert.InDelta(t, 4.0, d.QuarterlySpeed, 0.001) // 3 units then 4 units
	assert.InDelta(t, 33.33, d.Acceleration, 0.01)  // (4-3)/3
	assert.Equal(t, AccelStrongUp, d.AccelerationStatus)

	// 7 of 40 units net, 33 remaining at 4 per quarter
	assert.Equal(t, 9, d.EstimatedSeasons)
	assert.Equal(t, CompletionSlow, d.CompletionStatus)
	assert.Equal(t, "115Y2S", d.ProjectedSellout)

	// 8.8 + 20 + 15 + 14
	assert.InDelta(t, 8.8, d.AbsorptionScore, 0.001)
	assert.InDelta(t, 20, d.SpeedScore, 0.001)
	assert.InDelta(t, 15, d.CompletionScore, 0.001)
	assert.InDelta(t, 14, d.TimeScore, 0.001)
	assert.InDelta(t, 57.8, d.EfficiencyScore, 0.001)
	assert.Equal(t, GradeAverage, d.EfficiencyGrade)
}

func TestComputeDynamicsRestartAfterDeadQuarter(t *testing.T) {
	community := domain.CommunityRecord{ProjectCode: "P2", TotalUnits: 30, SalesStartSeason: "112Y4S"}
	matched := matchedFor(community,
		domain.TransactionRecord{YearSeason: "112Y4S"},
		domain.TransactionRecord{YearSeason: "112Y4S"},
		domain.TransactionRecord{YearSeason: "113Y2S"},
	)

	dynamics := ComputeDynamics(matched, season("113Y2S"))
	require.Len(t, dynamics, 1)
	assert.Equal(t, AccelRestart, dynamics[0].AccelerationStatus)
	assert.InDelta(t, 999.0, dynamics[0].Acceleration, 0.001)
}

func TestComputeDynamicsStagnant(t *testing.T) {
	community := domain.CommunityRecord{ProjectCode: "P3", TotalUnits: 30, SalesStartSeason: "112Y4S"}
	matched := matchedFor(community,
		domain.TransactionRecord{YearSeason: "112Y4S"},
	)

	dynamics := ComputeDynamics(matched, season("113Y2S"))
	require.Len(t, dynamics, 1)

	d := dynamics[0]
	assert.Equal(t, AccelStagnant, d.AccelerationStatus)
	assert.Equal(t, 0.0, d.QuarterlySpeed)
	assert.Equal(t, unpredictableSeasons, d.EstimatedSeasons)
	assert.Equal(t, CompletionUnpredictable, d.CompletionStatus)
	assert.Empty(t, d.ProjectedSellout)
	assert.Equal(t, 0.0, d.CompletionScore)
}

func TestComputeDynamicsFirstQuarterIsInitial(t *testing.T) {
	community := domain.CommunityRecord{ProjectCode: "P4", TotalUnits: 20, SalesStartSeason: "113Y1S"}
	matched := matchedFor(community,
		domain.TransactionRecord{YearSeason: "113Y1S"},
	)

	dynamics := ComputeDynamics(matched, season("113Y1S"))
	require.Len(t, dynamics, 1)
	assert.Equal(t, 1, dynamics[0].SalesSeasons)
	assert.Equal(t, AccelInitial, dynamics[0].AccelerationStatus)
	assert.Equal(t, 0.0, dynamics[0].Acceleration)
}

func TestComputeDynamicsCompletedProject(t *testing.T) {
	community := domain.CommunityRecord{ProjectCode: "P5", TotalUnits: 2, SalesStartSeason: "113Y1S"}
	matched := matchedFor(community,
		domain.TransactionRecord{YearSeason: "113Y1S"},
		domain.TransactionRecord{YearSeason: "113Y1S"},
	)

	dynamics := ComputeDynamics(matched, season("113Y1S"))
	require.Len(t, dynamics, 1)

	d := dynamics[0]
	assert.Equal(t, 0, d.EstimatedSeasons)
	assert.Equal(t, CompletionDone, d.CompletionStatus)
	assert.Empty(t, d.ProjectedSellout)
	assert.InDelta(t, 30, d.AbsorptionScore, 0.001)
	assert.InDelta(t, 25, d.CompletionScore, 0.001)
	assert.InDelta(t, 20, d.TimeScore, 0.001) // sold out within four quarters
}

func TestComputeDynamicsCancellationsClampSpeedAtZero(t *testing.T) {
	community := domain.CommunityRecord{ProjectCode: "P6", TotalUnits: 30, SalesStartSeason: "112Y4S"}
	matched := matchedFor(community,
		domain.TransactionRecord{YearSeason: "112Y4S"},
		domain.TransactionRecord{YearSeason: "113Y1S", CancellationText: "全部解約1130210"},
	)

	dynamics := ComputeDynamics(matched, season("113Y1S"))
	require.Len(t, dynamics, 1)
	assert.Equal(t, 0.0, dynamics[0].QuarterlySpeed)
}

func TestComputeDynamicsStartFallsBackToFirstTransaction(t *testing.T) {
	community := domain.CommunityRecord{ProjectCode: "P7", TotalUnits: 30} // no registered start
	matched := matchedFor(community,
		domain.TransactionRecord{YearSeason: "112Y3S"},
		domain.TransactionRecord{YearSeason: "113Y1S"},
	)

	dynamics := ComputeDynamics(matched, season("113Y1S"))
	require.Len(t, dynamics, 1)
	assert.Equal(t, 3, dynamics[0].SalesSeasons) // 112Y3S through 113Y1S
}

func TestComputeDynamicsInvalidUnits(t *testing.T) {
	community := domain.CommunityRecord{ProjectCode: "P8", TotalUnits: 0}
	matched := matchedFor(community, domain.TransactionRecord{YearSeason: "113Y1S"})

	dynamics := ComputeDynamics(matched, season("113Y1S"))
	require.Len(t, dynamics, 1)
	assert.Equal(t, AbsorptionInvalidUnits, dynamics[0].Status)
	assert.Equal(t, 0.0, dynamics[0].EfficiencyScore)
}

func TestComputeDynamicsOrderedByProjectCode(t *testing.T) {
	a := domain.CommunityRecord{ProjectCode: "B", TotalUnits: 10, SalesStartSeason: "113Y1S"}
	b := domain.CommunityRecord{ProjectCode: "A", TotalUnits: 10, SalesStartSeason: "113Y1S"}
	matched := append(
		matchedFor(a, domain.TransactionRecord{YearSeason: "113Y1S"}),
		matchedFor(b, domain.TransactionRecord{YearSeason: "113Y1S"})...,
	)

	dynamics := ComputeDynamics(matched, season("113Y1S"))
	require.Len(t, dynamics, 2)
	assert.Equal(t, "A", dynamics[0].ProjectCode)
	assert.Equal(t, "B", dynamics[1].ProjectCode)
}

func TestEfficiencyGradeThresholds(t *testing.T) {
	assert.Equal(t, GradeExcellent, EfficiencyGrade(85))
	assert.Equal(t, GradeGood, EfficiencyGrade(70))
	assert.Equal(t, GradeAverage, EfficiencyGrade(50))
	assert.Equal(t, GradePoor, EfficiencyGrade(49.9))
}
