package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lvrcli/pkg/contracts/domain"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestPropertyUID(t *testing.T) {
	tests := []struct {
		name   string
		record domain.TransactionRecord
		want   string
	}{
		{
			name:   "chinese street and floor survive",
			record: domain.TransactionRecord{ProjectCode: "A0001", Street: "中山路一段", Floor: "五層"},
			want:   "A0001_中山路一段_五層",
		},
		{
			name:   "punctuation collapses to underscores",
			record: domain.TransactionRecord{ProjectCode: "A0001", Street: "中山路1段25號", Floor: "5F(含車位)"},
			want:   "A0001_中山路1段25號_5F_含車位_",
		},
		{
			name:   "empty parts keep the separators",
			record: domain.TransactionRecord{ProjectCode: "A0001"},
			want:   "A0001__",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PropertyUID(tt.record))
		})
	}
}

func TestDeduplicateEarliestNormalWins(t *testing.T) {
	records := []domain.TransactionRecord{
		{ProjectCode: "A1", Street: "街", Floor: "3", Date: day(2023, 6, 1), CancellationText: "全部解約1120701"},
		{ProjectCode: "A1", Street: "街", Floor: "3", Date: day(2023, 9, 1)},
		{ProjectCode: "A1", Street: "街", Floor: "3", Date: day(2023, 12, 1)},
	}

	properties, stats := Deduplicate(records)
	require.Len(t, properties, 1)

	p := properties[0]
	assert.True(t, p.Valid)
	assert.Equal(t, day(2023, 9, 1), p.Chosen.Date)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 1, p.Cancelled)
	assert.Equal(t, 2, p.Normal)
	assert.Equal(t, 2, p.Repeats())

	assert.Equal(t, 1, stats.UniqueProperties)
	assert.Equal(t, 1, stats.DuplicateProperties)
	assert.Equal(t, 1, stats.ValidProperties)
	assert.Equal(t, 0, stats.AllCancelledProperties)
}

func TestDeduplicateAllCancelled(t *testing.T) {
	records := []domain.TransactionRecord{
		{ProjectCode: "B2", Street: "路", Floor: "7", Date: day(2024, 2, 1), CancellationText: "全部解約1130301"},
		{ProjectCode: "B2", Street: "路", Floor: "7", Date: day(2023, 11, 1), CancellationText: "全部解約1121215"},
	}

	properties, stats := Deduplicate(records)
	require.Len(t, properties, 1)

	p := properties[0]
	assert.False(t, p.Valid)
	assert.Equal(t, day(2023, 11, 1), p.Chosen.Date)
	assert.True(t, p.Event.Cancelled)
	require.NotNil(t, p.Event.Date)
	assert.Equal(t, day(2023, 12, 15), *p.Event.Date)

	assert.Equal(t, 1, stats.AllCancelledProperties)
	assert.Equal(t, 0, stats.ValidProperties)
}

func TestDeduplicateDistinctUnitsStaySeparate(t *testing.T) {
	records := []domain.TransactionRecord{
		{ProjectCode: "C3", Street: "巷", Floor: "2", Date: day(2023, 1, 1)},
		{ProjectCode: "C3", Street: "巷", Floor: "3", Date: day(2023, 1, 1)},
		{ProjectCode: "C4", Street: "巷", Floor: "2", Date: day(2023, 1, 1)},
	}

	properties, stats := Deduplicate(records)
	assert.Len(t, properties, 3)
	assert.Equal(t, 3, stats.UniqueProperties)
	assert.Equal(t, 0, stats.DuplicateProperties)
	assert.Equal(t, map[int]int{0: 3}, stats.RepeatDistribution)

	// Output ordering is deterministic.
	assert.Equal(t, "C3_巷_2", properties[0].UID)
	assert.Equal(t, "C3_巷_3", properties[1].UID)
	assert.Equal(t, "C4_巷_2", properties[2].UID)
}

func TestDeduplicateRepeatDistribution(t *testing.T) {
	var records []domain.TransactionRecord
	for i := 0; i < 4; i++ {
		records = append(records, domain.TransactionRecord{
			ProjectCode: "D5", Street: "街", Floor: "9", Date: day(2023, 1, 1+i),
		})
	}
	records = append(records, domain.TransactionRecord{ProjectCode: "D6", Street: "街", Floor: "1", Date: day(2023, 5, 5)})

	_, stats := Deduplicate(records)
	assert.Equal(t, 5, stats.TotalRecords)
	assert.Equal(t, map[int]int{3: 1, 0: 1}, stats.RepeatDistribution)
}

func TestDeduplicateEmptyInput(t *testing.T) {
	properties, stats := Deduplicate(nil)
	assert.Empty(t, properties)
	assert.Equal(t, 0, stats.TotalRecords)
	assert.Equal(t, 0, stats.UniqueProperties)
}
