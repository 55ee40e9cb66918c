package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lvrcli/pkg/contracts/domain"
)

func TestMatch(t *testing.T) {
	communities := []domain.CommunityRecord{
		{ProjectCode: "P1", Name: "日光苑", City: "台北市", District: "大安區", TotalUnits: 80},
		{ProjectCode: "P2", Name: "河岸第一排", City: "新北市", District: "板橋區", TotalUnits: 120},
		{ProjectCode: "P9", Name: "未售建案", City: "桃園市", District: "中壢區", TotalUnits: 200},
	}
	transactions := []domain.TransactionRecord{
		{ProjectCode: "P1", City: "台北市", District: "大安區"},
		{ProjectCode: "P1", City: "台北市", District: "信義區"}, // mis-keyed district
		{ProjectCode: "P2", City: "新北市", District: "板橋區"},
		{ProjectCode: "XX", City: "高雄市", District: "左營區"}, // no community row
	}

	result := Match(transactions, communities)

	assert.Equal(t, 4, result.Stats.Transactions)
	assert.Equal(t, 3, result.Stats.Matched)
	assert.Equal(t, 1, result.Stats.Orphans)
	assert.InDelta(t, 75.0, result.Stats.MatchRate, 0.001)
	assert.Equal(t, 1, result.Stats.GeoMismatches)

	require.Len(t, result.Orphans, 1)
	assert.Equal(t, "XX", result.Orphans[0].ProjectCode)

	require.Len(t, result.Inactive, 1)
	assert.Equal(t, "P9", result.Inactive[0].ProjectCode)
	assert.Equal(t, 1, result.Stats.InactiveCommunities)

	require.Len(t, result.Matched, 3)
	assert.True(t, result.Matched[0].GeoConsistent)
	assert.False(t, result.Matched[1].GeoConsistent)
	assert.Equal(t, "日光苑", result.Matched[0].Community.Name)
}

func TestMatchEmptyInputs(t *testing.T) {
	result := Match(nil, nil)
	assert.Equal(t, 0, result.Stats.Transactions)
	assert.Equal(t, 0.0, result.Stats.MatchRate)
	assert.Empty(t, result.Matched)
	assert.Empty(t, result.Orphans)
}
