package dataprocessing

import (
	"sort"

	"lvrcli/pkg/contracts/domain"
)

// MatchedTransaction pairs a transaction with the community it registered
// under, plus the result of the geographic cross-check.
type MatchedTransaction struct {
	Transaction   domain.TransactionRecord
	Community     domain.CommunityRecord
	GeoConsistent bool
}

// MatchStats summarises a join of transactions against community data.
type MatchStats struct {
	Transactions        int     `json:"transactions"`
	Matched             int     `json:"matched"`
	Orphans             int     `json:"orphans"`
	MatchRate           float64 `json:"match_rate"`
	Communities         int     `json:"communities"`
	InactiveCommunities int     `json:"inactive_communities"`
	GeoMismatches       int     `json:"geo_mismatches"`
}

// MatchResult is the full outcome of the community join.
type MatchResult struct {
	Matched []MatchedTransaction
	// Orphans are transactions whose project code has no community row.
	// They stay in the cancellation statistics but are excluded from
	// absorption analysis, which needs total unit counts.
	Orphans []domain.TransactionRecord
	// Inactive holds communities with no transactions at all, sorted by
	// project code.
	Inactive []domain.CommunityRecord
	Stats    MatchStats
}

// Match joins transactions to communities on the project code and checks
// geographic consistency of each pair. A pair is consistent when the
// transaction's city and district both equal the community's; mismatches
// usually mean a mis-keyed registration.
func Match(transactions []domain.TransactionRecord, communities []domain.CommunityRecord) MatchResult {
	byCode := make(map[string]domain.CommunityRecord, len(communities))
	for _, c := range communities {
		byCode[c.ProjectCode] = c
	}

	result := MatchResult{
		Stats: MatchStats{
			Transactions: len(transactions),
			Communities:  len(communities),
		},
	}

	seen := make(map[string]bool, len(communities))
	for _, t := range transactions {
		community, ok := byCode[t.ProjectCode]
		if !ok {
			result.Orphans = append(result.Orphans, t)
			continue
		}
		seen[t.ProjectCode] = true

		consistent := t.City == community.City && t.District == community.District
		if !consistent {
			result.Stats.GeoMismatches++
		}
		result.Matched = append(result.Matched, MatchedTransaction{
			Transaction:   t,
			Community:     community,
			GeoConsistent: consistent,
		})
	}

	for _, c := range communities {
		if !seen[c.ProjectCode] {
			result.Inactive = append(result.Inactive, c)
		}
	}
	sort.Slice(result.Inactive, func(i, j int) bool {
		return result.Inactive[i].ProjectCode < result.Inactive[j].ProjectCode
	})

	result.Stats.Matched = len(result.Matched)
	result.Stats.Orphans = len(result.Orphans)
	result.Stats.InactiveCommunities = len(result.Inactive)
	if result.Stats.Transactions > 0 {
		result.Stats.MatchRate = float64(result.Stats.Matched) / float64(result.Stats.Transactions) * 100
	}

	return result
}
