package dataprocessing

import (
	"fmt"
	"regexp"
	"sort"

	"lvrcli/internal/cancellation"
	"lvrcli/pkg/contracts/domain"
)

// uidSanitizer collapses characters that are not letters, digits, hyphen or
// underscore. The pattern is unicode-aware so Chinese street names survive.
var uidSanitizer = regexp.MustCompile(`[^\p{L}\p{N}_-]`)

// PropertyUID builds the identity key for a physical unit. The same unit
// re-registered after a cancellation shares project code, street and floor,
// which is what lets the duplicate pass fold those rows together.
func PropertyUID(t domain.TransactionRecord) string {
	raw := fmt.Sprintf("%s_%s_%s", t.ProjectCode, t.Street, t.Floor)
	return uidSanitizer.ReplaceAllString(raw, "_")
}

// PropertyRecord is the outcome of duplicate resolution for one physical
// unit: the transaction chosen to represent it and whether that transaction
// counts as a valid sale.
type PropertyRecord struct {
	UID       string
	Chosen    domain.TransactionRecord
	Event     cancellation.Event
	Valid     bool
	Total     int // all registrations seen for this unit
	Normal    int
	Cancelled int
}

// Repeats returns how many extra registrations the unit carried beyond the
// first one.
func (p PropertyRecord) Repeats() int {
	return p.Total - 1
}

// DedupStats summarises a duplicate-resolution pass.
type DedupStats struct {
	TotalRecords           int         `json:"total_records"`
	UniqueProperties       int         `json:"unique_properties"`
	DuplicateProperties    int         `json:"duplicate_properties"`
	ValidProperties        int         `json:"valid_properties"`
	AllCancelledProperties int         `json:"all_cancelled_properties"`
	RepeatDistribution     map[int]int `json:"repeat_distribution"`
}

// Deduplicate groups transactions by property identity and selects one
// representative transaction per unit:
//
//  1. the earliest normal (non-cancelled) transaction wins;
//  2. if every registration was cancelled, the earliest cancelled one is
//     kept but the property is flagged invalid.
//
// Results are ordered by UID so downstream output is deterministic.
func Deduplicate(records []domain.TransactionRecord) ([]PropertyRecord, DedupStats) {
	groups := make(map[string][]domain.TransactionRecord)
	for _, r := range records {
		uid := PropertyUID(r)
		groups[uid] = append(groups[uid], r)
	}

	stats := DedupStats{
		TotalRecords:       len(records),
		UniqueProperties:   len(groups),
		RepeatDistribution: make(map[int]int),
	}

	properties := make([]PropertyRecord, 0, len(groups))
	for uid, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Date.Before(group[j].Date)
		})

		prop := PropertyRecord{UID: uid, Total: len(group)}
		for _, r := range group {
			if r.HasCancellationText() {
				prop.Cancelled++
			} else {
				prop.Normal++
			}
		}

		if prop.Normal > 0 {
			for _, r := range group {
				if !r.HasCancellationText() {
					prop.Chosen = r
					break
				}
			}
			prop.Valid = true
		} else {
			prop.Chosen = group[0]
			prop.Valid = false
		}
		prop.Event = cancellation.Parse(prop.Chosen.CancellationText)

		if prop.Valid {
			stats.ValidProperties++
		} else {
			stats.AllCancelledProperties++
		}
		if prop.Total > 1 {
			stats.DuplicateProperties++
		}
		stats.RepeatDistribution[prop.Repeats()]++

		properties = append(properties, prop)
	}

	sort.Slice(properties, func(i, j int) bool {
		return properties[i].UID < properties[j].UID
	})

	return properties, stats
}
