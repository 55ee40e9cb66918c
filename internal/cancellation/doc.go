// Package cancellation parses the free-text 解約情形 (cancellation status)
// cell of LVR pre-sale transaction exports and derives dataset-level
// cancellation statistics.
//
// # Input format
//
// A populated cell holds one or more sub-records separated by ";". Each
// sub-record describing a completed cancellation carries the literal marker
// 全部解約, usually followed by a 7-digit ROC calendar date (YYYMMDD, e.g.
// "全部解約1120315" for 2023-03-15). The field is free text entered by
// clerks, so truncated, concatenated and non-numeric tokens all occur in
// real exports.
//
// # Degradation contract
//
// Parse never returns an error. A malformed date token leaves Event.Date
// nil and records the token length so Aggregate can surface a diagnostic
// histogram of the malformation patterns. A row without the marker is a
// normal, non-cancelled transaction.
//
// # Usage
//
//	ev := cancellation.Parse(record.CancellationText)
//	if ev.Cancelled {
//	    ...
//	}
//
//	summary := cancellation.Aggregate(events)
//	fmt.Printf("cancellation rate: %.2f%%\n", summary.CancellationRate*100)
//
// Aggregate is a single associative reduction; partial summaries produced
// by parallel workers combine with Summary.Merge.
package cancellation
