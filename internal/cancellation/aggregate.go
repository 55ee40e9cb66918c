package cancellation

// Summary holds dataset-level cancellation statistics for one batch of
// parsed events.
type Summary struct {
	Total     int `json:"total"`
	Cancelled int `json:"cancelled"`
	Normal    int `json:"normal"`

	// CancellationRate is Cancelled/Total, 0 for an empty batch.
	CancellationRate float64 `json:"cancellation_rate"`

	// ParsedDates counts cancelled events whose date token was recovered.
	ParsedDates int `json:"parsed_dates"`

	// MultipleCancellations counts events with more than one cancellation
	// entry (cancel, re-sell, cancel again).
	MultipleCancellations int `json:"multiple_cancellations"`

	// TokenLengths is a diagnostic histogram of date-token lengths for
	// cancelled events whose date could not be parsed. The keys reveal the
	// malformation patterns in a given export (6-digit truncations,
	// 14-digit concatenations and so on).
	TokenLengths map[int]int `json:"token_lengths,omitempty"`
}

// Aggregate reduces a batch of parsed events into a Summary. The
// reduction is order-independent, so partitioned batches aggregated in
// parallel and combined with Merge yield the same result as a single
// pass.
func Aggregate(events []Event) Summary {
	s := Summary{Total: len(events)}
	for _, ev := range events {
		if !ev.Cancelled {
			s.Normal++
			continue
		}
		s.Cancelled++
		if ev.Count > 1 {
			s.MultipleCancellations++
		}
		if ev.HasDate() {
			s.ParsedDates++
		} else {
			if s.TokenLengths == nil {
				s.TokenLengths = make(map[int]int)
			}
			s.TokenLengths[ev.TokenLength]++
		}
	}
	s.recomputeRate()
	return s
}

// Merge combines two partial summaries, recomputing the rate from the
// merged counts. The receiver is not modified.
func (s Summary) Merge(other Summary) Summary {
	merged := Summary{
		Total:                 s.Total + other.Total,
		Cancelled:             s.Cancelled + other.Cancelled,
		Normal:                s.Normal + other.Normal,
		ParsedDates:           s.ParsedDates + other.ParsedDates,
		MultipleCancellations: s.MultipleCancellations + other.MultipleCancellations,
	}
	if len(s.TokenLengths) > 0 || len(other.TokenLengths) > 0 {
		merged.TokenLengths = make(map[int]int, len(s.TokenLengths)+len(other.TokenLengths))
		for l, n := range s.TokenLengths {
			merged.TokenLengths[l] += n
		}
		for l, n := range other.TokenLengths {
			merged.TokenLengths[l] += n
		}
	}
	merged.recomputeRate()
	return merged
}

func (s *Summary) recomputeRate() {
	if s.Total > 0 {
		s.CancellationRate = float64(s.Cancelled) / float64(s.Total)
	} else {
		s.CancellationRate = 0
	}
}
