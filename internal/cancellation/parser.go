package cancellation

import (
	"strconv"
	"strings"
	"time"
)

// Marker is the literal phrase that flags a sub-record as a completed
// cancellation ("full contract cancellation").
const Marker = "全部解約"

// dateTokenLen is the length of a well-formed ROC date token (YYYMMDD).
const dateTokenLen = 7

// Event is the structured interpretation of one 解約情形 cell.
type Event struct {
	// Cancelled reports whether the cell contains at least one
	// marker-bearing sub-record.
	Cancelled bool `json:"cancelled"`

	// Count is the number of marker-bearing sub-records. A unit that was
	// cancelled, re-sold and cancelled again shows up with Count 2.
	Count int `json:"count"`

	// Date is the cancellation date parsed from the first marker-bearing
	// sub-record, nil when the token is missing or malformed.
	Date *time.Time `json:"date,omitempty"`

	// TokenLength is the rune length of the date token accompanying the
	// first marker, 0 when the marker stands alone. Well-formed tokens
	// have length 7; everything else feeds the diagnostic histogram.
	TokenLength int `json:"token_length,omitempty"`

	// Raw preserves the original cell text for report detail rows.
	Raw string `json:"raw,omitempty"`
}

// HasDate reports whether a cancellation date was recovered from the text.
func (e Event) HasDate() bool {
	return e.Date != nil
}

// Parse interprets a single 解約情形 cell. It is pure and never fails:
// an empty cell yields a non-cancelled event, and malformed date tokens
// degrade to an absent date with the token length retained for
// diagnostics.
func Parse(text string) Event {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Event{}
	}

	ev := Event{Raw: trimmed}
	for _, sub := range strings.Split(trimmed, ";") {
		if !strings.Contains(sub, Marker) {
			continue
		}
		ev.Count++
		if ev.Count == 1 {
			token := strings.TrimSpace(strings.ReplaceAll(sub, Marker, ""))
			ev.TokenLength = len([]rune(token))
			ev.Date = parseROCToken(token)
		}
	}
	ev.Cancelled = ev.Count > 0
	return ev
}

// parseROCToken converts a 7-digit YYYMMDD ROC date token. Anything else,
// including plausible-looking 6 or 8 digit strings, returns nil: guessing
// at truncated dates would silently corrupt the statistics.
func parseROCToken(token string) *time.Time {
	if len(token) != dateTokenLen {
		return nil
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return nil
		}
	}
	year, _ := strconv.Atoi(token[:3])
	month, _ := strconv.Atoi(token[3:5])
	day, _ := strconv.Atoi(token[5:7])
	t, ok := FromROC(year, month, day)
	if !ok {
		return nil
	}
	return &t
}
