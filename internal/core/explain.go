package core

import "strconv"

const (
	// NotAvailable is shown for absent audit fields.
	NotAvailable = "n/a"
	// RationalePlaceholder is shown when the pipeline supplied no
	// rationale text.
	RationalePlaceholder = "No rationale was recorded for this proposal."
)

// Explanation is the read-only audit projection of a single event,
// shaped for direct display. None of these fields feed gating logic.
type Explanation struct {
	Actor                     string
	Confidence                string
	LogicTraceID              string
	BusinessProfileConstraint string
	Rationale                 string

	// Questions is nil when the event has none; callers hide the
	// section entirely rather than render an empty list.
	Questions []string
}

// Explain projects an event's audit metadata into display form.
// Absent scalar fields become NotAvailable and an absent rationale
// becomes RationalePlaceholder, so callers never branch on emptiness.
func Explain(ev ShadowEvent) Explanation {
	ex := Explanation{
		Actor:                     orNA(ev.Actor),
		Confidence:                NotAvailable,
		LogicTraceID:              orNA(ev.LogicTraceID),
		BusinessProfileConstraint: orNA(ev.BusinessProfileConstraint),
		Rationale:                 ev.Rationale,
		Questions:                 ev.Questions(),
	}
	if ev.ConfidenceScore != nil {
		ex.Confidence = FormatConfidence(*ev.ConfidenceScore)
	}
	if ex.Rationale == "" {
		ex.Rationale = RationalePlaceholder
	}
	return ex
}

// FormatConfidence renders a confidence score with two decimals, the
// precision the pipeline reports.
func FormatConfidence(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
