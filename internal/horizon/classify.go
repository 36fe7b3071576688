package horizon

// Predicate decides whether a segment is kept by a filter.
type Predicate func(Segment) bool

// MinLength keeps segments whose Euclidean length is at least t.
// Short segments are usually edge noise rather than structural boundaries.
func MinLength(t float64) Predicate {
	return func(s Segment) bool { return s.Length() >= t }
}

// MinHorizontalSpan keeps segments spanning at least t pixels horizontally.
// Near-vertical segments cannot be part of a roughly horizontal boundary.
func MinHorizontalSpan(t float64) Predicate {
	return func(s Segment) bool { return float64(s.HorizontalSpan()) >= t }
}

// Filter returns the segments accepted by keep, preserving input order.
// The input slice is not modified.
func Filter(segments []Segment, keep Predicate) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, s := range segments {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// Classification records the outcome of both classifier stages.
type Classification struct {
	// LengthSurvivors passed the length filter.
	LengthSurvivors []Segment `json:"length_survivors"`

	// Accepted passed both filters.
	Accepted []Segment `json:"accepted"`

	// RejectedShort failed the length filter.
	RejectedShort int `json:"rejected_short"`

	// RejectedSteep passed the length filter but failed the span filter.
	RejectedSteep int `json:"rejected_steep"`
}

// ClassifyStages runs the length filter and then the horizontal-span filter
// on its survivors, keeping the intermediate result.
func ClassifyStages(segments []Segment, minLength, minHorizontalSpan float64) Classification {
	long := Filter(segments, MinLength(minLength))
	accepted := Filter(long, MinHorizontalSpan(minHorizontalSpan))
	return Classification{
		LengthSurvivors: long,
		Accepted:        accepted,
		RejectedShort:   len(segments) - len(long),
		RejectedSteep:   len(long) - len(accepted),
	}
}

// Classify returns the segments that survive both filters, in input order.
func Classify(segments []Segment, minLength, minHorizontalSpan float64) []Segment {
	return ClassifyStages(segments, minLength, minHorizontalSpan).Accepted
}
