package analysis

// ConfidenceLevel selects a visit probability band
type ConfidenceLevel string

// Confidence levels
const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ProbabilityRange is a closed interval of visit probabilities
type ProbabilityRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

var confidenceRanges = map[ConfidenceLevel]ProbabilityRange{
	ConfidenceHigh:   {Min: 0.0, Max: 1.0},
	ConfidenceMedium: {Min: 0.0, Max: 0.8},
	ConfidenceLow:    {Min: 0.0, Max: 0.5},
}

// Range returns the probability band of the level.
// ok is false for an empty or unknown level, which disables confidence filtering.
func (l ConfidenceLevel) Range() (r ProbabilityRange, ok bool) {
	r, ok = confidenceRanges[l]
	return r, ok
}

// Known reports whether the level is one of the fixed keys.
func (l ConfidenceLevel) Known() bool {
	_, ok := confidenceRanges[l]
	return ok
}

// Contains reports whether p lies within the range, bounds included
func (r ProbabilityRange) Contains(p float64) bool {
	return p >= r.Min && p <= r.Max
}

// ConfidenceLevels lists the known levels from widest to narrowest
func ConfidenceLevels() []ConfidenceLevel {
	return []ConfidenceLevel{ConfidenceHigh, ConfidenceMedium, ConfidenceLow}
}
