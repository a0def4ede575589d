package stats

import (
	"math"
	"sort"
)

// Description summarizes a sample
type Description struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// Describe computes count, mean, median, 90th percentile and maximum of values
func Describe(values []float64) Description {
	if len(values) == 0 {
		return Description{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Description{
		Count:  len(sorted),
		Mean:   Mean(sorted),
		Median: quantileSorted(sorted, 0.5),
		P90:    quantileSorted(sorted, 0.9),
		Max:    sorted[len(sorted)-1],
	}
}

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// quantileSorted interpolates the q-th quantile (clamped to [0, 1]) of sorted values
func quantileSorted(sorted []float64, q float64) float64 {
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}

	index := q * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Round rounds v to the given number of decimals
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
