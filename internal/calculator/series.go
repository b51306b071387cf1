package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// AnnualisationFactor is the number of trading days in a year.
const AnnualisationFactor = 252

// PctChange returns (x[t] - x[t-1]) / x[t-1]; the first element is NaN.
func PctChange(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (values[i] - values[i-1]) / values[i-1]
	}
	return out
}

// RollingStd returns the sample standard deviation over a trailing window.
// An entry is NaN until its window holds window non-NaN values.
func RollingStd(values []float64, window int) ([]float64, error) {
	if window < 2 {
		return nil, ErrInvalidPeriod
	}
	out := make([]float64, len(values))
	for i := range values {
		out[i] = math.NaN()
		if i+1 < window {
			continue
		}
		w := values[i+1-window : i+1]
		if hasNaN(w) {
			continue
		}
		out[i] = stat.StdDev(w, nil)
	}
	return out, nil
}

// MeanIgnoringNaN averages the non-NaN entries; it returns NaN when there are none.
func MeanIgnoringNaN(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
