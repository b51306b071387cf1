package calculator

import "math"

// PriceRelative divides a by b element-wise. Both series must already be
// aligned on the same dates.
func PriceRelative(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, ErrLengthMismatch
	}
	out := make([]float64, len(a))
	for i := range a {
		if b[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = a[i] / b[i]
	}
	return out, nil
}

// PercentChange is PctChange scaled to percent.
func PercentChange(values []float64) []float64 {
	out := PctChange(values)
	for i := range out {
		out[i] *= 100
	}
	return out
}
