package calculator

import "math"

// EMAOptions mirrors the knobs of an exponentially weighted mean.
type EMAOptions struct {
	Span       int
	MinPeriods int
	// Adjust divides by the decaying sum of weights instead of using the
	// recursive form y = (1-α)y + αx.
	Adjust bool
}

// CalculateEMA returns the exponentially weighted moving average of values
// with α = 2/(span+1). Output has the same length as values; entries before
// MinPeriods observations are NaN. NaN inputs are skipped but still decay the
// weight of older observations.
func CalculateEMA(values []float64, opts EMAOptions) ([]float64, error) {
	if opts.Span < 1 {
		return nil, ErrInvalidPeriod
	}
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out, nil
	}

	alpha := 2.0 / (float64(opts.Span) + 1.0)
	decay := 1 - alpha
	newWt := 1.0
	if !opts.Adjust {
		newWt = alpha
	}
	minp := opts.MinPeriods
	if minp < 1 {
		minp = 1
	}

	avg := values[0]
	nobs := 0
	if !math.IsNaN(avg) {
		nobs = 1
	}
	oldWt := 1.0
	out[0] = emit(avg, nobs, minp)

	for i := 1; i < len(values); i++ {
		cur := values[i]
		isObs := !math.IsNaN(cur)
		if isObs {
			nobs++
		}
		if !math.IsNaN(avg) {
			oldWt *= decay
			if isObs {
				if avg != cur {
					avg = (oldWt*avg + newWt*cur) / (oldWt + newWt)
				}
				if opts.Adjust {
					oldWt += newWt
				} else {
					oldWt = 1
				}
			}
		} else if isObs {
			avg = cur
		}
		out[i] = emit(avg, nobs, minp)
	}
	return out, nil
}

func emit(v float64, nobs, minp int) float64 {
	if nobs >= minp {
		return v
	}
	return math.NaN()
}
