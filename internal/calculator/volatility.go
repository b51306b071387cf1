package calculator

import "math"

// CalculateRealisedVolatility annualises the rolling standard deviation of
// daily returns and scales it to percent. The result is aligned to closes:
// entry i covers the window of returns ending at close i.
func CalculateRealisedVolatility(closes []float64, window int) ([]float64, error) {
	if len(closes) < 2 {
		return nil, ErrNoData
	}
	std, err := RollingStd(PctChange(closes), window)
	if err != nil {
		return nil, err
	}
	scale := 100 * math.Sqrt(AnnualisationFactor)
	for i, s := range std {
		std[i] = s * scale
	}
	return std, nil
}
