package portfolio

import (
	"fmt"
	"math/rand/v2"
)

// RandomResult is one randomly weighted portfolio.
type RandomResult struct {
	Volatility float64
	Return     float64
	Sharpe     float64
	Weights    []float64
}

// RandomPortfolios draws n uniform weight vectors, normalised to sum to one,
// and evaluates each.
func RandomPortfolios(m *Model, n int, riskFree float64, rng *rand.Rand) ([]RandomResult, error) {
	if n < 0 {
		return nil, fmt.Errorf("random portfolios: n must not be negative, got %d", n)
	}
	assets := len(m.Symbols)
	out := make([]RandomResult, n)
	for i := range out {
		w := make([]float64, assets)
		sum := 0.0
		for j := range w {
			w[j] = rng.Float64()
			sum += w[j]
		}
		for j := range w {
			w[j] /= sum
		}
		p := m.Evaluate(w, riskFree)
		out[i] = RandomResult{Volatility: p.Volatility, Return: p.Return, Sharpe: p.Sharpe, Weights: w}
	}
	return out, nil
}
