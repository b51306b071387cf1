package model

import "github.com/shopspring/decimal"

// Performance is the annualised return/volatility of a weight vector.
type Performance struct {
	Return     float64 `json:"return"`
	Volatility float64 `json:"volatility"`
	Sharpe     float64 `json:"sharpe"`
}

// Allocation is a set of portfolio weights keyed by symbol.
type Allocation struct {
	Symbols     []string    `json:"symbols"`
	Weights     []float64   `json:"weights"`
	Performance Performance `json:"performance"`
}

// Weight returns the weight for symbol, or 0 if absent.
func (a *Allocation) Weight(symbol string) float64 {
	for i, s := range a.Symbols {
		if s == symbol {
			return a.Weights[i]
		}
	}
	return 0
}

// AssetStats is a single asset's annualised return and volatility.
type AssetStats struct {
	Symbol     string  `json:"symbol"`
	Return     float64 `json:"return"`
	Volatility float64 `json:"volatility"`
}

// DiscreteAllocation is a whole-share purchase plan.
type DiscreteAllocation struct {
	Shares   map[string]int64 `json:"shares"`
	Leftover decimal.Decimal  `json:"leftover"`
}
