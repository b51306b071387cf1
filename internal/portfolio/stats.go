package portfolio

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"StockLab/internal/calculator"
	"StockLab/internal/model"
)

// TradingDays annualises daily statistics.
const TradingDays = calculator.AnnualisationFactor

var ErrNotEnoughPrices = errors.New("need at least three aligned prices per asset")

// Model is the expected-return vector and covariance matrix an optimizer
// works on. Periods scales both to an annual figure (252 for daily
// statistics, 1 when they are already annualised).
type Model struct {
	Symbols []string
	Mean    []float64
	Cov     *mat.SymDense
	Periods float64
}

// Stats holds daily returns for a set of aligned price columns.
type Stats struct {
	Symbols []string
	Returns *mat.Dense // rows are days, columns are assets
	Prices  [][]float64
}

// NewStats computes daily percentage returns from price columns, dropping the first row.
func NewStats(symbols []string, prices [][]float64) (*Stats, error) {
	if len(symbols) == 0 || len(symbols) != len(prices) {
		return nil, fmt.Errorf("symbols/prices mismatch: %d vs %d", len(symbols), len(prices))
	}
	rows := len(prices[0])
	if rows < 3 {
		return nil, ErrNotEnoughPrices
	}
	ret := mat.NewDense(rows-1, len(symbols), nil)
	for j, col := range prices {
		if len(col) != rows {
			return nil, fmt.Errorf("%s: %w", symbols[j], calculator.ErrLengthMismatch)
		}
		pct := calculator.PctChange(col)
		for i := 1; i < rows; i++ {
			if math.IsNaN(pct[i]) || math.IsInf(pct[i], 0) {
				return nil, fmt.Errorf("%s: invalid price at row %d", symbols[j], i)
			}
			ret.Set(i-1, j, pct[i])
		}
	}
	return &Stats{Symbols: symbols, Returns: ret, Prices: prices}, nil
}

func (s *Stats) column(j int) []float64 {
	return mat.Col(nil, j, s.Returns)
}

// MeanReturns is the average daily return per asset.
func (s *Stats) MeanReturns() []float64 {
	out := make([]float64, len(s.Symbols))
	for j := range s.Symbols {
		out[j] = stat.Mean(s.column(j), nil)
	}
	return out
}

// Covariance is the sample covariance matrix of daily returns.
func (s *Stats) Covariance() *mat.SymDense {
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, s.Returns, nil)
	return &cov
}

// DailyModel uses arithmetic mean daily returns and the daily covariance.
func (s *Stats) DailyModel() *Model {
	return &Model{Symbols: s.Symbols, Mean: s.MeanReturns(), Cov: s.Covariance(), Periods: TradingDays}
}

// HistoricalModel uses compounded annual growth per asset and the annualised
// sample covariance.
func (s *Stats) HistoricalModel() *Model {
	mean := make([]float64, len(s.Symbols))
	for j := range s.Symbols {
		col := s.column(j)
		growth := 1.0
		for _, r := range col {
			growth *= 1 + r
		}
		mean[j] = math.Pow(growth, TradingDays/float64(len(col))) - 1
	}
	cov := s.Covariance()
	cov.ScaleSym(TradingDays, cov)
	return &Model{Symbols: s.Symbols, Mean: mean, Cov: cov, Periods: 1}
}

// Individual returns each asset's annualised return and volatility; the
// volatility uses the population standard deviation of daily returns.
func (s *Stats) Individual() []model.AssetStats {
	mean := s.MeanReturns()
	out := make([]model.AssetStats, len(s.Symbols))
	for j, sym := range s.Symbols {
		out[j] = model.AssetStats{
			Symbol:     sym,
			Return:     mean[j] * TradingDays,
			Volatility: stat.PopStdDev(s.column(j), nil) * math.Sqrt(TradingDays),
		}
	}
	return out
}

// Performance returns the annualised volatility and return of weights w.
func (m *Model) Performance(w []float64) (std, ret float64) {
	ret = floats.Dot(m.Mean, w) * m.Periods
	wv := mat.NewVecDense(len(w), w)
	variance := mat.Inner(wv, m.Cov, wv)
	std = math.Sqrt(math.Max(variance, 0) * m.Periods)
	return std, ret
}

// Evaluate packages Performance with the Sharpe ratio against riskFree.
func (m *Model) Evaluate(w []float64, riskFree float64) model.Performance {
	std, ret := m.Performance(w)
	sharpe := 0.0
	if std > 0 {
		sharpe = (ret - riskFree) / std
	}
	return model.Performance{Return: ret, Volatility: std, Sharpe: sharpe}
}

// Linspace returns n evenly spaced values from a to b inclusive.
func Linspace(a, b float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{a}
	}
	return floats.Span(make([]float64, n), a, b)
}
