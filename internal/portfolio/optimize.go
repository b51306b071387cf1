package portfolio

import (
	"fmt"
	"math"

	"github.com/phuslu/log"
	"gonum.org/v1/gonum/optimize"

	"StockLab/internal/model"
)

// targetPenalty weighs the squared miss of a target return against volatility.
const targetPenalty = 1e3

// simplex maps unconstrained z to long-only weights summing to one.
func simplex(z []float64) []float64 {
	w := make([]float64, len(z))
	maxZ := math.Inf(-1)
	for _, v := range z {
		maxZ = math.Max(maxZ, v)
	}
	sum := 0.0
	for i, v := range z {
		w[i] = math.Exp(v - maxZ)
		sum += w[i]
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

// minimizeWeights searches the long-only, fully invested weights that
// minimise objective, starting from equal weights.
func minimizeWeights(n int, objective func(w []float64) float64) ([]float64, error) {
	if n == 0 {
		return nil, fmt.Errorf("no assets")
	}
	if n == 1 {
		return []float64{1}, nil
	}
	problem := optimize.Problem{
		Func: func(z []float64) float64 { return objective(simplex(z)) },
	}
	settings := &optimize.Settings{
		FuncEvaluations: 40000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Iterations: 400,
		},
	}
	res, err := optimize.Minimize(problem, make([]float64, n), settings, &optimize.NelderMead{})
	if res == nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	if err != nil {
		log.Debug().Err(err).Str("status", res.Status.String()).Msg("optimizer stopped early, using best point")
	}
	return simplex(res.X), nil
}

// MaxSharpe finds the weights with the highest Sharpe ratio.
func MaxSharpe(m *Model, riskFree float64) (*model.Allocation, error) {
	w, err := minimizeWeights(len(m.Symbols), func(w []float64) float64 {
		std, ret := m.Performance(w)
		if std == 0 {
			return math.Inf(1)
		}
		return -(ret - riskFree) / std
	})
	if err != nil {
		return nil, fmt.Errorf("max sharpe: %w", err)
	}
	return m.allocation(w, riskFree), nil
}

// MinVariance finds the weights with the lowest volatility.
func MinVariance(m *Model, riskFree float64) (*model.Allocation, error) {
	w, err := minimizeWeights(len(m.Symbols), func(w []float64) float64 {
		std, _ := m.Performance(w)
		return std
	})
	if err != nil {
		return nil, fmt.Errorf("min variance: %w", err)
	}
	return m.allocation(w, riskFree), nil
}

// EfficientReturn finds the lowest-volatility weights whose return is target.
func EfficientReturn(m *Model, target, riskFree float64) (*model.Allocation, error) {
	w, err := minimizeWeights(len(m.Symbols), func(w []float64) float64 {
		std, ret := m.Performance(w)
		miss := ret - target
		return std + targetPenalty*miss*miss
	})
	if err != nil {
		return nil, fmt.Errorf("efficient return %.4f: %w", target, err)
	}
	return m.allocation(w, riskFree), nil
}

// FrontierPoint is one target return on the efficient frontier.
type FrontierPoint struct {
	Target     float64
	Volatility float64
	Allocation *model.Allocation
}

// EfficientFrontier solves EfficientReturn for every target.
func EfficientFrontier(m *Model, targets []float64, riskFree float64) ([]FrontierPoint, error) {
	out := make([]FrontierPoint, 0, len(targets))
	for _, t := range targets {
		a, err := EfficientReturn(m, t, riskFree)
		if err != nil {
			return nil, err
		}
		out = append(out, FrontierPoint{Target: t, Volatility: a.Performance.Volatility, Allocation: a})
	}
	return out, nil
}

func (m *Model) allocation(w []float64, riskFree float64) *model.Allocation {
	return &model.Allocation{
		Symbols:     m.Symbols,
		Weights:     w,
		Performance: m.Evaluate(w, riskFree),
	}
}

// CleanWeights zeroes weights below cutoff and rounds the rest to places decimals.
func CleanWeights(w []float64, cutoff float64, places int) []float64 {
	out := make([]float64, len(w))
	scale := math.Pow(10, float64(places))
	for i, v := range w {
		if math.Abs(v) < cutoff {
			continue
		}
		out[i] = math.Round(v*scale) / scale
	}
	return out
}
