package portfolio

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"StockLab/internal/model"
)

// Allocate converts target weights into whole shares bought with total.
// Shares are first bought by rounding each position down; the remaining
// cash then buys, one share at a time, the affordable asset furthest below
// its target weight.
func Allocate(symbols []string, weights []float64, latest map[string]float64, total decimal.Decimal) (*model.DiscreteAllocation, error) {
	if len(symbols) != len(weights) {
		return nil, fmt.Errorf("allocate: %d symbols, %d weights", len(symbols), len(weights))
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("allocate: total must be positive")
	}

	type position struct {
		symbol string
		weight float64
		price  decimal.Decimal
		shares int64
	}
	var positions []*position
	for i, sym := range symbols {
		if weights[i] <= 0 {
			continue
		}
		p, ok := latest[sym]
		if !ok || p <= 0 {
			return nil, fmt.Errorf("allocate: no latest price for %s", sym)
		}
		positions = append(positions, &position{symbol: sym, weight: weights[i], price: decimal.NewFromFloat(p)})
	}
	sort.SliceStable(positions, func(i, j int) bool { return positions[i].weight > positions[j].weight })

	leftover := total
	for _, p := range positions {
		budget := total.Mul(decimal.NewFromFloat(p.weight))
		n := budget.Div(p.price).Floor()
		cost := n.Mul(p.price)
		if cost.GreaterThan(leftover) {
			n = leftover.Div(p.price).Floor()
			cost = n.Mul(p.price)
		}
		p.shares = n.IntPart()
		leftover = leftover.Sub(cost)
	}

	for {
		var best *position
		bestDeficit := 0.0
		for _, p := range positions {
			if p.price.GreaterThan(leftover) {
				continue
			}
			current, _ := p.price.Mul(decimal.NewFromInt(p.shares)).Div(total).Float64()
			deficit := p.weight - current
			if best == nil || deficit > bestDeficit {
				best, bestDeficit = p, deficit
			}
		}
		if best == nil {
			break
		}
		best.shares++
		leftover = leftover.Sub(best.price)
	}

	out := &model.DiscreteAllocation{Shares: make(map[string]int64), Leftover: leftover}
	for _, p := range positions {
		if p.shares > 0 {
			out.Shares[p.symbol] = p.shares
		}
	}
	return out, nil
}
