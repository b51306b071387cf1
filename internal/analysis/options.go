package analysis

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidOptions is returned by every Run* when its options cannot run.
var ErrInvalidOptions = errors.New("invalid options")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidOptions)
}

func (o VWAPOptions) Validate() error {
	if o.Symbol == "" {
		return invalid("vwap: symbol is required")
	}
	if o.Years < 1 {
		return invalid("vwap: years must be positive, got %d", o.Years)
	}
	return nil
}

func (o EMAOptions) Validate() error {
	switch {
	case o.Symbol == "":
		return invalid("ema: symbol is required")
	case o.Years < 1:
		return invalid("ema: years must be positive, got %d", o.Years)
	case o.Span < 1:
		return invalid("ema: span must be positive, got %d", o.Span)
	case o.MinPeriods < 1:
		return invalid("ema: min periods must be positive, got %d", o.MinPeriods)
	}
	return nil
}

func (o VolatilityOptions) Validate() error {
	switch {
	case o.Symbol == "":
		return invalid("volatility: symbol is required")
	case o.Years < 1:
		return invalid("volatility: years must be positive, got %d", o.Years)
	case o.Window < 2:
		return invalid("volatility: window must be at least 2, got %d", o.Window)
	}
	return nil
}

func (o RelativeOptions) Validate() error {
	switch {
	case o.Symbol == "" || o.Benchmark == "":
		return invalid("relative: symbol and benchmark are required")
	case o.Years < 1:
		return invalid("relative: years must be positive, got %d", o.Years)
	}
	return nil
}

func (o SentimentOptions) Validate() error {
	if len(o.Tickers) == 0 {
		return invalid("sentiment: no tickers")
	}
	if o.Headlines < 1 {
		return invalid("sentiment: headlines must be positive, got %d", o.Headlines)
	}
	return nil
}

func (o OptimizeOptions) Validate() error {
	switch {
	case len(o.Symbols) < 2:
		return invalid("optimize: needs at least two symbols, got %d", len(o.Symbols))
	case o.Start.IsZero():
		return invalid("optimize: start date is required")
	case o.RandomPortfolios < 0:
		return invalid("optimize: random portfolios must not be negative, got %d", o.RandomPortfolios)
	case !o.TotalValue.IsPositive():
		return invalid("optimize: total value must be positive, got %s", o.TotalValue)
	case math.IsNaN(o.RiskFreeRate) || math.IsInf(o.RiskFreeRate, 0):
		return invalid("optimize: risk free rate must be finite")
	case o.FrontierMax < 0:
		return invalid("optimize: frontier max must not be negative")
	}
	return nil
}

func (o SnapshotOptions) Validate() error {
	if len(o.Symbols) == 0 {
		return invalid("snapshot: no symbols")
	}
	if o.SMAPeriod < 1 {
		return invalid("snapshot: SMA period must be positive, got %d", o.SMAPeriod)
	}
	return nil
}
