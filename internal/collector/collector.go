package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/phuslu/log"

	"StockLab/internal/calculator"
	"StockLab/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Series map[string][]model.OHLCV
	Err    error
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.Series[symbol]; ok {
		return &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}, nil
	}
	days := int(end.Sub(start).Hours() / 24)
	return &model.PriceSeries{Symbol: symbol, Bars: GenerateMockBars(m.Price, days, end), FetchedAt: time.Now()}, nil
}

// GenerateMockBars produces count daily bars ending just before end.
func GenerateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:     end.AddDate(0, 0, -(count - i)),
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			AdjClose: p,
			Volume:   1000000,
		}
	}
	return bars
}

// Field selects which price column is used when aligning series.
type Field int

const (
	FieldAdjClose Field = iota
	FieldClose
)

// Aligned holds one price column per symbol over the dates all symbols share.
type Aligned struct {
	Symbols []string
	Times   []time.Time
	Columns [][]float64 // Columns[i] is the series for Symbols[i]
}

// Column returns the series for symbol, or nil.
func (a *Aligned) Column(symbol string) []float64 {
	for i, s := range a.Symbols {
		if s == symbol {
			return a.Columns[i]
		}
	}
	return nil
}

// Latest returns the last aligned price per symbol.
func (a *Aligned) Latest() map[string]float64 {
	out := make(map[string]float64, len(a.Symbols))
	for i, s := range a.Symbols {
		if col := a.Columns[i]; len(col) > 0 {
			out[s] = col[len(col)-1]
		}
	}
	return out
}

// Align joins series on calendar date, keeping only dates present in every series.
func Align(field Field, series ...*model.PriceSeries) *Aligned {
	counts := make(map[string]int)
	times := make(map[string]time.Time)
	for _, s := range series {
		seen := make(map[string]bool)
		for _, b := range s.Bars {
			k := model.DateKey(b.Time)
			if seen[k] {
				continue
			}
			seen[k] = true
			counts[k]++
			if _, ok := times[k]; !ok {
				times[k] = b.Time
			}
		}
	}
	var keys []string
	for k, n := range counts {
		if n == len(series) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &Aligned{Times: make([]time.Time, len(keys))}
	for i, k := range keys {
		out.Times[i] = times[k]
	}
	for _, s := range series {
		byDate := make(map[string]float64, len(s.Bars))
		for _, b := range s.Bars {
			v := b.AdjClose
			if field == FieldClose {
				v = b.Close
			}
			byDate[model.DateKey(b.Time)] = v
		}
		col := make([]float64, len(keys))
		for i, k := range keys {
			col[i] = byDate[k]
		}
		out.Symbols = append(out.Symbols, s.Symbol)
		out.Columns = append(out.Columns, col)
	}
	return out
}

// Collector orchestrates data fetching for the analyses.
type Collector struct {
	Fetcher Fetcher
	Now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher, Now: time.Now}
}

// Window returns [today - years, today].
func (c *Collector) Window(years int) (start, end time.Time) {
	end = c.Now().UTC().Truncate(24 * time.Hour)
	return end.AddDate(0, 0, -365*years), end
}

// Series fetches one symbol over the window and rejects empty results.
func (c *Collector) Series(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	s, err := c.Fetcher.FetchBars(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("fetch %s: %w", symbol, calculator.ErrNoData)
	}
	return s, nil
}

// FetchAligned fetches every symbol and aligns them on shared dates.
func (c *Collector) FetchAligned(ctx context.Context, symbols []string, start, end time.Time, field Field) (*Aligned, error) {
	series := make([]*model.PriceSeries, 0, len(symbols))
	for _, sym := range symbols {
		s, err := c.Series(ctx, sym, start, end)
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	a := Align(field, series...)
	if len(a.Times) == 0 {
		return nil, fmt.Errorf("align %v: no shared dates: %w", symbols, calculator.ErrNoData)
	}
	return a, nil
}

// Collect fetches a year of daily bars and computes the snapshot indicators,
// falling back to neutral values where a calculation lacks data.
func (c *Collector) Collect(ctx context.Context, symbol string, smaPeriod int) (*model.Indicators, error) {
	start, end := c.Window(1)
	series, err := c.Series(ctx, symbol, start.AddDate(0, 0, -smaPeriod*2), end)
	if err != nil {
		return nil, err
	}
	bars := series.Bars
	closes := series.AdjCloses()
	currentPrice := closes[len(closes)-1]

	ind := &model.Indicators{Symbol: symbol, CurrentPrice: currentPrice, SMAPeriod: smaPeriod}

	if ma, err := calculator.CalculateSMA(closes, smaPeriod); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("SMA calculation failed, using current price")
		ind.SMA = currentPrice
	} else {
		ind.SMA = ma
	}

	if rsi, err := calculator.CalculateRSI(closes, 14); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("RSI calculation failed, defaulting to 50")
		ind.RSI = 50
	} else {
		ind.RSI = rsi
	}

	if h, l, err := calculator.CalculateRange(bars, calculator.TradingDays52w); err != nil {
		log.Warn().Err(err).Msg("52-week range calculation failed")
		ind.High52w, ind.Low52w = currentPrice, currentPrice
	} else {
		ind.High52w, ind.Low52w = h, l
	}

	if h, l, err := calculator.CalculateRange(bars, calculator.TradingDays30d); err != nil {
		log.Warn().Err(err).Msg("30-day range calculation failed")
		ind.High30d, ind.Low30d = currentPrice, currentPrice
	} else {
		ind.High30d, ind.Low30d = h, l
	}

	if pos, err := calculator.CalculatePosition(currentPrice, ind.High52w, ind.Low52w); err != nil {
		log.Warn().Err(err).Msg("52-week position calculation failed")
		ind.Position52w = 0.5
	} else {
		ind.Position52w = pos
	}

	return ind, nil
}
