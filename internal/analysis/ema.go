package analysis

import (
	"context"
	"fmt"
	"io"
	"math"

	"StockLab/internal/calculator"
	"StockLab/internal/chart"
	"StockLab/internal/model"
	"StockLab/internal/recorder"
)

type EMAOptions struct {
	Symbol     string
	Years      int
	Span       int
	MinPeriods int
	Adjust     bool
}

type EMAResult struct {
	Symbol    string
	Span      int
	Series    *model.PriceSeries
	EMA       []float64
	ChartPath string
}

// Last returns the most recent defined EMA value, or NaN if none is defined.
func (e *EMAResult) Last() float64 {
	for i := len(e.EMA) - 1; i >= 0; i-- {
		if !math.IsNaN(e.EMA[i]) {
			return e.EMA[i]
		}
	}
	return math.NaN()
}

func (r *Runner) RunEMA(ctx context.Context, opts EMAOptions) (*EMAResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start, end := r.Collector.Window(opts.Years)
	series, err := r.Collector.Series(ctx, opts.Symbol, start, end)
	if err != nil {
		return nil, err
	}
	ema, err := calculator.CalculateEMA(series.AdjCloses(), calculator.EMAOptions{
		Span:       opts.Span,
		MinPeriods: opts.MinPeriods,
		Adjust:     opts.Adjust,
	})
	if err != nil {
		return nil, fmt.Errorf("ema %s: %w", opts.Symbol, err)
	}
	res := &EMAResult{Symbol: opts.Symbol, Span: opts.Span, Series: series, EMA: ema}

	doc := chart.NewDocument("EMA " + opts.Symbol)
	doc.AddFigure("", chart.LinePanel{
		Title:  fmt.Sprintf("Stock Closing Price of %d-Day Exponential Moving Average", opts.Span),
		YLabel: "Price",
		XLabel: "Date",
		Times:  series.Times(),
		Series: []chart.Series{
			{Name: "Adj Close", Values: series.AdjCloses()},
			{Name: "EMA", Values: ema},
		},
	})
	doc.AddFigure("", chart.CandlePanel{
		Title:   "Stock " + opts.Symbol + " Closing Price",
		YLabel:  "Price",
		XLabel:  "Date",
		Bars:    series.Bars,
		Overlay: []chart.Series{{Name: "EMA", Values: ema, Color: chart.Orange}},
	})
	if res.ChartPath, err = r.save(doc, "ema_"+opts.Symbol); err != nil {
		return nil, err
	}

	from, to := dateRange(series)
	r.record("ema", func(rec recorder.Recorder) error {
		return rec.RecordRun(&recorder.AnalysisRun{
			Kind: recorder.KindEMA, Symbol: opts.Symbol, Start: from, End: to,
			Value: res.Last(), Mean: calculator.MeanIgnoringNaN(ema), Points: series.Len(),
			ChartPath: res.ChartPath,
		})
	})
	return res, nil
}

func (e *EMAResult) Print(w io.Writer) {
	fmt.Fprintf(w, "%s %d-day EMA: %.4f\n", e.Symbol, e.Span, e.Last())
	tw := newTable(w)
	fmt.Fprintln(tw, "Date\tAdj Close\tEMA\t")
	bars := e.Series.Bars
	for i := max(0, len(bars)-tailRows); i < len(bars); i++ {
		fmt.Fprintf(tw, "%s\t%.2f\t%.4f\t\n", model.DateKey(bars[i].Time), bars[i].AdjClose, e.EMA[i])
	}
	tw.Flush()
	if e.ChartPath != "" {
		fmt.Fprintf(w, "chart: %s\n", e.ChartPath)
	}
}
