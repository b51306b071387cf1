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

type VolatilityOptions struct {
	Symbol string
	Years  int
	Window int
}

// VolatilityResult holds the annualised realised volatility in percent, aligned to the bars.
type VolatilityResult struct {
	Symbol    string
	Window    int
	Series    *model.PriceSeries
	RV        []float64
	Mean      float64
	ChartPath string
}

func (v *VolatilityResult) Last() float64 {
	for i := len(v.RV) - 1; i >= 0; i-- {
		if !math.IsNaN(v.RV[i]) {
			return v.RV[i]
		}
	}
	return math.NaN()
}

func (r *Runner) RunVolatility(ctx context.Context, opts VolatilityOptions) (*VolatilityResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start, end := r.Collector.Window(opts.Years)
	series, err := r.Collector.Series(ctx, opts.Symbol, start, end)
	if err != nil {
		return nil, err
	}
	rv, err := calculator.CalculateRealisedVolatility(series.AdjCloses(), opts.Window)
	if err != nil {
		return nil, fmt.Errorf("volatility %s: %w", opts.Symbol, err)
	}
	res := &VolatilityResult{
		Symbol: opts.Symbol,
		Window: opts.Window,
		Series: series,
		RV:     rv,
		Mean:   calculator.MeanIgnoringNaN(rv),
	}

	rvPanel := chart.LinePanel{
		YLabel: "Realised Volatility",
		XLabel: "Date",
		Times:  series.Times(),
		Series: []chart.Series{{Name: "Realised Volatility", Values: rv}},
		HLines: []chart.HLine{{Y: res.Mean, Color: chart.Red}},
		Grid:   true,
	}
	doc := chart.NewDocument("Realised volatility " + opts.Symbol)
	doc.AddFigure("",
		chart.LinePanel{
			Title:  "Stock " + opts.Symbol + " Closing Price",
			YLabel: "Price",
			Times:  series.Times(),
			Series: []chart.Series{{Name: "Adj Close", Values: series.AdjCloses()}},
		},
		rvPanel,
	)
	doc.AddFigure("",
		chart.CandlePanel{Title: "Stock " + opts.Symbol + " Closing Price", YLabel: "Price", Bars: series.Bars},
		rvPanel,
	)
	if res.ChartPath, err = r.save(doc, "volatility_"+opts.Symbol); err != nil {
		return nil, err
	}

	from, to := dateRange(series)
	r.record("volatility", func(rec recorder.Recorder) error {
		return rec.RecordRun(&recorder.AnalysisRun{
			Kind: recorder.KindVolatility, Symbol: opts.Symbol, Start: from, End: to,
			Value: res.Last(), Mean: res.Mean, Points: series.Len(), ChartPath: res.ChartPath,
		})
	})
	return res, nil
}

func (v *VolatilityResult) Print(w io.Writer) {
	fmt.Fprintf(w, "%s %d-day realised volatility: last %.2f%%, mean %.2f%%\n",
		v.Symbol, v.Window, v.Last(), v.Mean)
	tw := newTable(w)
	fmt.Fprintln(tw, "Date\tAdj Close\tRV\t")
	bars := v.Series.Bars
	for i := max(0, len(bars)-tailRows); i < len(bars); i++ {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t\n", model.DateKey(bars[i].Time), bars[i].AdjClose, v.RV[i])
	}
	tw.Flush()
	if v.ChartPath != "" {
		fmt.Fprintf(w, "chart: %s\n", v.ChartPath)
	}
}
