package analysis

import (
	"context"
	"fmt"
	"io"
	"time"

	"StockLab/internal/calculator"
	"StockLab/internal/chart"
	"StockLab/internal/collector"
	"StockLab/internal/model"
	"StockLab/internal/recorder"
)

type RelativeOptions struct {
	Symbol    string
	Benchmark string
	Years     int
}

// RelativeResult holds the price relative of Symbol against Benchmark over
// their shared dates, and its day-over-day percent change.
type RelativeResult struct {
	Symbol     string
	Benchmark  string
	Series     *model.PriceSeries
	Times      []time.Time
	Relative   []float64
	PctChange  []float64
	MeanChange float64
	ChartPath  string
}

func (r *Runner) RunRelative(ctx context.Context, opts RelativeOptions) (*RelativeResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start, end := r.Collector.Window(opts.Years)
	sym, err := r.Collector.Series(ctx, opts.Symbol, start, end)
	if err != nil {
		return nil, err
	}
	bench, err := r.Collector.Series(ctx, opts.Benchmark, start, end)
	if err != nil {
		return nil, err
	}
	aligned := collector.Align(collector.FieldAdjClose, sym, bench)
	if len(aligned.Times) == 0 {
		return nil, fmt.Errorf("relative %s/%s: no shared dates: %w", opts.Symbol, opts.Benchmark, calculator.ErrNoData)
	}
	rel, err := calculator.PriceRelative(aligned.Columns[0], aligned.Columns[1])
	if err != nil {
		return nil, fmt.Errorf("relative %s/%s: %w", opts.Symbol, opts.Benchmark, err)
	}
	pct := calculator.PercentChange(rel)
	res := &RelativeResult{
		Symbol:     opts.Symbol,
		Benchmark:  opts.Benchmark,
		Series:     sym,
		Times:      aligned.Times,
		Relative:   rel,
		PctChange:  pct,
		MeanChange: calculator.MeanIgnoringNaN(pct),
	}

	pctPanel := chart.LinePanel{
		YLabel: "Price Relative",
		XLabel: "Date",
		Times:  aligned.Times,
		Series: []chart.Series{{Name: "Price Relative", Values: pct, Color: chart.Ink}},
		Grid:   true,
	}
	doc := chart.NewDocument(fmt.Sprintf("Price relative %s vs %s", opts.Symbol, opts.Benchmark))
	doc.AddFigure("",
		chart.LinePanel{
			Title:  "Stock " + opts.Symbol + " Closing Price",
			YLabel: "Price",
			Times:  sym.Times(),
			Series: []chart.Series{{Name: "Adj Close", Values: sym.AdjCloses()}},
		},
		pctPanel,
	)
	doc.AddFigure("",
		chart.CandlePanel{Title: "Stock " + opts.Symbol + " Closing Price", YLabel: "Price", Bars: sym.Bars},
		pctPanel,
	)
	if res.ChartPath, err = r.save(doc, "relative_"+opts.Symbol+"_"+opts.Benchmark); err != nil {
		return nil, err
	}

	r.record("relative", func(rec recorder.Recorder) error {
		return rec.RecordRun(&recorder.AnalysisRun{
			Kind: recorder.KindRelative, Symbol: opts.Symbol, Benchmark: opts.Benchmark,
			Start: model.DateKey(aligned.Times[0]), End: model.DateKey(aligned.Times[len(aligned.Times)-1]),
			Value: last(rel), Mean: res.MeanChange, Points: len(rel), ChartPath: res.ChartPath,
		})
	})
	return res, nil
}

func (p *RelativeResult) Print(w io.Writer) {
	fmt.Fprintf(w, "%s / %s price relative: %.6f (mean daily change %.4f%%)\n",
		p.Symbol, p.Benchmark, last(p.Relative), p.MeanChange)
	tw := newTable(w)
	fmt.Fprintln(tw, "Date\tPrice Relative\tPercentage Change\t")
	for i := max(0, len(p.Times)-tailRows); i < len(p.Times); i++ {
		fmt.Fprintf(tw, "%s\t%.6f\t%.4f\t\n", model.DateKey(p.Times[i]), p.Relative[i], p.PctChange[i])
	}
	tw.Flush()
	if p.ChartPath != "" {
		fmt.Fprintf(w, "chart: %s\n", p.ChartPath)
	}
}
