package analysis

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"StockLab/internal/calculator"
	"StockLab/internal/chart"
	"StockLab/internal/model"
	"StockLab/internal/recorder"
)

type VWAPOptions struct {
	Symbol string
	Years  int
}

// VWAPResult carries the window VWAP, the updated VWAP and the per-row VWAP column.
type VWAPResult struct {
	Symbol    string
	Series    *model.PriceSeries
	VWAP      float64
	Updated   *calculator.UpdatedVWAP
	Column    []float64
	ChartPath string
}

func (r *Runner) RunVWAP(ctx context.Context, opts VWAPOptions) (*VWAPResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start, end := r.Collector.Window(opts.Years)
	series, err := r.Collector.Series(ctx, opts.Symbol, start, end)
	if err != nil {
		return nil, err
	}

	vwap, err := calculator.CalculateVWAP(series.Bars)
	if err != nil {
		return nil, fmt.Errorf("vwap %s: %w", opts.Symbol, err)
	}
	updated, err := calculator.CalculateUpdatedVWAP(series.Bars)
	if err != nil {
		return nil, fmt.Errorf("updated vwap %s: %w", opts.Symbol, err)
	}
	res := &VWAPResult{
		Symbol:  opts.Symbol,
		Series:  series,
		VWAP:    vwap,
		Updated: updated,
		Column:  calculator.VWAPColumn(series.Bars),
	}

	doc := chart.NewDocument("VWAP " + opts.Symbol)
	flat := make([]float64, series.Len())
	for i := range flat {
		flat[i] = vwap
	}
	doc.AddFigure("Stock "+opts.Symbol+" VWAP", chart.LinePanel{
		YLabel: "Price",
		XLabel: "Date",
		Times:  series.Times(),
		Series: []chart.Series{
			{Name: "Adj Close", Values: series.AdjCloses()},
			{Name: "VWAP column", Values: res.Column},
			{Name: "VWAP", Values: flat, Color: chart.Red, Dashed: true},
		},
		Grid: true,
	})
	if res.ChartPath, err = r.save(doc, "vwap_"+opts.Symbol); err != nil {
		return nil, err
	}

	from, to := dateRange(series)
	r.record("vwap", func(rec recorder.Recorder) error {
		return rec.RecordRun(&recorder.AnalysisRun{
			Kind: recorder.KindVWAP, Symbol: opts.Symbol, Start: from, End: to,
			Value: res.VWAP, Mean: res.Updated.Value, Points: series.Len(), ChartPath: res.ChartPath,
		})
	})
	return res, nil
}

// Print writes the VWAP figures and the tail of the table with its VWAP column.
func (v *VWAPResult) Print(w io.Writer) {
	fmt.Fprintf(w, "%s VWAP: %.4f\n", v.Symbol, v.VWAP)
	u := v.Updated
	fmt.Fprintf(w, "%s updated VWAP: %.4f (O %.4f H %.4f L %.4f C %.4f)\n",
		v.Symbol, u.Value, u.Open, u.High, u.Low, u.Close)

	tw := newTable(w)
	fmt.Fprintln(tw, "Date\tOpen\tHigh\tLow\tClose\tAdj Close\tVolume\tVWAP\t")
	bars := v.Series.Bars
	from := max(0, len(bars)-tailRows)
	for i := from; i < len(bars); i++ {
		b := bars[i]
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t%.4f\t\n",
			model.DateKey(b.Time), b.Open, b.High, b.Low, b.Close, b.AdjClose,
			humanize.Comma(int64(b.Volume)), v.Column[i])
	}
	tw.Flush()
	fmt.Fprintf(w, "[%d rows]\n", len(bars))
	if v.ChartPath != "" {
		fmt.Fprintf(w, "chart: %s\n", v.ChartPath)
	}
}
