package analysis

import (
	"context"
	"fmt"
	"io"

	"StockLab/internal/model"
	"StockLab/internal/recorder"
)

type SnapshotOptions struct {
	Symbols   []string
	SMAPeriod int
}

type SnapshotResult struct {
	Indicators []*model.Indicators
}

// RunSnapshot collects SMA, RSI and range indicators for each symbol.
func (r *Runner) RunSnapshot(ctx context.Context, opts SnapshotOptions) (*SnapshotResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	res := &SnapshotResult{}
	for _, sym := range opts.Symbols {
		ind, err := r.Collector.Collect(ctx, sym, opts.SMAPeriod)
		if err != nil {
			return nil, err
		}
		res.Indicators = append(res.Indicators, ind)
		r.record("snapshot", func(rec recorder.Recorder) error {
			return rec.RecordSnapshot(ind)
		})
	}
	return res, nil
}

func (s *SnapshotResult) Print(w io.Writer) {
	tw := newTable(w)
	fmt.Fprintln(tw, "Symbol\tPrice\tSMA\tRSI(14)\t52w High\t52w Low\t30d High\t30d Low\t52w Pos\t")
	for _, ind := range s.Indicators {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.1f\t%.2f\t%.2f\t%.2f\t%.2f\t%.0f%%\t\n",
			ind.Symbol, ind.CurrentPrice, ind.SMA, ind.RSI,
			ind.High52w, ind.Low52w, ind.High30d, ind.Low30d, ind.Position52w*100)
	}
	tw.Flush()
}
