// Package analysis runs each market analysis end to end: fetch prices,
// compute, render charts, record history and return a printable result.
package analysis

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/phuslu/log"

	"StockLab/internal/chart"
	"StockLab/internal/collector"
	"StockLab/internal/model"
	"StockLab/internal/recorder"
	"StockLab/internal/sentiment"
)

// HeadlineSource loads the news rows of one ticker.
type HeadlineSource interface {
	FetchHeadlines(ctx context.Context, ticker string) ([]model.Headline, error)
}

// Runner holds the dependencies shared by every analysis.
type Runner struct {
	Collector *collector.Collector
	Headlines HeadlineSource
	Analyzer  *sentiment.Analyzer
	Recorder  recorder.Recorder
	OutputDir string
	Charts    bool
}

// NewRunner wires a runner; a nil recorder is replaced by a NoopRecorder.
func NewRunner(col *collector.Collector, headlines HeadlineSource, rec recorder.Recorder, outputDir string) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Runner{
		Collector: col,
		Headlines: headlines,
		Analyzer:  sentiment.NewAnalyzer(),
		Recorder:  rec,
		OutputDir: outputDir,
		Charts:    true,
	}
}

// save writes doc to <OutputDir>/<name>.pdf and returns the path, or "" when
// charts are disabled.
func (r *Runner) save(doc *chart.Document, name string) (string, error) {
	if !r.Charts {
		return "", nil
	}
	path := filepath.Join(r.OutputDir, fileName(name)+".pdf")
	if err := doc.Save(path); err != nil {
		return "", err
	}
	log.Info().Str("path", path).Int("pages", doc.Pages()).Msg("chart written")
	return path, nil
}

// record runs fn and only logs its error; history is never allowed to fail an analysis.
func (r *Runner) record(what string, fn func(recorder.Recorder) error) {
	if err := fn(r.Recorder); err != nil {
		log.Warn().Err(err).Str("record", what).Msg("record history failed")
	}
}

func fileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '^', '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, name)
}

func dateRange(series *model.PriceSeries) (string, string) {
	if series.Len() == 0 {
		return "", ""
	}
	return model.DateKey(series.Bars[0].Time), model.DateKey(series.Last().Time)
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
