package recorder

import "StockLab/internal/model"

// Run kinds stored in analysis_runs.
const (
	KindVWAP       = "vwap"
	KindEMA        = "ema"
	KindVolatility = "volatility"
	KindRelative   = "relative"
)

// AnalysisRun holds the headline figures of one single-series analysis.
type AnalysisRun struct {
	Kind      string
	Symbol    string
	Benchmark string // relative only
	Start     string
	End       string
	Value     float64 // VWAP, last EMA, last RV or last relative
	Mean      float64 // updated VWAP, mean RV, mean % change
	Points    int
	ChartPath string
}

// PortfolioRun records one optimized allocation and its discrete share plan.
type PortfolioRun struct {
	Strategy   string // "max_sharpe" or "min_volatility"
	Allocation *model.Allocation
	Discrete   *model.DiscreteAllocation
}

// Recorder persists analysis history.
type Recorder interface {
	RecordRun(run *AnalysisRun) error
	RecordSnapshot(ind *model.Indicators) error
	RecordSentiment(scores []model.TickerSentiment) error
	RecordPortfolio(run *PortfolioRun) error
	Close() error
}
