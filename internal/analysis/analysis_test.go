package analysis

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLab/internal/calculator"
	"StockLab/internal/collector"
	"StockLab/internal/model"
	"StockLab/internal/recorder"
)

var testNow = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

// randomWalk builds n daily bars with a seeded geometric random walk.
func randomWalk(seed uint64, n int, start, drift, vol float64) []model.OHLCV {
	rng := rand.New(rand.NewPCG(seed, 7))
	bars := make([]model.OHLCV, n)
	p := start
	for i := range bars {
		open := p
		p *= 1 + drift + vol*rng.NormFloat64()
		bars[i] = model.OHLCV{
			Time:     testNow.AddDate(0, 0, i-n),
			Open:     open,
			High:     math.Max(open, p) * 1.01,
			Low:      math.Min(open, p) * 0.99,
			Close:    p,
			AdjClose: p * 0.98,
			Volume:   float64(1_000_000 + rng.IntN(500_000)),
		}
	}
	return bars
}

type spyRecorder struct {
	recorder.NoopRecorder
	runs       []*recorder.AnalysisRun
	snapshots  int
	sentiment  []model.TickerSentiment
	portfolios []*recorder.PortfolioRun
	err        error
}

func (s *spyRecorder) RecordRun(run *recorder.AnalysisRun) error {
	s.runs = append(s.runs, run)
	return s.err
}

func (s *spyRecorder) RecordSnapshot(*model.Indicators) error {
	s.snapshots++
	return s.err
}

func (s *spyRecorder) RecordSentiment(scores []model.TickerSentiment) error {
	s.sentiment = scores
	return s.err
}

func (s *spyRecorder) RecordPortfolio(run *recorder.PortfolioRun) error {
	s.portfolios = append(s.portfolios, run)
	return s.err
}

func newTestRunner(t *testing.T, series map[string][]model.OHLCV) (*Runner, *spyRecorder) {
	t.Helper()
	col := collector.NewCollector(&collector.MockFetcher{Price: 100, Series: series})
	col.Now = func() time.Time { return testNow }
	spy := &spyRecorder{}
	r := NewRunner(col, nil, spy, t.TempDir())
	return r, spy
}

func TestRunVWAP(t *testing.T) {
	bars := randomWalk(1, 250, 150, 0.0005, 0.015)
	r, spy := newTestRunner(t, map[string][]model.OHLCV{"AAPL": bars})

	res, err := r.RunVWAP(context.Background(), VWAPOptions{Symbol: "AAPL", Years: 1})
	require.NoError(t, err)

	want, err := calculator.CalculateVWAP(bars)
	require.NoError(t, err)
	assert.InDelta(t, want, res.VWAP, 1e-9)
	assert.InDelta(t, bars[len(bars)-1].AdjClose, res.Updated.Value, 1e-9)
	assert.Len(t, res.Column, len(bars))
	assert.FileExists(t, res.ChartPath)

	require.Len(t, spy.runs, 1)
	assert.Equal(t, recorder.KindVWAP, spy.runs[0].Kind)
	assert.Equal(t, res.ChartPath, spy.runs[0].ChartPath)

	var out bytes.Buffer
	res.Print(&out)
	assert.Contains(t, out.String(), "AAPL VWAP:")
	assert.Contains(t, out.String(), "[250 rows]")
}

func TestRunVWAP_ZeroVolume(t *testing.T) {
	bars := randomWalk(1, 30, 150, 0, 0.01)
	for i := range bars {
		bars[i].Volume = 0
	}
	r, _ := newTestRunner(t, map[string][]model.OHLCV{"AAPL": bars})
	_, err := r.RunVWAP(context.Background(), VWAPOptions{Symbol: "AAPL", Years: 1})
	assert.ErrorIs(t, err, calculator.ErrZeroVolume)
}

func TestRunEMA(t *testing.T) {
	bars := randomWalk(2, 400, 100, 0.0003, 0.02)
	r, spy := newTestRunner(t, map[string][]model.OHLCV{"AAPL": bars})

	res, err := r.RunEMA(context.Background(), EMAOptions{Symbol: "AAPL", Years: 4, Span: 15, MinPeriods: 15, Adjust: true})
	require.NoError(t, err)
	for i := 0; i < 14; i++ {
		assert.True(t, math.IsNaN(res.EMA[i]), "index %d", i)
	}
	assert.False(t, math.IsNaN(res.EMA[14]))
	assert.False(t, math.IsNaN(res.Last()))
	assert.FileExists(t, res.ChartPath)
	require.Len(t, spy.runs, 1)
	assert.Equal(t, res.Last(), spy.runs[0].Value)
}

func TestRunVolatility_NoCharts(t *testing.T) {
	bars := randomWalk(3, 250, 100, 0, 0.02)
	r, _ := newTestRunner(t, map[string][]model.OHLCV{"AAPL": bars})
	r.Charts = false

	res, err := r.RunVolatility(context.Background(), VolatilityOptions{Symbol: "AAPL", Years: 1, Window: 20})
	require.NoError(t, err)
	assert.Empty(t, res.ChartPath)
	for i, v := range res.RV {
		if i < 20 {
			assert.True(t, math.IsNaN(v), "index %d", i)
			continue
		}
		assert.GreaterOrEqual(t, v, 0.0)
	}
	assert.Greater(t, res.Mean, 0.0)
}

func TestRunRelative_AgainstItself(t *testing.T) {
	bars := randomWalk(4, 200, 100, 0, 0.01)
	r, spy := newTestRunner(t, map[string][]model.OHLCV{"AAPL": bars, "^GSPC": bars})

	res, err := r.RunRelative(context.Background(), RelativeOptions{Symbol: "AAPL", Benchmark: "^GSPC", Years: 1})
	require.NoError(t, err)
	require.Len(t, res.Relative, len(bars))
	assert.True(t, math.IsNaN(res.PctChange[0]))
	for i := 1; i < len(bars); i++ {
		assert.InDelta(t, 1.0, res.Relative[i], 1e-12)
		assert.InDelta(t, 0.0, res.PctChange[i], 1e-12)
	}
	assert.FileExists(t, res.ChartPath)
	require.Len(t, spy.runs, 1)
	assert.Equal(t, "^GSPC", spy.runs[0].Benchmark)
}

func TestRunRelative_NoSharedDates(t *testing.T) {
	a := randomWalk(5, 10, 100, 0, 0.01)
	b := randomWalk(6, 10, 100, 0, 0.01)
	for i := range b {
		b[i].Time = b[i].Time.AddDate(-1, 0, 0)
	}
	r, _ := newTestRunner(t, map[string][]model.OHLCV{"AAPL": a, "^GSPC": b})
	_, err := r.RunRelative(context.Background(), RelativeOptions{Symbol: "AAPL", Benchmark: "^GSPC", Years: 1})
	assert.ErrorIs(t, err, calculator.ErrNoData)
}

type fakeHeadlines map[string][]model.Headline

func (f fakeHeadlines) FetchHeadlines(_ context.Context, ticker string) ([]model.Headline, error) {
	h, ok := f[ticker]
	if !ok {
		return nil, errors.New("news table not found")
	}
	return h, nil
}

func TestRunSentiment(t *testing.T) {
	r, spy := newTestRunner(t, nil)
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	r.Headlines = fakeHeadlines{
		"AAPL": {
			{Ticker: "AAPL", Date: day, Time: "09:00AM", Text: "Apple posts great record quarter"},
			{Ticker: "AAPL", Date: day, Time: "08:00AM", Text: "Apple shares rise on strong demand"},
			{Ticker: "AAPL", Date: day, Time: "07:00AM", Text: "Apple event scheduled"},
			{Ticker: "AAPL", Date: day, Time: "06:00AM", Text: "Apple supplier wins award"},
		},
		"TSLA": {
			{Ticker: "TSLA", Date: day, Time: "10:00AM", Text: "Tesla recall is a terrible failure"},
		},
	}

	res, err := r.RunSentiment(context.Background(), SentimentOptions{Tickers: []string{"AAPL", "TSLA", "AMZN"}, Headlines: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"AMZN"}, res.Skipped)
	assert.Len(t, res.Recent["AAPL"], 3)
	require.Len(t, res.Ranking, 2)
	assert.Equal(t, "AAPL", res.Ranking[0].Ticker)
	assert.Greater(t, res.Ranking[0].MeanCompound, 0.0)
	assert.Less(t, res.Ranking[1].MeanCompound, 0.0)
	assert.Equal(t, res.Ranking, spy.sentiment)

	var out bytes.Buffer
	res.Print(&out)
	assert.Contains(t, out.String(), "Recent News Headlines for AAPL")
	assert.NotContains(t, out.String(), "Recent News Headlines for AMZN")
}

func TestRunSentiment_NoSource(t *testing.T) {
	r, _ := newTestRunner(t, nil)
	_, err := r.RunSentiment(context.Background(), SentimentOptions{Tickers: []string{"AAPL"}, Headlines: 3})
	assert.Error(t, err)
}

func TestRunOptimize(t *testing.T) {
	series := map[string][]model.OHLCV{
		"AAA": randomWalk(10, 300, 50, 0.0010, 0.010),
		"BBB": randomWalk(11, 300, 120, 0.0004, 0.020),
		"CCC": randomWalk(12, 300, 30, 0.0008, 0.030),
	}
	r, spy := newTestRunner(t, series)

	total := decimal.NewFromInt(1000)
	res, err := r.RunOptimize(context.Background(), OptimizeOptions{
		Symbols:          []string{"AAA", "BBB", "CCC"},
		Start:            testNow.AddDate(-2, 0, 0),
		RandomPortfolios: 500,
		RiskFreeRate:     0.021,
		TotalValue:       total,
		FrontierMax:      0.32,
		Seed:             42,
	})
	require.NoError(t, err)

	for _, p := range res.Random {
		assert.GreaterOrEqual(t, res.MaxSharpe.Performance.Sharpe, p.Sharpe-1e-3)
		assert.LessOrEqual(t, res.MinVolatility.Performance.Volatility, p.Volatility+1e-4)
	}
	assert.Len(t, res.Frontier, frontierPoints)
	for _, f := range res.Frontier {
		sum := 0.0
		for _, w := range f.Allocation.Weights {
			assert.GreaterOrEqual(t, w, 0.0)
			assert.LessOrEqual(t, w, 1.0)
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}

	spent := decimal.Zero
	latest := res.Prices.Latest()
	for sym, n := range res.Discrete.Shares {
		spent = spent.Add(decimal.NewFromFloat(latest[sym]).Mul(decimal.NewFromInt(n)))
	}
	assert.True(t, spent.LessThanOrEqual(total))
	assert.False(t, res.Discrete.Leftover.IsNegative())
	assert.FileExists(t, res.ChartPath)
	assert.Len(t, spy.portfolios, 3)

	var out bytes.Buffer
	res.Print(&out)
	assert.Contains(t, out.String(), "Maximum Sharpe Ratio Portfolio Allocation")
	assert.Contains(t, out.String(), "Funds remaining: $")
}

func TestRunSnapshot_RecorderFailureIsNotFatal(t *testing.T) {
	r, spy := newTestRunner(t, nil)
	spy.err = errors.New("disk full")

	res, err := r.RunSnapshot(context.Background(), SnapshotOptions{Symbols: []string{"^GSPC", "AAPL"}, SMAPeriod: 200})
	require.NoError(t, err)
	require.Len(t, res.Indicators, 2)
	assert.Equal(t, 2, spy.snapshots)
	assert.InDelta(t, 100, res.Indicators[0].CurrentPrice, 50)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "relative_AAPL__GSPC", fileName("relative_AAPL_^GSPC"))
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	r, spy := newTestRunner(t, nil)
	ctx := context.Background()

	_, err := r.RunVWAP(ctx, VWAPOptions{Symbol: "AAPL", Years: -1})
	assert.ErrorIs(t, err, ErrInvalidOptions)
	_, err = r.RunEMA(ctx, EMAOptions{Symbol: "AAPL", Years: 1, Span: 15})
	assert.ErrorIs(t, err, ErrInvalidOptions)
	_, err = r.RunVolatility(ctx, VolatilityOptions{Symbol: "AAPL", Years: 1, Window: 1})
	assert.ErrorIs(t, err, ErrInvalidOptions)
	_, err = r.RunRelative(ctx, RelativeOptions{Symbol: "AAPL", Years: 1})
	assert.ErrorIs(t, err, ErrInvalidOptions)
	_, err = r.RunSentiment(ctx, SentimentOptions{Tickers: []string{"AAPL"}, Headlines: -1})
	assert.ErrorIs(t, err, ErrInvalidOptions)
	_, err = r.RunSnapshot(ctx, SnapshotOptions{Symbols: []string{"AAPL"}})
	assert.ErrorIs(t, err, ErrInvalidOptions)
	_, err = r.RunOptimize(ctx, OptimizeOptions{
		Symbols:          []string{"AAA", "BBB"},
		Start:            testNow.AddDate(-1, 0, 0),
		RandomPortfolios: -1,
		TotalValue:       decimal.NewFromInt(1000),
	})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	assert.Empty(t, spy.runs)
}
