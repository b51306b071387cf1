package analysis

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"StockLab/internal/calculator"
	"StockLab/internal/chart"
	"StockLab/internal/collector"
	"StockLab/internal/model"
	"StockLab/internal/portfolio"
	"StockLab/internal/recorder"
)

const frontierPoints = 50

type OptimizeOptions struct {
	Symbols          []string
	Start            time.Time
	RandomPortfolios int
	RiskFreeRate     float64
	TotalValue       decimal.Decimal
	FrontierMax      float64
	Seed             uint64 // 0 draws a fresh seed
}

// OptimizeResult holds the mean-variance optima over daily close returns,
// the random portfolio cloud, and the discrete plan for the
// historical-return max-Sharpe portfolio.
type OptimizeResult struct {
	Prices        *collector.Aligned
	Returns       [][]float64 // per symbol, first day dropped
	MaxSharpe     *model.Allocation
	MinVolatility *model.Allocation
	Individual    []model.AssetStats
	Random        []portfolio.RandomResult
	Frontier      []portfolio.FrontierPoint

	Historical *model.Allocation // cleaned weights
	Discrete   *model.DiscreteAllocation
	ChartPath  string
}

func (r *Runner) RunOptimize(ctx context.Context, opts OptimizeOptions) (*OptimizeResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	end := r.Collector.Now().UTC()
	prices, err := r.Collector.FetchAligned(ctx, opts.Symbols, opts.Start, end, collector.FieldClose)
	if err != nil {
		return nil, err
	}
	stats, err := portfolio.NewStats(prices.Symbols, prices.Columns)
	if err != nil {
		return nil, fmt.Errorf("portfolio returns: %w", err)
	}

	daily := stats.DailyModel()
	maxSharpe, err := portfolio.MaxSharpe(daily, opts.RiskFreeRate)
	if err != nil {
		return nil, fmt.Errorf("max sharpe: %w", err)
	}
	minVol, err := portfolio.MinVariance(daily, opts.RiskFreeRate)
	if err != nil {
		return nil, fmt.Errorf("min volatility: %w", err)
	}
	frontier, err := portfolio.EfficientFrontier(daily,
		portfolio.Linspace(minVol.Performance.Return, opts.FrontierMax, frontierPoints), opts.RiskFreeRate)
	if err != nil {
		return nil, fmt.Errorf("efficient frontier: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	random, err := portfolio.RandomPortfolios(daily, opts.RandomPortfolios, opts.RiskFreeRate, rng)
	if err != nil {
		return nil, err
	}

	res := &OptimizeResult{
		Prices:        prices,
		MaxSharpe:     maxSharpe,
		MinVolatility: minVol,
		Individual:    stats.Individual(),
		Random:        random,
		Frontier:      frontier,
	}
	for _, col := range prices.Columns {
		res.Returns = append(res.Returns, calculator.PctChange(col)[1:])
	}

	hist := stats.HistoricalModel()
	raw, err := portfolio.MaxSharpe(hist, opts.RiskFreeRate)
	if err != nil {
		return nil, fmt.Errorf("historical max sharpe: %w", err)
	}
	cleaned := portfolio.CleanWeights(raw.Weights, 1e-4, 5)
	res.Historical = &model.Allocation{
		Symbols:     prices.Symbols,
		Weights:     cleaned,
		Performance: hist.Evaluate(cleaned, opts.RiskFreeRate),
	}
	res.Discrete, err = portfolio.Allocate(prices.Symbols, cleaned, prices.Latest(), opts.TotalValue)
	if err != nil {
		return nil, fmt.Errorf("discrete allocation: %w", err)
	}

	if r.Charts {
		wide, err := portfolio.EfficientFrontier(daily,
			portfolio.Linspace(minVol.Performance.Return, opts.FrontierMax+0.02, frontierPoints), opts.RiskFreeRate)
		if err != nil {
			return nil, fmt.Errorf("efficient frontier: %w", err)
		}
		if res.ChartPath, err = r.save(res.document(wide), "portfolio_"+strings.Join(prices.Symbols, "_")); err != nil {
			return nil, err
		}
	}

	r.record("portfolio", func(rec recorder.Recorder) error {
		for _, run := range []*recorder.PortfolioRun{
			{Strategy: "max_sharpe", Allocation: maxSharpe},
			{Strategy: "min_volatility", Allocation: minVol},
			{Strategy: "historical_max_sharpe", Allocation: res.Historical, Discrete: res.Discrete},
		} {
			if err := rec.RecordPortfolio(run); err != nil {
				return err
			}
		}
		return nil
	})
	return res, nil
}

func (o *OptimizeResult) document(wide []portfolio.FrontierPoint) *chart.Document {
	doc := chart.NewDocument("Portfolio optimization")

	returns := make([]chart.Series, len(o.Prices.Symbols))
	for i, sym := range o.Prices.Symbols {
		returns[i] = chart.Series{Name: sym, Values: o.Returns[i]}
	}
	doc.AddFigure("", chart.LinePanel{
		YLabel: "Daily Returns",
		Times:  o.Prices.Times[1:],
		Series: returns,
		HLines: []chart.HLine{{Y: 0, Color: chart.Black, Width: 0.7}},
		Grid:   true,
	})

	stars := []chart.Marker{
		{X: o.MaxSharpe.Performance.Volatility, Y: o.MaxSharpe.Performance.Return, Color: chart.Red, Label: "Maximum Sharpe ratio"},
		{X: o.MinVolatility.Performance.Volatility, Y: o.MinVolatility.Performance.Return, Color: chart.Green, Label: "Minimum volatility"},
	}

	cloud := make([]chart.Point, len(o.Random))
	for i, p := range o.Random {
		cloud[i] = chart.Point{X: p.Volatility, Y: p.Return, C: p.Sharpe}
	}
	doc.AddFigure("", chart.ScatterPanel{
		Title:      "Calculated Portfolio Optimization based on Efficient Frontier",
		XLabel:     "annualised volatility",
		YLabel:     "annualised returns",
		Points:     cloud,
		ColorScale: true,
		ColorLabel: "Sharpe ratio",
		Markers:    stars,
		Lines:      []chart.XYLine{frontierLine(o.Frontier)},
	})

	assets := make([]chart.Point, len(o.Individual))
	for i, a := range o.Individual {
		assets[i] = chart.Point{X: a.Volatility, Y: a.Return, Label: a.Symbol}
	}
	doc.AddFigure("", chart.ScatterPanel{
		Title:     "Portfolio Optimization with Individual Stocks",
		XLabel:    "annualised volatility",
		YLabel:    "annualised returns",
		Points:    assets,
		PointSize: 2,
		Markers:   stars,
		Lines:     []chart.XYLine{frontierLine(wide)},
	})
	return doc
}

func frontierLine(points []portfolio.FrontierPoint) chart.XYLine {
	line := chart.XYLine{Name: "efficient frontier", Color: chart.Ink, Dashed: true}
	for _, p := range points {
		line.X = append(line.X, p.Volatility)
		line.Y = append(line.Y, p.Target)
	}
	return line
}

func (o *OptimizeResult) Print(w io.Writer) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Date\t%s\t\n", strings.Join(o.Prices.Symbols, "\t"))
	for i := max(0, len(o.Prices.Times)-tailRows); i < len(o.Prices.Times); i++ {
		fmt.Fprint(tw, model.DateKey(o.Prices.Times[i]), "\t")
		for _, col := range o.Prices.Columns {
			fmt.Fprintf(tw, "%.2f\t", col[i])
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()

	rule := strings.Repeat("-", 80)
	printAllocation(w, rule, "Maximum Sharpe Ratio Portfolio Allocation", o.MaxSharpe)
	printAllocation(w, rule, "Minimum Volatility Portfolio Allocation", o.MinVolatility)
	fmt.Fprintln(w, rule)
	fmt.Fprint(w, "Individual Stock Returns and Volatility\n\n")
	for _, a := range o.Individual {
		fmt.Fprintf(w, "%s : annualised return %.2f , annualised volatility: %.2f\n", a.Symbol, a.Return, a.Volatility)
	}
	fmt.Fprintln(w, rule)

	p := o.Historical.Performance
	fmt.Fprintf(w, "Expected annual return: %.1f%%\n", p.Return*100)
	fmt.Fprintf(w, "Annual volatility: %.1f%%\n", p.Volatility*100)
	fmt.Fprintf(w, "Sharpe Ratio: %.2f\n", p.Sharpe)

	symbols := make([]string, 0, len(o.Discrete.Shares))
	for s := range o.Discrete.Shares {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	parts := make([]string, len(symbols))
	for i, s := range symbols {
		parts[i] = fmt.Sprintf("%s: %d", s, o.Discrete.Shares[s])
	}
	fmt.Fprintf(w, "Discrete allocation: {%s}\n", strings.Join(parts, ", "))
	fmt.Fprintf(w, "Funds remaining: $%s\n", o.Discrete.Leftover.StringFixed(2))
	if o.ChartPath != "" {
		fmt.Fprintf(w, "chart: %s\n", o.ChartPath)
	}
}

func printAllocation(w io.Writer, rule, title string, a *model.Allocation) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%s\n\n", title)
	fmt.Fprintf(w, "Annualised Return: %.2f\n", a.Performance.Return)
	fmt.Fprintf(w, "Annualised Volatility: %.2f\n\n", a.Performance.Volatility)
	tw := newTable(w)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(a.Symbols, "\t"))
	fmt.Fprint(tw, "allocation\t")
	for _, v := range a.Weights {
		fmt.Fprintf(tw, "%.2f\t", v*100)
	}
	fmt.Fprintln(tw)
	tw.Flush()
}
