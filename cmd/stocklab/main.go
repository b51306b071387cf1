package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/phuslu/log"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := newApp()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("stocklab failed")
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	s := &stocklab{}
	return &cli.App{
		Name:  "stocklab",
		Usage: "single-purpose market analyses: VWAP, EMA, volatility, price relative, news sentiment, portfolio optimization",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "configs/config.yaml", EnvVars: []string{"CONFIG_PATH"}, Usage: "YAML config file"},
			&cli.StringFlag{Name: "log-level", Usage: "override log.level (debug, info, warn, error)"},
			&cli.StringFlag{Name: "out", Usage: "override output.dir for chart PDFs"},
			&cli.BoolFlag{Name: "no-chart", Usage: "skip rendering chart PDFs"},
		},
		Before: s.before,
		After:  s.after,
		Commands: []*cli.Command{
			{
				Name:  "vwap",
				Usage: "volume weighted average price, updated VWAP and per-row VWAP column",
				Flags: []cli.Flag{symbolFlag(), yearsFlag()},
				Action: func(c *cli.Context) error {
					opts := s.options.VWAP
					setString(c, "symbol", &opts.Symbol)
					setInt(c, "years", &opts.Years)
					res, err := s.runner.RunVWAP(c.Context, opts)
					if err != nil {
						return err
					}
					res.Print(c.App.Writer)
					return nil
				},
			},
			{
				Name:  "ema",
				Usage: "exponential moving average of the adjusted close",
				Flags: []cli.Flag{
					symbolFlag(), yearsFlag(),
					&cli.IntFlag{Name: "span", Usage: "EMA span in days"},
					&cli.IntFlag{Name: "min-periods", Usage: "observations required before the EMA is defined"},
					&cli.BoolFlag{Name: "no-adjust", Usage: "use the recursive (adjust=false) form"},
				},
				Action: func(c *cli.Context) error {
					opts := s.options.EMA
					setString(c, "symbol", &opts.Symbol)
					setInt(c, "years", &opts.Years)
					if c.IsSet("span") {
						opts.Span = c.Int("span")
						if !c.IsSet("min-periods") {
							opts.MinPeriods = opts.Span
						}
					}
					setInt(c, "min-periods", &opts.MinPeriods)
					if c.Bool("no-adjust") {
						opts.Adjust = false
					}
					res, err := s.runner.RunEMA(c.Context, opts)
					if err != nil {
						return err
					}
					res.Print(c.App.Writer)
					return nil
				},
			},
			{
				Name:  "volatility",
				Usage: "annualised realised volatility in percent",
				Flags: []cli.Flag{symbolFlag(), yearsFlag(), &cli.IntFlag{Name: "window", Usage: "rolling window in days"}},
				Action: func(c *cli.Context) error {
					opts := s.options.Volatility
					setString(c, "symbol", &opts.Symbol)
					setInt(c, "years", &opts.Years)
					setInt(c, "window", &opts.Window)
					res, err := s.runner.RunVolatility(c.Context, opts)
					if err != nil {
						return err
					}
					res.Print(c.App.Writer)
					return nil
				},
			},
			{
				Name:  "relative",
				Usage: "price relative of a symbol against a benchmark",
				Flags: []cli.Flag{symbolFlag(), yearsFlag(), &cli.StringFlag{Name: "benchmark", Aliases: []string{"b"}, Usage: "benchmark symbol"}},
				Action: func(c *cli.Context) error {
					opts := s.options.Relative
					setString(c, "symbol", &opts.Symbol)
					setString(c, "benchmark", &opts.Benchmark)
					setInt(c, "years", &opts.Years)
					res, err := s.runner.RunRelative(c.Context, opts)
					if err != nil {
						return err
					}
					res.Print(c.App.Writer)
					return nil
				},
			},
			{
				Name:  "sentiment",
				Usage: "finviz headline sentiment per ticker",
				Flags: []cli.Flag{tickersFlag(), &cli.IntFlag{Name: "headlines", Usage: "recent headlines printed per ticker"}},
				Action: func(c *cli.Context) error {
					opts := s.options.Sentiment
					setList(c, "tickers", &opts.Tickers)
					setInt(c, "headlines", &opts.Headlines)
					res, err := s.runner.RunSentiment(c.Context, opts)
					if err != nil {
						return err
					}
					res.Print(c.App.Writer)
					return nil
				},
			},
			{
				Name:  "optimize",
				Usage: "max-Sharpe, min-volatility and efficient frontier with a discrete share plan",
				Flags: []cli.Flag{
					tickersFlag(),
					&cli.TimestampFlag{Name: "start", Layout: "2006-01-02", Usage: "first price date"},
					&cli.IntFlag{Name: "portfolios", Usage: "random portfolios to draw"},
					&cli.Float64Flag{Name: "total", Usage: "total portfolio value"},
					&cli.Uint64Flag{Name: "seed", Usage: "random seed (0 draws one)"},
				},
				Action: func(c *cli.Context) error {
					opts := s.options.Optimize
					setList(c, "tickers", &opts.Symbols)
					if t := c.Timestamp("start"); t != nil {
						opts.Start = *t
					}
					setInt(c, "portfolios", &opts.RandomPortfolios)
					if c.IsSet("total") {
						opts.TotalValue = decimalOf(c.Float64("total"))
					}
					if c.IsSet("seed") {
						opts.Seed = c.Uint64("seed")
					}
					res, err := s.runner.RunOptimize(c.Context, opts)
					if err != nil {
						return err
					}
					res.Print(c.App.Writer)
					return nil
				},
			},
			{
				Name:  "snapshot",
				Usage: "price, SMA, RSI and 52-week / 30-day ranges",
				Flags: []cli.Flag{tickersFlag(), &cli.IntFlag{Name: "sma", Usage: "SMA period"}},
				Action: func(c *cli.Context) error {
					opts := s.options.Snapshot
					setList(c, "tickers", &opts.Symbols)
					setInt(c, "sma", &opts.SMAPeriod)
					res, err := s.runner.RunSnapshot(c.Context, opts)
					if err != nil {
						return err
					}
					res.Print(c.App.Writer)
					return nil
				},
			},
			{
				Name:   "serve",
				Usage:  "run scheduled analyses and answer Telegram commands until interrupted",
				Action: s.serve,
			},
		},
	}
}

func symbolFlag() cli.Flag {
	return &cli.StringFlag{Name: "symbol", Aliases: []string{"s"}, Usage: "ticker symbol"}
}

func yearsFlag() cli.Flag {
	return &cli.IntFlag{Name: "years", Aliases: []string{"y"}, Usage: "years of history"}
}

func tickersFlag() cli.Flag {
	return &cli.StringSliceFlag{Name: "tickers", Aliases: []string{"t"}, Usage: "comma separated tickers"}
}

func setString(c *cli.Context, name string, dst *string) {
	if c.IsSet(name) {
		*dst = c.String(name)
	}
}

func setInt(c *cli.Context, name string, dst *int) {
	if c.IsSet(name) {
		*dst = c.Int(name)
	}
}

func setList(c *cli.Context, name string, dst *[]string) {
	if c.IsSet(name) {
		*dst = c.StringSlice(name)
	}
}
