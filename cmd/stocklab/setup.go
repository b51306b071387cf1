package main

import (
	"fmt"
	"os"

	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"StockLab/internal/analysis"
	"StockLab/internal/cache"
	"StockLab/internal/collector"
	"StockLab/internal/config"
	"StockLab/internal/recorder"
	"StockLab/internal/scheduler"
	"StockLab/internal/sentiment"
)

// stocklab holds what every subcommand shares once config is loaded.
type stocklab struct {
	cfg     *config.Config
	options scheduler.Options
	runner  *analysis.Runner
	closers []func() error
}

func (s *stocklab) before(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := c.String("out"); v != "" {
		cfg.Output.Dir = v
	}
	setupLogger(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	s.cfg = cfg

	if s.options, err = optionsFromConfig(cfg); err != nil {
		return err
	}
	if err := s.options.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	fetcher := s.newFetcher()
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	scraper := sentiment.NewScraper(cfg.Sentiment.UserAgent, 1)
	if cfg.Sentiment.BaseURL != "" {
		scraper.BaseURL = cfg.Sentiment.BaseURL
	}

	s.runner = analysis.NewRunner(collector.NewCollector(fetcher), scraper, s.newRecorder(), cfg.Output.Dir)
	s.runner.Charts = !c.Bool("no-chart")
	return nil
}

func (s *stocklab) after(*cli.Context) error {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close")
		}
	}
	s.closers = nil
	return nil
}

func setupLogger(level string) {
	log.DefaultLogger = log.Logger{
		Level:      log.ParseLevel(level),
		Caller:     1,
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			Writer:      os.Stderr,
			ColorOutput: log.IsTerminal(os.Stderr.Fd()),
		},
	}
}

// newFetcher builds the configured provider, behind the Redis cache when one is reachable.
func (s *stocklab) newFetcher() collector.Fetcher {
	cfg := s.cfg
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "rest":
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.RatePerSec)
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.RatePerSec)
	}

	if cfg.Cache.RedisAddr == "" {
		return fetcher
	}
	rc, err := cache.NewRedisClient(cfg.Cache.RedisAddr, cfg.Cache.Password, cfg.Cache.DB)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("redis unavailable, fetching without cache")
		return fetcher
	}
	s.closers = append(s.closers, rc.Close)
	return collector.NewCachedFetcher(fetcher, rc, cfg.Cache.TTL)
}

func (s *stocklab) newRecorder() recorder.Recorder {
	if s.cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(s.cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	s.closers = append(s.closers, sr.Close)
	return sr
}

func optionsFromConfig(cfg *config.Config) (scheduler.Options, error) {
	start, err := cfg.PortfolioStart()
	if err != nil {
		return scheduler.Options{}, err
	}
	a := cfg.Analysis
	return scheduler.Options{
		VWAP: analysis.VWAPOptions{Symbol: a.VWAP.Symbol, Years: a.VWAP.Years},
		EMA: analysis.EMAOptions{
			Symbol:     a.EMA.Symbol,
			Years:      a.EMA.Years,
			Span:       a.EMA.Span,
			MinPeriods: a.EMA.MinPeriods,
			Adjust:     *a.EMA.Adjust,
		},
		Volatility: analysis.VolatilityOptions{Symbol: a.Volatility.Symbol, Years: a.Volatility.Years, Window: a.Volatility.Window},
		Relative:   analysis.RelativeOptions{Symbol: a.Relative.Symbol, Benchmark: a.Relative.Benchmark, Years: a.Relative.Years},
		Snapshot:   analysis.SnapshotOptions{Symbols: a.Snapshot.Symbols, SMAPeriod: a.Snapshot.SMAPeriod},
		Sentiment:  analysis.SentimentOptions{Tickers: cfg.Sentiment.Tickers, Headlines: cfg.Sentiment.Headlines},
		Optimize: analysis.OptimizeOptions{
			Symbols:          cfg.Portfolio.Symbols,
			Start:            start,
			RandomPortfolios: cfg.Portfolio.RandomPortfolios,
			RiskFreeRate:     cfg.Portfolio.RiskFreeRate,
			TotalValue:       decimalOf(cfg.Portfolio.TotalValue),
			FrontierMax:      cfg.Portfolio.FrontierMax,
			Seed:             cfg.Portfolio.Seed,
		},
	}, nil
}

func decimalOf(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
