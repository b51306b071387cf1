package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider   string  `yaml:"provider"` // yahoo | rest
		BaseURL    string  `yaml:"base_url"`
		APIKey     string  `yaml:"api_key"`
		RatePerSec float64 `yaml:"rate_per_sec"`
	} `yaml:"data_source"`
	Analysis struct {
		VWAP struct {
			Symbol string `yaml:"symbol"`
			Years  int    `yaml:"years"`
		} `yaml:"vwap"`
		EMA struct {
			Symbol     string `yaml:"symbol"`
			Years      int    `yaml:"years"`
			Span       int    `yaml:"span"`
			MinPeriods int    `yaml:"min_periods"`
			Adjust     *bool  `yaml:"adjust"`
		} `yaml:"ema"`
		Volatility struct {
			Symbol string `yaml:"symbol"`
			Years  int    `yaml:"years"`
			Window int    `yaml:"window"`
		} `yaml:"volatility"`
		Relative struct {
			Symbol    string `yaml:"symbol"`
			Benchmark string `yaml:"benchmark"`
			Years     int    `yaml:"years"`
		} `yaml:"relative"`
		Snapshot struct {
			Symbols   []string `yaml:"symbols"`
			SMAPeriod int      `yaml:"sma_period"`
		} `yaml:"snapshot"`
	} `yaml:"analysis"`
	Sentiment struct {
		Tickers   []string `yaml:"tickers"`
		Headlines int      `yaml:"headlines"`
		UserAgent string   `yaml:"user_agent"`
		BaseURL   string   `yaml:"base_url"`
	} `yaml:"sentiment"`
	Portfolio struct {
		Symbols          []string `yaml:"symbols"`
		Start            string   `yaml:"start"`
		RandomPortfolios int      `yaml:"random_portfolios"`
		RiskFreeRate     float64  `yaml:"risk_free_rate"`
		TotalValue       float64  `yaml:"total_value"`
		FrontierMax      float64  `yaml:"frontier_max"`
		Seed             uint64   `yaml:"seed"`
	} `yaml:"portfolio"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Cache struct {
		RedisAddr string        `yaml:"redis_addr"`
		Password  string        `yaml:"password"`
		DB        int           `yaml:"db"`
		TTL       time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		SnapshotCron  string `yaml:"snapshot_cron"`
		SentimentCron string `yaml:"sentiment_cron"`
		OptimizeCron  string `yaml:"optimize_cron"`
	} `yaml:"schedule"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then .env, then environment variable
// overrides, then fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; variables already set in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("DATA_PROVIDER", &c.DataSource.Provider)
	setString("DATA_BASE_URL", &c.DataSource.BaseURL)
	setString("DATA_API_KEY", &c.DataSource.APIKey)
	setString("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	setString("HTTPS_PROXY", &c.Proxy)
	setString("SQLITE_PATH", &c.Database.SQLitePath)
	setString("REDIS_ADDR", &c.Cache.RedisAddr)
	setString("REDIS_PASSWORD", &c.Cache.Password)
	setString("OUTPUT_DIR", &c.Output.Dir)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("FINVIZ_USER_AGENT", &c.Sentiment.UserAgent)

	if v := os.Getenv("SENTIMENT_TICKERS"); v != "" {
		c.Sentiment.Tickers = splitList(v)
	}
	if v := os.Getenv("PORTFOLIO_SYMBOLS"); v != "" {
		c.Portfolio.Symbols = splitList(v)
	}
	if v := os.Getenv("PORTFOLIO_TOTAL_VALUE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Portfolio.TotalValue = f
		}
	}
	if v := os.Getenv("PORTFOLIO_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Portfolio.Seed = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.RatePerSec == 0 {
		c.DataSource.RatePerSec = 2
	}

	a := &c.Analysis
	if a.VWAP.Symbol == "" {
		a.VWAP.Symbol = "AAPL"
	}
	if a.VWAP.Years == 0 {
		a.VWAP.Years = 1
	}
	if a.EMA.Symbol == "" {
		a.EMA.Symbol = "AAPL"
	}
	if a.EMA.Years == 0 {
		a.EMA.Years = 4
	}
	if a.EMA.Span == 0 {
		a.EMA.Span = 15
	}
	if a.EMA.MinPeriods == 0 {
		a.EMA.MinPeriods = a.EMA.Span
	}
	if a.EMA.Adjust == nil {
		adjust := true
		a.EMA.Adjust = &adjust
	}
	if a.Volatility.Symbol == "" {
		a.Volatility.Symbol = "AAPL"
	}
	if a.Volatility.Years == 0 {
		a.Volatility.Years = 1
	}
	if a.Volatility.Window == 0 {
		a.Volatility.Window = 20
	}
	if a.Relative.Symbol == "" {
		a.Relative.Symbol = "AAPL"
	}
	if a.Relative.Benchmark == "" {
		a.Relative.Benchmark = "^GSPC"
	}
	if a.Relative.Years == 0 {
		a.Relative.Years = 1
	}
	if len(a.Snapshot.Symbols) == 0 {
		a.Snapshot.Symbols = []string{"^GSPC", "AAPL"}
	}
	if a.Snapshot.SMAPeriod == 0 {
		a.Snapshot.SMAPeriod = 200
	}

	s := &c.Sentiment
	if len(s.Tickers) == 0 {
		s.Tickers = []string{"AAPL", "TSLA", "AMZN"}
	}
	if s.Headlines == 0 {
		s.Headlines = 3
	}
	if s.UserAgent == "" {
		s.UserAgent = "my-app/0.0.1"
	}

	p := &c.Portfolio
	if len(p.Symbols) == 0 {
		p.Symbols = []string{"SCHB", "AAPL", "AMZN", "TSLA", "AMD", "MSFT", "NFLX"}
	}
	if p.Start == "" {
		p.Start = "2020-08-13"
	}
	if p.RandomPortfolios == 0 {
		p.RandomPortfolios = 50000
	}
	if p.RiskFreeRate == 0 {
		p.RiskFreeRate = 0.021
	}
	if p.TotalValue == 0 {
		p.TotalValue = 1000
	}
	if p.FrontierMax == 0 {
		p.FrontierMax = 0.32
	}

	if c.Output.Dir == "" {
		c.Output.Dir = "out"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 6 * time.Hour
	}
	if c.Schedule.SnapshotCron == "" {
		c.Schedule.SnapshotCron = "0 0 22 * * 1-5"
	}
	if c.Schedule.SentimentCron == "" {
		c.Schedule.SentimentCron = "0 30 8 * * 1-5"
	}
	if c.Schedule.OptimizeCron == "" {
		c.Schedule.OptimizeCron = "0 0 9 1 * *"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// PortfolioStart parses portfolio.start.
func (c *Config) PortfolioStart() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.Portfolio.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("portfolio.start: %w", err)
	}
	return t, nil
}

// Validate checks fields every mode needs.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.RatePerSec < 0 {
		return fmt.Errorf("data_source.rate_per_sec must not be negative")
	}
	for name, years := range map[string]int{
		"vwap": c.Analysis.VWAP.Years, "ema": c.Analysis.EMA.Years,
		"volatility": c.Analysis.Volatility.Years, "relative": c.Analysis.Relative.Years,
	} {
		if years < 1 {
			return fmt.Errorf("analysis.%s.years must be positive", name)
		}
	}
	if c.Analysis.EMA.Span < 1 {
		return fmt.Errorf("analysis.ema.span must be positive")
	}
	if c.Analysis.EMA.MinPeriods < 1 {
		return fmt.Errorf("analysis.ema.min_periods must be positive")
	}
	if c.Analysis.Snapshot.SMAPeriod < 1 {
		return fmt.Errorf("analysis.snapshot.sma_period must be positive")
	}
	if c.Sentiment.Headlines < 1 {
		return fmt.Errorf("sentiment.headlines must be positive")
	}
	if c.Analysis.Volatility.Window < 2 {
		return fmt.Errorf("analysis.volatility.window must be at least 2")
	}
	if len(c.Portfolio.Symbols) < 2 {
		return fmt.Errorf("portfolio.symbols needs at least two symbols")
	}
	if _, err := c.PortfolioStart(); err != nil {
		return err
	}
	if c.Portfolio.TotalValue <= 0 {
		return fmt.Errorf("portfolio.total_value must be positive")
	}
	if c.Portfolio.RandomPortfolios < 0 {
		return fmt.Errorf("portfolio.random_portfolios must not be negative")
	}
	return nil
}

// ValidateServe additionally requires the Telegram credentials used by serve mode.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
