package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, 15, cfg.Analysis.EMA.Span)
	assert.Equal(t, 15, cfg.Analysis.EMA.MinPeriods)
	assert.True(t, *cfg.Analysis.EMA.Adjust)
	assert.Equal(t, 20, cfg.Analysis.Volatility.Window)
	assert.Equal(t, "^GSPC", cfg.Analysis.Relative.Benchmark)
	assert.Equal(t, []string{"AAPL", "TSLA", "AMZN"}, cfg.Sentiment.Tickers)
	assert.Equal(t, "my-app/0.0.1", cfg.Sentiment.UserAgent)
	assert.Len(t, cfg.Portfolio.Symbols, 7)
	assert.Equal(t, 50000, cfg.Portfolio.RandomPortfolios)
	assert.InDelta(t, 0.021, cfg.Portfolio.RiskFreeRate, 1e-12)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, 6*time.Hour, cfg.Cache.TTL)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	yaml := `
analysis:
  ema:
    symbol: MSFT
    span: 30
    adjust: false
portfolio:
  symbols: [AAPL, MSFT]
  total_value: 5000
cache:
  ttl: 15m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("SENTIMENT_TICKERS", "NVDA, AMD ,")
	t.Setenv("PORTFOLIO_TOTAL_VALUE", "2500")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "MSFT", cfg.Analysis.EMA.Symbol)
	assert.Equal(t, 30, cfg.Analysis.EMA.Span)
	assert.Equal(t, 30, cfg.Analysis.EMA.MinPeriods)
	assert.False(t, *cfg.Analysis.EMA.Adjust)
	assert.Equal(t, []string{"NVDA", "AMD"}, cfg.Sentiment.Tickers)
	assert.Equal(t, 2500.0, cfg.Portfolio.TotalValue)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OUTPUT_DIR=charts\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("OUTPUT_DIR") })

	cfg, err := Load(filepath.Join(dir, "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "charts", cfg.Output.Dir)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"rest without url", func(c *Config) { c.DataSource.Provider = "rest" }, false},
		{"rest with url", func(c *Config) { c.DataSource.Provider = "rest"; c.DataSource.BaseURL = "http://x" }, true},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, false},
		{"one symbol", func(c *Config) { c.Portfolio.Symbols = []string{"AAPL"} }, false},
		{"bad start", func(c *Config) { c.Portfolio.Start = "13/08/2020" }, false},
		{"small window", func(c *Config) { c.Analysis.Volatility.Window = 1 }, false},
		{"negative years", func(c *Config) { c.Analysis.VWAP.Years = -1 }, false},
		{"negative min periods", func(c *Config) { c.Analysis.EMA.MinPeriods = -3 }, false},
		{"negative sma period", func(c *Config) { c.Analysis.Snapshot.SMAPeriod = -1 }, false},
		{"negative headlines", func(c *Config) { c.Sentiment.Headlines = -2 }, false},
		{"negative portfolios", func(c *Config) { c.Portfolio.RandomPortfolios = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidateServeNeedsTelegram(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Error(t, cfg.ValidateServe())

	cfg.Telegram.BotToken = "token"
	cfg.Telegram.ChatID = "42"
	assert.NoError(t, cfg.ValidateServe())
}
