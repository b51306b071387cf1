package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLab/internal/analysis"
)

// barServer serves the REST provider shape with a deterministic wave per symbol.
func barServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		to, err := strconv.ParseInt(r.URL.Query().Get("to"), 10, 64)
		require.NoError(t, err)
		phase := 0.0
		for _, c := range symbol {
			phase += float64(c)
		}
		type bar struct {
			Timestamp int64   `json:"timestamp"`
			Open      float64 `json:"open"`
			High      float64 `json:"high"`
			Low       float64 `json:"low"`
			Close     float64 `json:"close"`
			Volume    float64 `json:"volume"`
		}
		const n = 300
		bars := make([]bar, n)
		for i := range bars {
			p := 100 + 0.05*float64(i)*math.Mod(phase, 7) + 5*math.Sin(float64(i)/(3+math.Mod(phase, 5))+phase)
			bars[i] = bar{
				Timestamp: to - int64(n-i)*86400,
				Open:      p - 0.5, High: p + 1, Low: p - 1, Close: p,
				Volume: 1e6 + float64(i%10)*1e4,
			}
		}
		json.NewEncoder(w).Encode(bars)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, baseURL string) (string, string) {
	dir := t.TempDir()
	t.Chdir(dir)
	out := filepath.Join(dir, "charts")
	cfg := fmt.Sprintf(`
data_source:
  provider: rest
  base_url: %s
  rate_per_sec: 1000
output:
  dir: %s
database:
  sqlite_path: %s
log:
  level: error
`, baseURL, out, filepath.Join(dir, "history.db"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path, out
}

func run(t *testing.T, args ...string) (string, error) {
	app := newApp()
	var buf bytes.Buffer
	app.Writer = &buf
	err := app.Run(append([]string{"stocklab"}, args...))
	return buf.String(), err
}

func TestVWAPCommand(t *testing.T) {
	srv := barServer(t)
	cfg, out := writeConfig(t, srv.URL)

	stdout, err := run(t, "--config", cfg, "vwap", "--symbol", "MSFT")
	require.NoError(t, err)
	assert.Contains(t, stdout, "MSFT VWAP:")
	assert.Contains(t, stdout, "MSFT updated VWAP:")
	assert.FileExists(t, filepath.Join(out, "vwap_MSFT.pdf"))
}

func TestEMACommandNoChart(t *testing.T) {
	srv := barServer(t)
	cfg, out := writeConfig(t, srv.URL)

	stdout, err := run(t, "--config", cfg, "--no-chart", "ema", "--span", "30")
	require.NoError(t, err)
	assert.Contains(t, stdout, "AAPL 30-day EMA:")
	assert.NoFileExists(t, filepath.Join(out, "ema_AAPL.pdf"))
}

func TestRelativeAndVolatilityCommands(t *testing.T) {
	srv := barServer(t)
	cfg, _ := writeConfig(t, srv.URL)

	stdout, err := run(t, "--config", cfg, "--no-chart", "relative", "-s", "AMD", "-b", "^GSPC")
	require.NoError(t, err)
	assert.Contains(t, stdout, "AMD / ^GSPC price relative")

	stdout, err = run(t, "--config", cfg, "--no-chart", "volatility", "--window", "10")
	require.NoError(t, err)
	assert.Contains(t, stdout, "10-day realised volatility")
}

func TestOptimizeCommand(t *testing.T) {
	srv := barServer(t)
	cfg, out := writeConfig(t, srv.URL)

	stdout, err := run(t, "--config", cfg, "optimize",
		"--tickers", "AAA,BBBB,CC", "--portfolios", "200", "--seed", "3", "--total", "5000")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Minimum Volatility Portfolio Allocation")
	assert.Contains(t, stdout, "Discrete allocation:")
	assert.FileExists(t, filepath.Join(out, "portfolio_AAA_BBBB_CC.pdf"))
}

func TestInvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_source:\n  provider: rest\n"), 0o644))

	_, err := run(t, "--config", path, "vwap")
	assert.ErrorContains(t, err, "data_source.base_url")
}

func TestFlagOverridesAreValidated(t *testing.T) {
	srv := barServer(t)
	cfg, _ := writeConfig(t, srv.URL)

	tests := []struct {
		name string
		args []string
	}{
		{"negative portfolios", []string{"optimize", "--tickers", "AAA,BBB", "--portfolios", "-1"}},
		{"one ticker", []string{"optimize", "--tickers", "AAA"}},
		{"negative years", []string{"vwap", "--years", "-1"}},
		{"zero span", []string{"ema", "--span", "0"}},
		{"small window", []string{"volatility", "--window", "1"}},
		{"negative headlines", []string{"sentiment", "--headlines", "-1"}},
		{"zero sma", []string{"snapshot", "--sma", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfg, "--no-chart"}, tt.args...)
			_, err := run(t, args...)
			assert.ErrorIs(t, err, analysis.ErrInvalidOptions)
		})
	}
}
