package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLab/internal/analysis"
	"StockLab/internal/model"
)

type botServer struct {
	mu       sync.Mutex
	messages []string
	docs     []string
	fail     int
	updates  string
}

func (s *botServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/botTOKEN/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.fail > 0 {
			s.fail--
			http.Error(w, "flood", http.StatusTooManyRequests)
			return
		}
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "42", payload["chat_id"])
		assert.Equal(t, "HTML", payload["parse_mode"])
		s.messages = append(s.messages, payload["text"])
	})
	mux.HandleFunc("/botTOKEN/sendDocument", func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("document")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		s.mu.Lock()
		s.docs = append(s.docs, hdr.Filename+":"+string(data)+":"+r.FormValue("caption"))
		s.mu.Unlock()
	})
	mux.HandleFunc("/botTOKEN/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		body := s.updates
		s.updates = `{"ok":true,"result":[]}`
		s.mu.Unlock()
		if r.URL.Query().Get("offset") != "0" {
			// long poll with nothing new
			select {
			case <-r.Context().Done():
			case <-time.After(50 * time.Millisecond):
			}
		}
		io.WriteString(w, body)
	})
	return mux
}

func newTestNotifier(t *testing.T, s *botServer) *TelegramNotifier {
	srv := httptest.NewServer(s.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL
	return n
}

func TestSend(t *testing.T) {
	s := &botServer{}
	n := newTestNotifier(t, s)
	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, []string{"<b>hi</b>"}, s.messages)
}

func TestSendWithRetry_RecoversAfterFailure(t *testing.T) {
	s := &botServer{fail: 1}
	n := newTestNotifier(t, s)
	require.NoError(t, n.SendWithRetry(context.Background(), "report", 2))
	assert.Equal(t, []string{"report"}, s.messages)
}

func TestSendWithRetry_StopsOnCancel(t *testing.T) {
	s := &botServer{fail: 10}
	n := newTestNotifier(t, s)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := n.SendWithRetry(ctx, "report", 3)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSendWithRetry_NoWaitAfterLastAttempt(t *testing.T) {
	s := &botServer{fail: 10}
	n := newTestNotifier(t, s)

	start := time.Now()
	err := n.SendWithRetry(context.Background(), "report", 0)
	assert.ErrorContains(t, err, "all 1 retries exhausted")
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, 9, s.fail)
}

func TestSendDocument(t *testing.T) {
	s := &botServer{}
	n := newTestNotifier(t, s)
	path := filepath.Join(t.TempDir(), "chart.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))

	require.NoError(t, n.SendDocument(context.Background(), path, "EMA AAPL"))
	assert.Equal(t, []string{"chart.pdf:%PDF:EMA AAPL"}, s.docs)
}

func TestStartPolling_RepliesToCommands(t *testing.T) {
	s := &botServer{updates: `{"ok":true,"result":[{"update_id":7,"message":{"text":" /help "}},{"update_id":8}]}`}
	n := newTestNotifier(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var got []string
	go func() {
		defer close(done)
		n.StartPolling(ctx, func(_ context.Context, cmd string) string {
			got = append(got, cmd)
			cancel()
			return "pong"
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
	assert.Equal(t, []string{"/help"}, got)
}

func TestFormatters(t *testing.T) {
	snap := FormatSnapshot(&analysis.SnapshotResult{Indicators: []*model.Indicators{{
		Symbol: "^GSPC", CurrentPrice: 110, SMA: 100, SMAPeriod: 200, RSI: 55, Position52w: 0.8,
	}}}, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, snap, "2025-01-02")
	assert.Contains(t, snap, "SMA200: 100.00 (+10.0%)")

	sent := FormatSentiment(&analysis.SentimentResult{
		Tickers: []string{"AAPL"},
		Recent:  map[string][]model.Headline{"AAPL": {{Text: "Q&A <live>", Time: "09:00AM"}}},
		Ranking: []model.TickerSentiment{{Ticker: "AAPL", MeanCompound: 0.2, Count: 1}},
		Skipped: []string{"AMZN"},
	})
	assert.Contains(t, sent, "Q&amp;A &lt;live&gt;")
	assert.Contains(t, sent, "🟢 <b>AAPL</b>: +0.20")
	assert.Contains(t, sent, "skipped: AMZN")

	alloc := &model.Allocation{Symbols: []string{"AAPL", "MSFT"}, Weights: []float64{0.75, 0}}
	opt := FormatOptimize(&analysis.OptimizeResult{
		MaxSharpe:     alloc,
		MinVolatility: alloc,
		Discrete:      &model.DiscreteAllocation{Shares: map[string]int64{"AAPL": 4}, Leftover: decimal.RequireFromString("7.5")},
	})
	assert.Contains(t, opt, "AAPL: 75.00%")
	assert.NotContains(t, opt, "MSFT: 0.00%")
	assert.Contains(t, opt, "Funds remaining: $7.50")

	assert.Contains(t, FormatError("ema", errors.New("a<b")), "a&lt;b")
	assert.Contains(t, FormatHelp(), "/optimize")
}
