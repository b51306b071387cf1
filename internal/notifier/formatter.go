package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"StockLab/internal/analysis"
	"StockLab/internal/model"
)

// FormatSnapshot formats indicator snapshots into a Telegram message.
func FormatSnapshot(res *analysis.SnapshotResult, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Market snapshot</b> | %s\n", now.Format("2006-01-02")))
	for _, ind := range res.Indicators {
		dev := 0.0
		if ind.SMA > 0 {
			dev = (ind.CurrentPrice - ind.SMA) / ind.SMA * 100
		}
		b.WriteString(fmt.Sprintf("\n<b>%s</b> %.2f\n", html.EscapeString(ind.Symbol), ind.CurrentPrice))
		b.WriteString(fmt.Sprintf("SMA%d: %.2f (%+.1f%%) | RSI14: %.1f\n", ind.SMAPeriod, ind.SMA, dev, ind.RSI))
		b.WriteString(fmt.Sprintf("52w: %.2f – %.2f (position %.0f%%)\n", ind.Low52w, ind.High52w, ind.Position52w*100))
		b.WriteString(fmt.Sprintf("30d: %.2f – %.2f\n", ind.Low30d, ind.High30d))
	}
	return b.String()
}

// FormatSentiment formats the headline sentiment ranking.
func FormatSentiment(res *analysis.SentimentResult) string {
	var b strings.Builder
	b.WriteString("📰 <b>News sentiment</b>\n\n")
	if len(res.Ranking) == 0 {
		b.WriteString("No headlines found.\n")
	}
	for _, t := range res.Ranking {
		b.WriteString(fmt.Sprintf("%s <b>%s</b>: %+.2f (%d headlines)\n", mood(t.MeanCompound), t.Ticker, t.MeanCompound, t.Count))
	}
	for _, t := range res.Tickers {
		rows := res.Recent[t]
		if len(rows) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n<b>%s</b>\n", t))
		for _, h := range rows {
			b.WriteString(fmt.Sprintf("• %s <i>(%s)</i>\n", html.EscapeString(h.Text), html.EscapeString(h.Time)))
		}
	}
	if len(res.Skipped) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ skipped: %s\n", strings.Join(res.Skipped, ", ")))
	}
	return b.String()
}

func mood(compound float64) string {
	switch {
	case compound >= 0.05:
		return "🟢"
	case compound <= -0.05:
		return "🔴"
	default:
		return "⚪"
	}
}

// FormatOptimize formats the optimized portfolios and the discrete share plan.
func FormatOptimize(res *analysis.OptimizeResult) string {
	var b strings.Builder
	b.WriteString("💼 <b>Portfolio optimization</b>\n")
	writeAllocation(&b, "Maximum Sharpe ratio", res.MaxSharpe)
	writeAllocation(&b, "Minimum volatility", res.MinVolatility)

	b.WriteString("\n<b>Discrete allocation</b> (historical returns)\n")
	symbols := make([]string, 0, len(res.Discrete.Shares))
	for s := range res.Discrete.Shares {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	for _, s := range symbols {
		b.WriteString(fmt.Sprintf("  %s: %d shares\n", s, res.Discrete.Shares[s]))
	}
	b.WriteString(fmt.Sprintf("Funds remaining: $%s\n", res.Discrete.Leftover.StringFixed(2)))
	return b.String()
}

func writeAllocation(b *strings.Builder, title string, a *model.Allocation) {
	p := a.Performance
	b.WriteString(fmt.Sprintf("\n<b>%s</b>\nreturn %.2f | volatility %.2f | sharpe %.2f\n", title, p.Return, p.Volatility, p.Sharpe))
	for i, s := range a.Symbols {
		if a.Weights[i] < 0.0001 {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s: %.2f%%\n", s, a.Weights[i]*100))
	}
}

func FormatVWAP(res *analysis.VWAPResult) string {
	return fmt.Sprintf("📐 <b>%s VWAP</b>\nVWAP: %.4f\nUpdated VWAP: %.4f\nLast close: %.2f\n",
		html.EscapeString(res.Symbol), res.VWAP, res.Updated.Value, res.Series.Last().AdjClose)
}

func FormatEMA(res *analysis.EMAResult) string {
	return fmt.Sprintf("📈 <b>%s %d-day EMA</b>\nEMA: %.4f\nLast close: %.2f\n",
		html.EscapeString(res.Symbol), res.Span, res.Last(), res.Series.Last().AdjClose)
}

func FormatVolatility(res *analysis.VolatilityResult) string {
	return fmt.Sprintf("🌪 <b>%s realised volatility</b> (%d-day)\nLast: %.2f%%\nMean: %.2f%%\n",
		html.EscapeString(res.Symbol), res.Window, res.Last(), res.Mean)
}

func FormatRelative(res *analysis.RelativeResult) string {
	last := res.Relative[len(res.Relative)-1]
	change := res.PctChange[len(res.PctChange)-1]
	return fmt.Sprintf("⚖️ <b>%s / %s price relative</b>\nRelative: %.6f\nLast change: %+.4f%%\nMean change: %+.4f%%\n",
		html.EscapeString(res.Symbol), html.EscapeString(res.Benchmark), last, change, res.MeanChange)
}

// FormatError formats a failed analysis.
func FormatError(what string, err error) string {
	return fmt.Sprintf("⚠️ <b>%s failed</b>\n%s", what, html.EscapeString(err.Error()))
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return `🤖 <b>StockLab</b>

/snapshot [SYMBOL...] - price, SMA, RSI and ranges
/sentiment [TICKER...] - finviz headline sentiment
/optimize - mean-variance portfolio and share plan
/vwap [SYMBOL] - volume weighted average price
/ema [SYMBOL] - exponential moving average
/volatility [SYMBOL] - realised volatility
/relative [SYMBOL] [BENCHMARK] - price relative
/help - this message`
}
