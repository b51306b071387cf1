package sentiment

import (
	"sort"

	"StockLab/internal/model"
)

// Score runs the analyzer over every headline.
func Score(a *Analyzer, headlines []model.Headline) []model.ScoredHeadline {
	out := make([]model.ScoredHeadline, len(headlines))
	for i, h := range headlines {
		out[i] = model.ScoredHeadline{Headline: h, Scores: a.PolarityScores(h.Text)}
	}
	return out
}

// Aggregate averages the compound score per ticker, rounded to two decimals,
// and ranks tickers from most to least positive. Tickers without headlines
// are left out of the ranking.
func Aggregate(tickers []string, scored []model.ScoredHeadline) []model.TickerSentiment {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, s := range scored {
		sums[s.Ticker] += s.Scores.Compound
		counts[s.Ticker]++
	}

	out := make([]model.TickerSentiment, 0, len(tickers))
	for _, t := range tickers {
		n := counts[t]
		if n == 0 {
			continue
		}
		out = append(out, model.TickerSentiment{
			Ticker:       t,
			MeanCompound: round(sums[t]/float64(n), 2),
			Count:        n,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MeanCompound > out[j].MeanCompound })
	return out
}

// Recent returns the first n headlines of each listed ticker. Headlines of
// other tickers are dropped and tickers without headlines get no entry.
func Recent(tickers []string, headlines []model.Headline, n int) map[string][]model.Headline {
	out := make(map[string][]model.Headline, len(tickers))
	for _, ticker := range tickers {
		for _, h := range headlines {
			if len(out[ticker]) == n {
				break
			}
			if h.Ticker == ticker {
				out[ticker] = append(out[ticker], h)
			}
		}
	}
	return out
}
