package analysis

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/phuslu/log"

	"StockLab/internal/model"
	"StockLab/internal/recorder"
	"StockLab/internal/sentiment"
)

type SentimentOptions struct {
	Tickers   []string
	Headlines int // per ticker in the recent-news printout
}

type SentimentResult struct {
	Tickers []string
	Recent  map[string][]model.Headline
	Scored  []model.ScoredHeadline
	Ranking []model.TickerSentiment
	Skipped []string
}

// RunSentiment scrapes every ticker's news table and ranks tickers by mean
// compound score. A ticker whose page or table cannot be loaded is skipped.
func (r *Runner) RunSentiment(ctx context.Context, opts SentimentOptions) (*SentimentResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if r.Headlines == nil {
		return nil, fmt.Errorf("sentiment: no headline source configured")
	}
	res := &SentimentResult{}
	var all []model.Headline
	for _, ticker := range opts.Tickers {
		name := strings.SplitN(ticker, "_", 2)[0]
		res.Tickers = append(res.Tickers, name)

		headlines, err := r.Headlines.FetchHeadlines(ctx, ticker)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Str("ticker", ticker).Msg("news table unavailable, skipping")
			res.Skipped = append(res.Skipped, name)
			continue
		}
		if len(headlines) == 0 {
			log.Warn().Str("ticker", ticker).Msg("news table has no rows, skipping")
			res.Skipped = append(res.Skipped, name)
			continue
		}
		all = append(all, headlines...)
	}

	res.Scored = sentiment.Score(r.Analyzer, all)
	res.Recent = sentiment.Recent(res.Tickers, all, opts.Headlines)
	res.Ranking = sentiment.Aggregate(res.Tickers, res.Scored)

	if len(res.Ranking) > 0 {
		r.record("sentiment", func(rec recorder.Recorder) error {
			return rec.RecordSentiment(res.Ranking)
		})
	}
	return res, nil
}

func (s *SentimentResult) Print(w io.Writer) {
	for _, t := range s.Tickers {
		rows := s.Recent[t]
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n\nRecent News Headlines for %s: \n", t)
		for _, h := range rows {
			stamp := h.Time
			if !h.Date.IsZero() {
				stamp = h.Date.Format("Jan-02-06") + " " + h.Time
			}
			fmt.Fprintf(w, "%s ( %s )\n", h.Text, stamp)
		}
	}
	fmt.Fprintln(w)
	tw := newTable(w)
	fmt.Fprintln(tw, "Ticker\tMean Sentiment\tHeadlines\t")
	for _, t := range s.Ranking {
		fmt.Fprintf(tw, "%s\t%.2f\t%d\t\n", t.Ticker, t.MeanCompound, t.Count)
	}
	tw.Flush()
	if len(s.Skipped) > 0 {
		fmt.Fprintf(w, "skipped: %s\n", strings.Join(s.Skipped, ", "))
	}
}
