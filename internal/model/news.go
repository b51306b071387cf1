package model

import "time"

// Headline is one row scraped from a ticker's news table.
type Headline struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Time   string    `json:"time"`
	Text   string    `json:"text"`
	Link   string    `json:"link,omitempty"`
}

// SentimentScores are the polarity scores of a piece of text.
type SentimentScores struct {
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
	Pos      float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// ScoredHeadline joins a headline with its scores.
type ScoredHeadline struct {
	Headline
	Scores SentimentScores `json:"scores"`
}

// TickerSentiment is the mean compound score over a ticker's headlines.
type TickerSentiment struct {
	Ticker       string  `json:"ticker"`
	MeanCompound float64 `json:"mean_compound"`
	Count        int     `json:"count"`
}
