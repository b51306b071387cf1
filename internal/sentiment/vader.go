package sentiment

import (
	"math"

	"github.com/jonreiter/govader"

	"StockLab/internal/model"
)

// Analyzer scores text with VADER: lexicon valences adjusted for boosters,
// negation, capitals, "but" clauses and punctuation.
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

// NewAnalyzer loads the full VADER lexicon.
func NewAnalyzer() *Analyzer {
	return &Analyzer{vader: govader.NewSentimentIntensityAnalyzer()}
}

// NewAnalyzerWithLexicon adds or overrides word valences on top of the VADER lexicon.
func NewAnalyzerWithLexicon(extra map[string]float64) *Analyzer {
	a := NewAnalyzer()
	for word, v := range extra {
		a.vader.Lexicon[word] = v
	}
	return a
}

// PolarityScores returns the negative, neutral, positive and compound scores of
// text, rounded the way NLTK reports them.
func (a *Analyzer) PolarityScores(text string) model.SentimentScores {
	s := a.vader.PolarityScores(text)
	return model.SentimentScores{
		Neg:      round(s.Negative, 3),
		Neu:      round(s.Neutral, 3),
		Pos:      round(s.Positive, 3),
		Compound: round(s.Compound, 4),
	}
}

func round(v float64, places int) float64 {
	m := math.Pow(10, float64(places))
	return math.Round(v*m) / m
}
