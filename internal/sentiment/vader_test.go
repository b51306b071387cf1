package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolarityScores_ReferenceValues(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		text     string
		compound float64
		pos      float64
	}{
		{"VADER is smart, handsome, and funny.", 0.8316, 0.746},
		{"VADER is smart, handsome, and funny!", 0.8439, 0.752},
		{"VADER is very smart, handsome, and funny.", 0.8545, 0.701},
		{"VADER is VERY SMART, handsome, and FUNNY.", 0.9227, 0.754},
		{"VADER is not smart, handsome, nor funny.", -0.7424, 0},
		{"The plot was good, but the characters are uncompelling and the dialog is not great.", -0.7042, 0.094},
		{"Not bad at all", 0.431, 0.487},
		{"Sentiment analysis has never been good.", -0.3412, 0},
		{"Without a doubt, excellent idea.", 0.7013, 0.659},
	}
	for _, tt := range tests {
		s := a.PolarityScores(tt.text)
		assert.InDelta(t, tt.compound, s.Compound, 1e-4, tt.text)
		assert.InDelta(t, tt.pos, s.Pos, 1e-3, tt.text)
	}
}

func TestPolarityScores_Modifiers(t *testing.T) {
	a := NewAnalyzer()
	base := a.PolarityScores("the results are good").Compound
	boosted := a.PolarityScores("the results are very good").Compound
	caps := a.PolarityScores("the results are GOOD").Compound
	excl := a.PolarityScores("the results are good!!!").Compound

	assert.Greater(t, boosted, base)
	assert.Greater(t, caps, base)
	assert.Greater(t, excl, base)
}

func TestPolarityScores_ButShiftsWeight(t *testing.T) {
	a := NewAnalyzer()
	s := a.PolarityScores("revenue was good but guidance is terrible")
	assert.Less(t, s.Compound, 0.0)
}

func TestPolarityScores_ProportionsSumToOne(t *testing.T) {
	s := NewAnalyzer().PolarityScores("great profit growth despite weak demand")
	assert.InDelta(t, 1.0, s.Neg+s.Neu+s.Pos, 0.002)
	assert.GreaterOrEqual(t, s.Compound, -1.0)
	assert.LessOrEqual(t, s.Compound, 1.0)
}

func TestPolarityScores_Empty(t *testing.T) {
	assert.Equal(t, 0.0, NewAnalyzer().PolarityScores("").Compound)
}

func TestNewAnalyzerWithLexicon(t *testing.T) {
	assert.Equal(t, 0.0, NewAnalyzer().PolarityScores("shares go zorbly").Compound)

	a := NewAnalyzerWithLexicon(map[string]float64{"zorbly": 3})
	assert.Greater(t, a.PolarityScores("shares go zorbly").Compound, 0.0)
	assert.Greater(t, a.PolarityScores("great quarter").Compound, 0.0)
}
