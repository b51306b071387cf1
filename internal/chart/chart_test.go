package chart

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLab/internal/model"
)

func sampleBars(n int) []model.OHLCV {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		base := 100 + float64(i%7)
		bars[i] = model.OHLCV{
			Time:     start.AddDate(0, 0, i),
			Open:     base,
			High:     base + 2,
			Low:      base - 2,
			Close:    base + math.Sin(float64(i)),
			AdjClose: base + math.Sin(float64(i)),
			Volume:   float64(1000 + i*10),
		}
	}
	return bars
}

func TestDocumentRendersAllPanels(t *testing.T) {
	bars := sampleBars(30)
	times := (&model.PriceSeries{Bars: bars}).Times()
	line := make([]float64, len(bars))
	for i := range line {
		line[i] = float64(i)
	}
	line[0] = math.NaN()

	doc := NewDocument("test")
	doc.AddFigure("lines", LinePanel{
		Title:  "series",
		Times:  times,
		Series: []Series{{Name: "a", Values: line}, {Name: "b", Values: line, Dashed: true, Color: Red}},
		HLines: []HLine{{Y: 10, Color: Grey}},
		Grid:   true,
	})
	doc.AddFigure("", CandlePanel{
		Title:   "candles",
		Bars:    bars,
		Overlay: []Series{{Name: "EMA", Values: line}},
	})
	doc.AddFigure("scatter", ScatterPanel{
		Points:     []Point{{X: 0.1, Y: 0.2, C: 1}, {X: 0.2, Y: 0.3, C: 2, Label: "X"}},
		ColorScale: true,
		ColorLabel: "Sharpe ratio",
		Markers:    []Marker{{X: 0.15, Y: 0.25, Color: Red, Label: "max"}},
		Lines:      []XYLine{{Name: "frontier", X: []float64{0.1, 0.2}, Y: []float64{0.2, 0.3}, Dashed: true}},
	})
	require.Equal(t, 3, doc.Pages())

	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestDocumentSaveCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fig.pdf")
	doc := NewDocument("empty")
	doc.AddFigure("only title")
	require.NoError(t, doc.Save(path))
	assert.FileExists(t, path)
}

func TestBoundsSkipsNaN(t *testing.T) {
	lo, hi := bounds([]float64{math.NaN(), 3, -1}, []float64{math.Inf(1), 2})
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 3.0, hi)

	lo, hi = bounds([]float64{math.NaN()})
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestYlGnBuEndpoints(t *testing.T) {
	assert.Equal(t, RGB{255, 255, 217}, ylGnBu(0))
	assert.Equal(t, RGB{8, 29, 88}, ylGnBu(1))
	assert.Equal(t, RGB{8, 29, 88}, ylGnBu(5))
}

func TestColorBarStripsRunLowToHigh(t *testing.T) {
	strips := colorBarStrips(colorBarSteps)
	require.Len(t, strips, colorBarSteps)
	assert.Equal(t, ylGnBu(0), strips[0])
	assert.Equal(t, ylGnBu(1), strips[len(strips)-1])
}
