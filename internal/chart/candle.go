package chart

import (
	"math"

	"github.com/go-pdf/fpdf"

	"StockLab/internal/model"
)

// CandlePanel draws OHLC candles with volume bars on a twin axis and
// optional overlay lines such as an EMA. Candles are green when Close >= Open;
// volume bars are green when Open < AdjClose.
type CandlePanel struct {
	Title   string
	YLabel  string
	XLabel  string
	Bars    []model.OHLCV
	Overlay []Series
}

func (p CandlePanel) draw(pdf *fpdf.Fpdf, b box) {
	n := len(p.Bars)
	highs := make([]float64, n)
	lows := make([]float64, n)
	maxVol := 0.0
	for i, bar := range p.Bars {
		highs[i], lows[i] = bar.High, bar.Low
		maxVol = math.Max(maxVol, bar.Volume)
	}
	all := [][]float64{highs, lows}
	for _, s := range p.Overlay {
		all = append(all, s.Values)
	}
	lo, hi := bounds(all...)
	a := newAxes(b, -0.5, float64(n)-0.5, lo, hi)
	a.frame(pdf, p.Title, p.XLabel, p.YLabel, true)

	dates := (&model.PriceSeries{Bars: p.Bars}).Times()
	a.dateXTicks(pdf, dates)

	slot := a.area.w / math.Max(float64(n), 1)
	bodyW := slot * 0.5

	// volume bars scaled so the tallest reaches a third of the panel
	if maxVol > 0 {
		pdf.SetAlpha(0.4, "Normal")
		for i, bar := range p.Bars {
			c := Red
			if bar.Open < bar.AdjClose {
				c = Green
			}
			setFill(pdf, c)
			h := bar.Volume / (3 * maxVol) * a.area.h
			pdf.Rect(a.px(float64(i))-bodyW/2, a.area.y+a.area.h-h, bodyW, h, "F")
		}
		pdf.SetAlpha(1, "Normal")
	}

	pdf.SetLineWidth(0.15)
	for i, bar := range p.Bars {
		c := Red
		if bar.Close >= bar.Open {
			c = Green
		}
		setDraw(pdf, c)
		setFill(pdf, c)
		x := a.px(float64(i))
		pdf.Line(x, a.py(bar.High), x, a.py(bar.Low))
		top := a.py(math.Max(bar.Open, bar.Close))
		bottom := a.py(math.Min(bar.Open, bar.Close))
		pdf.Rect(x-bodyW/2, top, bodyW, math.Max(bottom-top, 0.1), "F")
	}

	names := make([]string, len(p.Overlay))
	colors := make([]RGB, len(p.Overlay))
	for i, s := range p.Overlay {
		color := s.Color
		if color == (RGB{}) {
			color = Palette[i%len(Palette)]
		}
		names[i], colors[i] = s.Name, color
		setDraw(pdf, color)
		pdf.SetLineWidth(0.35)
		a.polyline(pdf, indexes(len(s.Values)), s.Values)
	}
	a.legend(pdf, names, colors)
}
