package chart

import (
	"time"

	"github.com/go-pdf/fpdf"
)

// Series is one named line. A zero Color picks from Palette.
type Series struct {
	Name   string
	Values []float64
	Color  RGB
	Dashed bool
}

// HLine is a horizontal reference line, e.g. a mean or zero level.
type HLine struct {
	Y     float64
	Color RGB
	Width float64
}

// LinePanel plots series against a shared date index.
type LinePanel struct {
	Title  string
	XLabel string
	YLabel string
	Times  []time.Time
	Series []Series
	HLines []HLine
	Grid   bool
}

func (p LinePanel) draw(pdf *fpdf.Fpdf, b box) {
	var all [][]float64
	n := len(p.Times)
	for _, s := range p.Series {
		all = append(all, s.Values)
		if len(s.Values) > n {
			n = len(s.Values)
		}
	}
	for _, h := range p.HLines {
		all = append(all, []float64{h.Y})
	}
	lo, hi := bounds(all...)
	a := newAxes(b, 0, float64(n-1), lo, hi)
	a.frame(pdf, p.Title, p.XLabel, p.YLabel, p.Grid)
	a.dateXTicks(pdf, p.Times)

	for _, h := range p.HLines {
		width := h.Width
		if width == 0 {
			width = 0.4
		}
		pdf.SetLineWidth(width)
		setDraw(pdf, h.Color)
		pdf.Line(a.area.x, a.py(h.Y), a.area.x+a.area.w, a.py(h.Y))
	}

	names := make([]string, len(p.Series))
	colors := make([]RGB, len(p.Series))
	for i, s := range p.Series {
		color := s.Color
		if color == (RGB{}) {
			color = Palette[i%len(Palette)]
		}
		names[i], colors[i] = s.Name, color
		setDraw(pdf, color)
		pdf.SetLineWidth(0.35)
		if s.Dashed {
			pdf.SetDashPattern([]float64{1.5, 1}, 0)
		}
		a.polyline(pdf, indexes(len(s.Values)), s.Values)
		pdf.SetDashPattern(nil, 0)
	}
	a.legend(pdf, names, colors)
}

func indexes(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}
