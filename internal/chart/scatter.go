package chart

import (
	"math"

	"github.com/go-pdf/fpdf"
)

// Point is one scatter point; C drives its colour when the panel has a colour scale.
type Point struct {
	X, Y, C float64
	Label   string
}

// Marker is a highlighted point drawn as a star.
type Marker struct {
	X, Y  float64
	Color RGB
	Label string
}

// XYLine is a polyline in data coordinates.
type XYLine struct {
	Name   string
	X, Y   []float64
	Color  RGB
	Dashed bool
}

// ScatterPanel plots points (optionally colour-scaled), star markers and lines.
type ScatterPanel struct {
	Title      string
	XLabel     string
	YLabel     string
	Points     []Point
	ColorScale bool
	ColorLabel string // colour bar caption
	PointSize  float64
	Markers    []Marker
	Lines      []XYLine
}

func (p ScatterPanel) draw(pdf *fpdf.Fpdf, b box) {
	var xs, ys []float64
	cmin, cmax := math.Inf(1), math.Inf(-1)
	for _, pt := range p.Points {
		xs = append(xs, pt.X)
		ys = append(ys, pt.Y)
		cmin = math.Min(cmin, pt.C)
		cmax = math.Max(cmax, pt.C)
	}
	for _, m := range p.Markers {
		xs = append(xs, m.X)
		ys = append(ys, m.Y)
	}
	for _, l := range p.Lines {
		xs = append(xs, l.X...)
		ys = append(ys, l.Y...)
	}
	xlo, xhi := bounds(xs)
	ylo, yhi := bounds(ys)
	xpad := (xhi - xlo) * 0.05
	scaled := p.ColorScale && cmax > cmin
	if scaled {
		b.w -= colorBarSpace
	}
	a := newAxes(b, xlo-xpad, xhi+xpad, ylo, yhi)
	a.frame(pdf, p.Title, p.XLabel, p.YLabel, true)
	a.numericXTicks(pdf)

	size := p.PointSize
	if size == 0 {
		size = 0.5
	}
	if p.ColorScale {
		pdf.SetAlpha(0.3, "Normal")
	}
	for _, pt := range p.Points {
		c := Blue
		if scaled {
			c = ylGnBu((pt.C - cmin) / (cmax - cmin))
		}
		setFill(pdf, c)
		pdf.Circle(a.px(pt.X), a.py(pt.Y), size, "F")
	}
	pdf.SetAlpha(1, "Normal")

	pdf.SetFont(font, "", 7)
	pdf.SetTextColor(0, 0, 0)
	for _, pt := range p.Points {
		if pt.Label != "" {
			pdf.Text(a.px(pt.X)+3, a.py(pt.Y)+1, pt.Label)
		}
	}

	var names []string
	var colors []RGB
	for _, l := range p.Lines {
		setDraw(pdf, l.Color)
		pdf.SetLineWidth(0.4)
		if l.Dashed {
			pdf.SetDashPattern([]float64{2, 1, 0.5, 1}, 0)
		}
		a.polyline(pdf, l.X, l.Y)
		pdf.SetDashPattern(nil, 0)
		names = append(names, l.Name)
		colors = append(colors, l.Color)
	}

	for _, m := range p.Markers {
		setFill(pdf, m.Color)
		setDraw(pdf, m.Color)
		pdf.Polygon(star(a.px(m.X), a.py(m.Y), 3), "F")
		names = append(names, m.Label)
		colors = append(colors, m.Color)
	}
	a.legend(pdf, names, colors)

	if scaled {
		colorBar(pdf, box{x: a.area.x + a.area.w + 4, y: a.area.y, w: 3, h: a.area.h}, cmin, cmax, p.ColorLabel)
	}
}

const (
	colorBarSpace = 14
	colorBarSteps = 48
)

// colorBar draws the scale as a vertical gradient strip, high values on top,
// with the min and max values at its ends.
func colorBar(pdf *fpdf.Fpdf, b box, lo, hi float64, label string) {
	strips := colorBarStrips(colorBarSteps)
	h := b.h / float64(len(strips))
	for i, c := range strips {
		setFill(pdf, c)
		// strips overlap by 0.05mm
		pdf.Rect(b.x, b.y+b.h-float64(i+1)*h, b.w, h+0.05, "F")
	}
	pdf.SetLineWidth(0.2)
	setDraw(pdf, Black)
	pdf.Rect(b.x, b.y, b.w, b.h, "D")

	pdf.SetFont(font, "", 6)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(b.x+b.w+1, b.y+2, formatTick(hi))
	pdf.Text(b.x+b.w+1, b.y+b.h, formatTick(lo))
	if label != "" {
		x, y := b.x+b.w+4, b.y+(b.h+pdf.GetStringWidth(label))/2
		pdf.TransformBegin()
		pdf.TransformRotate(90, x, y)
		pdf.Text(x, y, label)
		pdf.TransformEnd()
	}
}

// colorBarStrips samples the scale from low to high.
func colorBarStrips(n int) []RGB {
	out := make([]RGB, n)
	for i := range out {
		out[i] = ylGnBu(float64(i) / float64(n-1))
	}
	return out
}

func star(cx, cy, r float64) []fpdf.PointType {
	pts := make([]fpdf.PointType, 10)
	for i := range pts {
		radius := r
		if i%2 == 1 {
			radius = r * 0.4
		}
		angle := -math.Pi/2 + float64(i)*math.Pi/5
		pts[i] = fpdf.PointType{X: cx + radius*math.Cos(angle), Y: cy + radius*math.Sin(angle)}
	}
	return pts
}

// ylGnBu interpolates a yellow-green-blue scale for t in [0, 1].
func ylGnBu(t float64) RGB {
	stops := []RGB{{255, 255, 217}, {65, 182, 196}, {8, 29, 88}}
	t = math.Max(0, math.Min(1, t))
	seg := t * float64(len(stops)-1)
	i := int(seg)
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	f := seg - float64(i)
	lerp := func(a, b int) int { return a + int(math.Round(f*float64(b-a))) }
	return RGB{lerp(stops[i].R, stops[i+1].R), lerp(stops[i].G, stops[i+1].G), lerp(stops[i].B, stops[i+1].B)}
}
