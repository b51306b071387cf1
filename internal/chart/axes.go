package chart

import (
	"fmt"
	"math"
	"time"

	"github.com/go-pdf/fpdf"
)

// axes maps data coordinates into a plotting area.
type axes struct {
	area                   box
	xmin, xmax, ymin, ymax float64
}

func newAxes(b box, xmin, xmax, ymin, ymax float64) *axes {
	// leave room for tick labels and the panel title
	area := box{x: b.x + 16, y: b.y + 7, w: b.w - 20, h: b.h - 18}
	if xmax == xmin {
		xmin, xmax = xmin-1, xmax+1
	}
	if ymax == ymin {
		ymin, ymax = ymin-1, ymax+1
	}
	pad := (ymax - ymin) * 0.05
	return &axes{area: area, xmin: xmin, xmax: xmax, ymin: ymin - pad, ymax: ymax + pad}
}

func (a *axes) px(x float64) float64 {
	return a.area.x + (x-a.xmin)/(a.xmax-a.xmin)*a.area.w
}

func (a *axes) py(y float64) float64 {
	return a.area.y + a.area.h - (y-a.ymin)/(a.ymax-a.ymin)*a.area.h
}

func (a *axes) frame(pdf *fpdf.Fpdf, title, xlabel, ylabel string, grid bool) {
	pdf.SetDashPattern(nil, 0)
	pdf.SetLineWidth(0.2)
	setDraw(pdf, Black)
	pdf.Rect(a.area.x, a.area.y, a.area.w, a.area.h, "D")

	pdf.SetFont(font, "", 7)
	pdf.SetTextColor(0, 0, 0)
	for _, v := range ticks(a.ymin, a.ymax, 5) {
		y := a.py(v)
		if grid {
			setDraw(pdf, Grey)
			pdf.Line(a.area.x, y, a.area.x+a.area.w, y)
			setDraw(pdf, Black)
		}
		pdf.Line(a.area.x-1, y, a.area.x, y)
		label := formatTick(v)
		pdf.Text(a.area.x-2-pdf.GetStringWidth(label), y+1, label)
	}

	if title != "" {
		pdf.SetFont(font, "B", 9)
		pdf.Text(a.area.x+(a.area.w-pdf.GetStringWidth(title))/2, a.area.y-2, title)
	}
	pdf.SetFont(font, "", 8)
	if xlabel != "" {
		pdf.Text(a.area.x+(a.area.w-pdf.GetStringWidth(xlabel))/2, a.area.y+a.area.h+9, xlabel)
	}
	if ylabel != "" {
		x, y := a.area.x-13, a.area.y+(a.area.h+pdf.GetStringWidth(ylabel))/2
		pdf.TransformBegin()
		pdf.TransformRotate(90, x, y)
		pdf.Text(x, y, ylabel)
		pdf.TransformEnd()
	}
}

func (a *axes) numericXTicks(pdf *fpdf.Fpdf) {
	pdf.SetFont(font, "", 7)
	for _, v := range ticks(a.xmin, a.xmax, 6) {
		x := a.px(v)
		pdf.Line(x, a.area.y+a.area.h, x, a.area.y+a.area.h+1)
		label := formatTick(v)
		pdf.Text(x-pdf.GetStringWidth(label)/2, a.area.y+a.area.h+4, label)
	}
}

func (a *axes) dateXTicks(pdf *fpdf.Fpdf, times []time.Time) {
	if len(times) == 0 {
		return
	}
	pdf.SetFont(font, "", 7)
	n := 6
	if len(times) < n {
		n = len(times)
	}
	for k := 0; k < n; k++ {
		i := 0
		if n > 1 {
			i = k * (len(times) - 1) / (n - 1)
		}
		x := a.px(float64(i))
		pdf.Line(x, a.area.y+a.area.h, x, a.area.y+a.area.h+1)
		label := times[i].Format("02-01-2006")
		pdf.Text(x-pdf.GetStringWidth(label)/2, a.area.y+a.area.h+4, label)
	}
}

// polyline strokes values against their index, breaking the line at NaN.
func (a *axes) polyline(pdf *fpdf.Fpdf, xs, ys []float64) {
	prev := -1
	for i := range ys {
		if math.IsNaN(ys[i]) || math.IsNaN(xs[i]) {
			prev = -1
			continue
		}
		if prev >= 0 {
			pdf.Line(a.px(xs[prev]), a.py(ys[prev]), a.px(xs[i]), a.py(ys[i]))
		}
		prev = i
	}
}

func (a *axes) legend(pdf *fpdf.Fpdf, names []string, colors []RGB) {
	pdf.SetFont(font, "", 7)
	x := a.area.x + a.area.w - 40
	y := a.area.y + 4
	for i, name := range names {
		if name == "" {
			continue
		}
		setDraw(pdf, colors[i])
		pdf.SetLineWidth(0.6)
		pdf.Line(x, y-1, x+6, y-1)
		pdf.Text(x+8, y, name)
		y += 4
	}
	pdf.SetLineWidth(0.2)
	setDraw(pdf, Black)
}

func setDraw(pdf *fpdf.Fpdf, c RGB) { pdf.SetDrawColor(c.R, c.G, c.B) }
func setFill(pdf *fpdf.Fpdf, c RGB) { pdf.SetFillColor(c.R, c.G, c.B) }

// bounds returns the min and max over the non-NaN values of all slices.
func bounds(slices ...[]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range slices {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	return lo, hi
}

func ticks(lo, hi float64, n int) []float64 {
	if n < 2 || hi <= lo {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

func formatTick(v float64) string {
	av := math.Abs(v)
	switch {
	case av >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case av >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case av >= 100:
		return fmt.Sprintf("%.0f", v)
	case av >= 1:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.3f", v)
	}
}
