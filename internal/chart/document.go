// Package chart renders analysis figures into PDF documents.
package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

const (
	pageW  = 297.0
	pageH  = 210.0
	margin = 12.0
	font   = "Helvetica"
)

// RGB is a stroke or fill colour.
type RGB struct{ R, G, B int }

var (
	Black  = RGB{0, 0, 0}
	Red    = RGB{214, 39, 40}
	Green  = RGB{44, 160, 44}
	Blue   = RGB{31, 119, 180}
	Orange = RGB{255, 127, 14}
	Grey   = RGB{200, 200, 200}
	// Ink is near-black for data series; the zero RGB means "next Palette colour".
	Ink = RGB{20, 20, 20}
)

// Palette cycles through series colours.
var Palette = []RGB{Blue, Orange, Green, Red, {148, 103, 189}, {140, 86, 75}, {227, 119, 194}}

// Panel draws itself inside a box of the page.
type Panel interface {
	draw(pdf *fpdf.Fpdf, b box)
}

type box struct{ x, y, w, h float64 }

// Document collects one figure per page.
type Document struct {
	pdf   *fpdf.Fpdf
	pages int
}

func NewDocument(title string) *Document {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.SetCreator("stocklab", false)
	pdf.SetAutoPageBreak(false, 0)
	return &Document{pdf: pdf}
}

// AddFigure adds a page with the panels stacked top to bottom.
func (d *Document) AddFigure(title string, panels ...Panel) {
	d.pdf.AddPage()
	d.pages++

	top := margin
	if title != "" {
		d.pdf.SetFont(font, "B", 13)
		d.pdf.SetTextColor(0, 0, 0)
		w := d.pdf.GetStringWidth(title)
		d.pdf.Text((pageW-w)/2, margin+4, title)
		top += 8
	}
	if len(panels) == 0 {
		return
	}
	h := (pageH - top - margin) / float64(len(panels))
	for i, p := range panels {
		p.draw(d.pdf, box{x: margin, y: top + float64(i)*h, w: pageW - 2*margin, h: h})
	}
}

// Pages returns the number of figures added.
func (d *Document) Pages() int { return d.pages }

// Write renders the document to w.
func (d *Document) Write(w io.Writer) error {
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return d.pdf.Output(w)
}

// Save renders the document into path, creating parent directories.
func (d *Document) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()
	return d.Write(f)
}
