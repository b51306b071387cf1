package analysis

import (
	"io"
	"text/tabwriter"
)

// tailRows is how many trailing rows a printed table shows.
const tailRows = 5

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}
