package format

import (
	"strconv"

	"github.com/dekarrin/rosed"

	"github.com/dhamidi/giftlint/diagnose"
)

// DefaultTableWidth is the width Summary lays its table out to when given
// none.
const DefaultTableWidth = 80

// Summary returns a table with one row per report, spread to width columns.
func Summary(reports []diagnose.Report, width int) string {
	if width <= 0 {
		width = DefaultTableWidth
	}
	data := [][]string{{"File", "Questions", "Errors", "Incomplete"}}
	for _, r := range reports {
		incomplete := 0
		for _, d := range r.Diagnostics {
			if d.Incomplete {
				incomplete++
			}
		}
		data = append(data, []string{
			fileName(r.File),
			strconv.Itoa(r.Chunks),
			strconv.Itoa(len(r.Diagnostics)),
			strconv.Itoa(incomplete),
		})
	}

	tableOpts := rosed.Options{
		TableHeaders:             true,
		NoTrailingLineSeparators: true,
	}
	return rosed.Edit("").
		InsertTableOpts(0, data, width, tableOpts).
		String()
}
