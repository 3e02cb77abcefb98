package ingest

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// isXLSX reports whether the source points at a spreadsheet dump.
func isXLSX(source string) bool {
	return strings.HasSuffix(strings.ToLower(source), ".xlsx")
}

// readXLSX loads the first sheet of a spreadsheet dump into string rows,
// header included. tealeg needs the whole file in memory, so spreadsheet
// dumps are not streamed the way CSV ones are.
func readXLSX(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read xlsx")
	}

	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: parse xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("ingest: xlsx has no sheets")
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
