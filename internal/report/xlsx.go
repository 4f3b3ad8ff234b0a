package report

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// maxSheetName is the longest sheet name spreadsheet tools accept.
const maxSheetName = 31

// WriteXLSX writes the report as a single-sheet workbook. Numbers stay
// numeric; everything else is written as text.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := xlsx.NewFile()
	name := string(r.Kind)
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	for _, cells := range r.Rows {
		row := sheet.AddRow()
		for _, v := range cells {
			cell := row.AddCell()
			switch n := v.(type) {
			case int:
				cell.SetInt(n)
			case float64:
				cell.SetFloat(n)
			default:
				cell.SetString(cellText(v))
			}
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write workbook")
	}
	return nil
}
