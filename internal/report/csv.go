// Package report turns normalized records into CSV and XLSX exports.
//
// Builders are pure: they return text or rows and never touch the
// filesystem. Writing the result is left to the caller.
package report

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// ContentType is the MIME type of every CSV export.
const ContentType = "text/csv;charset=utf-8"

// BuildCSV serializes rows. Every cell is quoted and embedded quotes are
// doubled; rows are joined with "\n" and there is no trailing newline.
func BuildCSV(rows [][]any) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, cell := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cellText(cell), `"`, `""`))
			b.WriteByte('"')
		}
	}
	return b.String()
}

// cellText renders nil as empty and everything else as its natural text.
func cellText(v any) string {
	if v == nil {
		return ""
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}

// stringsRow lifts a header into a cell row.
func stringsRow(cols []string) []any {
	row := make([]any, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}
