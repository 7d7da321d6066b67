// Package fetcher reads the tabular inputs (spreadsheets) that accompany the
// parish layers.
package fetcher

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions configures the XLSX parser.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // number of rows to skip before the header
}

// Cell is a spreadsheet value. Numeric cells keep their number so a
// percentage-formatted 0.025 is not read back as the string "2.50%".
type Cell struct {
	Text    string
	Number  float64
	Numeric bool
}

// Empty reports whether the cell has neither text nor a number.
func (c Cell) Empty() bool {
	return !c.Numeric && strings.TrimSpace(c.Text) == ""
}

// Record is one data row keyed by the trimmed header text.
type Record map[string]Cell

// ReadXLSX reads an XLSX file and returns all rows as typed cells.
func ReadXLSX(path string, opts XLSXOptions) ([][]Cell, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var rows [][]Cell
	for i, row := range sheet.Rows {
		if i < opts.SkipRows || row == nil {
			continue
		}
		rows = append(rows, rowToCells(row))
	}
	return rows, nil
}

// ReadXLSXRecords reads the first non-skipped row as a header and returns
// the remaining rows keyed by header. Fully empty rows are dropped. Every
// name in required must appear in the header.
func ReadXLSXRecords(path string, opts XLSXOptions, required ...string) ([]Record, error) {
	rows, err := ReadXLSX(path, opts)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("xlsx: %s has no header row", path)
	}

	header := make([]string, len(rows[0]))
	present := make(map[string]bool, len(rows[0]))
	for i, c := range rows[0] {
		header[i] = strings.TrimSpace(c.Text)
		present[header[i]] = true
	}
	for _, col := range required {
		if !present[col] {
			return nil, eris.Errorf("xlsx: %s missing column %q", path, col)
		}
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		empty := true
		for i, name := range header {
			if name == "" || i >= len(row) {
				continue
			}
			rec[name] = row[i]
			if !row[i].Empty() {
				empty = false
			}
		}
		if !empty {
			records = append(records, rec)
		}
	}
	return records, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToCells(row *xlsx.Row) []Cell {
	cells := make([]Cell, len(row.Cells))
	for j, cell := range row.Cells {
		if cell == nil {
			continue
		}
		c := Cell{Text: cell.String()}
		if cell.Type() == xlsx.CellTypeNumeric {
			if v, err := cell.Float(); err == nil {
				c.Number = v
				c.Numeric = true
			}
		}
		cells[j] = c
	}
	return cells
}
