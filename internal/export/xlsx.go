package export

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/parroquia-maps/internal/view"
)

// XLSX writes the table, without geometry, to a workbook at Path.
type XLSX struct {
	Path  string
	Sheet string // default: the view name
}

// Write implements Sink.
func (s XLSX) Write(_ context.Context, t *view.Table) (int64, error) {
	if s.Path == "" {
		return 0, eris.New("export: xlsx needs an output path")
	}
	recs, err := records(t)
	if err != nil {
		return 0, err
	}

	name := s.Sheet
	if name == "" {
		name = t.View
	}
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(name)
	if err != nil {
		return 0, eris.Wrapf(err, "export: add sheet %q", name)
	}

	cols := Columns[:len(Columns)-1] // geometry stays out of spreadsheets
	header := sheet.AddRow()
	for _, c := range cols {
		header.AddCell().SetString(c)
	}
	for _, rec := range recs {
		row := sheet.AddRow()
		for _, v := range rec[:len(cols)] {
			cell := row.AddCell()
			switch tv := v.(type) {
			case string:
				cell.SetString(tv)
			case int64:
				cell.SetInt(int(tv))
			case float64:
				cell.SetFloat(tv)
			}
		}
	}

	if err := f.Save(s.Path); err != nil {
		return 0, eris.Wrapf(err, "export: save %s", s.Path)
	}
	return int64(len(recs)), nil
}
