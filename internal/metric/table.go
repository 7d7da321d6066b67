package metric

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/parroquia-maps/internal/fetcher"
	"github.com/sells-group/parroquia-maps/internal/normalize"
)

// Spreadsheet columns.
const (
	GrowthCodeColumn      = "Cod_Parr"
	GrowthRateColumn      = "Tasa de crecimiento anual poblacion"
	PopulationNameColumn  = "Parroquia"
	PopulationShareColumn = "Porcentaje"
)

// Value is a joined metric. Numeric values are stored as percentages;
// a textual cell keeps its text as Label with HasValue false.
type Value struct {
	Pct      float64
	HasValue bool
	Label    string
}

// GrowthTable maps a parish code to its annual growth rate.
type GrowthTable map[string]Value

// PopulationTable maps a normalized parish name to its population share.
type PopulationTable map[string]Value

// LoadGrowthTable reads the growth spreadsheet. Codes are matched as
// text, so a numeric 170150 and the string "170150" are the same key.
func LoadGrowthTable(path string, opts fetcher.XLSXOptions) (GrowthTable, error) {
	recs, err := fetcher.ReadXLSXRecords(path, opts, GrowthCodeColumn, GrowthRateColumn)
	if err != nil {
		return nil, eris.Wrap(err, "metric: growth table")
	}

	t := make(GrowthTable, len(recs))
	var skipped int
	for _, rec := range recs {
		code := cellText(rec[GrowthCodeColumn])
		rate := rec[GrowthRateColumn]
		if code == "" || !rate.Numeric {
			skipped++
			continue
		}
		pct := Percent(rate.Number)
		t[code] = Value{Pct: pct, HasValue: true, Label: FormatPercent(pct)}
	}
	if skipped > 0 {
		zap.L().Debug("metric: growth rows without code or numeric rate",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return t, nil
}

// LoadPopulationTable reads the population spreadsheet keyed by
// normalized parish name.
func LoadPopulationTable(path string, opts fetcher.XLSXOptions) (PopulationTable, error) {
	recs, err := fetcher.ReadXLSXRecords(path, opts, PopulationNameColumn, PopulationShareColumn)
	if err != nil {
		return nil, eris.Wrap(err, "metric: population table")
	}

	t := make(PopulationTable, len(recs))
	for _, rec := range recs {
		name := normalize.Name(rec[PopulationNameColumn].Text)
		if name == "" {
			continue
		}
		share := rec[PopulationShareColumn]
		switch {
		case share.Numeric:
			pct := Percent(share.Number)
			t[name] = Value{Pct: pct, HasValue: true, Label: FormatPercent(pct)}
		case strings.TrimSpace(share.Text) != "":
			t[name] = Value{Label: strings.TrimSpace(share.Text)}
		}
	}
	return t, nil
}

// Lookup returns the growth value of code.
func (t GrowthTable) Lookup(code string) (Value, bool) {
	if code == "" {
		return Value{}, false
	}
	v, ok := t[code]
	return v, ok
}

// Lookup returns the population value of a display name.
func (t PopulationTable) Lookup(name string) (Value, bool) {
	v, ok := t[normalize.Name(name)]
	return v, ok
}

func cellText(c fetcher.Cell) string {
	if c.Numeric {
		return normalize.FormatNumber(c.Number)
	}
	return strings.TrimSpace(c.Text)
}
