// Package fixture writes a small but complete parish dataset for tests:
// three layers, both spreadsheets and a sector rule file.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/parroquia-maps/internal/parish"
)

// Dataset holds the paths of a written fixture.
type Dataset struct {
	Dir        string
	Rural      string
	Urban      string
	Other      string
	Growth     string
	Population string
	Sectors    string
}

// Sources returns the layer sources of the dataset.
func (d Dataset) Sources() parish.Sources {
	return parish.Sources{
		Rural: parish.Source{Path: d.Rural},
		Urban: parish.Source{Path: d.Urban},
		Other: parish.Source{Path: d.Other},
	}
}

// Feature renders a GeoJSON feature: a 0.02° square centered on lon/lat.
func Feature(props string, lon, lat float64) string {
	const h = 0.01
	return fmt.Sprintf(`{"type":"Feature","properties":%s,"geometry":{"type":"Polygon","coordinates":[[[%g,%g],[%g,%g],[%g,%g],[%g,%g],[%g,%g]]]}}`,
		props, lon-h, lat-h, lon+h, lat-h, lon+h, lat+h, lon-h, lat+h, lon-h, lat-h)
}

// Collection wraps features in a FeatureCollection.
func Collection(features ...string) string {
	return `{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`
}

// SectorRules is the rule file written by Write.
const SectorRules = `por_parroquia:
  "Sangolquí|TIPO:URBANO": VALLE_SUR
por_zona:
  Los Chillos: VALLE
lat_split:
  sur_max: -0.22
  norte_min: -0.15
default: OTROS
`

// Write creates the dataset in dir, usually a test's t.TempDir().
//
// Layout:
//
//	rural: CONOCOTO (Los Chillos), TUMBACO
//	urban: QUITUMBE (south), CENTRO HISTÓRICO (center), CARCELÉN (north)
//	other: SANGOLQUÍ (URBANO), FAJARDO (URBANO), COTOGCHOA (RURAL)
//
// CARCELÉN and COTOGCHOA have no growth row; CARCELÉN has a textual
// population share.
func Write(dir string) (Dataset, error) {
	d := Dataset{
		Dir:        dir,
		Rural:      filepath.Join(dir, "parroquiasRurales.geojson"),
		Urban:      filepath.Join(dir, "parroquiasUrbanas.geojson"),
		Other:      filepath.Join(dir, "otras.geojson"),
		Growth:     filepath.Join(dir, "crecimiento.xlsx"),
		Population: filepath.Join(dir, "poblacion.xlsx"),
		Sectors:    filepath.Join(dir, "sectores.yaml"),
	}

	files := []struct{ path, body string }{
		{d.Rural, Collection(
			Feature(`{"DPA_DESPAR":"CONOCOTO","DPA_PARROQ":"170155","zona_admin":"Los Chillos"}`, -78.48, -0.29),
			Feature(`{"DPA_DESPAR":"TUMBACO","DPA_PARROQ":"170184","zona_admin":"Tumbaco"}`, -78.40, -0.21),
		)},
		{d.Urban, Collection(
			Feature(`{"dpa_despar":"QUITUMBE","dpa_parroq":"170159","AD_ZONAL":"Quitumbe"}`, -78.55, -0.29),
			Feature(`{"dpa_despar":"CENTRO HISTÓRICO","dpa_parroq":"170110","AD_ZONAL":"Manuela Sáenz"}`, -78.51, -0.18),
			Feature(`{"dpa_despar":"CARCELÉN","dpa_parroq":"170115","AD_ZONAL":"La Delicia"}`, -78.47, -0.09),
		)},
		{d.Other, Collection(
			Feature(`{"nombre":"SANGOLQUÍ","ur_ru":"URBANO"}`, -78.45, -0.33),
			Feature(`{"nombre":"FAJARDO","ur_ru":"URBANO"}`, -78.44, -0.32),
			Feature(`{"nombre":"COTOGCHOA","ur_ru":"RURAL"}`, -78.43, -0.38),
		)},
		{d.Sectors, SectorRules},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, []byte(f.body), 0o644); err != nil {
			return Dataset{}, eris.Wrapf(err, "fixture: write %s", f.path)
		}
	}

	if err := writeSheet(d.Growth, [][]any{
		{"Cod_Parr", "Parroquia", "Tasa de crecimiento anual poblacion"},
		{170155.0, "CONOCOTO", 0.025},
		{"170184", "TUMBACO", 1.8},
		{"170159", "QUITUMBE", 3.5},
		{"170110", "CENTRO HISTORICO", -0.012},
		{"170501", "SANGOLQUI", 0.021},
		{"170504", "FAJARDO", 0.005},
	}); err != nil {
		return Dataset{}, err
	}
	if err := writeSheet(d.Population, [][]any{
		{"Parroquia", "Porcentaje"},
		{"Conocoto", 0.035},
		{"Tumbaco", 2.1},
		{"Quitumbe", 0.12},
		{"Centro Histórico", 1.5},
		{"Carcelén", "s/d"},
		{"Sangolquí", 0.04},
		{"Fajardo", 0.002},
		{"Cotogchoa", 0.003},
	}); err != nil {
		return Dataset{}, err
	}
	return d, nil
}

func writeSheet(path string, rows [][]any) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Hoja1")
	if err != nil {
		return eris.Wrap(err, "fixture: add sheet")
	}
	for _, r := range rows {
		row := sheet.AddRow()
		for _, v := range r {
			cell := row.AddCell()
			switch tv := v.(type) {
			case float64:
				cell.SetFloat(tv)
			case string:
				cell.SetString(tv)
			}
		}
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "fixture: save %s", path)
	}
	return nil
}
