// Package view builds the flat tables handed to the map renderer.
package view

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/parroquia-maps/internal/metric"
	"github.com/sells-group/parroquia-maps/internal/parish"
)

// View names.
const (
	Growth     = "growth"
	Population = "population"
	Sectors    = "sectors"
	Clusters   = "clusters"
)

// Names lists every view.
var Names = []string{Growth, Population, Sectors, Clusters}

// Default map framing.
var (
	DefaultCenter = [2]float64{-0.20, -78.50} // lat, lon
	DefaultZoom   = 11
)

// Row is one parish as the renderer sees it: primitive columns, geometry
// and a resolved color.
type Row struct {
	Index     int
	Code      string
	Name      string
	Type      string
	ZoneAdmin string
	Lat       float64
	Lon       float64
	Geometry  geom.T

	Sector  string   // sectors view
	Cluster *int     // clusters view
	Value   *float64 // growth and population views
	Label   string
	Color   string
}

// Table is a rendered view.
type Table struct {
	View   string
	Scope  parish.Scope
	Rows   []Row
	Legend metric.Legend
	Center [2]float64
	Zoom   int
}

func newRow(p parish.Parish) Row {
	return Row{
		Index:     p.Index,
		Code:      p.Code,
		Name:      p.Name,
		Type:      p.Type,
		ZoneAdmin: p.ZoneAdmin,
		Lat:       p.Lat(),
		Lon:       p.Lon(),
		Geometry:  p.Geometry,
	}
}

// Properties returns the GeoJSON properties of the row for view.
func (r Row) Properties(view string) map[string]any {
	props := map[string]any{
		"code":       r.Code,
		"name":       r.Name,
		"type":       r.Type,
		"zone_admin": r.ZoneAdmin,
		"lat":        r.Lat,
		"lon":        r.Lon,
		"color":      r.Color,
	}
	switch view {
	case Sectors:
		props["sector"] = r.Sector
	case Clusters:
		if r.Cluster != nil {
			props["cluster"] = *r.Cluster
		} else {
			props["cluster"] = nil
		}
	default:
		if r.Value != nil {
			props["value"] = *r.Value
		} else {
			props["value"] = nil
		}
		if r.Label != "" {
			props["label"] = r.Label
		} else {
			props["label"] = nil
		}
	}
	return props
}

// FeatureCollection converts the rows to GeoJSON features.
func (t *Table) FeatureCollection() *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(t.Rows))}
	for _, r := range t.Rows {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         r.Code,
			Geometry:   r.Geometry,
			Properties: r.Properties(t.View),
		})
	}
	return fc
}

// document is a FeatureCollection with the renderer's foreign members.
type document struct {
	Type     string             `json:"type"`
	View     string             `json:"view"`
	Scope    string             `json:"scope"`
	Center   [2]float64         `json:"center"`
	Zoom     int                `json:"zoom"`
	Legend   metric.Legend      `json:"legend"`
	Features []*geojson.Feature `json:"features"`
}

// MarshalJSON encodes the table as a GeoJSON FeatureCollection carrying
// view, scope, center, zoom and legend as foreign members.
func (t *Table) MarshalJSON() ([]byte, error) {
	doc := document{
		Type:     "FeatureCollection",
		View:     t.View,
		Scope:    string(t.Scope),
		Center:   t.Center,
		Zoom:     t.Zoom,
		Legend:   t.Legend,
		Features: t.FeatureCollection().Features,
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, eris.Wrap(err, "view: encode geojson")
	}
	return b, nil
}
