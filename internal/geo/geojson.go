package geo

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// legacyCRS captures the pre-RFC 7946 "crs" member that QGIS and ogr2ogr
// still write; go-geom's FeatureCollection ignores it.
type legacyCRS struct {
	CRS *struct {
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
}

// ReadGeoJSON reads a FeatureCollection of Polygon/MultiPolygon features.
// Features without geometry are skipped.
func ReadGeoJSON(path string) (*Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: read %s", path)
	}
	return DecodeGeoJSON(path, data)
}

// DecodeGeoJSON decodes an in-memory FeatureCollection; path is only used
// for messages.
func DecodeGeoJSON(path string, data []byte) (*Layer, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "geo: parse %s", path)
	}

	var hdr legacyCRS
	if err := json.Unmarshal(data, &hdr); err != nil {
		return nil, eris.Wrapf(err, "geo: parse crs of %s", path)
	}
	crs := CRS(WGS84)
	if hdr.CRS != nil {
		c, err := ParseCRS(hdr.CRS.Properties.Name)
		if err != nil {
			return nil, eris.Wrapf(err, "geo: %s", path)
		}
		crs = c
	}

	layer := &Layer{Path: path, CRS: crs, Features: make([]Feature, 0, len(fc.Features))}
	var skipped int
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			skipped++
			continue
		}
		switch f.Geometry.(type) {
		case *geom.Polygon, *geom.MultiPolygon:
		default:
			return nil, eris.Errorf("geo: %s feature %d: unsupported geometry %T", path, i, f.Geometry)
		}
		props := f.Properties
		if props == nil {
			props = map[string]any{}
		}
		layer.Features = append(layer.Features, Feature{Properties: props, Geometry: f.Geometry})
	}

	if skipped > 0 {
		zap.L().Debug("geo: skipped features without geometry",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return layer, nil
}
