package geo

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Feature is one polygon record of a layer with its raw attributes.
type Feature struct {
	Properties map[string]any
	Geometry   geom.T
}

// Layer is a polygon collection read from a single file, already
// normalized to WGS84.
type Layer struct {
	Path     string
	CRS      CRS // CRS the file was stored in
	Features []Feature
}

// ReadLayer reads a GeoJSON (.geojson, .json) or ESRI shapefile (.shp)
// and reprojects every geometry to WGS84. crsOverride, when non-empty,
// takes precedence over any CRS declared by the file; shapefiles without
// an override are assumed to be WGS84.
func ReadLayer(path, crsOverride string) (*Layer, error) {
	var override *CRS
	if crsOverride != "" {
		c, err := ParseCRS(crsOverride)
		if err != nil {
			return nil, err
		}
		override = &c
	}

	var (
		layer *Layer
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		layer, err = ReadGeoJSON(path)
	case ".shp":
		layer, err = ReadShapefile(path)
	default:
		return nil, eris.Errorf("geo: unsupported layer format %q", path)
	}
	if err != nil {
		return nil, err
	}
	if override != nil {
		layer.CRS = *override
	}

	if layer.CRS.IsGeographic() {
		return layer, nil
	}
	for i := range layer.Features {
		g, err := ToWGS84(layer.Features[i].Geometry, layer.CRS)
		if err != nil {
			return nil, eris.Wrapf(err, "geo: layer %s feature %d", path, i)
		}
		layer.Features[i].Geometry = g
	}
	return layer, nil
}

// Property returns a raw attribute, or nil if absent.
func (f Feature) Property(name string) any {
	if f.Properties == nil {
		return nil
	}
	return f.Properties[name]
}
