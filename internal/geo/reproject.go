package geo

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// CoordFunc maps one (x, y) pair to another.
type CoordFunc func(x, y float64) (float64, float64, error)

// Transform returns a copy of g with fn applied to every vertex. Only the
// areal geometries found in parish layers are accepted.
func Transform(g geom.T, fn CoordFunc) (geom.T, error) {
	var out geom.T
	switch t := g.(type) {
	case *geom.Polygon:
		out = t.Clone()
	case *geom.MultiPolygon:
		out = t.Clone()
	case nil:
		return nil, eris.New("geo: nil geometry")
	default:
		return nil, eris.Errorf("geo: unsupported geometry %T", g)
	}

	flat := out.FlatCoords()
	stride := out.Stride()
	for i := 0; i+1 < len(flat); i += stride {
		x, y, err := fn(flat[i], flat[i+1])
		if err != nil {
			return nil, err
		}
		flat[i], flat[i+1] = x, y
	}
	return out, nil
}

// ToWGS84 reprojects g from the given CRS to EPSG:4326. Geometries already
// in WGS84 are returned unchanged.
func ToWGS84(g geom.T, from CRS) (geom.T, error) {
	if from.IsGeographic() {
		return g, nil
	}
	proj, err := ProjectionFor(from)
	if err != nil {
		return nil, err
	}
	out, err := Transform(g, proj.Inverse)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: reproject from %s", from)
	}
	return setSRID(out, WGS84), nil
}

// FromWGS84 projects a WGS84 geometry into the given UTM projection.
func FromWGS84(g geom.T, proj UTM) (geom.T, error) {
	return Transform(g, proj.Forward)
}

func setSRID(g geom.T, srid int) geom.T {
	switch t := g.(type) {
	case *geom.Polygon:
		return t.SetSRID(srid)
	case *geom.MultiPolygon:
		return t.SetSRID(srid)
	}
	return g
}
