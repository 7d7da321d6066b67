package geo

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// EncodeEWKB encodes a WGS84 polygon as EWKB with SRID 4326, the format
// PostGIS accepts in COPY.
func EncodeEWKB(g geom.T) ([]byte, error) {
	if g == nil {
		return nil, nil
	}
	g = setSRID(asMulti(g), WGS84)
	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode EWKB")
	}
	return data, nil
}

// EncodeWKB encodes a polygon as plain little-endian WKB.
func EncodeWKB(g geom.T) ([]byte, error) {
	if g == nil {
		return nil, nil
	}
	data, err := wkb.Marshal(asMulti(g), wkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode WKB")
	}
	return data, nil
}

// asMulti promotes a Polygon to a single-part MultiPolygon so every row of
// an export shares one geometry type.
func asMulti(g geom.T) geom.T {
	p, ok := g.(*geom.Polygon)
	if !ok {
		return g
	}
	mp := geom.NewMultiPolygon(p.Layout())
	if err := mp.Push(p); err != nil {
		return g
	}
	return mp
}
