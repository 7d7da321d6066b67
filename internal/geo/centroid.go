package geo

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Centroid returns the area centroid of a WGS84 polygon as {lon, lat}.
// The centroid is taken in the metric projection and mapped back, so it is
// not skewed by degree distortion.
func Centroid(g geom.T, proj UTM) (geom.Coord, error) {
	if g == nil || g.Empty() {
		return nil, eris.New("geo: centroid of empty geometry")
	}
	projected, err := FromWGS84(g, proj)
	if err != nil {
		return nil, eris.Wrap(err, "geo: centroid")
	}
	c, err := xy.Centroid(projected)
	if err != nil {
		return nil, eris.Wrap(err, "geo: centroid")
	}
	if len(c) < 2 {
		return nil, eris.New("geo: empty centroid")
	}
	lon, lat, err := proj.Inverse(c[0], c[1])
	if err != nil {
		return nil, eris.Wrap(err, "geo: centroid")
	}
	return geom.Coord{lon, lat}, nil
}
