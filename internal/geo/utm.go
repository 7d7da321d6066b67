package geo

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-spatial/proj/core"
	_ "github.com/go-spatial/proj/operations" // registers the utm operation
	"github.com/go-spatial/proj/support"
	"github.com/rotisserie/eris"
)

// UTM is a WGS84 Universal Transverse Mercator zone. Projection math is
// done by go-spatial/proj; operations are built once per zone and shared.
type UTM struct {
	Zone  int
	South bool
}

// NewUTM returns the projection for a zone (1..60) and hemisphere.
func NewUTM(zone int, south bool) UTM {
	return UTM{Zone: zone, South: south}
}

// MetricProjection is the projection used for area-correct centroids.
func MetricProjection() UTM {
	return NewUTM(17, true)
}

// EPSG returns the EPSG code of the zone (326zz north, 327zz south).
func (p UTM) EPSG() CRS {
	if p.South {
		return CRS(32700 + p.Zone)
	}
	return CRS(32600 + p.Zone)
}

// ProjString returns the proj definition of the zone.
func (p UTM) ProjString() string {
	s := fmt.Sprintf("+proj=utm +zone=%d +ellps=WGS84 +units=m", p.Zone)
	if p.South {
		s += " +south"
	}
	return s
}

var (
	opsMu sync.Mutex
	ops   = map[UTM]core.IConvertLPToXY{}
)

func (p UTM) operation() (core.IConvertLPToXY, error) {
	if p.Zone < 1 || p.Zone > 60 {
		return nil, eris.Errorf("geo: utm zone %d out of range", p.Zone)
	}
	opsMu.Lock()
	defer opsMu.Unlock()
	if op, ok := ops[p]; ok {
		return op, nil
	}

	ps, err := support.NewProjString(p.ProjString())
	if err != nil {
		return nil, eris.Wrapf(err, "geo: parse %s", p.EPSG())
	}
	_, opx, err := core.NewSystem(ps)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: build %s", p.EPSG())
	}
	op, ok := opx.(core.IConvertLPToXY)
	if !ok {
		return nil, eris.Errorf("geo: %s is not a projection", p.EPSG())
	}
	ops[p] = op
	return op, nil
}

// Forward converts longitude/latitude degrees to easting/northing metres.
func (p UTM) Forward(lon, lat float64) (x, y float64, err error) {
	op, err := p.operation()
	if err != nil {
		return 0, 0, err
	}
	xy, err := op.Forward(&core.CoordLP{Lam: support.DDToR(lon), Phi: support.DDToR(lat)})
	if err != nil {
		return 0, 0, eris.Wrapf(err, "geo: project (%g, %g) to %s", lon, lat, p.EPSG())
	}
	return xy.X, xy.Y, nil
}

// Inverse converts easting/northing metres back to longitude/latitude.
// Longitudes are wrapped into [-180, 180].
func (p UTM) Inverse(x, y float64) (lon, lat float64, err error) {
	op, err := p.operation()
	if err != nil {
		return 0, 0, err
	}
	lp, err := op.Inverse(&core.CoordXY{X: x, Y: y})
	if err != nil {
		return 0, 0, eris.Wrapf(err, "geo: unproject (%g, %g) from %s", x, y, p.EPSG())
	}
	return wrapLon(support.RToDD(lp.Lam)), support.RToDD(lp.Phi), nil
}

// wrapLon maps a longitude in degrees into [-180, 180].
func wrapLon(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
