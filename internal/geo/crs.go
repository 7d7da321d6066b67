// Package geo provides coordinate reference handling, projection and
// polygon layer reading for the parish maps.
package geo

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Well-known EPSG codes.
const (
	// WGS84 is the canonical geographic CRS every layer is normalized to.
	WGS84 = 4326
	// UTM17S is WGS84 / UTM zone 17S, the metric CRS covering Quito.
	UTM17S = 32717
)

// CRS identifies a coordinate reference system by EPSG code.
type CRS int

// String renders the CRS as "EPSG:<code>".
func (c CRS) String() string {
	return "EPSG:" + strconv.Itoa(int(c))
}

// IsGeographic reports whether the CRS is WGS84 longitude/latitude.
func (c CRS) IsGeographic() bool {
	return c == WGS84
}

// ParseCRS accepts the spellings seen in GeoJSON "crs" members and config
// files: "EPSG:4326", "epsg:32717", "urn:ogc:def:crs:EPSG::32717",
// "urn:ogc:def:crs:OGC:1.3:CRS84", "CRS84" or a bare code. An empty string
// means WGS84.
func ParseCRS(s string) (CRS, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return WGS84, nil
	}
	upper := strings.ToUpper(s)
	if strings.HasSuffix(upper, "CRS84") {
		return WGS84, nil
	}

	code := upper
	if i := strings.LastIndex(code, ":"); i >= 0 {
		code = code[i+1:]
	}
	n, err := strconv.Atoi(code)
	if err != nil || n <= 0 {
		return 0, eris.Errorf("geo: unrecognized CRS %q", s)
	}
	return CRS(n), nil
}

// ProjectionFor returns the projection for a metric CRS. Only WGS84 UTM
// zones (EPSG:326zz north, EPSG:327zz south) are supported.
func ProjectionFor(c CRS) (UTM, error) {
	code := int(c)
	switch {
	case code > 32600 && code <= 32660:
		return NewUTM(code-32600, false), nil
	case code > 32700 && code <= 32760:
		return NewUTM(code-32700, true), nil
	default:
		return UTM{}, eris.Errorf("geo: unsupported projected CRS %s", c)
	}
}
