// Package parish builds the unified parish table from the rural, urban and
// "other" polygon layers.
package parish

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Parish types assigned from the rural and urban layers. Records from the
// other layer keep the raw value of their ur_ru indicator.
const (
	TypeRural = "RURAL"
	TypeUrban = "URBANO"
)

// NoName is the display name used when no name field is populated.
const NoName = "Sin nombre"

// Layer names recorded on each parish.
const (
	LayerRural = "rural"
	LayerUrban = "urban"
	LayerOther = "other"
)

// Parish is one polygon of the unified table.
type Parish struct {
	Index     int        `json:"index"`
	Layer     string     `json:"layer"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	ZoneAdmin string     `json:"zone_admin"`
	Geometry  geom.T     `json:"-"`
	Centroid  geom.Coord `json:"-"` // {lon, lat}; nil until computed
	Sector    string     `json:"sector,omitempty"`
}

// HasCentroid reports whether the centroid has been computed.
func (p Parish) HasCentroid() bool {
	return len(p.Centroid) >= 2
}

// Lon returns the centroid longitude, or 0 if absent.
func (p Parish) Lon() float64 {
	if !p.HasCentroid() {
		return 0
	}
	return p.Centroid.X()
}

// Lat returns the centroid latitude, or 0 if absent.
func (p Parish) Lat() float64 {
	if !p.HasCentroid() {
		return 0
	}
	return p.Centroid.Y()
}

// Scope selects which layers a view loads.
type Scope string

// Supported scopes.
const (
	ScopeAll   Scope = "todas"
	ScopeRural Scope = "rurales"
	ScopeUrban Scope = "urbanas"
)

// ParseScope validates a scope string. Empty means ScopeAll.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopeRural:
		return ScopeRural, nil
	case ScopeUrban:
		return ScopeUrban, nil
	default:
		return "", eris.Errorf("parish: unknown scope %q", s)
	}
}

// Type returns the parish type the scope restricts to, or "" for ScopeAll.
func (s Scope) Type() string {
	switch s {
	case ScopeRural:
		return TypeRural
	case ScopeUrban:
		return TypeUrban
	default:
		return ""
	}
}
