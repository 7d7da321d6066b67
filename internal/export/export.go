// Package export writes view tables to files and databases.
package export

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/parroquia-maps/internal/geo"
	"github.com/sells-group/parroquia-maps/internal/view"
)

// Sink receives a rendered view.
type Sink interface {
	Write(ctx context.Context, t *view.Table) (int64, error)
}

// Supported formats.
const (
	FormatGeoJSON  = "geojson"
	FormatXLSX     = "xlsx"
	FormatSQLite   = "sqlite"
	FormatPostgres = "postgres"
)

// Columns of every tabular sink, in order.
var Columns = []string{
	"view", "scope", "idx", "code", "name", "type", "zone_admin",
	"lat", "lon", "sector", "cluster", "value", "label", "color", "geom",
}

// ParseFormat validates a format name.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(s))
	switch f {
	case FormatGeoJSON, FormatXLSX, FormatSQLite, FormatPostgres:
		return f, nil
	default:
		return "", eris.Errorf("export: unknown format %q", s)
	}
}

// records flattens a table into Columns order. Geometry is EWKB; nullable
// columns are nil when the view does not set them.
func records(t *view.Table) ([][]any, error) {
	out := make([][]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		var g []byte
		if r.Geometry != nil {
			b, err := geo.EncodeEWKB(r.Geometry)
			if err != nil {
				return nil, eris.Wrapf(err, "export: encode geometry of %s", r.Name)
			}
			g = b
		}
		out = append(out, []any{
			t.View,
			string(t.Scope),
			int64(r.Index),
			r.Code,
			r.Name,
			r.Type,
			r.ZoneAdmin,
			r.Lat,
			r.Lon,
			nullString(r.Sector),
			nullInt(r.Cluster),
			nullFloat(r.Value),
			nullString(r.Label),
			r.Color,
			g,
		})
	}
	return out, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
