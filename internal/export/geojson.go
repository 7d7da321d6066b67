package export

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/parroquia-maps/internal/view"
)

// GeoJSON writes the table as a FeatureCollection to Path, or to Out when
// Path is empty or "-".
type GeoJSON struct {
	Path string
	Out  io.Writer
}

// Write implements Sink.
func (s GeoJSON) Write(_ context.Context, t *view.Table) (int64, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return 0, eris.Wrap(err, "export: geojson")
	}

	if s.Path == "" || s.Path == "-" {
		out := s.Out
		if out == nil {
			out = os.Stdout
		}
		if _, err := out.Write(append(data, '\n')); err != nil {
			return 0, eris.Wrap(err, "export: write geojson")
		}
		return int64(len(t.Rows)), nil
	}

	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return 0, eris.Wrapf(err, "export: write %s", s.Path)
	}
	return int64(len(t.Rows)), nil
}
