package parish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(lon, lat float64) string {
	const h = 0.01
	return fmt.Sprintf(`{"type":"Polygon","coordinates":[[[%g,%g],[%g,%g],[%g,%g],[%g,%g],[%g,%g]]]}`,
		lon-h, lat-h, lon+h, lat-h, lon+h, lat+h, lon-h, lat+h, lon-h, lat-h)
}

func feature(props string, lon, lat float64) string {
	return `{"type":"Feature","properties":` + props + `,"geometry":` + square(lon, lat) + `}`
}

func writeLayer(t *testing.T, dir, name string, features ...string) string {
	t.Helper()
	body := `{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testSources(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()
	return Sources{
		Rural: Source{Path: writeLayer(t, dir, "rurales.geojson",
			feature(`{"DPA_DESPAR":"CONOCOTO","DPA_PARROQ":"170155","zona_admin":"Los Chillos"}`, -78.48, -0.29),
			feature(`{"DPA_DESPAR":"TUMBACO","DPA_PARROQ":170184,"zona_admin":"Tumbaco"}`, -78.40, -0.21),
		)},
		Urban: Source{Path: writeLayer(t, dir, "urbanas.geojson",
			feature(`{"dpa_despar":"QUITUMBE","dpa_parroq":"170159","AD_ZONAL":"Quitumbe"}`, -78.55, -0.29),
		)},
		Other: Source{Path: writeLayer(t, dir, "otras.geojson",
			feature(`{"nombre":"SANGOLQUÍ","ur_ru":"URBANO"}`, -78.45, -0.33),
			feature(`{"nombre":"FAJARDO","ur_ru":"URBANO"}`, -78.44, -0.32),
			feature(`{"nombre":"COTOGCHOA","ur_ru":"RURAL"}`, -78.43, -0.38),
		)},
	}
}

func TestLoader_LoadAll(t *testing.T) {
	l := NewLoader(testSources(t))

	got, err := l.Load(context.Background(), ScopeAll)
	require.NoError(t, err)
	require.Len(t, got, 6)

	names := make([]string, len(got))
	for i, p := range got {
		names[i] = p.Name
		assert.Equal(t, i, p.Index)
		assert.NotNil(t, p.Geometry)
		assert.False(t, p.HasCentroid())
		assert.Empty(t, p.Sector)
	}
	assert.Equal(t, []string{"CONOCOTO", "TUMBACO", "QUITUMBE", "SANGOLQUÍ", "FAJARDO", "COTOGCHOA"}, names)

	assert.Equal(t, Parish{
		Index: 0, Layer: LayerRural, Code: "170155", Name: "CONOCOTO", Type: TypeRural,
		ZoneAdmin: "Los Chillos", Geometry: got[0].Geometry,
	}, got[0])
	assert.Equal(t, "170184", got[1].Code)

	assert.Equal(t, TypeUrban, got[2].Type)
	assert.Equal(t, "Quitumbe", got[2].ZoneAdmin)
	assert.Equal(t, "170159", got[2].Code)

	assert.Equal(t, LayerOther, got[3].Layer)
	assert.Equal(t, "URBANO", got[3].Type)
	assert.Equal(t, "URBANO", got[3].ZoneAdmin)
	assert.Equal(t, "170501", got[3].Code)
	assert.Equal(t, "170504", got[4].Code)
	assert.Equal(t, "RURAL", got[5].Type)
}

func TestLoader_LoadScopes(t *testing.T) {
	l := NewLoader(testSources(t))

	rural, err := l.Load(context.Background(), ScopeRural)
	require.NoError(t, err)
	require.Len(t, rural, 2)
	for _, p := range rural {
		assert.Equal(t, TypeRural, p.Type)
	}

	urban, err := l.Load(context.Background(), ScopeUrban)
	require.NoError(t, err)
	require.Len(t, urban, 1)
	assert.Equal(t, "QUITUMBE", urban[0].Name)
	assert.Equal(t, 0, urban[0].Index)
}

func TestLoader_LoadUnknownScope(t *testing.T) {
	l := NewLoader(testSources(t))
	_, err := l.Load(context.Background(), Scope("otras"))
	assert.Error(t, err)
}

func TestLoader_LoadGrowth(t *testing.T) {
	l := NewLoader(testSources(t))

	urban, err := l.LoadGrowth(context.Background(), ScopeUrban)
	require.NoError(t, err)
	require.Len(t, urban, 2, "FAJARDO excluded, rural other-layer records filtered")
	assert.Equal(t, "QUITUMBE", urban[0].Name)
	assert.Equal(t, "SANGOLQUÍ", urban[1].Name)
	assert.Equal(t, 1, urban[1].Index)

	rural, err := l.LoadGrowth(context.Background(), ScopeRural)
	require.NoError(t, err)
	require.Len(t, rural, 3)
	assert.Equal(t, "COTOGCHOA", rural[2].Name)
	assert.Equal(t, "170551", rural[2].Code)

	_, err = l.LoadGrowth(context.Background(), ScopeAll)
	assert.Error(t, err)
}

func TestLoader_MissingFile(t *testing.T) {
	src := testSources(t)
	src.Urban.Path = filepath.Join(t.TempDir(), "missing.geojson")
	l := NewLoader(src)

	_, err := l.Load(context.Background(), ScopeAll)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "urban layer")

	_, err = l.Load(context.Background(), ScopeRural)
	assert.NoError(t, err, "rural scope never touches the urban layer")
}

func TestLoader_MalformedFile(t *testing.T) {
	src := testSources(t)
	src.Other.Path = filepath.Join(t.TempDir(), "otras.geojson")
	require.NoError(t, os.WriteFile(src.Other.Path, []byte("{not json"), 0o644))

	_, err := NewLoader(src).Load(context.Background(), ScopeAll)
	assert.Error(t, err)
}

func TestLoader_NoPath(t *testing.T) {
	_, err := NewLoader(Sources{}).Load(context.Background(), ScopeRural)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no path configured")
}

func TestLoader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(testSources(t)).Load(ctx, ScopeAll)
	assert.Error(t, err)
}

func TestLoader_InjectedCodeTable(t *testing.T) {
	l := NewLoader(testSources(t))
	l.Codes = NewCodeTable(map[string]string{"Sangolquí": "999999"})

	got, err := l.Load(context.Background(), ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, "999999", got[3].Code)
	assert.Empty(t, got[4].Code, "FAJARDO absent from injected table")
}
