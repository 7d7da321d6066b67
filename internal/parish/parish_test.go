package parish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestParseScope(t *testing.T) {
	tests := []struct {
		in   string
		want Scope
	}{
		{"", ScopeAll},
		{"todas", ScopeAll},
		{"Rurales", ScopeRural},
		{" urbanas ", ScopeUrban},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScope(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseScope("otras")
	assert.Error(t, err)
}

func TestScope_Type(t *testing.T) {
	assert.Equal(t, TypeRural, ScopeRural.Type())
	assert.Equal(t, TypeUrban, ScopeUrban.Type())
	assert.Empty(t, ScopeAll.Type())
}

func TestParish_Centroid(t *testing.T) {
	var p Parish
	assert.False(t, p.HasCentroid())
	assert.Zero(t, p.Lat())

	p.Centroid = geom.Coord{-78.5, -0.2}
	assert.True(t, p.HasCentroid())
	assert.Equal(t, -78.5, p.Lon())
	assert.Equal(t, -0.2, p.Lat())
}

func TestCodeTable_Lookup(t *testing.T) {
	table := DefaultCodeTable()

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"SANGOLQUÍ", "170501", true},
		{"Sangolqui", "170501", true},
		{" san rafael ", "170503", true},
		{"Fajardo", "170504", true},
		{"CONOCOTO", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Lookup(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLayerSchema_Name(t *testing.T) {
	s := DefaultSchemas().Rural

	tests := []struct {
		name  string
		props map[string]any
		want  string
	}{
		{"nombre first", map[string]any{"nombre": "Cumbayá", "DPA_DESPAR": "CUMBAYA"}, "Cumbayá"},
		{"empty nombre skipped", map[string]any{"nombre": "", "DPA_DESPAR": "TUMBACO"}, "TUMBACO"},
		{"null nombre skipped", map[string]any{"nombre": nil, "dpa_despar": "PIFO"}, "PIFO"},
		{"case sensitive", map[string]any{"Nombre": "X", "DPA_despar": "Y"}, NoName},
		{"none", map[string]any{}, NoName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.name(tt.props))
		})
	}
}

func TestLayerSchema_Code(t *testing.T) {
	s := DefaultSchemas().Other
	table := DefaultCodeTable()

	tests := []struct {
		name  string
		props map[string]any
		pname string
		want  string
	}{
		{"string code", map[string]any{"DPA_PARROQ": "170155"}, "CONOCOTO", "170155"},
		{"numeric code", map[string]any{"dpa_parroq": 170150.0}, "CALDERON", "170150"},
		{"nan string skipped", map[string]any{"DPA_PARROQ": "nan", "dpa_parroq": "170160"}, "X", "170160"},
		{"fallback table", map[string]any{"DPA_PARROQ": "nan"}, "Sangolquí", "170501"},
		{"unknown", map[string]any{}, "LA MERCED", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.code(tt.props, tt.pname, table))
		})
	}
}
