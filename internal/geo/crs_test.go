package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCRS(t *testing.T) {
	tests := []struct {
		input string
		want  CRS
	}{
		{"", WGS84},
		{"EPSG:4326", WGS84},
		{"epsg:32717", UTM17S},
		{"urn:ogc:def:crs:EPSG::32717", UTM17S},
		{"urn:ogc:def:crs:OGC:1.3:CRS84", WGS84},
		{"CRS84", WGS84},
		{"32617", 32617},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCRS(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCRS_Invalid(t *testing.T) {
	_, err := ParseCRS("urn:ogc:def:crs:EPSG::abc")
	assert.Error(t, err)
}

func TestProjectionFor(t *testing.T) {
	p, err := ProjectionFor(UTM17S)
	require.NoError(t, err)
	assert.Equal(t, 17, p.Zone)
	assert.True(t, p.South)

	p, err = ProjectionFor(32618)
	require.NoError(t, err)
	assert.Equal(t, 18, p.Zone)
	assert.False(t, p.South)

	_, err = ProjectionFor(3857)
	assert.Error(t, err)
}

func TestCRS_String(t *testing.T) {
	assert.Equal(t, "EPSG:32717", CRS(UTM17S).String())
	assert.True(t, CRS(WGS84).IsGeographic())
	assert.False(t, CRS(UTM17S).IsGeographic())
}
