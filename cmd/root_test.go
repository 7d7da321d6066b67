package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/parroquia-maps/internal/config"
	"github.com/sells-group/parroquia-maps/internal/fixture"
	"github.com/sells-group/parroquia-maps/internal/view"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "classify", "view", "export"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "parroquias", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		cmd  string
		flag string
		def  string
	}{
		{"serve", "port", "0"},
		{"classify", "scope", "todas"},
		{"view", "scope", "todas"},
		{"view", "k", "0"},
		{"view", "out", "-"},
		{"export", "format", "geojson"},
		{"export", "view", "[sectors]"},
		{"export", "replace", "false"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd+"/"+tt.flag, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{tt.cmd})
			require.NoError(t, err)
			flag := cmd.Flags().Lookup(tt.flag)
			require.NotNil(t, flag)
			assert.Equal(t, tt.def, flag.DefValue)
		})
	}
}

func TestNewBuilder(t *testing.T) {
	d, err := fixture.Write(t.TempDir())
	require.NoError(t, err)
	c := &config.Config{}
	c.Data.Rural = d.Rural
	c.Data.Urban = d.Urban
	c.Data.Other = d.Other
	c.Data.Growth = d.Growth
	c.Data.Population = d.Population
	c.Data.Sheet = "Hoja1"
	c.Layers.Urban.CRS = "EPSG:4326"
	c.Sectors.ConfigPath = d.Sectors
	c.Cluster.K = 3

	b := newBuilder(c)
	assert.Equal(t, d.Rural, b.Loader.Sources.Rural.Path)
	assert.Equal(t, "EPSG:4326", b.Loader.Sources.Urban.CRS)
	assert.Equal(t, d.Growth, b.GrowthPath)
	assert.Equal(t, d.Population, b.PopulationPath)
	assert.Equal(t, d.Sectors, b.SectorConfig)
	assert.Equal(t, "Hoja1", b.Sheet.SheetName)
	assert.Equal(t, 3, b.DefaultK)
}

// fixtureBuilder returns a builder over a fresh fixture dataset.
func fixtureBuilder(t *testing.T) *view.Builder {
	t.Helper()
	d, err := fixture.Write(t.TempDir())
	require.NoError(t, err)
	c := &config.Config{}
	c.Data.Rural = d.Rural
	c.Data.Urban = d.Urban
	c.Data.Other = d.Other
	c.Data.Growth = d.Growth
	c.Data.Population = d.Population
	c.Sectors.ConfigPath = d.Sectors
	c.Cluster.K = 2
	return newBuilder(c)
}
