package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/parroquia-maps/internal/config"
	"github.com/sells-group/parroquia-maps/internal/fetcher"
	"github.com/sells-group/parroquia-maps/internal/geo"
	"github.com/sells-group/parroquia-maps/internal/parish"
	"github.com/sells-group/parroquia-maps/internal/view"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "parroquias",
	Short: "Choropleth views of the parishes of Quito",
	Long:  "Loads the rural, urban and neighbouring parish layers, classifies them into sectors and serves growth, population, sector and cluster views as GeoJSON.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newBuilder wires a view builder from the loaded configuration.
func newBuilder(c *config.Config) *view.Builder {
	return &view.Builder{
		Loader:         parish.NewLoader(c.Sources()),
		GrowthPath:     c.Data.Growth,
		PopulationPath: c.Data.Population,
		SectorConfig:   c.Sectors.ConfigPath,
		Sheet:          fetcher.XLSXOptions{SheetName: c.Data.Sheet},
		Projection:     geo.MetricProjection(),
		DefaultK:       c.Cluster.K,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
