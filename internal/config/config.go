package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/parroquia-maps/internal/parish"
)

// Config holds the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Layers  LayersConfig  `yaml:"layers" mapstructure:"layers"`
	Sectors SectorsConfig `yaml:"sectors" mapstructure:"sectors"`
	Cluster ClusterConfig `yaml:"cluster" mapstructure:"cluster"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the input files.
type DataConfig struct {
	Rural      string `yaml:"rural" mapstructure:"rural"`
	Urban      string `yaml:"urban" mapstructure:"urban"`
	Other      string `yaml:"other" mapstructure:"other"`
	Growth     string `yaml:"growth" mapstructure:"growth"`
	Population string `yaml:"population" mapstructure:"population"`
	Sheet      string `yaml:"sheet" mapstructure:"sheet"`
}

// LayerCRS overrides the CRS of a layer whose file does not declare one.
type LayerCRS struct {
	CRS string `yaml:"crs" mapstructure:"crs"`
}

// LayersConfig holds per-layer CRS overrides.
type LayersConfig struct {
	Rural LayerCRS `yaml:"rural" mapstructure:"rural"`
	Urban LayerCRS `yaml:"urban" mapstructure:"urban"`
	Other LayerCRS `yaml:"other" mapstructure:"other"`
}

// SectorsConfig locates the sector rule file.
type SectorsConfig struct {
	ConfigPath string `yaml:"config_path" mapstructure:"config_path"`
}

// ClusterConfig configures the clusters view.
type ClusterConfig struct {
	K    int `yaml:"k" mapstructure:"k"`
	MaxK int `yaml:"max_k" mapstructure:"max_k"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// ExportConfig configures the export sinks.
type ExportConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	Sheet       string `yaml:"sheet" mapstructure:"sheet"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Sources returns the layer files with their CRS overrides.
func (c *Config) Sources() parish.Sources {
	return parish.Sources{
		Rural: parish.Source{Path: c.Data.Rural, CRS: c.Layers.Rural.CRS},
		Urban: parish.Source{Path: c.Data.Urban, CRS: c.Layers.Urban.CRS},
		Other: parish.Source{Path: c.Data.Other, CRS: c.Layers.Other.CRS},
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PARROQUIAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.rural", "data/parroquias_rurales.shp")
	v.SetDefault("data.urban", "data/parroquias_urbanas.shp")
	v.SetDefault("data.other", "data/otras_parroquias.geojson")
	v.SetDefault("data.growth", "data/tasa_crecimiento.xlsx")
	v.SetDefault("data.population", "data/porcentaje_poblacion.xlsx")
	v.SetDefault("data.sheet", "")
	v.SetDefault("layers.rural.crs", "")
	v.SetDefault("layers.urban.crs", "")
	v.SetDefault("layers.other.crs", "")
	v.SetDefault("sectors.config_path", "sectores.yaml")
	v.SetDefault("cluster.k", 4)
	v.SetDefault("cluster.max_k", 20)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 0.0)
	v.SetDefault("server.rate_burst", 10)
	v.SetDefault("export.database_url", "")
	v.SetDefault("export.table", "parroquias")
	v.SetDefault("export.sqlite_path", "parroquias.db")
	v.SetDefault("export.sheet", "parroquias")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are
// "serve", "view" and "export-postgres".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
	case "view":
	case "export-postgres":
		if c.Export.DatabaseURL == "" {
			errs = append(errs, "export.database_url is required")
		}
		if c.Export.Table == "" {
			errs = append(errs, "export.table is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Data.Rural == "" || c.Data.Urban == "" || c.Data.Other == "" {
		errs = append(errs, "data.rural, data.urban and data.other are required")
	}
	if c.Cluster.K < 1 || (c.Cluster.MaxK > 0 && c.Cluster.K > c.Cluster.MaxK) {
		errs = append(errs, fmt.Sprintf("cluster.k must be between 1 and %d", c.Cluster.MaxK))
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
