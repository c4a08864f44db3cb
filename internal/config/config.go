package config

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	DataDir    string           `yaml:"data_dir" mapstructure:"data_dir"`
	Inputs     InputsConfig     `yaml:"inputs" mapstructure:"inputs"`
	Outputs    OutputsConfig    `yaml:"outputs" mapstructure:"outputs"`
	Projection ProjectionConfig `yaml:"projection" mapstructure:"projection"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Metrics    MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// InputsConfig names every source dataset. Relative paths resolve against
// Config.DataDir.
type InputsConfig struct {
	Parcels   string   `yaml:"parcels" mapstructure:"parcels"`
	Model     string   `yaml:"model" mapstructure:"model"`
	Public    string   `yaml:"public" mapstructure:"public"`
	LandUse   string   `yaml:"land_use" mapstructure:"land_use"`
	Zoning    string   `yaml:"zoning" mapstructure:"zoning"`
	Height    string   `yaml:"height" mapstructure:"height"`
	Historic  string   `yaml:"historic" mapstructure:"historic"`
	Transit   []string `yaml:"transit" mapstructure:"transit"`
	GeomField string   `yaml:"geom_field" mapstructure:"geom_field"`
}

// OutputsConfig names the artifacts written at the end of a run.
type OutputsConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	Geometry string `yaml:"geometry" mapstructure:"geometry"`
	Overlay  string `yaml:"overlay" mapstructure:"overlay"`
	Model    string `yaml:"model" mapstructure:"model"`
	XLSX     string `yaml:"xlsx" mapstructure:"xlsx"`
}

// ProjectionConfig selects the planar systems used for area and centroids.
type ProjectionConfig struct {
	AreaEPSG     int `yaml:"area_epsg" mapstructure:"area_epsg"`
	CentroidEPSG int `yaml:"centroid_epsg" mapstructure:"centroid_epsg"`
}

// PipelineConfig configures stage execution.
type PipelineConfig struct {
	Workers      int    `yaml:"workers" mapstructure:"workers"`
	TransitIndex string `yaml:"transit_index" mapstructure:"transit_index"`
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ExportConfig configures the optional Postgres export of the model table.
type ExportConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table"`
	Mode        string `yaml:"mode" mapstructure:"mode"` // replace or upsert
	MaxAttempts int    `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// MetricsConfig configures the node-exporter textfile written after a run.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" mapstructure:"textfile_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Input resolves an input path against the data directory.
func (c *Config) Input(path string) string {
	if path == "" || filepath.IsAbs(path) || c.DataDir == "" {
		return path
	}
	return filepath.Join(c.DataDir, path)
}

// Output resolves an output file name against the output directory.
func (c *Config) Output(name string) string {
	if name == "" || filepath.IsAbs(name) || c.Outputs.Dir == "" {
		return name
	}
	return filepath.Join(c.Outputs.Dir, name)
}

// Load reads configuration from file and environment. An empty path searches
// the working directory for config.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("PARCEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data_dir", "data")
	v.SetDefault("inputs.parcels", "active-and-retired-parcels.csv")
	v.SetDefault("inputs.model", "input/parcels-w-fzp-model-data.csv")
	v.SetDefault("inputs.public", "public/public-parcels.geojson")
	v.SetDefault("inputs.land_use", "input/land-use.csv")
	v.SetDefault("inputs.zoning", "input/zoning-district.csv")
	v.SetDefault("inputs.height", "input/height-and-bulk-districts.csv")
	v.SetDefault("inputs.historic", "input/historic-districts.csv")
	v.SetDefault("inputs.transit", []string{
		"public/transit-bart.geojson",
		"public/transit-muni.geojson",
		"public/transit-caltrain.geojson",
	})
	v.SetDefault("inputs.geom_field", "the_geom")
	v.SetDefault("outputs.dir", "output")
	v.SetDefault("outputs.geometry", "parcels.geojson")
	v.SetDefault("outputs.overlay", "parcels-overlay.csv")
	v.SetDefault("outputs.model", "parcels-model.csv")
	v.SetDefault("projection.area_epsg", 2227)
	v.SetDefault("projection.centroid_epsg", 2227)
	v.SetDefault("pipeline.workers", 0)
	v.SetDefault("pipeline.transit_index", "s2")
	v.SetDefault("store.sqlite_path", "parcel-runs.db")
	v.SetDefault("export.table", "parcel_model")
	v.SetDefault("export.mode", "replace")
	v.SetDefault("export.max_attempts", 3)
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings no run could honor.
func (c *Config) Validate() error {
	switch c.Pipeline.TransitIndex {
	case "s2", "scan":
	default:
		return eris.Errorf("config: unknown pipeline.transit_index %q", c.Pipeline.TransitIndex)
	}
	switch c.Export.Mode {
	case "replace", "upsert":
	default:
		return eris.Errorf("config: unknown export.mode %q", c.Export.Mode)
	}
	if c.Export.MaxAttempts < 0 {
		return eris.Errorf("config: export.max_attempts must be >= 0, got %d", c.Export.MaxAttempts)
	}
	if c.Pipeline.Workers < 0 {
		return eris.Errorf("config: pipeline.workers must be >= 0, got %d", c.Pipeline.Workers)
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
