package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "eventetl/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Engine    EngineConfig    `yaml:"engine" envconfig:"ENGINE"`
	Geo       GeoConfig       `yaml:"geo" envconfig:"GEO"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig locates the event log relative to the working directory
type InputConfig struct {
	WorkDir string `yaml:"work_dir" split_words:"true"`
	Path    string `yaml:"path" split_words:"true" validate:"required"`
	Format  string `yaml:"format" split_words:"true" validate:"oneof=auto tsv xlsx"`
	Sheet   string `yaml:"sheet" split_words:"true"`
}

// EngineConfig controls the partitioned processing engine
type EngineConfig struct {
	AppName       string `yaml:"app_name" split_words:"true" validate:"required"`
	Parallelism   int    `yaml:"parallelism" split_words:"true" validate:"gte=0"`
	PartitionRows int    `yaml:"partition_rows" split_words:"true" validate:"gte=1"`
	TimeZone      string `yaml:"time_zone" split_words:"true" validate:"required"`
	QuietLevel    string `yaml:"quiet_level" split_words:"true" validate:"oneof=debug info warn error"`
}

// GeoConfig selects and configures the geography lookup
type GeoConfig struct {
	Provider     string `yaml:"provider" split_words:"true" validate:"oneof=mmdb table"`
	DatabasePath string `yaml:"database_path" split_words:"true" validate:"required_if=Provider mmdb"`
	TablePath    string `yaml:"table_path" split_words:"true" validate:"required_if=Provider table"`
	Language     string `yaml:"language" split_words:"true" validate:"required"`
	CacheSize    int    `yaml:"cache_size" split_words:"true" validate:"gte=0"`
}

// ReportConfig controls the aggregate report
type ReportConfig struct {
	TopN   int    `yaml:"top_n" split_words:"true" validate:"gte=1"`
	Format string `yaml:"format" split_words:"true" validate:"oneof=table json"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" split_words:"true" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" validate:"required_unless=Output console"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" split_words:"true" validate:"required"`
	Environment    string  `yaml:"environment" split_words:"true"`
	TraceExporter  string  `yaml:"trace_exporter" split_words:"true" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" split_words:"true" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" split_words:"true" validate:"gte=0,lte=1"`
	PushgatewayURL string  `yaml:"pushgateway_url" split_words:"true" validate:"omitempty,url"`
	JobName        string  `yaml:"job_name" split_words:"true" validate:"required"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence, then validates it.
// An empty path falls back to the first config file found in the usual locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load config file %s", path), err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file keep their current values
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// normalize lower-cases enumerated values so "WARN" and "warn" are equivalent
func (c *Config) normalize() {
	c.Input.Format = strings.ToLower(strings.TrimSpace(c.Input.Format))
	c.Engine.QuietLevel = strings.ToLower(strings.TrimSpace(c.Engine.QuietLevel))
	c.Geo.Provider = strings.ToLower(strings.TrimSpace(c.Geo.Provider))
	c.Report.Format = strings.ToLower(strings.TrimSpace(c.Report.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Output = strings.ToLower(strings.TrimSpace(c.Logging.Output))
	c.Telemetry.TraceExporter = strings.ToLower(strings.TrimSpace(c.Telemetry.TraceExporter))
	c.Telemetry.MetricExporter = strings.ToLower(strings.TrimSpace(c.Telemetry.MetricExporter))
}

// Validate checks struct constraints
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
		}
		return apperrors.NewValidationError("config validation failed", err).
			WithContext("fields", fields)
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"eventetl.yaml",
		"configs/eventetl.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path:   DefaultInputPath,
			Format: "auto",
		},
		Engine: EngineConfig{
			AppName:       DefaultAppName,
			Parallelism:   0,
			PartitionRows: DefaultPartitionRows,
			TimeZone:      "UTC",
			QuietLevel:    "warn",
		},
		Geo: GeoConfig{
			Provider:     "mmdb",
			DatabasePath: DefaultGeoDatabase,
			Language:     "en",
			CacheSize:    DefaultGeoCacheSize,
		},
		Report: ReportConfig{
			TopN:   DefaultTopN,
			Format: "table",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/etl.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    DefaultAppName,
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
			JobName:        DefaultAppName,
		},
	}
}
