package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "routecleaner/internal/errors"
)

// EnvPrefix namespaces every environment variable, e.g.
// ROUTECLEANER_PIPELINE_SEPARATOR_SIZE.
const EnvPrefix = "ROUTECLEANER"

// ConfigFileEnv names the variable that points at an explicit config file.
const ConfigFileEnv = EnvPrefix + "_CONFIG"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// OutputConfig controls where and how cleaned sheets are written
type OutputConfig struct {
	// Prefix starts every generated file name.
	Prefix string `json:"prefix" yaml:"prefix" envconfig:"FILE_PREFIX"`
	// DateLayout is a Go time layout for the date part of the name.
	DateLayout string `json:"date_layout" yaml:"date_layout" envconfig:"DATE_LAYOUT" validate:"required"`
	// DayOffset shifts the date from today; route sheets are prepared for tomorrow.
	DayOffset int    `json:"day_offset" yaml:"day_offset" envconfig:"DAY_OFFSET"`
	Format    string `json:"format" yaml:"format" envconfig:"FORMAT" validate:"oneof=xlsx csv"`
	// Dir overrides the default of writing next to the input.
	Dir       string `json:"-" yaml:"dir" envconfig:"DIR"`
	SheetName string `json:"sheet_name" yaml:"sheet_name" envconfig:"SHEET_NAME" validate:"required,max=31"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxUploadBytes  int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
	IncludeStack    bool            `yaml:"include_stack" envconfig:"INCLUDE_STACK"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration for the clean endpoint
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"required_if=Enabled true,gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"required_if=Enabled true,gte=0"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	MetricExporter string `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=none prometheus"`
}

// Load reads configuration from the file named by ROUTECLEANER_CONFIG, or
// the first of DefaultConfigFiles that exists, then applies environment
// overrides.
func Load() (*Config, error) {
	return LoadFile(configFilePath())
}

// LoadFile layers configuration: built-in defaults, then the YAML file at
// path (skipped when path is empty), then ROUTECLEANER_* environment
// variables. Only keys present in the file or environment override.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := mergeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile decodes YAML over cfg so absent keys keep their current values
func mergeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewIOError("read config", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("failed to parse %s", path), err).
			WithContext("file", path)
	}
	return nil
}

// DefaultConfigFiles are probed in order when ROUTECLEANER_CONFIG is unset.
var DefaultConfigFiles = []string{
	"routecleaner.yaml",
	"configs/routecleaner.yaml",
}

func configFilePath() string {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p
	}
	for _, location := range DefaultConfigFiles {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Validate checks every section. The first violation is returned as a
// validation error naming the offending YAML key.
func (c *Config) Validate() error {
	return validateStruct(c)
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/routecleaner.log",
		},
		Pipeline: DefaultPipelineConfig(),
		Output: OutputConfig{
			Prefix:     DefaultOutputPrefix,
			DateLayout: DefaultDateLayout,
			DayOffset:  1,
			Format:     "xlsx",
			SheetName:  DefaultSheetName,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxUploadBytes:  32 << 20,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     5,
				Burst:   10,
			},
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TraceExporter:  "none",
			MetricExporter: "prometheus",
		},
	}
}
