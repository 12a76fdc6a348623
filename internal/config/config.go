package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"jitu/internal/analytics"
	"jitu/internal/dataprocessing"
	"jitu/pkg/contracts/domain"
)

// EnvPrefix namespaces every environment variable, e.g. JITU_SERVER_PORT
const EnvPrefix = "JITU"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Ingest    IngestConfig    `yaml:"ingest" envconfig:"INGEST"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gte=0"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains request-admission configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains per-client rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// AnalysisConfig holds the defaults of every analysis run
type AnalysisConfig struct {
	InactivityDays        int     `yaml:"inactivity_days" envconfig:"INACTIVITY_DAYS" validate:"gte=0"`
	Granularity           string  `yaml:"granularity" envconfig:"GRANULARITY" validate:"oneof=daily weekly monthly"`
	ParetoTarget          float64 `yaml:"pareto_target" envconfig:"PARETO_TARGET" validate:"gt=0,lte=1"`
	TopN                  int     `yaml:"top_n" envconfig:"TOP_N" validate:"gte=0"`
	TrendThresholdPercent float64 `yaml:"trend_threshold_percent" envconfig:"TREND_THRESHOLD_PERCENT" validate:"gte=0"`
	CurrencyPrecision     int32   `yaml:"currency_precision" envconfig:"CURRENCY_PRECISION" validate:"gte=0,lte=6"`
	FoldProductCase       bool    `yaml:"fold_product_case" envconfig:"FOLD_PRODUCT_CASE"`
	DropDuplicates        bool    `yaml:"drop_duplicates" envconfig:"DROP_DUPLICATES"`
}

// Options converts the config into engine options
func (a AnalysisConfig) Options() analytics.Options {
	return analytics.Options{
		InactivityDays:        a.InactivityDays,
		Granularity:           domain.Granularity(a.Granularity),
		ParetoTarget:          a.ParetoTarget,
		TopN:                  a.TopN,
		TrendThresholdPercent: a.TrendThresholdPercent,
	}
}

// IngestConfig bounds uploads and tunes normalization
type IngestConfig struct {
	MaxUploadBytes int64   `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
	SampleRows     int     `yaml:"sample_rows" envconfig:"SAMPLE_ROWS" validate:"gt=0"`
	MaxSkipRate    float64 `yaml:"max_skip_rate" envconfig:"MAX_SKIP_RATE" validate:"gte=0,lte=1"`
}

// NormalizerOptions combines ingest and analysis settings for the table normalizer
func (c *Config) NormalizerOptions() dataprocessing.NormalizerOptions {
	return dataprocessing.NormalizerOptions{
		CurrencyPrecision: c.Analysis.CurrencyPrecision,
		Processing: dataprocessing.ProcessingOptions{
			FoldProductCase: c.Analysis.FoldProductCase,
			DropDuplicates:  c.Analysis.DropDuplicates,
		},
		MaxSkipRate: c.Ingest.MaxSkipRate,
	}
}

// TelemetryConfig selects tracing and metric exporters
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty or missing), then JITU_* environment variables.
// Later sources win.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filePath, err)
	}
	return nil
}

// validate normalizes enumerations and checks every field tag
func (c *Config) validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	c.Analysis.Granularity = strings.ToLower(c.Analysis.Granularity)
	if g, err := domain.ParseGranularity(c.Analysis.Granularity); err == nil {
		c.Analysis.Granularity = string(g)
	}

	// JSON is the only supported log format
	c.Logging.Format = "json"
	if c.Logging.FilePath == "" && (c.Logging.Output == "file" || c.Logging.Output == "both") {
		c.Logging.FilePath = DefaultLogFile
	}

	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid %s: %v fails %q", fe.Namespace(), fe.Value(), fe.Tag()+paramSuffix(fe.Param()))
		}
		return err
	}
	return nil
}

func paramSuffix(param string) string {
	if param == "" {
		return ""
	}
	return "=" + param
}

// getConfigFilePath returns the first config file found in the common locations
func getConfigFilePath() string {
	locations := []string{
		"jitu.yaml",
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	analysis := analytics.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimitRPS,
				Burst:   DefaultRateLimitBurst,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Analysis: AnalysisConfig{
			InactivityDays:        analysis.InactivityDays,
			Granularity:           string(analysis.Granularity),
			ParetoTarget:          analysis.ParetoTarget,
			TopN:                  analysis.TopN,
			TrendThresholdPercent: analysis.TrendThresholdPercent,
			CurrencyPrecision:     dataprocessing.DefaultNormalizerOptions().CurrencyPrecision,
		},
		Ingest: IngestConfig{
			MaxUploadBytes: DefaultMaxUploadBytes,
			SampleRows:     DefaultSampleRows,
			MaxSkipRate:    dataprocessing.DefaultNormalizerOptions().MaxSkipRate,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			Environment:    "development",
			EnableTracing:  false,
			EnableMetrics:  true,
			TraceExporter:  "stdout",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
