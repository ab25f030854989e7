package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Datasets  DatasetsConfig  `yaml:"datasets" envconfig:"DATASETS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig toggles tracing and metrics.
type TelemetryConfig struct {
	EnableTracing bool `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics bool `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
}

// DatasetsConfig describes the two source workbooks and the indicator
// allow-lists applied to them.
type DatasetsConfig struct {
	PrevalencePath      string   `yaml:"prevalence_path" envconfig:"PREVALENCE_PATH"`
	MortalityPath       string   `yaml:"mortality_path" envconfig:"MORTALITY_PATH"`
	PrevalenceIndicator string   `yaml:"prevalence_indicator" envconfig:"PREVALENCE_INDICATOR"`
	MortalityIndicator  string   `yaml:"mortality_indicator" envconfig:"MORTALITY_INDICATOR"`
	BreakdownIndicators []string `yaml:"breakdown_indicators" envconfig:"BREAKDOWN_INDICATORS"`
	FutureYears         []int    `yaml:"future_years" envconfig:"FUTURE_YEARS"`
}

// defaultBreakdownIndicators is the adolescent/adult tobacco-use
// indicator set shown in the stacked breakdown chart.
var defaultBreakdownIndicators = []string{
	"Current cigarette smoking among adolescents (%)",
	"Current e-cigarette use among adolescents (%)",
	"Current smokeless tobacco use among adolescents (%)",
	"Current tobacco smoking among adolescents (%)",
	"Current tobacco use among adolescents (%)",
	"Daily cigarette smoking among adolescents (%)",
	"Daily tobacco smoking among adolescents (%)",
	"Current cigarette smoking among adults (%)",
	"Current e-cigarette use among adults (%)",
	"Current smokeless tobacco use among adults (%)",
	"Current tobacco smoking among adults (%)",
	"Current tobacco use among adults (%)",
	"Daily cigarette smoking among adults (%)",
	"Daily e-cigarette use among adults (%)",
	"Daily smokeless tobacco use among adults (%)",
	"Daily tobacco smoking among adults (%)",
	"Daily tobacco use among adults (%)",
}

// Load loads configuration from an optional YAML file overlaid by
// environment variables (env wins), then validates it.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := findConfigFile(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// envconfig leaves fields untouched when the variable is unset, so
	// file values survive unless overridden.
	if err := envconfig.Process("WHODASH", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays configuration from a YAML file onto cfg.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// findConfigFile returns the first config file found in the common
// locations, or an empty string when none exists.
func findConfigFile() string {
	locations := []string{
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

// validate checks the configuration and fills indicator defaults.
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Datasets.PrevalencePath == "" {
		return fmt.Errorf("prevalence dataset path must be set")
	}
	if c.Datasets.MortalityPath == "" {
		return fmt.Errorf("mortality dataset path must be set")
	}
	if c.Datasets.PrevalenceIndicator == "" || c.Datasets.MortalityIndicator == "" {
		return fmt.Errorf("dataset indicators must be set")
	}
	if len(c.Datasets.BreakdownIndicators) == 0 {
		c.Datasets.BreakdownIndicators = defaultBreakdownIndicators
	}
	if len(c.Datasets.FutureYears) == 0 {
		return fmt.Errorf("at least one forecast year must be configured")
	}

	switch c.Logging.Output {
	case "stdout", "file", "both":
	default:
		c.Logging.Output = "stdout"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/whodash.log"
	}

	return nil
}

// Default returns the default configuration. Dataset paths and
// indicator names match the published WHO workbooks the dashboard was
// built for.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "logs/whodash.log",
		},
		Telemetry: TelemetryConfig{
			EnableTracing: true,
			EnableMetrics: true,
		},
		Datasets: DatasetsConfig{
			PrevalencePath:      "data/rep_gho_tobacco/data.xlsx",
			MortalityPath:       "data/rep_ihme_inc/data.xlsx",
			PrevalenceIndicator: "Estimate of current tobacco use prevalence (age-standardized) (%)",
			MortalityIndicator:  "2.A.05 Tracheal, bronchus, and lung cancer incidence (age standardized) (per 100 000 population)",
			BreakdownIndicators: defaultBreakdownIndicators,
			FutureYears:         []int{2025, 2030},
		},
	}
}
