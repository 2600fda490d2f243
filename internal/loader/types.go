// Package loader - Configuration Types
//
// Defines the YAML configuration structure for launchboard.
//
//	dataset:  source file and format
//	server:   HTTP listen address and timeouts
//	log:      level and output format
//	view:     slider step and payload distribution summary
//	sql:      DuckDB view for ad-hoc queries
//
// A subset of fields can be overridden by LAUNCHBOARD_* environment variables
// (see the env tags).

package loader

import (
	"fmt"
	"time"

	"github.com/xtxerr/launchboard/config"
)

// =============================================================================
// Root Configuration
// =============================================================================

// Config is the root configuration structure for launchboard.
type Config struct {
	Dataset DatasetConfig `yaml:"dataset"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	View    ViewConfig    `yaml:"view"`
	SQL     SQLConfig     `yaml:"sql"`
}

// DatasetConfig selects the launch records file.
type DatasetConfig struct {
	// Path is the CSV or Parquet file loaded at startup.
	// Default: "spacex_launch_dash.csv"
	Path string `yaml:"path" env:"LAUNCHBOARD_DATASET"`

	// Format is auto, csv or parquet. auto picks by extension.
	// Default: "auto"
	Format string `yaml:"format" env:"LAUNCHBOARD_DATASET_FORMAT"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	// Listen is the HTTP listen address.
	// Format: "host:port" or ":port"
	// Default: "127.0.0.1:8050"
	Listen string `yaml:"listen" env:"LAUNCHBOARD_LISTEN"`

	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level" env:"LAUNCHBOARD_LOG_LEVEL"`

	// JSON switches to JSON log lines.
	JSON bool `yaml:"json" env:"LAUNCHBOARD_LOG_JSON"`
}

// ViewConfig configures the derived views.
type ViewConfig struct {
	// SliderStep is the payload slider step in kilograms.
	SliderStep float64 `yaml:"slider_step"`

	// Percentiles enables p50/p90 in the payload distribution summary.
	Percentiles bool `yaml:"percentiles"`

	// PercentileAccuracy is the DDSketch relative accuracy, in (0, 1).
	PercentileAccuracy float64 `yaml:"percentile_accuracy"`
}

// EffectiveAccuracy returns the accuracy passed to the query engine: 0 when
// percentiles are disabled.
func (v ViewConfig) EffectiveAccuracy() float64 {
	if !v.Percentiles {
		return 0
	}
	return v.PercentileAccuracy
}

// SQLConfig configures the DuckDB view.
type SQLConfig struct {
	Enabled     bool   `yaml:"enabled" env:"LAUNCHBOARD_SQL_ENABLED"`
	MemoryLimit string `yaml:"memory_limit"`
}

// =============================================================================
// Defaults
// =============================================================================

// DefaultConfig returns a configuration with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Path:   config.DefaultDatasetPath,
			Format: config.DefaultDatasetFormat,
		},
		Server: ServerConfig{
			Listen:          config.DefaultListenAddress,
			ReadTimeout:     Duration(config.DefaultReadTimeout),
			WriteTimeout:    Duration(config.DefaultWriteTimeout),
			ShutdownTimeout: Duration(config.DefaultShutdownTimeout),
		},
		Log: LogConfig{
			Level: config.DefaultLogLevel,
			JSON:  config.DefaultLogJSON,
		},
		View: ViewConfig{
			SliderStep:         config.DefaultSliderStep,
			Percentiles:        config.DefaultPercentilesEnabled,
			PercentileAccuracy: config.DefaultPercentileAccuracy,
		},
		SQL: SQLConfig{
			Enabled:     config.DefaultSQLEnabled,
			MemoryLimit: config.DefaultSQLMemoryLimit,
		},
	}
}

// =============================================================================
// Helper Types
// =============================================================================

// Duration is a time.Duration that can be unmarshaled from YAML.
// Supports "5s", "1m30s" or a plain integer number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		// Try as int (seconds)
		var i int
		if err := unmarshal(&i); err != nil {
			return err
		}
		*d = Duration(time.Duration(i) * time.Second)
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
