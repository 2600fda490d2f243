// Package loader handles configuration file loading and validation.
//
// Configuration is resolved in three layers: DefaultConfig, then the YAML
// file (with ${VAR} environment expansion), then LAUNCHBOARD_* environment
// overrides. Validate runs last.
package loader

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/xtxerr/launchboard/internal/errors"
	"github.com/xtxerr/launchboard/internal/logging"
	"github.com/xtxerr/launchboard/internal/source"
)

// =============================================================================
// Load
// =============================================================================

// Load loads configuration from a YAML file. An empty path skips the file
// and starts from defaults. Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		// Expand environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides cfg with the LAUNCHBOARD_* variables that are set.
// Unset variables leave the current value.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// =============================================================================
// Validate
// =============================================================================

var memoryLimitPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?\s*(B|KB|MB|GB|TB|KiB|MiB|GiB|TiB|%)?$`)

// Validate validates the configuration, reporting every problem at once.
func Validate(cfg *Config) error {
	errs := errors.NewValidationErrors()

	if strings.TrimSpace(cfg.Dataset.Path) == "" {
		errs.AddField("dataset.path", "cannot be empty")
	}
	switch cfg.Dataset.Format {
	case source.FormatAuto, source.FormatCSV, source.FormatParquet:
	default:
		errs.AddField("dataset.format", fmt.Sprintf("must be auto, csv or parquet, got %q", cfg.Dataset.Format))
	}

	if cfg.Server.Listen == "" {
		errs.AddField("server.listen", "cannot be empty")
	}
	if cfg.Server.ReadTimeout.Duration() <= 0 {
		errs.AddField("server.read_timeout", "must be positive")
	}
	if cfg.Server.WriteTimeout.Duration() <= 0 {
		errs.AddField("server.write_timeout", "must be positive")
	}
	if cfg.Server.ShutdownTimeout.Duration() < 0 {
		errs.AddField("server.shutdown_timeout", "cannot be negative")
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs.AddField("log.level", err.Error())
	}

	if cfg.View.SliderStep <= 0 {
		errs.AddField("view.slider_step", "must be positive")
	}
	if cfg.View.Percentiles && (cfg.View.PercentileAccuracy <= 0 || cfg.View.PercentileAccuracy >= 1) {
		errs.AddField("view.percentile_accuracy", "must be between 0 and 1 (exclusive)")
	}

	if cfg.SQL.Enabled && cfg.SQL.MemoryLimit != "" && !memoryLimitPattern.MatchString(cfg.SQL.MemoryLimit) {
		errs.AddField("sql.memory_limit", fmt.Sprintf("invalid size %q", cfg.SQL.MemoryLimit))
	}

	return errs.Err()
}

// LoadAndValidate is Load followed by Validate. Overrides run in order
// between the two, so command-line flags win over the file and environment.
func LoadAndValidate(path string, overrides ...func(*Config)) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(cfg)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
