// Package config provides configuration defaults for launchboard.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via config.yaml or LAUNCHBOARD_* environment
// variables.
package config

import "time"

// =============================================================================
// Dataset Defaults
// =============================================================================

const (
	// DefaultDatasetPath is the launch records file loaded at startup.
	// Override via config: dataset.path, env: LAUNCHBOARD_DATASET
	DefaultDatasetPath = "spacex_launch_dash.csv"

	// DefaultDatasetFormat selects the reader by file extension.
	// Values: auto, csv, parquet
	// Override via config: dataset.format
	DefaultDatasetFormat = "auto"
)

// =============================================================================
// HTTP Server Defaults
// =============================================================================

const (
	// DefaultListenAddress is the dashboard listen address.
	// Override via config: server.listen, env: LAUNCHBOARD_LISTEN
	DefaultListenAddress = "127.0.0.1:8050"

	// DefaultReadTimeout bounds reading a request including its body.
	// Override via config: server.read_timeout
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout bounds writing a response.
	// Override via config: server.write_timeout
	DefaultWriteTimeout = 10 * time.Second

	// DefaultShutdownTimeout is how long in-flight requests may run after SIGTERM.
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultMaxMessageSize limits a single protobuf view message.
	DefaultMaxMessageSize = 16 * 1024 * 1024
)

// =============================================================================
// View Defaults
// =============================================================================

const (
	// DefaultSliderStep is the payload range slider step in kilograms.
	// Override via config: view.slider_step
	DefaultSliderStep = 1000

	// DefaultPercentilesEnabled enables the payload distribution summary.
	// Override via config: view.percentiles
	DefaultPercentilesEnabled = true

	// DefaultPercentileAccuracy is the DDSketch relative accuracy (0.01 = 1%).
	// Override via config: view.percentile_accuracy
	DefaultPercentileAccuracy = 0.01
)

// =============================================================================
// SQL View Defaults
// =============================================================================

const (
	// DefaultSQLEnabled enables the DuckDB-backed sql command and parity check.
	// Override via config: sql.enabled
	DefaultSQLEnabled = true

	// DefaultSQLMemoryLimit caps DuckDB memory.
	// Override via config: sql.memory_limit
	DefaultSQLMemoryLimit = "256MB"
)

// =============================================================================
// Logging Defaults
// =============================================================================

const (
	// DefaultLogLevel is one of debug, info, warn, error.
	// Override via config: log.level, env: LAUNCHBOARD_LOG_LEVEL
	DefaultLogLevel = "info"

	// DefaultLogJSON switches log output to JSON.
	// Override via config: log.json, env: LAUNCHBOARD_LOG_JSON
	DefaultLogJSON = false
)
