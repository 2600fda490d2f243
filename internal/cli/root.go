// Package cli implements the launchboard command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xtxerr/launchboard/internal/loader"
	"github.com/xtxerr/launchboard/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Dataset    string
	LogLevel   string
	LogJSON    bool
	Format     string // "text" | "json" | "pb"

	// Config is resolved in PersistentPreRunE from defaults, the config
	// file, the environment and the flags above, in that order.
	Config *loader.Config
}

// Output formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatProtobuf = "pb"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatText, FormatJSON, FormatProtobuf}

// NewRootCommand creates the root command for the launchboard CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "launchboard",
		Short: "SpaceX launch records dashboard",
		Long: `launchboard loads a table of SpaceX launch records and answers two views
for a selection of launch site and payload mass range: the success summary
(per site, or success vs failure for one site) and the payload/outcome scatter.

The views are served as a web dashboard (serve), printed once (query) or
recomputed interactively (repl).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (YAML)")
	pf.StringVarP(&opts.Dataset, "dataset", "d", "", "dataset file, CSV or Parquet (overrides config)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	pf.BoolVar(&opts.LogJSON, "log-json", false, "log as JSON (overrides config)")
	pf.StringVarP(&opts.Format, "format", "o", FormatText, "output format (text|json|pb)")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSitesCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))

	return cmd
}

// resolve validates global flags, builds the configuration and initializes
// logging.
func (opts *RootOptions) resolve(cmd *cobra.Command) error {
	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	flags := cmd.Flags()
	cfg, err := loader.LoadAndValidate(opts.ConfigPath, func(cfg *loader.Config) {
		if flags.Changed("dataset") {
			cfg.Dataset.Path = opts.Dataset
		}
		if flags.Changed("log-level") {
			cfg.Log.Level = opts.LogLevel
		}
		if flags.Changed("log-json") {
			cfg.Log.JSON = opts.LogJSON
		}
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "config", err)
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logging.InitWriter(cmd.ErrOrStderr(), level, cfg.Log.JSON)

	opts.Config = cfg
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
