package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xtxerr/launchboard/internal/logging"
	"github.com/xtxerr/launchboard/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long: `Load the dataset and serve the dashboard until interrupted.

Example:
  launchboard serve --dataset spacex_launch_dash.csv
  launchboard serve --listen :8050`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				opts.Config.Server.Listen = opts.Listen
			}
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Listen, "listen", "l", "", "listen address (overrides config)")

	return cmd
}

func runServe(parent context.Context, opts *ServeOptions) error {
	log := logging.Component("cli")

	engine, err := opts.openEngine()
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config
	srv := server.New(server.Config{
		Listen:          cfg.Server.Listen,
		ReadTimeout:     cfg.Server.ReadTimeout.Duration(),
		WriteTimeout:    cfg.Server.WriteTimeout.Duration(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration(),
		SliderStep:      cfg.View.SliderStep,
	}, engine)

	log.Info("starting dashboard", "dataset", cfg.Dataset.Path, "listen", cfg.Server.Listen)

	if err := srv.Run(ctx); err != nil {
		return WrapExitError(ExitCommandError, "serve", err)
	}
	return nil
}
