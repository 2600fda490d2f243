package cli

import (
	"github.com/spf13/cobra"

	"github.com/xtxerr/launchboard/internal/client"
	"github.com/xtxerr/launchboard/internal/launch"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Site   string
	Low    float64
	High   float64
	Remote string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Compute both views for one selection",
		Long: `Compute the success summary and the payload scatter for one selection.

Unset bounds default to the dataset's payload range.

Example:
  launchboard query --site "KSC LC-39A" --low 2000 --high 8000
  launchboard query --format json
  launchboard query --remote localhost:8050 --site "CCAFS LC-40"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Remote != "" {
				return opts.runRemote(cmd)
			}

			engine, err := opts.openEngine()
			if err != nil {
				return err
			}

			bounds := engine.Store().Bounds()
			low, high := bounds.Min, bounds.Max
			if cmd.Flags().Changed("low") {
				low = opts.Low
			}
			if cmd.Flags().Changed("high") {
				high = opts.High
			}

			v, err := engine.View(cmd.Context(), launch.NewSelection(opts.Site, low, high))
			if err != nil {
				return WrapExitError(ExitCommandError, "query", err)
			}
			return writeView(cmd.OutOrStdout(), opts.Format, v)
		},
	}

	cmd.Flags().StringVarP(&opts.Site, "site", "s", launch.AllSites, "launch site, or ALL")
	cmd.Flags().Float64Var(&opts.Low, "low", 0, "lowest payload mass in kg (default: dataset minimum)")
	cmd.Flags().Float64Var(&opts.High, "high", 0, "highest payload mass in kg (default: dataset maximum)")
	cmd.Flags().StringVar(&opts.Remote, "remote", "", "query a running server at this address instead of loading the dataset")

	return cmd
}

// runRemote fetches the view from a server started with "launchboard serve".
func (opts *QueryOptions) runRemote(cmd *cobra.Command) error {
	c, err := client.New(opts.Remote)
	if err != nil {
		return WrapExitError(ExitCommandError, "query", err)
	}
	defer c.Close()

	req := client.ViewRequest{Site: opts.Site}
	if cmd.Flags().Changed("low") {
		req.Low = &opts.Low
	}
	if cmd.Flags().Changed("high") {
		req.High = &opts.High
	}

	v, err := c.View(cmd.Context(), req)
	if err != nil {
		return WrapExitError(ExitCommandError, "query", err)
	}
	return writeView(cmd.OutOrStdout(), opts.Format, v)
}
