package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xtxerr/launchboard/internal/source"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Compression string
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <in> <out.parquet>",
		Short: "Write a dataset as a Parquet snapshot",
		Long: `Load a dataset (validating every row) and write it as a Parquet snapshot
that later runs can load with --dataset.

Example:
  launchboard convert spacex_launch_dash.csv launches.parquet`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			compression, err := source.ParseCompressionType(opts.Compression)
			if err != nil {
				return WrapExitError(ExitCommandError, "convert", err)
			}

			store, err := source.Open(args[0], source.FormatAuto)
			if err != nil {
				return WrapExitError(ExitCommandError, "load dataset", err)
			}

			err = source.WriteParquet(args[1], store.Records(), source.Options{
				Compression: compression,
			})
			if err != nil {
				return WrapExitError(ExitCommandError, "write parquet", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", store.Len(), args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Compression, "compression", "zstd", "compression: zstd, snappy, gzip, none")

	return cmd
}
