package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xtxerr/launchboard/internal/dataset"
	"github.com/xtxerr/launchboard/internal/launch"
	"github.com/xtxerr/launchboard/internal/query"
	"github.com/xtxerr/launchboard/internal/render"
	"github.com/xtxerr/launchboard/internal/sqlview"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	Check bool
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql [query]",
		Short: "Run SQL against the dataset, or cross-check the views",
		Long: `Load the dataset into an in-memory DuckDB table and run an ad-hoc query.

The table is:
  launches(ord, site, payload_mass_kg, booster_category, outcome, flight_number)

With --check, the success summary is computed both by the query engine and
in SQL for every site and payload window, and any difference is reported.

Example:
  launchboard sql "SELECT site, avg(payload_mass_kg) FROM launches GROUP BY site"
  launchboard sql --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Check && len(args) == 0 {
				return NewExitError(ExitCommandError, "sql: a query or --check is required")
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			view, err := opts.openSQLView(ctx, store)
			if err != nil {
				return err
			}
			defer view.Close()

			if opts.Check {
				return runParityCheck(ctx, cmd.OutOrStdout(), store, view, opts.Config.View.SliderStep)
			}

			res, err := view.Query(ctx, strings.Join(args, " "))
			if err != nil {
				return WrapExitError(ExitCommandError, "sql", err)
			}
			if opts.Format == FormatText {
				render.Rows(cmd.OutOrStdout(), res.Columns, res.Rows)
				return nil
			}
			return render.JSON(cmd.OutOrStdout(), res.Rows)
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "compare engine and SQL results for every selection")

	return cmd
}

// paritySelections returns every site option crossed with the full payload
// range and each slider-step window.
func paritySelections(store *dataset.Store, step float64) []launch.Selection {
	bounds := store.Bounds()
	windows := []launch.PayloadRange{bounds.Range()}
	for lo := bounds.Min; step > 0 && lo < bounds.Max; lo += step {
		windows = append(windows, launch.PayloadRange{Low: lo, High: lo + step})
	}

	var sels []launch.Selection
	for _, o := range store.SiteOptions() {
		for _, w := range windows {
			sels = append(sels, launch.NewSelection(o.Value, w.Low, w.High))
		}
	}
	return sels
}

func runParityCheck(ctx context.Context, w io.Writer, store *dataset.Store, view *sqlview.View, step float64) error {
	sels := paritySelections(store, step)
	mismatches := 0

	for _, sel := range sels {
		want, err := query.ComputeSuccessAggregate(store.Records(), sel)
		if err != nil {
			return WrapExitError(ExitCommandError, "engine", err)
		}
		got, err := view.SuccessAggregate(ctx, sel)
		if err != nil {
			return WrapExitError(ExitCommandError, "sql", err)
		}
		if !sameAggregate(want, got) {
			mismatches++
			fmt.Fprintf(w, "MISMATCH site=%s payload=[%s, %s]\n  engine: %v\n  sql:    %v\n",
				sel.Site, render.Mass(sel.Payload.Low), render.Mass(sel.Payload.High), want, got)
		}
	}

	fmt.Fprintf(w, "checked %d selections, %d mismatches\n", len(sels), mismatches)
	if mismatches > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d selections differ between engine and sql", mismatches))
	}
	return nil
}

func sameAggregate(a, b launch.SuccessAggregate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
