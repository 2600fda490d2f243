package cli

import (
	"github.com/spf13/cobra"

	"github.com/xtxerr/launchboard/internal/dataset"
	"github.com/xtxerr/launchboard/internal/launch"
	"github.com/xtxerr/launchboard/internal/render"
)

// SitesResult is the JSON output of the sites command.
type SitesResult struct {
	Sites   []dataset.SiteOption `json:"sites"`
	Bounds  launch.Bounds        `json:"bounds"`
	Slider  dataset.Slider       `json:"slider"`
	Records int                  `json:"records"`
}

// NewSitesCommand creates the sites command.
func NewSitesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List launch sites and the payload range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}

			options := store.SiteOptions()
			slider := store.SliderMarks(opts.Config.View.SliderStep)

			if opts.Format == FormatText {
				render.Options(cmd.OutOrStdout(), options, slider)
				return nil
			}
			return render.JSON(cmd.OutOrStdout(), SitesResult{
				Sites:   options,
				Bounds:  store.Bounds(),
				Slider:  slider,
				Records: store.Len(),
			})
		},
	}
}
