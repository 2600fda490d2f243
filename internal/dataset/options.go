package dataset

import (
	"strconv"

	"github.com/xtxerr/launchboard/config"
	"github.com/xtxerr/launchboard/internal/launch"
)

// SiteOption is one entry of the site dropdown.
type SiteOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SiteOptions returns the dropdown options: All Sites first, then every site
// in ascending order.
func (s *Store) SiteOptions() []SiteOption {
	opts := make([]SiteOption, 0, len(s.sites)+1)
	opts = append(opts, SiteOption{Label: launch.AllSitesLabel, Value: launch.AllSites})
	for _, site := range s.sites {
		opts = append(opts, SiteOption{Label: site, Value: site})
	}
	return opts
}

// Slider describes the payload range control.
type Slider struct {
	Min   float64        `json:"min"`
	Max   float64        `json:"max"`
	Step  float64        `json:"step"`
	Value [2]float64     `json:"value"`
	Marks map[int]string `json:"marks"`
}

// SliderMarks returns the payload slider spanning the dataset bounds, initially
// selecting the full range, with marks at the truncated min and max.
// A non-positive step falls back to the default.
func (s *Store) SliderMarks(step float64) Slider {
	if step <= 0 {
		step = config.DefaultSliderStep
	}
	lo, hi := int(s.bounds.Min), int(s.bounds.Max)
	return Slider{
		Min:   s.bounds.Min,
		Max:   s.bounds.Max,
		Step:  step,
		Value: [2]float64{s.bounds.Min, s.bounds.Max},
		Marks: map[int]string{
			lo: strconv.Itoa(lo),
			hi: strconv.Itoa(hi),
		},
	}
}
