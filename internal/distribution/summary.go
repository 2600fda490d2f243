package distribution

import (
	"github.com/xtxerr/launchboard/internal/launch"
)

// LabelAll is the label of the summary over every point.
const LabelAll = "all"

// Summary is the payload distribution of one group of points.
type Summary struct {
	Label string  `json:"label"`
	Count int64   `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`

	// Percentiles (nil if disabled)
	P50 *float64 `json:"p50,omitempty"`
	P90 *float64 `json:"p90,omitempty"`
}

// HasPercentiles returns true if percentile data is available.
func (s *Summary) HasPercentiles() bool {
	return s.P50 != nil
}

// SetPercentiles sets both percentile values.
func (s *Summary) SetPercentiles(p50, p90 float64) {
	s.P50 = &p50
	s.P90 = &p90
}

// Summarize returns the overall summary followed by one summary per outcome
// present ("success" before "failure"). An empty projection yields nil.
func Summarize(points launch.ScatterProjection, accuracy float64) []Summary {
	if len(points) == 0 {
		return nil
	}

	all := New(LabelAll, accuracy)
	success := New(launch.LabelSuccess, accuracy)
	failure := New(launch.LabelFailure, accuracy)

	for i := range points {
		if points[i].Outcome == launch.Success.Numeric() {
			success.Add(points[i].PayloadMassKg)
		} else {
			failure.Add(points[i].PayloadMassKg)
		}
	}
	all.Merge(success)
	all.Merge(failure)

	out := []Summary{all.Result()}
	for _, acc := range []*Accumulator{success, failure} {
		if !acc.IsEmpty() {
			out = append(out, acc.Result())
		}
	}
	return out
}
