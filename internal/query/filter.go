// Package query turns launch records and a selection into the two derived
// views: the success aggregate (pie) and the scatter projection.
//
// The package-level functions are pure: no hidden state, deterministic for
// identical inputs. Engine binds them to one dataset and adds bound clipping,
// concurrent view computation and statistics.
package query

import (
	"math"

	"github.com/xtxerr/launchboard/internal/errors"
	"github.com/xtxerr/launchboard/internal/launch"
)

// FilterByPayload returns the records with low <= payload <= high, in order.
// An inverted range (low > high) or a NaN bound is an InvalidRangeError; the
// bounds are never swapped.
func FilterByPayload(records []launch.Record, low, high float64) ([]launch.Record, error) {
	if err := checkRange(low, high); err != nil {
		return nil, err
	}

	out := make([]launch.Record, 0, len(records))
	for i := range records {
		if p := records[i].PayloadMassKg; p >= low && p <= high {
			out = append(out, records[i])
		}
	}
	return out, nil
}

// FilterBySite returns every record for launch.AllSites, otherwise the records
// whose site equals site. An unknown site yields an empty slice.
func FilterBySite(records []launch.Record, site string) []launch.Record {
	if site == launch.AllSites {
		return records
	}

	out := make([]launch.Record, 0)
	for i := range records {
		if records[i].Site == site {
			out = append(out, records[i])
		}
	}
	return out
}

// ClipRange narrows r to the dataset bounds. Clipping never changes which
// records match; a range wholly outside the bounds becomes an empty window
// (Low > High) that matches nothing. Callers must check the raw range with
// ValidateRange first so inverted input still surfaces as an error.
func ClipRange(r launch.PayloadRange, b launch.Bounds) launch.PayloadRange {
	return launch.PayloadRange{
		Low:  math.Max(r.Low, b.Min),
		High: math.Min(r.High, b.Max),
	}
}

// ValidateRange reports an InvalidRangeError for an inverted or NaN range.
func ValidateRange(r launch.PayloadRange) error {
	return checkRange(r.Low, r.High)
}

func checkRange(low, high float64) error {
	if math.IsNaN(low) || math.IsNaN(high) || low > high {
		return errors.NewInvalidRange(low, high)
	}
	return nil
}

// filterSelection applies the payload filter then the site filter.
func filterSelection(records []launch.Record, sel launch.Selection) ([]launch.Record, error) {
	inRange, err := FilterByPayload(records, sel.Payload.Low, sel.Payload.High)
	if err != nil {
		return nil, err
	}
	return FilterBySite(inRange, sel.Site), nil
}
