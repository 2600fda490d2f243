package launch

import "math"

// AllSites is the reserved selection value meaning "do not filter by site".
// It is never stored in the dataset's site list.
const AllSites = "ALL"

// AllSitesLabel is the display label of the AllSites option.
const AllSitesLabel = "All Sites"

// Bounds is the (min, max) payload mass across a dataset.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the bounds, inclusive.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Range returns the full payload range covered by the bounds.
func (b Bounds) Range() PayloadRange {
	return PayloadRange{Low: b.Min, High: b.Max}
}

// PayloadRange is an inclusive payload mass window in kilograms.
type PayloadRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Finite returns r with an infinite bound replaced by the largest finite
// value of the same sign. Every record payload is finite, so the result
// matches exactly the same records as r.
func (r PayloadRange) Finite() PayloadRange {
	return PayloadRange{Low: finite(r.Low), High: finite(r.High)}
}

func finite(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

// Selection is the user-controlled filter state driving both views.
type Selection struct {
	Site    string       `json:"site"`
	Payload PayloadRange `json:"payload"`
}

// IsAllSites reports whether the selection is scoped to every site.
func (s Selection) IsAllSites() bool {
	return s.Site == AllSites
}

// NewSelection builds a selection for site over [low, high].
func NewSelection(site string, low, high float64) Selection {
	return Selection{Site: site, Payload: PayloadRange{Low: low, High: high}}
}
