package launch

// AggregateEntry is one slice of the summary view: a category key (a site
// name or an outcome label) and its count.
type AggregateEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SuccessAggregate is ordered by descending count, ties by ascending label.
// Zero-count entries are never present.
type SuccessAggregate []AggregateEntry

// Total returns the sum of all counts.
func (a SuccessAggregate) Total() int {
	total := 0
	for _, e := range a {
		total += e.Count
	}
	return total
}

// Labels returns the category keys in order.
func (a SuccessAggregate) Labels() []string {
	labels := make([]string, len(a))
	for i, e := range a {
		labels[i] = e.Label
	}
	return labels
}

// ScatterPoint is one record in the distribution view.
type ScatterPoint struct {
	PayloadMassKg   float64 `json:"payload_mass_kg"`
	Outcome         int     `json:"outcome"`
	BoosterCategory string  `json:"booster_category"`
	Site            string  `json:"site"`
	FlightNumber    *int    `json:"flight_number,omitempty"`
}

// PointFromRecord projects a record into the distribution view.
func PointFromRecord(r *Record) ScatterPoint {
	return ScatterPoint{
		PayloadMassKg:   r.PayloadMassKg,
		Outcome:         r.Outcome.Numeric(),
		BoosterCategory: r.BoosterCategory,
		Site:            r.Site,
		FlightNumber:    r.FlightNumber,
	}
}

// ScatterProjection preserves source dataset order and is never deduplicated.
type ScatterProjection []ScatterPoint
