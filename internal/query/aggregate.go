package query

import (
	"sort"

	"github.com/xtxerr/launchboard/internal/launch"
)

// ComputeSuccessAggregate builds the summary view for sel.
//
// All sites: successful records in the payload range, counted per site.
// Sites without successes are omitted.
//
// Single site: that site's records in the payload range, counted per outcome
// label. Absent outcomes are omitted.
//
// Entries are ordered by count descending, then label ascending. An empty
// filtered set gives an empty aggregate.
func ComputeSuccessAggregate(records []launch.Record, sel launch.Selection) (launch.SuccessAggregate, error) {
	inRange, err := FilterByPayload(records, sel.Payload.Low, sel.Payload.High)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	if sel.IsAllSites() {
		for i := range inRange {
			if inRange[i].Outcome == launch.Success {
				counts[inRange[i].Site]++
			}
		}
	} else {
		for _, r := range FilterBySite(inRange, sel.Site) {
			counts[r.Outcome.String()]++
		}
	}

	return sortedEntries(counts), nil
}

// sortedEntries orders counts by count descending, label ascending.
func sortedEntries(counts map[string]int) launch.SuccessAggregate {
	agg := make(launch.SuccessAggregate, 0, len(counts))
	for label, n := range counts {
		if n > 0 {
			agg = append(agg, launch.AggregateEntry{Label: label, Count: n})
		}
	}
	sort.Slice(agg, func(i, j int) bool {
		if agg[i].Count != agg[j].Count {
			return agg[i].Count > agg[j].Count
		}
		return agg[i].Label < agg[j].Label
	})
	return agg
}

// ComputeScatterProjection builds the distribution view for sel: one point per
// record passing the payload and site filters, in source order, without
// deduplication.
func ComputeScatterProjection(records []launch.Record, sel launch.Selection) (launch.ScatterProjection, error) {
	filtered, err := filterSelection(records, sel)
	if err != nil {
		return nil, err
	}

	points := make(launch.ScatterProjection, len(filtered))
	for i := range filtered {
		points[i] = launch.PointFromRecord(&filtered[i])
	}
	return points, nil
}
