package query

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xtxerr/launchboard/internal/errors"
	"github.com/xtxerr/launchboard/internal/launch"
	lbtesting "github.com/xtxerr/launchboard/internal/testing"
)

func TestSuccessAggregate_AllSites(t *testing.T) {
	recs := lbtesting.ScenarioRecords()

	got, err := ComputeSuccessAggregate(recs, launch.NewSelection(launch.AllSites, 0, 5000))
	if err != nil {
		t.Fatalf("ComputeSuccessAggregate: %v", err)
	}

	want := launch.SuccessAggregate{{Label: "SiteB", Count: 2}, {Label: "SiteA", Count: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestSuccessAggregate_SingleSiteTieBreak(t *testing.T) {
	recs := lbtesting.ScenarioRecords()

	got, err := ComputeSuccessAggregate(recs, launch.NewSelection("SiteA", 0, 5000))
	if err != nil {
		t.Fatalf("ComputeSuccessAggregate: %v", err)
	}

	want := launch.SuccessAggregate{{Label: "failure", Count: 1}, {Label: "success", Count: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestSuccessAggregate_SingleOutcome(t *testing.T) {
	recs := lbtesting.ScenarioRecords()

	got, err := ComputeSuccessAggregate(recs, launch.NewSelection("SiteB", 0, 5000))
	if err != nil {
		t.Fatalf("ComputeSuccessAggregate: %v", err)
	}

	want := launch.SuccessAggregate{{Label: "success", Count: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestSuccessAggregate_OmitsZeroSuccessSites(t *testing.T) {
	recs := lbtesting.ScenarioRecords()

	// Only the SiteA failure (1500kg) is in range.
	got, err := ComputeSuccessAggregate(recs, launch.NewSelection(launch.AllSites, 1000, 1900))
	if err != nil {
		t.Fatalf("ComputeSuccessAggregate: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty aggregate, got %v", got)
	}
}

func TestScatterProjection_PayloadWindow(t *testing.T) {
	recs := lbtesting.ScenarioRecords()

	got, err := ComputeScatterProjection(recs, launch.NewSelection(launch.AllSites, 1000, 3000))
	if err != nil {
		t.Fatalf("ComputeScatterProjection: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}

	wantPayloads := []float64{1500, 2000, 3000}
	for i, p := range got {
		if p.PayloadMassKg != wantPayloads[i] {
			t.Errorf("point %d payload = %v, want %v", i, p.PayloadMassKg, wantPayloads[i])
		}
	}
	if got[0].Outcome != 0 || got[0].Site != "SiteA" || got[0].BoosterCategory != "v1.1" {
		t.Errorf("unexpected first point %+v", got[0])
	}
}

func TestUnknownSite_IsEmptyNotError(t *testing.T) {
	recs := lbtesting.ScenarioRecords()
	sel := launch.NewSelection("SiteC", 0, 5000)

	agg, err := ComputeSuccessAggregate(recs, sel)
	if err != nil {
		t.Fatalf("ComputeSuccessAggregate: %v", err)
	}
	points, err := ComputeScatterProjection(recs, sel)
	if err != nil {
		t.Fatalf("ComputeScatterProjection: %v", err)
	}

	if len(agg) != 0 || len(points) != 0 {
		t.Errorf("expected empty results, got %v / %v", agg, points)
	}
	if got := FilterBySite(recs, "SiteC"); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestScatterProjection_NoDedup(t *testing.T) {
	r := launch.Record{Site: "A", PayloadMassKg: 100, BoosterCategory: "FT", Outcome: launch.Success}
	recs := []launch.Record{r, r, r}

	got, err := ComputeScatterProjection(recs, launch.NewSelection("A", 0, 100))
	if err != nil {
		t.Fatalf("ComputeScatterProjection: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected identical tuples kept, got %d", len(got))
	}
}

func TestFilterByPayload(t *testing.T) {
	recs := lbtesting.ScenarioRecords()

	all, err := FilterByPayload(recs, 500, 3000)
	if err != nil {
		t.Fatalf("FilterByPayload: %v", err)
	}
	if diff := cmp.Diff(recs, all); diff != "" {
		t.Errorf("min..max should be identity (-want +got):\n%s", diff)
	}

	edge, err := FilterByPayload(recs, 1500, 1500)
	if err != nil {
		t.Fatalf("FilterByPayload: %v", err)
	}
	if len(edge) != 1 || edge[0].PayloadMassKg != 1500 {
		t.Errorf("bounds should be inclusive, got %v", edge)
	}

	tests := []struct {
		name      string
		low, high float64
	}{
		{"inverted", 3000, 500},
		{"nan low", math.NaN(), 500},
		{"nan high", 0, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FilterByPayload(recs, tt.low, tt.high)
			if !errors.IsInvalidRange(err) {
				t.Fatalf("expected InvalidRangeError, got %v", err)
			}
			var ire *errors.InvalidRangeError
			if !errors.As(err, &ire) {
				t.Fatalf("expected *InvalidRangeError, got %T", err)
			}
		})
	}
}

func TestInvalidRange_PropagatesFromComputations(t *testing.T) {
	recs := lbtesting.ScenarioRecords()
	sel := launch.NewSelection(launch.AllSites, 10, 1)

	if _, err := ComputeSuccessAggregate(recs, sel); !errors.IsInvalidRange(err) {
		t.Errorf("aggregate: expected InvalidRangeError, got %v", err)
	}
	if _, err := ComputeScatterProjection(recs, sel); !errors.IsInvalidRange(err) {
		t.Errorf("projection: expected InvalidRangeError, got %v", err)
	}
}

func TestFilterBySite_AllSitesIsIdentity(t *testing.T) {
	recs := lbtesting.ScenarioRecords()
	if diff := cmp.Diff(recs, FilterBySite(recs, launch.AllSites)); diff != "" {
		t.Errorf("AllSites should be identity (-want +got):\n%s", diff)
	}
}

func TestClipRange(t *testing.T) {
	b := launch.Bounds{Min: 500, Max: 3000}

	tests := []struct {
		name string
		in   launch.PayloadRange
		want launch.PayloadRange
	}{
		{"inside", launch.PayloadRange{Low: 1000, High: 2000}, launch.PayloadRange{Low: 1000, High: 2000}},
		{"widened", launch.PayloadRange{Low: -100, High: 99999}, launch.PayloadRange{Low: 500, High: 3000}},
		{"above", launch.PayloadRange{Low: 4000, High: 5000}, launch.PayloadRange{Low: 4000, High: 3000}},
		{"below", launch.PayloadRange{Low: 0, High: 100}, launch.PayloadRange{Low: 500, High: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClipRange(tt.in, b); got != tt.want {
				t.Errorf("ClipRange = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// Property: aggregates are idempotent and their totals match the filtered
// record counts, across sites and payload windows of a generated dataset.
func TestAggregate_Properties(t *testing.T) {
	recs := lbtesting.GenerateRecords(500)
	sites := []string{launch.AllSites, "CCAFS LC-40", "KSC LC-39A", "VAFB SLC-4E", "nowhere"}
	windows := [][2]float64{{0, 9600}, {0, 0}, {1000, 5000}, {4999, 5001}, {9000, 9600}}

	for _, site := range sites {
		for _, w := range windows {
			sel := launch.NewSelection(site, w[0], w[1])

			first, err := ComputeSuccessAggregate(recs, sel)
			if err != nil {
				t.Fatalf("%+v: %v", sel, err)
			}
			second, _ := ComputeSuccessAggregate(recs, sel)
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("%+v: aggregate not idempotent:\n%s", sel, diff)
			}

			p1, _ := ComputeScatterProjection(recs, sel)
			p2, _ := ComputeScatterProjection(recs, sel)
			if diff := cmp.Diff(p1, p2); diff != "" {
				t.Errorf("%+v: projection not idempotent:\n%s", sel, diff)
			}

			wantTotal := 0
			for _, r := range recs {
				if r.PayloadMassKg < w[0] || r.PayloadMassKg > w[1] {
					continue
				}
				if site == launch.AllSites && r.Outcome == launch.Success {
					wantTotal++
				}
				if site != launch.AllSites && r.Site == site {
					wantTotal++
				}
			}
			if first.Total() != wantTotal {
				t.Errorf("%+v: total = %d, want %d", sel, first.Total(), wantTotal)
			}

			for i := 1; i < len(first); i++ {
				prev, cur := first[i-1], first[i]
				if prev.Count < cur.Count || (prev.Count == cur.Count && prev.Label >= cur.Label) {
					t.Errorf("%+v: entries out of order: %v", sel, first)
				}
			}
			for _, e := range first {
				if e.Count == 0 {
					t.Errorf("%+v: zero-count entry %v", sel, e)
				}
			}
		}
	}
}

func BenchmarkComputeSuccessAggregate(b *testing.B) {
	recs := lbtesting.GenerateRecords(10000)
	sel := launch.NewSelection(launch.AllSites, 1000, 8000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ComputeSuccessAggregate(recs, sel)
	}
}

func BenchmarkComputeScatterProjection(b *testing.B) {
	recs := lbtesting.GenerateRecords(10000)
	sel := launch.NewSelection("KSC LC-39A", 1000, 8000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ComputeScatterProjection(recs, sel)
	}
}
