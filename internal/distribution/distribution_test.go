package distribution

import (
	"math"
	"sync"
	"testing"

	"github.com/xtxerr/launchboard/internal/launch"
)

func TestAccumulator_Basic(t *testing.T) {
	acc := New("success", 0)

	if !acc.IsEmpty() {
		t.Error("new accumulator should be empty")
	}

	acc.Add(500)
	acc.Add(2000)
	acc.Add(3000)

	if acc.Count() != 3 {
		t.Errorf("expected count=3, got %d", acc.Count())
	}

	s := acc.Result()
	if s.Min != 500 {
		t.Errorf("expected min=500, got %f", s.Min)
	}
	if s.Max != 3000 {
		t.Errorf("expected max=3000, got %f", s.Max)
	}
	if math.Abs(s.Avg-1833.333) > 0.001 {
		t.Errorf("expected avg=1833.333, got %f", s.Avg)
	}
	if s.HasPercentiles() {
		t.Error("percentiles should be disabled")
	}
}

func TestAccumulator_Percentiles(t *testing.T) {
	acc := New("all", 0.01)

	for i := 1; i <= 100; i++ {
		acc.Add(float64(i * 100))
	}

	s := acc.Result()
	if !s.HasPercentiles() {
		t.Fatal("expected percentiles")
	}

	// Rank interpolation plus 1% sketch accuracy; allow 5%.
	if math.Abs(*s.P50-5000)/5000 > 0.05 {
		t.Errorf("p50 = %f, want ~5000", *s.P50)
	}
	if math.Abs(*s.P90-9000)/9000 > 0.05 {
		t.Errorf("p90 = %f, want ~9000", *s.P90)
	}
}

func TestAccumulator_EmptyResult(t *testing.T) {
	s := New("x", 0.01).Result()
	if s.Count != 0 || s.Min != 0 || s.Max != 0 || s.Avg != 0 || s.HasPercentiles() {
		t.Errorf("empty result should be zero-valued, got %+v", s)
	}
}

func TestAccumulator_Merge(t *testing.T) {
	a := New("a", 0.01)
	b := New("b", 0.01)

	a.Add(10)
	a.Add(20)
	b.Add(5)
	b.Add(40)

	a.Merge(b)
	a.Merge(nil)
	a.Merge(a)

	s := a.Result()
	if s.Count != 4 || s.Min != 5 || s.Max != 40 || s.Label != "a" {
		t.Errorf("unexpected merged summary %+v", s)
	}

	empty := New("c", 0.01)
	a.Merge(empty)
	if got := a.Result(); got.Count != 4 {
		t.Errorf("merging an empty accumulator changed the count to %d", got.Count)
	}
}

func TestAccumulator_Concurrent(t *testing.T) {
	acc := New("all", 0.01)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				acc.Add(float64(i))
			}
		}()
	}
	wg.Wait()

	if acc.Count() != 8000 {
		t.Errorf("expected count=8000, got %d", acc.Count())
	}
}

func TestSummarize(t *testing.T) {
	points := launch.ScatterProjection{
		{PayloadMassKg: 500, Outcome: 1, Site: "SiteA"},
		{PayloadMassKg: 1500, Outcome: 0, Site: "SiteA"},
		{PayloadMassKg: 2000, Outcome: 1, Site: "SiteB"},
		{PayloadMassKg: 3000, Outcome: 1, Site: "SiteB"},
	}

	got := Summarize(points, 0.01)
	if len(got) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(got))
	}

	wantLabels := []string{"all", "success", "failure"}
	wantCounts := []int64{4, 3, 1}
	for i := range got {
		if got[i].Label != wantLabels[i] || got[i].Count != wantCounts[i] {
			t.Errorf("summary %d = %s/%d, want %s/%d", i, got[i].Label, got[i].Count, wantLabels[i], wantCounts[i])
		}
	}

	if got[0].Min != 500 || got[0].Max != 3000 || got[0].Avg != 1750 {
		t.Errorf("unexpected overall summary %+v", got[0])
	}
}

func TestSummarize_SingleOutcomeAndEmpty(t *testing.T) {
	if Summarize(nil, 0.01) != nil {
		t.Error("empty projection should summarize to nil")
	}

	got := Summarize(launch.ScatterProjection{{PayloadMassKg: 100, Outcome: 0}}, 0)
	if len(got) != 2 || got[1].Label != "failure" {
		t.Errorf("expected all+failure, got %+v", got)
	}
}
