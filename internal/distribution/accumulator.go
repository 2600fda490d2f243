// Package distribution summarizes payload mass over the records of a scatter
// projection: count, min, max, average and optional DDSketch percentiles,
// overall and per outcome.
package distribution

import (
	"math"
	"sync"

	"github.com/DataDog/sketches-go/ddsketch"
)

// Accumulator maintains running payload statistics for one group.
// It supports optional percentile calculation using DDSketch.
type Accumulator struct {
	mu sync.Mutex

	label string

	count int64
	sum   float64
	min   float64
	max   float64

	// DDSketch for percentiles (nil if disabled)
	sketch *ddsketch.DDSketch
}

// New creates an Accumulator. accuracy <= 0 disables percentiles.
func New(label string, accuracy float64) *Accumulator {
	a := &Accumulator{
		label:  label,
		min:    math.MaxFloat64,
		max:    -math.MaxFloat64,
		sketch: newSketch(accuracy),
	}
	return a
}

func newSketch(accuracy float64) *ddsketch.DDSketch {
	if accuracy <= 0 {
		return nil
	}
	sketch, err := ddsketch.NewDefaultDDSketch(accuracy)
	if err != nil {
		return nil
	}
	return sketch
}

// Add adds a payload value.
func (a *Accumulator) Add(value float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.count++
	a.sum += value

	if value < a.min {
		a.min = value
	}
	if value > a.max {
		a.max = value
	}

	if a.sketch != nil {
		_ = a.sketch.Add(value)
	}
}

// Count returns the number of values added.
func (a *Accumulator) Count() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// IsEmpty returns true if no values have been added.
func (a *Accumulator) IsEmpty() bool {
	return a.Count() == 0
}

// Result returns the summary of the values added so far.
func (a *Accumulator) Result() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Summary{
		Label: a.label,
		Count: a.count,
	}

	if a.count > 0 {
		s.Avg = a.sum / float64(a.count)
		s.Min = a.min
		s.Max = a.max
	}

	if a.sketch != nil && a.count > 0 {
		p50, err50 := a.sketch.GetValueAtQuantile(0.50)
		p90, err90 := a.sketch.GetValueAtQuantile(0.90)
		if err50 == nil && err90 == nil {
			s.SetPercentiles(p50, p90)
		}
	}

	return s
}

// Merge folds other into a.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil || other == a {
		return
	}

	other.mu.Lock()
	defer other.mu.Unlock()
	if other.count == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.count += other.count
	a.sum += other.sum

	if other.min < a.min {
		a.min = other.min
	}
	if other.max > a.max {
		a.max = other.max
	}

	if a.sketch != nil && other.sketch != nil {
		_ = a.sketch.MergeWith(other.sketch)
	}
}
