package query

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/xtxerr/launchboard/config"
	"github.com/xtxerr/launchboard/internal/dataset"
	"github.com/xtxerr/launchboard/internal/distribution"
	"github.com/xtxerr/launchboard/internal/launch"
	"github.com/xtxerr/launchboard/internal/logging"
)

var log = logging.Component("query")

// Engine answers selections against one dataset. The dataset is read-only,
// so an Engine is safe for concurrent use.
type Engine struct {
	store    *dataset.Store
	accuracy float64

	queries atomic.Int64
	points  atomic.Int64
	invalid atomic.Int64
	clipped atomic.Int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithPercentileAccuracy sets the DDSketch accuracy of the distribution
// summary. A value <= 0 disables percentiles.
func WithPercentileAccuracy(accuracy float64) Option {
	return func(e *Engine) {
		e.accuracy = accuracy
	}
}

// NewEngine creates an Engine over store.
func NewEngine(store *dataset.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		accuracy: config.DefaultPercentileAccuracy,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the dataset the engine reads.
func (e *Engine) Store() *dataset.Store {
	return e.store
}

// View is everything the renderer needs for one selection.
type View struct {
	// Selection is the selection as requested, with infinite bounds
	// replaced by the largest finite value of the same sign.
	Selection launch.Selection `json:"selection"`

	// Applied is the payload window after clipping to the dataset bounds.
	// Empty is true when the requested range lies wholly outside them.
	Applied launch.PayloadRange `json:"applied"`
	Empty   bool                `json:"empty"`

	PieTitle     string `json:"pie_title"`
	ScatterTitle string `json:"scatter_title"`

	Aggregate    launch.SuccessAggregate  `json:"aggregate"`
	Projection   launch.ScatterProjection `json:"projection"`
	Distribution []distribution.Summary   `json:"distribution,omitempty"`
}

// PieTitle returns the summary chart title for site.
func PieTitle(site string) string {
	if site == launch.AllSites {
		return "Total Successful Launches by Site"
	}
	return fmt.Sprintf("Success vs Failure for %s", site)
}

// ScatterTitle returns the distribution chart title for site.
func ScatterTitle(site string) string {
	if site == launch.AllSites {
		return "Correlation between Payload and Launch Success"
	}
	return fmt.Sprintf("Correlation between Payload and Launch Success — %s", site)
}

// prepare validates the requested range and clips it to the dataset bounds.
// requested is sel with infinite bounds made finite; empty reports a window
// wholly outside the bounds.
func (e *Engine) prepare(sel launch.Selection) (requested, applied launch.Selection, empty bool, err error) {
	if err := ValidateRange(sel.Payload); err != nil {
		e.invalid.Add(1)
		return sel, sel, false, err
	}

	requested = sel
	requested.Payload = sel.Payload.Finite()

	applied = requested
	applied.Payload = ClipRange(requested.Payload, e.store.Bounds())
	if applied.Payload != requested.Payload {
		e.clipped.Add(1)
	}
	return requested, applied, applied.Payload.Low > applied.Payload.High, nil
}

// SuccessAggregate computes the summary view for sel.
func (e *Engine) SuccessAggregate(sel launch.Selection) (launch.SuccessAggregate, error) {
	_, applied, empty, err := e.prepare(sel)
	if err != nil {
		return nil, err
	}
	e.queries.Add(1)
	if empty {
		return launch.SuccessAggregate{}, nil
	}
	return ComputeSuccessAggregate(e.store.Records(), applied)
}

// ScatterProjection computes the distribution view for sel.
func (e *Engine) ScatterProjection(sel launch.Selection) (launch.ScatterProjection, error) {
	_, applied, empty, err := e.prepare(sel)
	if err != nil {
		return nil, err
	}
	e.queries.Add(1)
	if empty {
		return launch.ScatterProjection{}, nil
	}
	points, err := ComputeScatterProjection(e.store.Records(), applied)
	if err != nil {
		return nil, err
	}
	e.points.Add(int64(len(points)))
	return points, nil
}

// View computes both views for sel. The aggregate and the projection (with its
// distribution summary) are computed concurrently; they share no mutable state.
func (e *Engine) View(ctx context.Context, sel launch.Selection) (*View, error) {
	requested, applied, empty, err := e.prepare(sel)
	if err != nil {
		return nil, err
	}

	v := &View{
		Selection:    requested,
		Applied:      applied.Payload,
		Empty:        empty,
		PieTitle:     PieTitle(sel.Site),
		ScatterTitle: ScatterTitle(sel.Site),
		Aggregate:    launch.SuccessAggregate{},
		Projection:   launch.ScatterProjection{},
	}
	e.queries.Add(1)

	if empty {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return v, nil
	}

	records := e.store.Records()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		agg, err := ComputeSuccessAggregate(records, applied)
		if err != nil {
			return err
		}
		v.Aggregate = agg
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		points, err := ComputeScatterProjection(records, applied)
		if err != nil {
			return err
		}
		v.Projection = points
		v.Distribution = distribution.Summarize(points, e.accuracy)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.points.Add(int64(len(v.Projection)))

	log.Debug("view computed",
		"site", sel.Site,
		"low", applied.Payload.Low,
		"high", applied.Payload.High,
		"slices", len(v.Aggregate),
		"points", len(v.Projection))

	return v, nil
}

// Stats holds engine statistics.
type Stats struct {
	QueriesExecuted   int64 `json:"queries_executed"`
	PointsReturned    int64 `json:"points_returned"`
	InvalidSelections int64 `json:"invalid_selections"`
	ClippedSelections int64 `json:"clipped_selections"`
}

// Stats returns engine statistics.
func (e *Engine) Stats() Stats {
	return Stats{
		QueriesExecuted:   e.queries.Load(),
		PointsReturned:    e.points.Load(),
		InvalidSelections: e.invalid.Load(),
		ClippedSelections: e.clipped.Load(),
	}
}
