// Package session drives view recomputation for one interactive user.
//
// Every selection change is submitted to a Recomputer. The latest submission
// wins: an in-flight computation is cancelled when a newer selection arrives,
// and a result that completes after being superseded is dropped instead of
// rendered.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/xtxerr/launchboard/internal/launch"
	"github.com/xtxerr/launchboard/internal/logging"
	"github.com/xtxerr/launchboard/internal/query"
)

var log = logging.Component("session")

// Computer computes a view for a selection. *query.Engine implements it.
type Computer interface {
	View(ctx context.Context, sel launch.Selection) (*query.View, error)
}

// Renderer receives the results of current selections.
//
// Calls are serialized and arrive in increasing sequence order. They are made
// with the Recomputer's lock held, so a Renderer must not call back into it.
type Renderer interface {
	Render(seq uint64, v *query.View)
	RenderError(seq uint64, sel launch.Selection, err error)
}

// Recomputer recomputes views on selection changes, rendering only the
// result of the most recent selection.
type Recomputer struct {
	computer Computer
	renderer Renderer

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	latest   *query.View
	rendered uint64
	closed   bool

	submitted  atomic.Int64
	renders    atomic.Int64
	errors     atomic.Int64
	superseded atomic.Int64
}

// Stats holds recomputation statistics.
type Stats struct {
	Submitted  int64 `json:"submitted"`
	Rendered   int64 `json:"rendered"`
	Errors     int64 `json:"errors"`
	Superseded int64 `json:"superseded"`
}

// New creates a Recomputer.
func New(computer Computer, renderer Renderer) *Recomputer {
	ctx, stop := context.WithCancel(context.Background())
	return &Recomputer{
		computer: computer,
		renderer: renderer,
		ctx:      ctx,
		stop:     stop,
	}
}

// Submit starts recomputation for sel and returns its sequence number. The
// previous computation, if still running, is cancelled. After Close, Submit
// returns 0 and does nothing.
func (r *Recomputer) Submit(sel launch.Selection) uint64 {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0
	}

	r.seq++
	seq := r.seq
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(logging.ContextWithSelectionSeq(r.ctx, seq))
	r.cancel = cancel
	r.wg.Add(1)
	r.mu.Unlock()

	r.submitted.Add(1)
	go r.run(ctx, cancel, seq, sel)
	return seq
}

func (r *Recomputer) run(ctx context.Context, cancel context.CancelFunc, seq uint64, sel launch.Selection) {
	defer r.wg.Done()
	defer cancel()

	v, err := r.computer.View(ctx, sel)

	r.mu.Lock()
	defer r.mu.Unlock()

	if seq != r.seq || r.closed {
		r.superseded.Add(1)
		logging.WithContext(ctx).Debug("selection superseded", "latest", r.seq)
		return
	}

	if err != nil {
		r.errors.Add(1)
		logging.WithContext(ctx).Warn("selection rejected", "site", sel.Site, "error", err)
		r.renderer.RenderError(seq, sel, err)
		return
	}

	r.latest = v
	r.rendered = seq
	r.renders.Add(1)
	r.renderer.Render(seq, v)
}

// Latest returns the most recently rendered view and its sequence number,
// or nil and 0 if nothing has been rendered.
func (r *Recomputer) Latest() (*query.View, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.rendered
}

// Wait blocks until no computation is in flight.
func (r *Recomputer) Wait() {
	r.wg.Wait()
}

// Close cancels any in-flight computation and waits for it to finish.
func (r *Recomputer) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.stop()
	r.wg.Wait()
	log.Debug("recomputer closed", "submitted", r.submitted.Load(), "superseded", r.superseded.Load())
}

// Stats returns recomputation statistics.
func (r *Recomputer) Stats() Stats {
	return Stats{
		Submitted:  r.submitted.Load(),
		Rendered:   r.renders.Load(),
		Errors:     r.errors.Load(),
		Superseded: r.superseded.Load(),
	}
}
