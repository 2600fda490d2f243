// Package testing provides test fixtures and helpers for launchboard.
//
// Calling t.Fatal or t.FailNow from a goroutine other than the test goroutine
// is undefined behavior; GoroutineTest collects errors instead.
package testing

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// GoroutineTest runs functions concurrently and reports their errors from
// the test goroutine.
//
//	gt := testing.NewGoroutineTest(t)
//	for _, sel := range selections {
//	    gt.Go(func() error {
//	        _, err := engine.View(ctx, sel)
//	        return err
//	    })
//	}
//	gt.Wait()
type GoroutineTest struct {
	t  testing.TB
	wg sync.WaitGroup

	mu   sync.Mutex
	errs []error
}

// NewGoroutineTest creates a new GoroutineTest helper.
func NewGoroutineTest(t testing.TB) *GoroutineTest {
	return &GoroutineTest{t: t}
}

// Go runs fn in a goroutine and records its error, if any.
func (gt *GoroutineTest) Go(fn func() error) {
	gt.wg.Add(1)
	go func() {
		defer gt.wg.Done()
		if err := fn(); err != nil {
			gt.mu.Lock()
			gt.errs = append(gt.errs, err)
			gt.mu.Unlock()
		}
	}()
}

// Wait blocks until every function has returned, then fails the test with
// all recorded errors.
func (gt *GoroutineTest) Wait() {
	gt.t.Helper()
	gt.wg.Wait()

	gt.mu.Lock()
	defer gt.mu.Unlock()
	if len(gt.errs) == 0 {
		return
	}
	for i, err := range gt.errs {
		gt.t.Errorf("goroutine error %d/%d: %v", i+1, len(gt.errs), err)
	}
	gt.t.FailNow()
}

// Eventually polls condition every interval until it holds or timeout passes.
func Eventually(timeout, interval time.Duration, condition func() bool) error {
	deadline := time.Now().Add(timeout)
	for {
		if condition() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("condition not met within %v", timeout)
		}
		time.Sleep(interval)
	}
}
