// Package runloop provides a single-goroutine task loop. Everything that
// touches tiler state runs on it; other goroutines hand work over with Post
// or Do.
package runloop

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned when work is submitted to a loop that has exited.
var ErrClosed = errors.New("run loop closed")

// Loop executes posted functions one at a time, in submission order.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

// New returns a loop that is ready to accept work. Work posted before Run is
// executed once Run starts.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Run processes tasks until ctx is cancelled. Tasks still queued at that
// point are dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
	}()

	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for i, fn := range batch {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fn()
			batch[i] = nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Post queues fn. It never blocks, so it is safe to call from the loop itself.
// It returns false if the loop has exited.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the loop and waits for it to finish. It must not be called
// from the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		// The loop may have run fn just before exiting.
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Timer is a one-shot delayed task that executes on the loop.
type Timer struct {
	t       *time.Timer
	mu      sync.Mutex
	stopped bool
}

// After runs fn on the loop once d has elapsed. Periodic work re-arms itself
// with another After call once the current run completes, so runs of the
// same task never overlap or pile up.
func (l *Loop) After(d time.Duration, fn func()) *Timer {
	tm := &Timer{}
	tm.t = time.AfterFunc(d, func() {
		l.Post(func() {
			tm.mu.Lock()
			stopped := tm.stopped
			tm.mu.Unlock()
			if !stopped {
				fn()
			}
		})
	})
	return tm
}

// Stop cancels the timer. If the timer already fired but fn has not started
// on the loop yet, fn is skipped. Stop does not interrupt a running fn.
func (tm *Timer) Stop() {
	if tm == nil {
		return
	}
	tm.mu.Lock()
	tm.stopped = true
	tm.mu.Unlock()
	tm.t.Stop()
}
