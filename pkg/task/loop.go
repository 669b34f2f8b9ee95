// Package task runs long operations off the presentation loop and reports
// their status and outcome back onto it.
package task

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/flavor/go/launcher/pkg/logging"
)

// Loop is the presentation event loop: a single goroutine that runs posted
// functions in FIFO order. Everything that touches settings or overlays runs here.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
	done    chan struct{}
	logger  hclog.Logger
}

// NewLoop creates a loop; call Run to start processing.
func NewLoop(logger hclog.Logger) *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logging.OrNull(logger).Named("loop"),
	}
}

// Post queues fn to run on the loop. It never blocks and returns false once the loop is stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
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

// Invoke runs fn on the loop and waits for it to finish. Workers use it to
// reach loop-confined state. Calling Invoke from the loop itself deadlocks.
func (l *Loop) Invoke(fn func()) bool {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

// Stop makes Run return after the function currently executing. Queued functions are dropped.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.stopped {
		l.stopped = true
		l.queue = nil
		close(l.done)
	}
	l.mu.Unlock()
}

// Done is closed when the loop is stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run processes posted functions until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Trace("🔁 Presentation loop started")
	defer l.logger.Trace("🔁 Presentation loop stopped")

	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			l.runOne(fn)
		}

		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped || len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) runOne(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("❌ Panic in presentation callback", "panic", r)
		}
	}()
	fn()
}
