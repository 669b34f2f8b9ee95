package overlay

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/provide-io/flavor/go/launcher/pkg/task"
)

// Timer is a one-shot delayed transition. The callback runs on the loop, and
// a Cancel made on the loop before it runs always wins, even if the clock has
// already fired.
type Timer struct {
	mu       sync.Mutex
	clock    clockwork.Timer
	canceled bool
	fired    bool
}

// Schedule runs fn on loop after d.
func Schedule(clock clockwork.Clock, loop *task.Loop, d time.Duration, fn func()) *Timer {
	t := &Timer{}
	t.clock = clock.AfterFunc(d, func() {
		loop.Post(func() {
			if t.markFired() {
				fn()
			}
		})
	})
	return t
}

// Cancel stops the timer. It returns false if the timer already fired or was canceled.
func (t *Timer) Cancel() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.canceled || t.fired {
		return false
	}
	t.canceled = true
	t.clock.Stop()
	return true
}

func (t *Timer) markFired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.canceled || t.fired {
		return false
	}
	t.fired = true
	return true
}
