package task

import (
	"fmt"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/flavor/go/launcher/pkg/logging"
)

// Observer receives a task's notifications on the presentation loop.
type Observer[T any] interface {
	OnStatusChanged(message string)
	OnTerminal(result Result[T])
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs[T any] struct {
	Status   func(message string)
	Terminal func(result Result[T])
}

func (f ObserverFuncs[T]) OnStatusChanged(message string) {
	if f.Status != nil {
		f.Status(message)
	}
}

func (f ObserverFuncs[T]) OnTerminal(result Result[T]) {
	if f.Terminal != nil {
		f.Terminal(result)
	}
}

// Orchestrator starts one worker goroutine per submitted task and delivers
// notifications through the presentation loop.
type Orchestrator struct {
	loop   *Loop
	logger hclog.Logger
}

// NewOrchestrator creates an orchestrator bound to loop.
func NewOrchestrator(loop *Loop, logger hclog.Logger) *Orchestrator {
	return &Orchestrator{loop: loop, logger: logging.OrNull(logger).Named("task")}
}

// Loop returns the presentation loop notifications are delivered on.
func (o *Orchestrator) Loop() *Loop { return o.loop }

// Submit runs op on a new goroutine. The initial status is delivered first,
// then every published status in order, then exactly one OnTerminal. Nothing
// is delivered after OnTerminal. There is no cancellation: a submitted task
// always runs to completion.
func Submit[T any](o *Orchestrator, op Operation[T], status string, obs Observer[T]) *Task[T] {
	if obs == nil {
		obs = ObserverFuncs[T]{}
	}
	t := newTask[T](status)
	logger := o.logger.With("task_id", t.id.String())

	var finished atomic.Bool
	deliverStatus := func(message string) {
		o.loop.Post(func() {
			if t.State().Terminal() {
				return
			}
			obs.OnStatusChanged(message)
		})
	}
	report := func(message string) {
		if finished.Load() || !t.setMessage(message) {
			logger.Trace("Dropping status update after completion", "message", message)
			return
		}
		deliverStatus(message)
	}

	deliverStatus(status)
	logger.Debug("🚀 Submitting task", "status", status)

	go func() {
		t.state.Store(int32(Running))

		value, err := run(op, report)
		finished.Store(true)

		res := Result[T]{Value: value}
		if err != nil {
			res.Err = &TaskFailure{TaskID: t.id, Cause: err}
			logger.Debug("❌ Task failed", "error", err)
		} else {
			logger.Debug("✅ Task succeeded")
		}

		posted := o.loop.Post(func() {
			if t.complete(res) {
				obs.OnTerminal(res)
			}
		})
		if posted {
			// Stop drops queued functions, including the one just posted.
			select {
			case <-t.done:
				return
			case <-o.loop.Done():
			}
		}
		// Loop is gone; still release anyone waiting on the task.
		if t.complete(res) {
			logger.Debug("⚠️ Loop stopped before delivering task outcome")
		}
	}()

	return t
}

func run[T any](op Operation[T], report StatusFunc) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return op(report)
}
