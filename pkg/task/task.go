package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrPanic marks a failure caused by a panicking operation.
var ErrPanic = errors.New("❌ operation panicked")

// State is the lifecycle position of a task.
type State int32

const (
	Pending State = iota
	Running
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Terminal reports whether s is Succeeded or Failed.
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed
}

// Result is the outcome of a task.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the task succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// TaskFailure wraps the error returned by a failed operation.
type TaskFailure struct {
	TaskID uuid.UUID
	Cause  error
}

func (e *TaskFailure) Error() string {
	return fmt.Sprintf("task %s failed: %v", e.TaskID, e.Cause)
}

func (e *TaskFailure) Unwrap() error { return e.Cause }

// StatusFunc publishes a new status message for the running task.
type StatusFunc func(message string)

// Operation is the work run off the presentation loop.
type Operation[T any] func(report StatusFunc) (T, error)

// Executor is an opaque request with a single blocking call.
type Executor[T any] interface {
	Execute() (T, error)
}

// FromRequest adapts an Executor to an Operation.
func FromRequest[T any](req Executor[T]) Operation[T] {
	return func(StatusFunc) (T, error) {
		return req.Execute()
	}
}

// Task is one submitted operation.
type Task[T any] struct {
	id      uuid.UUID
	state   atomic.Int32
	message atomic.Pointer[string]

	mu     sync.Mutex
	result Result[T]
	done   chan struct{}
}

func newTask[T any](status string) *Task[T] {
	t := &Task[T]{id: uuid.New(), done: make(chan struct{})}
	t.message.Store(&status)
	return t
}

// ID returns the task's unique identifier.
func (t *Task[T]) ID() uuid.UUID { return t.id }

// State returns the current lifecycle state.
func (t *Task[T]) State() State { return State(t.state.Load()) }

// Message returns the latest published status message.
func (t *Task[T]) Message() string { return *t.message.Load() }

// Done is closed once the task reached a terminal state.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Result returns the outcome and whether the task has finished.
func (t *Task[T]) Result() (Result[T], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.State().Terminal()
}

// Wait blocks until the task finishes or ctx is done. It must not be called
// from the presentation loop.
func (t *Task[T]) Wait(ctx context.Context) (Result[T], error) {
	select {
	case <-t.done:
		res, _ := t.Result()
		return res, nil
	case <-ctx.Done():
		return Result[T]{}, ctx.Err()
	}
}

// setMessage records a status message unless the task is already terminal.
func (t *Task[T]) setMessage(message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State().Terminal() {
		return false
	}
	t.message.Store(&message)
	return true
}

// complete records the outcome; it runs at most once.
func (t *Task[T]) complete(res Result[T]) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State().Terminal() {
		return false
	}
	t.result = res
	if res.OK() {
		t.state.Store(int32(Succeeded))
	} else {
		t.state.Store(int32(Failed))
	}
	close(t.done)
	return true
}
