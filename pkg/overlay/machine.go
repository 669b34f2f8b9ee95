// Package overlay drives the processing overlay shown while a task runs:
// live status text, a frozen error description on failure and an optional
// timed auto-hide.
package overlay

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/jonboulle/clockwork"

	"github.com/provide-io/flavor/go/launcher/pkg/logging"
	"github.com/provide-io/flavor/go/launcher/pkg/task"
)

// DefaultHideDelay is how long a failed overlay stays up before auto-hiding.
const DefaultHideDelay = 2500 * time.Millisecond

// State of the overlay.
type State int

const (
	Idle State = iota
	Showing
	Error // sub-state of Showing with the status frozen to an error description
	Hidden
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Showing:
		return "showing"
	case Error:
		return "error"
	case Hidden:
		return "hidden"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Presenter is the presentation surface the machine drives.
type Presenter interface {
	Show(text string)
	SetText(text string)
	ShowError(description string)
	Hide()
}

// Options configures one overlay run.
type Options[T any] struct {
	OnSuccess func(value T)
	OnError   func(err error)
	// Next replaces the default hide after success, e.g. to swap to another overlay.
	Next func()
	// AutoHide hides the error state after HideDelay (DefaultHideDelay when zero).
	AutoHide  bool
	HideDelay time.Duration
	// OnHidden runs when the error state is hidden, by timer or by Dismiss.
	OnHidden func()
}

// Machine is the overlay state machine. All methods and Run must be called on the loop.
type Machine struct {
	loop      *task.Loop
	presenter Presenter
	clock     clockwork.Clock
	logger    hclog.Logger

	state      State
	text       string
	generation uint64
	timer      *Timer
	onHidden   func()
}

// NewMachine creates an idle machine. A nil clock uses the real clock.
func NewMachine(loop *task.Loop, presenter Presenter, clock clockwork.Clock, logger hclog.Logger) *Machine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Machine{
		loop:      loop,
		presenter: presenter,
		clock:     clock,
		logger:    logging.OrNull(logger).Named("overlay"),
	}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Text returns the text currently displayed.
func (m *Machine) Text() string { return m.text }

// Dismiss hides the overlay immediately and cancels any pending auto-hide.
// Events from a task still running are ignored afterwards.
func (m *Machine) Dismiss() {
	m.cancelTimer()
	m.generation++
	m.logger.Debug("👋 Overlay dismissed", "from", m.state)
	m.hide()
}

// Run shows the overlay for a new task and submits it to orch.
func Run[T any](m *Machine, orch *task.Orchestrator, op task.Operation[T], status string, opts Options[T]) *task.Task[T] {
	m.cancelTimer()
	m.generation++
	gen := m.generation

	m.state = Showing
	m.text = status
	m.onHidden = opts.OnHidden
	m.presenter.Show(status)

	obs := task.ObserverFuncs[T]{
		Status: func(message string) {
			if m.generation != gen || m.state != Showing {
				return
			}
			m.text = message
			m.presenter.SetText(message)
		},
		Terminal: func(res task.Result[T]) {
			if res.OK() {
				succeed(m, gen, res.Value, opts)
			} else {
				fail(m, gen, res.Err, opts)
			}
		},
	}
	return task.Submit(orch, op, status, obs)
}

func succeed[T any](m *Machine, gen uint64, value T, opts Options[T]) {
	if m.generation == gen {
		m.state = Idle
		m.onHidden = nil
	}
	if opts.OnSuccess != nil {
		opts.OnSuccess(value)
	}
	// The callback may have started another run.
	if m.generation != gen || m.state != Idle {
		return
	}
	if opts.Next != nil {
		opts.Next()
		return
	}
	m.presenter.Hide()
}

func fail[T any](m *Machine, gen uint64, err error, opts Options[T]) {
	m.logger.Error("❌ Task failed", "error", err)

	if m.generation == gen {
		m.state = Error
		m.text = describe(err)
		m.presenter.ShowError(m.text)

		if opts.AutoHide {
			delay := opts.HideDelay
			if delay <= 0 {
				delay = DefaultHideDelay
			}
			m.timer = Schedule(m.clock, m.loop, delay, func() {
				if m.generation != gen {
					return
				}
				m.timer = nil
				m.logger.Debug("⏱️ Auto-hiding error overlay", "delay", delay)
				m.hide()
			})
		}
	}

	if opts.OnError != nil {
		opts.OnError(err)
	}
}

func (m *Machine) cancelTimer() {
	if m.timer != nil {
		m.timer.Cancel()
		m.timer = nil
	}
}

func (m *Machine) hide() {
	m.state = Hidden
	m.presenter.Hide()
	if onHidden := m.onHidden; onHidden != nil {
		m.onHidden = nil
		onHidden()
	}
}

// describe returns the text shown for a failed task.
func describe(err error) string {
	var failure *task.TaskFailure
	if errors.As(err, &failure) && failure.Cause != nil {
		return failure.Cause.Error()
	}
	return err.Error()
}
