package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startLoop runs a loop for the duration of the test.
func startLoop(t *testing.T) *Loop {
	t.Helper()
	loop := NewLoop(hclog.New(&hclog.LoggerOptions{Name: "task_test", Level: hclog.Trace}))
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return loop
}

// recorder collects observations; it is only touched on the loop.
type recorder[T any] struct {
	mu       sync.Mutex
	events   []string
	results  []Result[T]
	terminal chan struct{}
}

func newRecorder[T any]() *recorder[T] {
	return &recorder[T]{terminal: make(chan struct{}, 8)}
}

func (r *recorder[T]) OnStatusChanged(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "status:"+message)
}

func (r *recorder[T]) OnTerminal(result Result[T]) {
	r.mu.Lock()
	r.events = append(r.events, "terminal")
	r.results = append(r.results, result)
	r.mu.Unlock()
	r.terminal <- struct{}{}
}

func (r *recorder[T]) snapshot() ([]string, []Result[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...), append([]Result[T](nil), r.results...)
}

func waitTerminal[T any](t *testing.T, r *recorder[T]) {
	t.Helper()
	select {
	case <-r.terminal:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for terminal notification")
	}
}

func TestLoopRunsInOrder(t *testing.T) {
	loop := startLoop(t)

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		require.True(t, loop.Post(func() { got = append(got, i) }))
	}
	require.True(t, loop.Invoke(func() {}))

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestLoopSurvivesPanickingCallback(t *testing.T) {
	loop := startLoop(t)
	loop.Post(func() { panic("boom") })

	ran := false
	require.True(t, loop.Invoke(func() { ran = true }))
	assert.True(t, ran)
}

func TestLoopPostAfterStop(t *testing.T) {
	loop := NewLoop(nil)
	loop.Stop()
	assert.False(t, loop.Post(func() {}))
	assert.False(t, loop.Invoke(func() {}))
	assert.NoError(t, loop.Run(context.Background()))
}

func TestSubmitSuccess(t *testing.T) {
	orch := NewOrchestrator(startLoop(t), nil)
	rec := newRecorder[int]()

	task := Submit(orch, func(report StatusFunc) (int, error) {
		report("step 1")
		report("step 2")
		return 42, nil
	}, "starting", rec)

	waitTerminal(t, rec)
	events, results := rec.snapshot()
	assert.Equal(t, []string{"status:starting", "status:step 1", "status:step 2", "terminal"}, events)
	require.Len(t, results, 1)
	assert.True(t, results[0].OK())
	assert.Equal(t, 42, results[0].Value)

	assert.Equal(t, Succeeded, task.State())
	assert.Equal(t, "step 2", task.Message())
	res, done := task.Result()
	assert.True(t, done)
	assert.Equal(t, 42, res.Value)
}

func TestSubmitFailureWrapsCause(t *testing.T) {
	orch := NewOrchestrator(startLoop(t), nil)
	rec := newRecorder[string]()
	cause := errors.New("server unreachable")

	task := Submit(orch, func(StatusFunc) (string, error) {
		return "", cause
	}, "auth", rec)

	waitTerminal(t, rec)
	_, results := rec.snapshot()
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Err, cause)

	var failure *TaskFailure
	require.True(t, errors.As(results[0].Err, &failure))
	assert.Equal(t, task.ID(), failure.TaskID)
	assert.Equal(t, Failed, task.State())
}

func TestSubmitPanicBecomesFailure(t *testing.T) {
	orch := NewOrchestrator(startLoop(t), nil)
	rec := newRecorder[int]()

	Submit(orch, func(StatusFunc) (int, error) {
		panic("kaboom")
	}, "panicking", rec)

	waitTerminal(t, rec)
	_, results := rec.snapshot()
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrPanic)
}

func TestNoStatusAfterTerminal(t *testing.T) {
	loop := startLoop(t)
	orch := NewOrchestrator(loop, nil)
	rec := newRecorder[int]()

	var leaked StatusFunc
	task := Submit(orch, func(report StatusFunc) (int, error) {
		leaked = report
		return 1, nil
	}, "start", rec)

	waitTerminal(t, rec)
	leaked("too late")
	require.True(t, loop.Invoke(func() {}))

	events, _ := rec.snapshot()
	assert.Equal(t, "terminal", events[len(events)-1])
	assert.NotContains(t, events, "status:too late")
	assert.Equal(t, "start", task.Message())
}

func TestManyTasksEachTerminateOnce(t *testing.T) {
	loop := startLoop(t)
	orch := NewOrchestrator(loop, nil)

	const n = 50
	recorders := make([]*recorder[int], n)
	for i := 0; i < n; i++ {
		i := i
		recorders[i] = newRecorder[int]()
		Submit(orch, func(report StatusFunc) (int, error) {
			for j := 0; j < 5; j++ {
				report(fmt.Sprintf("%d", j))
			}
			if i%2 == 0 {
				return 0, errors.New("even")
			}
			return i, nil
		}, "go", recorders[i])
	}

	for i, rec := range recorders {
		waitTerminal(t, rec)
		require.True(t, loop.Invoke(func() {}))
		events, results := rec.snapshot()
		require.Len(t, results, 1, "task %d", i)
		assert.Equal(t, []string{"status:go", "status:0", "status:1", "status:2", "status:3", "status:4", "terminal"}, events)
	}
}

type staticRequest struct {
	value string
	err   error
}

func (r staticRequest) Execute() (string, error) { return r.value, r.err }

func TestFromRequestAndWait(t *testing.T) {
	orch := NewOrchestrator(startLoop(t), nil)

	task := Submit(orch, FromRequest[string](staticRequest{value: "token"}), "requesting", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := task.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token", res.Value)
}

func TestWaitCompletesWhenLoopStopped(t *testing.T) {
	loop := NewLoop(nil)
	loop.Stop()
	orch := NewOrchestrator(loop, nil)

	task := Submit(orch, func(StatusFunc) (int, error) { return 7, nil }, "offline", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := task.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Value)
}

func TestWaitCompletesWhenLoopStopsBeforeDelivery(t *testing.T) {
	loop := NewLoop(nil)
	orch := NewOrchestrator(loop, nil)

	ran := make(chan struct{})
	task := Submit(orch, func(StatusFunc) (int, error) {
		close(ran)
		return 9, nil
	}, "queued", nil)

	// The outcome is queued on a loop that never runs, then dropped by Stop.
	<-ran
	time.Sleep(100 * time.Millisecond)
	loop.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := task.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, res.Value)
	assert.Equal(t, Succeeded, task.State())
}

func TestMessageFrozenOnceTerminal(t *testing.T) {
	loop := startLoop(t)
	orch := NewOrchestrator(loop, nil)

	var captured StatusFunc
	task := Submit(orch, func(report StatusFunc) (int, error) {
		captured = report
		report("half way")
		return 1, nil
	}, "start", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := task.Wait(ctx)
	require.NoError(t, err)

	captured("late")
	assert.Equal(t, "half way", task.Message())
	assert.False(t, task.setMessage("direct"))
	assert.Equal(t, "half way", task.Message())
}
