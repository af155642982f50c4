package schedule_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/on-the-ground/memorize/schedule"
	"github.com/on-the-ground/memorize/shared/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntime_DeferRuns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := schedule.NewRuntime(ctx, schedule.NewConfig(4, 2), logging.NewTestLogger())
	defer r.Close()

	done := make(chan struct{})
	r.Defer(schedule.Task{Key: "k", Run: func() { close(done) }})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deferred task did not run")
	}
}

func TestRuntime_DeferWaitsForTheTick(t *testing.T) {
	cfg := schedule.NewConfig(4, 2).WithTick(50 * time.Millisecond)
	r := schedule.NewRuntime(context.Background(), cfg, nil)
	defer r.Close()

	var ran atomic.Bool
	r.Defer(schedule.Task{Key: "k", Run: func() { ran.Store(true) }})

	time.Sleep(10 * time.Millisecond)
	assert.False(t, ran.Load(), "a deferred task must not run inside the submitting burst")
	require.Eventually(t, ran.Load, time.Second, 5*time.Millisecond)
}

func TestRuntime_DeferRunsBeforeLaterTimers(t *testing.T) {
	r := schedule.NewRuntime(context.Background(), schedule.NewConfig(4, 1), nil)
	defer r.Close()

	var (
		mu  sync.Mutex
		got []string
	)
	done := make(chan struct{})
	r.Defer(schedule.Task{Key: "k", Run: func() {
		mu.Lock()
		got = append(got, "tick")
		mu.Unlock()
	}})
	r.AfterFunc(0, schedule.Task{Key: "k", Run: func() {
		mu.Lock()
		got = append(got, "timer")
		mu.Unlock()
		close(done)
	}})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer task did not run")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"tick", "timer"}, got)
}

func TestConfig_WithTick(t *testing.T) {
	assert.Equal(t, schedule.DefaultTick, schedule.NewConfig(1, 1).Tick)
	assert.Equal(t, time.Second, schedule.NewConfig(1, 1).WithTick(time.Second).Tick)
	assert.Equal(t, schedule.DefaultTick, schedule.NewConfig(1, 1).WithTick(-1).Tick)
}

func TestRuntime_AfterFuncWaits(t *testing.T) {
	r := schedule.NewRuntime(context.Background(), schedule.NewConfig(1, 1), nil)
	defer r.Close()

	start := time.Now()
	done := make(chan time.Time, 1)
	r.AfterFunc(30*time.Millisecond, schedule.Task{Key: "k", Run: func() { done <- time.Now() }})

	select {
	case at := <-done:
		assert.GreaterOrEqual(t, at.Sub(start), 30*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("timer task did not run")
	}
}

func TestRuntime_SameKeyRunsInOrder(t *testing.T) {
	r := schedule.NewRuntime(context.Background(), schedule.NewConfig(16, 4), nil)
	defer r.Close()

	var (
		mu  sync.Mutex
		got []int
		wg  sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		i := i
		r.Defer(schedule.Task{Key: "ordered", Run: func() {
			defer wg.Done()
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}})
	}
	wg.Wait()

	want := make([]int, 20)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
}

func TestRuntime_PanickingTaskDoesNotKillWorker(t *testing.T) {
	r := schedule.NewRuntime(context.Background(), schedule.NewConfig(1, 1), logging.NewTestLogger())
	defer r.Close()

	r.Defer(schedule.Task{Key: "k", Run: func() { panic("boom") }})

	done := make(chan struct{})
	r.Defer(schedule.Task{Key: "k", Run: func() { close(done) }})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker died after a panic")
	}
}

func TestRuntime_RunsAfterClose(t *testing.T) {
	r := schedule.NewRuntime(context.Background(), schedule.NewConfig(1, 1), nil)
	r.Close()
	r.Close()

	var ran atomic.Bool
	r.Defer(schedule.Task{Key: "k", Run: func() { ran.Store(true) }})

	require.Eventually(t, ran.Load, time.Second, 5*time.Millisecond)
}

func TestDefault_IsShared(t *testing.T) {
	assert.Same(t, schedule.Default(), schedule.Default())
}
