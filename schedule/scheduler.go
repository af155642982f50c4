// Package schedule provides the deferred-execution capability used for
// cache eviction: run a task after a delay, or at the next tick.
//
// A tick is the earliest point after the current burst of work. Runtime
// approximates it with a worker queue; Manual makes it explicit so tests can
// decide exactly when a tick happens.
package schedule

import "time"

type Scheduler interface {
	// Now is the scheduler's clock.
	Now() time.Time
	// AfterFunc runs task once d has elapsed. d may be zero.
	AfterFunc(d time.Duration, task Task)
	// Defer runs task at the next tick, before any timer due later.
	Defer(task Task)
}

// Partitionable tasks with the same key run in submission order.
type Partitionable interface {
	PartitionKey() string
}

// Task is a unit of deferred work.
type Task struct {
	Key string
	Run func()
}

func (t Task) PartitionKey() string {
	return t.Key
}

var _ Partitionable = Task{}
