package schedule

import (
	"sync"
	"time"
)

var _ Scheduler = (*Manual)(nil)

// Manual is a deterministic Scheduler. Nothing runs until the owner calls
// Yield (drain the tick queue) or Advance (move the clock, firing timers in
// due order with a tick drain after each).
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	ticks  []Task
	timers []timer
	seq    uint64
}

type timer struct {
	when time.Time
	seq  uint64
	task Task
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, task Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.timers = append(m.timers, timer{when: m.now.Add(d), seq: m.seq, task: task})
}

func (m *Manual) Defer(task Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks = append(m.ticks, task)
}

// Yield runs queued tick tasks, including the ones they queue, and returns
// how many ran.
func (m *Manual) Yield() int {
	ran := 0
	for {
		m.mu.Lock()
		if len(m.ticks) == 0 {
			m.mu.Unlock()
			return ran
		}
		task := m.ticks[0]
		m.ticks = m.ticks[1:]
		m.mu.Unlock()

		task.Run()
		ran++
	}
}

// Advance yields, then moves the clock forward by d, firing every timer due
// on the way. It returns the number of tasks run.
func (m *Manual) Advance(d time.Duration) int {
	ran := m.Yield()

	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		idx := m.earliest()
		if idx < 0 || m.timers[idx].when.After(target) {
			m.now = target
			m.mu.Unlock()
			return ran
		}
		t := m.timers[idx]
		m.timers = append(m.timers[:idx], m.timers[idx+1:]...)
		if t.when.After(m.now) {
			m.now = t.when
		}
		m.mu.Unlock()

		t.task.Run()
		ran++
		ran += m.Yield()
	}
}

// Pending reports the queued tick tasks and armed timers.
func (m *Manual) Pending() (ticks int, timers int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ticks), len(m.timers)
}

func (m *Manual) earliest() int {
	idx := -1
	for i, t := range m.timers {
		if idx < 0 || t.when.Before(m.timers[idx].when) ||
			(t.when.Equal(m.timers[idx].when) && t.seq < m.timers[idx].seq) {
			idx = i
		}
	}
	return idx
}
