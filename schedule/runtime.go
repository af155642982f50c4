package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ Scheduler = (*Runtime)(nil)

// Runtime schedules on the Go runtime: timers come from time.AfterFunc and
// ticks are served by a pool of workers partitioned by Task.Key, so tasks
// of one key run one at a time and in order.
//
// A deferred task is held for one Config.Tick after it was submitted, so the
// burst of work that submitted it finishes first.
type Runtime struct {
	ID         string
	ctx        context.Context
	dispatcher dispatcher[Task]
	logger     *zap.Logger
	closeFn    func()
	closeOnce  sync.Once

	tick    time.Duration
	mu      sync.Mutex
	pending []held // in due order
	armed   bool
}

type held struct {
	due  time.Time
	task Task
}

func NewRuntime(ctx context.Context, cfg Config, logger *zap.Logger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = NewConfig(cfg.BufferSize, cfg.NumWorkers).WithTick(cfg.Tick)
	ctx, cancel := context.WithCancel(ctx)
	r := &Runtime{
		ID:      uuid.New().String(),
		ctx:     ctx,
		logger:  logger,
		closeFn: cancel,
		tick:    cfg.Tick,
	}
	r.dispatcher = newDispatcher(ctx, cfg, r.run)
	logger.Debug("runtime scheduler started",
		zap.String("schedulerId", r.ID),
		zap.Int("numWorkers", cfg.NumWorkers),
		zap.Int("bufferSize", cfg.BufferSize),
		zap.Duration("tick", cfg.Tick),
	)
	return r
}

var defaultRuntime = sync.OnceValue(func() *Runtime {
	return NewRuntime(context.Background(), NewConfig(64, 4), nil)
})

// Default returns the process-wide Runtime, started on first use.
func Default() *Runtime {
	return defaultRuntime()
}

func (r *Runtime) Now() time.Time {
	return time.Now()
}

// AfterFunc defers task once d has elapsed, so timed and deferred tasks of
// one key never run concurrently and a timer never beats a tick submitted
// before it.
func (r *Runtime) AfterFunc(d time.Duration, task Task) {
	time.AfterFunc(d, func() {
		r.Defer(task)
	})
}

// Defer queues task for the next tick. Once the scheduler is closed the
// task still runs, on its own goroutine.
func (r *Runtime) Defer(task Task) {
	if r.ctx.Err() != nil {
		go r.run(context.Background(), task)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, held{due: time.Now().Add(r.tick), task: task})
	if !r.armed {
		r.armed = true
		time.AfterFunc(r.tick, r.flush)
	}
}

// flush dispatches the held tasks that are due, then rearms for the rest.
// Only one flush is armed at a time, which keeps submission order.
func (r *Runtime) flush() {
	r.mu.Lock()
	now := time.Now()
	n := 0
	for n < len(r.pending) && !r.pending[n].due.After(now) {
		n++
	}
	due := make([]held, n)
	copy(due, r.pending)
	r.pending = r.pending[n:]
	r.mu.Unlock()

	for _, h := range due {
		r.dispatch(h.task)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) == 0 {
		r.armed = false
		return
	}
	time.AfterFunc(time.Until(r.pending[0].due), r.flush)
}

func (r *Runtime) dispatch(task Task) {
	select {
	case <-r.ctx.Done():
		go r.run(context.Background(), task)
	case r.dispatcher.channelOf(task) <- task:
	}
}

// Close stops the workers. Safe to call more than once.
func (r *Runtime) Close() {
	r.closeOnce.Do(func() {
		r.closeFn()
		r.logger.Debug("runtime scheduler closed", zap.String("schedulerId", r.ID))
	})
}

func (r *Runtime) run(_ context.Context, task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("scheduled task panicked",
				zap.String("schedulerId", r.ID),
				zap.String("taskKey", task.Key),
				zap.Any("panic", rec),
			)
		}
	}()
	task.Run()
}
