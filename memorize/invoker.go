package memorize

import (
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/on-the-ground/memorize/future"
	"github.com/on-the-ground/memorize/multikey"
	"github.com/on-the-ground/memorize/schedule"
	"github.com/rickb777/date/v2/timespan"
	"go.uber.org/zap"
)

// hooks tell the invoker what a result of type V carries.
type hooks[V any] struct {
	// failure returns the synchronous error held by a result, if any.
	// Such results are handed back but never cached.
	failure func(V) error
	// settler returns the pending part of a result, if any.
	settler func(V) (future.Settler, bool)
}

// invoker is the cache behind one wrapped callable. Every call of the
// wrapper goes through invoke with its key sequence.
type invoker[V any] struct {
	id     string
	name   string
	cfg    config
	hooks  hooks[V]
	logger *zap.Logger

	mu    sync.Mutex
	store *multikey.Map[*entry[V]]
}

type entry[V any] struct {
	value V
	// pending entries belong to a call still running the original;
	// ready is closed when it finishes either way.
	pending bool
	ready   chan struct{}
	served  int
	span    timespan.TimeSpan
}

// stale reports whether an entry outlived its ttl before its eviction ran.
func (e *entry[V]) stale(now time.Time) bool {
	return e.span.Duration() > 0 && now.After(e.span.End())
}

func newInvoker[V any](fn any, opts []Option, h hooks[V]) (*invoker[V], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	name := cfg.name
	if name == "" {
		name = NameOf(fn)
	}
	id := uuid.New().String()
	inv := &invoker[V]{
		id:     id,
		name:   name,
		cfg:    cfg,
		hooks:  h,
		logger: cfg.logger.With(zap.String("memo", name), zap.String("memoId", id)),
		store:  multikey.New[*entry[V]](),
	}
	inv.logger.Debug("memoized",
		zap.Stringer("ttl", cfg.ttl),
		zap.Int("atMostNTimes", cfg.atMostNTimes),
		zap.Bool("evictOnFailure", cfg.evictOnFailure),
	)
	return inv, nil
}

// mustInvoker is newInvoker for the typed wrappers, where a bad option is a
// programming error.
func mustInvoker[V any](fn any, opts []Option, h hooks[V]) *invoker[V] {
	inv, err := newInvoker(fn, opts, h)
	if err != nil {
		panic(err)
	}
	return inv
}

// invoke returns the cached result for keys, or runs call and caches what
// it returns according to the policy.
func (inv *invoker[V]) invoke(keys []any, call func() V) V {
	for {
		inv.mu.Lock()
		e, found := inv.store.HasAndGet(keys)
		if found && e.pending {
			inv.mu.Unlock()
			<-e.ready
			continue
		}
		if found && inv.cfg.ttl.kind == ttlAfter && e.stale(inv.cfg.scheduler.Now()) {
			inv.store.Delete(keys)
			found = false
			inv.logger.Debug("evicted", zap.String("reason", "expired"), zap.Int("served", e.served))
		}
		if found && inv.cfg.bounded() && e.served >= inv.cfg.atMostNTimes {
			inv.store.Delete(keys)
			found = false
			inv.logger.Debug("evicted", zap.String("reason", "exhausted"), zap.Int("served", e.served))
		}
		if found {
			e.served++
			inv.mu.Unlock()
			return e.value
		}

		e = &entry[V]{pending: true, ready: make(chan struct{})}
		inv.store.Set(keys, e)
		inv.mu.Unlock()

		if ce := inv.logger.Check(zap.DebugLevel, "miss"); ce != nil {
			ce.Write(zap.Int("keys", len(keys)))
		}
		return inv.populate(keys, e, call)
	}
}

func (inv *invoker[V]) populate(keys []any, e *entry[V], call func() V) V {
	returned := false
	defer func() {
		if !returned {
			inv.abandon(keys, e)
		}
	}()
	v := call()
	returned = true

	if err := inv.hooks.failure(v); err != nil {
		inv.abandon(keys, e)
		inv.logger.Debug("not cached", zap.Error(err))
		return v
	}

	inv.mu.Lock()
	e.value = v
	e.served = 1
	e.pending = false
	if inv.cfg.ttl.kind == ttlAfter {
		now := inv.cfg.scheduler.Now()
		e.span = timespan.BetweenTimes(now, now.Add(inv.cfg.ttl.d))
	}
	close(e.ready)
	inv.mu.Unlock()

	inv.expire(keys, e, v)
	return v
}

// abandon drops a pending entry whose call panicked or failed.
func (inv *invoker[V]) abandon(keys []any, e *entry[V]) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if cur, ok := inv.store.HasAndGet(keys); ok && cur == e {
		inv.store.Delete(keys)
	}
	e.pending = false
	close(e.ready)
}

// expire arranges the eviction of a freshly populated entry.
func (inv *invoker[V]) expire(keys []any, e *entry[V], v V) {
	switch inv.cfg.ttl.kind {
	case ttlForever:
		if inv.cfg.evictOnFailure {
			inv.evictOnFailure(keys, e, v)
		}

	case ttlAfter:
		inv.cfg.scheduler.AfterFunc(inv.cfg.ttl.d, inv.task(keys, e, "expired"))
		if inv.cfg.evictOnFailure {
			inv.evictOnFailure(keys, e, v)
		}

	case ttlDeferred:
		inv.cfg.scheduler.Defer(inv.task(keys, e, "deferred"))

	case ttlSettled:
		s, ok := inv.hooks.settler(v)
		if !ok {
			// a plain value counts as settled already
			if !inv.cfg.bounded() {
				inv.cfg.scheduler.Defer(inv.task(keys, e, "settled"))
			}
			return
		}
		s.OnSettled(func(err error) {
			switch {
			case err != nil:
				inv.evict(keys, e, "failed")
			case !inv.cfg.bounded():
				inv.evict(keys, e, "settled")
			}
		})
	}
}

func (inv *invoker[V]) evictOnFailure(keys []any, e *entry[V], v V) {
	if s, ok := inv.hooks.settler(v); ok {
		s.OnSettled(func(err error) {
			if err != nil {
				inv.evict(keys, e, "failed")
			}
		})
	}
}

func (inv *invoker[V]) task(keys []any, e *entry[V], reason string) schedule.Task {
	return schedule.Task{
		Key: inv.id,
		Run: func() { inv.evict(keys, e, reason) },
	}
}

// evict removes e if it is still the entry stored under keys. Evictions
// aimed at an entry that was already replaced do nothing.
func (inv *invoker[V]) evict(keys []any, e *entry[V], reason string) {
	inv.mu.Lock()
	cur, ok := inv.store.HasAndGet(keys)
	if !ok || cur != e {
		inv.mu.Unlock()
		return
	}
	inv.store.Delete(keys)
	served := e.served
	inv.mu.Unlock()

	fields := []zap.Field{zap.String("reason", reason), zap.Int("served", served)}
	if !e.span.Start().IsZero() {
		fields = append(fields, zap.Duration("ttl", e.span.Duration()), zap.Time("expiresAt", e.span.End()))
	}
	inv.logger.Debug("evicted", fields...)
}

func defaultHooks[V any]() hooks[V] {
	return hooks[V]{
		failure: func(V) error { return nil },
		settler: func(v V) (future.Settler, bool) { return asSettler(v) },
	}
}

func asSettler(x any) (future.Settler, bool) {
	s, ok := x.(future.Settler)
	if !ok || isNil(x) {
		return nil, false
	}
	return s, true
}

func asError(x any) error {
	err, ok := x.(error)
	if !ok || isNil(x) {
		return nil
	}
	return err
}

func isNil(x any) bool {
	if x == nil {
		return true
	}
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}
