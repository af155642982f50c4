// Package multikey provides a map addressed by an ordered sequence of keys.
//
// Each position of the sequence is one layer of a trie. Pointer and map keys
// are compared by identity and held weakly: a key object that becomes
// unreachable elsewhere is collected and its subtree pruned. Functions are
// compared by identity too but held strongly. Every other key uses Go
// equality.
package multikey

import (
	"runtime"
	"sync"
	"weak"
)

type Map[V any] struct {
	mu   sync.Mutex
	root *node[V]
}

type node[V any] struct {
	strong  map[any]*node[V]
	weak    map[refKey]*weakEdge[V]
	leaf    V
	hasLeaf bool
	pin     any
}

type weakEdge[V any] struct {
	ref  weak.Pointer[byte]
	next *node[V]
}

// alive reports whether the edge still resolves to ptr.
func (e *weakEdge[V]) alive(ptr *byte) bool {
	v := e.ref.Value()
	return v != nil && v == ptr
}

func (n *node[V]) empty() bool {
	return !n.hasLeaf && len(n.strong) == 0 && len(n.weak) == 0
}

func New[V any]() *Map[V] {
	return &Map[V]{root: &node[V]{}}
}

// HasAndGet looks the sequence up once, reporting presence separately so a
// stored zero value is distinguishable from a miss.
func (m *Map[V]) HasAndGet(keys []any) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.lookup(keys)
	if n == nil || !n.hasLeaf {
		var zero V
		return zero, false
	}
	return n.leaf, true
}

// Get returns the stored value, or the zero value of V when absent.
func (m *Map[V]) Get(keys []any) V {
	v, _ := m.HasAndGet(keys)
	return v
}

func (m *Map[V]) Set(keys []any, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.root
	for _, k := range keys {
		n = m.child(n, classify(k))
	}
	n.leaf = value
	n.hasLeaf = true
}

// Delete removes the leaf for keys, if any, and prunes the nodes that were
// only there to reach it.
func (m *Map[V]) Delete(keys []any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type step struct {
		parent *node[V]
		key    classified
	}
	path := make([]step, 0, len(keys))
	n := m.root
	for _, k := range keys {
		ck := classify(k)
		c := next(n, ck)
		if c == nil {
			return
		}
		path = append(path, step{parent: n, key: ck})
		n = c
	}
	if !n.hasLeaf {
		return
	}
	var zero V
	n.leaf = zero
	n.hasLeaf = false

	for i := len(path) - 1; i >= 0 && n.empty(); i-- {
		s := path[i]
		unlink(s.parent, s.key, n)
		n = s.parent
	}
}

func (m *Map[V]) lookup(keys []any) *node[V] {
	n := m.root
	for _, k := range keys {
		if n = next(n, classify(k)); n == nil {
			return nil
		}
	}
	return n
}

func next[V any](n *node[V], k classified) *node[V] {
	if k.kind == identityKey {
		if e, ok := n.weak[k.ref]; ok && e.alive((*byte)(k.ptr)) {
			return e.next
		}
	}
	return n.strong[k.strong]
}

func unlink[V any](parent *node[V], k classified, child *node[V]) {
	if k.kind == identityKey {
		if e, ok := parent.weak[k.ref]; ok && e.next == child {
			delete(parent.weak, k.ref)
			return
		}
	}
	if parent.strong[k.strong] == child {
		delete(parent.strong, k.strong)
	}
}

// child returns the node reached from n through k, creating it if needed.
func (m *Map[V]) child(n *node[V], k classified) *node[V] {
	if c := next(n, k); c != nil {
		return c
	}
	c := &node[V]{}
	if k.kind == identityKey && m.linkWeak(n, k, c) {
		return c
	}
	if n.strong == nil {
		n.strong = make(map[any]*node[V])
	}
	n.strong[k.strong] = c
	c.pin = k.pin
	return c
}

// linkWeak stores c under a weak edge when the key lives on the heap.
// Globals and zero-size values get a no-op cleanup; they never die, so a
// strong edge is as good and weak.Make must not see them.
func (m *Map[V]) linkWeak(n *node[V], k classified, c *node[V]) bool {
	ptr := (*byte)(k.ptr)
	cleanup := runtime.AddCleanup(ptr, m.prune, pruneArg[V]{parent: n, key: k.ref})
	if cleanup == (runtime.Cleanup{}) {
		return false
	}
	if n.weak == nil {
		n.weak = make(map[refKey]*weakEdge[V])
	}
	n.weak[k.ref] = &weakEdge[V]{ref: weak.Make(ptr), next: c}
	return true
}

type pruneArg[V any] struct {
	parent *node[V]
	key    refKey
}

// prune runs after a pointer key was collected. The address may already be
// reused by a newer key, so only a dead edge is removed.
func (m *Map[V]) prune(arg pruneArg[V]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := arg.parent.weak[arg.key]; ok && e.ref.Value() == nil {
		delete(arg.parent.weak, arg.key)
	}
}
