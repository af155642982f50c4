package memorize

import "github.com/on-the-ground/memorize/future"

// ComparableOrStringer documents the arguments a memoized callable accepts:
// comparable values, pointers (held weakly), or fmt.Stringer values keyed by
// their type and String().
type ComparableOrStringer any

// unbound leads the key sequence of free functions so they never share
// entries with a method whose receiver happens to equal the first argument.
type unboundKey struct{}

var unbound = unboundKey{}

type pair[O1, O2 any] struct {
	o1 O1
	o2 O2
}

func pairHooks[O1, O2 any]() hooks[pair[O1, O2]] {
	return hooks[pair[O1, O2]]{
		failure: func(p pair[O1, O2]) error { return asError(p.o2) },
		settler: func(p pair[O1, O2]) (future.Settler, bool) { return asSettler(p.o1) },
	}
}

func FuncI0O1[O1 any](fn func() O1, opts ...Option) func() O1 {
	inv := mustInvoker(fn, opts, defaultHooks[O1]())
	return named(inv.name, func() O1 {
		return inv.invoke([]any{unbound}, fn)
	})
}

func FuncI1O1[I1 ComparableOrStringer, O1 any](fn func(I1) O1, opts ...Option) func(I1) O1 {
	inv := mustInvoker(fn, opts, defaultHooks[O1]())
	return named(inv.name, func(i1 I1) O1 {
		return inv.invoke([]any{unbound, i1}, func() O1 {
			return fn(i1)
		})
	})
}

func FuncI2O1[I1, I2 ComparableOrStringer, O1 any](fn func(I1, I2) O1, opts ...Option) func(I1, I2) O1 {
	inv := mustInvoker(fn, opts, defaultHooks[O1]())
	return named(inv.name, func(i1 I1, i2 I2) O1 {
		return inv.invoke([]any{unbound, i1, i2}, func() O1 {
			return fn(i1, i2)
		})
	})
}

func FuncI3O1[I1, I2, I3 ComparableOrStringer, O1 any](fn func(I1, I2, I3) O1, opts ...Option) func(I1, I2, I3) O1 {
	inv := mustInvoker(fn, opts, defaultHooks[O1]())
	return named(inv.name, func(i1 I1, i2 I2, i3 I3) O1 {
		return inv.invoke([]any{unbound, i1, i2, i3}, func() O1 {
			return fn(i1, i2, i3)
		})
	})
}

func FuncI4O1[I1, I2, I3, I4 ComparableOrStringer, O1 any](fn func(I1, I2, I3, I4) O1, opts ...Option) func(I1, I2, I3, I4) O1 {
	inv := mustInvoker(fn, opts, defaultHooks[O1]())
	return named(inv.name, func(i1 I1, i2 I2, i3 I3, i4 I4) O1 {
		return inv.invoke([]any{unbound, i1, i2, i3, i4}, func() O1 {
			return fn(i1, i2, i3, i4)
		})
	})
}

// FuncI0O2 memoizes a two-result function. A non-nil error in the second
// result is returned to the caller and not cached.
func FuncI0O2[O1, O2 any](fn func() (O1, O2), opts ...Option) func() (O1, O2) {
	inv := mustInvoker(fn, opts, pairHooks[O1, O2]())
	return named(inv.name, func() (O1, O2) {
		p := inv.invoke([]any{unbound}, func() pair[O1, O2] {
			o1, o2 := fn()
			return pair[O1, O2]{o1, o2}
		})
		return p.o1, p.o2
	})
}

func FuncI1O2[I1 ComparableOrStringer, O1, O2 any](fn func(I1) (O1, O2), opts ...Option) func(I1) (O1, O2) {
	inv := mustInvoker(fn, opts, pairHooks[O1, O2]())
	return named(inv.name, func(i1 I1) (O1, O2) {
		p := inv.invoke([]any{unbound, i1}, func() pair[O1, O2] {
			o1, o2 := fn(i1)
			return pair[O1, O2]{o1, o2}
		})
		return p.o1, p.o2
	})
}

func FuncI2O2[I1, I2 ComparableOrStringer, O1, O2 any](fn func(I1, I2) (O1, O2), opts ...Option) func(I1, I2) (O1, O2) {
	inv := mustInvoker(fn, opts, pairHooks[O1, O2]())
	return named(inv.name, func(i1 I1, i2 I2) (O1, O2) {
		p := inv.invoke([]any{unbound, i1, i2}, func() pair[O1, O2] {
			o1, o2 := fn(i1, i2)
			return pair[O1, O2]{o1, o2}
		})
		return p.o1, p.o2
	})
}

func FuncI3O2[I1, I2, I3 ComparableOrStringer, O1, O2 any](fn func(I1, I2, I3) (O1, O2), opts ...Option) func(I1, I2, I3) (O1, O2) {
	inv := mustInvoker(fn, opts, pairHooks[O1, O2]())
	return named(inv.name, func(i1 I1, i2 I2, i3 I3) (O1, O2) {
		p := inv.invoke([]any{unbound, i1, i2, i3}, func() pair[O1, O2] {
			o1, o2 := fn(i1, i2, i3)
			return pair[O1, O2]{o1, o2}
		})
		return p.o1, p.o2
	})
}

func FuncI4O2[I1, I2, I3, I4 ComparableOrStringer, O1, O2 any](fn func(I1, I2, I3, I4) (O1, O2), opts ...Option) func(I1, I2, I3, I4) (O1, O2) {
	inv := mustInvoker(fn, opts, pairHooks[O1, O2]())
	return named(inv.name, func(i1 I1, i2 I2, i3 I3, i4 I4) (O1, O2) {
		p := inv.invoke([]any{unbound, i1, i2, i3, i4}, func() pair[O1, O2] {
			o1, o2 := fn(i1, i2, i3, i4)
			return pair[O1, O2]{o1, o2}
		})
		return p.o1, p.o2
	})
}
