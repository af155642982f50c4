package memorize

// Getter memoizes a receiver-only accessor, typically a method expression
// such as (*Config).Checksum. Each receiver gets its own entry.
func Getter[R ComparableOrStringer, O1 any](fn func(R) O1, opts ...Option) func(R) O1 {
	inv := mustInvoker(fn, opts, defaultHooks[O1]())
	return named(inv.name, func(r R) O1 {
		return inv.invoke([]any{r}, func() O1 {
			return fn(r)
		})
	})
}

func GetterO2[R ComparableOrStringer, O1, O2 any](fn func(R) (O1, O2), opts ...Option) func(R) (O1, O2) {
	inv := mustInvoker(fn, opts, pairHooks[O1, O2]())
	return named(inv.name, func(r R) (O1, O2) {
		p := inv.invoke([]any{r}, func() pair[O1, O2] {
			o1, o2 := fn(r)
			return pair[O1, O2]{o1, o2}
		})
		return p.o1, p.o2
	})
}

// MethodI1O1 memoizes a method expression. The receiver is the first key, so
// two receivers never share results.
func MethodI1O1[R, I1 ComparableOrStringer, O1 any](fn func(R, I1) O1, opts ...Option) func(R, I1) O1 {
	inv := mustInvoker(fn, opts, defaultHooks[O1]())
	return named(inv.name, func(r R, i1 I1) O1 {
		return inv.invoke([]any{r, i1}, func() O1 {
			return fn(r, i1)
		})
	})
}

func MethodI2O1[R, I1, I2 ComparableOrStringer, O1 any](fn func(R, I1, I2) O1, opts ...Option) func(R, I1, I2) O1 {
	inv := mustInvoker(fn, opts, defaultHooks[O1]())
	return named(inv.name, func(r R, i1 I1, i2 I2) O1 {
		return inv.invoke([]any{r, i1, i2}, func() O1 {
			return fn(r, i1, i2)
		})
	})
}

func MethodI3O1[R, I1, I2, I3 ComparableOrStringer, O1 any](fn func(R, I1, I2, I3) O1, opts ...Option) func(R, I1, I2, I3) O1 {
	inv := mustInvoker(fn, opts, defaultHooks[O1]())
	return named(inv.name, func(r R, i1 I1, i2 I2, i3 I3) O1 {
		return inv.invoke([]any{r, i1, i2, i3}, func() O1 {
			return fn(r, i1, i2, i3)
		})
	})
}

func MethodI1O2[R, I1 ComparableOrStringer, O1, O2 any](fn func(R, I1) (O1, O2), opts ...Option) func(R, I1) (O1, O2) {
	inv := mustInvoker(fn, opts, pairHooks[O1, O2]())
	return named(inv.name, func(r R, i1 I1) (O1, O2) {
		p := inv.invoke([]any{r, i1}, func() pair[O1, O2] {
			o1, o2 := fn(r, i1)
			return pair[O1, O2]{o1, o2}
		})
		return p.o1, p.o2
	})
}

func MethodI2O2[R, I1, I2 ComparableOrStringer, O1, O2 any](fn func(R, I1, I2) (O1, O2), opts ...Option) func(R, I1, I2) (O1, O2) {
	inv := mustInvoker(fn, opts, pairHooks[O1, O2]())
	return named(inv.name, func(r R, i1 I1, i2 I2) (O1, O2) {
		p := inv.invoke([]any{r, i1, i2}, func() pair[O1, O2] {
			o1, o2 := fn(r, i1, i2)
			return pair[O1, O2]{o1, o2}
		})
		return p.o1, p.o2
	})
}

func MethodI3O2[R, I1, I2, I3 ComparableOrStringer, O1, O2 any](fn func(R, I1, I2, I3) (O1, O2), opts ...Option) func(R, I1, I2, I3) (O1, O2) {
	inv := mustInvoker(fn, opts, pairHooks[O1, O2]())
	return named(inv.name, func(r R, i1 I1, i2 I2, i3 I3) (O1, O2) {
		p := inv.invoke([]any{r, i1, i2, i3}, func() pair[O1, O2] {
			o1, o2 := fn(r, i1, i2, i3)
			return pair[O1, O2]{o1, o2}
		})
		return p.o1, p.o2
	})
}
