package memorize

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/on-the-ground/memorize/future"
)

var errorType = reflect.TypeFor[error]()

// Wrap memoizes any function value and returns one of the same type.
//
// Arguments become the key sequence, a variadic tail expanded element by
// element. A trailing error result that is non-nil is returned but not
// cached. A first result implementing future.Settler is what UntilSettled
// and WithEvictOnFailure watch.
func Wrap[F any](fn F, opts ...Option) (F, error) {
	var zero F
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return zero, fmt.Errorf("%w: %T is not a function", ErrInvalidTarget, fn)
	}
	wrapped, err := wrapValue(rv, true, opts)
	if err != nil {
		return zero, err
	}
	return wrapped.Interface().(F), nil
}

// MustWrap is Wrap that panics on an invalid target or option.
func MustWrap[F any](fn F, opts ...Option) F {
	wrapped, err := Wrap(fn, opts...)
	if err != nil {
		panic(err)
	}
	return wrapped
}

// wrapValue builds the memoized counterpart of fn. Free functions are keyed
// behind the unbound marker; methods start with their receiver.
func wrapValue(fn reflect.Value, free bool, opts []Option) (reflect.Value, error) {
	ft := fn.Type()
	inv, err := newInvoker(fn.Interface(), opts, resultHooks(ft))
	if err != nil {
		return reflect.Value{}, err
	}

	wrapped := reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
		keys := argKeys(ft, args, free)
		out := inv.invoke(keys, func() []reflect.Value {
			if ft.IsVariadic() {
				return fn.CallSlice(args)
			}
			return fn.Call(args)
		})
		return slices.Clone(out)
	})
	named(inv.name, wrapped.Interface())
	return wrapped, nil
}

func argKeys(ft reflect.Type, args []reflect.Value, free bool) []any {
	keys := make([]any, 0, len(args)+1)
	if free {
		keys = append(keys, unbound)
	}
	fixed := len(args)
	if ft.IsVariadic() {
		fixed--
	}
	for _, a := range args[:fixed] {
		keys = append(keys, a.Interface())
	}
	if ft.IsVariadic() {
		tail := args[fixed]
		for i := range tail.Len() {
			keys = append(keys, tail.Index(i).Interface())
		}
	}
	return keys
}

func resultHooks(ft reflect.Type) hooks[[]reflect.Value] {
	n := ft.NumOut()
	errAt := -1
	if n > 0 && ft.Out(n-1) == errorType {
		errAt = n - 1
	}
	return hooks[[]reflect.Value]{
		failure: func(out []reflect.Value) error {
			if errAt < 0 {
				return nil
			}
			return asError(out[errAt].Interface())
		},
		settler: func(out []reflect.Value) (future.Settler, bool) {
			if n == 0 || errAt == 0 {
				return nil, false
			}
			return asSettler(out[0].Interface())
		},
	}
}
