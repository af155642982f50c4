package memorize

import (
	"fmt"
	"reflect"
)

// Member describes a property of some type as a decorator sees it: either an
// accessor (Get) or a method (Value), each taking the receiver first.
type Member struct {
	Name         string
	Get          any
	Value        any
	Enumerable   bool
	Configurable bool
}

// Decorator replaces a member with a memoized one.
type Decorator func(Member) (Member, error)

// Decorate returns a Decorator that memoizes getters and methods with opts.
// The member's name becomes the wrapper's display name unless WithName is
// given. Plain data members fail with ErrInvalidTarget.
func Decorate(opts ...Option) Decorator {
	return func(m Member) (Member, error) {
		withName := append([]Option{WithName(m.Name)}, opts...)

		if m.Get != nil {
			get := reflect.ValueOf(m.Get)
			if get.Kind() != reflect.Func || get.IsNil() || get.Type().NumIn() != 1 || get.Type().NumOut() == 0 {
				return Member{}, fmt.Errorf("%w: getter %q has type %T", ErrInvalidTarget, m.Name, m.Get)
			}
			wrapped, err := wrapValue(get, false, withName)
			if err != nil {
				return Member{}, err
			}
			m.Get = wrapped.Interface()
			return m, nil
		}

		method := reflect.ValueOf(m.Value)
		if method.Kind() != reflect.Func || method.IsNil() || method.Type().NumIn() < 1 {
			return Member{}, fmt.Errorf("%w: %q is neither a getter nor a method", ErrInvalidTarget, m.Name)
		}
		wrapped, err := wrapValue(method, false, withName)
		if err != nil {
			return Member{}, err
		}
		m.Value = wrapped.Interface()
		return m, nil
	}
}
