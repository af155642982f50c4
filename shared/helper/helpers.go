package helper

import (
	"errors"
	"fmt"
)

var ErrUnexpectedType = errors.New("unexpected type")

// GetTypedValueOf safely asserts the result of a getter function to the expected type T.
// Returns an error if type assertion fails.
func GetTypedValueOf[T any](getFn func() (any, error)) (T, error) {
	var zero T

	res, err := getFn()
	if err != nil {
		return zero, fmt.Errorf("failed to get value: %w", err)
	}

	val, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T", ErrUnexpectedType, res)
	}

	return val, nil
}

// Lookup reads key from bindings as a T.
// found is false when the key is absent; err is set when it has another type.
func Lookup[T any](bindings map[string]any, key string) (val T, found bool, err error) {
	raw, found := bindings[key]
	if !found {
		return val, false, nil
	}
	val, err = GetTypedValueOf[T](func() (any, error) {
		return raw, nil
	})
	if err != nil {
		return val, true, fmt.Errorf("%s: %w", key, err)
	}
	return val, true, nil
}
