package memorize

import "errors"

var (
	// ErrInvalidTarget is returned when something that is neither a function,
	// a method nor a getter is handed over for memoization.
	ErrInvalidTarget = errors.New("invalid memoization target")

	// ErrInvalidOption is returned when an option cannot describe a policy.
	ErrInvalidOption = errors.New("invalid memoization option")
)
