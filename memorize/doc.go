// Package memorize caches the results of functions and methods by the
// arguments they were called with.
//
// A memoized function is asked a question before it is wrapped:
//
//	→ "How long does an answer stay true?"
//
// The answer is its TTL:
//   - Forever: as long as the wrapper lives.
//   - After(d): for d, measured by the scheduler.
//   - Deferred: until the scheduler's next tick, so one burst of calls
//     shares one computation.
//   - UntilSettled: while a future.Future result is pending. A result that
//     fails is dropped; the next call tries again.
//
// WithAtMostNTimes additionally bounds how many calls one cached result
// serves.
//
// Arguments are keys. Comparable values match by equality, pointers match
// by identity and are held weakly so a collected argument takes its entries
// with it, and fmt.Stringer values match by type and String(). Methods are
// keyed by receiver first.
//
// Wrappers:
//   - FuncI0O1 to FuncI4O2: typed, zero-reflection wrappers for free functions.
//   - Getter, MethodI1O1 to MethodI3O2: method expressions, receiver first.
//   - Wrap: any function type, via reflection.
//   - Decorate: memoizes a Member (getter or method) in place.
//
// Synchronous failures (panics and non-nil trailing errors) are never
// cached. A recursive function may call its own memoized version.
package memorize
