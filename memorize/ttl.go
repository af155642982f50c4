package memorize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rickb777/period"
)

type ttlKind uint8

const (
	ttlForever ttlKind = iota
	ttlAfter
	ttlDeferred
	ttlSettled
)

// TTL selects how long a memoized result stays cached.
type TTL struct {
	kind ttlKind
	d    time.Duration
}

var (
	// Forever keeps results for the lifetime of the wrapper.
	Forever = TTL{kind: ttlForever}

	// Deferred keeps results until the scheduler's next tick, which caches
	// within one burst of calls only.
	Deferred = TTL{kind: ttlDeferred}

	// UntilSettled keeps a pending result until it settles, successfully or
	// not. Concurrent callers share the attempt; the next call after it
	// settles starts a new one.
	UntilSettled = TTL{kind: ttlSettled}
)

// After keeps results for d. After(0) still waits for a zero-length timer,
// so it outlives Deferred.
func After(d time.Duration) TTL {
	return TTL{kind: ttlAfter, d: d}
}

// Duration returns the delay of an After policy.
func (t TTL) Duration() (time.Duration, bool) {
	return t.d, t.kind == ttlAfter
}

func (t TTL) String() string {
	switch t.kind {
	case ttlAfter:
		return t.d.String()
	case ttlDeferred:
		return "false"
	case ttlSettled:
		return "async"
	default:
		return "infinite"
	}
}

func (t TTL) validate() error {
	if t.kind == ttlAfter && t.d < 0 {
		return fmt.Errorf("%w: negative ttl %v", ErrInvalidOption, t.d)
	}
	return nil
}

// ParseTTL converts a configuration value into a TTL.
//
// Accepted values: nil, "", "infinite", "forever" and +Inf for Forever;
// false, "false" and "deferred" for Deferred; "async" and "settled" for
// UntilSettled; a time.Duration, a Go duration string ("250ms"), an
// ISO-8601 period ("PT0.25S") or a number of milliseconds for After.
// Negative and NaN delays are rejected. Delays beyond time.Duration's range
// are Forever. Periods may use weeks and days, taken as 24 hours each, but
// not years or months, whose length depends on the calendar.
func ParseTTL(v any) (TTL, error) {
	switch v := v.(type) {
	case nil:
		return Forever, nil
	case TTL:
		return v, v.validate()
	case time.Duration:
		return checked(After(v))
	case bool:
		if v {
			return TTL{}, fmt.Errorf("%w: ttl true", ErrInvalidOption)
		}
		return Deferred, nil
	case int:
		return millis(float64(v))
	case int32:
		return millis(float64(v))
	case int64:
		return millis(float64(v))
	case uint:
		return millis(float64(v))
	case uint32:
		return millis(float64(v))
	case uint64:
		return millis(float64(v))
	case float32:
		return millis(float64(v))
	case float64:
		return millis(v)
	case string:
		return parseTTLString(v)
	default:
		return TTL{}, fmt.Errorf("%w: ttl of type %T", ErrInvalidOption, v)
	}
}

func parseTTLString(s string) (TTL, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch norm {
	case "", "infinite", "infinity", "forever":
		return Forever, nil
	case "false", "deferred":
		return Deferred, nil
	case "async", "settled":
		return UntilSettled, nil
	}

	if strings.HasPrefix(norm, "p") || strings.HasPrefix(norm, "-p") {
		iso := strings.ToUpper(norm)
		p, err := period.Parse(iso)
		if err != nil {
			return TTL{}, fmt.Errorf("%w: ttl %q: %v", ErrInvalidOption, s, err)
		}
		date, _, _ := strings.Cut(iso, "T")
		if strings.ContainsAny(date, "YM") {
			return TTL{}, fmt.Errorf("%w: ttl %q has calendar years or months", ErrInvalidOption, s)
		}
		// days are the only imprecise part left, and they count as 24h
		d, _ := p.Duration()
		return checked(After(d))
	}
	if d, err := time.ParseDuration(norm); err == nil {
		return checked(After(d))
	}
	if f, err := strconv.ParseFloat(norm, 64); err == nil {
		return millis(f)
	}
	return TTL{}, fmt.Errorf("%w: ttl %q", ErrInvalidOption, s)
}

func millis(ms float64) (TTL, error) {
	switch {
	case math.IsInf(ms, 1):
		return Forever, nil
	case math.IsNaN(ms):
		return TTL{}, fmt.Errorf("%w: ttl NaN", ErrInvalidOption)
	case ms < 0:
		return TTL{}, fmt.Errorf("%w: negative ttl %vms", ErrInvalidOption, ms)
	}
	ns := ms * float64(time.Millisecond)
	if ns >= float64(math.MaxInt64) {
		return Forever, nil
	}
	return After(time.Duration(ns)), nil
}

func checked(t TTL) (TTL, error) {
	if err := t.validate(); err != nil {
		return TTL{}, err
	}
	return t, nil
}
