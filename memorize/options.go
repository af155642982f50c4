package memorize

import (
	"fmt"

	"github.com/on-the-ground/memorize/schedule"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type config struct {
	ttl            TTL
	atMostNTimes   int // 0: unbounded
	scheduler      schedule.Scheduler
	logger         *zap.Logger
	name           string
	evictOnFailure bool
	errs           error
}

// Option configures a memoized wrapper.
type Option func(*config)

// WithTTL sets the expiration policy. The default is Forever.
func WithTTL(ttl TTL) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// WithAtMostNTimes bounds how many results one entry serves, its creation
// included. The access after the n-th recomputes.
//
// With UntilSettled, a successful settlement no longer evicts; the bound
// does. Ignored with Deferred.
func WithAtMostNTimes(n int) Option {
	return func(c *config) {
		if n < 1 {
			c.errs = multierr.Append(c.errs, fmt.Errorf("%w: atMostNTimes %d, want >= 1", ErrInvalidOption, n))
			return
		}
		c.atMostNTimes = n
	}
}

// WithScheduler sets where timed and deferred evictions run.
// The default is schedule.Default().
func WithScheduler(s schedule.Scheduler) Option {
	return func(c *config) {
		if s == nil {
			c.errs = multierr.Append(c.errs, fmt.Errorf("%w: nil scheduler", ErrInvalidOption))
			return
		}
		c.scheduler = s
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithName overrides the display name used in logs and on members.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithEvictOnFailure also evicts pending results that settle with an error
// under Forever and After. UntilSettled always does.
func WithEvictOnFailure() Option {
	return func(c *config) {
		c.evictOnFailure = true
	}
}

func newConfig(opts []Option) (config, error) {
	c := config{
		ttl:    Forever,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	err := multierr.Append(c.errs, c.ttl.validate())
	if err != nil {
		return config{}, err
	}
	if c.scheduler == nil && c.ttl.kind != ttlForever {
		c.scheduler = schedule.Default()
	}
	return c, nil
}

// bounded reports whether the call-count bound applies to this policy.
func (c config) bounded() bool {
	return c.atMostNTimes > 0 && c.ttl.kind != ttlDeferred
}
