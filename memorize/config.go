package memorize

import (
	"fmt"
	"io"
	"time"

	"github.com/on-the-ground/memorize/configkeys"
	"github.com/on-the-ground/memorize/schedule"
	"github.com/on-the-ground/memorize/shared/helper"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// LoadBindings reads a YAML document into flat dotted bindings rooted at
// configkeys.ConfigPrefix:
//
//	memorize:
//	  ttl: 250ms
//	  at_most_n_times: 3
//	schedule:
//	  num_workers: 4
//
// yields "config.memorize.ttl", "config.memorize.at_most_n_times" and
// "config.schedule.num_workers".
func LoadBindings(r io.Reader) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	bindings := make(map[string]any)
	flatten(bindings, configkeys.ConfigPrefix, doc)
	return bindings, nil
}

func flatten(dst map[string]any, prefix string, src map[string]any) {
	for k, v := range src {
		key := configkeys.Join(prefix, k)
		if nested, ok := v.(map[string]any); ok {
			flatten(dst, key, nested)
			continue
		}
		dst[key] = v
	}
}

// OptionsFrom turns the config.memorize.* bindings into options. Absent keys
// keep their defaults. Every malformed key is reported.
func OptionsFrom(bindings map[string]any) ([]Option, error) {
	var (
		opts []Option
		errs error
	)

	if raw, found := bindings[configkeys.ConfigMemorizeTTL]; found {
		ttl, err := ParseTTL(raw)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", configkeys.ConfigMemorizeTTL, err))
		} else {
			opts = append(opts, WithTTL(ttl))
		}
	}

	n, found, err := helper.Lookup[int](bindings, configkeys.ConfigMemorizeAtMostNTimes)
	switch {
	case err != nil:
		errs = multierr.Append(errs, fmt.Errorf("%w: %v", ErrInvalidOption, err))
	case found:
		opts = append(opts, WithAtMostNTimes(n))
	}

	evict, found, err := helper.Lookup[bool](bindings, configkeys.ConfigMemorizeEvictOnFailure)
	switch {
	case err != nil:
		errs = multierr.Append(errs, fmt.Errorf("%w: %v", ErrInvalidOption, err))
	case found && evict:
		opts = append(opts, WithEvictOnFailure())
	}

	name, found, err := helper.Lookup[string](bindings, configkeys.ConfigMemorizeName)
	switch {
	case err != nil:
		errs = multierr.Append(errs, fmt.Errorf("%w: %v", ErrInvalidOption, err))
	case found:
		opts = append(opts, WithName(name))
	}

	if errs != nil {
		return nil, errs
	}
	return opts, nil
}

// SchedulerConfigFrom reads config.schedule.* for schedule.NewRuntime. The
// tick is a Go duration string such as "5ms".
func SchedulerConfigFrom(bindings map[string]any) (schedule.Config, error) {
	bufferSize, _, err1 := helper.Lookup[int](bindings, configkeys.ConfigScheduleBufferSize)
	numWorkers, _, err2 := helper.Lookup[int](bindings, configkeys.ConfigScheduleNumWorkers)
	rawTick, hasTick, err3 := helper.Lookup[string](bindings, configkeys.ConfigScheduleTick)
	var tick time.Duration
	if hasTick && err3 == nil {
		var err error
		if tick, err = time.ParseDuration(rawTick); err != nil || tick <= 0 {
			err3 = fmt.Errorf("%s: tick %q, want a positive duration", configkeys.ConfigScheduleTick, rawTick)
		}
	}
	if err := multierr.Combine(err1, err2, err3); err != nil {
		return schedule.Config{}, fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	return schedule.NewConfig(bufferSize, numWorkers).WithTick(tick), nil
}
