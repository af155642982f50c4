package configkeys

import "strings"

const (
	delimiter = "."

	ConfigPrefix = "config"

	ConfigMemorizePrefix = ConfigPrefix + delimiter + "memorize"

	ConfigMemorizeTTL            = ConfigMemorizePrefix + delimiter + "ttl"
	ConfigMemorizeAtMostNTimes   = ConfigMemorizePrefix + delimiter + "at_most_n_times"
	ConfigMemorizeEvictOnFailure = ConfigMemorizePrefix + delimiter + "evict_on_failure"
	ConfigMemorizeName           = ConfigMemorizePrefix + delimiter + "name"

	ConfigSchedulePrefix = ConfigPrefix + delimiter + "schedule"

	ConfigScheduleBufferSize = ConfigSchedulePrefix + delimiter + "buffer_size"
	ConfigScheduleNumWorkers = ConfigSchedulePrefix + delimiter + "num_workers"
	ConfigScheduleTick       = ConfigSchedulePrefix + delimiter + "tick"
)

// Join builds a dotted key from its segments.
func Join(segments ...string) string {
	return strings.Join(segments, delimiter)
}
