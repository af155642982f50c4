package schedule

import "time"

// DefaultTick is how long Runtime holds deferred tasks, which is how long a
// burst of work may take and still count as one.
const DefaultTick = 10 * time.Millisecond

type Config struct {
	BufferSize int           // default: 1
	NumWorkers int           // default: 1
	Tick       time.Duration // default: DefaultTick
}

func NewConfig(bufferSize int, numWorkers int) Config {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return Config{
		BufferSize: bufferSize,
		NumWorkers: numWorkers,
		Tick:       DefaultTick,
	}
}

// WithTick returns cfg with its tick set; non-positive ticks keep the default.
func (cfg Config) WithTick(tick time.Duration) Config {
	if tick > 0 {
		cfg.Tick = tick
	}
	return cfg
}
