package memorize_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/on-the-ground/memorize/configkeys"
	"github.com/on-the-ground/memorize/memorize"
	"github.com/on-the-ground/memorize/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in   any
		want memorize.TTL
	}{
		{nil, memorize.Forever},
		{"infinite", memorize.Forever},
		{"", memorize.Forever},
		{math.Inf(1), memorize.Forever},
		{false, memorize.Deferred},
		{"false", memorize.Deferred},
		{"async", memorize.UntilSettled},
		{"Settled", memorize.UntilSettled},
		{0, memorize.After(0)},
		{250, memorize.After(250 * time.Millisecond)},
		{1.5, memorize.After(1500 * time.Microsecond)},
		{"250ms", memorize.After(250 * time.Millisecond)},
		{"2m", memorize.After(2 * time.Minute)},
		{"PT0.25S", memorize.After(250 * time.Millisecond)},
		{"pt1m", memorize.After(time.Minute)},
		{"100", memorize.After(100 * time.Millisecond)},
		{time.Second, memorize.After(time.Second)},
		{"P1W", memorize.After(7 * 24 * time.Hour)},
		{"P1DT12H", memorize.After(36 * time.Hour)},
		{1e13, memorize.Forever},
		{int64(9_300_000_000_000), memorize.Forever},
		{"1e13", memorize.Forever},
		{9_000_000_000_000, memorize.After(9_000_000_000_000 * time.Millisecond)},
		{memorize.UntilSettled, memorize.UntilSettled},
	}
	for _, tt := range tests {
		got, err := memorize.ParseTTL(tt.in)
		require.NoError(t, err, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestParseTTL_Invalid(t *testing.T) {
	for _, in := range []any{true, -1, -1e13, math.NaN(), "-5s", "soon", "P1M", "P1Y", "P1Y2DT3H", []int{1}, memorize.After(-time.Second)} {
		_, err := memorize.ParseTTL(in)
		assert.ErrorIs(t, err, memorize.ErrInvalidOption, "%v", in)
	}
}

func TestTTL_String(t *testing.T) {
	assert.Equal(t, "infinite", memorize.Forever.String())
	assert.Equal(t, "false", memorize.Deferred.String())
	assert.Equal(t, "async", memorize.UntilSettled.String())
	assert.Equal(t, "1.5s", memorize.After(1500*time.Millisecond).String())

	d, ok := memorize.After(time.Minute).Duration()
	assert.True(t, ok)
	assert.Equal(t, time.Minute, d)
	_, ok = memorize.Forever.Duration()
	assert.False(t, ok)
}

const sample = `
memorize:
  ttl: 100ms
  at_most_n_times: 2
  evict_on_failure: true
  name: lookup
schedule:
  buffer_size: 16
  num_workers: 3
  tick: 5ms
`

func TestLoadBindings(t *testing.T) {
	bindings, err := memorize.LoadBindings(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, "100ms", bindings[configkeys.ConfigMemorizeTTL])
	assert.Equal(t, 2, bindings[configkeys.ConfigMemorizeAtMostNTimes])
	assert.Equal(t, true, bindings[configkeys.ConfigMemorizeEvictOnFailure])
	assert.Equal(t, "lookup", bindings[configkeys.ConfigMemorizeName])
	assert.Equal(t, 16, bindings[configkeys.ConfigScheduleBufferSize])

	cfg, err := memorize.SchedulerConfigFrom(bindings)
	require.NoError(t, err)
	assert.Equal(t, schedule.Config{BufferSize: 16, NumWorkers: 3, Tick: 5 * time.Millisecond}, cfg)
}

func TestLoadBindings_Empty(t *testing.T) {
	bindings, err := memorize.LoadBindings(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, bindings)

	opts, err := memorize.OptionsFrom(bindings)
	require.NoError(t, err)
	assert.Empty(t, opts)

	cfg, err := memorize.SchedulerConfigFrom(bindings)
	require.NoError(t, err)
	assert.Equal(t, schedule.NewConfig(0, 0), cfg)
}

func TestLoadBindings_Malformed(t *testing.T) {
	_, err := memorize.LoadBindings(strings.NewReader("memorize: [unterminated"))
	assert.ErrorIs(t, err, memorize.ErrInvalidOption)
}

func TestSchedulerConfigFrom_RejectsBadTick(t *testing.T) {
	for _, tick := range []any{"soon", "-1ms", "0s", 5} {
		_, err := memorize.SchedulerConfigFrom(map[string]any{configkeys.ConfigScheduleTick: tick})
		assert.ErrorIs(t, err, memorize.ErrInvalidOption, "%v", tick)
	}
}

func TestOptionsFrom_DrivesTheWrapper(t *testing.T) {
	bindings, err := memorize.LoadBindings(strings.NewReader(sample))
	require.NoError(t, err)
	opts, err := memorize.OptionsFrom(bindings)
	require.NoError(t, err)

	sched := schedule.NewManual(epoch)
	var c counter
	get := memorize.FuncI0O1(func() int { return c.next() },
		append(opts, memorize.WithScheduler(sched))...)

	assert.Equal(t, []int{1, 1, 2}, []int{get(), get(), get()})
	sched.Advance(100 * time.Millisecond)
	assert.Equal(t, 3, get())
}

func TestOptionsFrom_ReportsEveryBadKey(t *testing.T) {
	_, err := memorize.OptionsFrom(map[string]any{
		configkeys.ConfigMemorizeTTL:            "whenever",
		configkeys.ConfigMemorizeAtMostNTimes:   "two",
		configkeys.ConfigMemorizeEvictOnFailure: "yes",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, memorize.ErrInvalidOption)
	assert.Contains(t, err.Error(), configkeys.ConfigMemorizeTTL)
	assert.Contains(t, err.Error(), configkeys.ConfigMemorizeAtMostNTimes)
	assert.Contains(t, err.Error(), configkeys.ConfigMemorizeEvictOnFailure)
}
