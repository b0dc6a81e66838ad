package retry

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagetree/internal/config"
	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
)

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name string
		in   config.RetryConfig
		want Policy
	}{
		{
			name: "empty section keeps defaults",
			in:   config.RetryConfig{MaxRetries: -1},
			want: DefaultPolicy(),
		},
		{
			name: "explicit linear",
			in:   config.RetryConfig{Backoff: config.RetryBackoffLinear, InitialDelay: "10ms", MaxDelay: "1s", MaxRetries: 4},
			want: Policy{Backoff: config.RetryBackoffLinear, BaseDelay: 10 * time.Millisecond, MaxDelay: time.Second, Retries: 4},
		},
		{
			name: "base delay clamped to cap",
			in:   config.RetryConfig{Backoff: "constant", InitialDelay: "5s", MaxDelay: "2s", MaxRetries: 5},
			want: Policy{Backoff: config.RetryBackoffFixed, BaseDelay: 2 * time.Second, MaxDelay: 2 * time.Second, Retries: 5},
		},
		{
			name: "garbage delays ignored",
			in:   config.RetryConfig{Backoff: "sideways", InitialDelay: "soon", MaxDelay: "-1s", MaxRetries: 0},
			want: Policy{Backoff: config.RetryBackoffExponential, BaseDelay: defaultBaseDelay, MaxDelay: defaultMaxDelay, Retries: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromConfig(tt.in))
		})
	}
}

func TestDelay(t *testing.T) {
	ms := time.Millisecond
	fixed := Policy{Backoff: config.RetryBackoffFixed, BaseDelay: 100 * ms, MaxDelay: 500 * ms}
	linear := Policy{Backoff: config.RetryBackoffLinear, BaseDelay: 100 * ms, MaxDelay: 250 * ms}
	exp := Policy{Backoff: config.RetryBackoffExponential, BaseDelay: 50 * ms, MaxDelay: 160 * ms}

	assert.Equal(t, []time.Duration{100 * ms, 100 * ms, 100 * ms}, delays(fixed, 3))
	assert.Equal(t, []time.Duration{100 * ms, 200 * ms, 250 * ms, 250 * ms}, delays(linear, 4))
	assert.Equal(t, []time.Duration{50 * ms, 100 * ms, 160 * ms}, delays(exp, 3))
	assert.Equal(t, 160*ms, exp.Delay(64))
	assert.Zero(t, exp.Delay(0))
	assert.Zero(t, linear.Delay(-2))
}

func delays(p Policy, n int) []time.Duration {
	out := make([]time.Duration, n)
	for i := range out {
		out[i] = p.Delay(i + 1)
	}
	return out
}

var errConflict = errors.ConcurrencyError("conflict").Build()

func fastPolicy(retries int) Policy {
	return Policy{Backoff: config.RetryBackoffFixed, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Retries: retries}
}

func TestDoRetriesConflicts(t *testing.T) {
	calls := 0
	var seen []int
	err := Do(t.Context(), fastPolicy(3), func(context.Context) error {
		calls++
		if calls < 3 {
			return errConflict
		}
		return nil
	}, func(n int, err error) {
		seen = append(seen, n)
		assert.ErrorIs(t, err, errConflict)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestDoGivesUp(t *testing.T) {
	calls := 0
	err := Do(t.Context(), fastPolicy(2), func(context.Context) error {
		calls++
		return errConflict
	}, nil)
	require.ErrorIs(t, err, errConflict)
	assert.Equal(t, 3, calls)
}

func TestDoLeavesPermanentErrors(t *testing.T) {
	calls := 0
	boom := stderrors.New("boom")
	err := Do(t.Context(), DefaultPolicy(), func(context.Context) error {
		calls++
		return boom
	}, nil)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)

	calls = 0
	err = Do(t.Context(), Policy{}, func(context.Context) error {
		calls++
		return errConflict
	}, nil)
	require.ErrorIs(t, err, errConflict)
	assert.Equal(t, 1, calls, "zero policy never retries")
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	p := Policy{Backoff: config.RetryBackoffFixed, BaseDelay: time.Hour, MaxDelay: time.Hour, Retries: 5}
	err := Do(ctx, p, func(context.Context) error { return errConflict }, func(int, error) { cancel() })
	require.ErrorIs(t, err, context.Canceled)
}
