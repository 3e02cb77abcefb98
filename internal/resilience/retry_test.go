package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quick is a config that keeps test sleeps negligible.
func quick(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDo_FirstAttemptSucceeds(t *testing.T) {
	var calls int
	err := Do(context.Background(), DefaultRetryConfig(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RecoversFromTransientFailure(t *testing.T) {
	var calls int
	err := Do(context.Background(), quick(3), func(context.Context) error {
		calls++
		if calls < 3 {
			return NewTransientError(errors.New("besttime: /forecasts returned status 503"), 503)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int
	err := Do(context.Background(), quick(3), func(context.Context) error {
		calls++
		return NewTransientError(errors.New("still down"), 500)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentErrorNotRetried(t *testing.T) {
	var calls int
	err := Do(context.Background(), quick(3), func(context.Context) error {
		calls++
		return errors.New("places: geocode status REQUEST_DENIED")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "non-transient errors should fail immediately")
}

func TestDo_CancelStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	err := Do(ctx, RetryConfig{MaxAttempts: 5, InitialBackoff: 50 * time.Millisecond}, func(context.Context) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return NewTransientError(errors.New("fail"), 502)
	})
	require.Error(t, err)
	assert.LessOrEqual(t, calls, 3)
}

func TestDo_CustomShouldRetry(t *testing.T) {
	cfg := quick(3)
	cfg.ShouldRetry = func(err error) bool { return err.Error() == "retry me" }

	var calls int
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("retry me")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_OnRetryHook(t *testing.T) {
	cfg := quick(3)
	var attempts []int
	cfg.OnRetry = func(attempt int, _ error) { attempts = append(attempts, attempt) }

	_ = Do(context.Background(), cfg, func(context.Context) error {
		return NewTransientError(errors.New("fail"), 500)
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDoVal_ReturnsSuccessfulValue(t *testing.T) {
	var calls int
	val, err := DoVal(context.Background(), quick(3), func(context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", NewTransientError(errors.New("fail"), 500)
		}
		return "forecast", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "forecast", val)
}

func TestDoVal_ZeroValueOnFailure(t *testing.T) {
	val, err := DoVal(context.Background(), quick(2), func(context.Context) (int, error) {
		return 42, NewTransientError(errors.New("fail"), 500)
	})
	require.Error(t, err)
	assert.Zero(t, val)
}

func TestDo_ZeroConfigGetsDefaults(t *testing.T) {
	var calls int
	err := Do(context.Background(), RetryConfig{}, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestFromRetryConfig(t *testing.T) {
	cfg := FromRetryConfig(5, 250, 2000, 3.0, 0.1)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.InitialBackoff)
	assert.Equal(t, 2*time.Second, cfg.MaxBackoff)
	assert.Equal(t, 3.0, cfg.Multiplier)
	assert.Equal(t, 0.1, cfg.JitterFraction)

	// Zeros keep the defaults.
	def := DefaultRetryConfig()
	cfg = FromRetryConfig(0, 0, 0, 0, 0)
	assert.Equal(t, def.MaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, def.InitialBackoff, cfg.InitialBackoff)
	assert.Equal(t, def.MaxBackoff, cfg.MaxBackoff)
}

func TestBackoffDelay_Growth(t *testing.T) {
	cfg := withDefaults(RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
	})
	cfg.JitterFraction = 0

	want := []time.Duration{100, 200, 400, 800}
	for attempt, ms := range want {
		assert.Equal(t, ms*time.Millisecond, backoffDelay(attempt, cfg), "attempt %d", attempt)
	}
}

func TestBackoffDelay_Cap(t *testing.T) {
	cfg := withDefaults(RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     5 * time.Second,
		Multiplier:     10.0,
	})
	cfg.JitterFraction = 0

	assert.Equal(t, 5*time.Second, backoffDelay(5, cfg))
}

func TestBackoffDelay_Jitter(t *testing.T) {
	cfg := withDefaults(RetryConfig{
		InitialBackoff: time.Second,
		JitterFraction: 0.5,
	})

	seen := make(map[time.Duration]bool)
	for i := 0; i < 100; i++ {
		d := backoffDelay(0, cfg)
		seen[d] = true
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
	assert.Greater(t, len(seen), 1, "jitter should vary the delay")
}

func TestRetryLogger(t *testing.T) {
	// Must not panic with the global logger.
	RetryLogger("places", "nearby_search")(1, errors.New("test error"))
}
