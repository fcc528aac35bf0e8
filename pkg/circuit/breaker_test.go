package circuit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream down")

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(Config{MaxFailures: 3, Timeout: time.Minute})
	fail := func() error { return errUpstream }

	for i := 0; i < 3; i++ {
		assert.Equal(t, StateClosed, b.State())
		err := b.Execute(fail)
		assert.ErrorIs(t, err, errUpstream)
	}
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called, "open breaker must not invoke the protected function")
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	b := NewBreaker(Config{MaxFailures: 2, Timeout: time.Minute})

	require.Error(t, b.Execute(func() error { return errUpstream }))
	require.NoError(t, b.Execute(func() error { return nil }))
	require.Error(t, b.Execute(func() error { return errUpstream }))
	assert.Equal(t, StateClosed, b.State(), "non-consecutive failures must not open the circuit")
}

func TestBreakerHalfOpenProbeCloses(t *testing.T) {
	b := NewBreaker(Config{MaxFailures: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, b.Execute(func() error { return errUpstream }))
	require.Equal(t, StateOpen, b.State())

	time.Sleep(15 * time.Millisecond)

	err := b.Execute(func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenProbeReopens(t *testing.T) {
	b := NewBreaker(Config{MaxFailures: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, b.Execute(func() error { return errUpstream }))
	require.Equal(t, StateOpen, b.State())

	time.Sleep(15 * time.Millisecond)

	err := b.Execute(func() error { return errUpstream })
	require.ErrorIs(t, err, errUpstream)
	assert.Equal(t, StateOpen, b.State(), "a failed probe re-opens the circuit")

	err = b.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrOpen)
}

func TestBreakerDefaults(t *testing.T) {
	b := NewBreaker(Config{})
	assert.Equal(t, 5, b.maxFailures)
	assert.Equal(t, 30*time.Second, b.timeout)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}
