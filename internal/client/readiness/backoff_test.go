package readiness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelay_Doubling(t *testing.T) {
	backoff := NewBackoff(time.Second, 30*time.Second, 0)

	assert.Equal(t, 1*time.Second, backoff.Delay(0))
	assert.Equal(t, 2*time.Second, backoff.Delay(1))
	assert.Equal(t, 4*time.Second, backoff.Delay(2))
	assert.Equal(t, 8*time.Second, backoff.Delay(3))
	assert.Equal(t, 16*time.Second, backoff.Delay(4))
}

func TestBackoffDelay_CappedAtMax(t *testing.T) {
	backoff := NewBackoff(time.Second, 30*time.Second, 0)

	assert.Equal(t, 30*time.Second, backoff.Delay(5))  // 32s uncapped
	assert.Equal(t, 30*time.Second, backoff.Delay(10)) // way past the cap
}

func TestBackoffDelay_NonDecreasing(t *testing.T) {
	backoff := NewBackoff(250*time.Millisecond, 10*time.Second, 0)

	prev := time.Duration(0)
	for attempt := 0; attempt < 20; attempt++ {
		delay := backoff.Delay(attempt)
		assert.GreaterOrEqual(t, delay, prev, "attempt %d", attempt)
		prev = delay
	}
}

func TestBackoffDelay_OverflowGuard(t *testing.T) {
	backoff := NewBackoff(time.Second, 30*time.Second, 0)

	// Shifting a duration 80 times would overflow int64 without the guard
	assert.Equal(t, 30*time.Second, backoff.Delay(80))
}

func TestBackoffDelay_JitterBounds(t *testing.T) {
	backoff := NewBackoff(time.Second, 30*time.Second, 0.5)

	// Force the jitter to its extremes
	backoff.randFn = func() float64 { return 0 }
	assert.Equal(t, 2*time.Second, backoff.Delay(1))

	backoff.randFn = func() float64 { return 0.999999 }
	delay := backoff.Delay(1)
	assert.Greater(t, delay, 2*time.Second)
	assert.Less(t, delay, 3*time.Second)
}

func TestBackoffDelay_JitterSpread(t *testing.T) {
	backoff := NewBackoff(time.Second, 30*time.Second, 0.25)

	// Real random jitter stays within [delay, delay*(1+jitter))
	for i := 0; i < 100; i++ {
		delay := backoff.Delay(2)
		assert.GreaterOrEqual(t, delay, 4*time.Second)
		assert.Less(t, delay, 5*time.Second)
	}
}
