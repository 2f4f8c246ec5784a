package readiness

import (
	"math/rand"
	"time"
)

// Backoff computes the delay before the next sync attempt: capped
// exponential growth plus a bounded random jitter so that many clients
// recovering from the same outage do not retry in lockstep. There is no
// attempt cap; once the exponent saturates, retries continue at max
// cadence indefinitely.
type Backoff struct {
	base   time.Duration
	max    time.Duration
	jitter float64        // jitter bound as a fraction of the computed delay
	randFn func() float64 // uniform [0,1), replaceable in tests
}

// NewBackoff creates a backoff schedule with the given base and maximum
// delay and a jitter fraction in [0,1).
func NewBackoff(base, max time.Duration, jitter float64) *Backoff {
	return &Backoff{
		base:   base,
		max:    max,
		jitter: jitter,
		randFn: rand.Float64,
	}
}

// Delay returns the delay before attempt n (0-based):
// min(max, base*2^n) plus jitter in [0, jitter*delay).
func (b *Backoff) Delay(attempt int) time.Duration {
	delay := b.base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= b.max || delay <= 0 { // <= 0 guards against overflow
			delay = b.max
			break
		}
	}
	if delay > b.max {
		delay = b.max
	}

	if b.jitter > 0 {
		delay += time.Duration(b.randFn() * b.jitter * float64(delay))
	}

	return delay
}
