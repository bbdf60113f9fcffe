package infra

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Backoff produces jittered exponential delays for reconnection probing.
// Jitter keeps a fleet of devices from thundering back onto a recovering
// backend in lockstep.
type Backoff struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	multiplier float64

	mu      sync.Mutex
	current time.Duration
}

func NewBackoff(min, max time.Duration, mult float64) *Backoff {
	return &Backoff{
		minDelay:   min,
		maxDelay:   max,
		multiplier: mult,
		current:    min,
	}
}

// Next returns the delay to wait before the next attempt and advances the
// internal state toward maxDelay.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	jitterFactor := rand.Float64()*0.4 - 0.2
	jitter := time.Duration(jitterFactor * float64(b.current))
	wait := max(b.current+jitter, b.minDelay)

	b.current = min(time.Duration(float64(b.current)*b.multiplier), b.maxDelay)

	return wait
}

// Reset returns the sequence to its minimum delay after a success.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.minDelay
}
