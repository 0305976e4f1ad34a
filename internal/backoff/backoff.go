// Package backoff computes the pause between two attempts: the first pause
// is the floor, every following one doubles up to the ceiling, and a jitter
// of up to 5% is added on top.
package backoff

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Unset marks that no pause has happened yet in the current cycle.
const Unset time.Duration = -1

// MaxJitter is the largest fraction added on top of a delay.
const MaxJitter = 0.05

// Next returns the delay that follows prev. jitter is a fraction in
// [0, MaxJitter]; out-of-range values are clamped.
func Next(prev, minDelay, maxDelay time.Duration, jitter float64) time.Duration {
	var d time.Duration
	if prev == Unset {
		d = minDelay
	} else {
		d = double(prev, maxDelay)
	}

	jitter = math.Max(0, math.Min(jitter, MaxJitter))
	return d + time.Duration(float64(d)*jitter)
}

// double returns min(prev*2, ceiling) without overflowing.
func double(prev, ceiling time.Duration) time.Duration {
	if prev > ceiling/2 {
		return ceiling
	}
	return prev * 2
}

// Calculator draws jitter from its own random source.
type Calculator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewCalculator creates a calculator seeded with seed.
func NewCalculator(seed int64) *Calculator {
	return &Calculator{rnd: rand.New(rand.NewSource(seed))}
}

// Next returns the delay following prev with a random jitter.
func (c *Calculator) Next(prev, minDelay, maxDelay time.Duration) time.Duration {
	c.mu.Lock()
	jitter := c.rnd.Float64() * MaxJitter
	c.mu.Unlock()
	return Next(prev, minDelay, maxDelay, jitter)
}
