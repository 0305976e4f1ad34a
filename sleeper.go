package resilient

import "time"

// Sleeper blocks the calling goroutine between attempts.
type Sleeper interface {
	Sleep(d time.Duration)
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(d time.Duration)

func (f SleeperFunc) Sleep(d time.Duration) { f(d) }

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }
