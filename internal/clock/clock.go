// Package clock wraps the wall clock so search timings can be pinned in tests.
package clock

import "time"

var nowFunc = time.Now

// Now returns the current time from the configured clock function.
func Now() time.Time {
	return nowFunc()
}

// Since returns the time elapsed from start according to the configured clock.
func Since(start time.Time) time.Duration {
	return nowFunc().Sub(start)
}

// SetNowForTest overrides the clock source and returns a restore function.
func SetNowForTest(fn func() time.Time) func() {
	previous := nowFunc
	nowFunc = fn
	return func() {
		nowFunc = previous
	}
}
