package utils

import "time"

// Clock returns the current time. Modules take one so tests can pin timestamps.
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

// EpochMillis converts t to epoch milliseconds, the unit of every stored timestamp.
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// NowMillis returns the clock's current time in epoch milliseconds
func (c Clock) NowMillis() int64 {
	if c == nil {
		return EpochMillis(time.Now())
	}
	return EpochMillis(c())
}
