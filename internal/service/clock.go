package service

import "time"

// Clock returns the current instant. Services take one so "today" can be pinned in tests.
type Clock func() time.Time

// SystemClock reads the wall clock
func SystemClock() time.Time {
	return time.Now()
}
