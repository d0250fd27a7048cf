package ports

import "time"

type Timer interface {
	Stop() bool
}

type Clock interface {
	Now() time.Time
	// AfterFunc arranges for f to be called once d has elapsed. f may run on
	// any goroutine and must not block.
	AfterFunc(d time.Duration, f func()) Timer
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
