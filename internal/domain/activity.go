package domain

import "time"

type ActivityRecord struct {
	Window     WindowID
	LastSeenAt time.Time
}

func (r ActivityRecord) Idle(now time.Time) time.Duration {
	idle := now.Sub(r.LastSeenAt)
	if idle < 0 {
		return 0
	}
	return idle
}

// IsStale reports whether the record has been idle for strictly longer than
// timeout. A non-positive timeout never marks anything stale.
func (r ActivityRecord) IsStale(now time.Time, timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}

	return now.Sub(r.LastSeenAt) > timeout
}
