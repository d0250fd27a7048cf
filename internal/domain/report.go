package domain

import "time"

type CloseFailure struct {
	Window WindowID
	Err    error
}

// EvictionReport records what a single evaluation pass did.
type EvictionReport struct {
	PassID    string
	Reason    string
	StartedAt time.Time
	Duration  time.Duration

	StaleExcess int
	StaleClosed []WindowID
	CapExcess   int
	CapClosed   []WindowID

	// Skipped holds candidates the close guard refused.
	Skipped  []WindowID
	Failures []CloseFailure
	Pruned   int
}

func (r EvictionReport) Closed() []WindowID {
	closed := make([]WindowID, 0, len(r.StaleClosed)+len(r.CapClosed))
	closed = append(closed, r.StaleClosed...)
	closed = append(closed, r.CapClosed...)
	return closed
}

// EvictionPlan is what a pass would close if every close succeeded.
type EvictionPlan struct {
	Stale []WindowID
	Cap   []WindowID
}

func (p EvictionPlan) Len() int {
	return len(p.Stale) + len(p.Cap)
}
