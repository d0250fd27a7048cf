package application

import (
	"context"
	"time"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
)

// EvictionPolicy selects close candidates. It holds no state and never
// touches the host; the orchestrator feeds the candidates to a CloseGuard.
type EvictionPolicy struct{}

// StaleCandidates returns how many windows the open count exceeds the close
// threshold by, and the tracked windows idle past the timeout that are still
// open, oldest activity first. records must already be sorted oldest first.
func (EvictionPolicy) StaleCandidates(snapshot domain.WindowSnapshot, records []domain.ActivityRecord, settings domain.Settings, now time.Time) (int, []domain.Window) {
	excess := snapshot.Count() - settings.TabCloseThreshold
	if excess <= 0 {
		return 0, nil
	}

	timeout := settings.TabTimeout()
	candidates := make([]domain.Window, 0, len(records))
	for _, record := range records {
		if !record.IsStale(now, timeout) {
			continue
		}
		window, ok := snapshot.Lookup(record.Window)
		if !ok {
			continue
		}
		candidates = append(candidates, window)
	}

	return excess, candidates
}

// CapCandidates returns how many unpinned windows exceed MaxOpenTabs and every
// tracked open window, oldest activity first, regardless of the timeout.
func (EvictionPolicy) CapCandidates(snapshot domain.WindowSnapshot, records []domain.ActivityRecord, settings domain.Settings) (int, []domain.Window) {
	if !settings.CapEnabled() {
		return 0, nil
	}

	toClose := snapshot.UnpinnedCount() - settings.MaxOpenTabs
	if toClose <= 0 {
		return 0, nil
	}

	candidates := make([]domain.Window, 0, len(records))
	for _, record := range records {
		window, ok := snapshot.Lookup(record.Window)
		if !ok {
			continue
		}
		candidates = append(candidates, window)
	}

	return toClose, candidates
}

// walkCandidates attempts candidates in order until limit attempts succeed or
// the list runs out, and returns the windows that were closed.
func walkCandidates(ctx context.Context, limit int, candidates []domain.Window, attempt func(ctx context.Context, window domain.Window) bool) []domain.WindowID {
	if limit <= 0 {
		return nil
	}

	closed := make([]domain.WindowID, 0, limit)
	for _, window := range candidates {
		if len(closed) >= limit {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if attempt(ctx, window) {
			closed = append(closed, window.ID)
		}
	}

	return closed
}
