package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
	"github.com/stretchr/testify/assert"
)

func openWindows(n int, prefix string) domain.WindowSnapshot {
	snapshot := domain.WindowSnapshot{CapturedAt: epoch}
	for i := 1; i <= n; i++ {
		snapshot.Windows = append(snapshot.Windows, domain.Window{
			ID:                 domain.WindowID(fmt.Sprintf("%s%d", prefix, i)),
			HasBackingDocument: true,
		})
	}
	return snapshot
}

func windowIDs(windows []domain.Window) []domain.WindowID {
	ids := make([]domain.WindowID, 0, len(windows))
	for _, w := range windows {
		ids = append(ids, w.ID)
	}
	return ids
}

func TestStaleCandidatesOldestFirstWithExcess(t *testing.T) {
	t.Parallel()

	snapshot := openWindows(10, "w")
	store := NewActivityStore()
	store.Touch("w1", epoch.Add(-3*time.Hour))
	store.Touch("w2", epoch.Add(-2*time.Hour))
	store.Touch("w3", epoch.Add(-90*time.Minute))
	for i := 4; i <= 10; i++ {
		store.Touch(domain.WindowID(fmt.Sprintf("w%d", i)), epoch)
	}
	settings := domain.Settings{TabTimeoutMinutes: 60, TabCloseThreshold: 8}

	excess, candidates := EvictionPolicy{}.StaleCandidates(snapshot, store.Snapshot(), settings, epoch)

	assert.Equal(t, 2, excess)
	assert.Equal(t, []domain.WindowID{"w1", "w2", "w3"}, windowIDs(candidates))
}

func TestStaleCandidatesAtOrBelowThreshold(t *testing.T) {
	t.Parallel()

	snapshot := openWindows(8, "w")
	records := []domain.ActivityRecord{{Window: "w1", LastSeenAt: epoch.Add(-48 * time.Hour)}}
	settings := domain.Settings{TabTimeoutMinutes: 60, TabCloseThreshold: 8}

	excess, candidates := EvictionPolicy{}.StaleCandidates(snapshot, records, settings, epoch)

	assert.Zero(t, excess)
	assert.Empty(t, candidates)
}

func TestStaleCandidatesTimeoutBoundaryIsExclusive(t *testing.T) {
	t.Parallel()

	snapshot := openWindows(3, "w")
	records := []domain.ActivityRecord{
		{Window: "w1", LastSeenAt: epoch.Add(-61 * time.Minute)},
		{Window: "w2", LastSeenAt: epoch.Add(-60 * time.Minute)},
	}
	settings := domain.Settings{TabTimeoutMinutes: 60, TabCloseThreshold: 0}

	_, candidates := EvictionPolicy{}.StaleCandidates(snapshot, records, settings, epoch)

	assert.Equal(t, []domain.WindowID{"w1"}, windowIDs(candidates))
}

func TestStaleCandidatesSkipsRecordsForClosedWindows(t *testing.T) {
	t.Parallel()

	snapshot := openWindows(2, "w")
	records := []domain.ActivityRecord{
		{Window: "gone", LastSeenAt: epoch.Add(-48 * time.Hour)},
		{Window: "w2", LastSeenAt: epoch.Add(-47 * time.Hour)},
	}
	settings := domain.Settings{TabTimeoutMinutes: 60}

	_, candidates := EvictionPolicy{}.StaleCandidates(snapshot, records, settings, epoch)

	assert.Equal(t, []domain.WindowID{"w2"}, windowIDs(candidates))
}

func TestCapCandidates(t *testing.T) {
	t.Parallel()

	snapshot := openWindows(7, "a")
	records := make([]domain.ActivityRecord, 0, 7)
	for i := 1; i <= 7; i++ {
		records = append(records, domain.ActivityRecord{
			Window:     domain.WindowID(fmt.Sprintf("a%d", i)),
			LastSeenAt: epoch.Add(time.Duration(i) * time.Minute),
		})
	}

	tests := []struct {
		name       string
		max        int
		pinned     []domain.WindowID
		wantExcess int
		wantLen    int
	}{
		{name: "cap disabled", max: 0},
		{name: "under cap", max: 7},
		{name: "two over", max: 5, wantExcess: 2, wantLen: 7},
		{name: "pinned windows do not count", max: 5, pinned: []domain.WindowID{"a6", "a7"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			snap := domain.WindowSnapshot{CapturedAt: snapshot.CapturedAt}
			for _, w := range snapshot.Windows {
				for _, id := range tc.pinned {
					if w.ID == id {
						w.IsPinned = true
					}
				}
				snap.Windows = append(snap.Windows, w)
			}

			excess, candidates := EvictionPolicy{}.CapCandidates(snap, records, domain.Settings{TabTimeoutMinutes: 60, MaxOpenTabs: tc.max})

			assert.Equal(t, tc.wantExcess, excess)
			assert.Len(t, candidates, tc.wantLen)
			if tc.wantLen > 0 {
				assert.Equal(t, domain.WindowID("a1"), candidates[0].ID)
			}
		})
	}
}

func TestWalkCandidatesStopsAtLimit(t *testing.T) {
	t.Parallel()

	candidates := openWindows(5, "w").Windows
	var attempted []domain.WindowID
	closed := walkCandidates(context.Background(), 2, candidates, func(_ context.Context, w domain.Window) bool {
		attempted = append(attempted, w.ID)
		return w.ID != "w1"
	})

	assert.Equal(t, []domain.WindowID{"w2", "w3"}, closed)
	assert.Equal(t, []domain.WindowID{"w1", "w2", "w3"}, attempted)
}

func TestWalkCandidatesStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	closed := walkCandidates(ctx, 3, openWindows(3, "w").Windows, func(context.Context, domain.Window) bool {
		t.Fatal("attempt called after cancel")
		return true
	})
	assert.Empty(t, closed)
}

func TestWalkCandidatesNonPositiveLimit(t *testing.T) {
	t.Parallel()

	assert.Nil(t, walkCandidates(context.Background(), 0, openWindows(1, "w").Windows, nil))
}
