package application

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestActivityStoreTouchOverwritesAndSeedDoesNot(t *testing.T) {
	t.Parallel()

	store := NewActivityStore()
	store.Touch("a", epoch)
	store.Touch("a", epoch.Add(time.Minute))

	assert.False(t, store.Seed("a", epoch.Add(-time.Hour)))
	assert.True(t, store.Seed("b", epoch))

	record, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, epoch.Add(time.Minute), record.LastSeenAt)
	assert.Equal(t, 2, store.Len())
}

func TestActivityStoreTouchNeverMovesBackwards(t *testing.T) {
	t.Parallel()

	store := NewActivityStore()
	store.Touch("a", epoch.Add(time.Minute))
	store.Touch("a", epoch)

	record, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, epoch.Add(time.Minute), record.LastSeenAt)

	store.Shift(time.Hour)
	store.Touch("a", epoch.Add(30*time.Minute))
	record, _ = store.Get("a")
	assert.Equal(t, epoch.Add(time.Hour+time.Minute), record.LastSeenAt)
}

func TestActivityStoreIgnoresEmptyID(t *testing.T) {
	t.Parallel()

	store := NewActivityStore()
	store.Touch("", epoch)
	assert.False(t, store.Seed("", epoch))
	assert.Zero(t, store.Len())
}

func TestActivityStoreSnapshotOrdersOldestFirst(t *testing.T) {
	t.Parallel()

	store := NewActivityStore()
	store.Touch("c", epoch.Add(2*time.Minute))
	store.Touch("b", epoch)
	store.Touch("a", epoch)
	store.Touch("d", epoch.Add(time.Minute))

	var got []domain.WindowID
	for _, record := range store.Snapshot() {
		got = append(got, record.Window)
	}
	assert.Equal(t, []domain.WindowID{"a", "b", "d", "c"}, got)
}

func TestActivityStoreSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	store := NewActivityStore()
	store.Touch("a", epoch)
	snapshot := store.Snapshot()

	store.Remove("a")
	store.Touch("b", epoch)

	require.Len(t, snapshot, 1)
	assert.Equal(t, domain.WindowID("a"), snapshot[0].Window)
}

func TestActivityStoreShiftMovesEveryRecord(t *testing.T) {
	t.Parallel()

	store := NewActivityStore()
	store.Touch("a", epoch)
	store.Touch("b", epoch.Add(time.Minute))

	store.Shift(30 * time.Minute)

	a, _ := store.Get("a")
	b, _ := store.Get("b")
	assert.Equal(t, epoch.Add(30*time.Minute), a.LastSeenAt)
	assert.Equal(t, epoch.Add(31*time.Minute), b.LastSeenAt)
}

func TestActivityStorePruneReportsDropped(t *testing.T) {
	t.Parallel()

	store := NewActivityStore()
	store.Touch("keep", epoch)
	store.Touch("drop-1", epoch)
	store.Touch("drop-2", epoch)

	pruned := store.Prune(func(record domain.ActivityRecord) bool {
		return record.Window == "keep"
	})

	assert.Equal(t, 2, pruned)
	_, ok := store.Get("keep")
	assert.True(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestActivityStoreConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := NewActivityStore()
	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := domain.WindowID(fmt.Sprintf("w%d-%d", worker, i%10))
				store.Touch(id, epoch.Add(time.Duration(i)*time.Second))
				_ = store.Snapshot()
				store.Shift(time.Millisecond)
				if i%7 == 0 {
					store.Remove(id)
				}
			}
		}(worker)
	}
	wg.Wait()

	assert.LessOrEqual(t, store.Len(), 80)
}
