package application

import (
	"sort"
	"sync"
	"time"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
)

// ActivityStore maps each tracked window to the last time it saw activity.
// It is safe for concurrent use; every method holds the lock only for the
// duration of a map operation or a copy.
type ActivityStore struct {
	mu      sync.RWMutex
	records map[domain.WindowID]time.Time
}

func NewActivityStore() *ActivityStore {
	return &ActivityStore{records: map[domain.WindowID]time.Time{}}
}

// Touch records activity at the given time. A record never moves backwards:
// handlers may capture their timestamps in one order and land in another.
func (s *ActivityStore) Touch(id domain.WindowID, at time.Time) {
	if id == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.records[id]; ok && !at.After(current) {
		return
	}
	s.records[id] = at
}

// Seed records at only when id is not tracked yet. It reports whether a
// record was created.
func (s *ActivityStore) Seed(id domain.WindowID, at time.Time) bool {
	if id == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; ok {
		return false
	}
	s.records[id] = at
	return true
}

func (s *ActivityStore) Remove(id domain.WindowID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
}

func (s *ActivityStore) Get(id domain.WindowID) (domain.ActivityRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	at, ok := s.records[id]
	if !ok {
		return domain.ActivityRecord{}, false
	}
	return domain.ActivityRecord{Window: id, LastSeenAt: at}, true
}

func (s *ActivityStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Snapshot copies every record, oldest activity first. Ties are broken by
// window ID so the order is deterministic.
func (s *ActivityStore) Snapshot() []domain.ActivityRecord {
	s.mu.RLock()
	records := make([]domain.ActivityRecord, 0, len(s.records))
	for id, at := range s.records {
		records = append(records, domain.ActivityRecord{Window: id, LastSeenAt: at})
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].LastSeenAt.Equal(records[j].LastSeenAt) {
			return records[i].Window < records[j].Window
		}
		return records[i].LastSeenAt.Before(records[j].LastSeenAt)
	})

	return records
}

// Shift moves every record forward by d in one step.
func (s *ActivityStore) Shift(d time.Duration) {
	if d == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, at := range s.records {
		s.records[id] = at.Add(d)
	}
}

// Prune drops every record for which keep returns false and returns how many
// were dropped.
func (s *ActivityStore) Prune(keep func(domain.ActivityRecord) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id, at := range s.records {
		if keep(domain.ActivityRecord{Window: id, LastSeenAt: at}) {
			continue
		}
		delete(s.records, id)
		pruned++
	}
	return pruned
}
