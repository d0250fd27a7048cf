package domain

import "time"

// WindowID is the host-assigned identity of an open document window. It is
// stable for the window's lifetime and says nothing about the content shown.
type WindowID string

type Window struct {
	ID      WindowID
	Path    string
	Caption string

	IsActive           bool
	IsPinned           bool
	HasUnsavedChanges  bool
	HasBackingDocument bool
}

// WindowSnapshot is a point-in-time view of the host's open windows.
type WindowSnapshot struct {
	Windows    []Window
	CapturedAt time.Time
}

func (s WindowSnapshot) Lookup(id WindowID) (Window, bool) {
	for _, w := range s.Windows {
		if w.ID == id {
			return w, true
		}
	}
	return Window{}, false
}

func (s WindowSnapshot) Contains(id WindowID) bool {
	_, ok := s.Lookup(id)
	return ok
}

func (s WindowSnapshot) Count() int {
	return len(s.Windows)
}

func (s WindowSnapshot) UnpinnedCount() int {
	count := 0
	for _, w := range s.Windows {
		if !w.IsPinned {
			count++
		}
	}
	return count
}

// Active returns the window currently receiving input, if the host reports one.
func (s WindowSnapshot) Active() (Window, bool) {
	for _, w := range s.Windows {
		if w.IsActive {
			return w, true
		}
	}
	return Window{}, false
}

// Without returns a copy of the snapshot with id removed.
func (s WindowSnapshot) Without(id WindowID) WindowSnapshot {
	windows := make([]Window, 0, len(s.Windows))
	for _, w := range s.Windows {
		if w.ID == id {
			continue
		}
		windows = append(windows, w)
	}
	return WindowSnapshot{Windows: windows, CapturedAt: s.CapturedAt}
}
