// Package memory is an in-process window host. It keeps an ordered set of
// document windows and raises the same notifications a real editor would when
// they are activated, saved, edited or closed.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/ports"
)

var ErrDuplicateWindow = errors.New("window already open")

type Host struct {
	clock ports.Clock

	mu          sync.Mutex
	windows     []domain.Window
	active      domain.WindowID
	rejections  map[domain.WindowID]error
	settings    domain.Settings
	foreground  bool
	handlers    map[int]ports.EventHandler
	nextHandler int
	closed      []domain.WindowID
}

var (
	_ ports.WindowHost     = (*Host)(nil)
	_ ports.EventSource    = (*Host)(nil)
	_ ports.SettingsSource = (*Host)(nil)
)

func NewHost(clock ports.Clock, settings domain.Settings) *Host {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Host{
		clock:      clock,
		settings:   settings,
		foreground: true,
		rejections: map[domain.WindowID]error{},
		handlers:   map[int]ports.EventHandler{},
	}
}

func (h *Host) Windows(ctx context.Context) (domain.WindowSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.WindowSnapshot{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	windows := make([]domain.Window, 0, len(h.windows))
	for _, w := range h.windows {
		w.IsActive = w.ID == h.active
		windows = append(windows, w)
	}

	return domain.WindowSnapshot{Windows: windows, CapturedAt: h.clock.Now()}, nil
}

func (h *Host) CloseWindow(ctx context.Context, id domain.WindowID, opts ports.CloseOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	index := h.indexLocked(id)
	if index < 0 {
		h.mu.Unlock()
		return fmt.Errorf("close %s: %w", id, domain.ErrWindowNotFound)
	}
	if err := h.rejections[id]; err != nil {
		h.mu.Unlock()
		return fmt.Errorf("close %s: %w", id, err)
	}
	if h.windows[index].HasUnsavedChanges && !opts.DiscardChanges {
		h.mu.Unlock()
		return fmt.Errorf("close %s: %w", id, domain.ErrUnsavedChanges)
	}
	h.mu.Unlock()

	h.emit(domain.Event{Kind: domain.EventDocumentClosing, Window: id})
	h.remove(id, true)
	return nil
}

func (h *Host) Subscribe(handler ports.EventHandler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := h.nextHandler
	h.nextHandler++
	h.handlers[key] = handler

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.handlers, key)
	}
}

func (h *Host) Settings(ctx context.Context) (domain.Settings, error) {
	if err := ctx.Err(); err != nil {
		return domain.Settings{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.settings, nil
}

func (h *Host) Configure(settings domain.Settings) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.settings = settings
}

// Open adds a window without focusing it.
func (h *Host) Open(window domain.Window) error {
	if window.ID == "" {
		return errors.New("window id is required")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.indexLocked(window.ID) >= 0 {
		return fmt.Errorf("open %s: %w", window.ID, ErrDuplicateWindow)
	}
	window.IsActive = false
	h.windows = append(h.windows, window)
	return nil
}

// Activate focuses a window and reports the window that lost focus.
func (h *Host) Activate(id domain.WindowID) error {
	h.mu.Lock()
	if h.indexLocked(id) < 0 {
		h.mu.Unlock()
		return fmt.Errorf("activate %s: %w", id, domain.ErrWindowNotFound)
	}
	previous := h.active
	h.active = id
	h.mu.Unlock()

	if previous == id {
		previous = ""
	}
	h.emit(domain.Event{Kind: domain.EventWindowActivated, Window: id, Previous: previous})
	return nil
}

func (h *Host) Save(id domain.WindowID) error {
	if err := h.update(id, func(w *domain.Window) { w.HasUnsavedChanges = false }); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}

	h.emit(domain.Event{Kind: domain.EventDocumentSaved, Window: id})
	return nil
}

// Edit marks the window dirty and reports text activity in it.
func (h *Host) Edit(id domain.WindowID) error {
	if err := h.update(id, func(w *domain.Window) { w.HasUnsavedChanges = true }); err != nil {
		return fmt.Errorf("edit %s: %w", id, err)
	}

	h.emit(domain.Event{Kind: domain.EventTextActivity, Window: id})
	return nil
}

// Type reports text activity without changing the document, like moving the
// caret.
func (h *Host) Type(id domain.WindowID) error {
	if err := h.update(id, func(*domain.Window) {}); err != nil {
		return fmt.Errorf("type in %s: %w", id, err)
	}

	h.emit(domain.Event{Kind: domain.EventTextActivity, Window: id})
	return nil
}

func (h *Host) SetPinned(id domain.WindowID, pinned bool) error {
	if err := h.update(id, func(w *domain.Window) { w.IsPinned = pinned }); err != nil {
		return fmt.Errorf("pin %s: %w", id, err)
	}
	return nil
}

// CloseByUser closes a window the way a user clicking its close button would.
func (h *Host) CloseByUser(id domain.WindowID) error {
	h.mu.Lock()
	found := h.indexLocked(id) >= 0
	h.mu.Unlock()
	if !found {
		return fmt.Errorf("close %s: %w", id, domain.ErrWindowNotFound)
	}

	h.emit(domain.Event{Kind: domain.EventDocumentClosing, Window: id})
	h.remove(id, false)
	return nil
}

// RejectClose makes every close request for id fail with err until
// AcceptClose is called. A nil err rejects with domain.ErrCloseRejected.
func (h *Host) RejectClose(id domain.WindowID, err error) {
	if err == nil {
		err = domain.ErrCloseRejected
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.rejections[id] = err
}

func (h *Host) AcceptClose(id domain.WindowID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.rejections, id)
}

// SetForeground moves the whole application in or out of the foreground.
func (h *Host) SetForeground(foreground bool) {
	h.mu.Lock()
	changed := h.foreground != foreground
	h.foreground = foreground
	h.mu.Unlock()

	if !changed {
		return
	}
	if foreground {
		h.emit(domain.Event{Kind: domain.EventApplicationActivated})
		return
	}
	h.emit(domain.Event{Kind: domain.EventApplicationDeactivated})
}

func (h *Host) BeginBuild() {
	h.emit(domain.Event{Kind: domain.EventBuildBegin})
}

func (h *Host) InvokeCommand() {
	h.emit(domain.Event{Kind: domain.EventCommandInvoked})
}

func (h *Host) OpenSolution() {
	h.emit(domain.Event{Kind: domain.EventSolutionOpened})
}

// ClosedByEngine lists windows closed through CloseWindow, in order.
func (h *Host) ClosedByEngine() []domain.WindowID {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]domain.WindowID(nil), h.closed...)
}

func (h *Host) update(id domain.WindowID, fn func(*domain.Window)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	index := h.indexLocked(id)
	if index < 0 {
		return domain.ErrWindowNotFound
	}
	fn(&h.windows[index])
	return nil
}

func (h *Host) remove(id domain.WindowID, byEngine bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	index := h.indexLocked(id)
	if index < 0 {
		return
	}
	h.windows = append(h.windows[:index], h.windows[index+1:]...)
	if h.active == id {
		h.active = ""
	}
	if byEngine {
		h.closed = append(h.closed, id)
	}
}

func (h *Host) indexLocked(id domain.WindowID) int {
	for i, w := range h.windows {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// emit delivers event to every subscriber synchronously, outside the lock.
func (h *Host) emit(event domain.Event) {
	h.mu.Lock()
	keys := make([]int, 0, len(h.handlers))
	for key := range h.handlers {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	handlers := make([]ports.EventHandler, 0, len(keys))
	for _, key := range keys {
		handlers = append(handlers, h.handlers[key])
	}
	h.mu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
}
