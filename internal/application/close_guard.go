package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/ports"
	"github.com/sourcegraph/conc/panics"
)

var (
	errActiveWindow = errors.New("window is active")
	errPinnedWindow = errors.New("window is pinned")
	errDirtyWindow  = errors.New("window has unsaved changes")
)

// CloseGuard decides whether a window may be closed and closes it. The
// activity record is only dropped once the host confirms the close.
type CloseGuard struct {
	host   ports.WindowHost
	store  *ActivityStore
	logger *slog.Logger
}

func NewCloseGuard(host ports.WindowHost, store *ActivityStore, logger *slog.Logger) *CloseGuard {
	if logger == nil {
		logger = discardLogger()
	}

	return &CloseGuard{host: host, store: store, logger: logger}
}

// Admissible returns nil when window may be closed given the snapshot it came
// from.
func (g *CloseGuard) Admissible(window domain.Window, snapshot domain.WindowSnapshot) error {
	if window.IsActive {
		return errActiveWindow
	}
	if active, ok := snapshot.Active(); ok && active.ID == window.ID {
		return errActiveWindow
	}
	if window.IsPinned {
		return errPinnedWindow
	}
	if window.HasBackingDocument && window.HasUnsavedChanges {
		return errDirtyWindow
	}

	return nil
}

// Close closes window when it is admissible. It reports true only when the
// host closed the window. A host failure leaves tracking untouched so the
// window stays a candidate for a later pass.
func (g *CloseGuard) Close(ctx context.Context, window domain.Window, snapshot domain.WindowSnapshot) (bool, error) {
	if !snapshot.Contains(window.ID) {
		return false, nil
	}
	if err := g.Admissible(window, snapshot); err != nil {
		g.logger.Debug("close skipped", "window", window.ID, "reason", err)
		return false, nil
	}

	opts := ports.CloseOptions{DiscardChanges: !window.HasBackingDocument}

	var closeErr error
	var catcher panics.Catcher
	catcher.Try(func() {
		closeErr = g.host.CloseWindow(ctx, window.ID, opts)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		closeErr = fmt.Errorf("%w: %w", domain.ErrCloseRejected, recovered.AsError())
	}

	if closeErr != nil {
		if errors.Is(closeErr, domain.ErrWindowNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("close window %s: %w", window.ID, closeErr)
	}

	g.store.Remove(window.ID)
	return true, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
