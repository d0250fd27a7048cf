package ports

import (
	"context"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
)

type CloseOptions struct {
	// DiscardChanges closes without saving. When false the host must refuse
	// to close a window that has unsaved changes.
	DiscardChanges bool
}

// WindowHost is the host application's window surface. Implementations are
// only called on the host interaction thread (see Dispatcher).
type WindowHost interface {
	Windows(ctx context.Context) (domain.WindowSnapshot, error)
	CloseWindow(ctx context.Context, id domain.WindowID, opts CloseOptions) error
}
