package ports

import "github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"

type EventHandler func(event domain.Event)

// EventSource delivers host notifications. Handlers may be invoked on the
// host interaction thread and must return promptly.
type EventSource interface {
	Subscribe(handler EventHandler) (unsubscribe func())
}
