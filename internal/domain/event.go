package domain

import "fmt"

type EventKind string

const (
	EventWindowActivated        EventKind = "window_activated"
	EventDocumentSaved          EventKind = "document_saved"
	EventDocumentClosing        EventKind = "document_closing"
	EventSolutionOpened         EventKind = "solution_opened"
	EventBuildBegin             EventKind = "build_begin"
	EventApplicationActivated   EventKind = "application_activated"
	EventApplicationDeactivated EventKind = "application_deactivated"
	EventTextActivity           EventKind = "text_activity"
	EventCommandInvoked         EventKind = "command_invoked"
)

var eventKinds = []EventKind{
	EventWindowActivated,
	EventDocumentSaved,
	EventDocumentClosing,
	EventSolutionOpened,
	EventBuildBegin,
	EventApplicationActivated,
	EventApplicationDeactivated,
	EventTextActivity,
	EventCommandInvoked,
}

func (k EventKind) Valid() bool {
	for _, known := range eventKinds {
		if k == known {
			return true
		}
	}
	return false
}

func ParseEventKind(raw string) (EventKind, error) {
	kind := EventKind(raw)
	if !kind.Valid() {
		return "", fmt.Errorf("unknown event kind %q", raw)
	}
	return kind, nil
}

// Event is a host notification. Window is the subject of the event (the
// window gaining focus, the saved or closing document's window); Previous is
// only set for activations and names the window losing focus.
type Event struct {
	Kind     EventKind
	Window   WindowID
	Previous WindowID
}
