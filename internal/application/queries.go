package application

import (
	"context"
	"fmt"
	"time"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
)

type WindowStatus struct {
	Window     domain.Window
	Tracked    bool
	LastSeenAt time.Time
	Idle       time.Duration
	Stale      bool
}

type Status struct {
	Now            time.Time
	Settings       domain.Settings
	LastActionTime time.Time
	Backgrounded   bool
	Windows        []WindowStatus
}

// Status reports every open window with its tracked activity, in the order
// the host lists them.
func (o *Orchestrator) Status(ctx context.Context) (Status, error) {
	var status Status
	err := o.dispatcher.Do(ctx, func(ctx context.Context) error {
		settings, err := o.settings.Settings(ctx)
		if err != nil {
			return fmt.Errorf("read settings: %w", err)
		}
		snapshot, err := o.host.Windows(ctx)
		if err != nil {
			return fmt.Errorf("enumerate windows: %w", err)
		}

		now := o.clock.Now()
		status = Status{
			Now:            now,
			Settings:       settings,
			LastActionTime: o.LastActionTime(),
			Backgrounded:   o.compensator.Backgrounded(),
			Windows:        make([]WindowStatus, 0, len(snapshot.Windows)),
		}
		for _, window := range snapshot.Windows {
			status.Windows = append(status.Windows, windowStatus(window, o.store, settings, now))
		}
		return nil
	})
	return status, err
}

func windowStatus(window domain.Window, store *ActivityStore, settings domain.Settings, now time.Time) WindowStatus {
	record, ok := store.Get(window.ID)
	if !ok {
		return WindowStatus{Window: window}
	}

	return WindowStatus{
		Window:     window,
		Tracked:    true,
		LastSeenAt: record.LastSeenAt,
		Idle:       record.Idle(now),
		Stale:      record.IsStale(now, settings.TabTimeout()),
	}
}
