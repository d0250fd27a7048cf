package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	statusadapter "github.com/samgubernick/TidyTabs-VisualStudio/internal/adapters/render/status"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/application"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
	"github.com/spf13/cobra"
)

type settingsView struct {
	PurgeStaleTabsOnSave bool `json:"purge_stale_tabs_on_save"`
	TabTimeoutMinutes    int  `json:"tab_timeout_minutes"`
	TabCloseThreshold    int  `json:"tab_close_threshold"`
	MaxOpenTabs          int  `json:"max_open_tabs"`
}

type windowView struct {
	ID          domain.WindowID `json:"id"`
	Caption     string          `json:"caption,omitempty"`
	Path        string          `json:"path,omitempty"`
	Active      bool            `json:"active"`
	Pinned      bool            `json:"pinned"`
	Unsaved     bool            `json:"unsaved"`
	Document    bool            `json:"document"`
	Tracked     bool            `json:"tracked"`
	LastSeenAt  *time.Time      `json:"last_seen_at,omitempty"`
	IdleSeconds int64           `json:"idle_seconds"`
	Stale       bool            `json:"stale"`
}

type failureView struct {
	Window domain.WindowID `json:"window"`
	Error  string          `json:"error"`
}

type reportView struct {
	PassID      string            `json:"pass_id"`
	Reason      string            `json:"reason"`
	StartedAt   time.Time         `json:"started_at"`
	StaleExcess int               `json:"stale_excess"`
	StaleClosed []domain.WindowID `json:"stale_closed"`
	CapExcess   int               `json:"cap_excess"`
	CapClosed   []domain.WindowID `json:"cap_closed"`
	Skipped     []domain.WindowID `json:"skipped"`
	Failures    []failureView     `json:"failures"`
	Pruned      int               `json:"pruned"`
}

type planView struct {
	Stale []domain.WindowID `json:"stale"`
	Cap   []domain.WindowID `json:"cap"`
}

func toSettingsView(s domain.Settings) settingsView {
	return settingsView{
		PurgeStaleTabsOnSave: s.PurgeStaleTabsOnSave,
		TabTimeoutMinutes:    s.TabTimeoutMinutes,
		TabCloseThreshold:    s.TabCloseThreshold,
		MaxOpenTabs:          s.MaxOpenTabs,
	}
}

func toWindowViews(status application.Status) []windowView {
	views := make([]windowView, 0, len(status.Windows))
	for _, w := range status.Windows {
		view := windowView{
			ID:          w.Window.ID,
			Caption:     w.Window.Caption,
			Path:        w.Window.Path,
			Active:      w.Window.IsActive,
			Pinned:      w.Window.IsPinned,
			Unsaved:     w.Window.HasUnsavedChanges,
			Document:    w.Window.HasBackingDocument,
			Tracked:     w.Tracked,
			IdleSeconds: int64(w.Idle / time.Second),
			Stale:       w.Stale,
		}
		if w.Tracked {
			lastSeen := w.LastSeenAt
			view.LastSeenAt = &lastSeen
		}
		views = append(views, view)
	}
	return views
}

func toReportViews(reports []domain.EvictionReport) []reportView {
	views := make([]reportView, 0, len(reports))
	for _, r := range reports {
		failures := make([]failureView, 0, len(r.Failures))
		for _, f := range r.Failures {
			failures = append(failures, failureView{Window: f.Window, Error: f.Err.Error()})
		}
		views = append(views, reportView{
			PassID:      r.PassID,
			Reason:      r.Reason,
			StartedAt:   r.StartedAt,
			StaleExcess: r.StaleExcess,
			StaleClosed: nonNil(r.StaleClosed),
			CapExcess:   r.CapExcess,
			CapClosed:   nonNil(r.CapClosed),
			Skipped:     nonNil(r.Skipped),
			Failures:    failures,
			Pruned:      r.Pruned,
		})
	}
	return views
}

func nonNil(ids []domain.WindowID) []domain.WindowID {
	if ids == nil {
		return []domain.WindowID{}
	}
	return ids
}

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeRendered(cmd *cobra.Command, app *app, input statusadapter.Input, title string) error {
	rendered, err := app.statusRenderer(input, statusadapter.RenderOptions{Title: title})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
