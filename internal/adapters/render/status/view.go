package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/application"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const defaultBarWidth = 20

// Input is everything one render shows. Reports and Plan are optional.
type Input struct {
	Status  application.Status
	Reports []domain.EvictionReport
	Plan    *domain.EvictionPlan
}

type RenderOptions struct {
	Title    string
	BarWidth int
}

func renderView(input Input, opts RenderOptions, s styles) string {
	title := opts.Title
	if title == "" {
		title = "TidyTabs"
	}

	status := input.Status
	lines := []string{
		s.title.Render(title),
		s.header.Render(summaryLine(status)),
		s.header.Render(settingsLine(status.Settings)),
	}

	if len(status.Windows) == 0 {
		lines = append(lines, s.empty.Render("No open windows."))
	} else {
		windows := make([]string, 0, len(status.Windows))
		for _, w := range status.Windows {
			windows = append(windows, windowLine(w, status.Settings, opts, s))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, windows...)))
	}

	if input.Plan != nil {
		lines = append(lines, s.section.Render(planBlock(*input.Plan, s)))
	}

	if len(input.Reports) > 0 {
		passes := make([]string, 0, len(input.Reports))
		for _, report := range input.Reports {
			passes = append(passes, reportLine(report, s))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, passes...)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func summaryLine(status application.Status) string {
	tracked, stale := 0, 0
	for _, w := range status.Windows {
		if w.Tracked {
			tracked++
		}
		if w.Stale {
			stale++
		}
	}

	line := fmt.Sprintf("windows: %d  tracked: %d  stale: %d", len(status.Windows), tracked, stale)
	if status.Backgrounded {
		line += "  (in background)"
	}
	return line
}

func settingsLine(settings domain.Settings) string {
	capLabel := "off"
	if settings.CapEnabled() {
		capLabel = fmt.Sprintf("%d", settings.MaxOpenTabs)
	}
	purge := "off"
	if settings.PurgeStaleTabsOnSave {
		purge = "on"
	}

	return fmt.Sprintf("timeout: %s  close threshold: %d  cap: %s  purge on save: %s",
		formatDuration(settings.TabTimeout()), settings.TabCloseThreshold, capLabel, purge)
}

func windowLine(w application.WindowStatus, settings domain.Settings, opts RenderOptions, s styles) string {
	name := s.window.Render(windowTitle(w.Window))

	var idle string
	if w.Tracked {
		fraction := 0.0
		if timeout := settings.TabTimeout(); timeout > 0 {
			fraction = float64(w.Idle) / float64(timeout)
		}
		idleStyle := lipgloss.NewStyle().Foreground(interpolateColor(1-fraction, 0, 1))
		idle = lipgloss.JoinHorizontal(
			lipgloss.Top,
			renderProgressBar(fraction*100, barWidth(opts), s),
			" ",
			idleStyle.Render("idle "+formatDuration(w.Idle)),
		)
	} else {
		idle = s.empty.Render("not tracked")
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top, name, " ", idle)
	if flags := windowFlags(w.Window); flags != "" {
		line += " " + s.flag.Render(flags)
	}
	if w.Stale {
		line += " " + s.warning.Render("[stale]")
	}
	return line
}

func windowTitle(w domain.Window) string {
	caption := strings.TrimSpace(w.Caption)
	if caption == "" || caption == string(w.ID) {
		return string(w.ID)
	}
	return fmt.Sprintf("%s (%s)", caption, w.ID)
}

func windowFlags(w domain.Window) string {
	var flags []string
	if w.IsActive {
		flags = append(flags, "[active]")
	}
	if w.IsPinned {
		flags = append(flags, "[pinned]")
	}
	if w.HasUnsavedChanges {
		flags = append(flags, "[unsaved]")
	}
	if !w.HasBackingDocument {
		flags = append(flags, "[tool]")
	}
	return strings.Join(flags, " ")
}

func planBlock(plan domain.EvictionPlan, s styles) string {
	if plan.Len() == 0 {
		return s.empty.Render("Nothing to close.")
	}

	lines := []string{s.title.Render("Would close")}
	if len(plan.Stale) > 0 {
		lines = append(lines, s.passKey.Render("stale: ")+s.closed.Render(joinIDs(plan.Stale)))
	}
	if len(plan.Cap) > 0 {
		lines = append(lines, s.passKey.Render("over cap: ")+s.closed.Render(joinIDs(plan.Cap)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func reportLine(report domain.EvictionReport, s styles) string {
	key := s.passKey.Render(fmt.Sprintf("%s %s pass %s:",
		report.StartedAt.Format("15:04:05"), report.Reason, shortID(report.PassID)))

	parts := []string{key}
	if closed := report.Closed(); len(closed) > 0 {
		parts = append(parts, s.closed.Render("closed "+joinIDs(closed)))
	} else {
		parts = append(parts, s.empty.Render("nothing closed"))
	}
	if len(report.Skipped) > 0 {
		parts = append(parts, s.flag.Render("skipped "+joinIDs(report.Skipped)))
	}
	for _, failure := range report.Failures {
		parts = append(parts, s.failed.Render(fmt.Sprintf("failed %s: %v", failure.Window, failure.Err)))
	}
	if report.Pruned > 0 {
		parts = append(parts, s.flag.Render(fmt.Sprintf("pruned %d", report.Pruned)))
	}

	return strings.Join(parts, " ")
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	fraction := clampPercent(percent) / 100.0
	filled := int(math.Round(float64(width) * fraction))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func barWidth(opts RenderOptions) int {
	if opts.BarWidth > 0 {
		return opts.BarWidth
	}
	return defaultBarWidth
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return "<1m"
	}

	d = d.Truncate(time.Minute)
	days := int(d / (24 * time.Hour))
	hours := int((d % (24 * time.Hour)) / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)

	switch {
	case days > 0 && hours > 0:
		return fmt.Sprintf("%dd%dh", days, hours)
	case days > 0:
		return fmt.Sprintf("%dd", days)
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

func joinIDs(ids []domain.WindowID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, string(id))
	}
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// interpolateColor maps value onto the 240..255 greyscale ramp: faded at min,
// bright at max.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	interpolated := 240.0 + 15.0*normalized
	return lipgloss.Color(fmt.Sprintf("%d", int(interpolated)))
}
