package simulation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/application"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScenario(t *testing.T, name string) Result {
	t.Helper()

	scenario, err := Load(filepath.Join("testdata", name))
	require.NoError(t, err)

	result, err := NewRunner(scenario, nil).Run(context.Background())
	require.NoError(t, err)
	return result
}

func TestRunClosesOldestStaleWindowsUpToExcess(t *testing.T) {
	t.Parallel()

	result := runScenario(t, "stale.yaml")

	require.Len(t, result.Reports, 1)
	report := result.Reports[0]
	assert.Equal(t, application.ReasonSave, report.Reason)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 1, 0, 0, time.UTC).Add(application.DefaultSettleDelay), report.StartedAt)
	assert.Equal(t, []domain.WindowID{"w1", "w2"}, report.StaleClosed)
	assert.Equal(t, []domain.WindowID{"w1", "w2"}, result.Closed)
	require.Len(t, result.Status.Windows, 8)
	assert.Equal(t, domain.WindowID("w3"), result.Status.Windows[0].Window.ID)
	assert.True(t, result.Status.Windows[0].Stale)
}

func TestRunEnforcesCap(t *testing.T) {
	t.Parallel()

	result := runScenario(t, "cap.yaml")

	require.Len(t, result.Reports, 1)
	assert.Equal(t, application.ReasonBuild, result.Reports[0].Reason)
	assert.Equal(t, []domain.WindowID{"a1", "a2"}, result.Reports[0].CapClosed)
	assert.Len(t, result.Status.Windows, 5)
}

func TestRunCompensatesBackgroundTime(t *testing.T) {
	t.Parallel()

	result := runScenario(t, "background.yaml")

	require.Len(t, result.Reports, 1)
	assert.Empty(t, result.Reports[0].Closed())
	assert.Equal(t, 2, result.Reports[0].StaleExcess)
	for _, w := range result.Status.Windows {
		assert.False(t, w.Stale, w.Window.ID)
		assert.Less(t, w.Idle, 6*time.Minute)
	}
}

func TestRunContinuesPastRejectedClose(t *testing.T) {
	t.Parallel()

	result := runScenario(t, "rejected.yaml")

	require.Len(t, result.Reports, 2)
	first := result.Reports[0]
	assert.Equal(t, []domain.WindowID{"x2", "x3"}, first.StaleClosed)
	require.Len(t, first.Failures, 1)
	assert.Equal(t, domain.WindowID("x1"), first.Failures[0].Window)
	assert.ErrorContains(t, first.Failures[0].Err, "debugger attached")

	assert.Equal(t, []domain.WindowID{"x1"}, result.Reports[1].StaleClosed)
	assert.Equal(t, []domain.WindowID{"x2", "x3", "x1"}, result.Closed)
}

func TestRunSettleDelayOrdersPassesAfterBookkeeping(t *testing.T) {
	t.Parallel()

	scenario, err := Parse([]byte(`
start: 2026-03-02T09:00:00Z
settle_delay: 2s
settings:
  tab_timeout_minutes: 20
  tab_close_threshold: 1
windows:
  - {id: old, idle: 1h}
  - {id: new, idle: 1m}
steps:
  - {action: activate, window: new}
  - {after: 1s, action: activate, window: old}
`))
	require.NoError(t, err)

	var steps []string
	runner := NewRunner(scenario, nil)
	runner.OnStep = func(_ int, step Step) { steps = append(steps, step.String()) }
	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"activate new", "activate old"}, steps)
	require.Len(t, result.Reports, 2)
	// Activating "old" touched it before either pass ran.
	for _, report := range result.Reports {
		assert.Empty(t, report.Closed())
	}
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 3, 0, time.UTC), result.Ended)
}

func TestRunConfigureAndOpenSteps(t *testing.T) {
	t.Parallel()

	scenario, err := Parse([]byte(`
start: 2026-03-02T09:00:00Z
settings:
  tab_close_threshold: 100
windows:
  - {id: a, idle: 3m}
  - {id: b, idle: 2m}
steps:
  - {action: configure, value: "max_open_tabs = 2"}
  - {after: 1m, action: open, window: c, value: src/c.go}
`))
	require.NoError(t, err)

	result, err := NewRunner(scenario, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.WindowID{"a"}, result.Closed)
	assert.Equal(t, 2, result.Status.Settings.MaxOpenTabs)
	require.Len(t, result.Status.Windows, 2)
	assert.Equal(t, "c.go", result.Status.Windows[1].Window.Caption)
}

func TestRunOpenSolutionSeedsUntrackedWindows(t *testing.T) {
	t.Parallel()

	scenario, err := Parse([]byte(`
windows:
  - {id: a}
  - {id: b, idle: 1h}
steps:
  - {action: open-solution}
`))
	require.NoError(t, err)

	result, err := NewRunner(scenario, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Status.Windows, 2)
	for _, w := range result.Status.Windows {
		assert.True(t, w.Tracked, w.Window.ID)
	}
	assert.Equal(t, DefaultStart, result.Status.Windows[0].LastSeenAt)
	assert.Empty(t, result.Reports)
}

func TestRunReportsFailingStep(t *testing.T) {
	t.Parallel()

	scenario, err := Parse([]byte("steps:\n  - {action: save, window: ghost}\n"))
	require.NoError(t, err)

	_, err = NewRunner(scenario, nil).Run(context.Background())
	require.ErrorIs(t, err, domain.ErrWindowNotFound)
	assert.ErrorContains(t, err, "step 1 (save ghost)")
}

func TestPlanPreviewsWithoutClosing(t *testing.T) {
	t.Parallel()

	scenario, err := Load(filepath.Join("testdata", "cap.yaml"))
	require.NoError(t, err)

	plan, status, err := NewRunner(scenario, nil).Plan(context.Background())
	require.NoError(t, err)

	assert.Empty(t, plan.Stale)
	assert.Equal(t, []domain.WindowID{"a1", "a2"}, plan.Cap)
	assert.Len(t, status.Windows, 7)
}

func TestRunAppliesOverridesOnBaseSettings(t *testing.T) {
	t.Parallel()

	scenario, err := Parse([]byte("settings:\n  tab_close_threshold: 3\n"))
	require.NoError(t, err)

	runner := NewRunner(scenario, nil)
	runner.BaseSettings = &domain.Settings{TabTimeoutMinutes: 15, TabCloseThreshold: 9, MaxOpenTabs: 4}
	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.Settings{TabTimeoutMinutes: 15, TabCloseThreshold: 3, MaxOpenTabs: 4}, result.Status.Settings)
}
