package cmd

import (
	"context"
	"fmt"
	"time"

	statusadapter "github.com/samgubernick/TidyTabs-VisualStudio/internal/adapters/render/status"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/simulation"
	"github.com/spf13/cobra"
)

type simulateOptions struct {
	asJSON     bool
	fromConfig bool
}

type simulateView struct {
	Scenario string            `json:"scenario"`
	Ended    time.Time         `json:"ended"`
	Settings settingsView      `json:"settings"`
	Closed   []domain.WindowID `json:"closed"`
	Reports  []reportView      `json:"reports"`
	Windows  []windowView      `json:"windows"`
}

func newSimulateCmd(app *app) *cobra.Command {
	opts := simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate SCENARIO",
		Short: "Replay a scripted editor session and show what the engine closed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, app, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&opts.fromConfig, "from-config", false, "Start from the saved settings instead of the defaults")

	return cmd
}

func runSimulate(cmd *cobra.Command, app *app, path string, opts simulateOptions) error {
	scenario, err := simulation.Load(path)
	if err != nil {
		return err
	}

	runner, err := newScenarioRunner(cmd, app, scenario, opts.fromConfig)
	if err != nil {
		return err
	}

	var result simulation.Result
	replay := func(ctx context.Context, progress func(replayProgress)) error {
		if progress != nil {
			var elapsed time.Duration
			runner.OnStep = func(i int, step simulation.Step) {
				elapsed += step.After
				progress(replayProgress{
					step:    i + 1,
					total:   len(scenario.Steps),
					elapsed: elapsed,
					action:  step.String(),
				})
			}
		}
		var runErr error
		result, runErr = runner.Run(ctx)
		return runErr
	}

	if opts.asJSON || app.opts.verbose {
		err = replay(cmd.Context(), nil)
	} else {
		err = runReplaySpinner(cmd.Context(), cmd.ErrOrStderr(), scenarioName(scenario, path), replay)
	}
	if err != nil {
		return fmt.Errorf("simulate %s: %w", path, err)
	}

	if opts.asJSON {
		return writeJSON(cmd, simulateView{
			Scenario: scenarioName(scenario, path),
			Ended:    result.Ended,
			Settings: toSettingsView(result.Status.Settings),
			Closed:   nonNil(result.Closed),
			Reports:  toReportViews(result.Reports),
			Windows:  toWindowViews(result.Status),
		})
	}

	return writeRendered(cmd, app, statusadapter.Input{
		Status:  result.Status,
		Reports: result.Reports,
	}, scenarioName(scenario, path))
}

func newScenarioRunner(cmd *cobra.Command, app *app, scenario *simulation.Scenario, fromConfig bool) (*simulation.Runner, error) {
	runner := simulation.NewRunner(scenario, app.logger(cmd.ErrOrStderr()))
	if !fromConfig {
		return runner, nil
	}

	saved, err := app.settings.Settings(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("load saved settings: %w", err)
	}
	runner.BaseSettings = &saved
	return runner, nil
}

func scenarioName(scenario *simulation.Scenario, path string) string {
	if scenario.Name != "" {
		return scenario.Name
	}
	return path
}
