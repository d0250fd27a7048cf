package cmd

import (
	"fmt"

	statusadapter "github.com/samgubernick/TidyTabs-VisualStudio/internal/adapters/render/status"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/simulation"
	"github.com/spf13/cobra"
)

type planOutput struct {
	Scenario string       `json:"scenario"`
	Settings settingsView `json:"settings"`
	Plan     planView     `json:"plan"`
	Windows  []windowView `json:"windows"`
}

func newPlanCmd(app *app) *cobra.Command {
	var asJSON bool
	var fromConfig bool

	cmd := &cobra.Command{
		Use:   "plan SCENARIO",
		Short: "Show what a pass would close for a scenario's opening windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := simulation.Load(args[0])
			if err != nil {
				return err
			}

			runner, err := newScenarioRunner(cmd, app, scenario, fromConfig)
			if err != nil {
				return err
			}

			plan, status, err := runner.Plan(cmd.Context())
			if err != nil {
				return fmt.Errorf("plan %s: %w", args[0], err)
			}

			if asJSON {
				return writeJSON(cmd, planOutput{
					Scenario: scenarioName(scenario, args[0]),
					Settings: toSettingsView(status.Settings),
					Plan:     planView{Stale: nonNil(plan.Stale), Cap: nonNil(plan.Cap)},
					Windows:  toWindowViews(status),
				})
			}

			return writeRendered(cmd, app, statusadapter.Input{Status: status, Plan: &plan}, scenarioName(scenario, args[0]))
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&fromConfig, "from-config", false, "Start from the saved settings instead of the defaults")

	return cmd
}
