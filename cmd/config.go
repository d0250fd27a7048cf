package cmd

import (
	"fmt"

	settingstoml "github.com/samgubernick/TidyTabs-VisualStudio/internal/adapters/settings/toml"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change the settings the engine reads",
	}

	cmd.AddCommand(
		newConfigShowCmd(app),
		newConfigSetCmd(app),
		newConfigPathCmd(app),
	)

	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := app.settings.Settings(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, toSettingsView(settings))
			}
			return writeSettings(cmd, settings)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newConfigSetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:       "set KEY VALUE",
		Short:     "Change one setting",
		Args:      cobra.ExactArgs(2),
		ValidArgs: settingstoml.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := app.settings.Set(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("set %s: %w", args[0], err)
			}
			return writeSettings(cmd, settings)
		},
	}
}

func newConfigPathCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), app.settings.Path())
			return err
		},
	}
}

func writeSettings(cmd *cobra.Command, settings domain.Settings) error {
	values := map[string]string{
		settingstoml.KeyPurgeStaleTabsOnSave: fmt.Sprintf("%t", settings.PurgeStaleTabsOnSave),
		settingstoml.KeyTabTimeoutMinutes:    fmt.Sprintf("%d", settings.TabTimeoutMinutes),
		settingstoml.KeyTabCloseThreshold:    fmt.Sprintf("%d", settings.TabCloseThreshold),
		settingstoml.KeyMaxOpenTabs:          fmt.Sprintf("%d", settings.MaxOpenTabs),
	}

	for _, key := range settingstoml.Keys() {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, values[key]); err != nil {
			return err
		}
	}
	return nil
}
