package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "tidytabs",
		Short:         "TidyTabs: close document windows nobody has looked at in a while",
		Long:          "tidytabs drives the TidyTabs eviction engine outside the editor: replay recorded sessions, preview what a pass would close, and manage the settings the engine reads.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log engine activity at debug level on stderr")

	app, err := wireApp(opts)
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(app),
		newPlanCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
