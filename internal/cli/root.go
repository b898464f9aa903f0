package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the lazyquery CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lazyquery",
		Short: "Build, compile and filter ODBC queries",
		Long: `lazyquery keeps a library of point-and-click style query definitions
(criteria, display fields and joins), compiles them to SQL and runs them
against ODBC, PostgreSQL or SQLite data sources. Result sets, table and
field listings can be narrowed with spreadsheet style column filters.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.close()
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: user config dir)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVarP(&opts.Source, "source", "s", "", "data source name (default: query or config default)")

	// Add subcommands
	cmd.AddCommand(NewQueriesCommand(opts))
	cmd.AddCommand(NewCriteriaCommand(opts))
	cmd.AddCommand(NewDisplayCommand(opts))
	cmd.AddCommand(NewJoinCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewFieldsCommand(opts))
	cmd.AddCommand(NewValuesCommand(opts))
	cmd.AddCommand(NewFilesCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewSourcesCommand(opts))

	return cmd
}
