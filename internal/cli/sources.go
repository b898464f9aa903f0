package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyquery/internal/db/connection"
	"github.com/rebeliceyang/lazyquery/internal/db/discovery"
	"github.com/rebeliceyang/lazyquery/internal/export"
)

// NewSourcesCommand creates the sources command group.
func NewSourcesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Inspect data sources and manage their passwords",
	}
	cmd.AddCommand(newSourcesListCommand(opts))
	cmd.AddCommand(newSourcesLoginCommand(opts))
	cmd.AddCommand(newSourcesLogoutCommand(opts))
	return cmd
}

func newSourcesListCommand(opts *RootOptions) *cobra.Command {
	var discover bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured data sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			columns := []string{"Name", "Driver", "Database", "User", "Origin"}
			var rows [][]string
			for _, ds := range opts.cfg.DataSources {
				name := ds.Name
				if strings.EqualFold(name, opts.cfg.General.DefaultDataSource) {
					name += " *"
				}
				rows = append(rows, []string{name, ds.Driver, ds.Database, ds.User, "config"})
			}

			if discover {
				for _, s := range discovery.NewDiscoverer().DiscoverAll() {
					if _, err := opts.cfg.DataSource(s.Config.Name); err == nil {
						continue
					}
					rows = append(rows, []string{s.Config.Name, s.Driver, s.Config.Database, s.Config.User, s.Kind.String() + ": " + s.Origin})
				}
			}

			export.WriteTable(cmd.OutOrStdout(), columns, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&discover, "discover", false, "include DSNs from odbc.ini and PG* variables")
	return cmd
}

func newSourcesLoginCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <source>",
		Short: "Store the password of a data source in the OS keyring",
		Long: `Read a password from standard input and store it in the OS keyring
for the data source's configured user.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.cfg.DataSource(args[0])
			if err != nil {
				return err
			}
			if ds.User == "" {
				return fmt.Errorf("data source %s has no user configured", ds.Name)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Password for %s@%s: ", ds.User, ds.Name)
			reader := bufio.NewReader(cmd.InOrStdin())
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password := strings.TrimRight(line, "\r\n")

			if err := connection.NewCredentialStore().Save(ds.Name, ds.User, password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password stored")
			return nil
		},
	}
}

func newSourcesLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout <source>",
		Short: "Remove the stored password of a data source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.cfg.DataSource(args[0])
			if err != nil {
				return err
			}
			if err := connection.NewCredentialStore().Delete(ds.Name, ds.User); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password removed")
			return nil
		},
	}
}
