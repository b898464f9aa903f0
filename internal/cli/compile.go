package cli

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyquery/internal/ui/highlight"
	"github.com/rebeliceyang/lazyquery/internal/ui/theme"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	DSN    string
	Pretty bool
	Copy   bool
	Color  bool
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query>",
		Short: "Print the SQL of a query",
		Long: `Compile a saved query to SQL.

The ODBC data source name decides the dialect: names listed under
dialect.db2_markers (NEON_DSN by default) get the DB2 prefix. It is taken
from --dsn, else from the query's data source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "ODBC data source name used for dialect detection")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "one clause item per line")
	cmd.Flags().BoolVar(&opts.Copy, "copy", false, "copy the SQL to the clipboard")
	cmd.Flags().BoolVar(&opts.Color, "color", false, "syntax highlight the SQL in the ui.theme style")

	return cmd
}

func runCompile(opts *CompileOptions, name string, cmd *cobra.Command) error {
	lib, err := opts.library()
	if err != nil {
		return err
	}
	q, err := lib.Get(name)
	if err != nil {
		return err
	}

	dsn := opts.DSN
	if dsn == "" {
		dsn = q.DataSource
		if ds, err := opts.dataSource(q.DataSource); err == nil {
			dsn = ds.OdbcName()
		}
	}

	compiler := opts.compiler()
	var sql string
	if opts.Pretty {
		sql, err = compiler.CompilePretty(q, dsn)
	} else {
		sql, err = compiler.Compile(q, dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to compile query %q: %w", q.Name, err)
	}
	opts.logger.Debug("compiled query", "query", q.Name, "dsn", dsn)

	text := strings.TrimRight(sql, "\n")
	if opts.Color {
		colored, err := highlight.SQL(text, theme.GetTheme(opts.cfg.UI.Theme).SyntaxStyle)
		if err != nil {
			return err
		}
		text = strings.TrimRight(colored, "\n")
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)

	if opts.Copy {
		if err := clipboard.WriteAll(sql); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard")
	}
	return nil
}
