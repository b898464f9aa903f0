package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyquery/internal/autofilter"
	"github.com/rebeliceyang/lazyquery/internal/db/query"
	"github.com/rebeliceyang/lazyquery/internal/export"
	"github.com/rebeliceyang/lazyquery/internal/models"
	"github.com/rebeliceyang/lazyquery/internal/ui/theme"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Filters     []string
	Interactive []string
	Export      string
	Limit       int
	ShowSQL     bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <query>",
		Short: "Execute a query and filter its result",
		Long: `Execute a saved query against its data source.

The result can be narrowed with column filters: --filter COLUMN=v1,v2
keeps rows whose COLUMN is one of the values, and --interactive COLUMN
opens a checkbox picker offering the values left by the other filters.
--export writes the visible rows to a .csv or .json file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Filters, "filter", nil, "column filter column=v1,v2 (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.Interactive, "interactive", "i", nil, "pick the filter of a column interactively (repeatable)")
	cmd.Flags().StringVarP(&opts.Export, "export", "o", "", "export visible rows to a .csv or .json file")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum rows to print (default: general.row_limit)")
	cmd.Flags().BoolVar(&opts.ShowSQL, "sql", false, "print the compiled SQL before the result")

	return cmd
}

func runQuery(opts *RunOptions, name string, cmd *cobra.Command) error {
	ctx := cmd.Context()

	lib, err := opts.library()
	if err != nil {
		return err
	}
	q, err := lib.Get(name)
	if err != nil {
		return err
	}

	pool, err := opts.connect(ctx, q.DataSource)
	if err != nil {
		return err
	}
	store, err := opts.historyStore()
	if err != nil {
		return err
	}
	if store != nil && opts.cfg.History.MaxEntries > 0 {
		defer func() {
			if _, err := store.Prune(opts.cfg.History.MaxEntries); err != nil {
				opts.logger.Warn("failed to prune history", "error", err)
			}
		}()
	}

	runner := query.NewRunner(opts.compiler(), store, opts.cfg.Performance.QueryTimeoutDuration(), opts.logger)
	sql, result, err := runner.Run(ctx, pool, q)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.ShowSQL {
		fmt.Fprintln(out, sql)
		fmt.Fprintln(out)
	}

	filters, err := resultFilters(result, opts.Filters)
	if err != nil {
		return err
	}
	interactive := make([]string, 0, len(opts.Interactive))
	for _, col := range opts.Interactive {
		name, err := resultColumn(result, col)
		if err != nil {
			return err
		}
		interactive = append(interactive, name)
	}

	engine := autofilter.NewResultEngine(result)
	if err := applyFilters(engine, filters); err != nil {
		return err
	}
	if len(interactive) > 0 {
		if err := pickFilters(engine, interactive, theme.GetTheme(opts.cfg.UI.Theme)); err != nil {
			return err
		}
	}

	visible := result.WithRows(engine.VisibleRows())

	if opts.Export != "" {
		if err := export.ToFile(visible, opts.Export); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d row(s) to %s\n", len(visible.Rows), opts.Export)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = opts.cfg.General.RowLimit
	}
	rows := visible.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	export.WriteTable(out, result.Columns, rows)

	fmt.Fprintf(out, "%d of %d row(s)", len(visible.Rows), len(result.Rows))
	if active := engine.ActiveFilters(); len(active) > 0 {
		fmt.Fprintf(out, " | filters: %s", describeFilters(active, result.Columns))
	}
	fmt.Fprintf(out, " | %s\n", result.Duration.Round(time.Millisecond))
	return nil
}

// resultColumn maps a column name given on the command line onto the
// spelling used by the result set
func resultColumn(result models.QueryResult, name string) (string, error) {
	i := result.ColumnIndex(strings.TrimSpace(name))
	if i < 0 {
		return "", fmt.Errorf("unknown column %q (columns: %s)", name, strings.Join(result.Columns, ", "))
	}
	return result.Columns[i], nil
}

// resultFilters rewrites the column part of column=v1,v2 arguments
func resultFilters(result models.QueryResult, args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		column, values, ok := strings.Cut(arg, "=")
		if !ok {
			// parseFilters reports the malformed argument
			out = append(out, arg)
			continue
		}
		name, err := resultColumn(result, column)
		if err != nil {
			return nil, err
		}
		out = append(out, name+"="+values)
	}
	return out, nil
}
