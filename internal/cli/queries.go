package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyquery/internal/autofilter"
	"github.com/rebeliceyang/lazyquery/internal/export"
	"github.com/rebeliceyang/lazyquery/internal/models"
)

// NewQueriesCommand creates the queries command group.
func NewQueriesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "queries",
		Aliases: []string{"q"},
		Short:   "Manage saved query definitions",
	}

	cmd.AddCommand(newQueriesListCommand(opts))
	cmd.AddCommand(newQueriesNewCommand(opts))
	cmd.AddCommand(newQueriesDeleteCommand(opts))
	cmd.AddCommand(newQueriesRenameCommand(opts))
	cmd.AddCommand(newQueriesShowCommand(opts))

	return cmd
}

func newQueriesListCommand(opts *RootOptions) *cobra.Command {
	var filters []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := opts.library()
			if err != nil {
				return err
			}

			columns := []string{"Name", "Data Source", "Criteria", "Display", "Joins", "Modified"}
			var rows [][]string
			for _, q := range lib.List() {
				rows = append(rows, []string{
					q.Name,
					q.DataSource,
					strconv.Itoa(len(q.Criteria)),
					strconv.Itoa(len(q.Display)),
					strconv.Itoa(len(q.Joins)),
					q.ModifiedAt.Format(autofilter.TimestampLayout),
				})
			}

			e := autofilter.New(rows, autofilter.ResultProjector(columns))
			if err := applyFilters(e, filters); err != nil {
				return err
			}
			export.WriteTable(cmd.OutOrStdout(), columns, e.VisibleRows())
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "column filter column=v1,v2 (repeatable)")
	return cmd
}

func newQueriesNewCommand(opts *RootOptions) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := opts.library()
			if err != nil {
				return err
			}
			if source != "" {
				if _, err := opts.cfg.DataSource(source); err != nil {
					return err
				}
			}
			q, err := lib.Create(args[0])
			if err != nil {
				return err
			}
			if source != "" {
				q.SetDataSource(source)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created query %q\n", q.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "data-source", "", "bind the query to a configured data source")
	return cmd
}

func newQueriesDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := opts.library()
			if err != nil {
				return err
			}
			if err := lib.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted query %q\n", args[0])
			return nil
		},
	}
}

func newQueriesRenameCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename a query",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := opts.library()
			if err != nil {
				return err
			}
			if err := lib.Rename(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed query %q to %q\n", args[0], args[1])
			return nil
		},
	}
}

func newQueriesShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show the criteria, display fields and joins of a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := opts.library()
			if err != nil {
				return err
			}
			q, err := lib.Get(args[0])
			if err != nil {
				return err
			}
			printQuery(cmd, q)
			return nil
		},
	}
}

func printQuery(cmd *cobra.Command, q *models.QueryDefinition) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Query: %s\n", q.Name)
	if q.DataSource != "" {
		fmt.Fprintf(out, "Data source: %s\n", q.DataSource)
	}

	fmt.Fprintln(out, "\nCriteria:")
	var rows [][]string
	for i, c := range q.Criteria {
		value := c.TextValue
		op := string(c.Operator)
		if c.HasListBox {
			value = strings.Join(c.SelectedValues, ", ")
			op = "in"
		}
		rows = append(rows, []string{strconv.Itoa(i), c.Table + "." + c.Field, c.DataType, op, value})
	}
	export.WriteTable(out, []string{"#", "Field", "Type", "Operator", "Value"}, rows)

	fmt.Fprintln(out, "\nDisplay:")
	rows = nil
	for i, d := range q.Display {
		rows = append(rows, []string{strconv.Itoa(i), d.Table + "." + d.Field, d.DataType})
	}
	export.WriteTable(out, []string{"#", "Field", "Type"}, rows)

	fmt.Fprintln(out, "\nJoins:")
	rows = nil
	for i, j := range q.Joins {
		var on []string
		for _, c := range j.Conditions {
			on = append(on, fmt.Sprintf("%s.%s = %s.%s", j.LeftTable, c.LeftField, j.RightTable, c.RightField))
		}
		rows = append(rows, []string{strconv.Itoa(i), j.LeftTable, string(j.Type), j.RightTable, strings.Join(on, " AND ")})
	}
	export.WriteTable(out, []string{"#", "Left", "Type", "Right", "On"}, rows)
}
