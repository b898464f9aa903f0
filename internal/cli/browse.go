package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyquery/internal/autofilter"
	"github.com/rebeliceyang/lazyquery/internal/db/metadata"
	"github.com/rebeliceyang/lazyquery/internal/dirscan"
	"github.com/rebeliceyang/lazyquery/internal/export"
	"github.com/rebeliceyang/lazyquery/internal/models"
	"github.com/rebeliceyang/lazyquery/internal/ui/theme"
)

// listingFlags are the filter flags shared by the listing commands
type listingFlags struct {
	filters     []string
	interactive []string
}

func (f *listingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "column filter column=v1,v2 (repeatable)")
	cmd.Flags().StringArrayVarP(&f.interactive, "interactive", "i", nil, "pick the filter of a column interactively (repeatable)")
}

// filterListing applies the listing flags to e and returns the visible rows
func filterListing[R any](opts *RootOptions, e *autofilter.Engine[R], f *listingFlags) ([]R, error) {
	if err := applyFilters(e, f.filters); err != nil {
		return nil, err
	}
	if len(f.interactive) > 0 {
		if err := pickFilters(e, f.interactive, theme.GetTheme(opts.cfg.UI.Theme)); err != nil {
			return nil, err
		}
	}
	return e.VisibleRows(), nil
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(opts *RootOptions) *cobra.Command {
	flags := &listingFlags{}

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables of a data source",
		Long: `List the tables of a data source.

Filter columns: Name, Schema, Type.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			scanner, err := opts.scanner(ctx, "")
			if err != nil {
				return err
			}
			tables, err := scanner.Tables(ctx)
			if err != nil {
				return err
			}

			visible, err := filterListing(opts, autofilter.New(tables, autofilter.TableProjector), flags)
			if err != nil {
				return err
			}

			rows := make([][]string, len(visible))
			for i, t := range visible {
				rows[i] = []string{t.Name, t.Schema, t.Type}
			}
			export.WriteTable(cmd.OutOrStdout(), []string{autofilter.ColName, autofilter.ColSchema, autofilter.ColType}, rows)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(opts *RootOptions) *cobra.Command {
	flags := &listingFlags{}

	cmd := &cobra.Command{
		Use:   "fields <table>...",
		Short: "List the fields of one or more tables",
		Long: `List the fields of one or more tables.

Filter columns: Table, Field, Type.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			scanner, err := opts.scanner(ctx, "")
			if err != nil {
				return err
			}

			var fields []models.FieldInfo
			for _, table := range args {
				f, err := scanner.Fields(ctx, table)
				if err != nil {
					return err
				}
				fields = append(fields, f...)
			}

			visible, err := filterListing(opts, autofilter.New(fields, autofilter.FieldProjector), flags)
			if err != nil {
				return err
			}

			rows := make([][]string, len(visible))
			for i, f := range visible {
				rows[i] = []string{f.Table, f.Field, f.DataType, strconv.FormatBool(f.Nullable)}
			}
			export.WriteTable(cmd.OutOrStdout(), []string{autofilter.ColTable, autofilter.ColField, autofilter.ColType, "Nullable"}, rows)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// NewValuesCommand creates the values command.
func NewValuesCommand(opts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "values <table> <field>",
		Short: "List the distinct values of a field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := opts.connect(ctx, "")
			if err != nil {
				return err
			}

			if limit <= 0 {
				limit = opts.cfg.General.ListBoxThreshold
			}
			values, truncated, err := metadata.UniqueValues(ctx, pool, args[0], args[1], limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, v := range values {
				fmt.Fprintln(out, v)
			}
			if truncated {
				fmt.Fprintf(out, "(more than %d values, shown as a text field)\n", limit)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum values (default: general.list_box_threshold)")
	return cmd
}

// NewFilesCommand creates the files command.
func NewFilesCommand(opts *RootOptions) *cobra.Command {
	flags := &listingFlags{}
	scan := dirscan.Options{}

	cmd := &cobra.Command{
		Use:   "files [dir]",
		Short: "List files, e.g. exported results or SQL scripts",
		Long: `List the files of a directory.

Filter columns: Name, Directory, Extension, Modified.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			entries, err := dirscan.Scan(root, scan)
			if err != nil {
				return err
			}

			visible, err := filterListing(opts, autofilter.New(entries, autofilter.FileProjector), flags)
			if err != nil {
				return err
			}

			rows := make([][]string, len(visible))
			for i, f := range visible {
				rows[i] = []string{f.Name, f.Directory, f.Extension, strconv.FormatInt(f.Size, 10), f.Modified.Format(autofilter.TimestampLayout)}
			}
			export.WriteTable(cmd.OutOrStdout(), []string{autofilter.ColName, autofilter.ColDirectory, autofilter.ColExtension, "Size", autofilter.ColModified}, rows)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&scan.Recursive, "recursive", "r", false, "descend into subdirectories")
	cmd.Flags().StringSliceVar(&scan.Extensions, "ext", nil, "only files with these extensions")
	cmd.Flags().BoolVar(&scan.Hidden, "hidden", false, "include dot files")
	return cmd
}
