package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyquery/internal/db/metadata"
	"github.com/rebeliceyang/lazyquery/internal/library"
	"github.com/rebeliceyang/lazyquery/internal/models"
)

// editQuery opens name in a session, applies fn to the working copy and commits it
func editQuery(opts *RootOptions, name string, fn func(q *models.QueryDefinition) error) error {
	lib, err := opts.library()
	if err != nil {
		return err
	}
	session := library.NewSession(lib)
	q, err := session.Open(name)
	if err != nil {
		return err
	}
	if err := fn(q); err != nil {
		return err
	}
	return session.Commit()
}

// resolveField returns the field reference for key. With an explicit data
// type no data source is contacted.
func resolveField(ctx context.Context, opts *RootOptions, q *models.QueryDefinition, key models.FieldKey, dataType string) (models.FieldRef, error) {
	if dataType != "" {
		return models.FieldRef{Table: key.Table, Field: key.Field, DataType: dataType}, nil
	}
	scanner, err := opts.scanner(ctx, q.DataSource)
	if err != nil {
		return models.FieldRef{}, err
	}
	ref, ok, err := scanner.Field(ctx, key.Table, key.Field)
	if err != nil {
		return models.FieldRef{}, err
	}
	if !ok {
		return models.FieldRef{}, fmt.Errorf("field %s not found", key.Qualified())
	}
	return ref, nil
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return i, nil
}

// NewCriteriaCommand creates the criteria command group.
func NewCriteriaCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "criteria",
		Short: "Edit the criteria of a query",
	}
	cmd.AddCommand(newCriteriaAddCommand(opts))
	cmd.AddCommand(newCriteriaRemoveCommand(opts))
	return cmd
}

func newCriteriaAddCommand(opts *RootOptions) *cobra.Command {
	var (
		dataType string
		values   []string
		text     string
		operator string
	)

	cmd := &cobra.Command{
		Use:   "add <query> <table.field>",
		Short: "Add a criteria field",
		Long: `Add a criteria field to a query.

Without --type the field is looked up in the query's data source. Fields
with few distinct values become list boxes matched with --values; other
fields are matched against --text using --op.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := models.ParseFieldKey(args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			return editQuery(opts, args[0], func(q *models.QueryDefinition) error {
				ref, err := resolveField(ctx, opts, q, key, dataType)
				if err != nil {
					return err
				}

				var crit models.CriteriaField
				var available []string
				if dataType != "" {
					crit = metadata.NewCriteria(ref, values, len(values) == 0)
				} else {
					scanner, err := opts.scanner(ctx, q.DataSource)
					if err != nil {
						return err
					}
					crit, available, err = scanner.Criteria(ctx, ref, opts.cfg.General.ListBoxThreshold)
					if err != nil {
						return err
					}
				}

				if crit.HasListBox {
					crit.SelectedValues = append([]string{}, values...)
				}
				crit.TextValue = text
				if operator != "" {
					crit.Operator = models.ParseStringOperator(operator)
				}
				q.AddCriteria(crit)

				out := cmd.OutOrStdout()
				if crit.HasListBox {
					fmt.Fprintf(out, "Added list box criteria %s", ref.Key().Qualified())
					if len(available) > 0 {
						fmt.Fprintf(out, " (%d values: %s)", len(available), strings.Join(available, ", "))
					}
					fmt.Fprintln(out)
				} else {
					fmt.Fprintf(out, "Added text criteria %s\n", ref.Key().Qualified())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dataType, "type", "", "data type, skips the data source lookup")
	cmd.Flags().StringSliceVar(&values, "values", nil, "selected list box values")
	cmd.Flags().StringVar(&text, "text", "", "text value")
	cmd.Flags().StringVar(&operator, "op", "", "text operator (equals|contains|begins with|ends with)")
	return cmd
}

func newCriteriaRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <query> <index|table.field>",
		Short: "Remove a criteria field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editQuery(opts, args[0], func(q *models.QueryDefinition) error {
				keys := make([]models.FieldKey, len(q.Criteria))
				for i, c := range q.Criteria {
					keys[i] = c.Key()
				}
				i, err := locate(keys, args[1])
				if err != nil {
					return err
				}
				return q.RemoveCriteria(i)
			})
		},
	}
}

// locate resolves an index or table.field argument against keys
func locate(keys []models.FieldKey, arg string) (int, error) {
	if i, err := strconv.Atoi(arg); err == nil {
		return i, nil
	}
	key, err := models.ParseFieldKey(arg)
	if err != nil {
		return 0, err
	}
	for i, k := range keys {
		if k.Matches(key.Table, key.Field) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("field %s is not part of the query", key.Qualified())
}

// NewDisplayCommand creates the display command group.
func NewDisplayCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "display",
		Short: "Edit the display fields of a query",
	}
	cmd.AddCommand(newDisplayAddCommand(opts))
	cmd.AddCommand(newDisplayRemoveCommand(opts))
	return cmd
}

func newDisplayAddCommand(opts *RootOptions) *cobra.Command {
	var dataType string

	cmd := &cobra.Command{
		Use:   "add <query> <table.field>...",
		Short: "Append display fields",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return editQuery(opts, args[0], func(q *models.QueryDefinition) error {
				for _, arg := range args[1:] {
					key, err := models.ParseFieldKey(arg)
					if err != nil {
						return err
					}
					ref, err := resolveField(ctx, opts, q, key, dataType)
					if err != nil {
						return err
					}
					q.AddDisplay(models.DisplayField{Table: ref.Table, Field: ref.Field, DataType: ref.DataType})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Query %q now displays %d field(s)\n", q.Name, len(q.Display))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dataType, "type", "", "data type, skips the data source lookup")
	return cmd
}

func newDisplayRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <query> <index|table.field>",
		Short: "Remove a display field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editQuery(opts, args[0], func(q *models.QueryDefinition) error {
				keys := make([]models.FieldKey, len(q.Display))
				for i, d := range q.Display {
					keys[i] = d.Key()
				}
				i, err := locate(keys, args[1])
				if err != nil {
					return err
				}
				return q.RemoveDisplay(i)
			})
		},
	}
}

// NewJoinCommand creates the join command group.
func NewJoinCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Edit the joins of a query",
	}
	cmd.AddCommand(newJoinAddCommand(opts))
	cmd.AddCommand(newJoinRemoveCommand(opts))
	cmd.AddCommand(newJoinMoveCommand(opts))
	return cmd
}

func newJoinAddCommand(opts *RootOptions) *cobra.Command {
	var (
		joinType string
		on       []string
		auto     bool
	)

	cmd := &cobra.Command{
		Use:   "add <query> <left-table> <right-table>",
		Short: "Append a join",
		Long: `Append a join to a query.

Conditions are given as --on left_field=right_field (repeatable). With
--auto they are taken from the foreign keys declared on the left table.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			jt, err := models.ParseJoinType(joinType)
			if err != nil {
				return err
			}
			left, right := args[1], args[2]
			ctx := cmd.Context()

			return editQuery(opts, args[0], func(q *models.QueryDefinition) error {
				spec := models.JoinSpec{LeftTable: left, Type: jt, RightTable: right}
				for _, c := range on {
					l, r, ok := strings.Cut(c, "=")
					if !ok || strings.TrimSpace(l) == "" || strings.TrimSpace(r) == "" {
						return fmt.Errorf("invalid join condition %q: want left_field=right_field", c)
					}
					spec.Conditions = append(spec.Conditions, models.JoinCondition{
						LeftField:  strings.TrimSpace(l),
						RightField: strings.TrimSpace(r),
					})
				}

				if auto {
					pool, err := opts.connect(ctx, q.DataSource)
					if err != nil {
						return err
					}
					keys, err := metadata.GetForeignKeys(ctx, pool, left)
					if err != nil {
						return err
					}
					suggested, ok := metadata.SuggestJoin(keys, left, right, jt)
					if !ok {
						return fmt.Errorf("no foreign key from %s references %s", left, right)
					}
					spec.Conditions = append(spec.Conditions, suggested.Conditions...)
				}

				q.AddJoin(spec)
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s with %d condition(s)\n", jt, right, len(spec.Conditions))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&joinType, "type", "inner", "join type (inner|left|right)")
	cmd.Flags().StringArrayVar(&on, "on", nil, "join condition left_field=right_field (repeatable)")
	cmd.Flags().BoolVar(&auto, "auto", false, "derive conditions from foreign keys")
	return cmd
}

func newJoinRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <query> <index>",
		Short: "Remove a join",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return editQuery(opts, args[0], func(q *models.QueryDefinition) error {
				return q.RemoveJoin(i)
			})
		},
	}
}

func newJoinMoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <query> <from> <to>",
		Short: "Move a join to another position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			to, err := parseIndex(args[2])
			if err != nil {
				return err
			}
			return editQuery(opts, args[0], func(q *models.QueryDefinition) error {
				return q.MoveJoin(from, to)
			})
		},
	}
}
