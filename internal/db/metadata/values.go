package metadata

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/rebeliceyang/lazyquery/internal/db/connection"
	"github.com/rebeliceyang/lazyquery/internal/models"
)

// UniqueValues returns up to limit distinct non-NULL values of table.field in
// ascending order. truncated is true when more values exist.
// limit <= 0 reads every value.
func UniqueValues(ctx context.Context, pool *connection.Pool, table, field string, limit int) (values []string, truncated bool, err error) {
	column := table + "." + field
	query, _, err := sq.Select(column).
		Distinct().
		From(table).
		Where(column + " IS NOT NULL").
		OrderBy(column).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build value listing: %w", err)
	}

	_, rows, more, err := pool.QueryLimit(ctx, limit, query)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get unique values of %s: %w", column, err)
	}

	for _, row := range rows {
		values = append(values, connection.FormatValue(row[0]))
	}
	return values, more, nil
}

// NewCriteria creates a criteria field for a dropped field. A bounded value
// list (not truncated, at least one value) is offered as a list box.
func NewCriteria(field models.FieldRef, values []string, truncated bool) models.CriteriaField {
	return models.CriteriaField{
		Table:          field.Table,
		Field:          field.Field,
		DataType:       field.DataType,
		HasListBox:     !truncated && len(values) > 0,
		SelectedValues: []string{},
		Operator:       models.OpEquals,
	}
}
