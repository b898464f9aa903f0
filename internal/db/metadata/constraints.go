package metadata

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/rebeliceyang/lazyquery/internal/db/connection"
	"github.com/rebeliceyang/lazyquery/internal/models"
)

// ForeignKey is one column of a foreign key constraint
type ForeignKey struct {
	Table         string
	Column        string
	ForeignTable  string
	ForeignColumn string
}

// GetForeignKeys retrieves the foreign key columns declared on table
func GetForeignKeys(ctx context.Context, pool *connection.Pool, table string) ([]ForeignKey, error) {
	var (
		query string
		args  []interface{}
		err   error
	)
	switch catalogOf(pool) {
	case CatalogSQLite:
		query = `SELECT "from" AS column_name, "table" AS foreign_table, "to" AS foreign_column FROM pragma_foreign_key_list(?) ORDER BY id, seq`
		args = []interface{}{table}
	default:
		query, args, err = sq.Select(
			"kcu.column_name",
			"ccu.table_name AS foreign_table",
			"ccu.column_name AS foreign_column",
		).
			From("information_schema.table_constraints tc").
			Join("information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema").
			Join("information_schema.constraint_column_usage ccu ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema").
			Where(sq.Eq{"tc.constraint_type": "FOREIGN KEY"}).
			Where(sq.Expr("UPPER(tc.table_name) = UPPER(?)", table)).
			OrderBy("kcu.ordinal_position").
			PlaceholderFormat(placeholders(pool)).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build foreign key listing: %w", err)
		}
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get foreign keys: %w", err)
	}

	keys := make([]ForeignKey, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, ForeignKey{
			Table:         table,
			Column:        connection.ToString(row["column_name"]),
			ForeignTable:  connection.ToString(row["foreign_table"]),
			ForeignColumn: connection.ToString(row["foreign_column"]),
		})
	}
	return keys, nil
}

// SuggestJoin builds a join from left to right out of the foreign keys
// declared on left. ok is false when no key references right.
func SuggestJoin(keys []ForeignKey, left, right string, joinType models.JoinType) (models.JoinSpec, bool) {
	spec := models.JoinSpec{LeftTable: left, Type: joinType, RightTable: right}
	for _, k := range keys {
		if !models.SameTable(k.Table, left) || !strings.EqualFold(k.ForeignTable, right) {
			continue
		}
		spec.Conditions = append(spec.Conditions, models.JoinCondition{
			LeftField:  k.Column,
			RightField: k.ForeignColumn,
		})
	}
	return spec, len(spec.Conditions) > 0
}
