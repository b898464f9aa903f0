package metadata

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/rebeliceyang/lazyquery/internal/db/connection"
	"github.com/rebeliceyang/lazyquery/internal/models"
)

// ListFields retrieves column metadata for a table
func ListFields(ctx context.Context, pool *connection.Pool, table string) ([]models.FieldInfo, error) {
	var (
		query string
		args  []interface{}
		err   error
	)
	switch catalogOf(pool) {
	case CatalogSQLite:
		query = `
			SELECT
				name AS column_name,
				type AS data_type,
				CASE WHEN "notnull" = 0 THEN 'YES' ELSE 'NO' END AS is_nullable,
				cid + 1 AS ordinal_position
			FROM pragma_table_info(?)
			ORDER BY cid
		`
		args = []interface{}{table}
	default:
		query, args, err = sq.Select("column_name", "data_type", "is_nullable", "ordinal_position").
			From("information_schema.columns").
			Where(sq.Expr("UPPER(table_name) = UPPER(?)", table)).
			OrderBy("ordinal_position").
			PlaceholderFormat(placeholders(pool)).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build field listing: %w", err)
		}
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	fields := make([]models.FieldInfo, 0, len(rows))
	for _, row := range rows {
		position, _ := strconv.Atoi(connection.ToString(row["ordinal_position"]))
		fields = append(fields, models.FieldInfo{
			FieldRef: models.FieldRef{
				Table:    table,
				Field:    connection.ToString(row["column_name"]),
				DataType: strings.ToUpper(connection.ToString(row["data_type"])),
			},
			Nullable: strings.EqualFold(connection.ToString(row["is_nullable"]), "YES"),
			Position: position,
		})
	}

	return fields, nil
}
