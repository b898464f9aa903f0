package metadata

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/rebeliceyang/lazyquery/internal/db/connection"
	"github.com/rebeliceyang/lazyquery/internal/models"
)

// ListTables returns every user table and view of the data source
func ListTables(ctx context.Context, pool *connection.Pool) ([]models.TableInfo, error) {
	var qb sq.SelectBuilder
	switch catalogOf(pool) {
	case CatalogSQLite:
		qb = sq.Select("name", "'main' AS table_schema", "UPPER(type) AS table_type").
			From("sqlite_master").
			Where(sq.Eq{"type": []string{"table", "view"}}).
			Where(sq.NotLike{"name": "sqlite_%"}).
			OrderBy("name")
	default:
		qb = sq.Select("table_name AS name", "table_schema", "table_type").
			From("information_schema.tables").
			Where(sq.NotEq{"table_schema": []string{"information_schema", "pg_catalog"}}).
			OrderBy("table_schema", "table_name")
	}

	query, args, err := qb.PlaceholderFormat(placeholders(pool)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build table listing: %w", err)
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	tables := make([]models.TableInfo, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, models.TableInfo{
			Name:   connection.ToString(row["name"]),
			Schema: connection.ToString(row["table_schema"]),
			Type:   normalizeTableType(connection.ToString(row["table_type"])),
		})
	}

	return tables, nil
}

func normalizeTableType(t string) string {
	switch t {
	case "BASE TABLE":
		return "TABLE"
	default:
		return t
	}
}
