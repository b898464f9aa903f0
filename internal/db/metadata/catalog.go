package metadata

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/rebeliceyang/lazyquery/internal/db/connection"
)

// Catalog flavours a data source can be configured with
const (
	CatalogInformationSchema = "information_schema"
	CatalogSQLite            = "sqlite"
)

func catalogOf(pool *connection.Pool) string {
	cfg := pool.Config()
	if cfg.Catalog != "" {
		return cfg.Catalog
	}
	if cfg.Driver == connection.DriverSQLite {
		return CatalogSQLite
	}
	return CatalogInformationSchema
}

func placeholders(pool *connection.Pool) sq.PlaceholderFormat {
	if pool.Config().Driver == connection.DriverPostgres {
		return sq.Dollar
	}
	return sq.Question
}
