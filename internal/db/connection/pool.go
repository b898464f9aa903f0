package connection

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// database/sql drivers selectable through DataSourceConfig.Driver
	_ "github.com/alexbrainman/odbc"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rebeliceyang/lazyquery/internal/models"
)

// Supported driver names
const (
	DriverODBC     = "odbc"
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

// Pool wraps a database/sql handle with its data source configuration
type Pool struct {
	db     *sql.DB
	config models.DataSourceConfig
}

// NewPool opens and pings a data source
func NewPool(ctx context.Context, config models.DataSourceConfig) (*Pool, error) {
	driver := config.Driver
	if driver == "" {
		driver = DriverODBC
	}

	db, err := sql.Open(driver, buildConnectionString(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open data source %s: %w", config.Name, err)
	}

	// Configure pool settings
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping data source %s: %w", config.Name, err)
	}

	return &Pool{
		db:     db,
		config: config,
	}, nil
}

// Close closes the connection pool
func (p *Pool) Close() {
	if p.db != nil {
		_ = p.db.Close()
	}
}

// Ping tests the connection
func (p *Pool) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Config returns the data source configuration the pool was opened with
func (p *Pool) Config() models.DataSourceConfig {
	return p.config
}

// DB returns the underlying *sql.DB
func (p *Pool) DB() *sql.DB {
	return p.db
}

// QueryResult represents a query result with columns and rows
type QueryResult struct {
	Columns []string
	Rows    []map[string]interface{}
}

// Query executes a query
func (p *Pool) Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	res, err := p.QueryWithColumns(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// QueryWithColumns executes a query and returns column names in order
func (p *Pool) QueryWithColumns(ctx context.Context, query string, args ...interface{}) (*QueryResult, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}
	for rows.Next() {
		values, err := scanValues(rows, len(columns))
		if err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	return &QueryResult{
		Columns: columns,
		Rows:    results,
	}, rows.Err()
}

// QueryValues executes a query and returns raw values in column order
func (p *Pool) QueryValues(ctx context.Context, query string, args ...interface{}) ([]string, [][]interface{}, error) {
	columns, results, _, err := p.QueryLimit(ctx, 0, query, args...)
	return columns, results, err
}

// QueryLimit executes a query and reads at most limit rows from the cursor.
// more is true when the cursor had further rows. limit <= 0 reads every row.
func (p *Pool) QueryLimit(ctx context.Context, limit int, query string, args ...interface{}) (columns []string, results [][]interface{}, more bool, err error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, false, err
	}
	defer func() { _ = rows.Close() }()

	columns, err = rows.Columns()
	if err != nil {
		return nil, nil, false, err
	}

	for rows.Next() {
		if limit > 0 && len(results) == limit {
			more = true
			break
		}
		values, err := scanValues(rows, len(columns))
		if err != nil {
			return nil, nil, false, err
		}
		results = append(results, values)
	}

	return columns, results, more, rows.Err()
}

// QueryRow executes a query that returns a single row
func (p *Pool) QueryRow(ctx context.Context, query string, args ...interface{}) (map[string]interface{}, error) {
	rows, err := p.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows returned")
	}
	return rows[0], nil
}

// Execute executes a statement without returning rows
func (p *Pool) Execute(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanValues(rows *sql.Rows, n int) ([]interface{}, error) {
	values := make([]interface{}, n)
	ptrs := make([]interface{}, n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return values, nil
}

// buildConnectionString appends credentials to the configured DSN.
// ODBC strings take UID/PWD attributes; other drivers get the DSN unchanged.
func buildConnectionString(config models.DataSourceConfig) string {
	connStr := config.DSN
	if config.Driver != "" && config.Driver != DriverODBC {
		return connStr
	}

	if connStr != "" && !strings.Contains(connStr, "=") {
		connStr = "DSN=" + connStr
	}
	if config.User != "" && !hasAttribute(connStr, "UID") {
		connStr = appendAttribute(connStr, "UID", config.User)
	}
	if config.Password != "" && !config.HasPassword() {
		connStr = appendAttribute(connStr, "PWD", config.Password)
	}
	return connStr
}
