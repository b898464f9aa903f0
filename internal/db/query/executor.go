package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rebeliceyang/lazyquery/internal/db/connection"
	"github.com/rebeliceyang/lazyquery/internal/history"
	"github.com/rebeliceyang/lazyquery/internal/models"
	"github.com/rebeliceyang/lazyquery/internal/querybuilder"
)

// Execute executes a SQL query and returns the results with every cell
// rendered as a string. Failures are reported in QueryResult.Error.
func Execute(ctx context.Context, pool *connection.Pool, sql string) models.QueryResult {
	start := time.Now()

	columns, rows, err := pool.QueryValues(ctx, sql)
	if err != nil {
		return models.QueryResult{
			Error:    err,
			Duration: time.Since(start),
		}
	}

	result := make([][]string, len(rows))
	for i, values := range rows {
		row := make([]string, len(values))
		for j, v := range values {
			row[j] = connection.FormatValue(v)
		}
		result[i] = row
	}

	return models.QueryResult{
		Columns:      columns,
		Rows:         result,
		RowsAffected: int64(len(result)),
		Duration:     time.Since(start),
	}
}

// Runner compiles query definitions, executes them and records the runs
type Runner struct {
	Compiler *querybuilder.Compiler
	History  *history.Store // optional
	Timeout  time.Duration
	Logger   *slog.Logger
}

// NewRunner creates a runner. history may be nil.
func NewRunner(compiler *querybuilder.Compiler, store *history.Store, timeout time.Duration, logger *slog.Logger) *Runner {
	if compiler == nil {
		compiler = querybuilder.NewCompiler()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		Compiler: compiler,
		History:  store,
		Timeout:  timeout,
		Logger:   logger,
	}
}

// Run compiles def for the pool's data source and executes it.
// The compiled SQL is returned even when execution fails.
func (r *Runner) Run(ctx context.Context, pool *connection.Pool, def *models.QueryDefinition) (string, models.QueryResult, error) {
	cfg := pool.Config()

	sql, err := r.Compiler.Compile(def, cfg.OdbcName())
	if err != nil {
		return "", models.QueryResult{}, fmt.Errorf("failed to compile query %q: %w", def.Name, err)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	r.Logger.Debug("executing query", "query", def.Name, "data_source", cfg.Name, "sql", sql)
	result := Execute(ctx, pool, sql)
	r.record(def, cfg, sql, result)

	if result.Error != nil {
		r.Logger.Error("query failed", "query", def.Name, "data_source", cfg.Name, "error", result.Error)
		return sql, result, fmt.Errorf("query %q failed: %w", def.Name, result.Error)
	}

	r.Logger.Info("query executed", "query", def.Name, "data_source", cfg.Name,
		"rows", result.RowsAffected, "duration", result.Duration)
	return sql, result, nil
}

func (r *Runner) record(def *models.QueryDefinition, cfg models.DataSourceConfig, sql string, result models.QueryResult) {
	if r.History == nil {
		return
	}

	entry := history.HistoryEntry{
		QueryName:    def.Name,
		DataSource:   cfg.Name,
		DatabaseName: cfg.Database,
		Query:        sql,
		Duration:     result.Duration,
		RowsAffected: result.RowsAffected,
		Success:      result.Error == nil,
	}
	if result.Error != nil {
		entry.ErrorMessage = result.Error.Error()
	}

	if _, err := r.History.Add(entry); err != nil {
		r.Logger.Warn("failed to record history", "query", def.Name, "error", err)
	}
}
