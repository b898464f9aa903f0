package query

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rebeliceyang/lazyquery/internal/db/connection"
	"github.com/rebeliceyang/lazyquery/internal/history"
	"github.com/rebeliceyang/lazyquery/internal/models"
)

func newTestPool(t *testing.T) *connection.Pool {
	t.Helper()
	ctx := context.Background()

	pool, err := connection.NewPool(ctx, models.DataSourceConfig{
		Name:     "local",
		Driver:   connection.DriverSQLite,
		DSN:      filepath.Join(t.TempDir(), "exec.db"),
		Database: "main",
	})
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	t.Cleanup(pool.Close)

	stmts := []string{
		`CREATE TABLE member (id INTEGER, name TEXT)`,
		`CREATE TABLE claim (id INTEGER, member_id INTEGER, status TEXT, amount REAL)`,
		`INSERT INTO member VALUES (1, 'O''Brien'), (2, 'Smith')`,
		`INSERT INTO claim VALUES (10, 1, 'OPEN', 5.5), (11, 1, 'CLOSED', 7), (12, 2, 'OPEN', NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Execute(ctx, stmt); err != nil {
			t.Fatalf("setup %q failed: %v", stmt, err)
		}
	}
	return pool
}

func TestExecute(t *testing.T) {
	pool := newTestPool(t)

	result := Execute(context.Background(), pool, "SELECT id, amount FROM claim ORDER BY id")
	if result.Error != nil {
		t.Fatalf("Execute failed: %v", result.Error)
	}
	if len(result.Columns) != 2 || result.Columns[0] != "id" {
		t.Errorf("unexpected columns: %v", result.Columns)
	}
	if result.RowsAffected != 3 {
		t.Errorf("expected 3 rows, got %d", result.RowsAffected)
	}
	if result.Rows[2][1] != "NULL" {
		t.Errorf("expected NULL rendering, got %q", result.Rows[2][1])
	}
	if result.Rows[0][1] != "5.5" {
		t.Errorf("expected 5.5, got %q", result.Rows[0][1])
	}
}

func TestExecute_Error(t *testing.T) {
	pool := newTestPool(t)

	result := Execute(context.Background(), pool, "SELECT nope FROM missing")
	if result.Error == nil {
		t.Fatal("expected error for bad SQL")
	}
}

func TestRunner_Run(t *testing.T) {
	pool := newTestPool(t)
	store, err := history.NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	def := models.NewQueryDefinition("id", "open claims")
	def.AddDisplay(models.DisplayField{Table: "claim", Field: "id"})
	def.AddDisplay(models.DisplayField{Table: "member", Field: "name"})
	def.AddJoin(models.JoinSpec{
		LeftTable:  "claim",
		Type:       models.InnerJoin,
		RightTable: "member",
		Conditions: []models.JoinCondition{{LeftField: "member_id", RightField: "id"}},
	})
	def.AddCriteria(models.CriteriaField{Table: "claim", Field: "status", DataType: "TEXT", HasListBox: true, SelectedValues: []string{"OPEN"}})
	def.AddCriteria(models.CriteriaField{Table: "member", Field: "name", DataType: "TEXT", TextValue: "O'Br", Operator: models.OpBeginsWith})

	runner := NewRunner(nil, store, time.Minute, nil)
	sql, result, err := runner.Run(context.Background(), pool, def)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(sql, "LIKE 'O''Br%'") {
		t.Errorf("unexpected SQL: %s", sql)
	}
	if len(result.Rows) != 1 || result.Rows[0][0] != "10" || result.Rows[0][1] != "O'Brien" {
		t.Errorf("unexpected rows: %v", result.Rows)
	}

	entries, err := store.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(entries) != 1 || entries[0].QueryName != "open claims" || !entries[0].Success {
		t.Errorf("unexpected history: %+v", entries)
	}
	if entries[0].DatabaseName != "main" || entries[0].DataSource != "local" {
		t.Errorf("unexpected history data source: %+v", entries[0])
	}
}

func TestRunner_RunRecordsFailure(t *testing.T) {
	pool := newTestPool(t)
	store, err := history.NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	def := models.NewQueryDefinition("id", "broken")
	def.AddDisplay(models.DisplayField{Table: "nowhere", Field: "x"})

	runner := NewRunner(nil, store, 0, nil)
	sql, _, err := runner.Run(context.Background(), pool, def)
	if err == nil {
		t.Fatal("expected execution error")
	}
	if sql != "SELECT nowhere.x FROM nowhere" {
		t.Errorf("expected compiled SQL to be returned, got %q", sql)
	}

	entries, _ := store.GetRecent(10)
	if len(entries) != 1 || entries[0].Success || entries[0].ErrorMessage == "" {
		t.Errorf("expected failed history entry, got %+v", entries)
	}
}

func TestRunner_RunWithoutDisplayFields(t *testing.T) {
	pool := newTestPool(t)
	runner := NewRunner(nil, nil, 0, nil)

	_, _, err := runner.Run(context.Background(), pool, models.NewQueryDefinition("id", "empty"))
	if err == nil {
		t.Fatal("expected compile error")
	}
}
