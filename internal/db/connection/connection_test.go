package connection

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/rebeliceyang/lazyquery/internal/models"
)

func TestBuildConnectionString(t *testing.T) {
	tests := []struct {
		name   string
		config models.DataSourceConfig
		want   string
	}{
		{
			name:   "bare odbc name",
			config: models.DataSourceConfig{Driver: "odbc", DSN: "NEON_DSN"},
			want:   "DSN=NEON_DSN",
		},
		{
			name:   "odbc with credentials",
			config: models.DataSourceConfig{Driver: "odbc", DSN: "DSN=NEON_DSN", User: "me", Password: "pw"},
			want:   "DSN=NEON_DSN;UID=me;PWD=pw",
		},
		{
			name:   "odbc keeps explicit credentials",
			config: models.DataSourceConfig{DSN: "DSN=X;UID=a;PWD=b;", User: "me", Password: "pw"},
			want:   "DSN=X;UID=a;PWD=b;",
		},
		{
			name:   "sqlite unchanged",
			config: models.DataSourceConfig{Driver: "sqlite3", DSN: "file:test.db", User: "me"},
			want:   "file:test.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildConnectionString(tt.config); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPool_SQLiteQuery(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	pool, err := NewPool(ctx, models.DataSourceConfig{Name: "local", Driver: DriverSQLite, DSN: path})
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Execute(ctx, "CREATE TABLE t (id INTEGER, name TEXT)"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := pool.Execute(ctx, "INSERT INTO t VALUES (1, 'a'), (2, 'b')"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	res, err := pool.QueryWithColumns(ctx, "SELECT id, name FROM t ORDER BY id")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(res.Columns) != 2 || res.Columns[0] != "id" || res.Columns[1] != "name" {
		t.Errorf("unexpected columns: %v", res.Columns)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}

	row, err := pool.QueryRow(ctx, "SELECT COUNT(*) AS n FROM t")
	if err != nil {
		t.Fatalf("QueryRow failed: %v", err)
	}
	if n, ok := row["n"].(int64); !ok || n != 2 {
		t.Errorf("expected count 2, got %v", row["n"])
	}
}

func TestPool_QueryLimit(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "limit.db")

	pool, err := NewPool(ctx, models.DataSourceConfig{Name: "local", Driver: DriverSQLite, DSN: path})
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Execute(ctx, "CREATE TABLE t (id INTEGER)"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := pool.Execute(ctx, "INSERT INTO t VALUES (1), (2), (3)"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	tests := []struct {
		name     string
		max      int
		wantRows int
		wantMore bool
	}{
		{"below row count", 2, 2, true},
		{"exact row count", 3, 3, false},
		{"above row count", 10, 3, false},
		{"unlimited", 0, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, rows, more, err := pool.QueryLimit(ctx, tt.max, "SELECT id FROM t ORDER BY id")
			if err != nil {
				t.Fatalf("QueryLimit failed: %v", err)
			}
			if len(cols) != 1 || cols[0] != "id" {
				t.Errorf("unexpected columns: %v", cols)
			}
			if len(rows) != tt.wantRows {
				t.Errorf("expected %d rows, got %d", tt.wantRows, len(rows))
			}
			if more != tt.wantMore {
				t.Errorf("expected more=%v, got %v", tt.wantMore, more)
			}
		})
	}
}

func TestManager_ConnectAndDisconnect(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil, nil)
	cfg := models.DataSourceConfig{Name: "local", Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "m.db")}

	conn, err := m.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	again, err := m.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("second Connect failed: %v", err)
	}
	if conn != again {
		t.Error("expected the existing connection to be reused")
	}
	if err := m.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	if err := m.Disconnect("local"); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if _, err := m.GetActive(); err == nil {
		t.Error("expected no active connection after disconnect")
	}
	if err := m.Disconnect("local"); err == nil {
		t.Error("expected error disconnecting twice")
	}
}

func TestCredentialStore(t *testing.T) {
	keyring.MockInit()
	cs := NewCredentialStore()

	if _, err := cs.Get("prod", "me"); !errors.Is(err, ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound, got %v", err)
	}

	if err := cs.Save("prod", "me", "secret"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := cs.Get("prod", "me")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "secret" {
		t.Errorf("expected 'secret', got %q", got)
	}

	if err := cs.Delete("prod", "me"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := cs.Delete("prod", "me"); err != nil {
		t.Errorf("deleting a missing password should not fail: %v", err)
	}
}
