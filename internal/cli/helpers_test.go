package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyquery/internal/db/connection"
	"github.com/rebeliceyang/lazyquery/internal/models"
)

// testEnv is a config file pointing at a temp library, history and sqlite database
type testEnv struct {
	dir    string
	config string
	dbPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:    dir,
		config: filepath.Join(dir, "config.yaml"),
		dbPath: filepath.Join(dir, "claims.db"),
	}

	content := fmt.Sprintf(`
general:
  default_data_source: local
  list_box_threshold: 2
data_sources:
  - name: local
    driver: sqlite3
    dsn: %s
    database: main
  - name: neon
    driver: odbc
    dsn: DSN=NEON_DSN
library:
  path: %s
history:
  path: %s
log:
  level: error
`, env.dbPath, filepath.Join(dir, "queries.yaml"), filepath.Join(dir, "history.db"))
	require.NoError(t, os.WriteFile(env.config, []byte(content), 0644))
	return env
}

// seed creates the claim and member tables
func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	pool, err := connection.NewPool(ctx, models.DataSourceConfig{
		Name:   "seed",
		Driver: connection.DriverSQLite,
		DSN:    e.dbPath,
	})
	require.NoError(t, err)
	defer pool.Close()

	stmts := []string{
		`CREATE TABLE member (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE claim (id INTEGER PRIMARY KEY, member_id INTEGER REFERENCES member(id), status TEXT, amount REAL)`,
		`INSERT INTO member VALUES (1, 'O''Brien'), (2, 'Smith')`,
		`INSERT INTO claim VALUES (10, 1, 'OPEN', 5.5), (11, 1, 'CLOSED', 7), (12, 2, 'OPEN', 12)`,
	}
	for _, stmt := range stmts {
		_, err := pool.Execute(ctx, stmt)
		require.NoError(t, err, stmt)
	}
}

// run executes the root command with args and returns stdout
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "lazyquery %v", args)
	return out
}
