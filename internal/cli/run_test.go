package cli

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildStatusQuery(t *testing.T, env *testEnv) {
	t.Helper()
	env.seed(t)
	env.mustRun(t, "queries", "new", "status")
	env.mustRun(t, "display", "add", "status", "claim.id", "claim.status", "member.name")
	env.mustRun(t, "join", "add", "status", "claim", "member", "--on", "member_id=id")
}

func TestRun(t *testing.T) {
	env := newTestEnv(t)
	buildStatusQuery(t, env)

	out := env.mustRun(t, "run", "status")
	assert.Contains(t, out, "O'Brien")
	assert.Contains(t, out, "3 of 3 row(s)")
	assert.NotContains(t, out, "filters:")
}

func TestRun_FiltersAndExport(t *testing.T) {
	env := newTestEnv(t)
	buildStatusQuery(t, env)
	exportPath := filepath.Join(env.dir, "open.csv")

	out := env.mustRun(t, "run", "status", "--filter", "status=OPEN", "--filter", "name=Smith", "--export", exportPath, "--sql")
	assert.Contains(t, out, "SELECT claim.id, claim.status, member.name FROM claim")
	assert.Contains(t, out, "1 of 3 row(s)")
	assert.Contains(t, out, "filters: status=OPEN name=Smith")

	file, err := os.Open(exportPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "status", "name"},
		{"12", "OPEN", "Smith"},
	}, records)
}

func TestRun_FullSelectionIsNoFilter(t *testing.T) {
	env := newTestEnv(t)
	buildStatusQuery(t, env)

	out := env.mustRun(t, "run", "status", "--filter", "status=OPEN,CLOSED")
	assert.Contains(t, out, "3 of 3 row(s)")
	assert.NotContains(t, out, "filters:")
}

func TestRun_FilterIgnoresValuesNotInResult(t *testing.T) {
	env := newTestEnv(t)
	buildStatusQuery(t, env)

	out := env.mustRun(t, "run", "status", "--filter", "status=OPEN,TYPO")
	assert.Contains(t, out, "2 of 3 row(s)")
	assert.Contains(t, out, "filters: status=OPEN |")

	out = env.mustRun(t, "run", "status", "--filter", "status=Opne")
	assert.Contains(t, out, "3 of 3 row(s)")
	assert.NotContains(t, out, "filters:")

	out = env.mustRun(t, "run", "status", "--filter", "status=OPEN", "--filter", "status=")
	assert.Contains(t, out, "3 of 3 row(s)")
	assert.NotContains(t, out, "filters:")
}

func TestRun_FilterColumnIgnoresCase(t *testing.T) {
	env := newTestEnv(t)
	buildStatusQuery(t, env)

	out := env.mustRun(t, "run", "status", "--filter", "STATUS=CLOSED")
	assert.Contains(t, out, "1 of 3 row(s)")
	assert.Contains(t, out, "filters: status=CLOSED")

	_, err := env.run(t, "run", "status", "--filter", "missing=x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown column "missing"`)
}

func TestRun_RecordsHistory(t *testing.T) {
	env := newTestEnv(t)
	buildStatusQuery(t, env)
	env.mustRun(t, "queries", "new", "broken")
	env.mustRun(t, "display", "add", "broken", "nowhere.x", "--type", "TEXT")

	env.mustRun(t, "run", "status")
	_, err := env.run(t, "run", "broken")
	require.Error(t, err)

	out := env.mustRun(t, "history")
	assert.Contains(t, out, "status")
	assert.Contains(t, out, "broken")
	assert.Contains(t, out, "failed")

	out = env.mustRun(t, "history", "--search", "nowhere")
	assert.Contains(t, out, "broken")
	assert.NotContains(t, out, "| status")
}

func TestListings(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	out := env.mustRun(t, "tables")
	assert.Contains(t, out, "claim")
	assert.Contains(t, out, "member")

	out = env.mustRun(t, "tables", "--filter", "Name=member")
	assert.NotContains(t, out, "claim")

	out = env.mustRun(t, "fields", "claim", "member", "--filter", "Type=INTEGER", "--filter", "Field=id")
	assert.Contains(t, out, "claim")
	assert.Contains(t, out, "member")
	assert.NotContains(t, out, "member_id")

	out = env.mustRun(t, "values", "claim", "status")
	assert.Equal(t, "CLOSED\nOPEN\n", out)

	out = env.mustRun(t, "values", "claim", "id")
	assert.Contains(t, out, "more than 2 values")
}

func TestFiles(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(env.dir, "scripts")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.sql"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("x"), 0644))

	out := env.mustRun(t, "files", dir, "--filter", "Extension=.sql")
	assert.Contains(t, out, "a.sql")
	assert.NotContains(t, out, "b.csv")
}

func TestSourcesList(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "sources", "list")
	assert.Contains(t, out, "local *")
	assert.Contains(t, out, "neon")
}
