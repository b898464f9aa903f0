package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "lazyquery", cmd.Use)
	assert.Contains(t, cmd.Long, "column filters")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"queries", "list"}, {"queries", "new"}, {"queries", "delete"}, {"queries", "rename"}, {"queries", "show"},
		{"criteria", "add"}, {"criteria", "remove"},
		{"display", "add"}, {"display", "remove"},
		{"join", "add"}, {"join", "remove"}, {"join", "move"},
		{"compile"}, {"run"}, {"tables"}, {"fields"}, {"values"}, {"files"}, {"history"},
		{"sources", "list"}, {"sources", "login"}, {"sources", "logout"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"config", "log-level", "source"} {
		require.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
	assert.Equal(t, "s", cmd.PersistentFlags().Lookup("source").Shorthand)
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	for _, name := range []string{"filter", "interactive", "export", "limit", "sql"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "missing --%s", name)
	}
}

func TestParseFilters(t *testing.T) {
	filters, err := parseFilters([]string{"Status=OPEN,CLOSED", "Name=O'Brien"})
	require.NoError(t, err)
	require.Len(t, filters, 2)
	assert.Equal(t, "Status", filters[0].Column)
	assert.Equal(t, []string{"CLOSED", "OPEN"}, filters[0].Values.Sorted())
	assert.Equal(t, []string{"O'Brien"}, filters[1].Values.Sorted())

	_, err = parseFilters([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseFilters([]string{"=x"})
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	env.config = env.dir + "/missing.yaml"

	_, err := env.run(t, "queries", "list")
	assert.Error(t, err)
}
